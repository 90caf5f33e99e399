// Package modal implements the NORMAL/INSERT/VISUAL/COMMAND dispatch:
// four modes, driven by events, with global bindings applying in every
// mode before mode-specific delegation. Unrecognized keys never crash,
// only emit a transient status message.
package modal

import (
	"github.com/shakfu/loki/internal/event"
)

// Mode is the current automaton state.
type Mode int

const (
	Normal Mode = iota
	Insert
	Visual
	Command
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Insert:
		return "insert"
	case Visual:
		return "visual"
	case Command:
		return "command"
	default:
		return "unknown"
	}
}

// Target is the operation surface the modal machine drives. session
// implements it; keeping it as an interface here (rather than importing
// session) avoids an import cycle.
type Target interface {
	Mode() Mode
	SetMode(Mode)

	// Motion (NORMAL and VISUAL; arrow keys mirror it in NORMAL, INSERT
	// and VISUAL, while in COMMAND mode they act on the command line)
	MoveLeft()
	MoveRight()
	MoveUp()
	MoveDown()
	MotionPrevBlankLine()
	MotionNextBlankLine()
	MoveHome()
	MoveEnd()
	MovePageUp()
	MovePageDown()

	// Mode entry
	EnterInsertAtCursor()
	EnterInsertAfterCursor()
	OpenLineBelow()
	OpenLineAbove()
	EnterVisual()
	EnterCommandLine()

	// NORMAL editing
	DeleteCharAtCursor()
	Undo()
	Redo()

	// INSERT editing
	InsertPrintable(b byte)
	InsertNewline()
	Backspace()
	DeleteForward()
	LeaveInsertToNormal()

	// VISUAL (SeedSelectionIfInactive also serves INSERT-mode
	// shift-arrow selection)
	SeedSelectionIfInactive()
	ExtendSelection()
	VisualYank()
	VisualYankAndDelete()
	VisualDeleteOnly()
	CancelVisual()

	// COMMAND line mini-buffer
	CommandLineAppend(b byte)
	CommandLineBackspace() (exited bool)
	CommandLineLeft()
	CommandLineRight()
	CommandLineHistoryUp()
	CommandLineHistoryDown()
	CommandLineExecute()
	CommandLineCancel()

	// Global bindings, active in every mode
	SaveCurrent()
	RequestQuit() (confirmed bool)
	EnterSearch()
	ToggleREPL()
	CreateBuffer()
	SetBufferPrefix()
	OpenExplorer()
	OpenHelp()

	// Ctrl-X buffer-navigation sub-dispatch
	BufferNext()
	BufferPrevious()
	BufferCloseSoft()
	BufferCloseForce()
	BufferJump(n int)

	StatusMessage(format string, args ...any)
}

// Dispatch routes one key event through the modal machine: global
// bindings first, then per-mode handling. Non-key events are ignored, and
// the key that follows a Ctrl-X prefix never reaches Dispatch: the caller
// (session) handles it first.
func Dispatch(t Target, ev event.Event) {
	if ev.Kind != event.KindKey {
		return
	}

	if handled := dispatchGlobal(t, ev); handled {
		return
	}

	switch t.Mode() {
	case Normal:
		dispatchNormal(t, ev)
	case Insert:
		dispatchInsert(t, ev)
	case Visual:
		dispatchVisual(t, ev)
	case Command:
		dispatchCommand(t, ev)
	}
}

func dispatchGlobal(t Target, ev event.Event) bool {
	if ev.Modifiers&event.ModCtrl == 0 {
		return false
	}
	switch ev.Code {
	case 's':
		t.SaveCurrent()
		return true
	case 'q':
		t.RequestQuit()
		return true
	case 'f':
		t.EnterSearch()
		return true
	case 'l':
		t.ToggleREPL()
		return true
	case 't':
		t.CreateBuffer()
		return true
	case 'x':
		t.SetBufferPrefix()
		return true
	case 'e':
		t.OpenExplorer()
		return true
	case 'h':
		t.OpenHelp()
		return true
	}
	return false
}

func dispatchNormal(t Target, ev event.Event) {
	switch ev.Code {
	case 'h', event.KeyArrowLeft:
		t.MoveLeft()
	case 'l', event.KeyArrowRight:
		t.MoveRight()
	case 'k', event.KeyArrowUp:
		t.MoveUp()
	case 'j', event.KeyArrowDown:
		t.MoveDown()
	case '{':
		t.MotionPrevBlankLine()
	case '}':
		t.MotionNextBlankLine()
	case 'i':
		t.EnterInsertAtCursor()
	case 'a':
		t.EnterInsertAfterCursor()
	case 'o':
		t.OpenLineBelow()
	case 'O':
		t.OpenLineAbove()
	case 'v':
		t.EnterVisual()
	case ':':
		t.EnterCommandLine()
	case 'x':
		t.DeleteCharAtCursor()
	case 'u':
		t.Undo()
	case event.KeyHome:
		t.MoveHome()
	case event.KeyEnd:
		t.MoveEnd()
	case event.KeyPageUp:
		t.MovePageUp()
	case event.KeyPageDown:
		t.MovePageDown()
	default:
		if ev.Code == 'r' && ev.Modifiers&event.ModCtrl != 0 {
			t.Redo()
			return
		}
		t.StatusMessage("Unrecognized key in NORMAL mode")
	}
}

func dispatchInsert(t Target, ev event.Event) {
	switch ev.Code {
	case event.KeyEscape:
		t.LeaveInsertToNormal()
	case event.KeyEnter:
		t.InsertNewline()
	case event.KeyBackspace, event.KeyDelete:
		if ev.Code == event.KeyDelete {
			t.DeleteForward()
		} else {
			t.Backspace()
		}
	case event.KeyArrowLeft:
		insertMotion(t, ev, t.MoveLeft)
	case event.KeyArrowRight:
		insertMotion(t, ev, t.MoveRight)
	case event.KeyArrowUp:
		insertMotion(t, ev, t.MoveUp)
	case event.KeyArrowDown:
		insertMotion(t, ev, t.MoveDown)
	case event.KeyHome:
		t.MoveHome()
	case event.KeyEnd:
		t.MoveEnd()
	default:
		if len(ev.Bytes) == 1 && ev.Bytes[0] >= 32 && ev.Bytes[0] != 127 {
			t.InsertPrintable(ev.Bytes[0])
			return
		}
		t.StatusMessage("Unrecognized key in INSERT mode")
	}
}

// insertMotion repositions the cursor; with SHIFT held it begins or
// extends the selection across the move.
func insertMotion(t Target, ev event.Event, move func()) {
	if ev.Modifiers&event.ModShift != 0 {
		t.SeedSelectionIfInactive()
		move()
		t.ExtendSelection()
		return
	}
	move()
}

func dispatchVisual(t Target, ev event.Event) {
	switch ev.Code {
	case 'h', event.KeyArrowLeft:
		t.MoveLeft()
		t.ExtendSelection()
	case 'l', event.KeyArrowRight:
		t.MoveRight()
		t.ExtendSelection()
	case 'k', event.KeyArrowUp:
		t.MoveUp()
		t.ExtendSelection()
	case 'j', event.KeyArrowDown:
		t.MoveDown()
		t.ExtendSelection()
	case 'y':
		t.VisualYank()
	case 'd':
		t.VisualYankAndDelete()
	case 'x':
		t.VisualDeleteOnly()
	case event.KeyEscape:
		t.CancelVisual()
	default:
		t.StatusMessage("Unrecognized key in VISUAL mode")
	}
}

func dispatchCommand(t Target, ev event.Event) {
	switch ev.Code {
	case event.KeyBackspace, event.KeyDelete:
		t.CommandLineBackspace()
	case event.KeyArrowLeft:
		t.CommandLineLeft()
	case event.KeyArrowRight:
		t.CommandLineRight()
	case event.KeyArrowUp:
		t.CommandLineHistoryUp()
	case event.KeyArrowDown:
		t.CommandLineHistoryDown()
	case event.KeyEnter:
		t.CommandLineExecute()
	case event.KeyEscape:
		t.CommandLineCancel()
	default:
		if len(ev.Bytes) == 1 && ev.Bytes[0] >= 32 && ev.Bytes[0] != 127 {
			t.CommandLineAppend(ev.Bytes[0])
			return
		}
		t.StatusMessage("Unrecognized key in COMMAND mode")
	}
}
