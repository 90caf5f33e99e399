package session

import (
	"github.com/shakfu/loki/internal/event"
	"github.com/shakfu/loki/internal/modal"
	"github.com/shakfu/loki/internal/selection"
)

// Session implements modal.Target by operating on its current editor
// context, so the modal package never needs to know about buffers,
// undo, syntax, or search.
var _ modal.Target = (*Session)(nil)

func (s *Session) Mode() modal.Mode     { return s.cur().mode }
func (s *Session) SetMode(m modal.Mode) { s.cur().mode = m }

/*** motion ***/

func (s *Session) MoveLeft() {
	c := s.cur()
	if c.CX > 0 {
		c.CX--
	} else if c.CY > 0 {
		c.CY--
		c.CX = len(c.Store.Rows[c.CY].Chars)
	}
}

func (s *Session) MoveRight() {
	c := s.cur()
	if c.CY >= len(c.Store.Rows) {
		return
	}
	rowLen := len(c.Store.Rows[c.CY].Chars)
	if c.CX < rowLen {
		c.CX++
	} else if c.CY < len(c.Store.Rows)-1 {
		c.CY++
		c.CX = 0
	}
}

func (s *Session) MoveUp() {
	c := s.cur()
	if c.CY > 0 {
		c.CY--
	}
	c.clampCursor()
}

func (s *Session) MoveDown() {
	c := s.cur()
	if c.CY < len(c.Store.Rows)-1 {
		c.CY++
	}
	c.clampCursor()
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

func (s *Session) MotionPrevBlankLine() {
	c := s.cur()
	for r := c.CY - 1; r > 0; r-- {
		if isBlank(c.Store.Rows[r].Chars) {
			c.CY = r
			c.CX = 0
			return
		}
	}
	c.CY = 0
	c.CX = 0
}

func (s *Session) MotionNextBlankLine() {
	c := s.cur()
	for r := c.CY + 1; r < len(c.Store.Rows)-1; r++ {
		if isBlank(c.Store.Rows[r].Chars) {
			c.CY = r
			c.CX = 0
			return
		}
	}
	c.CY = len(c.Store.Rows) - 1
	c.CX = 0
}

func (s *Session) MoveHome() { s.cur().CX = 0 }

func (s *Session) MoveEnd() {
	c := s.cur()
	if c.CY < len(c.Store.Rows) {
		c.CX = len(c.Store.Rows[c.CY].Chars)
	}
}

func (s *Session) MovePageUp() {
	c := s.cur()
	c.CY = c.RowOffset
	for i := 0; i < c.ScreenRows; i++ {
		s.MoveUp()
	}
}

func (s *Session) MovePageDown() {
	c := s.cur()
	target := c.RowOffset + c.ScreenRows - 1
	if target > len(c.Store.Rows)-1 {
		target = len(c.Store.Rows) - 1
	}
	c.CY = target
	for i := 0; i < c.ScreenRows; i++ {
		s.MoveDown()
	}
}

/*** mode entry ***/

func (s *Session) EnterInsertAtCursor() {
	s.cur().mode = modal.Insert
}

func (s *Session) EnterInsertAfterCursor() {
	c := s.cur()
	if c.CY < len(c.Store.Rows) && c.CX < len(c.Store.Rows[c.CY].Chars) {
		c.CX++
	}
	c.mode = modal.Insert
}

func (s *Session) OpenLineBelow() {
	c := s.cur()
	c.Undo.Break()
	row := c.CY + 1
	c.Store.InsertRow(row, nil)
	c.Undo.RecordInsertLine(c.CY, len(c.Store.Rows[c.CY].Chars), nil, c.cursor())
	c.CY = row
	c.CX = 0
	c.rehighlightFrom(c.CY)
	c.mode = modal.Insert
}

func (s *Session) OpenLineAbove() {
	c := s.cur()
	c.Undo.Break()
	// Inserting above is a split at column 0: the original line becomes
	// the split-off content at CY+1.
	orig := append([]byte(nil), c.Store.Rows[c.CY].Chars...)
	pre := c.cursor()
	c.Store.InsertRow(c.CY, nil)
	c.Undo.RecordInsertLine(c.CY, 0, orig, pre)
	c.CX = 0
	c.rehighlightFrom(c.CY)
	c.mode = modal.Insert
}

func (s *Session) EnterVisual() {
	c := s.cur()
	c.Sel.Seed(selection.Cell{Row: c.CY, Col: c.CX})
	c.mode = modal.Visual
}

func (s *Session) EnterCommandLine() {
	c := s.cur()
	c.cmd = cmdline{}
	c.mode = modal.Command
}

/*** NORMAL editing ***/

func (s *Session) DeleteCharAtCursor() {
	c := s.cur()
	if c.CY >= len(c.Store.Rows) || c.CX >= len(c.Store.Rows[c.CY].Chars) {
		return
	}
	ch := c.Store.Rows[c.CY].Chars[c.CX]
	pre := c.cursor()
	c.Store.DeleteChar(c.CY, c.CX)
	c.Undo.RecordDeleteChar(c.CY, c.CX, ch, pre)
	c.rehighlightFrom(c.CY)
}

func (s *Session) Undo() {
	c := s.cur()
	res := c.Undo.Undo(c.Store)
	if res.Ok {
		c.CY, c.CX = res.Cursor.Row, res.Cursor.Col
		c.clampCursor()
		c.rehighlightFrom(0)
	}
	c.setStatus("%s", res.Message)
}

func (s *Session) Redo() {
	c := s.cur()
	res := c.Undo.Redo(c.Store)
	if res.Ok {
		c.CY, c.CX = res.Cursor.Row, res.Cursor.Col
		c.clampCursor()
		c.rehighlightFrom(0)
	}
	c.setStatus("%s", res.Message)
}

/*** INSERT editing ***/

func (s *Session) InsertPrintable(b byte) {
	c := s.cur()
	if c.CY == len(c.Store.Rows) {
		c.Store.InsertRow(len(c.Store.Rows), nil)
	}
	pre := c.cursor()
	c.Store.InsertChar(c.CY, c.CX, b)
	c.Undo.RecordInsertChar(c.CY, c.CX, b, pre)
	c.CX++
	c.rehighlightFrom(c.CY)

	if ws, ok := c.Indent.ElectricDedent(c.Store.Rows[c.CY].Chars[:c.CX-1], b); ok {
		// Drop one indent unit's worth of leading whitespace, recording
		// each deletion so the dedent stays invertible.
		remove := (c.CX - 1) - len(ws)
		for i := 0; i < remove; i++ {
			ch := c.Store.Rows[c.CY].Chars[0]
			pre := c.cursor()
			c.Store.DeleteChar(c.CY, 0)
			c.Undo.RecordDeleteChar(c.CY, 0, ch, pre)
			c.CX--
		}
		c.rehighlightFrom(c.CY)
	}
}

func (s *Session) InsertNewline() {
	c := s.cur()
	pre := c.cursor()
	tailStart := c.CX
	var tail []byte
	if c.CY < len(c.Store.Rows) {
		chars := c.Store.Rows[c.CY].Chars
		if tailStart <= len(chars) {
			tail = append([]byte(nil), chars[tailStart:]...)
		}
	}
	newRow, newCol := c.Store.InsertNewline(c.CY, c.CX)
	c.Undo.RecordInsertLine(c.CY, c.CX, tail, pre)

	seed := c.Indent.SeedIndent(c.Store.Rows[newRow-1].Chars)
	if len(seed) > 0 {
		c.Store.Rows[newRow].Chars = append(append([]byte(nil), seed...), c.Store.Rows[newRow].Chars...)
		c.Store.AppendString(newRow, nil)
		newCol = len(seed)
	}

	c.CY, c.CX = newRow, newCol
	c.rehighlightFrom(newRow - 1)
}

func (s *Session) Backspace() {
	c := s.cur()
	if c.CX == 0 && c.CY == 0 {
		return
	}
	if c.CY >= len(c.Store.Rows) {
		return
	}
	pre := c.cursor()
	if c.CX > 0 {
		ch := c.Store.Rows[c.CY].Chars[c.CX-1]
		c.Store.DeleteChar(c.CY, c.CX-1)
		c.Undo.RecordDeleteChar(c.CY, c.CX-1, ch, pre)
		c.CX--
		c.rehighlightFrom(c.CY)
		return
	}
	content := append([]byte(nil), c.Store.Rows[c.CY].Chars...)
	mergeCol := len(c.Store.Rows[c.CY-1].Chars)
	newRow, newCol := c.Store.DeleteCharAtCursor(c.CY, c.CX)
	c.Undo.RecordDeleteLine(c.CY-1, mergeCol, content, pre)
	c.CY, c.CX = newRow, newCol
	c.rehighlightFrom(c.CY)
}

func (s *Session) DeleteForward() {
	s.MoveRight()
	s.Backspace()
}

func (s *Session) LeaveInsertToNormal() {
	c := s.cur()
	if c.CX > 0 {
		c.CX--
	}
	c.Undo.Break()
	c.mode = modal.Normal
}

/*** VISUAL ***/

// SeedSelectionIfInactive anchors a selection at the cursor unless one is
// already live, for INSERT-mode shift-arrow selection.
func (s *Session) SeedSelectionIfInactive() {
	c := s.cur()
	if !c.Sel.Active {
		c.Sel.Seed(selection.Cell{Row: c.CY, Col: c.CX})
	}
}

func (s *Session) ExtendSelection() {
	c := s.cur()
	c.Sel.Extend(selection.Cell{Row: c.CY, Col: c.CX})
}

func (s *Session) VisualYank() {
	c := s.cur()
	selection.Copy(c.Store.Rows, &c.Sel, s.clipboard)
	c.mode = modal.Normal
}

func (s *Session) VisualYankAndDelete() {
	c := s.cur()
	selection.Copy(c.Store.Rows, &c.Sel, s.clipboard)
	c.Sel.Active = true // Copy deactivated it; Delete needs the endpoints.
	cell := selection.Delete(c.Store, c.Undo, &c.Sel)
	c.CY, c.CX = cell.Row, cell.Col
	c.clampCursor()
	c.rehighlightFrom(0)
	c.mode = modal.Normal
}

func (s *Session) VisualDeleteOnly() {
	c := s.cur()
	c.Sel.Active = true
	cell := selection.Delete(c.Store, c.Undo, &c.Sel)
	c.CY, c.CX = cell.Row, cell.Col
	c.clampCursor()
	c.rehighlightFrom(0)
	c.mode = modal.Normal
}

func (s *Session) CancelVisual() {
	c := s.cur()
	c.Sel.Deactivate()
	c.mode = modal.Normal
}

/*** COMMAND line ***/

func (s *Session) CommandLineAppend(b byte) {
	c := s.cur()
	c.cmd.buf = append(c.cmd.buf, b)
	c.cmd.cursor = len(c.cmd.buf)
}

func (s *Session) CommandLineBackspace() bool {
	c := s.cur()
	if len(c.cmd.buf) == 0 {
		c.mode = modal.Normal
		return true
	}
	c.cmd.buf = c.cmd.buf[:len(c.cmd.buf)-1]
	c.cmd.cursor = len(c.cmd.buf)
	return false
}

func (s *Session) CommandLineLeft() {
	c := s.cur()
	if c.cmd.cursor > 0 {
		c.cmd.cursor--
	}
}

func (s *Session) CommandLineRight() {
	c := s.cur()
	if c.cmd.cursor < len(c.cmd.buf) {
		c.cmd.cursor++
	}
}

func (s *Session) CommandLineHistoryUp() {
	c := s.cur()
	h := s.registry.History()
	if len(h) == 0 {
		return
	}
	if c.cmd.historyIdx == 0 {
		c.cmd.historyIdx = len(h)
	}
	if c.cmd.historyIdx > 0 {
		c.cmd.historyIdx--
	}
	c.cmd.buf = []byte(h[c.cmd.historyIdx])
	c.cmd.cursor = len(c.cmd.buf)
}

func (s *Session) CommandLineHistoryDown() {
	c := s.cur()
	h := s.registry.History()
	if len(h) == 0 {
		return
	}
	if c.cmd.historyIdx < len(h)-1 {
		c.cmd.historyIdx++
		c.cmd.buf = []byte(h[c.cmd.historyIdx])
	} else {
		c.cmd.historyIdx = len(h)
		c.cmd.buf = nil
	}
	c.cmd.cursor = len(c.cmd.buf)
}

func (s *Session) CommandLineExecute() {
	c := s.cur()
	line := string(c.cmd.buf)
	c.cmd = cmdline{}
	c.mode = modal.Normal
	if err := s.registry.Execute(s, line); err != nil {
		s.lastError = err
		c.setStatus("%v", err)
	}
}

func (s *Session) CommandLineCancel() {
	c := s.cur()
	c.cmd = cmdline{}
	c.mode = modal.Normal
}

/*** global bindings ***/

// SaveCurrent is the CTRL-S global binding's wrapper around Save, which
// also serves command.Context's "w" built-in.
func (s *Session) SaveCurrent() {
	if err := s.Save(""); err != nil {
		s.cur().setStatus("%v", err)
	}
}

const quitWarningTimes = 3

func (s *Session) RequestQuit() bool {
	c := s.cur()
	if !s.AnyDirty() {
		s.shouldQuit = true
		return true
	}
	c.quitWarnings++
	remaining := quitWarningTimes - c.quitWarnings
	if remaining <= 0 {
		s.shouldQuit = true
		return true
	}
	c.setStatus("WARNING: unsaved changes. Press Ctrl-Q %d more times to quit.", remaining)
	return false
}

func (s *Session) EnterSearch() {
	c := s.cur()
	c.search = newSearchState(c)
}

func (s *Session) ToggleREPL() {
	c := s.cur()
	c.replActive = !c.replActive
}

func (s *Session) CreateBuffer() {
	ctx := NewEditorContext()
	if c := s.cur(); c != nil {
		ctx.ScreenRows, ctx.ScreenCols = c.ScreenRows, c.ScreenCols
		ctx.Syntax.Plugin = s.plugin
	}
	id := s.buffers.Create(ctx)
	s.buffers.Switch(id)
}

func (s *Session) SetBufferPrefix() {
	s.cur().ctrlX = true
}

/*** Ctrl-X buffer navigation ***/

func (s *Session) BufferNext() {
	if err := s.buffers.Next(); err != nil {
		s.cur().setStatus("%v", err)
	}
}

func (s *Session) BufferPrevious() {
	if err := s.buffers.Previous(); err != nil {
		s.cur().setStatus("%v", err)
	}
}

func (s *Session) BufferCloseSoft() {
	id, _, ok := s.buffers.Current()
	if !ok {
		return
	}
	if err := s.buffers.Close(id, false); err != nil {
		s.cur().setStatus("%v", err)
	}
}

func (s *Session) BufferCloseForce() {
	id, _, ok := s.buffers.Current()
	if !ok {
		return
	}
	if err := s.buffers.Close(id, true); err != nil {
		s.cur().setStatus("%v", err)
	}
}

func (s *Session) BufferJump(n int) {
	id, ok := s.buffers.NthLive(n)
	if !ok {
		s.cur().setStatus("no such buffer: %d", n)
		return
	}
	s.buffers.Switch(id)
}

func (s *Session) StatusMessage(format string, args ...any) {
	if c := s.cur(); c != nil {
		c.setStatus(format, args...)
	}
}

func (s *Session) dispatchCtrlX(ev event.Event) {
	switch ev.Code {
	case 'n':
		s.BufferNext()
	case 'p':
		s.BufferPrevious()
	case 'k':
		s.BufferCloseSoft()
	case 'K':
		s.BufferCloseForce()
	default:
		if ev.Code >= '1' && ev.Code <= '9' {
			s.BufferJump(int(ev.Code - '0'))
		}
	}
}
