// Package event defines the structured input events and the
// keycode <-> event conversion: legacy flat keycodes are decomposed into
// a tagged-union Event plus an explicit Modifiers bit-set.
package event

// Modifier is a bit in the {CTRL, SHIFT, ALT} bit-set.
type Modifier int

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
)

// Keycode is either a plain byte value (ASCII, already decomposed from
// any modifier) or one of the legacy special-key constants below.
type Keycode int

const (
	KeyBackspace Keycode = 127
	KeyArrowLeft Keycode = iota + 1000
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyEnter  Keycode = '\r'
	KeyEscape Keycode = 27
	KeyTab    Keycode = '\t'
)

// Kind is the Event tagged-union discriminator.
type Kind int

const (
	KindKey Kind = iota
	KindCommand
	KindAction
	KindResize
	KindMouse
	KindQuit
	KindNone
)

// MouseButton identifies which mouse button a KindMouse event reports.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseRight
	MouseMiddle
)

// Event is a tagged union: key, command string, named action, resize,
// mouse, quit, or none. Exactly the fields relevant to Kind are
// populated; the rest are zero.
type Event struct {
	Kind Kind

	// KindKey
	Code      Keycode
	Modifiers Modifier
	Bytes     []byte // UTF-8 bytes for a printable key event

	// KindCommand
	Command string

	// KindAction
	Action string

	// KindResize
	Rows, Cols int

	// KindMouse
	X, Y    int
	Button  MouseButton
	Pressed bool
}

// Key builds a plain key event.
func Key(code Keycode, mods Modifier) Event {
	return Event{Kind: KindKey, Code: code, Modifiers: mods}
}

// Printable builds a key event carrying literal UTF-8 bytes (the common
// case: a byte typed in INSERT mode).
func Printable(b byte) Event {
	return Event{Kind: KindKey, Code: Keycode(b), Bytes: []byte{b}}
}

// Resize builds a resize event.
func Resize(rows, cols int) Event {
	return Event{Kind: KindResize, Rows: rows, Cols: cols}
}

// Quit builds a quit event.
func Quit() Event { return Event{Kind: KindQuit} }

// None is the sentinel "no event" value a timed-out read returns.
var None = Event{Kind: KindNone}

// DecomposeLegacy converts certain legacy keycodes (shift-arrow,
// shift-return, and the 1-26 control-letter range) into a base keycode
// plus modifier flags.
func DecomposeLegacy(raw int) (Keycode, Modifier) {
	switch {
	case raw >= 1 && raw <= 26 && raw != int(KeyEnter) && raw != int(KeyTab):
		// Ctrl-A..Ctrl-Z, excluding \r (13) and \t (9) which carry their
		// own named keycodes.
		return Keycode('a' + raw - 1), ModCtrl
	case raw == shiftArrowUp:
		return KeyArrowUp, ModShift
	case raw == shiftArrowDown:
		return KeyArrowDown, ModShift
	case raw == shiftArrowLeft:
		return KeyArrowLeft, ModShift
	case raw == shiftArrowRight:
		return KeyArrowRight, ModShift
	case raw == shiftReturn:
		return KeyEnter, ModShift
	default:
		return Keycode(raw), 0
	}
}

// ComposeLegacy re-composes a (keycode, modifiers) pair back into a
// legacy single-int keycode, for interfaces (e.g. the terminal host) that
// still expect the flat numbering.
func ComposeLegacy(code Keycode, mods Modifier) int {
	if mods&ModCtrl != 0 && code >= 'a' && code <= 'z' {
		return int(code) - 'a' + 1
	}
	if mods&ModShift != 0 {
		switch code {
		case KeyArrowUp:
			return shiftArrowUp
		case KeyArrowDown:
			return shiftArrowDown
		case KeyArrowLeft:
			return shiftArrowLeft
		case KeyArrowRight:
			return shiftArrowRight
		case KeyEnter:
			return shiftReturn
		}
	}
	return int(code)
}

// Legacy keycodes above the special-key range, reserved for the
// shift-arrow/shift-return decomposition.
const (
	shiftArrowUp = iota + 2000
	shiftArrowDown
	shiftArrowLeft
	shiftArrowRight
	shiftReturn
)
