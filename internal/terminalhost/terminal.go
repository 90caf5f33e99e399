// Package terminalhost is the terminal collaborator: raw mode,
// legacy-keycode escape parsing, window-size query with an ANSI
// cursor-position-report fallback, an async-signal-safe resize flag, and
// the append-buffer primitive.
package terminalhost

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/shakfu/loki/internal/event"
)

// ANSI escape sequences.
const (
	ClearScreen          = "\x1b[2J"
	ClearLine            = "\x1b[K"
	CursorHome           = "\x1b[H"
	CursorHide           = "\x1b[?25l"
	CursorShow           = "\x1b[?25h"
	CursorBottomRight    = "\x1b[999;999H"
	CursorGetPosition    = "\x1b[6n"
	CursorPositionFormat = "\x1b[%d;%dH"
	ColorsReset          = "\x1b[m"
	ColorsInvert         = "\x1b[7m"
)

// SGR foreground codes for the syntax highlight palette.
const (
	FgDefault = "\x1b[39m"
	FgRed     = "\x1b[31m"
	FgGreen   = "\x1b[32m"
	FgYellow  = "\x1b[33m"
	FgBlue    = "\x1b[34m"
	FgMagenta = "\x1b[35m"
	FgCyan    = "\x1b[36m"
	FgGray    = "\x1b[90m"
)

// AppendBuffer is the growable byte buffer frame composition is built
// into before one write(2) flushes it.
type AppendBuffer struct {
	b []byte
}

// Append adds s to the buffer.
func (ab *AppendBuffer) Append(s []byte) {
	ab.b = append(ab.b, s...)
}

// AppendString adds s to the buffer.
func (ab *AppendBuffer) AppendString(s string) {
	ab.b = append(ab.b, s...)
}

// Bytes returns the accumulated buffer.
func (ab *AppendBuffer) Bytes() []byte { return ab.b }

// Free resets the buffer for reuse.
func (ab *AppendBuffer) Free() {
	ab.b = ab.b[:0]
}

// Host owns the raw-mode lifecycle and read/size queries. Exactly one
// host is active at a time.
type Host struct {
	fd       int
	original *term.State

	resizePending atomic.Bool
	sigwinch      chan os.Signal
}

// New returns a host bound to fd (typically os.Stdin.Fd()).
func New(fd int) *Host {
	return &Host{fd: fd}
}

// EnableRaw idempotently puts the terminal into raw mode: calling it
// twice leaves the terminal raw with the originally-saved settings
// intact.
func (h *Host) EnableRaw() error {
	if h.original != nil {
		return nil
	}
	st, err := term.MakeRaw(h.fd)
	if err != nil {
		return err
	}
	h.original = st
	return nil
}

// DisableRaw idempotently restores the snapshotted terminal settings.
func (h *Host) DisableRaw() error {
	if h.original == nil {
		return nil
	}
	err := term.Restore(h.fd, h.original)
	h.original = nil
	return err
}

// WatchResize registers an async-signal-safe SIGWINCH handler that only
// flips an atomic flag; ConsumeResize fetches and clears it on the main
// thread.
func (h *Host) WatchResize() {
	h.sigwinch = make(chan os.Signal, 1)
	signal.Notify(h.sigwinch, syscall.SIGWINCH)
	go func() {
		for range h.sigwinch {
			h.resizePending.Store(true)
		}
	}()
}

// StopWatchingResize unregisters the SIGWINCH handler.
func (h *Host) StopWatchingResize() {
	if h.sigwinch != nil {
		signal.Stop(h.sigwinch)
	}
}

// ConsumeResize reports whether a resize arrived since the last call, and
// clears the flag.
func (h *Host) ConsumeResize() bool {
	return h.resizePending.Swap(false)
}

// WindowSize queries terminal dimensions via term.GetSize, falling back
// to the ANSI cursor-position-report dance (move to bottom-right corner,
// request cursor position, parse the response) when the ioctl fails --
// e.g. when stdout is redirected to a pipe that still supports the report.
func (h *Host) WindowSize() (rows, cols int, err error) {
	cols, rows, err = term.GetSize(int(os.Stdout.Fd()))
	if err == nil && rows > 0 && cols > 0 {
		return rows, cols, nil
	}
	return h.windowSizeFallback()
}

func (h *Host) windowSizeFallback() (rows, cols int, err error) {
	if _, err := os.Stdout.WriteString(CursorBottomRight + CursorGetPosition); err != nil {
		return 0, 0, err
	}
	buf := make([]byte, 32)
	n := 0
	for n < len(buf)-1 {
		b := make([]byte, 1)
		if nr, rerr := os.Stdin.Read(b); nr != 1 || rerr != nil {
			break
		}
		if b[0] == 'R' {
			buf[n] = b[0]
			n++
			break
		}
		buf[n] = b[0]
		n++
	}
	var r, c int
	if _, err := fmt.Sscanf(string(buf[:n]), "\x1b[%d;%d", &r, &c); err != nil {
		return 0, 0, fmt.Errorf("terminalhost: cursor position report parse: %w", err)
	}
	return r, c, nil
}

// ReadKey blocks until a legacy keycode is available on fd, or timeoutMS
// elapses (0 means block indefinitely), parsing the
// arrow/home/end/page escape sequences. It returns an event.Keycode plus
// the raw byte for printable keys.
func (h *Host) ReadKey(timeoutMS int) (event.Keycode, []byte, error) {
	b, err := h.readByteTimeout(timeoutMS)
	if err != nil {
		return 0, nil, err
	}
	if b != '\x1b' {
		return event.Keycode(b), []byte{b}, nil
	}

	seq := make([]byte, 2)
	if n, _ := os.Stdin.Read(seq[0:1]); n != 1 {
		return event.KeyEscape, nil, nil
	}
	if n, _ := os.Stdin.Read(seq[1:2]); n != 1 {
		return event.KeyEscape, nil, nil
	}

	switch seq[0] {
	case '[':
		if seq[1] >= '0' && seq[1] <= '9' {
			third := make([]byte, 1)
			if n, _ := os.Stdin.Read(third); n != 1 {
				return event.KeyEscape, nil, nil
			}
			if third[0] == '~' {
				switch seq[1] {
				case '1', '7':
					return event.KeyHome, nil, nil
				case '3':
					return event.KeyDelete, nil, nil
				case '4', '8':
					return event.KeyEnd, nil, nil
				case '5':
					return event.KeyPageUp, nil, nil
				case '6':
					return event.KeyPageDown, nil, nil
				}
			}
		} else {
			switch seq[1] {
			case 'A':
				return event.KeyArrowUp, nil, nil
			case 'B':
				return event.KeyArrowDown, nil, nil
			case 'C':
				return event.KeyArrowRight, nil, nil
			case 'D':
				return event.KeyArrowLeft, nil, nil
			case 'H':
				return event.KeyHome, nil, nil
			case 'F':
				return event.KeyEnd, nil, nil
			}
		}
	case 'O':
		switch seq[1] {
		case 'H':
			return event.KeyHome, nil, nil
		case 'F':
			return event.KeyEnd, nil, nil
		}
	}
	return event.KeyEscape, nil, nil
}

func (h *Host) readByteTimeout(timeoutMS int) (byte, error) {
	if timeoutMS <= 0 {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if n == 1 {
				return buf[0], nil
			}
			if err != nil {
				return 0, err
			}
		}
	}

	deadline := time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)
	buf := make([]byte, 1)
	for time.Now().Before(deadline) {
		n, err := os.Stdin.Read(buf)
		if n == 1 {
			return buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
	return 0, event.ErrTimeout
}

// KeyEvent converts a raw read into a fully decomposed event.Event,
// applying DecomposeLegacy for the control-letter and shift-arrow ranges.
func (h *Host) KeyEvent(timeoutMS int) (event.Event, error) {
	code, raw, err := h.ReadKey(timeoutMS)
	if err != nil {
		return event.None, err
	}
	decomposed, mods := event.DecomposeLegacy(int(code))
	return event.Event{Kind: event.KindKey, Code: decomposed, Modifiers: mods, Bytes: raw}, nil
}
