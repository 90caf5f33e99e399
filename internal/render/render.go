// Package render defines the renderer protocol: a callback bundle any
// front-end implements, plus a null renderer for tests.
package render

import "github.com/shakfu/loki/internal/session"

// Renderer is the callback bundle a front-end implements to consume one
// frame's worth of view model.
type Renderer interface {
	BeginFrame(cols, rows int)
	EndFrame()
	RenderTabs(tabs []session.TabInfo)
	RenderRow(rowNum int, segments []session.Segment, gutterWidth int, isEmpty bool)
	RenderStatus(status session.StatusInfo)
	RenderMessage(msg string, visible bool)
	RenderREPL(repl session.ReplState)
	SetCursor(row, col int)
	ShowCursor()
	HideCursor()
	ClipboardCopy(text []byte) error
	Destroy()
}

// Null discards every call; it exists for tests and headless drivers
// that only care about the session's view model.
type Null struct {
	Clipboard []byte
}

func (n *Null) BeginFrame(cols, rows int)                                        {}
func (n *Null) EndFrame()                                                        {}
func (n *Null) RenderTabs(tabs []session.TabInfo)                                {}
func (n *Null) RenderRow(rowNum int, segs []session.Segment, gw int, empty bool) {}
func (n *Null) RenderStatus(status session.StatusInfo)                           {}
func (n *Null) RenderMessage(msg string, visible bool)                           {}
func (n *Null) RenderREPL(repl session.ReplState)                                {}
func (n *Null) SetCursor(row, col int)                                           {}
func (n *Null) ShowCursor()                                                      {}
func (n *Null) HideCursor()                                                      {}
func (n *Null) ClipboardCopy(text []byte) error {
	n.Clipboard = append([]byte(nil), text...)
	return nil
}
func (n *Null) Destroy() {}

var _ Renderer = (*Null)(nil)
