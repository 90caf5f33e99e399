package terminalhost

import (
	"fmt"

	"github.com/shakfu/loki/internal/render"
	"github.com/shakfu/loki/internal/row"
	"github.com/shakfu/loki/internal/session"
)

var _ render.Renderer = (*Renderer)(nil)

// Palette overrides the default SGR code for one or more highlight
// classes, sourced from loki.yaml's palette section.
type Palette struct {
	Comment, MLComment              string
	Keyword1, Keyword2              string
	String, Number, Match, NonPrint string
}

func (p Palette) lookup(class row.Highlight) (string, bool) {
	switch class {
	case row.Comment:
		return p.Comment, p.Comment != ""
	case row.MLComment:
		return p.MLComment, p.MLComment != ""
	case row.Keyword1:
		return p.Keyword1, p.Keyword1 != ""
	case row.Keyword2:
		return p.Keyword2, p.Keyword2 != ""
	case row.String:
		return p.String, p.String != ""
	case row.Number:
		return p.Number, p.Number != ""
	case row.Match:
		return p.Match, p.Match != ""
	case row.NonPrint:
		return p.NonPrint, p.NonPrint != ""
	default:
		return "", false
	}
}

// sgr maps a highlight class to its SGR foreground code, honoring a
// configured palette override first.
func (r *Renderer) sgr(class row.Highlight) string {
	if code, ok := r.palette.lookup(class); ok {
		return code
	}
	return sgr(class)
}

func sgr(class row.Highlight) string {
	switch class {
	case row.Comment, row.MLComment:
		return FgCyan
	case row.Keyword1:
		return FgYellow
	case row.Keyword2:
		return FgGreen
	case row.String:
		return FgMagenta
	case row.Number:
		return FgRed
	case row.Match:
		return ColorsInvert
	case row.NonPrint:
		return FgGray
	default:
		return FgDefault
	}
}

// Renderer draws one frame to the terminal via a single buffered
// write.
type Renderer struct {
	buf       AppendBuffer
	Clipboard []byte
	palette   Palette
}

// NewRenderer returns a terminal renderer bound to stdout.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// SetPalette installs a configured palette override, read from loki.yaml.
func (r *Renderer) SetPalette(p Palette) { r.palette = p }

func (r *Renderer) BeginFrame(cols, rows int) {
	r.buf.Free()
	r.buf.AppendString(CursorHide)
	r.buf.AppendString(CursorHome)
}

func (r *Renderer) EndFrame() {
	r.buf.AppendString(CursorShow)
	fmt.Print(string(r.buf.Bytes()))
}

func (r *Renderer) RenderTabs(tabs []session.TabInfo) {
	if len(tabs) <= 1 {
		return
	}
	for _, t := range tabs {
		label := t.Label
		if t.Modified {
			label += "*"
		}
		if t.Current {
			r.buf.AppendString(ColorsInvert)
			r.buf.AppendString(label)
			r.buf.AppendString(ColorsReset)
		} else {
			r.buf.AppendString(label)
		}
		r.buf.AppendString(" | ")
	}
	r.buf.AppendString(ClearLine)
	r.buf.AppendString("\r\n")
}

func (r *Renderer) RenderRow(rowNum int, segments []session.Segment, gutterWidth int, isEmpty bool) {
	if gutterWidth > 0 {
		if isEmpty {
			r.buf.AppendString(fmt.Sprintf("%*s", gutterWidth, ""))
		} else {
			r.buf.AppendString(fmt.Sprintf("%*d", gutterWidth-1, rowNum+1))
			r.buf.AppendString(" ")
		}
	}
	if isEmpty {
		r.buf.AppendString("~")
	}
	cur := ""
	for _, seg := range segments {
		code := r.sgr(seg.Class)
		if seg.Selected {
			code = ColorsInvert
		}
		if code != cur {
			r.buf.AppendString(code)
			cur = code
		}
		r.buf.AppendString(seg.Text)
	}
	if cur != "" {
		r.buf.AppendString(ColorsReset)
	}
	r.buf.AppendString(ClearLine)
	r.buf.AppendString("\r\n")
}

func (r *Renderer) RenderStatus(status session.StatusInfo) {
	name := status.Filename
	if name == "" {
		name = "[No Name]"
	}
	dirty := ""
	if status.Dirty {
		dirty = " (modified)"
	}
	left := fmt.Sprintf("%.20s%s - %d lines", name, dirty, status.TotalRows)
	right := fmt.Sprintf("%s | %s | %d/%d", status.Filetype, status.Mode, status.Line, status.TotalRows)

	r.buf.AppendString(ColorsInvert)
	line := left
	if len(line) > 80 {
		line = line[:80]
	}
	r.buf.AppendString(line)
	for i := len(line); i < 80-len(right); i++ {
		r.buf.AppendString(" ")
	}
	r.buf.AppendString(right)
	r.buf.AppendString(ColorsReset)
	r.buf.AppendString("\r\n")
}

func (r *Renderer) RenderMessage(msg string, visible bool) {
	r.buf.AppendString(ClearLine)
	if visible {
		m := msg
		if len(m) > 80 {
			m = m[:80]
		}
		r.buf.AppendString(m)
	}
}

func (r *Renderer) RenderREPL(repl session.ReplState) {
	if !repl.Active {
		return
	}
	r.buf.AppendString("\r\n")
	start := 0
	if len(repl.Log) > repl.Cap {
		start = len(repl.Log) - repl.Cap
	}
	for _, line := range repl.Log[start:] {
		r.buf.AppendString(line)
		r.buf.AppendString("\r\n")
	}
	r.buf.AppendString(repl.Prompt)
	r.buf.AppendString(repl.Input)
}

func (r *Renderer) SetCursor(row, col int) {
	r.buf.AppendString(fmt.Sprintf(CursorPositionFormat, row+1, col+1))
}

func (r *Renderer) ShowCursor() { r.buf.AppendString(CursorShow) }
func (r *Renderer) HideCursor() { r.buf.AppendString(CursorHide) }

func (r *Renderer) ClipboardCopy(text []byte) error {
	r.Clipboard = append([]byte(nil), text...)
	return nil
}

func (r *Renderer) Destroy() {
	fmt.Print(ColorsReset, CursorShow)
}
