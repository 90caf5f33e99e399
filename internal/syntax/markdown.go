package syntax

import (
	"bytes"
	"strings"

	"github.com/shakfu/loki/internal/row"
)

// highlightMarkdownRow is the Markdown special dispatch: fenced code
// blocks are recursively painted with the tagged grammar's rules;
// fence lines are painted Comment; outside code, headings and strong
// text get Keyword1, list markers and emphasis get Keyword2, and inline
// code and link syntax get String.
func (e *Engine) highlightMarkdownRow(rows []row.Row, idx int) {
	r := &rows[idx]
	render := r.Render
	trimmed := bytes.TrimLeft(render, " \t")

	// Fence open/close detection. A fence line's "language tag" carries
	// over to following rows via FenceLang until the matching close.
	if bytes.HasPrefix(trimmed, []byte("```")) {
		wasFenced := idx > 0 && rows[idx-1].FenceLang != ""
		if wasFenced {
			r.FenceLang = ""
		} else {
			lang := strings.TrimSpace(string(trimmed[3:]))
			r.FenceLang = lang
			if lang == "" {
				r.FenceLang = "text"
			}
		}
		for i := range r.HL {
			r.HL[i] = row.Comment
		}
		return
	}

	inFence := idx > 0 && rows[idx-1].FenceLang != ""
	if inFence {
		r.FenceLang = rows[idx-1].FenceLang
		if g, ok := Builtin[r.FenceLang]; ok && g.Name != "markdown" {
			sub := &Engine{Grammar: g}
			sub.scanRow(rows, idx)
			return
		}
		return
	}

	switch {
	case len(trimmed) > 0 && trimmed[0] == '#':
		for i := range r.HL {
			r.HL[i] = row.Keyword1
		}
		return
	case len(trimmed) >= 2 && (trimmed[0] == '-' || trimmed[0] == '*' || trimmed[0] == '+') && trimmed[1] == ' ':
		off := len(render) - len(trimmed)
		r.HL[off] = row.Keyword2
		return
	}

	i := 0
	for i < len(render) {
		c := render[i]
		switch {
		case c == '`':
			end := bytes.IndexByte(render[i+1:], '`')
			if end < 0 {
				r.HL[i] = row.String
				i++
				continue
			}
			for j := i; j <= i+end+1 && j < len(r.HL); j++ {
				r.HL[j] = row.String
			}
			i += end + 2
		case c == '*' && i+1 < len(render) && render[i+1] == '*':
			end := bytes.Index(render[i+2:], []byte("**"))
			if end < 0 {
				i++
				continue
			}
			for j := i; j < i+2+end+2 && j < len(r.HL); j++ {
				r.HL[j] = row.Keyword1
			}
			i += 2 + end + 2
		case c == '*' || c == '_':
			end := bytes.IndexByte(render[i+1:], c)
			if end < 0 {
				i++
				continue
			}
			for j := i; j <= i+end+1 && j < len(r.HL); j++ {
				r.HL[j] = row.Keyword2
			}
			i += end + 2
		case c == '[':
			closeBr := bytes.IndexByte(render[i:], ']')
			if closeBr < 0 || i+closeBr+1 >= len(render) || render[i+closeBr+1] != '(' {
				i++
				continue
			}
			openPar := i + closeBr + 1
			closePar := bytes.IndexByte(render[openPar:], ')')
			if closePar < 0 {
				i++
				continue
			}
			end := openPar + closePar
			for j := i; j <= end && j < len(r.HL); j++ {
				r.HL[j] = row.String
			}
			i = end + 1
		default:
			i++
		}
	}
}
