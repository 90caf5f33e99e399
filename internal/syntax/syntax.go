// Package syntax derives per-byte highlight codes for rows: a grammar
// table with primary and secondary keywords (a trailing "|" in the
// keyword list marks the secondary, type-like class), a left-to-right
// scan with string/number/comment state, cascading re-highlight on
// multi-line-comment state changes, and a plug-in override point.
package syntax

import (
	"bytes"
	"strings"

	"github.com/shakfu/loki/internal/row"
)

// Grammar describes one language's highlighting rules.
type Grammar struct {
	Name       string
	Extensions []string
	// Keywords holds primary keywords; a keyword ending in "|" is stripped
	// of the suffix and classified Keyword2 instead of Keyword1.
	Keywords    []string
	primary     map[string]bool
	secondary   map[string]bool
	LineComment string
	BlockOpen   string
	BlockClose  string
	Openers     []string // indent engine: tokens that increase indent
	Closers     []string // indent engine: tokens that trigger electric dedent
}

func (g *Grammar) compile() {
	g.primary = map[string]bool{}
	g.secondary = map[string]bool{}
	for _, kw := range g.Keywords {
		if strings.HasSuffix(kw, "|") {
			g.secondary[strings.TrimSuffix(kw, "|")] = true
		} else {
			g.primary[kw] = true
		}
	}
}

// Builtin grammars, keyed by name. Keywords ending in "|" take the
// secondary (type) class.
var Builtin = buildBuiltins()

func buildBuiltins() map[string]*Grammar {
	grammars := []*Grammar{
		{
			Name:       "c",
			Extensions: []string{".c", ".h", ".cpp", ".cc", ".hpp"},
			Keywords: []string{
				"switch", "if", "while", "for", "break", "continue", "return", "else",
				"struct", "union", "typedef", "static", "enum", "class", "case",
				"int|", "long|", "double|", "float|", "char|", "unsigned|", "signed|", "void|",
			},
			LineComment: "//",
			BlockOpen:   "/*",
			BlockClose:  "*/",
			Openers:     []string{"{"},
			Closers:     []string{"}"},
		},
		{
			Name:       "go",
			Extensions: []string{".go"},
			Keywords: []string{
				"break", "case", "chan", "const", "continue", "default", "defer", "else",
				"fallthrough", "for", "go", "goto", "if", "import", "map", "package",
				"range", "return", "select", "switch", "type", "var",
				"interface|", "func|", "string|", "int|", "bool|", "byte|", "rune|", "error|",
			},
			LineComment: "//",
			BlockOpen:   "/*",
			BlockClose:  "*/",
			Openers:     []string{"{", "("},
			Closers:     []string{"}", ")"},
		},
		{
			Name:       "python",
			Extensions: []string{".py"},
			Keywords: []string{
				"and", "as", "assert", "break", "class", "continue", "def", "del",
				"elif", "else", "except", "finally", "for", "from", "global", "if",
				"import", "in", "is", "lambda", "not", "or", "pass", "raise", "return",
				"try", "while", "with", "yield",
				"int|", "str|", "float|", "bool|", "list|", "dict|", "tuple|", "set|", "None|",
			},
			LineComment: "#",
			Openers:     []string{":"},
			Closers:     []string{},
		},
		{
			Name:       "markdown",
			Extensions: []string{".md", ".markdown"},
		},
	}
	table := make(map[string]*Grammar, len(grammars))
	for _, g := range grammars {
		g.compile()
		table[g.Name] = g
	}
	return table
}

// ForFilename selects a grammar by file-extension match.
func ForFilename(name string) *Grammar {
	if name == "" {
		return nil
	}
	for _, g := range Builtin {
		for _, ext := range g.Extensions {
			if strings.HasSuffix(name, ext) {
				return g
			}
		}
	}
	return nil
}

// PluginSpan is one (start, end, class) span an external highlighter
// callback returns for a row.
type PluginSpan struct {
	Start, End int
	Class      row.Highlight
}

// Plugin is the external row-highlight hook: given a row's raw/rendered
// bytes, its index and the active grammar name, it may return spans to
// apply. Replace, when true, means the engine zeroes the row's highlight
// array before applying the spans instead of overlaying them on top of
// the builtin scan.
type Plugin interface {
	HighlightRow(rawBytes, renderBytes []byte, index int, grammarName string) (spans []PluginSpan, replace bool)
}

// Engine derives per-row highlight codes for a document using one
// grammar, with cascading re-evaluation when a row's open-multiline-
// comment state changes.
type Engine struct {
	Grammar *Grammar
	Plugin  Plugin
}

func isSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f', 0:
		return true
	}
	return strings.IndexByte(",.()+-/*=~%<>[];:{}", c) >= 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// HighlightRow scans one row, seeding multi-line-comment state from the
// previous row's OpenComment flag, and cascades into the next row when
// this row's end state changed.
func (e *Engine) HighlightRow(rows []row.Row, idx int) {
	r := &rows[idx]
	mask := r.NonPrintMask()
	r.HL = make([]row.Highlight, len(r.Render))
	for i, np := range mask {
		if np {
			r.HL[i] = row.NonPrint
		}
	}

	var spans []PluginSpan
	replace := false
	if e.Plugin != nil {
		spans, replace = e.Plugin.HighlightRow(r.Chars, r.Render, idx, e.grammarName())
	}

	if replace {
		r.HL = make([]row.Highlight, len(r.Render))
	} else if e.Grammar != nil {
		if e.Grammar.Name == "markdown" {
			e.highlightMarkdownRow(rows, idx)
		} else {
			e.scanRow(rows, idx)
		}
	}
	for _, sp := range spans {
		for i := sp.Start; i < sp.End && i < len(r.HL); i++ {
			if i >= 0 {
				r.HL[i] = sp.Class
			}
		}
	}
}

func (e *Engine) grammarName() string {
	if e.Grammar == nil {
		return ""
	}
	return e.Grammar.Name
}

// scanRow is the state-machine scan for a conventional C-like grammar.
func (e *Engine) scanRow(rows []row.Row, idx int) {
	r := &rows[idx]
	g := e.Grammar
	render := r.Render

	inComment := idx > 0 && rows[idx-1].OpenComment
	var inString byte
	prevSep := true

	scs, mcs, mce := []byte(g.LineComment), []byte(g.BlockOpen), []byte(g.BlockClose)

	for i := 0; i < len(render); {
		c := render[i]
		prevHL := row.Normal
		if i > 0 {
			prevHL = r.HL[i-1]
		}

		if inComment {
			r.HL[i] = row.MLComment
			if len(mce) > 0 && bytes.HasPrefix(render[i:], mce) {
				for j := 0; j < len(mce) && i+j < len(r.HL); j++ {
					r.HL[i+j] = row.MLComment
				}
				i += len(mce)
				inComment = false
				continue
			}
			i++
			continue
		}

		if len(scs) > 0 && inString == 0 && prevSep && bytes.HasPrefix(render[i:], scs) {
			for j := i; j < len(r.HL); j++ {
				r.HL[j] = row.Comment
			}
			break
		}

		if len(mcs) > 0 && inString == 0 && bytes.HasPrefix(render[i:], mcs) {
			inComment = true
			for j := 0; j < len(mcs) && i+j < len(r.HL); j++ {
				r.HL[i+j] = row.MLComment
			}
			i += len(mcs)
			continue
		}

		if inString != 0 {
			r.HL[i] = row.String
			if c == '\\' && i+1 < len(render) {
				r.HL[i+1] = row.String
				i += 2
				continue
			}
			if c == inString {
				inString = 0
			}
			i++
			prevSep = true
			continue
		}
		if c == '"' || c == '\'' {
			inString = c
			r.HL[i] = row.String
			i++
			continue
		}

		if (isDigit(c) && (prevSep || prevHL == row.Number)) || (c == '.' && prevHL == row.Number) {
			r.HL[i] = row.Number
			i++
			prevSep = false
			continue
		}

		if prevSep {
			if cls, n := matchKeyword(g, render[i:]); n > 0 {
				for k := 0; k < n; k++ {
					r.HL[i+k] = cls
				}
				i += n
				prevSep = false
				continue
			}
		}
		prevSep = isSeparator(c)
		i++
	}

	changed := r.OpenComment != inComment
	r.OpenComment = inComment
	if changed && idx+1 < len(rows) {
		e.scanRow(rows, idx+1)
	}
}

// matchKeyword returns the highlight class and byte length of a keyword
// match at the start of rest, requiring the keyword be followed by a
// separator (or end of row).
func matchKeyword(g *Grammar, rest []byte) (row.Highlight, int) {
	try := func(set map[string]bool, cls row.Highlight) (row.Highlight, int) {
		for kw := range set {
			n := len(kw)
			if n == 0 || n > len(rest) {
				continue
			}
			if !bytes.HasPrefix(rest, []byte(kw)) {
				continue
			}
			if n < len(rest) && !isSeparator(rest[n]) {
				continue
			}
			return cls, n
		}
		return row.Normal, 0
	}
	if cls, n := try(g.primary, row.Keyword1); n > 0 {
		return cls, n
	}
	if cls, n := try(g.secondary, row.Keyword2); n > 0 {
		return cls, n
	}
	return row.Normal, 0
}

// HighlightAll re-evaluates every row in the document, e.g. after a
// grammar switch.
func (e *Engine) HighlightAll(rows []row.Row) {
	for i := range rows {
		e.HighlightRow(rows, i)
	}
}
