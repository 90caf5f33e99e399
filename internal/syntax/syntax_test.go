package syntax

import (
	"testing"

	"github.com/shakfu/loki/internal/row"
)

func storeWith(lines ...string) *row.Store {
	s := &row.Store{}
	for _, l := range lines {
		s.InsertRow(len(s.Rows), []byte(l))
	}
	return s
}

func highlightAll(e *Engine, s *row.Store) {
	for i := range s.Rows {
		e.HighlightRow(s.Rows, i)
	}
}

func classAt(t *testing.T, r row.Row, i int, want row.Highlight) {
	t.Helper()
	if i >= len(r.HL) {
		t.Fatalf("index %d out of range for HL length %d", i, len(r.HL))
	}
	if r.HL[i] != want {
		t.Errorf("Expected class %d at byte %d of %q, got %d", want, i, string(r.Render), r.HL[i])
	}
}

func TestKeywordClasses(t *testing.T) {
	e := &Engine{Grammar: Builtin["c"]}
	s := storeWith("if (x) return;")
	highlightAll(e, s)

	// "if" is a primary keyword, painted Keyword1.
	classAt(t, s.Rows[0], 0, row.Keyword1)
	classAt(t, s.Rows[0], 1, row.Keyword1)
	classAt(t, s.Rows[0], 3, row.Normal)
}

func TestSecondaryKeywordClass(t *testing.T) {
	e := &Engine{Grammar: Builtin["c"]}
	s := storeWith("int x;")
	highlightAll(e, s)

	// "int" carries the trailing "|" in the grammar source, so Keyword2.
	for i := 0; i < 3; i++ {
		classAt(t, s.Rows[0], i, row.Keyword2)
	}
}

func TestKeywordRequiresTrailingSeparator(t *testing.T) {
	e := &Engine{Grammar: Builtin["c"]}
	s := storeWith("interior = 1;")
	highlightAll(e, s)

	// "int" inside "interior" must not match.
	classAt(t, s.Rows[0], 0, row.Normal)
}

func TestLineCommentRequiresPrecedingSeparator(t *testing.T) {
	e := &Engine{Grammar: Builtin["c"]}
	s := storeWith("a//b", "a //b")
	highlightAll(e, s)

	// "a//b": '/' is preceded by a non-separator, so no comment.
	classAt(t, s.Rows[0], 1, row.Normal)
	// "a //b": comment from the slashes through end of row.
	classAt(t, s.Rows[1], 2, row.Comment)
	classAt(t, s.Rows[1], 4, row.Comment)
}

func TestStringWithEscapes(t *testing.T) {
	e := &Engine{Grammar: Builtin["c"]}
	s := storeWith(`x = "a\"b";`)
	highlightAll(e, s)

	r := s.Rows[0]
	// Everything between the quotes, including the escaped quote, is
	// painted String; the trailing semicolon is not.
	for i := 4; i <= 9; i++ {
		classAt(t, r, i, row.String)
	}
	classAt(t, r, 10, row.Normal)
}

func TestNumberRuns(t *testing.T) {
	e := &Engine{Grammar: Builtin["c"]}
	s := storeWith("x = 42.5;")
	highlightAll(e, s)

	for i := 4; i <= 7; i++ {
		classAt(t, s.Rows[0], i, row.Number)
	}
	// A digit glued to an identifier is not a number.
	s2 := storeWith("x2 = 1;")
	highlightAll(e, s2)
	classAt(t, s2.Rows[0], 1, row.Normal)
}

func TestMultilineCommentCascades(t *testing.T) {
	e := &Engine{Grammar: Builtin["c"]}
	s := storeWith("int x; /* start", "still inside", "end */ int y;")
	highlightAll(e, s)

	if !s.Rows[0].OpenComment {
		t.Error("Expected row 0 to end inside a multi-line comment")
	}
	classAt(t, s.Rows[1], 0, row.MLComment)
	if s.Rows[1].OpenComment != true {
		t.Error("Expected row 1 to stay inside the comment")
	}
	// Row 2 closes it: "end */" is MLComment, "int" after it Keyword2.
	classAt(t, s.Rows[2], 0, row.MLComment)
	classAt(t, s.Rows[2], 5, row.MLComment)
	classAt(t, s.Rows[2], 7, row.Keyword2)
	if s.Rows[2].OpenComment {
		t.Error("Expected row 2 to close the comment")
	}
}

func TestMultilineCommentReopenRehighlightsFollowers(t *testing.T) {
	e := &Engine{Grammar: Builtin["c"]}
	s := storeWith("x;", "y;")
	highlightAll(e, s)
	classAt(t, s.Rows[1], 0, row.Normal)

	// Turning row 0 into a comment opener must cascade into row 1.
	s.Rows[0].Chars = []byte("/* open")
	s.AppendString(0, nil)
	e.HighlightRow(s.Rows, 0)
	classAt(t, s.Rows[1], 0, row.MLComment)
}

func TestForFilename(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"main.go", "go"},
		{"kilo.c", "c"},
		{"notes.md", "markdown"},
		{"script.py", "python"},
	}
	for _, c := range cases {
		g := ForFilename(c.name)
		if g == nil || g.Name != c.want {
			t.Errorf("Expected grammar %q for %q, got %v", c.want, c.name, g)
		}
	}
	if ForFilename("README") != nil {
		t.Error("Expected no grammar for an extensionless name")
	}
}

func TestMarkdownFencedCodeBlock(t *testing.T) {
	e := &Engine{Grammar: Builtin["markdown"]}
	s := storeWith("```go", "func main() {}", "```", "plain")
	highlightAll(e, s)

	if s.Rows[0].FenceLang != "go" {
		t.Errorf("Expected fence lang %q, got %q", "go", s.Rows[0].FenceLang)
	}
	// The interior row is painted with the tagged grammar's rules.
	classAt(t, s.Rows[1], 0, row.Keyword2) // "func"
	if s.Rows[2].FenceLang != "" {
		t.Errorf("Expected the closing fence to clear the lang, got %q", s.Rows[2].FenceLang)
	}
	classAt(t, s.Rows[3], 0, row.Normal)
}

func TestMarkdownInlineClasses(t *testing.T) {
	e := &Engine{Grammar: Builtin["markdown"]}
	s := storeWith("# Title", "see `code` and [text](url)")
	highlightAll(e, s)

	classAt(t, s.Rows[0], 0, row.Keyword1)
	classAt(t, s.Rows[1], 4, row.String)  // backtick span
	classAt(t, s.Rows[1], 15, row.String) // link span
}

type replacePlugin struct{}

func (replacePlugin) HighlightRow(raw, render []byte, idx int, grammar string) ([]PluginSpan, bool) {
	return []PluginSpan{{Start: 0, End: 2, Class: row.Keyword1}}, true
}

func TestPluginReplaceOverridesScan(t *testing.T) {
	e := &Engine{Grammar: Builtin["c"], Plugin: replacePlugin{}}
	s := storeWith("if (x)")
	highlightAll(e, s)

	classAt(t, s.Rows[0], 0, row.Keyword1)
	classAt(t, s.Rows[0], 1, row.Keyword1)
	// Replace zeroed the rest; the builtin scan never ran.
	classAt(t, s.Rows[0], 3, row.Normal)
}
