package session

import (
	"fmt"
	"time"

	"github.com/shakfu/loki/internal/indent"
	"github.com/shakfu/loki/internal/modal"
	"github.com/shakfu/loki/internal/row"
	"github.com/shakfu/loki/internal/search"
	"github.com/shakfu/loki/internal/selection"
	"github.com/shakfu/loki/internal/syntax"
	"github.com/shakfu/loki/internal/undo"
)

const messageExpiry = 5 * time.Second

// cmdline is the COMMAND-mode mini-buffer: buffer, cursor, and the
// walk position within the registry's history ring.
type cmdline struct {
	buf        []byte
	cursor     int
	history    []string
	historyIdx int
}

const cmdHistoryCap = 256

// EditorContext composes one document model (row store + owning undo
// journal + syntax table) and one view state. Ownership of everything it
// points to is exclusive to this context.
type EditorContext struct {
	Store  *row.Store
	Syntax *syntax.Engine
	Undo   *undo.Journal
	Sel    selection.Selection
	Indent indent.Config

	// Cursor, in file (row, col) coordinates, and screen offsets.
	CX, CY                 int
	RowOffset, ColOffset   int
	ScreenRows, ScreenCols int

	mode    modal.Mode
	cmd     cmdline
	ctrlX   bool
	search  *search.State
	overlay *overlayState
	message Message

	LineNumbers bool
	WordWrap    bool

	quitWarnings int

	replActive bool
	replInput  []byte
	replLog    []string
}

// NewEditorContext returns a context with an empty document, NORMAL mode,
// and the default two-space indent unit.
func NewEditorContext() *EditorContext {
	return &EditorContext{
		Store:  row.New(),
		Syntax: &syntax.Engine{},
		Undo:   undo.New(),
		Indent: indent.Default(),
		mode:   modal.Normal,
	}
}

// Dirty satisfies buffer.Manager's dirtyChecker interface.
func (c *EditorContext) Dirty() bool { return c.Store.Dirty > 0 }

func (c *EditorContext) cursor() undo.Cursor {
	return undo.Cursor{Row: c.CY, Col: c.CX}
}

// clampCursor keeps (CX, CY) inside the document after any structural
// mutation.
func (c *EditorContext) clampCursor() {
	if c.CY >= len(c.Store.Rows) {
		c.CY = len(c.Store.Rows) - 1
	}
	if c.CY < 0 {
		c.CY = 0
	}
	rowLen := 0
	if c.CY < len(c.Store.Rows) {
		rowLen = len(c.Store.Rows[c.CY].Chars)
	}
	if c.CX > rowLen {
		c.CX = rowLen
	}
	if c.CX < 0 {
		c.CX = 0
	}
}

func (c *EditorContext) rehighlightFrom(r int) {
	if c.Syntax == nil {
		return
	}
	if r < 0 {
		r = 0
	}
	for i := r; i < len(c.Store.Rows); i++ {
		c.Syntax.HighlightRow(c.Store.Rows, i)
	}
}

func (c *EditorContext) setStatus(format string, args ...any) {
	c.message = Message{Text: fmt.Sprintf(format, args...), Expires: time.Now().Add(messageExpiry)}
}
