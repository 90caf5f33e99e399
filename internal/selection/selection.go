// Package selection implements the range-over-(row,column) selection
// model and clipboard export.
package selection

import (
	"bytes"

	"github.com/shakfu/loki/internal/row"
	"github.com/shakfu/loki/internal/undo"
)

// Cell is a (row, column) pair in file coordinates.
type Cell struct {
	Row, Col int
}

func (c Cell) less(o Cell) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// Selection is a range between a start and end cell, active between the
// two until deactivated.
type Selection struct {
	Start, End Cell
	Active     bool
}

// Seed activates the selection at a single cell, as entering VISUAL mode
// does.
func (s *Selection) Seed(c Cell) {
	s.Start = c
	s.End = c
	s.Active = true
}

// Extend moves the end cell, as VISUAL-mode motion does.
func (s *Selection) Extend(c Cell) {
	s.End = c
}

// Deactivate clears the active flag without discarding the endpoints (a
// renderer may still want to show the last selection briefly).
func (s *Selection) Deactivate() {
	s.Active = false
}

// Bounds returns the lexicographically ordered (low, high) endpoints.
func (s *Selection) Bounds() (low, high Cell) {
	if s.Start.less(s.End) || s.Start == s.End {
		return s.Start, s.End
	}
	return s.End, s.Start
}

// Contains reports whether cell (row, col) satisfies low <= cell < high.
func (s *Selection) Contains(c Cell) bool {
	low, high := s.Bounds()
	return !c.less(low) && c.less(high)
}

// Text serializes the selected text: rows joined by "\n", partial
// leading/trailing rows trimmed to their in-selection columns.
func Text(rows []row.Row, sel Selection) []byte {
	low, high := sel.Bounds()
	if low == high {
		return nil
	}
	var buf bytes.Buffer
	for r := low.Row; r <= high.Row && r < len(rows); r++ {
		chars := rows[r].Chars
		start, end := 0, len(chars)
		if r == low.Row {
			start = low.Col
		}
		if r == high.Row {
			end = high.Col
		}
		if start > len(chars) {
			start = len(chars)
		}
		if end > len(chars) {
			end = len(chars)
		}
		if start > end {
			start = end
		}
		buf.Write(chars[start:end])
		if r != high.Row {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// ClipboardWriter is the renderer entry point clipboard text is
// forwarded to.
type ClipboardWriter interface {
	ClipboardCopy(text []byte) error
}

// Copy serializes the selection, forwards it to the renderer's clipboard
// entry, and deactivates the selection.
func Copy(rows []row.Row, sel *Selection, clip ClipboardWriter) error {
	text := Text(rows, *sel)
	sel.Deactivate()
	if clip == nil {
		return nil
	}
	return clip.ClipboardCopy(text)
}

// Delete deletes the covered range through the row store, recording each
// character deletion and line-merge into j as one group, and returns the
// cursor the caller should reset to (sel's low endpoint).
func Delete(store *row.Store, j *undo.Journal, sel *Selection) Cell {
	low, high := sel.Bounds()
	sel.Deactivate()
	if low == high {
		return low
	}
	j.BeginGroup()
	defer j.EndGroup()

	// Delete from the high end backward so row/col indices recorded for
	// earlier entries stay valid.
	if low.Row == high.Row {
		deleteRangeInRow(store, j, low.Row, low.Col, high.Col)
		return low
	}

	deleteRangeInRow(store, j, high.Row, 0, high.Col)
	for r := high.Row - 1; r > low.Row; r-- {
		mergeRowUp(store, j, r)
	}
	deleteRangeInRow(store, j, low.Row, low.Col, len(store.Rows[low.Row].Chars))
	mergeRowUp(store, j, low.Row+1)
	return low
}

func deleteRangeInRow(store *row.Store, j *undo.Journal, r, start, end int) {
	for c := end - 1; c >= start; c-- {
		if c < 0 || c >= len(store.Rows[r].Chars) {
			continue
		}
		ch := store.Rows[r].Chars[c]
		store.DeleteChar(r, c)
		j.RecordDeleteChar(r, c, ch, undo.Cursor{Row: r, Col: c})
	}
}

// mergeRowUp merges row r into row r-1 (the row-merge rule), recording an
// invertible delete-line entry.
func mergeRowUp(store *row.Store, j *undo.Journal, r int) {
	if r <= 0 || r >= len(store.Rows) {
		return
	}
	content := append([]byte(nil), store.Rows[r].Chars...)
	col := len(store.Rows[r-1].Chars)
	store.AppendString(r-1, content)
	store.DeleteRow(r)
	j.RecordDeleteLine(r-1, col, content, undo.Cursor{Row: r, Col: 0})
}
