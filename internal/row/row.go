// Package row owns the document's row store: raw bytes, rendered bytes and
// per-byte highlight codes, plus the mutations that keep all three in sync.
package row

import (
	"slices"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// TabStop is the column width tabs expand to.
const TabStop = 8

// Highlight is one semantic class a rendered byte can be painted with.
type Highlight int

const (
	Normal Highlight = iota
	NonPrint
	Comment
	MLComment
	Keyword1
	Keyword2
	String
	Number
	Match
)

// Row is a single line of the document.
type Row struct {
	Index       int
	Chars       []byte
	Render      []byte
	HL          []Highlight
	OpenComment bool   // row ends inside a multi-line comment region
	FenceLang   string // non-empty inside a Markdown fenced code block
	Section     string // section tag for sectioned formats
}

// cxToRx converts a cursor column in raw bytes to a rendered column.
func (r *Row) cxToRx(cx int) int {
	rx := 0
	for j := 0; j < cx && j < len(r.Chars); j++ {
		c := r.Chars[j]
		if c == '\t' {
			rx += TabStop - (rx % TabStop)
		} else if c >= 1 && c <= 26 {
			rx += 2
		} else {
			rx++
		}
	}
	return rx
}

// RxToCx is the inverse of cxToRx: given a rendered column, find the
// nearest raw-byte column.
func (r *Row) RxToCx(rx int) int {
	curRx := 0
	cx := 0
	for ; cx < len(r.Chars); cx++ {
		c := r.Chars[cx]
		if c == '\t' {
			curRx += TabStop - (curRx % TabStop)
		} else if c >= 1 && c <= 26 {
			curRx += 2
		} else {
			curRx++
		}
		if curRx > rx {
			return cx
		}
	}
	return cx
}

// CxToRx is the exported form of cxToRx, used by selection/search to map
// file columns onto the rendered line.
func (r *Row) CxToRx(cx int) int { return r.cxToRx(cx) }

func isControl(c byte) bool {
	return c < 32 || c == 127
}

// RenderWidth returns the on-screen column width of the row's rendered
// bytes, accounting for wide runes (CJK) and combining marks. Every row,
// plain ASCII included, is walked grapheme cluster by grapheme cluster; a
// cluster is as wide as its first rune, and a first rune of width zero
// counts as one column.
func (r *Row) RenderWidth() int {
	width := 0
	g := uniseg.NewGraphemes(string(r.Render))
	for g.Next() {
		cluster := g.Runes()
		w := runewidth.RuneWidth(cluster[0])
		if w == 0 {
			w = 1
		}
		width += w
	}
	return width
}

// WrapPoints returns the byte offsets into Render where each wrapped
// screen line starts when the row is laid out in the given column width.
// Offset 0 is always present; clusters are measured as in RenderWidth.
func (r *Row) WrapPoints(width int) []int {
	if width <= 0 || r.RenderWidth() <= width {
		return []int{0}
	}
	points := []int{0}
	col, off := 0, 0
	g := uniseg.NewGraphemes(string(r.Render))
	for g.Next() {
		cluster := g.Runes()
		w := runewidth.RuneWidth(cluster[0])
		if w == 0 {
			w = 1
		}
		if col+w > width {
			points = append(points, off)
			col = 0
		}
		col += w
		off += len(g.Str())
	}
	return points
}

// update regenerates Render from Chars: tabs expand to the next TabStop
// boundary, bytes 1-26 render as "@"+byte, other non-printables as "?",
// both marked NonPrint. HL is reset to Normal-length and left for the
// syntax engine to repaint.
func (r *Row) update() {
	tabs := 0
	for _, c := range r.Chars {
		if c == '\t' {
			tabs++
		}
	}
	r.Render = make([]byte, 0, len(r.Chars)+tabs*(TabStop-1))
	for _, c := range r.Chars {
		switch {
		case c == '\t':
			r.Render = append(r.Render, ' ')
			for len(r.Render)%TabStop != 0 {
				r.Render = append(r.Render, ' ')
			}
		case c >= 1 && c <= 26:
			r.Render = append(r.Render, '@', c+'@')
		case isControl(c):
			r.Render = append(r.Render, '?')
		default:
			r.Render = append(r.Render, c)
		}
	}
	r.HL = make([]Highlight, len(r.Render))
}

// NonPrintMask reports, for each rendered byte, whether it came from a
// control byte (used by the syntax engine to seed NonPrint highlights
// before keyword/string/number/comment scanning runs).
func (r *Row) NonPrintMask() []bool {
	mask := make([]bool, len(r.Render))
	ri := 0
	for _, c := range r.Chars {
		switch {
		case c == '\t':
			ri += TabStop - (ri % TabStop)
		case c >= 1 && c <= 26:
			if ri < len(mask) {
				mask[ri] = true
			}
			if ri+1 < len(mask) {
				mask[ri+1] = true
			}
			ri += 2
		case isControl(c):
			if ri < len(mask) {
				mask[ri] = true
			}
			ri++
		default:
			ri++
		}
	}
	return mask
}

// Store owns the ordered row sequence plus its file-level bookkeeping:
// filename and dirty counter. It does not own the undo journal or syntax
// table; session wires those in alongside.
type Store struct {
	Rows     []Row
	Filename string
	Dirty    int
}

// New returns a store with a single empty row, matching "creates an empty
// row if no file" from the buffer-manager spec.
func New() *Store {
	s := &Store{}
	s.Rows = []Row{{}}
	s.Rows[0].update()
	return s
}

func (s *Store) reindex(from int) {
	for i := from; i < len(s.Rows); i++ {
		s.Rows[i].Index = i
	}
}

// InsertRow inserts a row of raw bytes at position at.
func (s *Store) InsertRow(at int, data []byte) {
	if at < 0 || at > len(s.Rows) {
		return
	}
	newRow := Row{Chars: slices.Clone(data)}
	s.Rows = slices.Insert(s.Rows, at, newRow)
	s.reindex(at)
	s.Rows[at].update()
	s.Dirty++
}

// DeleteRow removes the row at position at.
func (s *Store) DeleteRow(at int) {
	if at < 0 || at >= len(s.Rows) {
		return
	}
	s.Rows = slices.Delete(s.Rows, at, at+1)
	s.reindex(at)
	s.Dirty++
}

// InsertChar inserts byte c at (row, col), padding the row with spaces if
// col is past the end.
func (s *Store) InsertChar(row, col int, c byte) {
	if row < 0 || row >= len(s.Rows) {
		return
	}
	r := &s.Rows[row]
	if col < 0 {
		col = len(r.Chars)
	}
	for len(r.Chars) < col {
		r.Chars = append(r.Chars, ' ')
	}
	r.Chars = slices.Insert(r.Chars, col, c)
	r.update()
	s.Dirty++
}

// DeleteChar deletes the byte at (row, col). No-op past the end of the
// row or document.
func (s *Store) DeleteChar(row, col int) {
	if row < 0 || row >= len(s.Rows) {
		return
	}
	r := &s.Rows[row]
	if col < 0 || col >= len(r.Chars) {
		return
	}
	r.Chars = slices.Delete(r.Chars, col, col+1)
	r.update()
	s.Dirty++
}

// AppendString appends s to the end of a row's raw bytes.
func (s *Store) AppendString(row int, data []byte) {
	if row < 0 || row >= len(s.Rows) {
		return
	}
	r := &s.Rows[row]
	r.Chars = append(r.Chars, data...)
	r.update()
	s.Dirty++
}

// InsertNewline splits the row at the cursor: mid-line it creates a new
// row from the tail, otherwise it inserts an empty row at the split side.
// Returns the new cursor (row, col).
func (s *Store) InsertNewline(row, col int) (int, int) {
	if row < 0 || row > len(s.Rows) {
		return row, col
	}
	if row == len(s.Rows) {
		s.InsertRow(row, nil)
		return row + 1, 0
	}
	if col == 0 {
		s.InsertRow(row, nil)
		return row + 1, 0
	}
	r := &s.Rows[row]
	if col > len(r.Chars) {
		col = len(r.Chars)
	}
	tail := slices.Clone(r.Chars[col:])
	s.InsertRow(row+1, tail)
	// InsertRow may have reallocated s.Rows; re-fetch the pointer.
	r = &s.Rows[row]
	r.Chars = r.Chars[:col]
	r.update()
	s.Dirty++
	return row + 1, 0
}

// DeleteCharAtCursor deletes the character before (row, col): merges with
// the previous row when col == 0 and row > 0, no-ops at (0, 0). Returns
// the new cursor.
func (s *Store) DeleteCharAtCursor(row, col int) (int, int) {
	if row >= len(s.Rows) {
		return row, col
	}
	if col == 0 && row == 0 {
		return row, col
	}
	if col > 0 {
		s.DeleteChar(row, col-1)
		return row, col - 1
	}
	prev := &s.Rows[row-1]
	newCol := len(prev.Chars)
	s.AppendString(row-1, s.Rows[row].Chars)
	s.DeleteRow(row)
	return row - 1, newCol
}

// IsBinary reports whether the first KiB of data contains a NUL byte,
// in which case the file is refused.
func IsBinary(data []byte) bool {
	limit := len(data)
	if limit > 1024 {
		limit = 1024
	}
	for _, b := range data[:limit] {
		if b == 0 {
			return true
		}
	}
	return false
}

// RowsToBytes concatenates row raw bytes with '\n' separators, the byte
// sequence save writes to disk.
func (s *Store) RowsToBytes() []byte {
	total := 0
	for _, r := range s.Rows {
		total += len(r.Chars) + 1
	}
	out := make([]byte, 0, total)
	for i, r := range s.Rows {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, r.Chars...)
	}
	return out
}
