// Package search implements incremental substring search, reified as a
// state machine whose events are delivered by the outer event loop
// rather than an inner terminal read loop.
package search

import (
	"bytes"

	"github.com/shakfu/loki/internal/row"
)

// Direction is the search direction: +1 forward, -1 backward.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// Cursor mirrors undo.Cursor without importing it, keeping this package
// free of a dependency on the undo journal.
type Cursor struct {
	Row, Col int
}

// Match is the current hit, or Found == false when there is none.
type Match struct {
	Found bool
	Row   int
	Col   int
}

// savedHighlight restores a row's highlight array after a transient MATCH
// overwrite. It assumes the syntax engine has not cascaded new state onto
// the row since the save.
type savedHighlight struct {
	row int
	hl  []row.Highlight
}

// State is the live incremental-search prompt state.
type State struct {
	Query       []byte
	LastRow     int // -1 for "none"
	Direction   Direction
	SavedCursor Cursor
	Current     Match
	saved       *savedHighlight
}

// Begin opens the prompt, saving the original cursor for ESC/cancel.
func Begin(cursor Cursor) *State {
	return &State{LastRow: -1, Direction: Forward, SavedCursor: cursor}
}

// restoreSavedHighlight un-does the previous transient MATCH overwrite.
func (s *State) restoreSavedHighlight(rows []row.Row) {
	if s.saved == nil {
		return
	}
	if s.saved.row < len(rows) {
		copy(rows[s.saved.row].HL, s.saved.hl)
	}
	s.saved = nil
}

// Backspace shortens the query and invalidates the last match.
func (s *State) Backspace() {
	if len(s.Query) > 0 {
		s.Query = s.Query[:len(s.Query)-1]
	}
	s.LastRow = -1
}

// Type extends the query with a printable byte.
func (s *State) Type(b byte) {
	s.Query = append(s.Query, b)
}

// SetDirection sets the search direction (Right/Down = forward, Left/Up =
// backward).
func (s *State) SetDirection(d Direction) {
	s.Direction = d
}

// Step re-runs the search after any state change: starting from
// (LastRow + Direction), scanning up to len(rows) rows, wrapping
// modularly, testing each row's rendered bytes for a substring match.
// Case-sensitive, not word-bounded.
func (s *State) Step(rows []row.Row) Match {
	s.restoreSavedHighlight(rows)
	s.Current = Match{}

	if len(s.Query) == 0 || s.Direction == 0 || len(rows) == 0 {
		return s.Current
	}

	current := s.LastRow
	for i := 0; i < len(rows); i++ {
		current += int(s.Direction)
		if current < 0 {
			current = len(rows) - 1
		} else if current >= len(rows) {
			current = 0
		}
		idx := bytes.Index(rows[current].Render, s.Query)
		if idx < 0 {
			continue
		}
		s.LastRow = current
		col := rows[current].RxToCx(idx)

		saved := make([]row.Highlight, len(rows[current].HL))
		copy(saved, rows[current].HL)
		s.saved = &savedHighlight{row: current, hl: saved}

		for k := idx; k < idx+len(s.Query) && k < len(rows[current].HL); k++ {
			rows[current].HL[k] = row.Match
		}

		s.Current = Match{Found: true, Row: current, Col: col}
		return s.Current
	}
	return s.Current
}

// Cancel restores the saved highlight and reports the original cursor to
// return to.
func (s *State) Cancel(rows []row.Row) Cursor {
	s.restoreSavedHighlight(rows)
	return s.SavedCursor
}

// Accept restores the saved highlight (leaving the row's normal syntax
// highlighting intact) and reports the current match cursor, or the
// original cursor if there was never a match.
func (s *State) Accept(rows []row.Row) Cursor {
	s.restoreSavedHighlight(rows)
	if s.Current.Found {
		return Cursor{Row: s.Current.Row, Col: s.Current.Col}
	}
	return s.SavedCursor
}
