package session

import (
	"github.com/shakfu/loki/internal/event"
	"github.com/shakfu/loki/internal/search"
)

// newSearchState opens the interactive incremental search prompt,
// seeded with the context's current cursor so ESC can restore it.
func newSearchState(c *EditorContext) *search.State {
	return search.Begin(search.Cursor{Row: c.CY, Col: c.CX})
}

// dispatchSearch is the search sub-loop's event handler: a state
// machine whose events are delivered by the outer event loop, rather
// than an inner terminal read loop.
func (s *Session) dispatchSearch(ev event.Event) {
	c := s.cur()
	st := c.search

	switch ev.Code {
	case event.KeyBackspace, event.KeyDelete:
		st.Backspace()
	case event.KeyEscape:
		cursor := st.Cancel(c.Store.Rows)
		c.CY, c.CX = cursor.Row, cursor.Col
		c.search = nil
		c.clampCursor()
		return
	case event.KeyEnter:
		cursor := st.Accept(c.Store.Rows)
		c.CY, c.CX = cursor.Row, cursor.Col
		c.search = nil
		c.clampCursor()
		return
	case event.KeyArrowRight, event.KeyArrowDown:
		st.SetDirection(search.Forward)
	case event.KeyArrowLeft, event.KeyArrowUp:
		st.SetDirection(search.Backward)
	default:
		if len(ev.Bytes) == 1 && ev.Bytes[0] >= 32 && ev.Bytes[0] != 127 {
			st.Type(ev.Bytes[0])
		} else {
			return
		}
	}

	match := st.Step(c.Store.Rows)
	if match.Found {
		c.CY, c.CX = match.Row, match.Col
		s.scrollToCursor(c)
	} else if len(st.Query) == 0 {
		c.setStatus("Search: (empty query, no match)")
	} else {
		c.setStatus("Search: no match for %q", string(st.Query))
	}
}

// scrollToCursor adjusts RowOffset/ColOffset so the cursor's current
// position is visible on screen, the same bring-into-view rule the
// render pass otherwise applies lazily on the next frame.
func (s *Session) scrollToCursor(c *EditorContext) {
	if c.CY < c.RowOffset {
		c.RowOffset = c.CY
	}
	if c.ScreenRows > 0 && c.CY >= c.RowOffset+c.ScreenRows {
		c.RowOffset = c.CY - c.ScreenRows + 1
	}
	rx := 0
	if c.CY < len(c.Store.Rows) {
		rx = c.Store.Rows[c.CY].CxToRx(c.CX)
	}
	if rx < c.ColOffset {
		c.ColOffset = rx
	}
	if c.ScreenCols > 0 && rx >= c.ColOffset+c.ScreenCols {
		c.ColOffset = rx - c.ScreenCols + 1
	}
}
