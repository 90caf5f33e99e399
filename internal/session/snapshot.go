package session

import (
	"time"

	"github.com/shakfu/loki/internal/row"
	"github.com/shakfu/loki/internal/selection"
)

// Snapshot deep-copies everything a renderer needs for one frame: every
// string here owns its bytes, and mutating the editor afterward never
// alters the returned value.
func (s *Session) Snapshot() ViewModel {
	c := s.cur()
	if c == nil {
		return ViewModel{}
	}
	now := time.Now()

	vm := ViewModel{
		ScreenRows:  c.ScreenRows,
		ScreenCols:  c.ScreenCols,
		GutterWidth: gutterWidth(c),
		Tabs:        s.tabSnapshot(),
		Status:      s.statusSnapshot(c),
		REPL:        s.replSnapshot(c),
	}

	if c.message.Live(now) {
		vm.Message = c.message.Text
		vm.MessageVisible = true
	}

	if c.overlay != nil {
		overlaySnapshot(c.overlay, &vm)
		return vm
	}

	vm.Rows = make([]RowView, 0, c.ScreenRows)
	if c.WordWrap {
		appendWrappedRows(c, &vm)
	} else {
		for i := 0; i < c.ScreenRows; i++ {
			fileRow := c.RowOffset + i
			if fileRow >= len(c.Store.Rows) {
				vm.Rows = append(vm.Rows, RowView{FileRow: -1, Empty: true})
				continue
			}
			vm.Rows = append(vm.Rows, rowView(c, fileRow))
		}
	}

	vm.Cursor = cursorInfo(c)
	return vm
}

// appendWrappedRows lays each document row out across as many screen
// rows as its rendered width needs, instead of clipping at ColOffset.
func appendWrappedRows(c *EditorContext, vm *ViewModel) {
	width := c.ScreenCols - vm.GutterWidth
	if width < 1 {
		width = 1
	}
	for fileRow := c.RowOffset; len(vm.Rows) < c.ScreenRows; fileRow++ {
		if fileRow >= len(c.Store.Rows) {
			vm.Rows = append(vm.Rows, RowView{FileRow: -1, Empty: true})
			continue
		}
		r := &c.Store.Rows[fileRow]
		points := r.WrapPoints(width)
		for i, start := range points {
			if len(vm.Rows) >= c.ScreenRows {
				return
			}
			end := len(r.Render)
			if i+1 < len(points) {
				end = points[i+1]
			}
			vm.Rows = append(vm.Rows, rowViewRange(c, fileRow, start, end))
		}
	}
}

// overlaySnapshot renders a full-screen overlay (the file explorer or
// the help screen) through the same ViewModel.Rows/Status fields the
// document uses, so no separate renderer contract is needed.
func overlaySnapshot(ov *overlayState, vm *ViewModel) {
	lines := ov.lines()
	vm.Rows = make([]RowView, 0, len(lines))
	for i, line := range lines {
		selected := ov.kind == overlayExplorer && i == ov.selected
		vm.Rows = append(vm.Rows, RowView{
			FileRow:  i,
			Segments: []Segment{{Text: line, Selected: selected}},
		})
	}
	vm.Status = StatusInfo{Filename: ov.title(), TotalRows: len(lines)}
	vm.Cursor = CursorInfo{}
}

func gutterWidth(c *EditorContext) int {
	if !c.LineNumbers {
		return 0
	}
	digits := 1
	for n := len(c.Store.Rows); n >= 10; n /= 10 {
		digits++
	}
	return digits + 1
}

func (s *Session) tabSnapshot() []TabInfo {
	entries := s.buffers.List()
	out := make([]TabInfo, 0, len(entries))
	for _, e := range entries {
		ctx := e.Ctx.(*EditorContext)
		label := ctx.Store.Filename
		if label == "" {
			label = "[No Name]"
		}
		out = append(out, TabInfo{
			ID:       e.ID,
			Label:    label,
			Modified: ctx.Dirty(),
			Current:  e.Current,
		})
	}
	return out
}

func (s *Session) statusSnapshot(c *EditorContext) StatusInfo {
	filetype := "no ft"
	if c.Syntax != nil && c.Syntax.Grammar != nil {
		filetype = c.Syntax.Grammar.Name
	}
	return StatusInfo{
		Filename:  c.Store.Filename,
		Dirty:     c.Dirty(),
		Mode:      c.mode.String(),
		Filetype:  filetype,
		Line:      c.CY + 1,
		TotalRows: len(c.Store.Rows),
	}
}

func (s *Session) replSnapshot(c *EditorContext) ReplState {
	const logCap = 100
	logCopy := append([]string(nil), c.replLog...)
	return ReplState{
		Active: c.replActive,
		Prompt: "> ",
		Input:  string(c.replInput),
		Log:    logCopy,
		Cap:    logCap,
	}
}

// rowView builds one visible row's segment array, clipped at the
// horizontal scroll offset.
func rowView(c *EditorContext, fileRow int) RowView {
	return rowViewRange(c, fileRow, c.ColOffset, len(c.Store.Rows[fileRow].Render))
}

// rowViewRange builds the segment array for render bytes [start, end): a
// maximal run of rendered bytes sharing one highlight class and
// selection bit per segment, capped at maxSegmentsPerRow -- overflow
// truncates the row right-side rather than producing an inconsistent
// segment.
func rowViewRange(c *EditorContext, fileRow, start, end int) RowView {
	r := &c.Store.Rows[fileRow]
	render := r.Render
	if end > len(render) {
		end = len(render)
	}
	if start > end {
		start = end
	}

	rv := RowView{FileRow: fileRow}
	if start >= end {
		return rv
	}

	var segs []Segment
	segStart := start
	curClass := r.HL[start]
	curSel := cellSelected(c, r, fileRow, start)

	flush := func(to int) {
		if len(segs) >= maxSegmentsPerRow {
			return
		}
		segs = append(segs, Segment{
			Text:     string(render[segStart:to]),
			Class:    curClass,
			Selected: curSel,
		})
	}

	for i := start + 1; i < end; i++ {
		cls := r.HL[i]
		sel := cellSelected(c, r, fileRow, i)
		if cls != curClass || sel != curSel {
			flush(i)
			if len(segs) >= maxSegmentsPerRow {
				segStart = i
				break
			}
			segStart = i
			curClass = cls
			curSel = sel
		}
	}
	if len(segs) < maxSegmentsPerRow && segStart < end {
		flush(end)
	}

	rv.Segments = segs
	return rv
}

func cellSelected(c *EditorContext, r *row.Row, fileRow, renderCol int) bool {
	if !c.Sel.Active {
		return false
	}
	col := r.RxToCx(renderCol)
	return c.Sel.Contains(selection.Cell{Row: fileRow, Col: col})
}

func cursorInfo(c *EditorContext) CursorInfo {
	screenRow := c.CY - c.RowOffset
	rx := 0
	if c.CY < len(c.Store.Rows) {
		rx = c.Store.Rows[c.CY].CxToRx(c.CX)
	}
	screenCol := rx - c.ColOffset
	visible := screenRow >= 0 && screenRow < c.ScreenRows && screenCol >= 0 && screenCol < c.ScreenCols
	return CursorInfo{
		ScreenRow: screenRow,
		ScreenCol: screenCol,
		FileRow:   c.CY,
		FileCol:   c.CX,
		Visible:   visible,
	}
}
