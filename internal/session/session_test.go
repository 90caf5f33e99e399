package session_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shakfu/loki/internal/event"
	"github.com/shakfu/loki/internal/session"
)

func newTestSession() *session.Session {
	return session.New(session.Config{ScreenRows: 20, ScreenCols: 80})
}

func key(code event.Keycode) event.Event { return event.Key(code, 0) }
func ctrl(c byte) event.Event            { return event.Key(event.Keycode(c), event.ModCtrl) }

func press(t *testing.T, s *session.Session, events ...event.Event) {
	t.Helper()
	for _, e := range events {
		s.HandleEvent(e)
	}
}

func typeBytes(t *testing.T, s *session.Session, text string) {
	t.Helper()
	for _, b := range []byte(text) {
		s.HandleEvent(event.Printable(b))
	}
}

func rowText(vm session.ViewModel, i int) string {
	var sb strings.Builder
	for _, seg := range vm.Rows[i].Segments {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Insert "hello" in INSERT mode, ESC, undo, redo -- the insert-undo-redo
// scenario.
func TestInsertUndoRedo(t *testing.T) {
	s := newTestSession()

	typeBytes(t, s, "i")
	typeBytes(t, s, "hello")
	press(t, s, key(event.KeyEscape))

	vm := s.Snapshot()
	if rowText(vm, 0) != "hello" {
		t.Fatalf("Expected row %q, got %q", "hello", rowText(vm, 0))
	}
	if vm.Status.Mode != "normal" {
		t.Fatalf("Expected normal mode after ESC, got %q", vm.Status.Mode)
	}

	typeBytes(t, s, "u")
	vm = s.Snapshot()
	if rowText(vm, 0) != "" {
		t.Errorf("Expected empty row after undo, got %q", rowText(vm, 0))
	}
	if vm.Cursor.FileRow != 0 || vm.Cursor.FileCol != 0 {
		t.Errorf("Expected cursor (0,0), got (%d,%d)", vm.Cursor.FileRow, vm.Cursor.FileCol)
	}

	press(t, s, ctrl('r'))
	vm = s.Snapshot()
	if rowText(vm, 0) != "hello" {
		t.Errorf("Expected row restored after redo, got %q", rowText(vm, 0))
	}
	if vm.Cursor.FileRow != 0 || vm.Cursor.FileCol != 5 {
		t.Errorf("Expected cursor (0,5), got (%d,%d)", vm.Cursor.FileRow, vm.Cursor.FileCol)
	}
}

// Enter between 'b' and 'c' of "abcd" splits the row.
func TestNewlineSplit(t *testing.T) {
	s := newTestSession()
	typeBytes(t, s, "i")
	typeBytes(t, s, "abcd")
	press(t, s, key(event.KeyArrowLeft), key(event.KeyArrowLeft))
	press(t, s, key(event.KeyEnter))

	vm := s.Snapshot()
	if rowText(vm, 0) != "ab" || rowText(vm, 1) != "cd" {
		t.Errorf("Expected rows ab/cd, got %q/%q", rowText(vm, 0), rowText(vm, 1))
	}
	if vm.Cursor.FileRow != 1 || vm.Cursor.FileCol != 0 {
		t.Errorf("Expected cursor (1,0), got (%d,%d)", vm.Cursor.FileRow, vm.Cursor.FileCol)
	}
	if !vm.Status.Dirty {
		t.Error("Expected the buffer to be dirty")
	}
}

// Searching wraps modularly and ESC restores the cursor.
func TestSearchWrapThroughEvents(t *testing.T) {
	s := newTestSession()
	path := writeTempFile(t, "alpha\nbeta\nalpha\n")
	if err := s.Open(path); err != nil {
		t.Fatal(err)
	}
	typeBytes(t, s, "j") // cursor to row 1

	press(t, s, ctrl('f'))
	typeBytes(t, s, "alpha")
	press(t, s, key(event.KeyArrowDown))
	vm := s.Snapshot()
	if vm.Cursor.FileRow != 2 || vm.Cursor.FileCol != 0 {
		t.Errorf("Expected match at (2,0), got (%d,%d)", vm.Cursor.FileRow, vm.Cursor.FileCol)
	}

	press(t, s, key(event.KeyArrowDown))
	vm = s.Snapshot()
	if vm.Cursor.FileRow != 0 {
		t.Errorf("Expected wrapped match at row 0, got %d", vm.Cursor.FileRow)
	}

	press(t, s, key(event.KeyEscape))
	vm = s.Snapshot()
	if vm.Cursor.FileRow != 1 {
		t.Errorf("Expected cursor restored to row 1, got %d", vm.Cursor.FileRow)
	}
}

// A snapshot owns its bytes: editing afterward must not change it.
func TestSnapshotStability(t *testing.T) {
	s := newTestSession()
	path := writeTempFile(t, "hello\nworld\n")
	if err := s.Open(path); err != nil {
		t.Fatal(err)
	}

	before := s.Snapshot()
	if rowText(before, 0) != "hello" {
		t.Fatalf("Expected %q, got %q", "hello", rowText(before, 0))
	}

	// Delete row 0 through the modal interface.
	typeBytes(t, s, "i")
	for i := 0; i < 6; i++ {
		press(t, s, key(event.KeyDelete))
	}

	after := s.Snapshot()
	if rowText(after, 0) != "world" {
		t.Fatalf("Expected the edit to apply, got %q", rowText(after, 0))
	}
	if rowText(before, 0) != "hello" {
		t.Errorf("Expected the old snapshot unchanged, got %q", rowText(before, 0))
	}
}

type fakeClipboard struct {
	text string
}

func (f *fakeClipboard) ClipboardCopy(text []byte) error {
	f.text = string(text)
	return nil
}

func TestVisualYank(t *testing.T) {
	s := newTestSession()
	clip := &fakeClipboard{}
	s.SetClipboard(clip)

	typeBytes(t, s, "i")
	typeBytes(t, s, "hello")
	press(t, s, key(event.KeyEscape), key(event.KeyHome))

	typeBytes(t, s, "v")
	typeBytes(t, s, "lll")
	typeBytes(t, s, "y")

	if clip.text != "hel" {
		t.Errorf("Expected yanked text %q, got %q", "hel", clip.text)
	}
	vm := s.Snapshot()
	if vm.Status.Mode != "normal" {
		t.Errorf("Expected normal mode after yank, got %q", vm.Status.Mode)
	}
	if rowText(vm, 0) != "hello" {
		t.Errorf("Expected the row untouched, got %q", rowText(vm, 0))
	}
}

func TestVisualDeleteUndoesAtomically(t *testing.T) {
	s := newTestSession()
	typeBytes(t, s, "i")
	typeBytes(t, s, "hello")
	press(t, s, key(event.KeyEscape), key(event.KeyHome))

	typeBytes(t, s, "v")
	typeBytes(t, s, "lll")
	typeBytes(t, s, "x")

	vm := s.Snapshot()
	if rowText(vm, 0) != "lo" {
		t.Fatalf("Expected %q after delete, got %q", "lo", rowText(vm, 0))
	}

	typeBytes(t, s, "u")
	vm = s.Snapshot()
	if rowText(vm, 0) != "hello" {
		t.Errorf("Expected one undo to restore the selection, got %q", rowText(vm, 0))
	}
}

func TestCommandLineQuit(t *testing.T) {
	s := newTestSession()
	typeBytes(t, s, ":")
	vm := s.Snapshot()
	if vm.Status.Mode != "command" {
		t.Fatalf("Expected command mode, got %q", vm.Status.Mode)
	}
	typeBytes(t, s, "q")
	res := s.HandleEvent(key(event.KeyEnter))
	if !res.Quit {
		t.Error("Expected :q on a clean buffer to quit")
	}
}

func TestCommandLineSetOption(t *testing.T) {
	s := newTestSession()
	vm := s.Snapshot()
	if vm.GutterWidth != 0 {
		t.Fatalf("Expected no gutter by default, got %d", vm.GutterWidth)
	}
	typeBytes(t, s, ":")
	typeBytes(t, s, "set nu")
	press(t, s, key(event.KeyEnter))

	vm = s.Snapshot()
	if vm.GutterWidth == 0 {
		t.Error("Expected a line-number gutter after :set nu")
	}
}

func TestDirtyQuitNeedsThreePresses(t *testing.T) {
	s := newTestSession()
	typeBytes(t, s, "i")
	typeBytes(t, s, "x")
	press(t, s, key(event.KeyEscape))

	r1 := s.HandleEvent(ctrl('q'))
	r2 := s.HandleEvent(ctrl('q'))
	if r1.Quit || r2.Quit {
		t.Error("Expected the first two presses to only warn")
	}
	r3 := s.HandleEvent(ctrl('q'))
	if !r3.Quit {
		t.Error("Expected the third press to quit")
	}
}

func TestBufferCreateSwitchClose(t *testing.T) {
	s := newTestSession()
	typeBytes(t, s, "i")
	typeBytes(t, s, "one")
	press(t, s, key(event.KeyEscape))

	press(t, s, ctrl('t'))
	vm := s.Snapshot()
	if len(vm.Tabs) != 2 {
		t.Fatalf("Expected 2 tabs, got %d", len(vm.Tabs))
	}
	if rowText(vm, 0) != "" {
		t.Errorf("Expected the new buffer empty, got %q", rowText(vm, 0))
	}

	// Ctrl-X n cycles back to the first buffer.
	press(t, s, ctrl('x'))
	typeBytes(t, s, "n")
	vm = s.Snapshot()
	if rowText(vm, 0) != "one" {
		t.Errorf("Expected to switch back to the first buffer, got %q", rowText(vm, 0))
	}

	// Soft-closing the dirty buffer fails; force-close succeeds.
	press(t, s, ctrl('x'))
	typeBytes(t, s, "k")
	vm = s.Snapshot()
	if len(vm.Tabs) != 2 {
		t.Errorf("Expected the dirty buffer to survive a soft close, got %d tabs", len(vm.Tabs))
	}
	press(t, s, ctrl('x'))
	typeBytes(t, s, "K")
	vm = s.Snapshot()
	if len(vm.Tabs) != 1 {
		t.Errorf("Expected force close to succeed, got %d tabs", len(vm.Tabs))
	}
}

func TestOpenRejectsBinary(t *testing.T) {
	s := newTestSession()
	path := filepath.Join(t.TempDir(), "bin")
	if err := os.WriteFile(path, []byte{'a', 0, 'b'}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Open(path); err == nil {
		t.Error("Expected a binary file to be refused")
	}
}

func TestSaveReportsAndCleans(t *testing.T) {
	s := newTestSession()
	typeBytes(t, s, "i")
	typeBytes(t, s, "data")
	press(t, s, key(event.KeyEscape))

	path := filepath.Join(t.TempDir(), "out.txt")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Errorf("Expected file contents %q, got %q", "data", string(got))
	}
	if s.Snapshot().Status.Dirty {
		t.Error("Expected the buffer clean after save")
	}
}

func TestSaveWithoutFilenameFails(t *testing.T) {
	s := newTestSession()
	if err := s.Save(""); err == nil {
		t.Error("Expected save without a filename to fail")
	}
}

func TestUnrecognizedKeySetsMessage(t *testing.T) {
	s := newTestSession()
	typeBytes(t, s, "Z")
	vm := s.Snapshot()
	if !vm.MessageVisible {
		t.Error("Expected a transient status message for an unrecognized key")
	}
}

func TestResizeEvent(t *testing.T) {
	s := newTestSession()
	s.HandleEvent(event.Resize(10, 40))
	vm := s.Snapshot()
	if vm.ScreenRows != 10 || vm.ScreenCols != 40 {
		t.Errorf("Expected 10x40, got %dx%d", vm.ScreenRows, vm.ScreenCols)
	}
	if len(vm.Rows) != 10 {
		t.Errorf("Expected 10 row views, got %d", len(vm.Rows))
	}
}

func TestGotoLineClamped(t *testing.T) {
	s := newTestSession()
	path := writeTempFile(t, "a\nb\nc\n")
	if err := s.Open(path); err != nil {
		t.Fatal(err)
	}
	typeBytes(t, s, ":")
	typeBytes(t, s, "goto 99")
	press(t, s, key(event.KeyEnter))

	vm := s.Snapshot()
	if vm.Cursor.FileRow != 2 {
		t.Errorf("Expected the cursor clamped to the last row, got %d", vm.Cursor.FileRow)
	}
}

func TestWordWrapSnapshot(t *testing.T) {
	s := session.New(session.Config{ScreenRows: 5, ScreenCols: 4, WordWrap: true})
	typeBytes(t, s, "i")
	typeBytes(t, s, "abcdefghij")
	press(t, s, key(event.KeyEscape))

	vm := s.Snapshot()
	if rowText(vm, 0) != "abcd" || rowText(vm, 1) != "efgh" || rowText(vm, 2) != "ij" {
		t.Errorf("Expected the row wrapped across three screen rows, got %q/%q/%q",
			rowText(vm, 0), rowText(vm, 1), rowText(vm, 2))
	}
	if vm.Rows[1].FileRow != 0 {
		t.Errorf("Expected the continuation row to reference file row 0, got %d", vm.Rows[1].FileRow)
	}
}

func TestInsertModeShiftArrowSelects(t *testing.T) {
	s := newTestSession()
	typeBytes(t, s, "i")
	typeBytes(t, s, "abc")
	press(t, s, key(event.KeyHome))

	press(t, s, event.Key(event.KeyArrowRight, event.ModShift))
	press(t, s, event.Key(event.KeyArrowRight, event.ModShift))

	vm := s.Snapshot()
	segs := vm.Rows[0].Segments
	if len(segs) < 2 || !segs[0].Selected {
		t.Fatalf("Expected a selection over the first two cells, got %+v", segs)
	}
	if segs[0].Text != "ab" {
		t.Errorf("Expected selected text %q, got %q", "ab", segs[0].Text)
	}
}

func TestSelectionSegmentsInSnapshot(t *testing.T) {
	s := newTestSession()
	typeBytes(t, s, "i")
	typeBytes(t, s, "hello")
	press(t, s, key(event.KeyEscape), key(event.KeyHome))
	typeBytes(t, s, "v")
	typeBytes(t, s, "ll")

	vm := s.Snapshot()
	segs := vm.Rows[0].Segments
	if len(segs) < 2 {
		t.Fatalf("Expected the selection to split segments, got %d", len(segs))
	}
	if !segs[0].Selected {
		t.Error("Expected the leading segment selected")
	}
	if segs[len(segs)-1].Selected {
		t.Error("Expected the trailing segment unselected")
	}
}
