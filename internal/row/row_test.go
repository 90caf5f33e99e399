package row

import (
	"bytes"
	"testing"
)

func TestUpdateExpandsTabs(t *testing.T) {
	s := New()
	s.Rows[0].Chars = []byte("a\tb")
	s.Rows[0].update()

	// 'a' at column 0, tab expands to the next multiple of 8, then 'b'.
	expected := "a       b"
	if string(s.Rows[0].Render) != expected {
		t.Errorf("Expected render %q, got %q", expected, string(s.Rows[0].Render))
	}
	if len(s.Rows[0].HL) != len(s.Rows[0].Render) {
		t.Errorf("Expected HL length %d, got %d", len(s.Rows[0].Render), len(s.Rows[0].HL))
	}
}

func TestUpdateRendersControlBytes(t *testing.T) {
	s := New()
	s.Rows[0].Chars = []byte{1, 'x', 127}
	s.Rows[0].update()

	// Byte 1 renders as "@A", byte 127 as "?".
	expected := "@Ax?"
	if string(s.Rows[0].Render) != expected {
		t.Errorf("Expected render %q, got %q", expected, string(s.Rows[0].Render))
	}

	mask := s.Rows[0].NonPrintMask()
	want := []bool{true, true, false, true}
	for i := range want {
		if mask[i] != want[i] {
			t.Errorf("Expected mask[%d] = %v, got %v", i, want[i], mask[i])
		}
	}
}

func TestInsertCharPastEndPads(t *testing.T) {
	s := New()
	s.InsertChar(0, 0, 'a')

	// Inserting at column 5 pads the row with spaces first.
	s.InsertChar(0, 5, 'b')

	expected := "a    b"
	if string(s.Rows[0].Chars) != expected {
		t.Errorf("Expected %q, got %q", expected, string(s.Rows[0].Chars))
	}
}

func TestDeleteCharAtOrigin(t *testing.T) {
	s := New()
	s.Rows[0].Chars = []byte("x")
	s.Rows[0].update()
	dirty := s.Dirty

	// (0, 0) with col 0 and row 0 is a no-op through the cursor-delete
	// path.
	r, c := s.DeleteCharAtCursor(0, 0)
	if r != 0 || c != 0 {
		t.Errorf("Expected cursor (0,0), got (%d,%d)", r, c)
	}
	if string(s.Rows[0].Chars) != "x" {
		t.Errorf("Expected row unchanged, got %q", string(s.Rows[0].Chars))
	}
	if s.Dirty != dirty {
		t.Errorf("Expected dirty unchanged, got %d", s.Dirty)
	}
}

func TestInsertNewlineSplitsRow(t *testing.T) {
	s := New()
	s.Rows[0].Chars = []byte("abcd")
	s.Rows[0].update()

	r, c := s.InsertNewline(0, 2)
	if r != 1 || c != 0 {
		t.Errorf("Expected cursor (1,0), got (%d,%d)", r, c)
	}
	if string(s.Rows[0].Chars) != "ab" {
		t.Errorf("Expected row 0 %q, got %q", "ab", string(s.Rows[0].Chars))
	}
	if string(s.Rows[1].Chars) != "cd" {
		t.Errorf("Expected row 1 %q, got %q", "cd", string(s.Rows[1].Chars))
	}
	if s.Dirty < 1 {
		t.Errorf("Expected dirty >= 1, got %d", s.Dirty)
	}
}

func TestDeleteCharAtCursorMergesRows(t *testing.T) {
	s := New()
	s.Rows[0].Chars = []byte("ab")
	s.Rows[0].update()
	s.InsertRow(1, []byte("cd"))

	r, c := s.DeleteCharAtCursor(1, 0)
	if r != 0 || c != 2 {
		t.Errorf("Expected cursor (0,2), got (%d,%d)", r, c)
	}
	if len(s.Rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(s.Rows))
	}
	if string(s.Rows[0].Chars) != "abcd" {
		t.Errorf("Expected %q, got %q", "abcd", string(s.Rows[0].Chars))
	}
}

func TestMutationsIncrementDirty(t *testing.T) {
	s := New()
	before := s.Dirty
	s.InsertChar(0, 0, 'a')
	if s.Dirty <= before {
		t.Errorf("Expected dirty to increase, got %d -> %d", before, s.Dirty)
	}
	before = s.Dirty
	s.DeleteChar(0, 0)
	if s.Dirty <= before {
		t.Errorf("Expected dirty to increase, got %d -> %d", before, s.Dirty)
	}
}

func TestRowIndexTracksPosition(t *testing.T) {
	s := New()
	s.InsertRow(1, []byte("one"))
	s.InsertRow(1, []byte("two"))
	s.DeleteRow(0)
	for i := range s.Rows {
		if s.Rows[i].Index != i {
			t.Errorf("Expected row %d index %d, got %d", i, i, s.Rows[i].Index)
		}
	}
}

func TestCxRxRoundTrip(t *testing.T) {
	r := Row{Chars: []byte("\tab")}
	r.update()

	rx := r.CxToRx(1) // past the tab
	if rx != 8 {
		t.Errorf("Expected rx 8, got %d", rx)
	}
	if cx := r.RxToCx(rx); cx != 1 {
		t.Errorf("Expected cx 1, got %d", cx)
	}
}

func TestWrapPoints(t *testing.T) {
	r := Row{Chars: []byte("abcdefghij")}
	r.update()

	points := r.WrapPoints(4)
	want := []int{0, 4, 8}
	if len(points) != len(want) {
		t.Fatalf("Expected %v, got %v", want, points)
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("Expected point %d at %d, got %d", i, want[i], points[i])
		}
	}

	// A row that fits stays on one line.
	if points := r.WrapPoints(20); len(points) != 1 || points[0] != 0 {
		t.Errorf("Expected a single wrap point, got %v", points)
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary([]byte("plain text\nwith lines\n")) {
		t.Error("Expected text to not be detected as binary")
	}
	if !IsBinary([]byte{'a', 0, 'b'}) {
		t.Error("Expected NUL byte to be detected as binary")
	}
	// NUL past the first KiB is not inspected.
	big := bytes.Repeat([]byte{'x'}, 2048)
	big[1500] = 0
	if IsBinary(big) {
		t.Error("Expected NUL past 1 KiB to be ignored")
	}
}

func TestRowsToBytes(t *testing.T) {
	s := New()
	s.Rows[0].Chars = []byte("foo")
	s.InsertRow(1, []byte("bar"))

	expected := "foo\nbar"
	if string(s.RowsToBytes()) != expected {
		t.Errorf("Expected %q, got %q", expected, string(s.RowsToBytes()))
	}
}
