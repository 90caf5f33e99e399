package serialize

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/shakfu/loki/internal/row"
)

func docWith(filename string, lines ...string) *row.Store {
	s := &row.Store{Filename: filename}
	for _, l := range lines {
		s.InsertRow(len(s.Rows), []byte(l))
	}
	s.Dirty = 0
	return s
}

func TestEncodeLayout(t *testing.T) {
	s := docWith("x.txt", "foo", "")
	data := Encode(s)

	if string(data[:4]) != "LOKI" {
		t.Errorf("Expected magic %q, got %q", "LOKI", string(data[:4]))
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != 1 {
		t.Errorf("Expected version 1, got %d", v)
	}
	if l := binary.LittleEndian.Uint32(data[6:10]); l != 5 {
		t.Errorf("Expected filename length 5, got %d", l)
	}
	if string(data[10:15]) != "x.txt" {
		t.Errorf("Expected filename %q, got %q", "x.txt", string(data[10:15]))
	}
	if data[15] != 0 {
		t.Errorf("Expected clean dirty flag, got %d", data[15])
	}
	if n := binary.LittleEndian.Uint32(data[16:20]); n != 2 {
		t.Errorf("Expected row count 2, got %d", n)
	}
	if sz := binary.LittleEndian.Uint32(data[20:24]); sz != 3 {
		t.Errorf("Expected row 0 size 3, got %d", sz)
	}
	if sz := binary.LittleEndian.Uint32(data[27:31]); sz != 0 {
		t.Errorf("Expected row 1 size 0, got %d", sz)
	}
}

func TestRoundTrip(t *testing.T) {
	s := docWith("x.txt", "foo", "")
	out, err := Decode(Encode(s))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.Filename != "x.txt" {
		t.Errorf("Expected filename %q, got %q", "x.txt", out.Filename)
	}
	if out.Dirty != 0 {
		t.Errorf("Expected clean document, dirty %d", out.Dirty)
	}
	if len(out.Rows) != 2 || string(out.Rows[0].Chars) != "foo" || len(out.Rows[1].Chars) != 0 {
		t.Errorf("Expected rows restored, got %d rows", len(out.Rows))
	}
}

func TestDirtyFlagRoundTrip(t *testing.T) {
	s := docWith("", "x")
	s.Dirty = 3
	out, err := Decode(Encode(s))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.Dirty == 0 {
		t.Error("Expected the dirty flag to survive")
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode([]byte("NOPExxxxxxxx")); err == nil {
		t.Error("Expected bad magic to be rejected")
	}
}

func TestDecodeRejectsFutureVersion(t *testing.T) {
	s := docWith("", "x")
	data := Encode(s)
	binary.LittleEndian.PutUint16(data[4:6], 99)
	if _, err := Decode(data); err == nil {
		t.Error("Expected a future version to be rejected")
	}
}

func TestDecodeTruncatedLeavesEmptyModel(t *testing.T) {
	s := docWith("name.txt", "hello", "world")
	data := Encode(s)

	out, err := Decode(data[:len(data)-3])
	if err == nil {
		t.Fatal("Expected truncated data to be rejected")
	}
	// The destination model is left empty on partial data.
	if out.Filename != "" || len(out.Rows) != 1 || len(out.Rows[0].Chars) != 0 {
		t.Errorf("Expected an empty model, got filename %q, %d rows", out.Filename, len(out.Rows))
	}
}

func TestDecodeRejectsOversizedCounts(t *testing.T) {
	s := docWith("", "x")
	data := Encode(s)
	// Claim more rows than the remaining bytes can hold. With an empty
	// filename the row count lives right after the flags byte.
	binary.LittleEndian.PutUint32(data[11:15], 1<<30)
	if _, err := Decode(data); err == nil {
		t.Error("Expected an out-of-bounds count to be rejected")
	}

	var huge bytes.Buffer
	huge.WriteString("LOKI")
	huge.Write([]byte{1, 0})
	huge.Write([]byte{255, 255, 255, 255}) // filename_len far past the payload
	if _, err := Decode(huge.Bytes()); err == nil {
		t.Error("Expected an out-of-bounds filename length to be rejected")
	}
}
