// Package serialize implements the versioned binary snapshot format: a
// little-endian layout for a document's (filename, dirty, rows),
// independent of any runtime state (undo, indent, highlights,
// scripting).
package serialize

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/shakfu/loki/internal/row"
)

// Magic is the format's 4-byte ASCII identifier.
const Magic = "LOKI"

// Version is the only format version this package writes and the
// highest one it accepts when reading.
const Version = 1

const dirtyBit = 1 << 0

// Encode serializes store's (filename, dirty, rows):
//
//	magic: 4 bytes ("LOKI")
//	version: 2 bytes
//	filename_len: 4 bytes
//	filename: filename_len bytes
//	flags: 1 byte (bit 0 = dirty)
//	row_count: 4 bytes
//	row_count x [ row_size: 4 bytes, row_bytes: row_size bytes ]
func Encode(s *row.Store) []byte {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	writeUint16(&buf, Version)

	writeUint32(&buf, uint32(len(s.Filename)))
	buf.WriteString(s.Filename)

	var flags byte
	if s.Dirty > 0 {
		flags |= dirtyBit
	}
	buf.WriteByte(flags)

	writeUint32(&buf, uint32(len(s.Rows)))
	for _, r := range s.Rows {
		writeUint32(&buf, uint32(len(r.Chars)))
		buf.Write(r.Chars)
	}
	return buf.Bytes()
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// Decode validates and parses data into a fresh row.Store. On any
// bounds violation or future version it returns an error and an empty
// store, never a partially-filled one.
func Decode(data []byte) (*row.Store, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, 4)
	if n, err := r.Read(magic); err != nil || n != 4 || string(magic) != Magic {
		return empty(), fmt.Errorf("serialize: bad magic")
	}

	version, err := readUint16(r)
	if err != nil {
		return empty(), fmt.Errorf("serialize: truncated version")
	}
	if version > Version {
		return empty(), fmt.Errorf("serialize: unsupported version %d", version)
	}

	filenameLen, err := readUint32(r)
	if err != nil {
		return empty(), fmt.Errorf("serialize: truncated filename length")
	}
	if int64(filenameLen) > int64(r.Len()) {
		return empty(), fmt.Errorf("serialize: filename length out of bounds")
	}
	filenameBytes := make([]byte, filenameLen)
	if _, err := readFull(r, filenameBytes); err != nil {
		return empty(), fmt.Errorf("serialize: truncated filename")
	}

	flags, err := r.ReadByte()
	if err != nil {
		return empty(), fmt.Errorf("serialize: truncated flags")
	}

	rowCount, err := readUint32(r)
	if err != nil {
		return empty(), fmt.Errorf("serialize: truncated row count")
	}
	// Bound row count against remaining bytes: every row costs at least
	// the 4-byte size prefix.
	if int64(rowCount)*4 > int64(r.Len()) {
		return empty(), fmt.Errorf("serialize: row count out of bounds")
	}

	s := &row.Store{Filename: string(filenameBytes)}
	s.Rows = make([]row.Row, 0, rowCount)
	for i := uint32(0); i < rowCount; i++ {
		size, err := readUint32(r)
		if err != nil {
			return empty(), fmt.Errorf("serialize: truncated row %d size", i)
		}
		if int64(size) > int64(r.Len()) {
			return empty(), fmt.Errorf("serialize: row %d size out of bounds", i)
		}
		chars := make([]byte, size)
		if _, err := readFull(r, chars); err != nil {
			return empty(), fmt.Errorf("serialize: truncated row %d bytes", i)
		}
		s.InsertRow(len(s.Rows), chars)
	}
	if len(s.Rows) == 0 {
		s.Rows = []row.Row{{}}
	}
	if flags&dirtyBit != 0 {
		s.Dirty = 1
	} else {
		s.Dirty = 0
	}
	return s, nil
}

func empty() *row.Store {
	s := &row.Store{}
	s.Rows = []row.Row{{}}
	return s
}

func readUint16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := r.Read(buf)
	if err != nil {
		return n, err
	}
	if n != len(buf) {
		return n, fmt.Errorf("serialize: short read")
	}
	return n, nil
}
