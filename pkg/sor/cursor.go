package sor

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// cursor is a bounds-checked little-endian reader over an archive buffer.
// It never clamps: any read crossing the end of the buffer fails with
// ErrOutOfRange and the caller decides whether to recover.
type cursor struct {
	buf []byte
}

func (c cursor) len() int {
	return len(c.buf)
}

func (c cursor) u8(off int) (uint8, error) {
	if off < 0 || off+1 > len(c.buf) {
		return 0, errors.Wrapf(ErrOutOfRange, "u8 at offset %d (buffer %d)", off, len(c.buf))
	}
	return c.buf[off], nil
}

func (c cursor) u16(off int) (uint16, error) {
	if off < 0 || off+2 > len(c.buf) {
		return 0, errors.Wrapf(ErrOutOfRange, "u16 at offset %d (buffer %d)", off, len(c.buf))
	}
	return binary.LittleEndian.Uint16(c.buf[off:]), nil
}

func (c cursor) u32(off int) (uint32, error) {
	if off < 0 || off+4 > len(c.buf) {
		return 0, errors.Wrapf(ErrOutOfRange, "u32 at offset %d (buffer %d)", off, len(c.buf))
	}
	return binary.LittleEndian.Uint32(c.buf[off:]), nil
}

// slice returns a view over n bytes starting at off. The view aliases the
// archive buffer; callers retaining the bytes past the decode copy them.
func (c cursor) slice(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(c.buf) {
		return nil, errors.Wrapf(ErrOutOfRange, "slice [%d:%d] (buffer %d)", off, off+n, len(c.buf))
	}
	return c.buf[off : off+n], nil
}
