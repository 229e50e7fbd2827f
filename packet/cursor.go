package packet

import (
	"encoding/binary"
	"errors"
)

var (
	errShortBuffer = errors.New("read past end of buffer")

	// ErrBufferFull is returned when a write does not fit in the remaining capacity of a Cursor.
	ErrBufferFull = errors.New("buffer full")
)

// Cursor is a bounds-checked read/write head over a fixed byte slice.
// The slice is never grown. Copying a Cursor yields an independent head
// over the same backing buffer.
type Cursor struct {
	buf []byte
	off int
}

func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Len returns the number of bytes left between the head and the end of the buffer.
func (c *Cursor) Len() int { return len(c.buf) - c.off }

func (c *Cursor) Offset() int { return c.off }

// Bytes returns the unread part of the buffer without advancing.
func (c *Cursor) Bytes() []byte { return c.buf[c.off:] }

func (c *Cursor) ReadU8() (uint8, error) {
	if c.Len() < 1 {
		return 0, errShortBuffer
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

func (c *Cursor) ReadBE16() (uint16, error) {
	if c.Len() < 2 {
		return 0, errShortBuffer
	}
	v := binary.BigEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

func (c *Cursor) ReadBE32() (uint32, error) {
	if c.Len() < 4 {
		return 0, errShortBuffer
	}
	v := binary.BigEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

// ReadBytes returns the next n bytes. The result aliases the backing buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.Len() < n {
		return nil, errShortBuffer
	}
	v := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return v, nil
}

func (c *Cursor) Skip(n int) error {
	_, err := c.ReadBytes(n)
	return err
}

// Sub returns a cursor limited to the next n bytes and advances c past them.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	b, err := c.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return &Cursor{buf: b}, nil
}

func (c *Cursor) WriteU8(v uint8) error {
	if c.Len() < 1 {
		return ErrBufferFull
	}
	c.buf[c.off] = v
	c.off++
	return nil
}

func (c *Cursor) WriteBE16(v uint16) error {
	if c.Len() < 2 {
		return ErrBufferFull
	}
	binary.BigEndian.PutUint16(c.buf[c.off:], v)
	c.off += 2
	return nil
}

func (c *Cursor) WriteBE32(v uint32) error {
	if c.Len() < 4 {
		return ErrBufferFull
	}
	binary.BigEndian.PutUint32(c.buf[c.off:], v)
	c.off += 4
	return nil
}

// Push copies b into the buffer at the head.
func (c *Cursor) Push(b []byte) error {
	if c.Len() < len(b) {
		return ErrBufferFull
	}
	c.off += copy(c.buf[c.off:], b)
	return nil
}
