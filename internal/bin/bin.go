// Package bin provides bounds-checked little-endian binary reading and
// writing over byte slices.
//
// The SAC container format stores every multi-byte field in little-endian
// order. This package supplies the small set of primitives the codec needs:
// single bytes, 16- and 32-bit unsigned integers, and bulk int16 payloads.
package bin

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrShortBuffer is returned when a read cannot complete because the
	// buffer does not hold enough bytes.
	ErrShortBuffer = errors.New("bin: buffer too short")

	// ErrNegativeSize is returned when a size parameter is negative.
	ErrNegativeSize = errors.New("bin: negative size")
)

// ByteOrder is the byte order used by the SAC container format.
var ByteOrder = binary.LittleEndian

// Reader provides little-endian binary reading from a byte slice.
// It maintains a read position and bounds-checks every operation.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrShortBuffer
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	return r.ReadByte()
}

// ReadBytes reads n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	if r.pos+n > len(r.data) {
		return nil, ErrShortBuffer
	}
	result := make([]byte, n)
	copy(result, r.data[r.pos:r.pos+n])
	r.pos += n
	return result, nil
}

// ReadUint16 reads an unsigned 16-bit integer in little-endian order.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads an unsigned 32-bit integer in little-endian order.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadInt16 reads a signed 16-bit integer in little-endian order.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt16Slice reads n consecutive little-endian int16 values.
func (r *Reader) ReadInt16Slice(n int) ([]int16, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	if r.pos+2*n > len(r.data) {
		return nil, ErrShortBuffer
	}
	result := make([]int16, n)
	for i := range result {
		result[i] = int16(ByteOrder.Uint16(r.data[r.pos+2*i:]))
	}
	r.pos += 2 * n
	return result, nil
}

// BufferWriter provides a growing buffer for little-endian binary writing.
type BufferWriter struct {
	buf []byte
}

// NewBufferWriter creates a BufferWriter with an initial capacity.
func NewBufferWriter(capacity int) *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written.
func (w *BufferWriter) Len() int {
	return len(w.buf)
}

// Bytes returns the written data.
// The returned slice is valid until the next write operation.
func (w *BufferWriter) Bytes() []byte {
	return w.buf
}

// Reset clears the buffer.
func (w *BufferWriter) Reset() {
	w.buf = w.buf[:0]
}

// WriteByte writes a single byte.
func (w *BufferWriter) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *BufferWriter) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBytes writes a byte slice.
func (w *BufferWriter) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteUint16 writes an unsigned 16-bit integer in little-endian order.
func (w *BufferWriter) WriteUint16(v uint16) {
	w.buf = append(w.buf, byte(v), byte(v>>8))
}

// WriteUint32 writes an unsigned 32-bit integer in little-endian order.
func (w *BufferWriter) WriteUint32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteInt16 writes a signed 16-bit integer in little-endian order.
func (w *BufferWriter) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteInt16Slice writes each element as a little-endian int16.
func (w *BufferWriter) WriteInt16Slice(vs []int16) {
	start := len(w.buf)
	w.buf = append(w.buf, make([]byte, 2*len(vs))...)
	for i, v := range vs {
		ByteOrder.PutUint16(w.buf[start+2*i:], uint16(v))
	}
}
