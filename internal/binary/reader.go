package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned when the buffer ends before a declared field.
var ErrUnexpectedEOF = errors.New("unexpected end of class data")

// Reader wraps a byte slice with position tracking and class-file read
// methods. All multi-byte reads are big-endian, as required by the class
// file format.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data starting at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Reset seeks to the given position.
func (r *Reader) Reset(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("reset to invalid position %d (length %d)", pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// ReadU8 reads a single byte and advances the position.
func (r *Reader) ReadU8() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.wrapEOF()
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadU16 reads a big-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, r.wrapEOF()
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadU32 reads a big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, r.wrapEOF()
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadU64 reads a big-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, r.wrapEOF()
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the
// underlying buffer and must not be modified.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, r.wrapEOF()
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) wrapEOF() error {
	return fmt.Errorf("at offset %d: %w", r.pos, ErrUnexpectedEOF)
}

// ParseError represents an error during class file parsing with position
// information.
type ParseError struct {
	Err      error
	Context  string
	Position int
}

func (e *ParseError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("classfile: %s at offset %d: %v", e.Context, e.Position, e.Err)
	}
	return fmt.Sprintf("classfile: at offset %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError with the current position.
func (r *Reader) WrapError(context string, err error) error {
	return &ParseError{
		Position: r.pos,
		Context:  context,
		Err:      err,
	}
}
