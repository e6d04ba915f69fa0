// Package sac implements the SAC binary container format.
//
// SAC (Simple Array Container) is the wire format used to ship per-pixel
// difference fields to clients: a fixed 24-byte little-endian header followed
// by one or two raw int16 payloads. Format version 1.1 added the single-array
// optimization, signalled by a flag bit on the same magic number so that
// decoders remain compatible with already-cached v1.0 containers.
//
// Header layout (all multi-byte fields little-endian):
//
//	offset  size  field
//	0       4     magic "SAC1"
//	4       1     flags (bit0 = single array)
//	5       1     dtype code (1 = int16)
//	6       1     arrays count (1 or 2)
//	7       1     reserved (0)
//	8       4     length of array A (elements)
//	12      4     length of array B (elements, logical)
//	16      4     width (0 if unknown)
//	20      4     height (0 if unknown)
//	24      ...   payload A, then payload B when arrays count is 2
//
// In single-array containers only payload A is physically present and array B
// is defined to equal array A.
package sac

import (
	"errors"
	"fmt"
	"math"

	"github.com/artorize/go-sac/internal/bin"
)

// Magic identifies a SAC container.
const Magic = "SAC1"

// HeaderSize is the fixed size of the container header in bytes.
const HeaderSize = 24

// DtypeInt16 is the only element type the format defines.
const DtypeInt16 = 1

// FlagSingleArray marks a container whose second logical array is omitted
// because it is identical to the first.
const FlagSingleArray = 0x01

// Container format errors.
var (
	ErrBadMagic              = errors.New("sac: bad magic")
	ErrUnsupportedDtype      = errors.New("sac: unsupported dtype code")
	ErrUnsupportedArrayCount = errors.New("sac: unsupported arrays count")
	ErrShapeMismatch         = errors.New("sac: array length does not match width*height")
	ErrTruncatedPayload      = errors.New("sac: truncated payload")
	ErrTrailingData          = errors.New("sac: trailing data after payload")
	ErrArrayTooLong          = errors.New("sac: array length exceeds uint32 range")
)

// Header holds the decoded fields of a container header.
type Header struct {
	Flags       uint8
	DtypeCode   uint8
	ArraysCount uint8
	LengthA     int
	LengthB     int
	Width       int
	Height      int
}

// SingleArray reports whether the container carries only one physical payload.
func (h Header) SingleArray() bool {
	return h.ArraysCount == 1 || h.Flags&FlagSingleArray != 0
}

// PayloadSize returns the number of payload bytes the header declares.
func (h Header) PayloadSize() int {
	if h.SingleArray() {
		return 2 * h.LengthA
	}
	return 2 * (h.LengthA + h.LengthB)
}

// DecodeHeader parses and validates the 24-byte container header.
// It checks the magic tag, dtype code, arrays count and the declared
// length/shape consistency, but does not touch the payload.
func DecodeHeader(data []byte) (Header, error) {
	r := bin.NewReader(data)

	magic, err := r.ReadBytes(4)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %d header bytes", ErrTruncatedPayload, len(data))
	}
	if string(magic) != Magic {
		return Header{}, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}

	var h Header
	h.Flags, _ = r.ReadUint8()
	h.DtypeCode, _ = r.ReadUint8()
	h.ArraysCount, _ = r.ReadUint8()
	if _, err := r.ReadUint8(); err != nil { // reserved
		return Header{}, fmt.Errorf("%w: %d header bytes", ErrTruncatedPayload, len(data))
	}

	lengthA, err := r.ReadUint32()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %d header bytes", ErrTruncatedPayload, len(data))
	}
	lengthB, _ := r.ReadUint32()
	width, _ := r.ReadUint32()
	height, err2 := r.ReadUint32()
	if err2 != nil {
		return Header{}, fmt.Errorf("%w: %d header bytes", ErrTruncatedPayload, len(data))
	}

	if h.DtypeCode != DtypeInt16 {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedDtype, h.DtypeCode)
	}
	if h.ArraysCount != 1 && h.ArraysCount != 2 {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedArrayCount, h.ArraysCount)
	}

	h.LengthA = int(lengthA)
	h.LengthB = int(lengthB)
	h.Width = int(width)
	h.Height = int(height)

	if h.SingleArray() && h.LengthB != h.LengthA {
		return Header{}, fmt.Errorf("%w: single-array length_b %d != length_a %d",
			ErrShapeMismatch, h.LengthB, h.LengthA)
	}
	if err := checkShape(h.LengthA, h.LengthB, h.Width, h.Height, !h.SingleArray()); err != nil {
		return Header{}, err
	}
	return h, nil
}

// EncodedSize returns the exact container size in bytes for the given array
// lengths: 24 + 2*lengthA for single-array containers, 24 + 2*(lengthA +
// lengthB) otherwise.
func EncodedSize(lengthA, lengthB int, single bool) int {
	if single {
		return HeaderSize + 2*lengthA
	}
	return HeaderSize + 2*(lengthA+lengthB)
}

// checkShape validates array lengths against declared dimensions.
// Width and height of zero mean the shape is unknown and skip validation.
func checkShape(lengthA, lengthB, width, height int, dual bool) error {
	if width == 0 || height == 0 {
		return nil
	}
	pixels := uint64(width) * uint64(height)
	if uint64(lengthA) != pixels {
		return fmt.Errorf("%w: length_a %d, %dx%d", ErrShapeMismatch, lengthA, width, height)
	}
	if dual && uint64(lengthB) != pixels {
		return fmt.Errorf("%w: length_b %d, %dx%d", ErrShapeMismatch, lengthB, width, height)
	}
	return nil
}

// checkRange validates that a length or dimension fits the header's uint32
// fields.
func checkRange(name string, v int) error {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return fmt.Errorf("%w: %s %d", ErrArrayTooLong, name, v)
	}
	return nil
}
