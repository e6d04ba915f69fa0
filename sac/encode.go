package sac

import (
	"io"
	"slices"

	"github.com/artorize/go-sac/internal/bin"
)

// EncodeOptions controls container encoding.
//
// The zero value requests the size-optimized single-array layout, matching
// the format's v1.1 default.
type EncodeOptions struct {
	// DualArray requests the two-payload v1.0 layout. It is ignored when
	// array B is omitted or element-wise identical to array A; such
	// containers always collapse to the single-array form.
	DualArray bool
}

// Encode serializes arrays a and b into a SAC container using the default
// options: the single-array layout, in which only a is physically stored and
// the decoder reconstructs b as a reference to a. Callers that need b
// preserved verbatim use EncodeWithOptions with DualArray set.
//
// Width and height are optional shape metadata; when both are nonzero each
// array length must equal width*height. Identical inputs always produce
// byte-identical output.
func Encode(a, b []int16, width, height int) ([]byte, error) {
	return EncodeWithOptions(a, b, width, height, EncodeOptions{})
}

// EncodeWithOptions serializes arrays a and b into a SAC container.
func EncodeWithOptions(a, b []int16, width, height int, opts EncodeOptions) ([]byte, error) {
	if err := checkRange("length_a", len(a)); err != nil {
		return nil, err
	}
	if err := checkRange("length_b", len(b)); err != nil {
		return nil, err
	}
	if err := checkRange("width", width); err != nil {
		return nil, err
	}
	if err := checkRange("height", height); err != nil {
		return nil, err
	}

	single := !opts.DualArray || b == nil || slices.Equal(a, b)

	lengthB := len(b)
	if single {
		// The second logical array is defined to equal the first.
		lengthB = len(a)
	}
	if err := checkShape(len(a), lengthB, width, height, !single); err != nil {
		return nil, err
	}

	w := newHeaderWriter(len(a), lengthB, width, height, single)
	w.WriteInt16Slice(a)
	if !single {
		w.WriteInt16Slice(b)
	}
	return w.Bytes(), nil
}

// EncodeTo encodes arrays a and b with the given options and writes the
// container to w. It returns the number of bytes written.
func EncodeTo(w io.Writer, a, b []int16, width, height int, opts EncodeOptions) (int, error) {
	data, err := EncodeWithOptions(a, b, width, height, opts)
	if err != nil {
		return 0, err
	}
	return w.Write(data)
}

// newHeaderWriter allocates an exactly-sized buffer and writes the 24-byte
// container header into it.
func newHeaderWriter(lengthA, lengthB, width, height int, single bool) *bin.BufferWriter {
	w := bin.NewBufferWriter(EncodedSize(lengthA, lengthB, single))
	w.WriteBytes([]byte(Magic))
	flags, count := uint8(0), uint8(2)
	if single {
		flags, count = FlagSingleArray, 1
	}
	w.WriteUint8(flags)
	w.WriteUint8(DtypeInt16)
	w.WriteUint8(count)
	w.WriteUint8(0) // reserved
	w.WriteUint32(uint32(lengthA))
	w.WriteUint32(uint32(lengthB))
	w.WriteUint32(uint32(width))
	w.WriteUint32(uint32(height))
	return w
}
