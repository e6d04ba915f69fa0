package mask

import (
	"errors"
	"fmt"
)

// Mode selects how the difference field is computed.
type Mode int

const (
	// Grayscale reduces both rasters to a single luminance channel before
	// differencing. The field is one value per pixel regardless of input
	// channels, a third the size of a per-channel field for RGB input, at
	// the cost of a small, bounded reconstruction error.
	Grayscale Mode = iota

	// PerChannel differences every channel independently, giving byte-exact
	// reconstruction at three times the payload for RGB input.
	PerChannel
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Grayscale:
		return "grayscale"
	case PerChannel:
		return "per-channel"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ErrDiffOutOfRange reports a difference value outside [-255, 255]. With
// 8-bit inputs this cannot happen; the check guards the guarantee instead of
// assuming it.
var ErrDiffOutOfRange = errors.New("mask: difference outside [-255, 255]")

// Rec.601 luminance weights in 16.16 fixed point. They sum to exactly 1<<16,
// so adding a constant k to all three channels shifts the luminance by
// exactly k with no rounding error.
const (
	lumaR = 19595
	lumaG = 38470
	lumaB = 7471
)

// luma returns the Rec.601 luminance of an RGB sample.
func luma(r, g, b uint8) uint8 {
	return uint8((lumaR*uint32(r) + lumaG*uint32(g) + lumaB*uint32(b) + 1<<15) >> 16)
}

// ComputeDiff returns the signed per-pixel difference original − processed.
//
// In Grayscale mode the result has Pixels() elements; in PerChannel mode it
// has Pixels()*Channels elements. The rasters must share dimensions and
// channel count; they are never resized. Every element is guaranteed to lie
// in [-255, 255].
func ComputeDiff(original, processed *Raster, mode Mode) ([]int16, error) {
	if err := original.validate(); err != nil {
		return nil, err
	}
	if err := processed.validate(); err != nil {
		return nil, err
	}
	if original.Width != processed.Width || original.Height != processed.Height {
		return nil, fmt.Errorf("%w: original %dx%d, processed %dx%d",
			ErrDimensionMismatch,
			original.Width, original.Height, processed.Width, processed.Height)
	}
	if original.Channels != processed.Channels {
		return nil, fmt.Errorf("%w: original has %d channels, processed %d",
			ErrDimensionMismatch, original.Channels, processed.Channels)
	}

	var diff []int16
	switch mode {
	case Grayscale:
		diff = grayscaleDiff(original, processed)
	case PerChannel:
		diff = perChannelDiff(original, processed)
	default:
		return nil, fmt.Errorf("mask: unknown mode %d", int(mode))
	}

	if err := checkDiffRange(diff); err != nil {
		return nil, err
	}
	return diff, nil
}

func grayscaleDiff(original, processed *Raster) []int16 {
	diff := make([]int16, original.Pixels())
	if original.Channels == 1 {
		for i := range diff {
			diff[i] = int16(original.Pix[i]) - int16(processed.Pix[i])
		}
		return diff
	}
	for i := range diff {
		o := luma(original.Pix[i*3], original.Pix[i*3+1], original.Pix[i*3+2])
		p := luma(processed.Pix[i*3], processed.Pix[i*3+1], processed.Pix[i*3+2])
		diff[i] = int16(o) - int16(p)
	}
	return diff
}

func perChannelDiff(original, processed *Raster) []int16 {
	diff := make([]int16, len(original.Pix))
	for i := range diff {
		diff[i] = int16(original.Pix[i]) - int16(processed.Pix[i])
	}
	return diff
}

// checkDiffRange asserts the structural [-255, 255] bound at the API
// boundary.
func checkDiffRange(diff []int16) error {
	for i, d := range diff {
		if d < -255 || d > 255 {
			return fmt.Errorf("%w: %d at index %d", ErrDiffOutOfRange, d, i)
		}
	}
	return nil
}
