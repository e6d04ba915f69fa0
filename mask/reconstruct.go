package mask

import (
	"fmt"
)

// Reconstruct reapplies a difference field to a processed raster,
// approximating or recovering the original: every sample becomes
// clamp(processed + diff, 0, 255).
//
// A field of Pixels() elements (grayscale mode) is broadcast identically
// across all channels of each pixel; a field of Pixels()*Channels elements
// (per-channel mode) is applied sample by sample and reproduces the original
// byte-exactly. Per-channel fields reconstruct exactly; grayscale fields
// carry the bounded approximation error established at encode time, which
// this function must not try to correct.
func Reconstruct(processed *Raster, diff []int16) (*Raster, error) {
	if err := processed.validate(); err != nil {
		return nil, err
	}

	out := &Raster{
		Width:    processed.Width,
		Height:   processed.Height,
		Channels: processed.Channels,
		Pix:      make([]uint8, len(processed.Pix)),
	}

	switch len(diff) {
	case processed.Pixels():
		for i := range processed.Pix {
			out.Pix[i] = clampSample(int32(processed.Pix[i]) + int32(diff[i/processed.Channels]))
		}
	case len(processed.Pix):
		for i := range processed.Pix {
			out.Pix[i] = clampSample(int32(processed.Pix[i]) + int32(diff[i]))
		}
	default:
		return nil, fmt.Errorf("%w: %d diff values for %dx%dx%d",
			ErrDimensionMismatch, len(diff),
			processed.Width, processed.Height, processed.Channels)
	}
	return out, nil
}

func clampSample(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
