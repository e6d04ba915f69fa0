package mask

import (
	"errors"
	"fmt"
)

// diffOffset maps the signed difference domain into unsigned 16 bits. This
// is a protocol constant: every already-published plane pair was encoded
// with it, and the client-side decoder subtracts the same value.
const diffOffset = 32768

// ErrPlaneShapeMismatch reports hi/lo planes that do not share a shape.
var ErrPlaneShapeMismatch = errors.New("mask: hi and lo planes have different shapes")

// PlanePair holds a difference field split into two single-channel 8-bit
// rasters, storable as ordinary images. Each difference value d is mapped to
// u = d + 32768 and split into hi = u>>8, lo = u&0xFF at the same pixel
// position.
type PlanePair struct {
	Hi *Raster
	Lo *Raster
}

// Pack splits a width*height difference field into a hi/lo plane pair.
// Unpack reverses it exactly for every value in [-255, 255].
func Pack(diff []int16, width, height int) (*PlanePair, error) {
	if width <= 0 || height <= 0 || len(diff) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d",
			ErrDimensionMismatch, len(diff), width, height)
	}

	hi := &Raster{Width: width, Height: height, Channels: 1, Pix: make([]uint8, len(diff))}
	lo := &Raster{Width: width, Height: height, Channels: 1, Pix: make([]uint8, len(diff))}
	for i, d := range diff {
		u := uint16(int32(d) + diffOffset)
		hi.Pix[i] = uint8(u >> 8)
		lo.Pix[i] = uint8(u & 0xFF)
	}
	return &PlanePair{Hi: hi, Lo: lo}, nil
}

// Unpack recovers the difference field a plane pair encodes.
func Unpack(pair *PlanePair) ([]int16, error) {
	if err := pair.validate(); err != nil {
		return nil, err
	}

	hi, lo := pair.Hi, pair.Lo
	diff := make([]int16, len(hi.Pix))
	for i := range diff {
		u := uint16(hi.Pix[i])<<8 | uint16(lo.Pix[i])
		diff[i] = int16(int32(u) - diffOffset)
	}
	return diff, nil
}

func (p *PlanePair) validate() error {
	if p.Hi == nil || p.Lo == nil {
		return fmt.Errorf("%w: missing plane", ErrPlaneShapeMismatch)
	}
	if err := p.Hi.validate(); err != nil {
		return err
	}
	if err := p.Lo.validate(); err != nil {
		return err
	}
	if p.Hi.Channels != 1 || p.Lo.Channels != 1 {
		return fmt.Errorf("%w: planes must be single-channel", ErrPlaneShapeMismatch)
	}
	if p.Hi.Width != p.Lo.Width || p.Hi.Height != p.Lo.Height {
		return fmt.Errorf("%w: hi %dx%d, lo %dx%d", ErrPlaneShapeMismatch,
			p.Hi.Width, p.Hi.Height, p.Lo.Width, p.Lo.Height)
	}
	return nil
}

// PlaneFileNames returns the archival file names for a plane pair by the
// fixed convention <stem>_mask_hi.<ext> and <stem>_mask_lo.<ext>.
func PlaneFileNames(stem, ext string) (hi, lo string) {
	return stem + "_mask_hi." + ext, stem + "_mask_lo." + ext
}
