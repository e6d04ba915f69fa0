// Package mask computes and packs the per-pixel difference between an
// original raster and its protection-transformed variant.
//
// The difference field is the signed delta original − processed at every
// sample. It can be packed into a pair of ordinary 8-bit images (the hi/lo
// plane pair) for archival, or handed to package sac for wire transfer. The
// receiving client reapplies the field to the processed raster to recover
// the original.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Rasters are 8-bit with one or three channels.
var (
	ErrBadChannels       = errors.New("mask: channel count must be 1 or 3")
	ErrBadRasterSize     = errors.New("mask: pixel buffer length does not match dimensions")
	ErrDimensionMismatch = errors.New("mask: raster dimensions do not match")
)

// Raster is a rectangular 8-bit pixel buffer with 1 (grayscale) or
// 3 (RGB) channels. Samples are stored row-major and channel-interleaved:
// Pix[(y*Width+x)*Channels+c].
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewRaster allocates a zeroed raster.
func NewRaster(width, height, channels int) (*Raster, error) {
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("%w: %d", ErrBadChannels, channels)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensionMismatch, width, height)
	}
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// validate checks the raster's internal consistency.
func (r *Raster) validate() error {
	if r.Channels != 1 && r.Channels != 3 {
		return fmt.Errorf("%w: %d", ErrBadChannels, r.Channels)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensionMismatch, r.Width, r.Height)
	}
	if len(r.Pix) != r.Width*r.Height*r.Channels {
		return fmt.Errorf("%w: %d samples for %dx%dx%d",
			ErrBadRasterSize, len(r.Pix), r.Width, r.Height, r.Channels)
	}
	return nil
}

// Pixels returns the number of pixels (Width * Height).
func (r *Raster) Pixels() int {
	return r.Width * r.Height
}

// FromImage converts an image to a raster. Grayscale images become
// single-channel rasters; everything else is expanded to three channels.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if gray, ok := img.(*image.Gray); ok {
		r := &Raster{Width: w, Height: h, Channels: 1, Pix: make([]uint8, w*h)}
		for y := 0; y < h; y++ {
			copy(r.Pix[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return r
	}

	r := &Raster{Width: w, Height: h, Channels: 3, Pix: make([]uint8, w*h*3)}
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r.Pix[i] = uint8(cr >> 8)
			r.Pix[i+1] = uint8(cg >> 8)
			r.Pix[i+2] = uint8(cb >> 8)
			i += 3
		}
	}
	return r
}

// Image converts the raster back to a stdlib image: *image.Gray for one
// channel, *image.NRGBA with opaque alpha for three.
func (r *Raster) Image() image.Image {
	if r.Channels == 1 {
		img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
		for y := 0; y < r.Height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+r.Width], r.Pix[y*r.Width:(y+1)*r.Width])
		}
		return img
	}

	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i := 0; i < r.Pixels(); i++ {
		img.SetNRGBA(i%r.Width, i/r.Width, color.NRGBA{
			R: r.Pix[i*3],
			G: r.Pix[i*3+1],
			B: r.Pix[i*3+2],
			A: 255,
		})
	}
	return img
}
