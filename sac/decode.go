package sac

import (
	"fmt"

	"github.com/artorize/go-sac/internal/bin"
)

// Container holds the decoded contents of a SAC container.
//
// For single-array containers A and B share the same backing slice: mutating
// one is visible through the other. Callers that need independent copies must
// clone.
type Container struct {
	A, B   []int16
	Width  int
	Height int
	Flags  uint8

	single bool
}

// SingleArray reports whether the container was stored in the single-array
// layout, either via the flag bit or an arrays count of one.
func (c *Container) SingleArray() bool {
	return c.single
}

// Decode parses a SAC container. It validates the full header before any
// payload slice is materialized: a malformed container is always rejected,
// never partially decoded.
func Decode(data []byte) (*Container, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	r := bin.NewReader(data[HeaderSize:])

	a, err := r.ReadInt16Slice(h.LengthA)
	if err != nil {
		return nil, fmt.Errorf("%w: array A needs %d bytes, have %d",
			ErrTruncatedPayload, 2*h.LengthA, r.Len())
	}

	b := a
	if !h.SingleArray() {
		b, err = r.ReadInt16Slice(h.LengthB)
		if err != nil {
			return nil, fmt.Errorf("%w: array B needs %d bytes, have %d",
				ErrTruncatedPayload, 2*h.LengthB, r.Len())
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Len())
	}

	return &Container{
		A:      a,
		B:      b,
		Width:  h.Width,
		Height: h.Height,
		Flags:  h.Flags,
		single: h.SingleArray(),
	}, nil
}
