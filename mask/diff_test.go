package mask

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

// testRaster builds a 3-channel raster with deterministic pseudo-random
// content.
func testRaster(t *testing.T, width, height int, seed int64) *Raster {
	t.Helper()
	r, err := NewRaster(width, height, 3)
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range r.Pix {
		r.Pix[i] = uint8(rng.Intn(256))
	}
	return r
}

// offsetRaster returns a copy of r with k added to every sample.
// The caller keeps samples in range so no clamping occurs.
func offsetRaster(t *testing.T, r *Raster, k int) *Raster {
	t.Helper()
	out := &Raster{Width: r.Width, Height: r.Height, Channels: r.Channels, Pix: make([]uint8, len(r.Pix))}
	for i, p := range r.Pix {
		v := int(p) + k
		if v < 0 || v > 255 {
			t.Fatalf("offset %d pushes sample %d out of range", k, p)
		}
		out.Pix[i] = uint8(v)
	}
	return out
}

func TestComputeDiffDimensionMismatch(t *testing.T) {
	a := testRaster(t, 4, 4, 1)
	b := testRaster(t, 4, 5, 1)
	if _, err := ComputeDiff(a, b, Grayscale); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("mismatched height: got %v, want ErrDimensionMismatch", err)
	}

	gray, _ := NewRaster(4, 4, 1)
	if _, err := ComputeDiff(a, gray, PerChannel); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("mismatched channels: got %v, want ErrDimensionMismatch", err)
	}
}

func TestComputeDiffLengths(t *testing.T) {
	orig := testRaster(t, 6, 4, 2)
	proc := testRaster(t, 6, 4, 3)

	gray, err := ComputeDiff(orig, proc, Grayscale)
	if err != nil {
		t.Fatalf("grayscale: %v", err)
	}
	if len(gray) != 24 {
		t.Errorf("grayscale length: got %d, want 24", len(gray))
	}

	chans, err := ComputeDiff(orig, proc, PerChannel)
	if err != nil {
		t.Fatalf("per-channel: %v", err)
	}
	if len(chans) != 72 {
		t.Errorf("per-channel length: got %d, want 72", len(chans))
	}
}

func TestComputeDiffRange(t *testing.T) {
	// Extremes: all-white original vs all-black processed and vice versa.
	white, _ := NewRaster(2, 2, 3)
	for i := range white.Pix {
		white.Pix[i] = 255
	}
	black, _ := NewRaster(2, 2, 3)

	diff, err := ComputeDiff(white, black, PerChannel)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for _, d := range diff {
		if d != 255 {
			t.Fatalf("white-black diff: got %d, want 255", d)
		}
	}

	diff, err = ComputeDiff(black, white, Grayscale)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for _, d := range diff {
		if d != -255 {
			t.Fatalf("black-white diff: got %d, want -255", d)
		}
	}
}

func TestPerChannelReconstructExact(t *testing.T) {
	orig := testRaster(t, 16, 11, 7)
	proc := testRaster(t, 16, 11, 8)

	diff, err := ComputeDiff(orig, proc, PerChannel)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	rec, err := Reconstruct(proc, diff)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if !bytes.Equal(rec.Pix, orig.Pix) {
		t.Error("per-channel reconstruction is not byte-exact")
	}
}

func TestGrayscaleUniformOffsetReconstructExact(t *testing.T) {
	// A uniform offset has zero luminance-mixing error, so grayscale mode
	// must reconstruct the original exactly.
	for _, k := range []int{-40, -1, 1, 17, 63} {
		base := testRaster(t, 12, 9, 21)
		// Clamp the base into [64, 191] so any |k| <= 63 stays in range.
		for i := range base.Pix {
			base.Pix[i] = base.Pix[i]/2 + 64
		}
		orig := offsetRaster(t, base, k)

		diff, err := ComputeDiff(orig, base, Grayscale)
		if err != nil {
			t.Fatalf("k=%d compute: %v", k, err)
		}
		for i, d := range diff {
			if d != int16(k) {
				t.Fatalf("k=%d: diff[%d] = %d, want %d", k, i, d, k)
			}
		}

		rec, err := Reconstruct(base, diff)
		if err != nil {
			t.Fatalf("k=%d reconstruct: %v", k, err)
		}
		if !bytes.Equal(rec.Pix, orig.Pix) {
			t.Errorf("k=%d: grayscale reconstruction of uniform offset not exact", k)
		}
	}
}

func TestReconstructClamps(t *testing.T) {
	proc, _ := NewRaster(1, 2, 1)
	proc.Pix[0] = 250
	proc.Pix[1] = 3

	rec, err := Reconstruct(proc, []int16{100, -100})
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if rec.Pix[0] != 255 || rec.Pix[1] != 0 {
		t.Errorf("clamping: got %v, want [255 0]", rec.Pix)
	}
}

func TestReconstructBadDiffLength(t *testing.T) {
	proc := testRaster(t, 4, 4, 5)
	if _, err := Reconstruct(proc, make([]int16, 7)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestDiffStats(t *testing.T) {
	diff := []int16{0, 3, -5, 0, 2, -1}
	s := DiffStats(diff)

	if s.Min != -5 || s.Max != 3 || s.MaxAbs != 5 {
		t.Errorf("min/max: %+v", s)
	}
	if want := (0.0 + 3 + 5 + 0 + 2 + 1) / 6; s.MeanAbs != want {
		t.Errorf("MeanAbs: got %v, want %v", s.MeanAbs, want)
	}
	if want := 4.0 / 6; s.NonzeroRatio != want {
		t.Errorf("NonzeroRatio: got %v, want %v", s.NonzeroRatio, want)
	}

	if s := DiffStats(nil); s != (Stats{}) {
		t.Errorf("empty stats: %+v", s)
	}
}

func TestModeString(t *testing.T) {
	if Grayscale.String() != "grayscale" || PerChannel.String() != "per-channel" {
		t.Errorf("mode names: %q, %q", Grayscale, PerChannel)
	}
}
