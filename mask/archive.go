package mask

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Plane archives store a hi/lo pair as a ZIP file holding two
// deflate-compressed NumPy ".npy" members, interoperable with numpy.load.

// ErrBadArchive reports a malformed plane archive.
var ErrBadArchive = errors.New("mask: malformed plane archive")

const (
	archiveHiName = "hi.npy"
	archiveLoName = "lo.npy"
)

// WritePlaneArchive writes a plane pair to w as a compressed archive.
func WritePlaneArchive(w io.Writer, pair *PlanePair) error {
	if err := pair.validate(); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})

	for _, member := range []struct {
		name  string
		plane *Raster
	}{
		{archiveHiName, pair.Hi},
		{archiveLoName, pair.Lo},
	} {
		f, err := zw.Create(member.name)
		if err != nil {
			return fmt.Errorf("mask: create archive member %s: %w", member.name, err)
		}
		if _, err := f.Write(encodeNPY(member.plane)); err != nil {
			return fmt.Errorf("mask: write archive member %s: %w", member.name, err)
		}
	}
	return zw.Close()
}

// ReadPlaneArchive reads a plane pair from an archive.
func ReadPlaneArchive(r io.ReaderAt, size int64) (*PlanePair, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	planes := make(map[string]*Raster, 2)
	for _, f := range zr.File {
		if f.Name != archiveHiName && f.Name != archiveLoName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrBadArchive, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrBadArchive, f.Name, err)
		}
		plane, err := decodeNPY(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		planes[f.Name] = plane
	}

	pair := &PlanePair{Hi: planes[archiveHiName], Lo: planes[archiveLoName]}
	if pair.Hi == nil || pair.Lo == nil {
		return nil, fmt.Errorf("%w: missing hi or lo member", ErrBadArchive)
	}
	if err := pair.validate(); err != nil {
		return nil, err
	}
	return pair, nil
}

// WritePlaneArchiveFile writes a plane pair archive to path.
func WritePlaneArchiveFile(path string, pair *PlanePair) error {
	var buf bytes.Buffer
	if err := WritePlaneArchive(&buf, pair); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadPlaneArchiveFile reads a plane pair archive from path.
func ReadPlaneArchiveFile(path string) (*PlanePair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadPlaneArchive(bytes.NewReader(data), int64(len(data)))
}

// npyMagic opens every NPY file, followed by a one-byte major and minor
// version.
var npyMagic = []byte("\x93NUMPY")

// encodeNPY serializes a single-channel raster as an NPY v1.0 array of
// dtype |u1 with shape (height, width).
func encodeNPY(plane *Raster) []byte {
	header := fmt.Sprintf("{'descr': '|u1', 'fortran_order': False, 'shape': (%d, %d), }",
		plane.Height, plane.Width)

	// Pad with spaces so the data section starts 64-byte aligned; the
	// header text always ends with a newline.
	preamble := len(npyMagic) + 2 + 2
	padded := (preamble + len(header) + 1 + 63) / 64 * 64
	header += strings.Repeat(" ", padded-preamble-len(header)-1) + "\n"

	out := make([]byte, 0, padded+len(plane.Pix))
	out = append(out, npyMagic...)
	out = append(out, 1, 0) // version 1.0
	out = append(out, byte(len(header)), byte(len(header)>>8))
	out = append(out, header...)
	out = append(out, plane.Pix...)
	return out
}

// decodeNPY parses an NPY v1.x array of dtype |u1 into a single-channel
// raster.
func decodeNPY(data []byte) (*Raster, error) {
	if len(data) < len(npyMagic)+4 || !bytes.Equal(data[:len(npyMagic)], npyMagic) {
		return nil, fmt.Errorf("%w: not an NPY file", ErrBadArchive)
	}
	if data[len(npyMagic)] != 1 {
		return nil, fmt.Errorf("%w: unsupported NPY version %d", ErrBadArchive, data[len(npyMagic)])
	}

	headerLen := int(data[len(npyMagic)+2]) | int(data[len(npyMagic)+3])<<8
	headerStart := len(npyMagic) + 4
	if headerStart+headerLen > len(data) {
		return nil, fmt.Errorf("%w: truncated NPY header", ErrBadArchive)
	}
	header := string(data[headerStart : headerStart+headerLen])

	if !strings.Contains(header, "'descr': '|u1'") {
		return nil, fmt.Errorf("%w: NPY dtype is not |u1", ErrBadArchive)
	}
	if !strings.Contains(header, "'fortran_order': False") {
		return nil, fmt.Errorf("%w: NPY array is not C-ordered", ErrBadArchive)
	}

	height, width, err := parseNPYShape(header)
	if err != nil {
		return nil, err
	}

	pix := data[headerStart+headerLen:]
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d data bytes for shape (%d, %d)",
			ErrBadArchive, len(pix), height, width)
	}

	plane := &Raster{Width: width, Height: height, Channels: 1, Pix: bytes.Clone(pix)}
	if err := plane.validate(); err != nil {
		return nil, err
	}
	return plane, nil
}

// parseNPYShape extracts a two-dimensional shape tuple from an NPY header
// dict.
func parseNPYShape(header string) (height, width int, err error) {
	const key = "'shape': ("
	start := strings.Index(header, key)
	if start < 0 {
		return 0, 0, fmt.Errorf("%w: NPY header has no shape", ErrBadArchive)
	}
	rest := header[start+len(key):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return 0, 0, fmt.Errorf("%w: unterminated NPY shape", ErrBadArchive)
	}

	parts := strings.Split(rest[:end], ",")
	dims := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := strconv.Atoi(p)
		if err != nil || d <= 0 {
			return 0, 0, fmt.Errorf("%w: bad NPY shape dimension %q", ErrBadArchive, p)
		}
		dims = append(dims, d)
	}
	if len(dims) != 2 {
		return 0, 0, fmt.Errorf("%w: NPY shape has %d dimensions, want 2", ErrBadArchive, len(dims))
	}
	return dims[0], dims[1], nil
}
