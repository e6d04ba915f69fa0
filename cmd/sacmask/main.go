// sacmask computes the difference between an original image and its
// protection-transformed variant and writes it as a SAC container.
//
// The original image is never written out; shipping the processed image plus
// the container lets a client reconstruct the original without it ever
// crossing the wire.
//
// Usage:
//
//	sacmask [options] <original> <processed>
//
// Options:
//
//	-mode gray|channel   difference mode (default gray)
//	-out FILE            container output path (default <processed stem>.sac)
//	-planes              also write <stem>_mask_hi.png and <stem>_mask_lo.png
//	-archive             also write <stem>_mask_planes.npz
//	-preview FILE        write a reconstructed preview image
//	-stats               print difference statistics
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/artorize/go-sac/mask"
	"github.com/artorize/go-sac/sac"
)

func main() {
	var (
		modeFlag    = flag.String("mode", "gray", "difference mode: gray or channel")
		outFlag     = flag.String("out", "", "container output path")
		planesFlag  = flag.Bool("planes", false, "write hi/lo plane PNGs")
		archiveFlag = flag.Bool("archive", false, "write plane archive (.npz)")
		previewFlag = flag.String("preview", "", "write reconstructed preview PNG")
		statsFlag   = flag.Bool("stats", false, "print difference statistics")
	)
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: sacmask [options] <original> <processed>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Arg(1), *modeFlag, *outFlag,
		*planesFlag, *archiveFlag, *previewFlag, *statsFlag); err != nil {
		fmt.Fprintf(os.Stderr, "sacmask: %v\n", err)
		os.Exit(1)
	}
}

func run(originalPath, processedPath, modeName, outPath string,
	planes, archive bool, previewPath string, stats bool) error {

	var mode mask.Mode
	switch modeName {
	case "gray":
		mode = mask.Grayscale
	case "channel":
		mode = mask.PerChannel
	default:
		return fmt.Errorf("unknown mode %q (want gray or channel)", modeName)
	}

	original, err := loadRaster(originalPath)
	if err != nil {
		return err
	}
	processed, err := loadRaster(processedPath)
	if err != nil {
		return err
	}

	diff, err := mask.ComputeDiff(original, processed, mode)
	if err != nil {
		return err
	}

	if stats {
		s := mask.DiffStats(diff)
		fmt.Printf("diff: mean abs %.3f, max abs %d, nonzero %.1f%%, range [%d, %d]\n",
			s.MeanAbs, s.MaxAbs, 100*s.NonzeroRatio, s.Min, s.Max)
	}

	stem := strings.TrimSuffix(processedPath, filepath.Ext(processedPath))
	if outPath == "" {
		outPath = stem + ".sac"
	}

	// In per-channel mode the interleaved field no longer matches W*H, so
	// shape metadata is omitted from the container header.
	width, height := original.Width, original.Height
	if len(diff) != width*height {
		width, height = 0, 0
	}
	data, err := sac.Encode(diff, nil, width, height)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", outPath, len(data))

	if planes || archive {
		if len(diff) != original.Pixels() {
			return fmt.Errorf("plane output requires grayscale mode")
		}
		pair, err := mask.Pack(diff, original.Width, original.Height)
		if err != nil {
			return err
		}
		if planes {
			hiPath, loPath := mask.PlaneFileNames(stem, "png")
			if err := writePNG(hiPath, pair.Hi.Image()); err != nil {
				return err
			}
			if err := writePNG(loPath, pair.Lo.Image()); err != nil {
				return err
			}
			fmt.Printf("wrote %s, %s\n", hiPath, loPath)
		}
		if archive {
			archivePath := stem + "_mask_planes.npz"
			if err := mask.WritePlaneArchiveFile(archivePath, pair); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", archivePath)
		}
	}

	if previewPath != "" {
		rec, err := mask.Reconstruct(processed, diff)
		if err != nil {
			return err
		}
		if err := writePNG(previewPath, rec.Image()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", previewPath)
	}
	return nil
}

func loadRaster(path string) (*mask.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return mask.FromImage(img), nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
