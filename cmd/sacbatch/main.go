// sacbatch encodes directories of mask plane pairs into SAC containers.
//
// It scans an input directory for <stem>_mask_hi.png / <stem>_mask_lo.png
// pairs, unpacks each pair back into its difference field, and encodes all
// fields concurrently. Each pair is tracked as an independent job: one
// malformed pair is reported and skipped without affecting the rest of the
// run.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/artorize/go-sac/mask"
	"github.com/artorize/go-sac/sac"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var outputFlag string
	var workersFlag int

	cmd := &cobra.Command{
		Use:           "sacbatch <input-dir>",
		Short:         "Batch-encode mask plane pairs into SAC containers",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputDir = outputFlag
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workersFlag
			}
			return run(cmd.Context(), args[0], cfg)
		},
	}

	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "TOML configuration file")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", ".", "output directory")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "worker count (0 = all CPUs)")

	return cmd
}

func run(ctx context.Context, inputDir string, cfg Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	hiPaths, err := filepath.Glob(filepath.Join(inputDir, "*_mask_hi.png"))
	if err != nil {
		return err
	}
	sort.Strings(hiPaths)
	if len(hiPaths) == 0 {
		return fmt.Errorf("no *_mask_hi.png files in %s", inputDir)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}

	jobs := make(map[string]sac.Job)
	stems := make(map[string]string)
	for _, hiPath := range hiPaths {
		stem := strings.TrimSuffix(filepath.Base(hiPath), "_mask_hi.png")
		loPath := filepath.Join(inputDir, stem+"_mask_lo.png")

		diff, width, height, err := loadPairDiff(hiPath, loPath)
		if err != nil {
			logger.Error("skipping pair", "stem", stem, "error", err)
			continue
		}

		id := uuid.NewString()
		jobs[id] = sac.Job{
			A:      diff,
			Width:  width,
			Height: height,
		}
		stems[id] = stem
		logger.Info("queued", "job_id", id, "stem", stem, "shape", fmt.Sprintf("%dx%d", width, height))
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no usable plane pairs in %s", inputDir)
	}

	result := sac.EncodeBatch(ctx, jobs, sac.BatchOptions{Workers: cfg.Workers})

	for id, data := range result.Encoded {
		outPath := filepath.Join(cfg.OutputDir, stems[id]+".sac")
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return err
		}
		logger.Info("encoded", "job_id", id, "file", outPath, "bytes", len(data))
	}
	for id, err := range result.Failed {
		logger.Error("encode failed", "job_id", id, "stem", stems[id], "error", err)
	}

	logger.Info("batch complete",
		"encoded", len(result.Encoded),
		"failed", len(result.Failed),
		"total_bytes", result.TotalBytes)

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d jobs failed", len(result.Failed), len(jobs))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// loadPairDiff loads a hi/lo PNG pair and unpacks the difference field it
// encodes.
func loadPairDiff(hiPath, loPath string) ([]int16, int, int, error) {
	hi, err := loadGray(hiPath)
	if err != nil {
		return nil, 0, 0, err
	}
	lo, err := loadGray(loPath)
	if err != nil {
		return nil, 0, 0, err
	}

	pair := &mask.PlanePair{Hi: hi, Lo: lo}
	diff, err := mask.Unpack(pair)
	if err != nil {
		return nil, 0, 0, err
	}
	return diff, hi.Width, hi.Height, nil
}

func loadGray(path string) (*mask.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	// Plane PNGs may round-trip through tools that save grayscale as RGB;
	// collapse them back to one channel.
	if gray, ok := img.(*image.Gray); ok {
		return mask.FromImage(gray), nil
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return mask.FromImage(gray), nil
}
