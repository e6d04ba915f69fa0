// sacheck validates SAC container files.
//
// Usage:
//
//	sacheck [-q|--quiet] <filename> [<filename> ...]
//
// Options:
//
//	-q, --quiet   Only output errors. Exit code indicates pass/fail.
//	-h, --help    Show this help message.
//
// Exit codes:
//
//	0: All files valid
//	1: One or more files invalid
//	2: Error (file not found, etc.)
package main

import (
	"fmt"
	"os"

	"github.com/artorize/go-sac/sac"
)

func main() {
	quiet := false
	files := []string{}

	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch arg {
		case "-q", "--quiet":
			quiet = true
		case "-h", "--help":
			usage()
			os.Exit(0)
		default:
			if len(arg) > 0 && arg[0] == '-' {
				fmt.Fprintf(os.Stderr, "sacheck: unknown option %s\n", arg)
				os.Exit(2)
			}
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		usage()
		os.Exit(2)
	}

	allValid := true
	for _, file := range files {
		if err := checkFile(file, quiet); err != nil {
			fmt.Fprintf(os.Stderr, "sacheck: %s: %v\n", file, err)
			allValid = false
		}
	}
	if !allValid {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: sacheck [-q|--quiet] <filename> [<filename> ...]")
}

func checkFile(path string, quiet bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sacheck: %v\n", err)
		os.Exit(2)
	}

	h, err := sac.DecodeHeader(data)
	if err != nil {
		return err
	}
	if _, err := sac.Decode(data); err != nil {
		return err
	}

	// The size law is implied by a successful decode, but stating it makes
	// the report self-checking.
	wantSize := sac.EncodedSize(h.LengthA, h.LengthB, h.SingleArray())
	if len(data) != wantSize {
		return fmt.Errorf("file is %d bytes, header implies %d", len(data), wantSize)
	}

	if quiet {
		return nil
	}

	layout := "dual-array (v1.0)"
	if h.SingleArray() {
		layout = "single-array (v1.1)"
	}
	fmt.Printf("%s: OK\n", path)
	fmt.Printf("  layout:    %s (flags 0x%02x)\n", layout, h.Flags)
	fmt.Printf("  arrays:    %d x %d int16 elements\n", h.ArraysCount, h.LengthA)
	if h.Width != 0 || h.Height != 0 {
		fmt.Printf("  shape:     %dx%d\n", h.Width, h.Height)
	} else {
		fmt.Printf("  shape:     unknown\n")
	}
	fmt.Printf("  file size: %d bytes (%d header + %d payload)\n",
		len(data), sac.HeaderSize, h.PayloadSize())
	return nil
}
