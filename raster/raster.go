// Package raster reads what it can from a product raster without decoding pixels.
package raster

import (
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/image/tiff"
)

// Shape returns the [rows, cols] of the TIFF at path, reading only its header.
func Shape(fs afero.Fs, path string) ([2]int, error) {
	f, err := fs.Open(path)
	if err != nil {
		return [2]int{}, err
	}
	defer f.Close()

	cfg, err := tiff.DecodeConfig(f)
	if err != nil {
		return [2]int{}, fmt.Errorf("tiff header %s: %w", path, err)
	}
	return [2]int{cfg.Height, cfg.Width}, nil
}
