package output

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/kikiluvv/framestack/pkg/util"
)

// Save writes img to path as PNG, replacing any existing file.
// The format is PNG regardless of the path's extension.
func Save(img image.Image, path string) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}

	if _, err := util.RemoveIfExists(path); err != nil {
		return fmt.Errorf("failed to remove existing %s: %w", path, err)
	}
	if err := util.EnsureDir(path); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// Encode writes img to w as PNG
func Encode(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
