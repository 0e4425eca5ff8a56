// Package fftest builds small lossless video fixtures for tests that need
// a real ffmpeg round trip.
package fftest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/kikiluvv/framestack/internal/ffmpeg"
	"github.com/rs/zerolog"
)

// SkipIfNoFFmpeg skips the test if ffmpeg is not available
func SkipIfNoFFmpeg(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

// NewExecutor returns an executor logging to the test output
func NewExecutor(t testing.TB) *ffmpeg.Executor {
	t.Helper()
	SkipIfNoFFmpeg(t)

	logger := zerolog.New(zerolog.NewTestWriter(t))
	exec, err := ffmpeg.New(logger, ffmpeg.Options{Threads: 1})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	return exec
}

// SolidColorVideo writes one width x height frame per color and encodes
// them into an uncompressed AVI, returning its path.
func SolidColorVideo(t testing.TB, exec *ffmpeg.Executor, colors []color.RGBA, width, height int) string {
	t.Helper()

	frames := make([]image.Image, len(colors))
	for i, c := range colors {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetRGBA(x, y, c)
			}
		}
		frames[i] = img
	}
	return SequenceVideo(t, exec, frames)
}

// SequenceVideo encodes arbitrary frames into an uncompressed AVI
func SequenceVideo(t testing.TB, exec *ffmpeg.Executor, frames []image.Image) string {
	t.Helper()

	dir := t.TempDir()
	for i, img := range frames {
		path := filepath.Join(dir, fmt.Sprintf("frame_%03d.png", i))
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("create frame: %v", err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			t.Fatalf("encode frame: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close frame: %v", err)
		}
	}

	output := filepath.Join(dir, "fixture.avi")
	err := exec.EncodeSequence(context.Background(), ffmpeg.EncodeOptions{
		InputPattern: filepath.Join(dir, "frame_%03d.png"),
		Output:       output,
		FPS:          10,
	})
	if err != nil {
		t.Fatalf("failed to encode fixture video: %v", err)
	}
	return output
}
