package pipeline

import (
	"image"
	"io"

	"github.com/kikiluvv/framestack/internal/ffmpeg"
	"github.com/kikiluvv/framestack/internal/output"
	"github.com/kikiluvv/framestack/internal/stack"
)

// RunOptions configures a single pipeline run
type RunOptions struct {
	// Input is the video to sample
	Input string
	// Report receives the human-readable progress report; nil discards it
	Report io.Writer
	// Viewer displays the result unless the config disables reveal
	Viewer output.Viewer
}

// Result is everything a run produced
type Result struct {
	Info       *ffmpeg.VideoInfo
	Stack      *stack.Result
	Gradient   *image.RGBA
	Image      *image.NRGBA
	OutputPath string
	Revealed   bool
}
