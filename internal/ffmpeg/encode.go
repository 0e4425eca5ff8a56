package ffmpeg

import (
	"context"
	"fmt"
)

// EncodeOptions configures turning a numbered image sequence into a video
type EncodeOptions struct {
	// InputPattern is a printf-style path such as "frames/%03d.png"
	InputPattern string
	Output       string
	FPS          float64
	// Width and Height rescale the frames when both are positive
	Width  int
	Height int
	// VideoCodec defaults to lossless rawvideo so decoded pixels match the
	// source images exactly.
	VideoCodec   string
	PixelFormat  string
	ProgressFunc ProgressFunc
}

// EncodeSequence encodes a numbered image sequence into a video file
func (e *Executor) EncodeSequence(ctx context.Context, opts EncodeOptions) error {
	if opts.InputPattern == "" {
		return fmt.Errorf("input pattern is required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = 25
	}
	codec := opts.VideoCodec
	if codec == "" {
		codec = "rawvideo"
	}
	pixFmt := opts.PixelFormat
	if pixFmt == "" {
		pixFmt = PixelFormat
	}

	e.logger.Info().
		Str("input", opts.InputPattern).
		Str("output", opts.Output).
		Float64("fps", fps).
		Str("codec", codec).
		Msg("encoding image sequence")

	args := []string{
		"-framerate", fmt.Sprintf("%g", fps),
		"-i", opts.InputPattern,
		"-vf", NewFilterBuilder().Scale(opts.Width, opts.Height).Format(pixFmt).Build(),
		"-c:v", codec,
		opts.Output,
	}

	tail := newTailBuffer(4)
	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			tail.add(line)
			e.logger.Debug().Str("ffmpeg", line).Msg("sequence encode")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("sequence encode failed: %w", wrapStderr(err, tail))
	}

	e.logger.Info().Str("output", opts.Output).Msg("sequence encode complete")
	return nil
}
