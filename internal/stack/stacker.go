package stack

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
)

// FrameSource provides random access to decoded frames
type FrameSource interface {
	// FrameCount is the number of frames reported by the container metadata
	FrameCount() int
	// ReadFrame decodes the frame at index into interleaved 8-bit pixels in
	// decode channel order. Negative indices read the first frame.
	ReadFrame(ctx context.Context, index int) ([]byte, error)
}

// Options configures a Stacker
type Options struct {
	// Width is both the canvas width and the target number of samples
	Width    int
	Height   int
	Smoother bool
	// Progress is called after each drawn column
	Progress func(done, total int)
}

// Sample is one sampled frame and the color drawn for it
type Sample struct {
	Column int
	// Seek is the frame index requested from the source
	Seek    int
	Median  Color
	Working Color
	Drawn   color.RGBA
}

// Result holds the frame stack canvas and how it was sampled
type Result struct {
	Canvas     *image.RGBA
	FrameCount int
	Stride     int
	Samples    []Sample
}

// Stacker draws one full-height column per sampled frame
type Stacker struct {
	logger zerolog.Logger
	opts   Options
}

// New creates a Stacker
func New(logger zerolog.Logger, opts Options) *Stacker {
	return &Stacker{
		logger: logger.With().Str("component", "stack").Logger(),
		opts:   opts,
	}
}

// Stride is the number of source frames between samples so that at most
// width samples are taken: ceil(frameCount / width).
func Stride(frameCount, width int) int {
	if frameCount <= 0 || width <= 0 {
		return 0
	}
	return (frameCount + width - 1) / width
}

// SampleCount is the number of columns drawn for a frame count and stride
func SampleCount(frameCount, stride int) int {
	if frameCount <= 0 || stride <= 0 {
		return 0
	}
	return (frameCount + stride - 1) / stride
}

// Build samples src and renders the frame stack canvas
func (s *Stacker) Build(ctx context.Context, src FrameSource) (*Result, error) {
	if s.opts.Width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", s.opts.Width)
	}
	if s.opts.Height < 0 {
		return nil, fmt.Errorf("height must not be negative, got %d", s.opts.Height)
	}

	frameCount := src.FrameCount()
	if frameCount <= 0 {
		return nil, fmt.Errorf("video reports no frames")
	}

	stride := Stride(frameCount, s.opts.Width)
	total := SampleCount(frameCount, stride)

	canvas := image.NewRGBA(image.Rect(0, 0, s.opts.Width, s.opts.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)

	result := &Result{
		Canvas:     canvas,
		FrameCount: frameCount,
		Stride:     stride,
		Samples:    make([]Sample, 0, total),
	}

	s.logger.Debug().
		Int("frames", frameCount).
		Int("stride", stride).
		Int("samples", total).
		Bool("smoother", s.opts.Smoother).
		Msg("building frame stack")

	smooth := smoother{enabled: s.opts.Smoother}
	column := 0
	for frameIndex := 0; frameIndex < frameCount; frameIndex += stride {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// The seek target trails the nominal sample position by one frame.
		seek := frameIndex - 1

		pix, err := src.ReadFrame(ctx, seek)
		if err != nil {
			return nil, fmt.Errorf("sample %d (frame %d): %w", column, seek, err)
		}
		if len(pix) < Channels {
			return nil, fmt.Errorf("sample %d (frame %d): empty frame", column, seek)
		}

		median := Median(pix)
		working := smooth.next(median)
		drawn := reversed(working)

		s.drawColumn(canvas, column, drawn)

		result.Samples = append(result.Samples, Sample{
			Column:  column,
			Seek:    seek,
			Median:  median,
			Working: working,
			Drawn:   drawn,
		})

		s.logger.Debug().
			Int("column", column).
			Int("seek", seek).
			Floats64("median", median[:]).
			Floats64("working", working[:]).
			Msg("sampled frame")

		column++
		if s.opts.Progress != nil {
			s.opts.Progress(column, total)
		}
	}

	return result, nil
}

func (s *Stacker) drawColumn(canvas *image.RGBA, x int, c color.RGBA) {
	if x >= canvas.Bounds().Dx() {
		return
	}
	col := image.Rect(x, 0, x+1, canvas.Bounds().Dy())
	draw.Draw(canvas, col, image.NewUniform(c), image.Point{}, draw.Src)
}

// smoother combines each median with the previous sample's raw median.
// The result is previous + current/2, an additive mix rather than a mean.
type smoother struct {
	enabled bool
	prev    *Color
}

func (sm *smoother) next(median Color) Color {
	if !sm.enabled {
		return median
	}

	if sm.prev == nil {
		prev := median
		sm.prev = &prev
		return median
	}

	var out Color
	for c := range out {
		out[c] = sm.prev[c] + median[c]/2
	}
	prev := median
	sm.prev = &prev
	return out
}

// reversed writes decode-order channels back to front, flooring and clamping
// to the 8-bit range of the canvas.
func reversed(c Color) color.RGBA {
	return color.RGBA{
		R: channel(c[2]),
		G: channel(c[1]),
		B: channel(c[0]),
		A: 255,
	}
}

func channel(v float64) uint8 {
	f := math.Floor(v)
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}
