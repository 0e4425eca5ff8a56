package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/kikiluvv/framestack/internal/config"
	"github.com/kikiluvv/framestack/internal/enhance"
	"github.com/kikiluvv/framestack/internal/ffmpeg"
	"github.com/kikiluvv/framestack/internal/output"
	"github.com/kikiluvv/framestack/internal/overlays"
	"github.com/kikiluvv/framestack/internal/stack"
	"github.com/kikiluvv/framestack/pkg/util"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// Decoder is the part of the ffmpeg executor the pipeline depends on
type Decoder interface {
	ProbeVideo(ctx context.Context, filePath string) (*ffmpeg.VideoInfo, error)
	OpenFrames(ctx context.Context, opts ffmpeg.StreamOptions) (FrameReader, error)
}

// FrameReader yields decoded frames in increasing index order
type FrameReader interface {
	ReadFrame(ctx context.Context, index int) (*ffmpeg.Frame, error)
	Close() error
}

// executorDecoder exposes an ffmpeg.Executor as a Decoder
type executorDecoder struct {
	*ffmpeg.Executor
}

func (d executorDecoder) OpenFrames(ctx context.Context, opts ffmpeg.StreamOptions) (FrameReader, error) {
	stream, err := d.Executor.OpenFrames(ctx, opts)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Pipeline turns a video into a finished frame stack image
type Pipeline struct {
	logger   zerolog.Logger
	config   *config.Config
	decoder  Decoder
	palettes *overlays.Registry
}

// New creates a pipeline backed by the ffmpeg binaries named in cfg
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	ffmpegExec, err := ffmpeg.New(logger, ffmpeg.Options{
		FFmpegPath: cfg.FFmpeg.BinaryPath,
		ProbePath:  cfg.FFmpeg.ProbePath,
		Threads:    cfg.FFmpeg.Threads,
	})
	if err != nil {
		return nil, newError(KindInvalidConfig, "failed to initialize ffmpeg: %w", err)
	}

	return NewWithDecoder(logger, cfg, executorDecoder{ffmpegExec}), nil
}

// NewWithDecoder creates a pipeline using an existing decoder
func NewWithDecoder(logger zerolog.Logger, cfg *config.Config, dec Decoder) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		config:   cfg,
		decoder:  dec,
		palettes: overlays.NewRegistry(),
	}
}

// Palettes exposes the gradient palette registry
func (p *Pipeline) Palettes() *overlays.Registry {
	return p.palettes
}

// Run executes every stage: probe, gradient, stack, finish, save, reveal
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	cfg := p.config
	report := opts.Report
	if report == nil {
		report = io.Discard
	}

	if err := cfg.Validate(); err != nil {
		return nil, newError(KindInvalidConfig, "%w", err)
	}
	palette, err := p.palettes.Lookup(cfg.Palette)
	if err != nil {
		return nil, newError(KindInvalidConfig, "%w", err)
	}

	if cfg.FFmpeg.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.FFmpeg.TimeoutSecs)*time.Second)
		defer cancel()
	}

	p.logger.Info().
		Str("input", opts.Input).
		Str("output", cfg.Output).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Msg("starting frame stack pipeline")

	// A stale result must not survive a failed run.
	if cfg.Output != "" {
		if removed, err := util.RemoveIfExists(cfg.Output); err != nil {
			return nil, newError(KindWriteFailure, "failed to remove existing output %s: %w", cfg.Output, err)
		} else if removed {
			p.logger.Debug().Str("output", cfg.Output).Msg("removed existing output")
		}
	}

	if err := checkInput(opts.Input); err != nil {
		return nil, err
	}

	// Stage 1: Extract video metadata
	info, err := p.decoder.ProbeVideo(ctx, opts.Input)
	if err != nil {
		return nil, newError(KindProbeFailure, "failed to probe video: %w", err)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, newError(KindProbeFailure, "video has invalid dimensions %dx%d", info.Width, info.Height)
	}

	p.logger.Info().
		Dur("duration", info.Duration).
		Str("timestamp", util.FormatDuration(info.Duration)).
		Int("frames", info.FrameCount).
		Float64("fps", info.FPS).
		Msg("video metadata extracted")

	stride := stack.Stride(info.FrameCount, cfg.Width)
	fmt.Fprintf(report, "Frame count: %d\n", info.FrameCount)
	fmt.Fprintf(report, "Frame stride: %d\n", stride)
	if stride <= 0 {
		return nil, newError(KindDecodeFailure, "video reports no frames")
	}

	// Stage 2: Gradient overlay
	gradient := stack.BuildGradient(cfg.Width, cfg.Height, palette)

	// Stage 3: Frame stack
	fmt.Fprintln(report, "Building frame stack...")
	bar := newProgressBar(report, stack.SampleCount(info.FrameCount, stride))

	stacker := stack.New(p.logger, stack.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Smoother: cfg.Smoother,
		Progress: func(done, total int) {
			_ = bar.Set(done)
		},
	})

	frames, err := p.decoder.OpenFrames(ctx, ffmpeg.StreamOptions{
		Input:  info.FilePath,
		Width:  info.Width,
		Height: info.Height,
		Stride: stride,
	})
	if err != nil {
		return nil, newError(KindDecodeFailure, "failed to start decoding: %w", err)
	}

	stacked, err := stacker.Build(ctx, &videoSource{frames: frames, info: info})
	if closeErr := frames.Close(); closeErr != nil {
		p.logger.Debug().Err(closeErr).Msg("decoder exited with error")
	}
	_ = bar.Finish()
	fmt.Fprintln(report)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(KindDecodeFailure, "frame sampling interrupted: %w", err)
		}
		return nil, newError(KindDecodeFailure, "failed to build frame stack: %w", err)
	}

	// Stage 4: Finishing passes
	final, err := enhance.Process(stacked.Canvas, gradient, enhance.Params{
		Strength:   cfg.OverlayStrength,
		Contrast:   cfg.Contrast,
		Saturation: cfg.Saturation,
	})
	if err != nil {
		return nil, newError(KindInvalidConfig, "failed to finish image: %w", err)
	}

	result := &Result{
		Info:     info,
		Stack:    stacked,
		Gradient: gradient,
		Image:    final,
	}

	// Stage 5: Output
	if cfg.Output != "" {
		if err := output.Save(final, cfg.Output); err != nil {
			return nil, newError(KindWriteFailure, "%w", err)
		}
		result.OutputPath = cfg.Output
		p.logger.Info().Str("output", cfg.Output).Msg("frame stack written")
	}

	if !cfg.NoReveal && opts.Viewer != nil {
		if err := opts.Viewer.Show(final); err != nil {
			p.logger.Warn().Err(err).Msg("could not display frame stack")
		} else {
			result.Revealed = true
		}
	}

	p.logger.Info().
		Int("columns", len(stacked.Samples)).
		Int("stride", stacked.Stride).
		Msg("frame stack pipeline complete")

	return result, nil
}

func checkInput(path string) error {
	if path == "" {
		return newError(KindInputNotFound, "input path cannot be empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(KindInputNotFound, "input file not found: %s", path)
		}
		return newError(KindInputNotFound, "cannot access input %s: %w", path, err)
	}
	if info.IsDir() {
		return newError(KindInputNotFound, "input %s is a directory", path)
	}
	return nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Sampling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// videoSource adapts a frame reader to stack.FrameSource for one video
type videoSource struct {
	frames FrameReader
	info   *ffmpeg.VideoInfo
}

func (s *videoSource) FrameCount() int {
	return s.info.FrameCount
}

func (s *videoSource) ReadFrame(ctx context.Context, index int) ([]byte, error) {
	frame, err := s.frames.ReadFrame(ctx, index)
	if err != nil {
		return nil, err
	}
	return frame.Pix, nil
}
