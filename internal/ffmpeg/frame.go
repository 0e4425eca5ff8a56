package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	ffmpeg_go "github.com/u2takey/ffmpeg-go"
)

func init() {
	ffmpeg_go.LogCompiledCommand = false
}

// Frame is one decoded picture in PixelFormat layout
type Frame struct {
	Index  int
	Width  int
	Height int
	Pix    []byte
}

// StreamOptions selects the frames a FrameStream decodes
type StreamOptions struct {
	Input  string
	Width  int
	Height int
	// Stride keeps frame 0 and every frame n with (n+1) % Stride == 0,
	// which are the frames a sampler seeking to i-1 for i = 0, S, 2S...
	// asks for. Stride 1 keeps every frame.
	Stride int
}

type runFunc func(ctx context.Context, opts RunOptions) error

// FrameStream reads raw frames from a single ffmpeg process that decodes the
// input once, front to back. Frames must be requested in increasing order.
type FrameStream struct {
	opts      StreamOptions
	frameSize int

	pipe   *io.PipeReader
	reader *bufio.Reader
	cancel context.CancelFunc
	done   chan error
	tail   *tailBuffer

	next int // ordinal of the next frame in the pipe
	last *Frame
}

// OpenFrames starts decoding opts.Input and returns a stream of its selected
// frames. The stream must be closed.
func (e *Executor) OpenFrames(ctx context.Context, opts StreamOptions) (*FrameStream, error) {
	return openStream(ctx, e.Run, opts)
}

func openStream(ctx context.Context, run runFunc, opts StreamOptions) (*FrameStream, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", opts.Width, opts.Height)
	}
	if opts.Stride <= 0 {
		return nil, fmt.Errorf("stride must be positive, got %d", opts.Stride)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frameSize := opts.Width * opts.Height * BytesPerPixel
	pr, pw := io.Pipe()
	runCtx, cancel := context.WithCancel(ctx)

	s := &FrameStream{
		opts:      opts,
		frameSize: frameSize,
		pipe:      pr,
		reader:    bufio.NewReaderSize(pr, frameSize),
		cancel:    cancel,
		done:      make(chan error, 1),
		tail:      newTailBuffer(4),
	}

	args := streamArgs(opts.Input, opts.Stride)
	go func() {
		err := run(runCtx, RunOptions{
			Args:       args,
			Stdout:     pw,
			LogHandler: s.tail.add,
		})
		if err != nil {
			err = wrapStderr(err, s.tail)
		}
		// nil closes the pipe with io.EOF
		pw.CloseWithError(err)
		s.done <- err
	}()

	return s, nil
}

// ReadFrame returns the frame at index. Negative indices select the first
// frame. Asking again for the last returned index returns the same frame.
func (s *FrameStream) ReadFrame(ctx context.Context, index int) (*Frame, error) {
	if index < 0 {
		index = 0
	}
	if s.last != nil {
		if index == s.last.Index {
			return s.last, nil
		}
		if index < s.last.Index {
			return nil, fmt.Errorf("frame %d requested after frame %d", index, s.last.Index)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		source := selectedIndex(s.next, s.opts.Stride)
		if source > index {
			return nil, fmt.Errorf("frame %d is not selected by stride %d", index, s.opts.Stride)
		}

		pix := make([]byte, s.frameSize)
		n, err := io.ReadFull(s.reader, pix)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil, fmt.Errorf("no frame decoded at index %d of %q", index, s.opts.Input)
			case errors.Is(err, io.ErrUnexpectedEOF):
				return nil, fmt.Errorf("short frame %d from %q: got %d bytes, want %d", source, s.opts.Input, n, s.frameSize)
			default:
				return nil, fmt.Errorf("error getting frame %d from video %q: %w", source, s.opts.Input, err)
			}
		}
		s.next++

		if source == index {
			s.last = &Frame{
				Index:  source,
				Width:  s.opts.Width,
				Height: s.opts.Height,
				Pix:    pix,
			}
			return s.last, nil
		}
	}
}

// Close stops the decoder and waits for it to exit
func (s *FrameStream) Close() error {
	s.pipe.Close()
	s.cancel()
	err := <-s.done
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}

// selectedIndex maps the k-th frame in the pipe back to its source index
func selectedIndex(k, stride int) int {
	if stride == 1 || k == 0 {
		return k
	}
	return k*stride - 1
}

// streamArgs builds the ffmpeg arguments that emit the selected frames as
// one raw video stream
func streamArgs(input string, stride int) []string {
	stream := ffmpeg_go.Input(input)
	if stride > 1 {
		stream = stream.Filter("select", ffmpeg_go.Args{fmt.Sprintf("eq(n,0)+not(mod(n+1,%d))", stride)})
	}
	return stream.
		Output("pipe:", ffmpeg_go.KwArgs{
			"format":   "rawvideo",
			"pix_fmt":  PixelFormat,
			"fps_mode": "passthrough",
		}).
		GetArgs()
}
