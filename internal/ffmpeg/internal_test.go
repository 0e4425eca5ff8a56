package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterBuilder(t *testing.T) {
	filter := NewFilterBuilder().Scale(1920, 1080).Format("bgr24").Build()
	assert.Equal(t, "scale=1920:1080:flags=neighbor,format=bgr24", filter)
}

func TestFilterBuilderEmpty(t *testing.T) {
	assert.Equal(t, "", NewFilterBuilder().Build())
}

func TestFilterBuilderSkipsInvalid(t *testing.T) {
	filter := NewFilterBuilder().Scale(0, 1080).Format("").Custom("").Custom("hflip").Build()
	assert.Equal(t, "hflip", filter)
}

func TestStreamArgs(t *testing.T) {
	args := streamArgs("in.mp4", 15)
	joined := strings.Join(args, " ")

	assert.Contains(t, args, "in.mp4")
	assert.Contains(t, joined, "select")
	assert.Contains(t, joined, "mod(n+1")
	assert.Contains(t, joined, "15")
	assert.Contains(t, joined, "rawvideo")
	assert.Contains(t, joined, PixelFormat)
	assert.Contains(t, joined, "passthrough")
	assert.Contains(t, args, "pipe:")
}

func TestStreamArgsStrideOneKeepsEveryFrame(t *testing.T) {
	assert.NotContains(t, strings.Join(streamArgs("in.mp4", 1), " "), "select")
}

func TestSelectedIndex(t *testing.T) {
	var got []int
	for k := 0; k < 4; k++ {
		got = append(got, selectedIndex(k, 15))
	}
	assert.Equal(t, []int{0, 14, 29, 44}, got)

	got = got[:0]
	for k := 0; k < 4; k++ {
		got = append(got, selectedIndex(k, 1))
	}
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

// fakeRun writes one solid frame per selected index, value = source index
type fakeRun struct {
	calls  int
	frames int
	size   int
	stride int
	err    error
}

func (f *fakeRun) run(ctx context.Context, opts RunOptions) error {
	f.calls++
	for k := 0; selectedIndex(k, f.stride) < f.frames; k++ {
		if _, err := opts.Stdout.Write(bytes.Repeat([]byte{byte(selectedIndex(k, f.stride))}, f.size)); err != nil {
			return err
		}
	}
	return f.err
}

func TestFrameStreamDecodesOnce(t *testing.T) {
	const frames, stride = 30, 4
	fake := &fakeRun{frames: frames, size: 2 * 2 * BytesPerPixel, stride: stride}

	stream, err := openStream(context.Background(), fake.run, StreamOptions{Input: "in.mp4", Width: 2, Height: 2, Stride: stride})
	require.NoError(t, err)

	for i := 0; i < frames; i += stride {
		seek := i - 1
		frame, err := stream.ReadFrame(context.Background(), seek)
		require.NoError(t, err, "seek %d", seek)
		assert.Equal(t, max(seek, 0), frame.Index)
		assert.Equal(t, byte(max(seek, 0)), frame.Pix[0])
	}

	require.NoError(t, stream.Close())
	assert.Equal(t, 1, fake.calls)
}

func TestFrameStreamRejectsBackwardsRead(t *testing.T) {
	fake := &fakeRun{frames: 10, size: BytesPerPixel, stride: 1}
	stream, err := openStream(context.Background(), fake.run, StreamOptions{Input: "in.mp4", Width: 1, Height: 1, Stride: 1})
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.ReadFrame(context.Background(), 5)
	require.NoError(t, err)
	_, err = stream.ReadFrame(context.Background(), 2)
	assert.ErrorContains(t, err, "requested after")
}

func TestFrameStreamRejectsUnselectedFrame(t *testing.T) {
	fake := &fakeRun{frames: 10, size: BytesPerPixel, stride: 3}
	stream, err := openStream(context.Background(), fake.run, StreamOptions{Input: "in.mp4", Width: 1, Height: 1, Stride: 3})
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.ReadFrame(context.Background(), 1)
	assert.ErrorContains(t, err, "not selected")
}

func TestFrameStreamPropagatesRunError(t *testing.T) {
	fake := &fakeRun{frames: 0, size: BytesPerPixel, stride: 1, err: errors.New("ffmpeg execution failed: exit status 1")}
	stream, err := openStream(context.Background(), fake.run, StreamOptions{Input: "in.mp4", Width: 1, Height: 1, Stride: 1})
	require.NoError(t, err)

	_, err = stream.ReadFrame(context.Background(), 0)
	assert.ErrorContains(t, err, "exit status 1")
	assert.Error(t, stream.Close())
}

func TestFrameStreamShortFrame(t *testing.T) {
	run := func(ctx context.Context, opts RunOptions) error {
		_, err := opts.Stdout.Write([]byte{1, 2})
		return err
	}
	stream, err := openStream(context.Background(), run, StreamOptions{Input: "in.mp4", Width: 1, Height: 1, Stride: 1})
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.ReadFrame(context.Background(), 0)
	assert.ErrorContains(t, err, "short frame")
}

func TestFrameStreamCloseBeforeEnd(t *testing.T) {
	fake := &fakeRun{frames: 100, size: 4 * BytesPerPixel, stride: 1}
	stream, err := openStream(context.Background(), fake.run, StreamOptions{Input: "in.mp4", Width: 2, Height: 2, Stride: 1})
	require.NoError(t, err)

	_, err = stream.ReadFrame(context.Background(), 0)
	require.NoError(t, err)
	assert.NoError(t, stream.Close())
}

func TestStreamOutputProgress(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}
	input := strings.Join([]string{
		"frame=12",
		"fps=24.5",
		"bitrate=N/A",
		"out_time=00:00:00.480000",
		"speed=2.1x",
		"progress=continue",
		"[rawvideo] some warning",
		"frame=0",
		"progress=end",
	}, "\n")

	var got []Progress
	var logs []string
	e.streamOutput(strings.NewReader(input), func(p *Progress) {
		got = append(got, *p)
	}, func(line string) {
		logs = append(logs, line)
	})

	if assert.Len(t, got, 1) {
		assert.Equal(t, 12, got[0].Frame)
		assert.Equal(t, 24.5, got[0].FPS)
		assert.Equal(t, "00:00:00.480000", got[0].Time)
		assert.Equal(t, "2.1x", got[0].Speed)
	}
	assert.Equal(t, []string{"[rawvideo] some warning"}, logs)
}

func TestStreamOutputWithoutProgressHandler(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}

	var logs []string
	e.streamOutput(strings.NewReader("frame=1\nError opening input"), nil, func(line string) {
		logs = append(logs, line)
	})
	assert.Equal(t, []string{"frame=1", "Error opening input"}, logs)
}

func TestTailBuffer(t *testing.T) {
	tail := newTailBuffer(2)
	tail.add("one")
	tail.add("  ")
	tail.add("two")
	tail.add("three")
	assert.Equal(t, "two; three", tail.String())
}
