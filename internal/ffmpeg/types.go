package ffmpeg

import (
	"io"
	"time"
)

// VideoInfo contains metadata about the first video stream of a file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	// FrameCountSource records where FrameCount came from:
	// "container", "estimate" or "decode".
	FrameCountSource string
	VideoCodec       string
	PixelFormat      string
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args []string
	// Stdout receives the raw stdout stream when set; otherwise stdout is
	// scanned line by line into LogHandler.
	Stdout          io.Writer
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
type ProgressFunc func(*Progress)

// Options configures an Executor
type Options struct {
	FFmpegPath string
	ProbePath  string
	Threads    int
}

// PixelFormat is the interleaved layout frames are decoded into.
// Channel order is blue, green, red.
const PixelFormat = "bgr24"

// BytesPerPixel matches PixelFormat
const BytesPerPixel = 3
