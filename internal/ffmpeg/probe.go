package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/kikiluvv/framestack/pkg/util"
)

// ProbeVideo extracts metadata from a video file, including its frame count
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	probe, err := e.runProbe(ctx, args)
	if err != nil {
		return nil, err
	}

	info := &VideoInfo{
		FilePath: filePath,
		Duration: util.ParseSeconds(probe.Format.Duration),
	}

	var stream *probeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			stream = &probe.Streams[i]
			break
		}
	}
	if stream == nil {
		return nil, fmt.Errorf("no video stream found in %s", filePath)
	}

	info.Width = stream.Width
	info.Height = stream.Height
	info.VideoCodec = stream.CodecName
	info.PixelFormat = stream.PixFmt

	// Calculate FPS from avg_frame_rate, falling back to r_frame_rate (e.g., "30/1")
	info.FPS = util.ParseFrameRate(stream.AvgFrameRate)
	if info.FPS == 0 {
		info.FPS = util.ParseFrameRate(stream.RFrameRate)
	}

	if d := util.ParseSeconds(stream.Duration); d > 0 {
		info.Duration = d
	}

	if n := util.ParseCount(stream.NbFrames); n > 0 {
		info.FrameCount = n
		info.FrameCountSource = "container"
	} else if info.FPS > 0 && info.Duration > 0 {
		// Containers like Matroska carry no frame count; estimate it the way
		// demuxer-level seeking does, from duration and rate.
		info.FrameCount = int(math.Round(info.Duration.Seconds() * info.FPS))
		info.FrameCountSource = "estimate"
	}

	if info.FrameCount == 0 {
		n, err := e.CountFrames(ctx, filePath)
		if err != nil {
			return nil, err
		}
		info.FrameCount = n
		info.FrameCountSource = "decode"
	}

	e.logger.Debug().
		Str("file", filePath).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Int("frames", info.FrameCount).
		Str("frames_from", info.FrameCountSource).
		Msg("probed video")

	return info, nil
}

// CountFrames decodes the first video stream to count its frames exactly
func (e *Executor) CountFrames(ctx context.Context, filePath string) (int, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-count_frames",
		"-show_entries", "stream=nb_read_frames",
		"-print_format", "json",
		filePath,
	}

	probe, err := e.runProbe(ctx, args)
	if err != nil {
		return 0, err
	}
	if len(probe.Streams) == 0 {
		return 0, fmt.Errorf("no video stream found in %s", filePath)
	}
	return util.ParseCount(probe.Streams[0].NbReadFrames), nil
}

func (e *Executor) runProbe(ctx context.Context, args []string) (*probeResult, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffprobe failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &probe, nil
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PixFmt       string `json:"pix_fmt"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
	NbFrames     string `json:"nb_frames"`
	NbReadFrames string `json:"nb_read_frames"`
}
