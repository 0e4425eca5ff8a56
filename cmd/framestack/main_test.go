package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikiluvv/framestack/internal/config"
	"github.com/kikiluvv/framestack/internal/pipeline"
)

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "short aliases",
			in:   []string{"-iw", "800", "-ih", "200", "-over", "0.3", "-sat", "2", "-con", "1", "-sm", "-nr", "in.mp4"},
			want: []string{"--width", "800", "--height", "200", "--overlay_strength", "0.3", "--saturation", "2", "--contrast", "1", "--smoother", "--no-reveal", "in.mp4"},
		},
		{
			name: "inline values",
			in:   []string{"-iw=640", "-sm=false", "in.mp4"},
			want: []string{"--width=640", "--smoother=false", "in.mp4"},
		},
		{
			name: "long and single letter flags untouched",
			in:   []string{"--width", "10", "-o", "x.png", "-v", "in.mp4"},
			want: []string{"--width", "10", "-o", "x.png", "-v", "in.mp4"},
		},
		{
			name: "stops at double dash",
			in:   []string{"-nr", "--", "-iw"},
			want: []string{"--no-reveal", "--", "-iw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(tt.in))
		})
	}
}

// captureRun records the configuration handed to the pipeline
type captureRun struct {
	cfg   *config.Config
	input string
	err   error
}

func (c *captureRun) run(ctx context.Context, cfg *config.Config, input string, out io.Writer) error {
	c.cfg = cfg
	c.input = input
	return c.err
}

func execute(t *testing.T, run runFunc, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(run)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(normalizeArgs(args))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framestack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfgPath := writeConfig(t, "width: 42\nheight: 64\ncontrast: 2.5\npalette: vignette\n")

	capture := &captureRun{}
	_, err := execute(t, capture.run, "--config", cfgPath, "-ih", "7", "-sm", "-nr", "-o", "stack.png", "--viewer-command", "feh", "movie.mp4")
	require.NoError(t, err)

	require.NotNil(t, capture.cfg)
	assert.Equal(t, "movie.mp4", capture.input)
	assert.Equal(t, 42, capture.cfg.Width, "unset flag must keep the file value")
	assert.Equal(t, 7, capture.cfg.Height)
	assert.Equal(t, 2.5, capture.cfg.Contrast)
	assert.Equal(t, "vignette", capture.cfg.Palette)
	assert.True(t, capture.cfg.Smoother)
	assert.True(t, capture.cfg.NoReveal)
	assert.Equal(t, "stack.png", capture.cfg.Output)
	assert.Equal(t, "feh", capture.cfg.ViewerCommand)
	assert.Equal(t, config.Default().Saturation, capture.cfg.Saturation)
}

func TestDefaultsWithoutConfig(t *testing.T) {
	cfgPath := writeConfig(t, "")

	capture := &captureRun{}
	_, err := execute(t, capture.run, "--config", cfgPath, "in.mp4")
	require.NoError(t, err)

	assert.Equal(t, config.Default(), capture.cfg)
}

func TestMissingConfigFails(t *testing.T) {
	capture := &captureRun{}
	_, err := execute(t, capture.run, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "in.mp4")
	require.Error(t, err)
	assert.Nil(t, capture.cfg)
}

func TestRequiresInput(t *testing.T) {
	_, err := execute(t, (&captureRun{}).run, "--no-reveal")
	require.Error(t, err)
}

func TestRunErrorPropagates(t *testing.T) {
	want := errors.New("decode failed")
	_, err := execute(t, (&captureRun{err: want}).run, "in.mp4")
	assert.ErrorIs(t, err, want)
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, &pipeline.Error{Kind: pipeline.KindInputNotFound, Err: errors.New("input file not found: x.mp4")})

	assert.Contains(t, buf.String(), "Oops...")
	assert.Contains(t, buf.String(), "input file not found: x.mp4\n")
}

func TestRunPipelineMissingInput(t *testing.T) {
	cfg := config.Default()
	cfg.NoReveal = true
	cfg.Output = filepath.Join(t.TempDir(), "out.png")
	cfg.FFmpeg.BinaryPath = "sh"
	cfg.FFmpeg.ProbePath = "sh"

	err := runPipeline(context.Background(), cfg, filepath.Join(t.TempDir(), "missing.mp4"), io.Discard)
	require.Error(t, err)
	assert.Equal(t, pipeline.KindInputNotFound, pipeline.KindOf(err))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "framestack.yaml")

	out, err := execute(t, nil, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = execute(t, nil, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, nil, "config", "init", "--force", path)
	require.NoError(t, err)
}

func TestListPalettes(t *testing.T) {
	cfgPath := writeConfig(t, "palette: flat\n")

	out, err := execute(t, nil, "--config", cfgPath, "list", "palettes")
	require.NoError(t, err)

	assert.Contains(t, out, "  classic    #000000 -> #ffffff -> #000000\n")
	assert.Contains(t, out, "* flat       #808080\n")
	assert.Contains(t, out, "vignette")

	_, err = execute(t, nil, "list", "models")
	require.Error(t, err)
}
