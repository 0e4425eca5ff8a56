package stack

import (
	"image/color"
	"testing"

	"github.com/kikiluvv/framestack/internal/overlays"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func classic(t *testing.T) overlays.Palette {
	t.Helper()
	p, err := overlays.NewRegistry().Lookup(overlays.Classic)
	require.NoError(t, err)
	return p
}

func TestGradientEndpoints(t *testing.T) {
	p := classic(t)
	for _, height := range []int{1, 2, 7, 100, 512} {
		assert.Equal(t, black, GradientColor(0, height, p), "height %d row 0", height)
		assert.Equal(t, black, GradientColor(height, height, p), "height %d last row", height)
	}
}

func TestGradientMiddleIsWhite(t *testing.T) {
	p := classic(t)
	assert.Equal(t, white, GradientColor(256, 512, p))

	// odd heights land next to the peak
	c := GradientColor(50, 101, p)
	assert.InDelta(t, 255, int(c.R), 6)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
}

func TestGradientQuarterRow(t *testing.T) {
	// y/height = 0.25 maps to halfway between black and white, truncated
	c := GradientColor(128, 512, classic(t))
	assert.Equal(t, color.RGBA{R: 127, G: 127, B: 127, A: 255}, c)
}

func TestBuildGradientRowsAreUniform(t *testing.T) {
	p := classic(t)
	img := BuildGradient(16, 40, p)
	require.Equal(t, 16, img.Bounds().Dx())
	require.Equal(t, 40, img.Bounds().Dy())

	for y := 0; y < 40; y++ {
		want := GradientColor(y, 40, p)
		for x := 0; x < 16; x++ {
			assert.Equal(t, want, img.RGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestBuildGradientDeterministic(t *testing.T) {
	p := classic(t)
	assert.Equal(t, BuildGradient(33, 21, p).Pix, BuildGradient(33, 21, p).Pix)
}

func TestBuildGradientZeroHeight(t *testing.T) {
	img := BuildGradient(10, 0, classic(t))
	assert.True(t, img.Bounds().Empty())
	assert.Equal(t, black, GradientColor(0, 0, classic(t)))
}

func TestGradientSingleStop(t *testing.T) {
	flat, err := overlays.NewRegistry().Lookup(overlays.Flat)
	require.NoError(t, err)

	img := BuildGradient(4, 9, flat)
	for y := 0; y < 9; y++ {
		assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, img.RGBAAt(0, y))
	}
}

func TestGradientVignette(t *testing.T) {
	v, err := overlays.NewRegistry().Lookup(overlays.Vignette)
	require.NoError(t, err)

	assert.Equal(t, white, GradientColor(0, 400, v))
	assert.Equal(t, black, GradientColor(200, 400, v))
	assert.Equal(t, white, GradientColor(400, 400, v))
}
