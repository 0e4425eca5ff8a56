package stack

import (
	"image"
	"image/color"

	"github.com/kikiluvv/framestack/internal/overlays"
	"golang.org/x/image/draw"
)

// BuildGradient renders a vertical gradient across the palette stops.
// Every row is a single color; a zero height yields an empty image.
func BuildGradient(width, height int, palette overlays.Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 || len(palette) == 0 {
		return img
	}

	for y := 0; y < height; y++ {
		row := image.Rect(0, y, width, y+1)
		draw.Draw(img, row, image.NewUniform(GradientColor(y, height, palette)), image.Point{}, draw.Src)
	}
	return img
}

// GradientColor returns the color of row y of a gradient of the given
// height. y may equal height, which yields the last palette stop.
func GradientColor(y, height int, palette overlays.Palette) color.RGBA {
	if len(palette) == 0 {
		return color.RGBA{A: 255}
	}

	minval := 1.0
	maxval := float64(len(palette))
	delta := maxval - minval

	h := float64(height)
	if h == 0 {
		h = 1
	}
	f := float64(y) / h
	val := minval + f*delta

	return interpolate(minval, maxval, val, palette)
}

// interpolate maps val in [minval, maxval] onto the palette index range and
// blends the two neighbouring stops, truncating each channel.
func interpolate(minval, maxval, val float64, palette overlays.Palette) color.RGBA {
	maxIndex := len(palette) - 1

	delta := maxval - minval
	if delta == 0 {
		delta = 1
	}
	v := (val - minval) / delta * float64(maxIndex)

	i1 := int(v)
	if i1 < 0 {
		i1 = 0
	}
	if i1 > maxIndex {
		i1 = maxIndex
	}
	i2 := min(i1+1, maxIndex)
	f := v - float64(i1)

	c1, c2 := palette[i1], palette[i2]
	lerp := func(a, b uint8) uint8 {
		return uint8(int(float64(a) + f*(float64(b)-float64(a))))
	}

	return color.RGBA{
		R: lerp(c1.R, c2.R),
		G: lerp(c1.G, c2.G),
		B: lerp(c1.B, c2.B),
		A: 255,
	}
}
