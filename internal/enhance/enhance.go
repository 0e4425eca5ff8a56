// Package enhance implements the finishing passes applied to a frame stack:
// gradient blending followed by contrast and saturation enhancement.
package enhance

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Params holds the finishing strengths. A scale of 1.0 leaves the image
// unchanged for Contrast and Saturation; a Strength of 0 skips the overlay.
type Params struct {
	Strength   float64
	Contrast   float64
	Saturation float64
}

// Process blends overlay into base, then applies contrast and saturation
func Process(base, overlay image.Image, p Params) (*image.NRGBA, error) {
	blended, err := Blend(base, overlay, p.Strength)
	if err != nil {
		return nil, err
	}
	return Saturation(Contrast(blended, p.Contrast), p.Saturation), nil
}

// Blend interpolates base toward overlay: base + strength*(overlay-base)
func Blend(base, overlay image.Image, strength float64) (*image.NRGBA, error) {
	if base.Bounds().Size() != overlay.Bounds().Size() {
		return nil, fmt.Errorf("overlay is %v but image is %v", overlay.Bounds().Size(), base.Bounds().Size())
	}
	if strength < 0 || strength > 1 {
		return nil, fmt.Errorf("blend strength must be within [0,1], got %g", strength)
	}

	dst := imaging.Clone(base)
	src := imaging.Clone(overlay)
	alpha := float32(strength)
	for i, a := range dst.Pix {
		dst.Pix[i] = lerp(a, src.Pix[i], alpha)
	}
	return dst, nil
}

// lerp evaluates a + alpha*(b-a) in single precision and truncates
func lerp(a, b uint8, alpha float32) uint8 {
	v := float32(a) + float32(alpha*float32(int(b)-int(a)))
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// Contrast scales every channel away from the image's mean gray level
func Contrast(img image.Image, factor float64) *image.NRGBA {
	if factor == 1 {
		return imaging.Clone(img)
	}

	pivot := float64(meanGray(img))
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: mix(pivot, float64(c.R), factor),
			G: mix(pivot, float64(c.G), factor),
			B: mix(pivot, float64(c.B), factor),
			A: c.A,
		}
	})
}

// Saturation scales every pixel away from its own gray level
func Saturation(img image.Image, factor float64) *image.NRGBA {
	if factor == 1 {
		return imaging.Clone(img)
	}

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		gray := float64(Luma(c.R, c.G, c.B))
		return color.NRGBA{
			R: mix(gray, float64(c.R), factor),
			G: mix(gray, float64(c.G), factor),
			B: mix(gray, float64(c.B), factor),
			A: c.A,
		}
	})
}

// Luma converts to 8-bit gray with ITU-R 601-2 weights in 16-bit fixed point
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// meanGray is the rounded mean luma of the image
func meanGray(img image.Image) uint8 {
	src := imaging.Clone(img)
	n := len(src.Pix) / 4
	if n == 0 {
		return 0
	}

	var sum uint64
	for i := 0; i < len(src.Pix); i += 4 {
		sum += uint64(Luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2]))
	}
	return uint8(float64(sum)/float64(n) + 0.5)
}

// mix evaluates from + factor*(to-from), truncated into 0..255
func mix(from, to, factor float64) uint8 {
	v := from + factor*(to-from)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
