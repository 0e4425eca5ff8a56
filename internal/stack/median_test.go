package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pixels(px ...[3]byte) []byte {
	out := make([]byte, 0, len(px)*3)
	for _, p := range px {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

func TestMedianUniform(t *testing.T) {
	pix := pixels([3]byte{10, 20, 30}, [3]byte{10, 20, 30}, [3]byte{10, 20, 30})
	assert.Equal(t, Color{10, 20, 30}, Median(pix))
}

func TestMedianOddCount(t *testing.T) {
	pix := pixels([3]byte{1, 200, 0}, [3]byte{9, 100, 0}, [3]byte{5, 0, 255})
	assert.Equal(t, Color{5, 100, 0}, Median(pix))
}

func TestMedianEvenCountTakesUpper(t *testing.T) {
	// four pixels: half is 2, so the median is the first value whose
	// cumulative count reaches 3
	pix := pixels([3]byte{0, 0, 0}, [3]byte{10, 10, 10}, [3]byte{20, 20, 20}, [3]byte{30, 30, 30})
	assert.Equal(t, Color{20, 20, 20}, Median(pix))
}

func TestMedianChannelsIndependent(t *testing.T) {
	pix := pixels([3]byte{255, 0, 7}, [3]byte{255, 0, 7}, [3]byte{0, 255, 7})
	assert.Equal(t, Color{255, 0, 7}, Median(pix))
}

func TestMedianIgnoresTrailingPartialPixel(t *testing.T) {
	pix := append(pixels([3]byte{4, 5, 6}), 99)
	assert.Equal(t, Color{4, 5, 6}, Median(pix))
}
