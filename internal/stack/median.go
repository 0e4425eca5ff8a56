package stack

// Channels is the number of interleaved channels in a decoded frame
const Channels = 3

// Color is a representative frame color in decode channel order. Values are
// kept unclamped so smoothing can carry sums above 255.
type Color [Channels]float64

// Median returns the per-channel median of an interleaved 8-bit buffer.
// The median of a channel is the smallest value whose cumulative histogram
// count exceeds half the pixel count.
func Median(pix []byte) Color {
	var hist [Channels][256]int
	for i := 0; i+Channels <= len(pix); i += Channels {
		for c := 0; c < Channels; c++ {
			hist[c][pix[i+c]]++
		}
	}

	count := len(pix) / Channels
	half := count / 2

	var out Color
	for c := 0; c < Channels; c++ {
		sum := 0
		v := 0
		for ; v < 256; v++ {
			sum += hist[c][v]
			if sum > half {
				break
			}
		}
		out[c] = float64(min(v, 255))
	}
	return out
}
