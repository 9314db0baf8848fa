package decoder

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const DEPTH_RANGE_THRESHOLD = 1e-6

// DepthToGray min-max normalizes a depth map to GRAY8. A flat map is black.
func DepthToGray(raw []float32) []byte {
	out := make([]byte, len(raw))
	if len(raw) == 0 {
		return out
	}
	v := toFloat64s(raw)
	lo, hi := floats.Min(v), floats.Max(v)
	if hi-lo <= DEPTH_RANGE_THRESHOLD {
		return out
	}
	for i, d := range v {
		out[i] = byte(math.Round(255 * (d - lo) / (hi - lo)))
	}
	return out
}
