package decoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrTensorSize = errors.New("unexpected tensor size")

// Float32s reinterprets a little-endian float32 tensor memory.
func Float32s(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%d bytes: %w", len(b), ErrTensorSize)
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

func toFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
