package overlay

import (
	"image/color"

	"imxnn/gstpipeline"
)

var (
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 217, G: 0, B: 255, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// ParseColor accepts the text colors textoverlay accepts, white when name is empty.
func ParseColor(name string) (color.RGBA, error) {
	argb, err := gstpipeline.ArgbColor(name)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{
		A: uint8(argb >> 24),
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
	}, nil
}
