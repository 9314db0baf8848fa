package overlay

import (
	"errors"
	"image/color"
	"testing"

	"imxnn/gstpipeline"
)

func TestParseColor(t *testing.T) {
	tests := map[string]color.RGBA{
		"":      White,
		"white": White,
		"red":   Red,
		"green": Green,
		"blue":  {B: 255, A: 255},
		"black": {A: 255},
	}
	for name, want := range tests {
		got, err := ParseColor(name)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("ParseColor(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseColor("orange"); !errors.Is(err, gstpipeline.ErrTextColor) {
		t.Errorf("ParseColor(orange) error = %v, want %v", err, gstpipeline.ErrTextColor)
	}
}
