package perf

import (
	"testing"

	"imxnn/gstpipeline"
)

func TestParseFPS(t *testing.T) {
	tests := []struct {
		msg  string
		want float64
		ok   bool
	}{
		{"rendered: 120, dropped: 0, current: 29.97, average: 30.01", 29.97, true},
		{"rendered: 10, dropped: 2, fps: 15.50", 15.5, true},
		{"rendered: 0, dropped: 0", 0, false},
		{"current: n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseFPS(tt.msg)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseFPS(%q) = %v %v, want %v %v", tt.msg, got, ok, tt.want, tt.ok)
		}
	}
}

func TestText(t *testing.T) {
	filters := []Filter{{Name: "detection_filter", Latency: 12500}}
	got := Text(gstpipeline.Perf{Frequency: true, Temporal: true}, 25, filters)
	want := "Pipeline: 40.00 ms / 25.00 FPS\nInference for detection_filter : 12.50 ms / 80.00 IPS"
	if got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}

	got = Text(gstpipeline.Perf{Frequency: true}, 0, nil)
	if want := "Pipeline: 0.000 FPS"; got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}
