package perf

import (
	"fmt"
	"strconv"
	"strings"

	"imxnn/gstpipeline"
)

// ParseFPS reads the rate from an fpsdisplaysink last-message, in either the
// "rendered: R, dropped: D, current: C, average: A" or "... fps: F" form.
func ParseFPS(msg string) (float64, bool) {
	for _, key := range []string{"current: ", "fps: "} {
		i := strings.Index(msg, key)
		if i < 0 {
			continue
		}
		field := msg[i+len(key):]
		if end := strings.IndexAny(field, ", "); end >= 0 {
			field = field[:end]
		}
		fps, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, false
		}
		return fps, true
	}
	return 0, false
}

type Filter struct {
	Name string
	// Latency is the last tensor_filter latency in µs.
	Latency float64
}

func trunc(v float64) string {
	s := fmt.Sprintf("%f", v)
	if len(s) > 5 {
		s = s[:5]
	}
	return s
}

func measure(p gstpipeline.Perf, ms float64, rate float64, unit string) string {
	var s string
	if p.Temporal {
		s = trunc(ms) + " ms"
		if p.Frequency {
			s += " / "
		}
	}
	if p.Frequency {
		s += trunc(rate) + " " + unit
	}
	return s
}

// Text renders the perf overlay: the pipeline rate, then one line per inference.
func Text(p gstpipeline.Perf, fps float64, filters []Filter) string {
	var lines []string
	pipeMs := 0.0
	if fps > 0 {
		pipeMs = 1000 / fps
	}
	lines = append(lines, "Pipeline: "+measure(p, pipeMs, fps, "FPS"))
	for _, f := range filters {
		ips := 0.0
		if f.Latency > 0 {
			ips = 1000000 / f.Latency
		}
		lines = append(lines, "Inference for "+f.Name+" : "+measure(p, f.Latency/1000, ips, "IPS"))
	}
	return strings.Join(lines, "\n")
}
