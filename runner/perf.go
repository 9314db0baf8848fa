package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"imxnn/gstpipeline"
	"imxnn/perf"
)

func intProperty(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

type perfFilter struct {
	pipe *Pipe
	perf.Filter
}

// pollPerf samples the tensor_filter latencies of every pipeline and the display rate, and
// writes them to the perf textoverlay. Filters of pipelines without a display, like the
// emotion pipeline, are shown on the overlay of the one that has it.
func (r *Runner) pollPerf(ctx context.Context, pipes []*Pipe) {
	var filters []perfFilter
	var display *Pipe
	for _, p := range pipes {
		for _, name := range p.desc.FilterNames() {
			filters = append(filters, perfFilter{pipe: p, Filter: perf.Filter{Name: name}})
		}
		if display == nil && p.desc.HasPerfOverlay() {
			display = p
		}
	}

	ticker := time.NewTicker(PERF_POLL_INTERVAL)
	defer ticker.Stop()
	var fps float64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for i := range filters {
			f := &filters[i]
			if !f.pipe.Playing() {
				continue
			}
			elem, err := f.pipe.Element(f.Name)
			if err != nil {
				continue
			}
			v, err := elem.GetProperty("latency")
			if err != nil {
				continue
			}
			if latency, ok := intProperty(v); ok && latency > 0 {
				f.Latency = latency
			}
		}
		if display == nil || !display.Playing() {
			continue
		}
		if elem, err := display.Element(gstpipeline.PERF_SINK_NAME); err == nil {
			if v, err := elem.GetProperty("last-message"); err == nil {
				if msg, ok := v.(string); ok {
					if f, ok := perf.ParseFPS(msg); ok {
						fps = f
					}
				}
			}
		}
		shown := make([]perf.Filter, len(filters))
		for i, f := range filters {
			shown[i] = f.Filter
		}
		p := display.desc.Perf()
		if override := r.perf.Load(); override != nil {
			p = *override
		}
		var text string
		if p.Enabled() {
			text = perf.Text(p, fps, shown)
		}
		if err := display.SetProperty(gstpipeline.PERF_OVERLAY_NAME, "text", text); err != nil {
			display.logger.Warn("Cannot update perf overlay", zap.Error(err))
			return
		}
	}
}
