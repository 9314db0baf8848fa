package gstpipeline

import (
	"fmt"
	"os"
	"strings"

	"imxnn/imx"
)

type Leaky int

const (
	LeakyNo Leaky = iota
	LeakyUpstream
	LeakyDownstream
)

type Queue struct {
	Name          string
	MaxSizeBuffer int
	Leaky         Leaky
}

// Perf selects which measurements the perf overlay shows.
type Perf struct {
	Frequency bool
	Temporal  bool
}

func (p Perf) Enabled() bool {
	return p.Frequency || p.Temporal
}

// Pipeline accumulates a gst-launch description for one i.MX SoC.
type Pipeline struct {
	imx         imx.Imx
	cmd         strings.Builder
	filterNames []string
	perf        Perf
	perfColor   string
	perfAdded   bool
	save        bool
}

func New(i imx.Imx) *Pipeline {
	return &Pipeline{imx: i}
}

func (p *Pipeline) Imx() imx.Imx {
	return p.imx
}

func (p *Pipeline) Add(cmd string) {
	p.cmd.WriteString(cmd)
}

func (p *Pipeline) String() string {
	return p.cmd.String()
}

func (p *Pipeline) Tee(name string) {
	p.Add("tee name=" + name + " ")
}

func (p *Pipeline) Branch(tee string, q Queue) {
	cmd := tee + ". ! queue"
	if q.Name != "" {
		cmd += " name=" + q.Name
	}
	if q.MaxSizeBuffer != -1 && q.MaxSizeBuffer != 0 {
		cmd += fmt.Sprintf(" max-size-buffers=%d", q.MaxSizeBuffer)
	}
	if q.Leaky != LeakyNo {
		cmd += fmt.Sprintf(" leaky=%d", q.Leaky)
	}
	p.Add(cmd + " ! ")
}

func (p *Pipeline) LinkTextOverlay(name string) {
	p.Add(name + ".text_sink ")
}

func (p *Pipeline) LinkCompositor(name string) {
	p.Add(name + ". ")
}

func (p *Pipeline) TensorSink(name string, qos bool) {
	p.Add("tensor_sink name=" + name + " ")
	if !qos {
		p.Add("qos=false ")
	}
}

// AddFilterName registers a tensor_filter whose latency the perf overlay reports.
func (p *Pipeline) AddFilterName(name string) {
	p.filterNames = append(p.filterNames, name)
}

func (p *Pipeline) FilterNames() []string {
	return p.filterNames
}

func (p *Pipeline) EnablePerf(perf Perf, color string) {
	p.perf = perf
	p.perfColor = color
}

func (p *Pipeline) Perf() Perf {
	return p.perf
}

func (p *Pipeline) PerfColor() string {
	return p.perfColor
}

func (p *Pipeline) SetSave(save bool) {
	p.save = save
}

func (p *Pipeline) Saving() bool {
	return p.save
}

// StoreVxGraph makes the VSI driver cache compiled OpenVX graphs under path.
// Only the i.MX 8M Plus supports it.
func StoreVxGraph(i imx.Imx, path string) error {
	if i.SoC() != imx.IMX8MP {
		return nil
	}
	if path == "" {
		path = os.Getenv("HOME")
	}
	if err := os.Setenv("VIV_VX_ENABLE_CACHE_GRAPH_BINARY", "1"); err != nil {
		return err
	}
	return os.Setenv("VIV_VX_CACHE_BINARY_GRAPH_DIR", path)
}
