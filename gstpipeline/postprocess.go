package gstpipeline

import (
	"fmt"
	"strings"
)

const PERF_OVERLAY_NAME = "perf"
const PERF_SINK_NAME = "img_tensor"
const PERF_FONT_SIZE = 12

var argbColors = map[string]uint32{
	"red":   0xFFFF0000,
	"green": 0xFF00FF00,
	"blue":  0xFF0000FF,
	"black": 0xFF000000,
	"white": 0xFFFFFFFF,
}

// ArgbColor resolves a color name to the ARGB value textoverlay expects. An empty name is
// white.
func ArgbColor(name string) (uint32, error) {
	if name == "" {
		name = "white"
	}
	c, ok := argbColors[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrTextColor)
	}
	return c, nil
}

// convert is the cheapest element able to bring an overlay output back to a display format.
func (p *Pipeline) convert() string {
	switch {
	case p.imx.HasG2D():
		return "imxvideoconvert_g2d"
	case p.imx.HasPXP():
		return "imxvideoconvert_pxp"
	}
	return "videoconvert"
}

// Display ends a branch on Wayland. With perf enabled the first display also carries the
// perf textoverlay, and the sink is an fpsdisplaysink the runner can query.
func (p *Pipeline) Display(sync bool) error {
	cmdSync := pick(sync, "", "sync=false ")
	if !p.perf.Enabled() {
		p.Add("waylandsink " + cmdSync)
		return nil
	}
	if !p.perfAdded {
		color, err := ArgbColor(p.perfColor)
		if err != nil {
			return err
		}
		p.Add(fmt.Sprintf("textoverlay name=%s font-desc=\"Arial, %d\" valignment=top halignment=left line-alignment=left color=%d shaded-background=false ! ",
			PERF_OVERLAY_NAME, PERF_FONT_SIZE, color))
		p.perfAdded = true
	}
	p.Add("fpsdisplaysink name=" + PERF_SINK_NAME + " text-overlay=false video-sink=waylandsink " + cmdSync)
	return nil
}

// HasPerfOverlay reports whether Display placed the perf textoverlay.
func (p *Pipeline) HasPerfOverlay() bool {
	return p.perfAdded
}

type TextOverlay struct {
	Name       string
	FontName   string
	FontSize   int
	Color      string
	Text       string
	VAlignment string
	HAlignment string
}

func (p *Pipeline) TextOverlay(o TextOverlay) error {
	cmd := fmt.Sprintf("textoverlay name=%s font-desc=\"%s, %d\"", o.Name, o.FontName, o.FontSize)
	if o.Color != "" {
		color, err := ArgbColor(o.Color)
		if err != nil {
			return err
		}
		cmd += fmt.Sprintf(" color=%d", color)
	}
	if o.Text != "" {
		cmd += " text=" + o.Text
	}
	if o.VAlignment != "" {
		cmd += " valignment=" + o.VAlignment
	}
	if o.HAlignment != "" {
		cmd += " halignment=" + o.HAlignment
	}
	p.Add(cmd + " ! " + p.convert() + " ! ")
	return nil
}

// Overlay opens a transparent BGRA stream fed by the application, to be linked into a
// compositor above the video.
func (p *Pipeline) Overlay(name string, width int, height int) {
	p.AppSrc(AppSrc{
		Name:        name,
		IsLive:      true,
		MaxBuffers:  2,
		Leaky:       LeakyDownstream,
		FormatType:  FormatTime,
		Width:       width,
		Height:      height,
		Format:      "BGRA",
		Framerate:   0,
		DoTimestamp: true,
	})
}

// SaveToVideo encodes the branch to H.264 with the VPU. format is mkv or mp4.
func (p *Pipeline) SaveToVideo(format string, path string) error {
	if p.imx.IsIMX9() {
		return fmt.Errorf("video file can't be encoded with %s: %w", p.imx.Name(), ErrUnsupportedSoC)
	}
	var mux string
	switch format {
	case "mkv":
		mux = "matroskamux"
	case "mp4":
		mux = "qtmux"
	default:
		return fmt.Errorf("%s: %w", format, ErrVideoFormat)
	}
	p.SetSave(true)
	p.Add("vpuenc_h264 ! h264parse ! " + mux + " ! filesink location=" + path + " ")
	return nil
}

type AppSink struct {
	Name        string
	Sync        bool
	MaxBuffers  int
	Drop        bool
	EmitSignals bool
}

func (p *Pipeline) AppSink(s AppSink) {
	cmd := "appsink"
	if s.Name != "" {
		cmd += " name=" + s.Name
	}
	if !s.Sync {
		cmd += " sync=false"
	}
	cmd += fmt.Sprintf(" max-buffers=%d", s.MaxBuffers)
	if s.Drop {
		cmd += " drop=true"
	}
	if s.EmitSignals {
		cmd += " emit-signals=true"
	}
	p.Add(cmd + " ")
}
