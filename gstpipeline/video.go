package gstpipeline

import (
	"fmt"
	"slices"
)

// imxvideoconvert_g2d and imxvideoconvert_pxp reject frames of 16 pixels or less.
const DIM_LIMIT = 16

var g2dFormats = []string{"RGB16", "RGBx", "RGBA", "BGRA", "BGRx", "BGR16", "ARGB", "ABGR", "xRGB", "xBGR"}
var pxpFormats = []string{"BGRx", "BGRA", "BGR", "RGB16", "GRAY8", "UYVY"}

func dimOk(v int) bool {
	return v > DIM_LIMIT || v == -1
}

// VideoTransform scales, converts and optionally flips the stream, on G2D or PXP when the
// SoC has it and the format is supported, on the CPU otherwise. A dimension of -1 keeps the
// input size.
func (p *Pipeline) VideoTransform(format string, width int, height int, flip bool, aspectRatio bool, useCPU bool) {
	validG2D := format == "" || slices.Contains(g2dFormats, format)
	validPXP := format == "" || slices.Contains(pxpFormats, format)
	accel := !useCPU && dimOk(width) && dimOk(height)

	var cmd string
	switch {
	case accel && validG2D && p.imx.HasG2D():
		cmd = "imxvideoconvert_g2d "
		cmd += pick(flip, "rotation=4 ! ", "! ")
	case accel && validPXP && p.imx.HasPXP():
		cmd = "imxvideoconvert_pxp "
		cmd += pick(flip, "rotation=4 ! ", "! ")
	default:
		cmd = "videoscale ! videoconvert "
		cmd += pick(flip, "! videoflip video-direction=4 ! ", "! ")
	}

	var cmdFormat string
	if format != "" {
		cmdFormat = ",format=" + format
	}
	if width > 0 && height > 0 {
		cmd += fmt.Sprintf("video/x-raw,width=%d,height=%d%s", width, height, cmdFormat)
		cmd += pick(aspectRatio, ",pixel-aspect-ratio=1/1 ! ", " ! ")
	} else if format != "" {
		cmd += "video/x-raw" + cmdFormat + " ! "
	}
	p.Add(cmd)
}

// ScaleToRGB scales to width x height RGB. Neither accelerator outputs packed RGB, so the
// last conversion runs on the CPU.
func (p *Pipeline) ScaleToRGB(width int, height int) {
	switch {
	case p.imx.HasG2D():
		p.VideoTransform("RGBA", width, height, false, false, false)
		p.Add("videoconvert ! video/x-raw,format=RGB ! ")
	case p.imx.HasPXP():
		p.VideoTransform("BGR", width, height, false, false, false)
		p.Add("videoconvert ! video/x-raw,format=RGB ! ")
	default:
		p.VideoTransform("RGB", width, height, false, false, false)
	}
}

type Crop struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

func (p *Pipeline) VideoCrop(name string, width int, height int, crop Crop) {
	cmd := "videocrop name=" + name + " "
	for _, side := range []struct {
		key string
		v   int
	}{{"top", crop.Top}, {"bottom", crop.Bottom}, {"left", crop.Left}, {"right", crop.Right}} {
		if side.v != 0 {
			cmd += fmt.Sprintf("%s=%d ", side.key, side.v)
		}
	}
	cmd += "! "
	if width > 0 && height > 0 {
		cmd += fmt.Sprintf("video/x-raw,width=%d,height=%d ! ", width, height)
	}
	p.Add(cmd)
}

// CompositorInput describes one sink pad, in link order: the first linked stream is sink_0.
type CompositorInput struct {
	Order        int
	Transparency bool
	// Width and Height place the stream in a region of the output when both are set.
	XPos   int
	YPos   int
	Width  int
	Height int
}

// Compositor mixes the streams previously linked with LinkCompositor. latency is in ns, 0
// leaves the element default.
func (p *Pipeline) Compositor(name string, latency int, inputs ...CompositorInput) {
	var cmd string
	switch {
	case p.imx.HasG2D():
		cmd = "imxcompositor_g2d name=" + name + " "
	case p.imx.HasPXP():
		cmd = "imxcompositor_pxp name=" + name + " "
	default:
		cmd = "compositor name=" + name + " "
	}
	for i, in := range inputs {
		cmd += fmt.Sprintf("sink_%d::zorder=%d ", i, in.Order)
		// imxcompositor_pxp has no RGBA sink, so overlays are blended instead.
		if in.Transparency && !p.imx.HasG2D() && p.imx.HasPXP() {
			cmd += fmt.Sprintf("sink_%d::alpha=0.3 ", i)
		}
		if in.Width > 0 && in.Height > 0 {
			cmd += fmt.Sprintf("sink_%d::xpos=%d sink_%d::ypos=%d sink_%d::width=%d sink_%d::height=%d ",
				i, in.XPos, i, in.YPos, i, in.Width, i, in.Height)
		}
	}
	if latency != 0 {
		cmd += fmt.Sprintf("latency=%d min-upstream-latency=%d ", latency, latency)
	}
	p.Add(cmd + "! ")
}

// VideoMixer blends a segmentation mask (sink_1) over the camera (sink_0).
func (p *Pipeline) VideoMixer(name string) {
	p.Add("videomixer name=" + name + " sink_1::alpha=0.4 sink_0::alpha=1.0 background=3 ! videoconvert ! ")
}

func pick(cond bool, a string, b string) string {
	if cond {
		return a
	}
	return b
}
