package gstpipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"imxnn/imx"
)

type Camera struct {
	Name      string
	Device    string
	Width     int
	Height    int
	Framerate int
	Format    string
	Flip      bool
}

// DefaultCameraDevice is the first capture node of the EVK camera on each SoC.
func DefaultCameraDevice(i imx.Imx) string {
	if i.SoC() == imx.IMX8MP {
		return "/dev/video3"
	}
	return "/dev/video0"
}

// CameraSize is the capture size the EVK cameras are driven at for a requested size:
// 320x240 when it fits, 640x480 otherwise. An unset size is 640x480.
func CameraSize(width int, height int) (int, int) {
	if width > 0 && height > 0 && width <= 320 && height <= 240 {
		return 320, 240
	}
	return 640, 480
}

func (p *Pipeline) Camera(cam Camera) {
	if cam.Device == "" {
		cam.Device = DefaultCameraDevice(p.imx)
	}
	if cam.Framerate == 0 {
		cam.Framerate = 30
	}
	cam.Width, cam.Height = CameraSize(cam.Width, cam.Height)
	p.Add(fmt.Sprintf("v4l2src name=%s device=%s num-buffers=-1 ! video/x-raw,width=%d,height=%d,framerate=%d/1 ! ",
		cam.Name, cam.Device, cam.Width, cam.Height, cam.Framerate))
	if cam.Format != "" || cam.Flip {
		p.VideoTransform(cam.Format, -1, -1, cam.Flip, false, false)
	}
}

// VideoFile decodes an H.264 file with the VPU, which i.MX 9 parts do not have.
// width and height of 0 keep the decoded size.
func (p *Pipeline) VideoFile(path string, width int, height int) error {
	if p.imx.IsIMX9() {
		return fmt.Errorf("video file can't be decoded with %s: %w", p.imx.Name(), ErrUnsupportedSoC)
	}
	var decoder string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mkv", ".webm":
		decoder = "matroskademux ! "
	case ".mp4":
		decoder = "qtdemux ! "
	default:
		return fmt.Errorf("%s: %w", path, ErrVideoFormat)
	}
	p.Add("filesrc location=" + path + " ! " + decoder + "vpudec ! ")
	if width > 0 && height > 0 {
		p.VideoTransform("", width, height, false, true, false)
	}
	return nil
}

func (p *Pipeline) Slideshow(path string, width int, height int) {
	p.Add("multifilesrc location=" + path + " loop=true caps=image/jpeg,framerate=1/2 ! jpegdec ! ")
	if width > 0 && height > 0 {
		p.VideoTransform("", width, height, false, true, false)
	}
}

// AppSrcFormat is the GstFormat of the appsrc segment.
type AppSrcFormat int

const (
	FormatBytes AppSrcFormat = 2
	FormatTime  AppSrcFormat = 3
)

type AppSrc struct {
	Name       string
	IsLive     bool
	EmitSignal bool
	MaxBuffers int
	Leaky      Leaky
	FormatType AppSrcFormat
	Width      int
	Height     int
	Format     string
	Framerate  int
	// DoTimestamp stamps pushed buffers with the running time.
	DoTimestamp bool
}

func (p *Pipeline) AppSrc(src AppSrc) {
	cmd := "appsrc"
	if src.Name != "" {
		cmd += " name=" + src.Name
	}
	if src.IsLive {
		cmd += " is-live=true"
	}
	caps := fmt.Sprintf("video/x-raw,width=%d,height=%d,framerate=%d/1", src.Width, src.Height, src.Framerate)
	if src.Format != "" {
		caps += ",format=" + src.Format
	}
	cmd += " caps=" + caps
	cmd += fmt.Sprintf(" format=%d", src.FormatType)
	if !src.EmitSignal {
		cmd += " emit-signals=false"
	}
	cmd += fmt.Sprintf(" max-buffers=%d", src.MaxBuffers)
	if src.Leaky != LeakyNo {
		cmd += fmt.Sprintf(" leaky-type=%d", src.Leaky)
	}
	if src.DoTimestamp {
		cmd += " do-timestamp=true"
	}
	p.Add(cmd + " ! " + caps + " ! ")
}
