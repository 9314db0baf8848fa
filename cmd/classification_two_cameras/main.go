package main

import (
	"imxnn/app"
	"imxnn/config"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

const COMPOSITOR_NAME = "mix"

// Both cameras share a 10 ms compositor latency whatever the backends.
const TWO_CAMERAS_LATENCY_NS = 10000000

type camera struct {
	name     string
	tee      string
	filter   string
	overlay  string
	device   string
	model    *nnstreamer.Model
	nnQueue  string
	imgQueue string
}

func (c camera) add(p *gstpipeline.Pipeline, cfg *config.Config) error {
	p.Camera(gstpipeline.Camera{
		Name:      c.name,
		Device:    c.device,
		Width:     cfg.Camera.Width,
		Height:    cfg.Camera.Height,
		Framerate: cfg.Camera.Framerate,
	})
	p.Tee(c.tee)
	p.Branch(c.tee, gstpipeline.Queue{Name: c.nnQueue, MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	c.model.Inference(p, c.filter, "")
	nnstreamer.ImageLabeling(p, cfg.LabelsPath)
	p.LinkTextOverlay(c.overlay)
	p.Branch(c.tee, gstpipeline.Queue{Name: c.imgQueue, MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	return p.TextOverlay(gstpipeline.TextOverlay{
		Name:       c.overlay,
		FontName:   "Sans",
		FontSize:   24,
		VAlignment: "baseline",
		HAlignment: "center",
	})
}

func main() {
	a, err := app.New("classification_two_cameras", nil)
	if err != nil {
		app.Fatal(nil, err)
	}
	cfg := a.Config
	path1, path2 := config.Pair(cfg.ModelPath)
	backend1, backend2 := config.Pair(cfg.Backend)
	norm1, norm2 := config.Pair(cfg.Normalization)
	device1, device2 := config.Pair(cfg.CameraDevice)

	model1, err := a.Model(path1, imx.ParseBackend(backend1), nnstreamer.ParseNormalization(norm1))
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	model2, err := a.Model(path2, imx.ParseBackend(backend2), nnstreamer.ParseNormalization(norm2))
	if err != nil {
		app.Fatal(a.Logger, err)
	}

	p := gstpipeline.New(a.Imx)
	p.EnablePerf(cfg.DisplayPerf.Perf(), cfg.TextColor)
	cameras := []camera{
		{"cam_src", "firstCam", "cam1", "overlay", device1, model1, "first-cam-inference", "first-cam-overlay"},
		{"cam_src2", "secondCam", "cam2", "overlay2", device2, model2, "second-cam-inference", "second-cam-overlay"},
	}
	for i, c := range cameras {
		if err := c.add(p, cfg); err != nil {
			app.Fatal(a.Logger, err)
		}
		if i == 0 {
			p.LinkCompositor(COMPOSITOR_NAME)
		}
	}
	w, h := gstpipeline.CameraSize(cfg.Camera.Width, cfg.Camera.Height)
	p.Compositor(COMPOSITOR_NAME, TWO_CAMERAS_LATENCY_NS,
		gstpipeline.CompositorInput{Order: 1, XPos: 0, YPos: 0, Width: w, Height: h},
		gstpipeline.CompositorInput{Order: 1, XPos: w, YPos: 0, Width: w, Height: h})
	if err := p.Display(false); err != nil {
		app.Fatal(a.Logger, err)
	}
	a.PreviewBranch(p, "firstCam")

	pipe, err := a.Runner.Launch("classification_two_cameras", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
