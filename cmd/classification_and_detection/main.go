package main

import (
	"path/filepath"
	"strings"

	"imxnn/app"
	"imxnn/config"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

const OVERLAY_NAME = "overlay"
const COMPOSITOR_NAME = "mix"

func main() {
	a, err := app.New("classification_and_detection", nil)
	if err != nil {
		app.Fatal(nil, err)
	}
	cfg := a.Config
	cPath, dPath := config.Pair(cfg.ModelPath)
	cBackend, dBackend := config.Pair(cfg.Backend)
	cNorm, dNorm := config.Pair(cfg.Normalization)
	cLabels, dLabels := config.Pair(cfg.LabelsPath)

	classification, err := a.Model(cPath, imx.ParseBackend(cBackend), nnstreamer.ParseNormalization(cNorm))
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	detectionBackend := imx.ParseBackend(dBackend)
	detection, err := a.Model(dPath, detectionBackend, nnstreamer.ParseNormalization(dNorm))
	if err != nil {
		app.Fatal(a.Logger, err)
	}

	p := gstpipeline.New(a.Imx)
	p.EnablePerf(cfg.DisplayPerf.Perf(), cfg.TextColor)
	p.Camera(gstpipeline.Camera{
		Name:      "cam_src",
		Device:    cfg.CameraDevice,
		Width:     cfg.Camera.Width,
		Height:    cfg.Camera.Height,
		Framerate: cfg.Camera.Framerate,
	})
	width, height := gstpipeline.CameraSize(cfg.Camera.Width, cfg.Camera.Height)
	p.Tee("t")

	p.Branch("t", gstpipeline.Queue{Name: "thread-nn-class", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	classification.Inference(p, "classification_filter", "")
	nnstreamer.ImageLabeling(p, cLabels)
	p.LinkTextOverlay(OVERLAY_NAME)

	p.Branch("t", gstpipeline.Queue{Name: "thread-nn-det", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	detection.Inference(p, "detection_filter", "")
	nnstreamer.BoundingBoxes(p, nnstreamer.BoundingBoxesOptions{
		Mode:    nnstreamer.MobilenetSSD,
		Labels:  dLabels,
		Option3: nnstreamer.NewSSDOptions(cfg.BoxesPath).Option3(),
		Out:     nnstreamer.Dimension{Width: width, Height: height},
		In:      nnstreamer.Dimension{Width: detection.Shape.Width, Height: detection.Shape.Height},
	})
	p.LinkCompositor(COMPOSITOR_NAME)

	p.Branch("t", gstpipeline.Queue{Name: "thread-img", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	p.Compositor(COMPOSITOR_NAME, nnstreamer.MixedLatency(detectionBackend),
		gstpipeline.CompositorInput{Order: 2, Transparency: true},
		gstpipeline.CompositorInput{Order: 1})
	if err := p.TextOverlay(gstpipeline.TextOverlay{
		Name:       OVERLAY_NAME,
		FontName:   "Sans",
		FontSize:   24,
		VAlignment: "baseline",
		HAlignment: "center",
	}); err != nil {
		app.Fatal(a.Logger, err)
	}
	if cfg.SavePath != "" {
		p.Tee("save")
		p.Branch("save", gstpipeline.Queue{Name: "thread-save"})
		format := strings.TrimPrefix(filepath.Ext(cfg.SavePath), ".")
		if err := p.SaveToVideo(format, cfg.SavePath); err != nil {
			app.Fatal(a.Logger, err)
		}
		p.Branch("save", gstpipeline.Queue{Name: "thread-display"})
	}
	if err := p.Display(false); err != nil {
		app.Fatal(a.Logger, err)
	}
	a.PreviewBranch(p, "t")

	pipe, err := a.Runner.Launch("classification_and_detection", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
