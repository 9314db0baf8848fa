package main

import (
	"imxnn/app"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

const OVERLAY_NAME = "overlay"

func main() {
	a, err := app.New("classification", nil)
	if err != nil {
		app.Fatal(nil, err)
	}
	cfg := a.Config
	model, err := a.Model(cfg.ModelPath, imx.ParseBackend(cfg.Backend), nnstreamer.ParseNormalization(cfg.Normalization))
	if err != nil {
		app.Fatal(a.Logger, err)
	}

	p := gstpipeline.New(a.Imx)
	p.EnablePerf(cfg.DisplayPerf.Perf(), cfg.TextColor)
	if _, err := a.Source(p, "cam_src", cfg.Camera.Width, cfg.Camera.Height, ""); err != nil {
		app.Fatal(a.Logger, err)
	}
	p.Tee("t")
	p.Branch("t", gstpipeline.Queue{Name: "thread-nn", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	model.Inference(p, "classification_filter", "")
	nnstreamer.ImageLabeling(p, cfg.LabelsPath)
	p.LinkTextOverlay(OVERLAY_NAME)
	p.Branch("t", gstpipeline.Queue{Name: "thread-img", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	if err := p.TextOverlay(gstpipeline.TextOverlay{
		Name:       OVERLAY_NAME,
		FontName:   "Sans",
		FontSize:   24,
		VAlignment: "baseline",
		HAlignment: "center",
	}); err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := p.Display(false); err != nil {
		app.Fatal(a.Logger, err)
	}
	a.PreviewBranch(p, "t")

	pipe, err := a.Runner.Launch("classification", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
