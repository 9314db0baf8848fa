package main

import (
	"imxnn/app"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

const MIXER_NAME = "mix"

func main() {
	a, err := app.New("segmentation", nil)
	if err != nil {
		app.Fatal(nil, err)
	}
	cfg := a.Config
	backend := imx.ParseBackend(cfg.Backend)
	if err := a.RejectNeutron(backend); err != nil {
		app.Fatal(a.Logger, err)
	}
	model, err := a.Model(cfg.ModelPath, backend, nnstreamer.ParseNormalization(cfg.Normalization))
	if err != nil {
		app.Fatal(a.Logger, err)
	}

	p := gstpipeline.New(a.Imx)
	p.EnablePerf(cfg.DisplayPerf.Perf(), cfg.TextColor)
	p.Slideshow(cfg.VideoPath, -1, -1)
	p.VideoTransform("", model.Shape.Width, model.Shape.Height, false, false, false)
	p.Tee("t")
	p.Branch("t", gstpipeline.Queue{Name: "thread-nn", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	model.Inference(p, "seg_filter", "")
	nnstreamer.ImageSegment(p, nnstreamer.TfliteDeeplab, -1)
	p.LinkCompositor(MIXER_NAME)
	p.Branch("t", gstpipeline.Queue{Name: "thread-img", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	p.VideoMixer(MIXER_NAME)
	if err := p.Display(true); err != nil {
		app.Fatal(a.Logger, err)
	}
	a.PreviewBranch(p, "t")

	pipe, err := a.Runner.Launch("segmentation", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
