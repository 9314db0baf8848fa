package main

import (
	"imxnn/app"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

const COMPOSITOR_NAME = "mix"

func main() {
	a, err := app.New("detection", nil)
	if err != nil {
		app.Fatal(nil, err)
	}
	cfg := a.Config
	backend := imx.ParseBackend(cfg.Backend)
	model, err := a.Model(cfg.ModelPath, backend, nnstreamer.ParseNormalization(cfg.Normalization))
	if err != nil {
		app.Fatal(a.Logger, err)
	}

	p := gstpipeline.New(a.Imx)
	p.EnablePerf(cfg.DisplayPerf.Perf(), cfg.TextColor)
	useCamera, err := a.Source(p, "cam_src", cfg.Camera.Width, cfg.Camera.Height, "")
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	width, height := cfg.Camera.Width, cfg.Camera.Height
	if useCamera {
		width, height = gstpipeline.CameraSize(width, height)
	}
	p.Tee("t")
	p.Branch("t", gstpipeline.Queue{Name: "thread-nn", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	model.Inference(p, "detection_filter", "")
	nnstreamer.BoundingBoxes(p, nnstreamer.BoundingBoxesOptions{
		Mode:    nnstreamer.MobilenetSSD,
		Labels:  cfg.LabelsPath,
		Option3: nnstreamer.NewSSDOptions(cfg.BoxesPath).Option3(),
		Out:     nnstreamer.Dimension{Width: width, Height: height},
		In:      nnstreamer.Dimension{Width: model.Shape.Width, Height: model.Shape.Height},
	})
	p.LinkCompositor(COMPOSITOR_NAME)

	imgLeaky := gstpipeline.LeakyNo
	if useCamera {
		imgLeaky = gstpipeline.LeakyDownstream
	}
	p.Branch("t", gstpipeline.Queue{Name: "thread-img", MaxSizeBuffer: 2, Leaky: imgLeaky})
	p.Compositor(COMPOSITOR_NAME, nnstreamer.Latency(backend, a.Imx),
		gstpipeline.CompositorInput{Order: 2, Transparency: true},
		gstpipeline.CompositorInput{Order: 1})
	if err := p.Display(false); err != nil {
		app.Fatal(a.Logger, err)
	}
	a.PreviewBranch(p, "t")

	pipe, err := a.Runner.Launch("detection", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
