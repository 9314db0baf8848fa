package main

import (
	"go.uber.org/zap"

	"imxnn/app"
	"imxnn/config"
	"imxnn/decoder"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

const TENSOR_SINK_NAME = "tsink_fd"
const APPSRC_NAME = "appsrc_video"

type depthResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Min    int `json:"min"`
	Max    int `json:"max"`
}

func main() {
	defaults := config.Default()
	defaults.Normalization = string(nnstreamer.NormReduced)
	a, err := app.New("depth", defaults)
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
	width, height := model.Shape.Width, model.Shape.Height

	p := gstpipeline.New(a.Imx)
	p.Camera(gstpipeline.Camera{
		Name:      "cam_src",
		Device:    cfg.CameraDevice,
		Width:     cfg.Camera.Width,
		Height:    cfg.Camera.Height,
		Framerate: cfg.Camera.Framerate,
	})
	if a.Preview != nil {
		p.Tee("t")
		p.Branch("t", gstpipeline.Queue{Name: "thread-nn", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	}
	model.Inference(p, "depth_filter", "")
	p.TensorSink(TENSOR_SINK_NAME, true)
	a.PreviewBranch(p, "t")

	// The depth map is shown by a second pipeline fed from the tensor sink.
	display := gstpipeline.New(a.Imx)
	display.EnablePerf(cfg.DisplayPerf.Perf(), cfg.TextColor)
	display.AppSrc(gstpipeline.AppSrc{
		Name:       APPSRC_NAME,
		IsLive:     true,
		MaxBuffers: 1,
		Leaky:      gstpipeline.LeakyDownstream,
		FormatType: gstpipeline.FormatTime,
		Width:      width,
		Height:     height,
		Format:     "GRAY8",
		Framerate:  1,
		// Buffers are stamped on push, the tensor sink carries no video timing.
		DoTimestamp: true,
	})
	display.VideoTransform("", -1, -1, false, false, true)
	if err := display.Display(false); err != nil {
		app.Fatal(a.Logger, err)
	}

	displayPipe, err := a.Runner.Launch("display", display)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	pipe, err := a.Runner.Launch("depth", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	src, err := displayPipe.Source(APPSRC_NAME)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := pipe.OnTensor(TENSOR_SINK_NAME, 1, func(tensors [][]float32) {
		gray := decoder.DepthToGray(tensors[0])
		if len(gray) != width*height {
			a.Logger.Error("Unexpected depth map size", zap.Int("size", len(gray)))
			return
		}
		if err := src.Push(gray); err != nil {
			a.Logger.Error("Could not push buffer to appsrc", zap.Error(err))
			a.Runner.Quit()
			return
		}
		lo, hi := 255, 0
		for _, v := range gray {
			lo, hi = min(lo, int(v)), max(hi, int(v))
		}
		a.Publish(depthResult{Width: width, Height: height, Min: lo, Max: hi})
	}); err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
