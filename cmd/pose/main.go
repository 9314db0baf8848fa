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

// MoveNet sees a centered 480x480 crop of the source.
const INPUT_SIZE = 480
const TENSOR_SINK_NAME = "tensor_sink"

func main() {
	defaults := config.Default()
	defaults.Backend = string(imx.CPU)
	defaults.Normalization = string(nnstreamer.NormCastInt32)
	a, err := app.New("pose", defaults)
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
	// i.MX 9 has no VPU to decode the video file.
	if cfg.UseCamera || cfg.VideoPath == "" || a.Imx.IsIMX9() {
		p.Camera(gstpipeline.Camera{
			Name:      "cam_src",
			Device:    cfg.CameraDevice,
			Width:     cfg.Camera.Width,
			Height:    cfg.Camera.Height,
			Framerate: cfg.Camera.Framerate,
		})
	} else if err := p.VideoFile(cfg.VideoPath, 0, 0); err != nil {
		app.Fatal(a.Logger, err)
	}
	p.VideoCrop("crop", INPUT_SIZE, INPUT_SIZE, gstpipeline.Crop{Top: -1, Bottom: -1, Left: -1, Right: -1})
	p.Tee("t")
	p.Branch("t", gstpipeline.Queue{Name: "thread-nn", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	model.Inference(p, "pose_filter", "")
	p.TensorSink(TENSOR_SINK_NAME, true)
	p.Branch("t", gstpipeline.Queue{Name: "thread-img", MaxSizeBuffer: 2})
	if err := app.OverlayDisplay(p, INPUT_SIZE, INPUT_SIZE); err != nil {
		app.Fatal(a.Logger, err)
	}
	a.PreviewBranch(p, "t")

	pipe, err := a.Runner.Launch("pose", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	overlay, err := a.NewResultOverlay(pipe, INPUT_SIZE, INPUT_SIZE)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	defer overlay.Close()
	if err := pipe.OnTensor(TENSOR_SINK_NAME, 1, func(tensors [][]float32) {
		kpts, err := decoder.PoseKeypoints(tensors[0], INPUT_SIZE)
		if err != nil {
			a.Logger.Error("Invalid pose output", zap.Error(err))
			return
		}
		overlay.Push(overlay.Pose(kpts, 0))
		a.Publish(kpts)
	}); err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
