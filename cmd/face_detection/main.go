package main

import (
	"imxnn/app"
	"imxnn/decoder"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

const CAMERA_INPUT_WIDTH = 640
const CAMERA_INPUT_HEIGHT = 480
const TENSOR_SINK_NAME = "tsink_fd"

func main() {
	a, err := app.New("face_detection", nil)
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
	p.Camera(gstpipeline.Camera{
		Name:      "cam_src",
		Device:    cfg.CameraDevice,
		Width:     CAMERA_INPUT_WIDTH,
		Height:    CAMERA_INPUT_HEIGHT,
		Framerate: cfg.Camera.Framerate,
		Format:    "YUY2",
	})
	p.Tee("tvideo")
	p.Branch("tvideo", gstpipeline.Queue{Name: "thread-nn", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	model.Inference(p, "face_filter", "")
	p.TensorSink(TENSOR_SINK_NAME, true)
	p.Branch("tvideo", gstpipeline.Queue{Name: "thread-img", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	if err := app.OverlayDisplay(p, CAMERA_INPUT_WIDTH, CAMERA_INPUT_HEIGHT); err != nil {
		app.Fatal(a.Logger, err)
	}
	a.PreviewBranch(p, "tvideo")

	pipe, err := a.Runner.Launch("face_detection", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	overlay, err := a.NewResultOverlay(pipe, CAMERA_INPUT_WIDTH, CAMERA_INPUT_HEIGHT)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	defer overlay.Close()
	if err := pipe.OnTensor(TENSOR_SINK_NAME, 1, func(tensors [][]float32) {
		boxes := decoder.FaceBoxes(tensors[0], CAMERA_INPUT_WIDTH, CAMERA_INPUT_HEIGHT)
		overlay.Push(overlay.Faces(boxes))
		a.Publish(boxes)
	}); err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
