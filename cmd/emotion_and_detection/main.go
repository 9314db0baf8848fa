package main

import (
	"errors"

	"imxnn/app"
	"imxnn/config"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

const VIDEO_WIDTH = 640
const VIDEO_HEIGHT = 480
const DETECTION_COMPOSITOR_NAME = "mix"
const OUTPUT_COMPOSITOR_NAME = "comp"

var ErrNoVideo = errors.New("object detection needs a video file")

func main() {
	a, err := app.New("emotion_and_detection", nil)
	if err != nil {
		app.Fatal(nil, err)
	}
	cfg := a.Config
	if cfg.VideoPath == "" {
		app.Fatal(a.Logger, ErrNoVideo)
	}
	facePath, emotionPath, detectionPath := config.Triple(cfg.ModelPath)
	faceBackendName, emotionBackendName, detectionBackendName := config.Triple(cfg.Backend)
	faceNorm, emotionNorm, detectionNorm := config.Triple(cfg.Normalization)
	labels, _ := config.Pair(cfg.LabelsPath)

	faceBackend := imx.ParseBackend(faceBackendName)
	if err := a.RejectNeutron(faceBackend); err != nil {
		app.Fatal(a.Logger, err)
	}
	faceModel, err := a.Model(facePath, faceBackend, nnstreamer.ParseNormalization(faceNorm))
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	emotionModel, err := a.Model(emotionPath, imx.ParseBackend(emotionBackendName), nnstreamer.ParseNormalization(emotionNorm))
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	detectionBackend := imx.ParseBackend(detectionBackendName)
	detection, err := a.Model(detectionPath, detectionBackend, nnstreamer.ParseNormalization(detectionNorm))
	if err != nil {
		app.Fatal(a.Logger, err)
	}

	emotion := gstpipeline.New(a.Imx)
	app.EmotionPipeline(emotion, emotionModel)

	// Emotions on the camera and objects in the video file are shown side by side.
	p := gstpipeline.New(a.Imx)
	p.EnablePerf(cfg.DisplayPerf.Perf(), cfg.TextColor)
	a.FaceCamera(p)
	app.FaceDetectionBranch(p, faceModel)
	p.Branch(app.FACE_TEE_NAME, gstpipeline.Queue{Name: "thread-img", MaxSizeBuffer: 1, Leaky: gstpipeline.LeakyDownstream})
	p.VideoTransform("RGB16", -1, -1, false, false, false)
	app.OverlayLink(p, app.FACE_CAMERA_WIDTH, app.FACE_CAMERA_HEIGHT, OUTPUT_COMPOSITOR_NAME)
	app.FrameBranch(p)
	a.PreviewBranch(p, app.FACE_TEE_NAME)

	if err := p.VideoFile(cfg.VideoPath, VIDEO_WIDTH, VIDEO_HEIGHT); err != nil {
		app.Fatal(a.Logger, err)
	}
	p.Tee("teeClassDet")
	p.Branch("teeClassDet", gstpipeline.Queue{Name: "thread-nn-det", MaxSizeBuffer: 1, Leaky: gstpipeline.LeakyDownstream})
	detection.Inference(p, "detection_filter", "")
	nnstreamer.BoundingBoxes(p, nnstreamer.BoundingBoxesOptions{
		Mode:    nnstreamer.MobilenetSSD,
		Labels:  labels,
		Option3: nnstreamer.NewSSDOptions(cfg.BoxesPath).Option3(),
		Out:     nnstreamer.Dimension{Width: VIDEO_WIDTH, Height: VIDEO_HEIGHT},
		In:      nnstreamer.Dimension{Width: detection.Shape.Width, Height: detection.Shape.Height},
	})
	p.LinkCompositor(DETECTION_COMPOSITOR_NAME)

	p.Branch("teeClassDet", gstpipeline.Queue{Name: "thread-out", MaxSizeBuffer: 1, Leaky: gstpipeline.LeakyDownstream})
	latency := nnstreamer.MixedLatency(detectionBackend)
	p.Compositor(DETECTION_COMPOSITOR_NAME, latency,
		gstpipeline.CompositorInput{Order: 2, Transparency: true},
		gstpipeline.CompositorInput{Order: 1})
	p.Compositor(OUTPUT_COMPOSITOR_NAME, 8*latency,
		gstpipeline.CompositorInput{Order: 1, Width: app.FACE_CAMERA_WIDTH, Height: app.FACE_CAMERA_HEIGHT},
		gstpipeline.CompositorInput{Order: 1, XPos: app.FACE_CAMERA_WIDTH, Width: VIDEO_WIDTH, Height: VIDEO_HEIGHT})
	if err := p.Display(false); err != nil {
		app.Fatal(a.Logger, err)
	}

	emotionPipe, err := a.Runner.Launch("emotion", emotion)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	pipe, err := a.Runner.Launch("emotion_and_detection", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	overlay, err := a.NewResultOverlay(pipe, app.FACE_CAMERA_WIDTH, app.FACE_CAMERA_HEIGHT)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	defer overlay.Close()

	if err := a.ClassifyEmotions(pipe, emotionPipe, overlay); err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
