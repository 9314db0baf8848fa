package main

import (
	"imxnn/app"
	"imxnn/config"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

func main() {
	a, err := app.New("emotion_detection", nil)
	if err != nil {
		app.Fatal(nil, err)
	}
	cfg := a.Config
	faceModelPath, emotionModelPath := config.Pair(cfg.ModelPath)
	faceBackendName, emotionBackendName := config.Pair(cfg.Backend)
	faceNormName, emotionNormName := config.Pair(cfg.Normalization)
	faceBackend := imx.ParseBackend(faceBackendName)
	emotionBackend := imx.ParseBackend(emotionBackendName)
	if err := a.RejectNeutron(faceBackend); err != nil {
		app.Fatal(a.Logger, err)
	}
	faceModel, err := a.Model(faceModelPath, faceBackend, nnstreamer.ParseNormalization(faceNormName))
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	emotionModel, err := a.Model(emotionModelPath, emotionBackend, nnstreamer.ParseNormalization(emotionNormName))
	if err != nil {
		app.Fatal(a.Logger, err)
	}

	// Faces are cropped one at a time from the camera frame and sent to a second pipeline.
	emotion := gstpipeline.New(a.Imx)
	app.EmotionPipeline(emotion, emotionModel)

	p := gstpipeline.New(a.Imx)
	p.EnablePerf(cfg.DisplayPerf.Perf(), cfg.TextColor)
	a.FaceCamera(p)
	app.FaceDetectionBranch(p, faceModel)
	p.Branch(app.FACE_TEE_NAME, gstpipeline.Queue{Name: "thread-img", MaxSizeBuffer: 1, Leaky: gstpipeline.LeakyDownstream})
	p.VideoTransform("RGB16", -1, -1, false, false, false)
	if err := app.OverlayDisplay(p, app.FACE_CAMERA_WIDTH, app.FACE_CAMERA_HEIGHT); err != nil {
		app.Fatal(a.Logger, err)
	}
	app.FrameBranch(p)
	a.PreviewBranch(p, app.FACE_TEE_NAME)

	emotionPipe, err := a.Runner.Launch("emotion", emotion)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	pipe, err := a.Runner.Launch("face", p)
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
