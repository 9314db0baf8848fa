package main

import (
	"sync"

	"go.uber.org/zap"

	"imxnn/app"
	"imxnn/config"
	"imxnn/decoder"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

const INPUT_SIZE = 480
const FACE_SINK_NAME = "tsink_fd"
const POSE_SINK_NAME = "tsink_pd"

type results struct {
	Faces     []decoder.Box      `json:"faces"`
	Keypoints []decoder.Keypoint `json:"keypoints"`
}

// state keeps the last output of both models, each callback redraws both.
type state struct {
	mu sync.Mutex
	results
}

func (s *state) setFaces(boxes []decoder.Box) results {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Faces = boxes
	return s.results
}

func (s *state) setKeypoints(kpts []decoder.Keypoint) results {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Keypoints = kpts
	return s.results
}

func main() {
	defaults := config.Default()
	defaults.Normalization = string(nnstreamer.NormNone) + "," + string(nnstreamer.NormCastUInt8)
	a, err := app.New("face_and_pose", defaults)
	if err != nil {
		app.Fatal(nil, err)
	}
	cfg := a.Config
	faceModelPath, poseModelPath := config.Pair(cfg.ModelPath)
	faceBackendName, poseBackendName := config.Pair(cfg.Backend)
	faceNormName, poseNormName := config.Pair(cfg.Normalization)
	faceBackend := imx.ParseBackend(faceBackendName)
	if err := a.RejectNeutron(faceBackend); err != nil {
		app.Fatal(a.Logger, err)
	}
	faceModel, err := a.Model(faceModelPath, faceBackend, nnstreamer.ParseNormalization(faceNormName))
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	poseModel, err := a.Model(poseModelPath, imx.ParseBackend(poseBackendName), nnstreamer.ParseNormalization(poseNormName))
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
	p.VideoCrop("crop", INPUT_SIZE, INPUT_SIZE, gstpipeline.Crop{Top: -1, Bottom: -1, Left: -1, Right: -1})
	p.Tee("t")
	p.Branch("t", gstpipeline.Queue{Name: "thread-nn-face", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	faceModel.Inference(p, "face_filter", "")
	p.TensorSink(FACE_SINK_NAME, true)
	p.Branch("t", gstpipeline.Queue{Name: "thread-nn-pose", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	poseModel.Inference(p, "pose_filter", "")
	p.TensorSink(POSE_SINK_NAME, true)
	p.Branch("t", gstpipeline.Queue{Name: "thread-img", MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	if err := app.OverlayDisplay(p, INPUT_SIZE, INPUT_SIZE); err != nil {
		app.Fatal(a.Logger, err)
	}
	a.PreviewBranch(p, "t")

	pipe, err := a.Runner.Launch("face_and_pose", p)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	overlay, err := a.NewResultOverlay(pipe, INPUT_SIZE, INPUT_SIZE)
	if err != nil {
		app.Fatal(a.Logger, err)
	}
	defer overlay.Close()

	var last state
	draw := func(r results) {
		overlay.Push(overlay.FacesAndPose(r.Faces, r.Keypoints, 0))
		a.Publish(r)
	}
	if err := pipe.OnTensor(FACE_SINK_NAME, 1, func(tensors [][]float32) {
		draw(last.setFaces(decoder.FaceBoxes(tensors[0], INPUT_SIZE, INPUT_SIZE)))
	}); err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := pipe.OnTensor(POSE_SINK_NAME, 1, func(tensors [][]float32) {
		kpts, err := decoder.PoseKeypoints(tensors[0], INPUT_SIZE)
		if err != nil {
			a.Logger.Error("Invalid pose output", zap.Error(err))
			return
		}
		draw(last.setKeypoints(kpts))
	}); err != nil {
		app.Fatal(a.Logger, err)
	}
	if err := a.Run(pipe); err != nil {
		app.Fatal(a.Logger, err)
	}
}
