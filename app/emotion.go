package app

import (
	"sync"

	"go.uber.org/zap"

	"imxnn/decoder"
	"imxnn/gstpipeline"
	"imxnn/nnstreamer"
	"imxnn/runner"
)

const FACE_CAMERA_WIDTH = 640
const FACE_CAMERA_HEIGHT = 480
const FACE_TEE_NAME = "tvideo"
const FACE_SINK_NAME = "tsink_fd"
const EMOTION_SINK_NAME = "tsink_fr"
const FRAME_SINK_NAME = "appsink_video"
const EMOTION_SRC_NAME = "appsrc_video"
const CROP_NAME = "video_crop"

// EmotionPipeline classifies the faces the application crops out of camera frames, one
// face per pushed frame.
func EmotionPipeline(p *gstpipeline.Pipeline, model *nnstreamer.Model) {
	p.AppSrc(gstpipeline.AppSrc{
		Name:       EMOTION_SRC_NAME,
		IsLive:     true,
		MaxBuffers: 1,
		Leaky:      gstpipeline.LeakyDownstream,
		FormatType: gstpipeline.FormatTime,
		Width:      FACE_CAMERA_WIDTH,
		Height:     FACE_CAMERA_HEIGHT,
		Format:     "YUY2",
		Framerate:  30,
	})
	p.VideoCrop(CROP_NAME, -1, -1, gstpipeline.Crop{})
	model.Inference(p, "emotion_filter", "GRAY8")
	p.TensorSink(EMOTION_SINK_NAME, false)
}

// FaceCamera opens the YUY2 camera whose frames are both searched for faces and cropped.
func (a *App) FaceCamera(p *gstpipeline.Pipeline) {
	p.Camera(gstpipeline.Camera{
		Name:      "cam_src",
		Device:    a.Config.CameraDevice,
		Width:     FACE_CAMERA_WIDTH,
		Height:    FACE_CAMERA_HEIGHT,
		Framerate: a.Config.Camera.Framerate,
		Format:    "YUY2",
	})
	p.Tee(FACE_TEE_NAME)
}

// FaceDetectionBranch runs the face model on the camera tee.
func FaceDetectionBranch(p *gstpipeline.Pipeline, model *nnstreamer.Model) {
	p.Branch(FACE_TEE_NAME, gstpipeline.Queue{Name: "thread-nn", MaxSizeBuffer: 1, Leaky: gstpipeline.LeakyDownstream})
	model.Inference(p, "face_filter", "")
	p.TensorSink(FACE_SINK_NAME, true)
}

// FrameBranch hands camera frames to the application.
func FrameBranch(p *gstpipeline.Pipeline) {
	p.Branch(FACE_TEE_NAME, gstpipeline.Queue{Name: "thread-sink", MaxSizeBuffer: 1, Leaky: gstpipeline.LeakyDownstream})
	p.AppSink(gstpipeline.AppSink{Name: FRAME_SINK_NAME, MaxBuffers: 1, Drop: true, EmitSignals: true})
}

// faces holds the last face detection and the frame whose faces are being classified.
type faces struct {
	mu    sync.Mutex
	boxes []decoder.Box
	frame []byte
}

func (f *faces) setBoxes(boxes []decoder.Box) {
	f.mu.Lock()
	f.boxes = boxes
	f.mu.Unlock()
}

func (f *faces) get() []decoder.Box {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.boxes
}

func (f *faces) setFrame(frame []byte) {
	f.mu.Lock()
	f.frame = frame
	f.mu.Unlock()
}

func (f *faces) lastFrame() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

// ClassifyEmotions sends every face found in pipe to the emotion pipeline, one at a time,
// and draws the results once all faces of a frame are classified.
func (a *App) ClassifyEmotions(pipe *runner.Pipe, emotion *runner.Pipe, overlay *ResultOverlay) error {
	src, err := emotion.Source(EMOTION_SRC_NAME)
	if err != nil {
		return err
	}
	var session decoder.EmotionSession
	var detected faces
	push := func(box decoder.Box, frame []byte) {
		top, bottom, left, right := box.Crop(FACE_CAMERA_WIDTH, FACE_CAMERA_HEIGHT)
		err := emotion.SetCrop(CROP_NAME, top, bottom, left, right)
		if err == nil {
			err = src.Push(frame)
		}
		if err != nil {
			a.Logger.Warn("Emotion crop failed", zap.Error(err))
			session.Abort()
		}
	}

	if err := pipe.OnTensor(FACE_SINK_NAME, 1, func(tensors [][]float32) {
		boxes := decoder.FaceBoxes(tensors[0], FACE_CAMERA_WIDTH, FACE_CAMERA_HEIGHT)
		detected.setBoxes(boxes)
		if len(boxes) == 0 {
			overlay.Push(overlay.Emotions(nil))
		}
	}); err != nil {
		return err
	}
	if err := pipe.OnSample(FRAME_SINK_NAME, func(frame []byte) {
		box, ok := session.Start(detected.get())
		if !ok {
			return
		}
		detected.setFrame(frame)
		push(box, frame)
	}); err != nil {
		return err
	}
	return emotion.OnTensor(EMOTION_SINK_NAME, 1, func(tensors [][]float32) {
		box, next, err := session.Add(tensors[0])
		if err != nil {
			a.Logger.Error("Invalid emotion output", zap.Error(err))
			return
		}
		if next {
			push(box, detected.lastFrame())
			return
		}
		results := session.Results()
		overlay.Push(overlay.Emotions(results))
		a.Publish(results)
	})
}
