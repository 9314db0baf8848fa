package app

import (
	"strings"
	"testing"

	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/nnstreamer"
)

func TestOverlayLink(t *testing.T) {
	p := gstpipeline.New(imx.New(imx.IMX8MQ))
	OverlayLink(p, 640, 480, "comp")
	got := p.String()
	prefix := "compositor name=overlay_mix sink_0::zorder=1 sink_1::zorder=2 ! comp. appsrc name=result_overlay "
	if !strings.HasPrefix(got, prefix) {
		t.Errorf("OverlayLink = %q, want prefix %q", got, prefix)
	}
	if !strings.Contains(got, "width=640,height=480") {
		t.Errorf("OverlayLink = %q, want a 640x480 overlay", got)
	}
	if !strings.HasSuffix(got, "! overlay_mix. ") {
		t.Errorf("OverlayLink = %q, want the overlay linked to overlay_mix", got)
	}
}

func TestEmotionPipeline(t *testing.T) {
	p := gstpipeline.New(imx.New(imx.IMX8MQ))
	model := &nnstreamer.Model{
		Path:          "emotion.tflite",
		Backend:       imx.CPU,
		Normalization: nnstreamer.NormNone,
		Shape:         nnstreamer.Shape{Height: 64, Width: 64, Channels: 1},
	}
	EmotionPipeline(p, model)
	got := p.String()
	for _, want := range []string{
		"appsrc name=appsrc_video is-live=true caps=video/x-raw,width=640,height=480,framerate=30/1,format=YUY2 ",
		"videocrop name=video_crop ",
		"model=emotion.tflite",
		"name=emotion_filter ! tensor_sink name=tsink_fr qos=false ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("EmotionPipeline = %q, want %q", got, want)
		}
	}
}

func TestFaceBranches(t *testing.T) {
	p := gstpipeline.New(imx.New(imx.IMX8MQ))
	FaceDetectionBranch(p, &nnstreamer.Model{Path: "face.tflite", Shape: nnstreamer.Shape{Height: 128, Width: 128, Channels: 3}})
	FrameBranch(p)
	got := p.String()
	if !strings.HasPrefix(got, "tvideo. ! queue name=thread-nn max-size-buffers=1 leaky=2 ! ") {
		t.Errorf("FaceDetectionBranch = %q, want a tvideo branch", got)
	}
	for _, want := range []string{
		"tensor_sink name=tsink_fd ",
		"tvideo. ! queue name=thread-sink max-size-buffers=1 leaky=2 ! ",
		"name=appsink_video",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("face branches = %q, want %q", got, want)
		}
	}
}
