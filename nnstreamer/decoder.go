package nnstreamer

import (
	"fmt"

	"imxnn/gstpipeline"
)

type SegmentMode string

const (
	TfliteDeeplab SegmentMode = "tflite-deeplab"
	SnpeDeeplab   SegmentMode = "snpe-deeplab"
	SnpeDepth     SegmentMode = "snpe-depth"
)

// ImageSegment draws the class map of a segmentation model. numClass of -1 keeps the decoder
// default.
func ImageSegment(p *gstpipeline.Pipeline, mode SegmentMode, numClass int) {
	cmd := "tensor_decoder mode=image_segment option1=" + string(mode)
	if numClass != -1 {
		cmd += fmt.Sprintf(" option2=%d ! ", numClass)
	} else {
		cmd += " ! videoconvert ! "
	}
	p.Add(cmd)
}

func ImageLabeling(p *gstpipeline.Pipeline, labels string) {
	p.Add("tensor_decoder mode=image_labeling option1=" + labels + " ! ")
}

type BoxesMode string

const (
	Yolov5          BoxesMode = "yolov5"
	MobilenetSSD    BoxesMode = "mobilenet-ssd"
	MpPalmDetection BoxesMode = "mp-palm-detection"
)

type Dimension struct {
	Width  int
	Height int
}

type BoundingBoxesOptions struct {
	Mode   BoxesMode
	Labels string
	// Option3 comes from YoloOptions, SSDOptions or PalmOptions.
	Option3     string
	Out         Dimension
	In          Dimension
	TrackResult bool
	LogResult   bool
}

func BoundingBoxes(p *gstpipeline.Pipeline, o BoundingBoxesOptions) {
	cmd := "tensor_decoder mode=bounding_boxes option1=" + string(o.Mode)
	cmd += " option2=" + o.Labels
	cmd += " option3=" + o.Option3
	cmd += fmt.Sprintf(" option4=%d:%d option5=%d:%d", o.Out.Width, o.Out.Height, o.In.Width, o.In.Height)
	if o.TrackResult {
		cmd += " option6=1"
	}
	if o.LogResult {
		cmd += " option7=1"
	}
	p.Add(cmd + " ! videoconvert ! ")
}

// Fields set to -1 in the decoder options are left to the decoder defaults.
const UNSET = -1

func appendOpt(cmd string, v float64) string {
	if v == UNSET {
		return cmd
	}
	return cmd + fmt.Sprintf(":%f", v)
}

type YoloOptions struct {
	Scale      int
	Confidence float64
	IOU        float64
}

// NewYoloOptions leaves confidence and IOU to the decoder.
func NewYoloOptions(scale int) YoloOptions {
	return YoloOptions{Scale: scale, Confidence: UNSET, IOU: UNSET}
}

func (o YoloOptions) Option3() string {
	cmd := fmt.Sprintf("%d", o.Scale)
	cmd = appendOpt(cmd, o.Confidence)
	return appendOpt(cmd, o.IOU)
}

type SSDOptions struct {
	BoxesPath string
	Threshold float64
	YScale    float64
	XScale    float64
	HScale    float64
	WScale    float64
	IOU       float64
}

// NewSSDOptions leaves every tunable to the decoder.
func NewSSDOptions(boxesPath string) SSDOptions {
	return SSDOptions{BoxesPath: boxesPath, Threshold: UNSET, YScale: UNSET, XScale: UNSET, HScale: UNSET, WScale: UNSET, IOU: UNSET}
}

func (o SSDOptions) Option3() string {
	cmd := o.BoxesPath
	for _, v := range []float64{o.Threshold, o.YScale, o.XScale, o.HScale, o.WScale, o.IOU} {
		cmd = appendOpt(cmd, v)
	}
	return cmd
}

type PalmOptions struct {
	Score        float64
	AnchorLayers int
	MinScale     float64
	MaxScale     float64
	XOffset      float64
	YOffset      float64
	Stride       string
}

// NewPalmOptions leaves every tunable but the score to the decoder.
func NewPalmOptions(score float64) PalmOptions {
	return PalmOptions{Score: score, AnchorLayers: UNSET, MinScale: UNSET, MaxScale: UNSET, XOffset: UNSET, YOffset: UNSET}
}

func (o PalmOptions) Option3() string {
	cmd := fmt.Sprintf("%f", o.Score)
	if o.AnchorLayers != UNSET {
		cmd += fmt.Sprintf(":%d", o.AnchorLayers)
	}
	for _, v := range []float64{o.MinScale, o.MaxScale, o.XOffset, o.YOffset} {
		cmd = appendOpt(cmd, v)
	}
	if o.Stride != "" {
		cmd += ":" + o.Stride
	}
	return cmd
}
