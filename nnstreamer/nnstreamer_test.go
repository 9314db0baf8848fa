package nnstreamer

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"testing"

	"imxnn/gstpipeline"
	"imxnn/imx"
)

type fakeReader struct {
	shape    Shape
	parseLib string
}

func (r *fakeReader) InputShape(path string, parseLib string) (Shape, error) {
	r.parseLib = parseLib
	return r.shape, nil
}

func TestNormalization(t *testing.T) {
	if got := ParseNormalization("bogus"); got != NormNone {
		t.Errorf("ParseNormalization(bogus) = %q, want %q", got, NormNone)
	}
	if got := ParseNormalization("castuInt8").Transform(); got != "tensor_transform mode=typecast option=uint8 ! " {
		t.Errorf("castuInt8 transform = %q", got)
	}
	if got := NormNone.Transform(); got != "" {
		t.Errorf("none transform = %q, want empty", got)
	}
}

func TestSelectDelegate(t *testing.T) {
	tests := []struct {
		backend imx.Backend
		soc     imx.SoC
		kind    DelegateKind
		custom  string
		err     bool
	}{
		{imx.CPU, imx.IMX93, XNNPACK, fmt.Sprintf("custom=Delegate:XNNPACK,NumThreads:%d", runtime.NumCPU()), false},
		{imx.GPU, imx.IMX8MP, VsiGPU, "custom=Delegate:External,ExtDelegateLib:libvx_delegate.so", false},
		{imx.GPU, imx.IMX95, GPU, "custom=Delegate:GPU", false},
		{imx.GPU, imx.IMX93, "", "", true},
		{imx.NPU, imx.IMX8MP, VsiNPU, "custom=Delegate:External,ExtDelegateLib:libvx_delegate.so", false},
		{imx.NPU, imx.IMX93, EthosNPU, "custom=Delegate:External,ExtDelegateLib:libethosu_delegate.so", false},
		{imx.NPU, imx.IMX95, NeutronNPU, "custom=Delegate:External,ExtDelegateLib:libneutron_delegate.so", false},
		{imx.NPU, imx.IMX8MM, "", "", true},
	}
	for _, tt := range tests {
		d, err := SelectDelegate(tt.backend, imx.New(tt.soc))
		if tt.err {
			if !errors.Is(err, ErrBackend) {
				t.Errorf("SelectDelegate(%s, %v) error = %v, want %v", tt.backend, tt.soc, err, ErrBackend)
			}
			continue
		}
		if err != nil {
			t.Fatal(err)
		}
		if d.Kind != tt.kind || d.Custom != tt.custom {
			t.Errorf("SelectDelegate(%s, %v) = %q %q, want %q %q", tt.backend, tt.soc, d.Kind, d.Custom, tt.kind, tt.custom)
		}
	}
}

func TestDelegateApply(t *testing.T) {
	t.Setenv("USE_GPU_INFERENCE", "")
	d, err := SelectDelegate(imx.GPU, imx.New(imx.IMX8MP))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Apply(); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("USE_GPU_INFERENCE"); got != "1" {
		t.Errorf("USE_GPU_INFERENCE = %q, want 1", got)
	}
}

func TestNewModel(t *testing.T) {
	if _, err := NewModel("model.onnx", imx.CPU, NormNone, imx.New(imx.IMX8MP), &fakeReader{}); !errors.Is(err, ErrModelFormat) {
		t.Errorf("NewModel(onnx) error = %v, want %v", err, ErrModelFormat)
	}

	reader := &fakeReader{shape: Shape{Height: 300, Width: 300, Channels: 3}}
	m, err := NewModel("ssd.tflite", imx.NPU, NormCentered, imx.New(imx.IMX93), reader)
	if err != nil {
		t.Fatal(err)
	}
	if reader.parseLib != "/usr/lib/libethosu_delegate.so" {
		t.Errorf("parseLib = %q, want ethos-u delegate", reader.parseLib)
	}

	p := gstpipeline.New(imx.New(imx.IMX93))
	m.Inference(p, "detection_filter", "RGB")
	want := "imxvideoconvert_pxp ! video/x-raw,width=300,height=300,format=BGR ! videoconvert ! video/x-raw,format=RGB ! " +
		"tensor_converter ! " +
		"tensor_transform mode=arithmetic option=typecast:int16,add:-128 ! tensor_transform mode=typecast option=int8 ! " +
		"tensor_filter latency=1 framework=tensorflow-lite  model=ssd.tflite custom=Delegate:External,ExtDelegateLib:libethosu_delegate.so name=detection_filter ! "
	if got := p.String(); got != want {
		t.Errorf("Inference = %q, want %q", got, want)
	}
	if names := p.FilterNames(); len(names) != 1 || names[0] != "detection_filter" {
		t.Errorf("FilterNames() = %v", names)
	}
}

func TestInferenceGray(t *testing.T) {
	m := &Model{Path: "emotion.tflite", Delegate: Delegate{Custom: "custom=Delegate:GPU"}, Normalization: NormReduced, Shape: Shape{Height: 64, Width: 64, Channels: 1}}
	p := gstpipeline.New(imx.New(imx.IMX95))
	m.Inference(p, "", "GRAY8")
	want := "videoscale ! videoconvert ! video/x-raw,width=64,height=64,format=GRAY8 ! " +
		"tensor_converter ! tensor_transform mode=arithmetic option=typecast:float32,div:255 ! " +
		"tensor_filter latency=1 framework=tensorflow-lite  model=emotion.tflite custom=Delegate:GPU ! "
	if got := p.String(); got != want {
		t.Errorf("Inference = %q, want %q", got, want)
	}
}

func TestDecoders(t *testing.T) {
	p := gstpipeline.New(imx.New(imx.IMX8MP))
	BoundingBoxes(p, BoundingBoxesOptions{
		Mode:    MobilenetSSD,
		Labels:  "labels.txt",
		Option3: NewSSDOptions("boxes.txt").Option3(),
		Out:     Dimension{640, 480},
		In:      Dimension{300, 300},
	})
	want := "tensor_decoder mode=bounding_boxes option1=mobilenet-ssd option2=labels.txt option3=boxes.txt option4=640:480 option5=300:300 ! videoconvert ! "
	if got := p.String(); got != want {
		t.Errorf("BoundingBoxes = %q, want %q", got, want)
	}

	p = gstpipeline.New(imx.New(imx.IMX8MP))
	ImageSegment(p, TfliteDeeplab, UNSET)
	ImageLabeling(p, "labels.txt")
	want = "tensor_decoder mode=image_segment option1=tflite-deeplab ! videoconvert ! tensor_decoder mode=image_labeling option1=labels.txt ! "
	if got := p.String(); got != want {
		t.Errorf("decoders = %q, want %q", got, want)
	}
}

func TestOption3(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{YoloOptions{Scale: 0, Confidence: 0.25, IOU: UNSET}.Option3(), "0:0.250000"},
		{SSDOptions{BoxesPath: "b.txt", Threshold: 0.5, YScale: UNSET, XScale: UNSET, HScale: UNSET, WScale: UNSET, IOU: 0.45}.Option3(), "b.txt:0.500000:0.450000"},
		{NewYoloOptions(1).Option3(), "1"},
		{NewPalmOptions(0.5).Option3(), "0.500000"},
		{NewSSDOptions("b.txt").Option3(), "b.txt"},
		{PalmOptions{Score: 0.5, AnchorLayers: 4, MinScale: 1, MaxScale: UNSET, XOffset: UNSET, YOffset: UNSET, Stride: "8:16:16:16"}.Option3(), "0.500000:4:1.000000:8:16:16:16"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("Option3() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestLatency(t *testing.T) {
	tests := []struct {
		backend imx.Backend
		soc     imx.SoC
		want    int
	}{
		{imx.NPU, imx.IMX8MP, MODEL_LATENCY_NS_NPU_VSI},
		{imx.NPU, imx.IMX93, MODEL_LATENCY_NS_NPU_ETHOS},
		{imx.NPU, imx.IMX95, MODEL_LATENCY_NS_NPU_NEUTRON},
		{imx.GPU, imx.IMX8MP, MODEL_LATENCY_NS_GPU_VSI},
		{imx.GPU, imx.IMX95, MODEL_LATENCY_NS_CPU},
		{imx.CPU, imx.IMX8MP, MODEL_LATENCY_NS_CPU},
	}
	for _, tt := range tests {
		if got := Latency(tt.backend, imx.New(tt.soc)); got != tt.want {
			t.Errorf("Latency(%s, %v) = %d, want %d", tt.backend, tt.soc, got, tt.want)
		}
	}
}

func TestMixedLatency(t *testing.T) {
	tests := map[imx.Backend]int{
		imx.CPU: 500000000,
		imx.GPU: 1000000000,
		imx.NPU: 25000000,
	}
	for backend, want := range tests {
		if got := MixedLatency(backend); got != want {
			t.Errorf("MixedLatency(%s) = %d, want %d", backend, got, want)
		}
	}
}
