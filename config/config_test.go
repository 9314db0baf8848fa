package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"imxnn/gstpipeline"
	"imxnn/imx"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("non-existent-config.toml", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != "NPU" {
		t.Errorf("Default Backend = %q, want NPU", cfg.Backend)
	}
	if cfg.Normalization != "none" {
		t.Errorf("Default Normalization = %q, want none", cfg.Normalization)
	}
	if cfg.Camera != (Resolution{640, 480, 30}) {
		t.Errorf("Default Camera = %s, want 640,480,30", cfg.Camera)
	}
	if cfg.DisplayPerf != PerfNone {
		t.Errorf("Default DisplayPerf = %q, want none", cfg.DisplayPerf)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imxnn.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
backend = "CPU"
model_path = "/opt/models/mobilenet_v1.tflite"
display_perf = "freq"

[camera]
width = 1280
height = 720
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != "CPU" {
		t.Errorf("Backend = %q, want CPU", cfg.Backend)
	}
	if cfg.ModelPath != "/opt/models/mobilenet_v1.tflite" {
		t.Errorf("ModelPath = %q", cfg.ModelPath)
	}
	if cfg.Camera != (Resolution{1280, 720, 30}) {
		t.Errorf("Camera = %s, want 1280,720,30", cfg.Camera)
	}
	if got := cfg.DisplayPerf.Perf(); got != (gstpipeline.Perf{Frequency: true}) {
		t.Errorf("Perf = %+v, want frequency only", got)
	}
	if cfg.Normalization != "none" {
		t.Errorf("Normalization = %q, want default none", cfg.Normalization)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeConfig(t, "backend = ")
	if _, err := Load(path, nil); err == nil {
		t.Error("Load of invalid TOML succeeded")
	}
}

func TestLoadInvalidPerf(t *testing.T) {
	path := writeConfig(t, `display_perf = "fast"`)
	if _, err := Load(path, nil); err == nil {
		t.Error("Load with display_perf = fast succeeded")
	}
	path = writeConfig(t, `display_perf = "none"`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DisplayPerf != PerfNone {
		t.Errorf("DisplayPerf = %q, want none", cfg.DisplayPerf)
	}
}

func TestValidatePerf(t *testing.T) {
	cfg := Default()
	cfg.DisplayPerf = "fast"
	if err := cfg.Validate(imx.New(imx.IMX93)); !errors.Is(err, ErrPerf) {
		t.Errorf("Validate error = %v, want %v", err, ErrPerf)
	}
}

func TestParseFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
backend = "GPU"
labels_path = "labels.txt"
`)
	cfg, err := Parse("detection", []string{"-config", path, "-b", "CPU", "-r", "1920,1080,60", "-d=time", "-p", "a.tflite,b.tflite"}, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Backend != "CPU" {
		t.Errorf("Backend = %q, want CPU", cfg.Backend)
	}
	if cfg.LabelsPath != "labels.txt" {
		t.Errorf("LabelsPath = %q, want labels.txt from file", cfg.LabelsPath)
	}
	if cfg.Camera != (Resolution{1920, 1080, 60}) {
		t.Errorf("Camera = %s, want 1920,1080,60", cfg.Camera)
	}
	if cfg.DisplayPerf != PerfTime {
		t.Errorf("DisplayPerf = %q, want time", cfg.DisplayPerf)
	}
	if first, second := Pair(cfg.ModelPath); first != "a.tflite" || second != "b.tflite" {
		t.Errorf("Pair(%q) = %q, %q", cfg.ModelPath, first, second)
	}
}

func TestParsePerfFlag(t *testing.T) {
	tests := []struct {
		args []string
		want PerfDisplay
	}{
		{nil, PerfNone},
		{[]string{"-d"}, PerfAll},
		{[]string{"-d=time"}, PerfTime},
		{[]string{"-d=freq"}, PerfFreq},
	}
	for _, test := range tests {
		cfg, err := Parse("pose", test.args, nil)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", test.args, err)
		}
		if cfg.DisplayPerf != test.want {
			t.Errorf("Parse(%q) DisplayPerf = %q, want %q", test.args, cfg.DisplayPerf, test.want)
		}
	}
	if _, err := Parse("pose", []string{"-d=fast"}, nil); err == nil {
		t.Error("Parse(-d=fast) succeeded")
	}
}

func TestParseResolution(t *testing.T) {
	if r, err := ParseResolution("640,480,30"); err != nil || r != (Resolution{640, 480, 30}) {
		t.Errorf("ParseResolution = %s, %v", r, err)
	}
	for _, s := range []string{"640,480", "640,480,30,1", "640,x,30", "0,480,30", ""} {
		if _, err := ParseResolution(s); !errors.Is(err, ErrResolution) {
			t.Errorf("ParseResolution(%q) error = %v, want ErrResolution", s, err)
		}
	}
	if _, err := Parse("detection", []string{"-r", "640,480"}, nil); !errors.Is(err, ErrResolution) {
		t.Errorf("Parse(-r 640,480) error = %v, want ErrResolution", err)
	}
}

func TestValidateGraphPath(t *testing.T) {
	cfg := Default()
	cfg.GraphPath = "/tmp"
	if err := cfg.Validate(imx.New(imx.IMX8MP)); err != nil {
		t.Errorf("Validate on i.MX 8M Plus: %v", err)
	}
	if err := cfg.Validate(imx.New(imx.IMX93)); !errors.Is(err, ErrGraphPath) {
		t.Errorf("Validate on i.MX 93 error = %v, want ErrGraphPath", err)
	}
}

func TestPair(t *testing.T) {
	tests := map[string][2]string{
		"face.tflite,emotion.tflite": {"face.tflite", "emotion.tflite"},
		"model.tflite":               {"model.tflite", "model.tflite"},
		"/dev/video0,":               {"/dev/video0", ""},
	}
	for s, want := range tests {
		if first, second := Pair(s); first != want[0] || second != want[1] {
			t.Errorf("Pair(%q) = %q, %q, want %q, %q", s, first, second, want[0], want[1])
		}
	}
}

func TestTriple(t *testing.T) {
	tests := map[string][3]string{
		"npu,cpu,gpu": {"npu", "cpu", "gpu"},
		"npu,cpu":     {"npu", "cpu", "cpu"},
		"npu":         {"npu", "npu", "npu"},
		"a,b,c,d":     {"a", "b", "c,d"},
	}
	for s, want := range tests {
		if first, second, third := Triple(s); first != want[0] || second != want[1] || third != want[2] {
			t.Errorf("Triple(%q) = %q, %q, %q, want %v", s, first, second, third, want)
		}
	}
}

func TestParseApplicationDefaults(t *testing.T) {
	defaults := Default()
	defaults.Backend = "CPU"
	defaults.Normalization = "castInt32"
	cfg, err := Parse("pose", []string{"-n", "none"}, defaults)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Backend != "CPU" {
		t.Errorf("Backend = %q, want application default CPU", cfg.Backend)
	}
	if cfg.Normalization != "none" {
		t.Errorf("Normalization = %q, want none from flag", cfg.Normalization)
	}
	if defaults.Normalization != "castInt32" {
		t.Errorf("Parse modified defaults: %q", defaults.Normalization)
	}
}
