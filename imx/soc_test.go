package imx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSocId(t *testing.T, id string) string {
	path := filepath.Join(t.TempDir(), "soc_id")
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectFromSocId(t *testing.T) {
	tests := []struct {
		id   string
		want SoC
		name string
	}{
		{"i.MX8MQ", IMX8MQ, "i.MX 8M Quad"},
		{"i.MX8MP", IMX8MP, "i.MX 8M Plus"},
		{"i.MX8QXP", IMX8QXP, "i.MX 8QuadXPlus"},
		{"i.MX93", IMX93, "i.MX 93"},
		{"i.MX95", IMX95, "i.MX 95"},
	}
	for _, tt := range tests {
		got := DetectFrom(writeSocId(t, tt.id), "")
		if got.SoC() != tt.want {
			t.Errorf("DetectFrom(%q) = %v, want %v", tt.id, got.SoC(), tt.want)
		}
		if got.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", got.Name(), tt.name)
		}
	}
}

func TestDetectFallsBackToUname(t *testing.T) {
	uname := "Linux imx93evk 6.6.23-lts-next #1 SMP PREEMPT aarch64 GNU/Linux"
	got := DetectFrom(filepath.Join(t.TempDir(), "missing"), uname)
	if got.SoC() != IMX93 {
		t.Errorf("SoC() = %v, want %v", got.SoC(), IMX93)
	}
	got = DetectFrom(writeSocId(t, "garbage"), "Linux imx8mpevk 6.1 aarch64")
	if got.SoC() != IMX8MP {
		t.Errorf("SoC() = %v, want %v", got.SoC(), IMX8MP)
	}
	got = DetectFrom(writeSocId(t, "garbage"), "Linux raspberrypi 6.1 aarch64")
	if got.SoC() != Unknown {
		t.Errorf("SoC() = %v, want Unknown", got.SoC())
	}
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		soc                                   SoC
		gpuML, vsiGPU, vsiNPU, ethos, neutron bool
		g2d, pxp, imx8, imx9                  bool
	}{
		{IMX8MQ, true, true, false, false, false, false, false, true, false},
		{IMX8MM, false, false, false, false, false, true, false, true, false},
		{IMX8MN, true, true, false, false, false, true, false, true, false},
		{IMX8MP, true, true, true, false, false, true, false, true, false},
		{IMX8ULP, false, false, false, false, false, true, false, true, false},
		{IMX8QM, true, true, false, false, false, true, false, true, false},
		{IMX93, false, false, false, true, false, false, true, false, true},
		{IMX95, true, false, false, false, true, true, false, false, true},
		{Unknown, false, false, false, false, false, false, false, false, false},
	}
	for _, tt := range tests {
		i := New(tt.soc)
		got := []bool{i.HasGPUML(), i.HasVsiGPU(), i.HasVsiNPU(), i.HasEthosNPU(), i.HasNeutronNPU(),
			i.HasG2D(), i.HasPXP(), i.IsIMX8(), i.IsIMX9()}
		want := []bool{tt.gpuML, tt.vsiGPU, tt.vsiNPU, tt.ethos, tt.neutron, tt.g2d, tt.pxp, tt.imx8, tt.imx9}
		for k := range want {
			if got[k] != want[k] {
				t.Errorf("%s capability %d = %v, want %v", i.Name(), k, got[k], want[k])
			}
		}
	}
}

func TestParseBackend(t *testing.T) {
	tests := map[string]Backend{"CPU": CPU, "gpu": GPU, "NPU": NPU, "": NPU, "tpu": NPU}
	for in, want := range tests {
		if got := ParseBackend(in); got != want {
			t.Errorf("ParseBackend(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUname(t *testing.T) {
	host, err := os.Hostname()
	if err != nil {
		t.Skip(err)
	}
	if got := uname(); !strings.HasPrefix(got, "Linux "+host+" ") {
		t.Errorf("uname() = %q, want Linux %s ...", got, host)
	}
}
