package nnstreamer

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"imxnn/imx"
)

var ErrBackend = errors.New("backend is not available on this SoC")

type DelegateKind string

const (
	XNNPACK    DelegateKind = "XNNPACK"
	VsiGPU     DelegateKind = "VSI GPU"
	VsiNPU     DelegateKind = "VSI NPU"
	EthosNPU   DelegateKind = "Ethos-U NPU"
	NeutronNPU DelegateKind = "Neutron NPU"
	GPU        DelegateKind = "GPU"
)

const VX_DELEGATE_LIB = "libvx_delegate.so"
const ETHOSU_DELEGATE_LIB = "libethosu_delegate.so"
const NEUTRON_DELEGATE_LIB = "libneutron_delegate.so"
const DELEGATE_LIB_DIR = "/usr/lib"

// Delegate is the tensor_filter custom option selecting a TFLite delegate, along with the
// environment the delegate reads at load time.
type Delegate struct {
	Kind   DelegateKind
	Custom string
	Env    map[string]string
}

func external(kind DelegateKind, lib string, env map[string]string) Delegate {
	return Delegate{
		Kind:   kind,
		Custom: "custom=Delegate:External,ExtDelegateLib:" + lib,
		Env:    env,
	}
}

// SelectDelegate maps a backend to the delegate the SoC provides for it.
func SelectDelegate(backend imx.Backend, i imx.Imx) (Delegate, error) {
	switch backend {
	case imx.CPU:
		return Delegate{
			Kind:   XNNPACK,
			Custom: fmt.Sprintf("custom=Delegate:XNNPACK,NumThreads:%d", runtime.NumCPU()),
		}, nil
	case imx.GPU:
		if i.IsIMX8() {
			return external(VsiGPU, VX_DELEGATE_LIB, map[string]string{"USE_GPU_INFERENCE": "1"}), nil
		}
		if i.SoC() == imx.IMX95 {
			return Delegate{Kind: GPU, Custom: "custom=Delegate:GPU"}, nil
		}
	default:
		switch {
		case i.IsIMX8() && i.Features().NPU:
			return external(VsiNPU, VX_DELEGATE_LIB, map[string]string{"USE_GPU_INFERENCE": "0"}), nil
		case i.HasEthosNPU():
			return external(EthosNPU, ETHOSU_DELEGATE_LIB, nil), nil
		case i.HasNeutronNPU():
			return external(NeutronNPU, NEUTRON_DELEGATE_LIB, map[string]string{"NEUTRON_ENABLE_ZERO_COPY": "0"}), nil
		}
	}
	return Delegate{}, fmt.Errorf("can't use %s backend with %s: %w", backend, i.Name(), ErrBackend)
}

// Apply exports the delegate environment to the process.
func (d Delegate) Apply() error {
	for k, v := range d.Env {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	return nil
}

// ParseLib is the external delegate needed to parse the model itself on the host, empty when
// the plain interpreter can read it. Vela compiled models carry an ethos-u custom op.
func (d Delegate) ParseLib() string {
	if d.Kind == EthosNPU {
		return DELEGATE_LIB_DIR + "/" + ETHOSU_DELEGATE_LIB
	}
	return ""
}
