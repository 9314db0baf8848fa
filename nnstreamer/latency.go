package nnstreamer

import "imxnn/imx"

// Compositor latencies in ns, covering one inference on each backend.
const (
	MODEL_LATENCY_NS_CPU         = 300000000
	MODEL_LATENCY_NS_GPU_VSI     = 500000000
	MODEL_LATENCY_NS_NPU_VSI     = 20000000
	MODEL_LATENCY_NS_NPU_ETHOS   = 15000000
	MODEL_LATENCY_NS_NPU_NEUTRON = 20000000
	MODEL_LATENCY_NS_TWO_CAMERAS = 10000000
)

func Latency(backend imx.Backend, i imx.Imx) int {
	switch {
	case backend == imx.NPU && i.IsIMX8():
		return MODEL_LATENCY_NS_NPU_VSI
	case backend == imx.NPU && i.HasEthosNPU():
		return MODEL_LATENCY_NS_NPU_ETHOS
	case backend == imx.NPU:
		return MODEL_LATENCY_NS_NPU_NEUTRON
	case backend == imx.GPU && i.IsIMX8():
		return MODEL_LATENCY_NS_GPU_VSI
	}
	return MODEL_LATENCY_NS_CPU
}

// Two model pipelines wait longer for the detection result.
const (
	MIXED_LATENCY_NS_CPU     = 500000000
	MIXED_LATENCY_NS_GPU_VSI = 1000000000
	MIXED_LATENCY_NS_NPU_VSI = 25000000
)

// MixedLatency is the compositor latency of the detection branch in the two model
// applications. It depends on the backend only.
func MixedLatency(backend imx.Backend) int {
	switch backend {
	case imx.NPU:
		return MIXED_LATENCY_NS_NPU_VSI
	case imx.GPU:
		return MIXED_LATENCY_NS_GPU_VSI
	}
	return MIXED_LATENCY_NS_CPU
}
