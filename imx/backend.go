package imx

import "strings"

type Backend string

const (
	CPU Backend = "CPU"
	GPU Backend = "GPU"
	NPU Backend = "NPU"
)

// ParseBackend selects the NPU for anything it does not recognize.
func ParseBackend(s string) Backend {
	switch Backend(strings.ToUpper(s)) {
	case CPU:
		return CPU
	case GPU:
		return GPU
	}
	return NPU
}
