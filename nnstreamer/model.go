package nnstreamer

import (
	"errors"
	"fmt"
	"path/filepath"

	"imxnn/gstpipeline"
	"imxnn/imx"
)

var ErrModelFormat = errors.New("TFLite model needed")

// Shape is the NHWC input of a model.
type Shape struct {
	Height   int
	Width    int
	Channels int
}

type ShapeReader interface {
	// InputShape reads input tensor 0 of the model. parseLib names an external delegate
	// the interpreter needs to load the model, or is empty.
	InputShape(path string, parseLib string) (Shape, error)
}

type Model struct {
	Path          string
	Backend       imx.Backend
	Normalization Normalization
	Delegate      Delegate
	Shape         Shape
}

func NewModel(path string, backend imx.Backend, norm Normalization, i imx.Imx, reader ShapeReader) (*Model, error) {
	if filepath.Ext(path) != ".tflite" {
		return nil, fmt.Errorf("%s: %w", path, ErrModelFormat)
	}
	delegate, err := SelectDelegate(backend, i)
	if err != nil {
		return nil, err
	}
	var parseLib string
	if backend == imx.NPU {
		parseLib = delegate.ParseLib()
	}
	shape, err := reader.InputShape(path, parseLib)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s input shape: %w", path, err)
	}
	return &Model{
		Path:          path,
		Backend:       backend,
		Normalization: norm,
		Delegate:      delegate,
		Shape:         shape,
	}, nil
}

// Inference adds scaling to the model input size, tensor conversion, normalization and the
// tensor_filter. A named filter is reported by the perf overlay.
func (m *Model) Inference(p *gstpipeline.Pipeline, name string, format string) {
	if format == "RGB" || format == "" {
		p.ScaleToRGB(m.Shape.Width, m.Shape.Height)
	} else {
		p.VideoTransform(format, m.Shape.Width, m.Shape.Height, false, false, true)
	}
	cmd := "tensor_converter ! " + m.Normalization.Transform()
	cmd += "tensor_filter latency=1 framework=tensorflow-lite  model=" + m.Path + " " + m.Delegate.Custom
	if name != "" {
		cmd += " name=" + name
		p.AddFilterName(name)
	}
	p.Add(cmd + " ! ")
}
