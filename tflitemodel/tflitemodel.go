package tflitemodel

import (
	"errors"
	"fmt"

	"github.com/mattn/go-tflite"

	"imxnn/extdelegate"
	"imxnn/nnstreamer"
)

var (
	ErrModel       = errors.New("cannot load model")
	ErrInterpreter = errors.New("cannot create interpreter")
	ErrAllocate    = errors.New("cannot allocate tensors")
	ErrInputShape  = errors.New("input tensor is not NHWC")
)

// Reader reads model input shapes with the TFLite C API.
type Reader struct{}

func (Reader) InputShape(path string, parseLib string) (nnstreamer.Shape, error) {
	model := tflite.NewModelFromFile(path)
	if model == nil {
		return nnstreamer.Shape{}, fmt.Errorf("%s: %w", path, ErrModel)
	}
	defer model.Delete()

	options := tflite.NewInterpreterOptions()
	defer options.Delete()
	options.SetNumThread(1)
	if parseLib != "" {
		delegate, err := extdelegate.Create(parseLib, nil)
		if err != nil {
			return nnstreamer.Shape{}, err
		}
		defer delegate.Delete()
		options.AddDelegate(delegate)
	}

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		return nnstreamer.Shape{}, fmt.Errorf("%s: %w", path, ErrInterpreter)
	}
	defer interpreter.Delete()
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		return nnstreamer.Shape{}, fmt.Errorf("%s: %w", path, ErrAllocate)
	}

	input := interpreter.GetInputTensor(0)
	if input == nil || input.NumDims() != 4 {
		return nnstreamer.Shape{}, fmt.Errorf("%s: %w", path, ErrInputShape)
	}
	return nnstreamer.Shape{
		Height:   input.Dim(1),
		Width:    input.Dim(2),
		Channels: input.Dim(3),
	}, nil
}
