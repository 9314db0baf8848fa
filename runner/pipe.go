package runner

import (
	"fmt"
	"sync"

	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"
	"go.uber.org/zap"

	"imxnn/decoder"
	"imxnn/gstpipeline"
)

// Pipe is one launched pipeline.
type Pipe struct {
	name     string
	pipeline *gst.Pipeline
	desc     *gstpipeline.Pipeline
	logger   *zap.Logger
	eos      chan struct{}
	eosOnce  sync.Once

	mu      sync.Mutex
	playing bool
}

func (p *Pipe) Name() string {
	return p.name
}

func (p *Pipe) setPlaying(playing bool) {
	p.mu.Lock()
	p.playing = playing
	p.mu.Unlock()
}

func (p *Pipe) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Pipe) Element(name string) (*gst.Element, error) {
	elem, err := p.pipeline.GetElementByName(name)
	if err != nil || elem == nil {
		return nil, fmt.Errorf("%s in %s pipeline: %w", name, p.name, ErrElement)
	}
	return elem, nil
}

func (p *Pipe) SetProperty(element string, property string, value interface{}) error {
	elem, err := p.Element(element)
	if err != nil {
		return err
	}
	if err := elem.SetProperty(property, value); err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", element, property, err)
	}
	return nil
}

// SetCrop moves a videocrop element to new margins.
func (p *Pipe) SetCrop(element string, top int, bottom int, left int, right int) error {
	for _, prop := range []struct {
		name string
		v    int
	}{{"top", top}, {"bottom", bottom}, {"left", left}, {"right", right}} {
		if err := p.SetProperty(element, prop.name, prop.v); err != nil {
			return err
		}
	}
	return nil
}

// OnTensor calls fn with the float32 tensors of every buffer reaching a tensor_sink.
// fn runs on a streaming thread.
func (p *Pipe) OnTensor(sink string, numTensors int, fn func(tensors [][]float32)) error {
	elem, err := p.Element(sink)
	if err != nil {
		return err
	}
	elem.Connect("new-data", func(self *gst.Element, buffer *gst.Buffer) {
		if n := int(buffer.NMemory()); n != numTensors {
			p.logger.Error("Number of tensors invalid", zap.String("sink", sink), zap.Int("tensors", n))
			return
		}
		tensors := make([][]float32, numTensors)
		for i := range tensors {
			mem := buffer.PeekMemory(uint(i))
			info := mem.Map(gst.MapRead)
			if info == nil {
				p.logger.Error("Can't access buffer in memory", zap.String("sink", sink))
				return
			}
			tensor, err := decoder.Float32s(info.Bytes())
			mem.Unmap()
			if err != nil {
				p.logger.Error("Invalid tensor", zap.String("sink", sink), zap.Error(err))
				return
			}
			tensors[i] = tensor
		}
		fn(tensors)
	})
	return nil
}

// copyBuffer returns a copy of the buffer content, which is only valid while mapped.
func copyBuffer(buffer *gst.Buffer) ([]byte, error) {
	if buffer == nil {
		return nil, ErrBuffer
	}
	info := buffer.Map(gst.MapRead)
	if info == nil {
		return nil, fmt.Errorf("%w: map failed", ErrBuffer)
	}
	defer buffer.Unmap()
	return append([]byte(nil), info.Bytes()...), nil
}

// OnSample calls fn with a copy of every buffer an appsink receives.
func (p *Pipe) OnSample(sink string, fn func(data []byte)) error {
	elem, err := p.Element(sink)
	if err != nil {
		return err
	}
	appSink := app.SinkFromElement(elem)
	appSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(s *app.Sink) gst.FlowReturn {
			sample := s.PullSample()
			if sample == nil {
				return gst.FlowEOS
			}
			data, err := copyBuffer(sample.GetBuffer())
			if err != nil {
				p.logger.Error("Can't access sample", zap.String("sink", sink), zap.Error(err))
				return gst.FlowError
			}
			fn(data)
			return gst.FlowOK
		},
	})
	return nil
}

// Source is an appsrc of a pipeline.
type Source struct {
	name string
	src  *app.Source
}

func (p *Pipe) Source(name string) (*Source, error) {
	elem, err := p.Element(name)
	if err != nil {
		return nil, err
	}
	return &Source{name: name, src: app.SrcFromElement(elem)}, nil
}

func (s *Source) Push(data []byte) error {
	if ret := s.src.PushBuffer(gst.NewBufferFromBytes(data)); ret != gst.FlowOK {
		return fmt.Errorf("could not push buffer to %s: %v", s.name, ret)
	}
	return nil
}
