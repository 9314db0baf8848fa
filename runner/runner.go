package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gst/go-glib/glib"
	"github.com/go-gst/go-gst/gst"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"imxnn/gstpipeline"
)

const EOS_TIMEOUT = 3 * time.Second
const PERF_POLL_INTERVAL = 50 * time.Millisecond
const QUIT_RETRY_INTERVAL = 20 * time.Millisecond

var ErrElement = errors.New("no such element")
var ErrBuffer = errors.New("buffer not readable")

// Runner plays any number of pipelines on one GLib main loop. The loop ends on the first
// error or end of stream, or when Run's context is done.
type Runner struct {
	logger *zap.Logger
	runID  string
	loop   *glib.MainLoop
	mu     sync.Mutex
	pipes  []*Pipe
	perf   atomic.Pointer[gstpipeline.Perf]

	quit     chan struct{}
	quitOnce sync.Once
}

func New(logger *zap.Logger) *Runner {
	gst.Init(nil)
	runID := uuid.New().String()
	return &Runner{
		logger: logger.With(zap.String("run_id", runID)),
		runID:  runID,
		loop:   glib.NewMainLoop(glib.MainContextDefault(), false),
		quit:   make(chan struct{}),
	}
}

func (r *Runner) RunID() string {
	return r.runID
}

// SetPerf replaces the measurements of a perf overlay enabled at build time. An empty Perf
// blanks the overlay.
func (r *Runner) SetPerf(p gstpipeline.Perf) {
	r.perf.Store(&p)
}

// Launch parses a pipeline description and watches its bus. It starts playing with Run.
func (r *Runner) Launch(name string, desc *gstpipeline.Pipeline) (*Pipe, error) {
	r.logger.Debug("Parsing pipeline", zap.String("pipeline", name), zap.String("description", desc.String()))
	pipeline, err := gst.NewPipelineFromString(desc.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s pipeline: %w", name, err)
	}
	p := &Pipe{
		name:     name,
		pipeline: pipeline,
		desc:     desc,
		logger:   r.logger.With(zap.String("pipeline", name)),
		eos:      make(chan struct{}),
	}
	pipeline.GetPipelineBus().AddWatch(func(msg *gst.Message) bool {
		return r.handleMessage(p, msg)
	})
	r.mu.Lock()
	r.pipes = append(r.pipes, p)
	r.mu.Unlock()
	return p, nil
}

func (r *Runner) handleMessage(p *Pipe, msg *gst.Message) bool {
	switch msg.Type() {
	case gst.MessageError:
		gerr := msg.ParseError()
		p.logger.Error("Error received from element",
			zap.String("element", msg.Source()),
			zap.String("error", gerr.Error()),
			zap.String("debug", gerr.DebugString()))
		r.Quit()
	case gst.MessageEOS:
		p.logger.Info("End-Of-Stream reached")
		p.eosOnce.Do(func() { close(p.eos) })
		r.Quit()
	case gst.MessageStateChanged:
		if msg.Source() != p.pipeline.GetName() {
			break
		}
		oldState, newState := msg.ParseStateChanged()
		p.logger.Debug("Pipeline state changed",
			zap.String("from", oldState.String()),
			zap.String("to", newState.String()))
		p.setPlaying(newState == gst.StatePlaying)
	}
	return true
}

// Quit ends Run. It may be called from any goroutine, before or while the loop runs.
func (r *Runner) Quit() {
	r.quitOnce.Do(func() { close(r.quit) })
	r.loop.Quit()
}

// Run plays every launched pipeline and blocks until the main loop ends. When ctx is done
// first, pipelines writing a file get an EOS and up to EOS_TIMEOUT to finalize it.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	pipes := append([]*Pipe(nil), r.pipes...)
	r.mu.Unlock()
	if len(pipes) == 0 {
		return errors.New("no pipeline launched")
	}

	pollCtx, stopPolling := context.WithCancel(context.Background())
	defer stopPolling()
	for _, p := range pipes {
		if p.desc.Perf().Enabled() {
			go r.pollPerf(pollCtx, pipes)
			break
		}
	}
	for _, p := range pipes {
		if err := p.pipeline.SetState(gst.StatePlaying); err != nil {
			r.stop(pipes)
			return fmt.Errorf("failed to start %s pipeline: %w", p.name, err)
		}
	}

	loopDone := make(chan struct{})
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		select {
		case <-ctx.Done():
			r.logger.Info("Shutting down")
			r.drain(pipes)
			r.Quit()
		case <-r.quit:
		case <-loopDone:
			return
		}
		// A quit sent before the loop started running is lost, repeat it until Run returns.
		ticker := time.NewTicker(QUIT_RETRY_INTERVAL)
		defer ticker.Stop()
		for {
			select {
			case <-loopDone:
				return
			case <-ticker.C:
				r.loop.Quit()
			}
		}
	}()

	r.logger.Info("Running", zap.Int("pipelines", len(pipes)))
	r.loop.Run()
	close(loopDone)
	<-shutdownDone
	stopPolling()
	r.stop(pipes)
	r.logger.Info("Closed")
	return nil
}

func (r *Runner) drain(pipes []*Pipe) {
	for _, p := range pipes {
		if !p.desc.Saving() {
			continue
		}
		if !p.pipeline.SendEvent(gst.NewEOSEvent()) {
			p.logger.Error("Couldn't send EOS event")
			continue
		}
		select {
		case <-p.eos:
		case <-time.After(EOS_TIMEOUT):
			p.logger.Warn("No EOS after timeout", zap.Duration("timeout", EOS_TIMEOUT))
		}
	}
}

func (r *Runner) stop(pipes []*Pipe) {
	for _, p := range pipes {
		if err := p.pipeline.BlockSetState(gst.StateNull); err != nil {
			p.logger.Error("Cannot stop pipeline", zap.Error(err))
		}
	}
}
