package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"imxnn/command"
	"imxnn/config"
	"imxnn/gstpipeline"
	"imxnn/imx"
	"imxnn/logging"
	"imxnn/nnstreamer"
	"imxnn/preview"
	"imxnn/runner"
	"imxnn/tflitemodel"
)

const HTTP_SHUTDOWN_TIMEOUT = 5 * time.Second

var ErrNotSupported = errors.New("application can't run on this platform")

// App is the setup shared by the applications: options, logger, SoC, runner and the
// optional preview server.
type App struct {
	Name    string
	Config  *config.Config
	Logger  *zap.Logger
	Imx     imx.Imx
	Runner  *runner.Runner
	Preview *preview.Server
}

// New parses the command line over the application defaults and detects the SoC. defaults
// may be nil.
func New(name string, defaults *config.Config) (*App, error) {
	cfg, err := config.Parse(name, os.Args[1:], defaults)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	i := imx.Detect()
	if err := cfg.Validate(i); err != nil {
		return nil, err
	}
	if err := gstpipeline.StoreVxGraph(i, cfg.GraphPath); err != nil {
		return nil, fmt.Errorf("failed to enable graph cache: %w", err)
	}
	r := runner.New(logger.With(zap.String("app", name)))
	a := &App{
		Name:   name,
		Config: cfg,
		Logger: logger.With(zap.String("app", name), zap.String("run_id", r.RunID())),
		Imx:    i,
		Runner: r,
	}
	if cfg.Preview != "" {
		a.Preview = preview.New(a.Logger, cfg.Preview, name)
	}
	a.Logger.Info("Start app...",
		zap.String("soc", i.Name()),
		zap.String("backend", cfg.Backend),
		zap.String("normalization", cfg.Normalization))
	return a, nil
}

// Fatal logs err and exits. logger may be nil when the application could not start.
func Fatal(logger *zap.Logger, err error) {
	if logger == nil {
		fmt.Fprintln(os.Stderr, err)
	} else {
		logger.Error("Application failed", zap.Error(err))
		logger.Sync()
	}
	os.Exit(1)
}

// RejectNeutron refuses the NPU backend on i.MX 95, whose Neutron delegate lacks ops some
// models need.
func (a *App) RejectNeutron(backend imx.Backend) error {
	if a.Imx.SoC() == imx.IMX95 && backend == imx.NPU {
		return fmt.Errorf("NPU on %s: %w", a.Imx.Name(), ErrNotSupported)
	}
	return nil
}

// Model loads a model for backend and exports its delegate environment.
func (a *App) Model(path string, backend imx.Backend, norm nnstreamer.Normalization) (*nnstreamer.Model, error) {
	model, err := nnstreamer.NewModel(path, backend, norm, a.Imx, tflitemodel.Reader{})
	if err != nil {
		return nil, err
	}
	if err := model.Delegate.Apply(); err != nil {
		return nil, err
	}
	a.Logger.Info("Model loaded",
		zap.String("model", path),
		zap.String("backend", string(backend)),
		zap.String("delegate", string(model.Delegate.Kind)),
		zap.Int("width", model.Shape.Width),
		zap.Int("height", model.Shape.Height))
	return model, nil
}

// Source adds the camera, or the video file when one is set.
func (a *App) Source(p *gstpipeline.Pipeline, name string, width int, height int, format string) (bool, error) {
	cfg := a.Config
	if cfg.VideoPath != "" && !cfg.UseCamera {
		return false, p.VideoFile(cfg.VideoPath, width, height)
	}
	p.Camera(gstpipeline.Camera{
		Name:      name,
		Device:    cfg.CameraDevice,
		Width:     width,
		Height:    height,
		Framerate: cfg.Camera.Framerate,
		Format:    format,
	})
	return true, nil
}

// PreviewBranch adds the preview appsink on tee when the preview is enabled.
func (a *App) PreviewBranch(p *gstpipeline.Pipeline, tee string) {
	if a.Preview != nil {
		preview.Branch(p, tee)
	}
}

// Publish sends results to the preview clients, if any.
func (a *App) Publish(results interface{}) {
	if a.Preview != nil {
		a.Preview.Publish(results)
	}
}

// handleCommand applies a command of a preview client. cancel ends Run.
func (a *App) handleCommand(cmd *command.Command, cancel context.CancelFunc) {
	switch cmd.Type {
	case command.Stop:
		cancel()
	case command.SetPerf:
		p, err := command.ParsePerf(cmd.Perf)
		if err != nil {
			a.Logger.Warn("Invalid perf command", zap.Error(err))
			return
		}
		a.Runner.SetPerf(p)
	}
}

// Run feeds the preview from its appsink when enabled, then plays the pipelines until
// SIGINT, SIGTERM, a stop command, or the first error or end of stream.
func (a *App) Run(previewPipe *runner.Pipe) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if a.Preview != nil && previewPipe != nil {
		a.Preview.OnCommand(func(cmd *command.Command) {
			a.handleCommand(cmd, cancel)
		})
		if err := previewPipe.OnSample(preview.SINK_NAME, func(frame []byte) {
			if err := a.Preview.PushFrame(frame); err != nil {
				a.Logger.Debug("Preview frame dropped", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		if err := a.Preview.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), HTTP_SHUTDOWN_TIMEOUT)
			defer cancel()
			if err := a.Preview.Shutdown(shutdownCtx); err != nil {
				a.Logger.Warn("Preview shutdown", zap.Error(err))
			}
		}()
	}
	return a.Runner.Run(ctx)
}
