package app

import (
	"go.uber.org/zap"

	"imxnn/gstpipeline"
	"imxnn/overlay"
	"imxnn/runner"
)

const OVERLAY_NAME = "result_overlay"
const COMPOSITOR_NAME = "overlay_mix"

// OverlayDisplay ends the current branch in a compositor putting the result overlay above
// the video, and opens the overlay appsrc feeding it.
func OverlayDisplay(p *gstpipeline.Pipeline, width int, height int) error {
	overlayCompositor(p)
	if err := p.Display(false); err != nil {
		return err
	}
	overlayInput(p, width, height)
	return nil
}

// OverlayLink is OverlayDisplay for a branch whose composed output feeds the compositor next.
func OverlayLink(p *gstpipeline.Pipeline, width int, height int, next string) {
	overlayCompositor(p)
	p.LinkCompositor(next)
	overlayInput(p, width, height)
}

func overlayCompositor(p *gstpipeline.Pipeline) {
	p.Compositor(COMPOSITOR_NAME, 0,
		gstpipeline.CompositorInput{Order: 1},
		gstpipeline.CompositorInput{Order: 2, Transparency: true})
}

func overlayInput(p *gstpipeline.Pipeline, width int, height int) {
	p.Overlay(OVERLAY_NAME, width, height)
	p.LinkCompositor(COMPOSITOR_NAME)
}

// ResultOverlay pushes frames drawn by a Renderer to the overlay appsrc.
type ResultOverlay struct {
	*overlay.Renderer
	src    *runner.Source
	logger *zap.Logger
}

// NewResultOverlay binds a renderer to the overlay appsrc of pipe and pushes a first empty
// frame, so the compositor does not wait on the overlay.
func (a *App) NewResultOverlay(pipe *runner.Pipe, width int, height int) (*ResultOverlay, error) {
	src, err := pipe.Source(OVERLAY_NAME)
	if err != nil {
		return nil, err
	}
	o := &ResultOverlay{
		Renderer: overlay.NewRenderer(width, height),
		src:      src,
		logger:   a.Logger,
	}
	o.Push(o.Blank())
	return o, nil
}

func (o *ResultOverlay) Push(frame []byte) {
	if err := o.src.Push(frame); err != nil {
		o.logger.Warn("Overlay frame dropped", zap.Error(err))
	}
}
