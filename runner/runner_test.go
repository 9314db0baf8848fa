package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gst/go-gst/gst"
	"go.uber.org/zap"

	"imxnn/gstpipeline"
	"imxnn/imx"
)

func launchFake(t *testing.T) *Runner {
	t.Helper()
	r := New(zap.NewNop())
	p := gstpipeline.New(imx.New(imx.IMX93))
	p.Add("fakesrc is-live=true ! fakesink sync=false ")
	if _, err := r.Launch("fake", p); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	return r
}

func waitRun(t *testing.T, r *Runner, ctx context.Context) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	r := launchFake(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	waitRun(t, r, ctx)
}

func TestQuitBeforeRun(t *testing.T) {
	r := launchFake(t)
	r.Quit()
	waitRun(t, r, context.Background())
}

func TestRunCancelled(t *testing.T) {
	r := launchFake(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	waitRun(t, r, ctx)
}

func TestRunWithoutPipeline(t *testing.T) {
	if err := New(zap.NewNop()).Run(context.Background()); err == nil {
		t.Error("Run() without pipeline succeeded")
	}
}

func TestCopyBuffer(t *testing.T) {
	if _, err := copyBuffer(nil); !errors.Is(err, ErrBuffer) {
		t.Errorf("copyBuffer(nil) error = %v, want %v", err, ErrBuffer)
	}
	gst.Init(nil)
	data, err := copyBuffer(gst.NewBufferFromBytes([]byte{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 || data[0] != 1 || data[2] != 3 {
		t.Errorf("copyBuffer = %v, want [1 2 3]", data)
	}
}
