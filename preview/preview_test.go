package preview

import (
	"bufio"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"imxnn/command"
	"imxnn/gstpipeline"
	"imxnn/imx"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(zap.NewNop(), ":0", "face_detection")
	go s.frames.Run()
	go s.results.Run()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.frames.Stop()
		s.results.Stop()
	})
	return s, ts
}

// repeat calls fn until done is closed, so values are not lost before a client registers.
func repeat(done <-chan struct{}, fn func()) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			fn()
		}
	}
}

func TestResultsWebsocket(t *testing.T) {
	s, ts := newTestServer(t)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go repeat(done, func() { s.Publish([]string{"happy"}) })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var msg struct {
		Frame   uint64   `json:"frame"`
		Task    string   `json:"task"`
		Results []string `json:"results"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal(%s): %v", data, err)
	}
	if msg.Frame == 0 || msg.Task != "face_detection" || len(msg.Results) != 1 || msg.Results[0] != "happy" {
		t.Errorf("message = %+v", msg)
	}
}

func TestWebsocketCommand(t *testing.T) {
	s, ts := newTestServer(t)
	received := make(chan *command.Command, 1)
	s.OnCommand(func(cmd *command.Command) { received <- cmd })
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Invalid commands are skipped without closing the connection.
	for _, raw := range []string{`{"type":"setServoValues"}`, `{"type":"setPerf","perf":"all"}`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("WriteMessage: %v", err)
		}
	}
	select {
	case cmd := <-received:
		if cmd.Type != command.SetPerf || cmd.Perf != "all" {
			t.Errorf("command = %+v", cmd)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no command received")
	}
}

func TestMjpegStream(t *testing.T) {
	s, ts := newTestServer(t)
	done := make(chan struct{})
	defer close(done)
	go repeat(done, func() { s.PushFrame(make([]byte, FRAME_WIDTH*FRAME_HEIGHT*CHANNELS_NUM)) })

	resp, err := http.Get(ts.URL + "/mjpeg")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if got, want := resp.Header.Get("Content-Type"), "multipart/x-mixed-replace; boundary=--"+MJPEG_FRAME_BOUNDARY; got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
	reader := bufio.NewReader(resp.Body)
	for _, want := range []string{"\r\n", "--" + MJPEG_FRAME_BOUNDARY + "\r\n", "Content-Type: image/jpeg\r\n", "\r\n"} {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("ReadString: %v", err)
		}
		if line != want {
			t.Fatalf("line = %q, want %q", line, want)
		}
	}
	soi := make([]byte, 2)
	if _, err := reader.Read(soi); err != nil || soi[0] != 0xFF || soi[1] != 0xD8 {
		t.Errorf("frame starts with % x, %v, want JPEG SOI", soi, err)
	}
}

func TestPushFrameSize(t *testing.T) {
	s := New(zap.NewNop(), ":0", "pose")
	if err := s.PushFrame(make([]byte, 10)); !errors.Is(err, ErrFrameSize) {
		t.Errorf("PushFrame error = %v, want ErrFrameSize", err)
	}
}

func TestBranch(t *testing.T) {
	p := gstpipeline.New(imx.New(imx.IMX93))
	Branch(p, "t")
	want := "t. ! queue max-size-buffers=2 leaky=2 ! " +
		"imxvideoconvert_pxp ! video/x-raw,width=320,height=240,format=BGR ! " +
		"videoconvert ! video/x-raw,format=RGB ! " +
		"appsink name=preview sync=false max-buffers=1 drop=true "
	if got := p.String(); got != want {
		t.Errorf("Branch = %q, want %q", got, want)
	}
}
