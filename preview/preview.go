package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Hypnotriod/jpegenc"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"imxnn/command"
	"imxnn/gstpipeline"
	"imxnn/streamer"
)

const FRAMES_BUFFER_SIZE = 64
const MJPEG_FRAME_BOUNDARY = "frameboundary"
const CONNECTION_TIMEOUT = 1 * time.Second
const FRAME_WIDTH = 320
const FRAME_HEIGHT = 240
const CHANNELS_NUM = 3
const SINK_NAME = "preview"

var json jsoniter.API = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrFrameSize = errors.New("invalid frame size")

type PixelsRGB []byte

// Message is one decoded result sent to the websocket clients.
type Message struct {
	Frame   uint64      `json:"frame"`
	Task    string      `json:"task"`
	Results interface{} `json:"results"`
}

var jpegParams = jpegenc.EncodeParams{
	QualityFactor: jpegenc.QualityFactorBest,
	PixelType:     jpegenc.PixelTypeRGB888,
	Subsample:     jpegenc.Subsample424,
	ChromaSwap:    true,
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     checkOrigin,
}

func checkOrigin(r *http.Request) bool {
	return true
}

// Branch adds the appsink branch feeding Server.PushFrame from a tee.
func Branch(p *gstpipeline.Pipeline, tee string) {
	p.Branch(tee, gstpipeline.Queue{MaxSizeBuffer: 2, Leaky: gstpipeline.LeakyDownstream})
	p.ScaleToRGB(FRAME_WIDTH, FRAME_HEIGHT)
	p.AppSink(gstpipeline.AppSink{Name: SINK_NAME, MaxBuffers: 1, Drop: true, EmitSignals: false})
}

// Server streams the camera frames as MJPEG on /mjpeg and the results as JSON on /ws.
type Server struct {
	logger  *zap.Logger
	server  *http.Server
	task    string
	width   int
	height  int
	frame   atomic.Uint64
	frames  *streamer.Streamer[PixelsRGB]
	results *streamer.Streamer[Message]
	handler atomic.Pointer[CommandHandler]
}

// CommandHandler is called from the websocket goroutine of the client that sent cmd.
type CommandHandler func(cmd *command.Command)

func New(logger *zap.Logger, address string, task string) *Server {
	s := &Server{
		logger:  logger.With(zap.String("address", address)),
		task:    task,
		width:   FRAME_WIDTH,
		height:  FRAME_HEIGHT,
		frames:  streamer.NewStreamer[PixelsRGB](streamer.BufferSizeFromTotal(FRAMES_BUFFER_SIZE)),
		results: streamer.NewStreamer[Message](streamer.BufferSizeFromTotal(FRAMES_BUFFER_SIZE)),
	}
	s.server = &http.Server{Addr: address, Handler: s.Handler()}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mjpeg", s.handleMjpegStreamRequest)
	mux.HandleFunc("/ws", s.serveResultsWSRequest)
	return mux
}

// OnCommand sets the handler of the commands clients send on /ws. Commands are ignored
// without one.
func (s *Server) OnCommand(fn CommandHandler) {
	s.handler.Store(&fn)
}

// readCommands handles the client messages until the connection fails, then closes done.
func (s *Server) readCommands(conn *websocket.Conn, logger *zap.Logger, done chan<- struct{}) {
	defer close(done)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			logger.Debug("Websocket read error", zap.Error(err))
			return
		}
		cmd, err := command.Unmarshal(message)
		if err != nil {
			logger.Warn("Websocket command format error", zap.Error(err))
			continue
		}
		logger.Info("Command received", zap.String("type", string(cmd.Type)))
		if fn := s.handler.Load(); fn != nil {
			(*fn)(cmd)
		}
	}
}

// Start runs the streamers and serves until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("cannot open preview socket: %w", err)
	}
	go s.frames.Run()
	go s.results.Run()
	go func() {
		s.logger.Info("Preview server started")
		if err := s.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.frames.Stop()
	s.results.Stop()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}
	return nil
}

// PushFrame broadcasts one RGB frame of the preview branch. It takes ownership of frame.
func (s *Server) PushFrame(frame []byte) error {
	if len(frame) != s.width*s.height*CHANNELS_NUM {
		return fmt.Errorf("%w: %d", ErrFrameSize, len(frame))
	}
	pixels := PixelsRGB(frame)
	s.frames.Broadcast(&pixels)
	return nil
}

// Publish broadcasts results decoded from one frame.
func (s *Server) Publish(results interface{}) {
	s.results.Broadcast(&Message{
		Frame:   s.frame.Add(1),
		Task:    s.task,
		Results: results,
	})
}

func (s *Server) serveResultsWSRequest(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade error", zap.Error(err))
		return
	}
	logger := s.logger.With(zap.String("remote", r.RemoteAddr))
	logger.Info("Websocket connection established")
	defer conn.Close()
	client := s.results.NewClient(streamer.BufferSizeFromTotal(FRAMES_BUFFER_SIZE))
	defer client.Close()
	done := make(chan struct{})
	go s.readCommands(conn, logger, done)
	for {
		var msg *Message
		var ok bool
		select {
		case msg, ok = <-client.C:
		case <-done:
		}
		if !ok {
			break
		}
		message, err := json.Marshal(msg)
		if err != nil {
			logger.Error("Cannot serialize results", zap.Error(err))
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(CONNECTION_TIMEOUT))
		if err = conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Info("Websocket write error", zap.Error(err))
			break
		}
	}
	logger.Info("Websocket connection terminated")
}

func (s *Server) handleMjpegStreamRequest(rw http.ResponseWriter, req *http.Request) {
	logger := s.logger.With(zap.String("remote", req.RemoteAddr))
	logger.Info("HTTP Connection established")
	rw.Header().Add("Content-Type", "multipart/x-mixed-replace; boundary=--"+MJPEG_FRAME_BOUNDARY)
	boundary := "\r\n--" + MJPEG_FRAME_BOUNDARY + "\r\nContent-Type: image/jpeg\r\n\r\n"
	flusher, _ := rw.(http.Flusher)

	client := s.frames.NewClient(streamer.BufferSizeFromTotal(FRAMES_BUFFER_SIZE))
	defer client.Close()
	timer := time.NewTimer(CONNECTION_TIMEOUT)
	defer timer.Stop()

	var frame *PixelsRGB
	jpegBuffer := make([]byte, s.width*s.height*CHANNELS_NUM)
	var ok bool
	for {
		select {
		case <-timer.C:
			logger.Info("Lost stream")
			return
		case <-req.Context().Done():
			logger.Info("HTTP Connection closed")
			return
		case frame, ok = <-client.C:
			for ok && len(client.C) != 0 {
				frame, ok = <-client.C
			}
		}
		if !ok {
			break
		}
		timer.Reset(CONNECTION_TIMEOUT)

		if _, err := io.WriteString(rw, boundary); err != nil {
			logger.Info("Cannot write response", zap.Error(err))
			break
		}
		bytesEncoded, err := jpegenc.Encode(s.width, s.height, jpegParams, *frame, jpegBuffer)
		if err != nil {
			logger.Error("Cannot encode frame", zap.Error(err))
			break
		}
		if _, err := rw.Write(jpegBuffer[:bytesEncoded]); err != nil {
			logger.Info("Cannot write response", zap.Error(err))
			break
		}
		if _, err := io.WriteString(rw, "\r\n"); err != nil {
			logger.Info("Cannot write response", zap.Error(err))
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	logger.Info("HTTP Connection closed")
}
