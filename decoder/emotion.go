package decoder

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
)

var EmotionClasses = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

type FaceEmotion struct {
	Box     Box     `json:"box"`
	Emotion string  `json:"emotion"`
	Score   float32 `json:"score"`
}

// ClassifyEmotion picks the most probable emotion of a deepface output.
func ClassifyEmotion(raw []float32) (string, float32, error) {
	if len(raw) != len(EmotionClasses) {
		return "", 0, fmt.Errorf("emotion tensor has %d values: %w", len(raw), ErrTensorSize)
	}
	i := floats.MaxIdx(toFloat64s(raw))
	return EmotionClasses[i], raw[i], nil
}

// EmotionSession classifies the faces of one frame one after another, since the emotion
// pipeline crops a single face per buffer. A new frame is accepted only once the previous
// one is fully classified.
type EmotionSession struct {
	mu      sync.Mutex
	active  bool
	boxes   []Box
	index   int
	pending []FaceEmotion
	results []FaceEmotion
}

// Start begins a session on boxes and returns the first face to crop. It returns false while
// a session is running, or when there is no face, in which case results are cleared.
func (s *EmotionSession) Start(boxes []Box) (Box, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return Box{}, false
	}
	if len(boxes) == 0 {
		s.results = nil
		return Box{}, false
	}
	s.active = true
	s.boxes = append(s.boxes[:0], boxes...)
	s.index = 0
	s.pending = s.pending[:0]
	return s.boxes[0], true
}

// Add records the classification of the current face. It returns the next face to crop, or
// false when the frame is done and its results are published.
func (s *EmotionSession) Add(raw []float32) (Box, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Box{}, false, nil
	}
	emotion, score, err := ClassifyEmotion(raw)
	if err != nil {
		s.active = false
		return Box{}, false, err
	}
	s.pending = append(s.pending, FaceEmotion{Box: s.boxes[s.index], Emotion: emotion, Score: score})
	s.index++
	if s.index < len(s.boxes) {
		return s.boxes[s.index], true, nil
	}
	s.results = append([]FaceEmotion(nil), s.pending...)
	s.active = false
	return Box{}, false, nil
}

// Abort ends a running session without publishing it.
func (s *EmotionSession) Abort() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

func (s *EmotionSession) Results() []FaceEmotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FaceEmotion(nil), s.results...)
}
