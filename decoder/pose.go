package decoder

import "fmt"

// MoveNet emits 17 rows of (y, x, score), normalized to the square input.
const (
	KPT_SIZE            = 17
	KPT_ROW_SIZE        = 3
	KPT_SCORE_THRESHOLD = 0.4
)

var KeypointLabels = [KPT_SIZE]string{
	"nose", "left_eye", "right_eye", "left_ear", "right_ear",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_hip", "right_hip",
	"left_knee", "right_knee", "left_ankle", "right_ankle",
}

// Skeleton lists, for every keypoint, the higher keypoints it is drawn connected to. Each
// limb appears once.
var Skeleton = [KPT_SIZE][]int{
	{1, 2}, {3}, {4}, nil, nil,
	{6, 7, 11}, {8, 12}, {9}, {10},
	nil, nil, {12, 13}, {14},
	{15}, {16}, nil, nil,
}

type Keypoint struct {
	Label string  `json:"label"`
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Score float32 `json:"score"`
	Valid bool    `json:"valid"`
}

// PoseKeypoints scales MoveNet keypoints to a size x size frame.
func PoseKeypoints(raw []float32, size int) ([]Keypoint, error) {
	if len(raw) < KPT_SIZE*KPT_ROW_SIZE {
		return nil, fmt.Errorf("pose tensor has %d values: %w", len(raw), ErrTensorSize)
	}
	kpts := make([]Keypoint, KPT_SIZE)
	for i := range kpts {
		row := raw[i*KPT_ROW_SIZE:]
		kpts[i] = Keypoint{
			Label: KeypointLabels[i],
			Y:     row[0] * float32(size),
			X:     row[1] * float32(size),
			Score: row[2],
			Valid: row[2] >= KPT_SCORE_THRESHOLD,
		}
	}
	return kpts, nil
}
