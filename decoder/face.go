package decoder

// UltraFace output rows are (label, score, x1, y1, x2, y2), coordinates normalized.
const (
	UFACE_ROW_SIZE        = 6
	UFACE_NUMBER_BOXES    = 100
	UFACE_NUMBER_MAX      = 15
	UFACE_SCORE_THRESHOLD = 0.7
	FACE_BOX_SCALE        = 0.8
	FACE_BOX_MIN_SIZE     = 16
)

type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Crop returns the videocrop margins isolating the box in a width x height frame.
func (b Box) Crop(width int, height int) (top int, bottom int, left int, right int) {
	return b.Y1, height - b.Y2, b.X1, width - b.X2
}

// FaceBoxes keeps confident UltraFace detections and turns each into a square box inside
// the width x height frame, no smaller than the accelerators accept.
func FaceBoxes(raw []float32, width int, height int) []Box {
	rows := len(raw) / UFACE_ROW_SIZE
	if rows > UFACE_NUMBER_BOXES {
		rows = UFACE_NUMBER_BOXES
	}
	boxes := make([]Box, 0, UFACE_NUMBER_MAX)
	for r := 0; r < rows && len(boxes) < UFACE_NUMBER_MAX; r++ {
		row := raw[r*UFACE_ROW_SIZE : (r+1)*UFACE_ROW_SIZE]
		if row[1] <= UFACE_SCORE_THRESHOLD {
			continue
		}
		b := Box{
			X1: int(row[2] * float32(width)),
			Y1: int(row[3] * float32(height)),
			X2: int(row[4] * float32(width)),
			Y2: int(row[5] * float32(height)),
		}
		boxes = append(boxes, square(b, width, height))
	}
	return boxes
}

func square(b Box, width int, height int) Box {
	w := b.X2 - b.X1 + 1
	h := b.Y2 - b.Y1 + 1
	cx := (b.X1 + b.X2) / 2
	cy := (b.Y1 + b.Y2) / 2

	d := float32(max(w, h)) * FACE_BOX_SCALE
	d = min(d, float32(min(width, height)))
	d = max(d, FACE_BOX_MIN_SIZE)
	d2 := int(d / 2)

	if cx+d2 >= width {
		cx = width - d2 - 1
	}
	if cx-d2 < 0 {
		cx = d2
	}
	if cy+d2 >= height {
		cy = height - d2 - 1
	}
	if cy-d2 < 0 {
		cy = d2
	}
	return Box{X1: cx - d2, Y1: cy - d2, X2: cx + d2, Y2: cy + d2}
}
