package overlay

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"imxnn/decoder"
)

type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
}

func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.6,
		Color:     Magenta,
		Thickness: 2,
	}
}

// Renderer draws inference results on a transparent BGRA frame, to be composited over the
// video.
type Renderer struct {
	mu     sync.Mutex
	width  int
	height int
	mat    gocv.Mat
	Font   Font
}

func NewRenderer(width int, height int) *Renderer {
	r := &Renderer{
		width:  width,
		height: height,
		mat:    gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC4),
		Font:   DefaultFont(),
	}
	r.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
	return r
}

func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mat.Close()
}

func (r *Renderer) clear() {
	r.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
}

func (r *Renderer) text(s string, x int, y int) {
	gocv.PutText(&r.mat, s, image.Pt(x, y), r.Font.Face, r.Font.Scale, r.Font.Color, r.Font.Thickness)
}

func (r *Renderer) box(b decoder.Box) {
	gocv.Rectangle(&r.mat, image.Rect(b.X1, b.Y1, b.X2, b.Y2), r.Font.Color, r.Font.Thickness)
}

// Blank returns a fully transparent frame.
func (r *Renderer) Blank() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear()
	return r.mat.ToBytes()
}

// Faces draws the face count and one square per face. It returns the frame bytes.
func (r *Renderer) Faces(boxes []decoder.Box) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear()
	r.text(fmt.Sprintf("Faces detected: %d", len(boxes)), r.width-160, 18)
	for _, b := range boxes {
		r.box(b)
	}
	return r.mat.ToBytes()
}

// Emotions draws each face with its emotion and score under the box.
func (r *Renderer) Emotions(faces []decoder.FaceEmotion) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear()
	for _, f := range faces {
		r.box(f.Box)
		r.text(fmt.Sprintf("%s(%.2f)", f.Emotion, f.Score), f.Box.X1, f.Box.Y2+20)
	}
	return r.mat.ToBytes()
}

// Pose draws valid keypoints, their label and the skeleton links between valid keypoints.
// offsetX shifts the keypoints when the pose input is a crop of a wider frame.
func (r *Renderer) Pose(kpts []decoder.Keypoint, offsetX int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear()
	r.pose(kpts, offsetX)
	return r.mat.ToBytes()
}

// FacesAndPose draws both results of the mixed demo on one frame.
func (r *Renderer) FacesAndPose(boxes []decoder.Box, kpts []decoder.Keypoint, offsetX int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear()
	r.text(fmt.Sprintf("Faces detected: %d", len(boxes)), r.width-160, 18)
	for _, b := range boxes {
		r.box(decoder.Box{X1: b.X1 + offsetX, Y1: b.Y1, X2: b.X2 + offsetX, Y2: b.Y2})
	}
	r.pose(kpts, offsetX)
	return r.mat.ToBytes()
}

func (r *Renderer) pose(kpts []decoder.Keypoint, offsetX int) {
	pt := func(k decoder.Keypoint) image.Point {
		return image.Pt(int(k.X)+offsetX, int(k.Y))
	}
	for i, k := range kpts {
		if !k.Valid {
			continue
		}
		gocv.Circle(&r.mat, pt(k), 2, Red, -1)
		gocv.PutText(&r.mat, k.Label, pt(k).Add(image.Pt(5, 5)), gocv.FontHersheySimplex, 0.35, Cyan, 1)
		if i >= len(decoder.Skeleton) {
			continue
		}
		for _, j := range decoder.Skeleton[i] {
			if j < len(kpts) && kpts[j].Valid {
				gocv.Line(&r.mat, pt(k), pt(kpts[j]), Green, 1)
			}
		}
	}
}
