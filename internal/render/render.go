// Package render draws hand skeletons and the gesture label onto video frames.
package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/gestellence/gestellence/internal/detector"
	"github.com/gestellence/gestellence/internal/gesture"
)

// Connections are the skeleton edges between landmark indices: thumb, the
// four fingers from the wrist, and the palm edges between the finger bases.
var Connections = [...][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 4},
	{0, 5}, {5, 6}, {6, 7}, {7, 8},
	{0, 9}, {9, 10}, {10, 11}, {11, 12},
	{0, 13}, {13, 14}, {14, 15}, {15, 16},
	{0, 17}, {17, 18}, {18, 19}, {19, 20},
	{5, 9}, {9, 13}, {13, 17},
}

// Options controls the overlay appearance.
type Options struct {
	LineColor     color.RGBA
	LineThickness int

	PointColor   color.RGBA
	OutlineColor color.RGBA
	PointRadius  int

	LabelColor     color.RGBA
	LabelOrigin    image.Point
	LabelScale     float64
	LabelThickness int
}

// DefaultOptions returns the standard overlay style.
func DefaultOptions() Options {
	return Options{
		LineColor:     color.RGBA{R: 200, G: 200, B: 0, A: 255},
		LineThickness: 2,

		PointColor:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
		OutlineColor: color.RGBA{R: 255, G: 150, B: 0, A: 255},
		PointRadius:  5,

		LabelColor:     color.RGBA{G: 255, A: 255},
		LabelOrigin:    image.Pt(30, 70),
		LabelScale:     1.8,
		LabelThickness: 3,
	}
}

// Renderer draws detections onto frames. It holds no per-frame state and is
// safe for concurrent use.
type Renderer struct {
	opts Options
}

// New creates a Renderer with the given options.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render returns a copy of frame with every well-formed hand drawn on it and
// the gesture label written at the label origin. The input frame is not
// modified. The caller owns the returned Mat.
func (r *Renderer) Render(frame gocv.Mat, hands []detector.Hand, g gesture.Gesture) gocv.Mat {
	out := frame.Clone()
	if out.Empty() {
		return out
	}

	w, h := out.Cols(), out.Rows()
	for _, hand := range hands {
		r.drawHand(&out, hand, w, h)
	}

	gocv.PutTextWithParams(&out, g.Label(), r.opts.LabelOrigin,
		gocv.FontHersheySimplex, r.opts.LabelScale, r.opts.LabelColor,
		r.opts.LabelThickness, gocv.LineAA, false)

	return out
}

// drawHand draws the skeleton lines first and the joints on top of them.
func (r *Renderer) drawHand(img *gocv.Mat, hand detector.Hand, w, h int) {
	pts, ok := PixelPoints(hand, w, h)
	if !ok {
		return
	}

	for _, c := range Connections {
		gocv.Line(img, pts[c[0]], pts[c[1]], r.opts.LineColor, r.opts.LineThickness)
	}
	for _, p := range pts {
		gocv.Circle(img, p, r.opts.PointRadius, r.opts.PointColor, -1)
		gocv.Circle(img, p, r.opts.PointRadius, r.opts.OutlineColor, 1)
	}
}

// PixelPoints maps a hand's normalized landmarks to pixel coordinates of a
// w x h frame. It reports false for a hand without the full landmark set.
func PixelPoints(hand detector.Hand, w, h int) ([]image.Point, bool) {
	if !hand.Valid() {
		return nil, false
	}
	pts := make([]image.Point, len(hand.Landmarks))
	for i, lm := range hand.Landmarks {
		pts[i] = image.Pt(int(lm.X*float64(w)), int(lm.Y*float64(h)))
	}
	return pts, true
}
