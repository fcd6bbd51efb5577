package surface

import (
	"image/color"

	"github.com/example/pixelpad/internal/geom"
	"github.com/gogpu/gg"
)

// HandleSize is the edge length of a resize handle.
const HandleSize = 8

// Dash is the pattern used for selection perimeters and shape outlines.
var Dash = []float64{4, 2}

// Handle indexes into ControlPoints, clockwise from the top-left corner.
const (
	HandleTopLeft = iota
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
)

// RoundPen returns a solid stroke with round caps and joins.
func RoundPen(width float64) gg.Stroke {
	return gg.DefaultStroke().WithWidth(width).WithCap(gg.LineCapRound).WithJoin(gg.LineJoinRound)
}

// DashedPen returns a one pixel stroke using Dash.
func DashedPen() gg.Stroke {
	return gg.DefaultStroke().WithDashPattern(Dash...)
}

// DashedRect strokes r with the black dashed perimeter pen.
func DashedRect(l *Layer, r geom.Rect) {
	l.Draw(func(dc *gg.Context) error {
		dc.SetStroke(DashedPen())
		dc.SetColor(color.Black)
		dc.DrawRectangle(r.TopLeft.X, r.TopLeft.Y, r.Width(), r.Height())
		return dc.Stroke()
	})
}

// DashedEllipse strokes the ellipse inscribed in r.
func DashedEllipse(l *Layer, r geom.Rect) {
	if r.Empty() {
		return
	}
	l.Draw(func(dc *gg.Context) error {
		c := r.Center()
		dc.SetStroke(DashedPen())
		dc.SetColor(color.Black)
		dc.DrawEllipse(c.X, c.Y, r.Width()/2, r.Height()/2)
		return dc.Stroke()
	})
}

// ControlPoints returns the eight handle centres of r in Handle order.
func ControlPoints(r geom.Rect) [8]geom.Vec2 {
	c := r.Center()
	tl, br := r.TopLeft, r.BottomRight
	return [8]geom.Vec2{
		{X: tl.X, Y: tl.Y}, // tl
		{X: c.X, Y: tl.Y},  // t
		{X: br.X, Y: tl.Y}, // tr
		{X: br.X, Y: c.Y},  // r
		{X: br.X, Y: br.Y}, // br
		{X: c.X, Y: br.Y},  // b
		{X: tl.X, Y: br.Y}, // bl
		{X: tl.X, Y: c.Y},  // l
	}
}

// HandleRects returns the square hit areas around each control point.
func HandleRects(r geom.Rect) [8]geom.Rect {
	hs := float64(HandleSize) / 2
	var out [8]geom.Rect
	for i, p := range ControlPoints(r) {
		out[i] = geom.Rect{TopLeft: geom.V(p.X-hs, p.Y-hs), BottomRight: geom.V(p.X+hs, p.Y+hs)}
	}
	return out
}

// DrawHandles paints the resize handles of r as white squares with a black
// border.
func DrawHandles(l *Layer, r geom.Rect) {
	l.Draw(func(dc *gg.Context) error {
		for _, h := range HandleRects(r) {
			dc.DrawRectangle(h.TopLeft.X, h.TopLeft.Y, h.Width(), h.Height())
		}
		dc.SetColor(color.White)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		dc.SetColor(color.Black)
		return dc.Stroke()
	})
}
