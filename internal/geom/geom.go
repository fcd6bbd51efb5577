// Package geom holds the small amount of 2D geometry shared by the drawing
// tools: points, normalized rectangles and the angle helpers used for Shift
// constrained drawing.
package geom

import (
	"image"
	"math"
)

// Vec2 is a point or offset in canvas coordinates.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// FromPoint converts an integer image point.
func FromPoint(p image.Point) Vec2 { return Vec2{X: float64(p.X), Y: float64(p.Y)} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Pt rounds v to the nearest pixel.
func (v Vec2) Pt() image.Point {
	return image.Pt(int(math.Round(v.X)), int(math.Round(v.Y)))
}

// Dist returns the euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Rect is an axis aligned rectangle. TopLeft is never below or right of
// BottomRight once produced by NormalizeRect.
type Rect struct {
	TopLeft     Vec2
	BottomRight Vec2
}

// NormalizeRect returns the rectangle spanned by a and b with the minimum
// coordinates in TopLeft.
func NormalizeRect(a, b Vec2) Rect {
	return Rect{
		TopLeft:     Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		BottomRight: Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
}

func (r Rect) Width() float64  { return r.BottomRight.X - r.TopLeft.X }
func (r Rect) Height() float64 { return r.BottomRight.Y - r.TopLeft.Y }

// Size returns the width and height as a vector.
func (r Rect) Size() Vec2 { return Vec2{r.Width(), r.Height()} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Center returns the middle of the rectangle.
func (r Rect) Center() Vec2 { return Center(r.TopLeft, r.BottomRight) }

// Translate moves the rectangle by d.
func (r Rect) Translate(d Vec2) Rect {
	return Rect{TopLeft: r.TopLeft.Add(d), BottomRight: r.BottomRight.Add(d)}
}

// Contains reports whether p lies strictly inside r shrunk by margin on every
// side.
func (r Rect) Contains(p Vec2, margin float64) bool {
	return p.X > r.TopLeft.X+margin && p.X < r.BottomRight.X-margin &&
		p.Y > r.TopLeft.Y+margin && p.Y < r.BottomRight.Y-margin
}

// Image converts r to integer pixel bounds.
func (r Rect) Image() image.Rectangle {
	return image.Rectangle{Min: r.TopLeft.Pt(), Max: r.BottomRight.Pt()}
}

// TrueEndCoord returns end, adjusted when constrainSquare is set so that the
// box from begin to end is a square. The smaller of the two distances wins
// and each axis keeps the direction of the original drag.
func TrueEndCoord(begin, end Vec2, constrainSquare bool) Vec2 {
	if !constrainSquare {
		return end
	}
	dx := end.X - begin.X
	dy := end.Y - begin.Y
	d := math.Min(math.Abs(dx), math.Abs(dy))
	return Vec2{begin.X + sign(dx)*d, begin.Y + sign(dy)*d}
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

// Center returns the midpoint of a and b.
func Center(a, b Vec2) Vec2 {
	return Vec2{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// Radius returns half the distance between two coordinates on one axis.
func Radius(a, b float64) float64 { return math.Abs(b-a) / 2 }

// Clamp keeps p within a canvas of the given size.
func Clamp(p Vec2, width, height float64) Vec2 {
	return Vec2{math.Max(0, math.Min(p.X, width)), math.Max(0, math.Min(p.Y, height))}
}
