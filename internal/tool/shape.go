package tool

import (
	"fmt"
	"math"
	"strings"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/geom"
	"github.com/example/pixelpad/internal/surface"
	"github.com/gogpu/gg"
	"golang.org/x/mobile/event/key"
)

// TraceType selects how a shape is painted.
type TraceType int

const (
	Bordered TraceType = iota
	FilledNoBordered
	FilledAndBordered
)

var traceNames = [...]string{"bordered", "filled", "filled-bordered"}

func (t TraceType) String() string {
	if t < 0 || int(t) >= len(traceNames) {
		return fmt.Sprintf("TraceType(%d)", int(t))
	}
	return traceNames[t]
}

// ParseTraceType accepts the names produced by String.
func ParseTraceType(s string) (TraceType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range traceNames {
		if n == s {
			return TraceType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trace type %q", s)
}

// Polygon side limits.
const (
	MinPolygonSides = 3
	MaxPolygonSides = 12
)

// ShapeProperties is everything needed to redraw a shape.
type ShapeProperties struct {
	Begin, End geom.Vec2
	Thickness  float64
	Fill       colors.Color
	Stroke     colors.Color
	Square     bool
	Trace      TraceType
	Sides      int
}

// outline builds a shape path. It returns the line width to stroke with,
// which may differ from the requested one for degenerate shapes.
type outline interface {
	path(dc *gg.Context, p ShapeProperties) (lineWidth float64, ok bool)
	// empty reports whether p draws nothing.
	empty(p ShapeProperties) bool
	perimeter(l *surface.Layer, begin, end geom.Vec2, square bool)
}

// ShapeCommand replays a rectangle, ellipse or polygon.
type ShapeCommand struct {
	Layer *surface.Layer
	Props ShapeProperties
	shape outline
}

func (c *ShapeCommand) Execute() {
	c.Layer.Draw(func(dc *gg.Context) error {
		lw, ok := c.shape.path(dc, c.Props)
		if !ok {
			return nil
		}
		if c.Props.Trace != Bordered {
			dc.SetColor(paint(c.Props.Fill))
			if err := dc.FillPreserve(); err != nil {
				return err
			}
		}
		if c.Props.Trace != FilledNoBordered {
			dc.SetStroke(surface.RoundPen(lw))
			dc.SetColor(paint(c.Props.Stroke))
			if err := dc.StrokePreserve(); err != nil {
				return err
			}
		}
		dc.ClearPath()
		return nil
	})
}

// Shape is the drag-to-draw engine shared by rectangle, ellipse and polygon.
type Shape struct {
	Base
	Pen
	Trace TraceType
	// Sides is only used by the polygon.
	Sides int

	alternate  bool
	begin, end geom.Vec2
	shape      outline
}

func newShape(env *Env, kind Kind, name string, o outline) *Shape {
	s := &Shape{Base: newBase(env, kind, name), Trace: FilledAndBordered, Sides: MinPolygonSides, shape: o}
	s.SetThickness(1)
	return s
}

// NewRectangle returns the rectangle tool.
func NewRectangle(env *Env) *Shape { return newShape(env, KindRectangle, "Rectangle", rectangleOutline{}) }

// NewEllipse returns the ellipse tool.
func NewEllipse(env *Env) *Shape { return newShape(env, KindEllipse, "Ellipse", ellipseOutline{}) }

// NewPolygon returns the regular polygon tool.
func NewPolygon(env *Env) *Shape { return newShape(env, KindPolygon, "Polygon", polygonOutline{}) }

// SetSides clamps n to the supported polygon range.
func (s *Shape) SetSides(n int) {
	s.Sides = min(max(n, MinPolygonSides), MaxPolygonSides)
}

// Alternate reports whether the Shift constraint is active.
func (s *Shape) Alternate() bool { return s.alternate }

func (s *Shape) OnMouseDown(e MouseEvent) {
	s.mouseDown = e.IsLeft()
	if s.mouseDown {
		s.begin = e.Pos
		s.end = e.Pos
	}
}

func (s *Shape) OnMouseUp(e MouseEvent) {
	if s.mouseDown {
		s.end = e.Pos
		s.clearPreview()
		s.draw(s.surface().Base)
	}
	s.mouseDown = false
}

func (s *Shape) OnMouseMove(e MouseEvent) {
	s.trackButtons(e)
	if s.mouseDown {
		s.end = e.Pos
		s.drawPreview()
	}
}

func (s *Shape) OnKeyDown(e key.Event) {
	if isShift(e) {
		s.alternate = true
	}
	if s.mouseDown {
		s.drawPreview()
	}
}

func (s *Shape) OnKeyUp(e key.Event) {
	if isShift(e) {
		s.alternate = false
	}
	if s.mouseDown {
		s.drawPreview()
	}
}

func (s *Shape) OnActivate() {
	s.Base.OnActivate()
	s.alternate = false
}

func (s *Shape) drawPreview() {
	pv := s.surface().Preview
	pv.Clear()
	s.shape.perimeter(pv, s.begin, s.end, s.alternate)
	s.draw(pv)
}

// draw renders the shape on l and records it when l is the base layer.
// Shapes that draw nothing are not recorded.
func (s *Shape) draw(l *surface.Layer) {
	cmd := &ShapeCommand{Layer: l, Props: s.properties(), shape: s.shape}
	if s.shape.empty(cmd.Props) {
		return
	}
	cmd.Execute()
	if s.surface().IsBase(l) {
		s.env.record(cmd)
	}
}

func (s *Shape) properties() ShapeProperties {
	return ShapeProperties{
		Begin:     s.begin,
		End:       s.end,
		Thickness: s.thickness,
		Fill:      s.env.Colors.Primary(),
		Stroke:    s.env.Colors.Secondary(),
		Square:    s.alternate,
		Trace:     s.Trace,
		Sides:     s.Sides,
	}
}

// adjustToBorder shrinks the radii so the border stays inside the dragged
// box. Degenerate boxes cap the line width to the collapsed dimension.
func adjustToBorder(lw float64, r geom.Vec2, begin, end geom.Vec2, trace TraceType) (float64, geom.Vec2) {
	if trace != FilledNoBordered {
		r.X -= lw / 2
		r.Y -= lw / 2
	}
	if r.X <= 0 {
		lw = 1
		if begin.X != end.X {
			lw = math.Abs(begin.X - end.X)
		}
		r.X = 1
		r.Y = geom.Radius(begin.Y, end.Y) - lw/2
	}
	if r.Y <= 0 {
		lw = 1
		if begin.Y != end.Y {
			lw = math.Abs(begin.Y - end.Y)
		}
		r.Y = 1
		r.X = 1
		if begin.X != end.X {
			r.X = geom.Radius(begin.X, end.X) - lw/2
		}
	}
	return lw, r
}

type rectangleOutline struct{}

func (rectangleOutline) empty(p ShapeProperties) bool {
	return geom.NormalizeRect(p.Begin, geom.TrueEndCoord(p.Begin, p.End, p.Square)).Empty()
}

func (o rectangleOutline) path(dc *gg.Context, p ShapeProperties) (float64, bool) {
	if o.empty(p) {
		return 0, false
	}
	r := geom.NormalizeRect(p.Begin, geom.TrueEndCoord(p.Begin, p.End, p.Square))
	half := geom.V(r.Width()/2, r.Height()/2)
	lw, half := adjustToBorder(p.Thickness, half, r.TopLeft, r.BottomRight, p.Trace)
	c := r.Center()
	dc.DrawRectangle(c.X-half.X, c.Y-half.Y, 2*half.X, 2*half.Y)
	return lw, true
}

func (rectangleOutline) perimeter(l *surface.Layer, begin, end geom.Vec2, _ bool) {
	surface.DashedRect(l, geom.NormalizeRect(begin, end))
}

type ellipseOutline struct{}

func (ellipseOutline) empty(p ShapeProperties) bool {
	return geom.TrueEndCoord(p.Begin, p.End, p.Square) == p.Begin
}

func (o ellipseOutline) path(dc *gg.Context, p ShapeProperties) (float64, bool) {
	if o.empty(p) {
		return 0, false
	}
	end := geom.TrueEndCoord(p.Begin, p.End, p.Square)
	c := geom.Center(p.Begin, end)
	r := geom.V(geom.Radius(p.Begin.X, end.X), geom.Radius(p.Begin.Y, end.Y))
	lw, r := adjustToBorder(p.Thickness, r, p.Begin, end, p.Trace)
	dc.DrawEllipse(c.X, c.Y, r.X, r.Y)
	return lw, true
}

func (ellipseOutline) perimeter(l *surface.Layer, begin, end geom.Vec2, square bool) {
	surface.DashedRect(l, geom.NormalizeRect(begin, end))
	surface.DashedEllipse(l, geom.NormalizeRect(begin, geom.TrueEndCoord(begin, end, square)))
}

type polygonOutline struct{}

// polygonFrame returns the centre and radius of the circle the polygon is
// inscribed in.
func polygonFrame(begin, end geom.Vec2) (geom.Vec2, float64) {
	end = geom.TrueEndCoord(begin, end, true)
	return geom.Center(begin, end), geom.Radius(begin.X, end.X)
}

// polygonRadius is the radius of the polygon's vertices once the border is
// kept inside the frame.
func polygonRadius(p ShapeProperties) (geom.Vec2, float64) {
	c, r := polygonFrame(p.Begin, p.End)
	if p.Trace != FilledNoBordered {
		r -= p.Thickness / 2
	}
	return c, r
}

func (polygonOutline) empty(p ShapeProperties) bool {
	_, r := polygonRadius(p)
	return p.Sides < MinPolygonSides || r <= 0
}

func (o polygonOutline) path(dc *gg.Context, p ShapeProperties) (float64, bool) {
	if o.empty(p) {
		return 0, false
	}
	c, r := polygonRadius(p)
	lw := p.Thickness
	for i := 0; i < p.Sides; i++ {
		a := -math.Pi/2 + float64(i)*2*math.Pi/float64(p.Sides)
		x, y := c.X+r*math.Cos(a), c.Y+r*math.Sin(a)
		if i == 0 {
			dc.MoveTo(x, y)
			continue
		}
		dc.LineTo(x, y)
	}
	dc.ClosePath()
	return lw, true
}

func (polygonOutline) perimeter(l *surface.Layer, begin, end geom.Vec2, _ bool) {
	c, r := polygonFrame(begin, end)
	surface.DashedEllipse(l, geom.NormalizeRect(c.Sub(geom.V(r, r)), c.Add(geom.V(r, r))))
}
