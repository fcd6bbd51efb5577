package tool

import (
	"math"
	"time"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/geom"
	"github.com/example/pixelpad/internal/surface"
	"github.com/gogpu/gg"
	"golang.org/x/mobile/event/key"
)

const (
	// MaxOffset is how close, per axis, a double click must land to the
	// first vertex to close the polyline.
	MaxOffset = 20
	// DoubleClickWindow is how long after a click a second click finishes
	// the line.
	DoubleClickWindow = 120 * time.Millisecond
	// DefaultJunctionDiameter is the default size of the vertex dots.
	DefaultJunctionDiameter = 5
)

// LineCommand replays a polyline.
type LineCommand struct {
	Layer            *surface.Layer
	Path             []geom.Vec2
	Color            colors.Color
	Thickness        float64
	Junction         bool
	JunctionDiameter float64
}

func (c *LineCommand) Execute() {
	if len(c.Path) == 0 {
		return
	}
	c.Layer.Draw(func(dc *gg.Context) error {
		dc.SetStroke(surface.RoundPen(c.Thickness))
		dc.SetColor(paint(c.Color))
		dc.MoveTo(c.Path[0].X, c.Path[0].Y)
		for _, p := range c.Path[1:] {
			dc.LineTo(p.X, p.Y)
		}
		if err := dc.Stroke(); err != nil {
			return err
		}
		if !c.Junction {
			return nil
		}
		for _, p := range c.Path {
			dc.NewSubPath()
			dc.DrawCircle(p.X, p.Y, c.JunctionDiameter/2)
		}
		return dc.Fill()
	})
}

// Line builds a polyline one click at a time. The last entry of the path is
// a floating vertex that follows the mouse.
type Line struct {
	Base
	Pen
	Junction         bool
	JunctionDiameter float64

	path           []geom.Vec2
	mouse          geom.Vec2
	shiftDown      bool
	canDoubleClick bool
	clickGen       int
	clickTimer     Timer
}

// NewLine returns the line tool.
func NewLine(env *Env) *Line {
	l := &Line{Base: newBase(env, KindLine, "Line"), JunctionDiameter: DefaultJunctionDiameter}
	l.SetThickness(1)
	return l
}

// Path returns the vertices including the floating one.
func (l *Line) Path() []geom.Vec2 { return l.path }

func (l *Line) OnMouseDown(e MouseEvent) {
	l.mouseDown = e.IsLeft()
	if l.mouseDown {
		l.mouse = e.Pos
	}
}

func (l *Line) OnMouseUp(e MouseEvent) {
	if !l.mouseDown {
		return
	}
	l.mouseDown = false
	l.mouse = e.Pos
	if l.canDoubleClick {
		l.stopClickTimer()
		l.canDoubleClick = false
		l.FinishLine(l.mouse)
		return
	}
	if len(l.path) == 0 {
		l.AddPoint(l.mouse)
		l.AddPoint(l.mouse)
	} else if l.shiftDown {
		// the floating vertex already holds the snapped position
		l.AddPoint(l.path[len(l.path)-1])
	} else {
		l.path[len(l.path)-1] = l.mouse
		l.AddPoint(l.mouse)
	}
	l.canDoubleClick = true
	l.clickGen++
	gen := l.clickGen
	l.clickTimer = l.env.after(DoubleClickWindow, func() {
		if gen == l.clickGen {
			l.canDoubleClick = false
		}
	})
	l.UpdatePreview()
}

func (l *Line) OnMouseMove(e MouseEvent) {
	l.mouse = e.Pos
	if len(l.path) == 0 {
		return
	}
	if l.shiftDown {
		l.LockLine()
	} else {
		l.path[len(l.path)-1] = e.Pos
	}
	l.UpdatePreview()
}

func (l *Line) OnKeyDown(e key.Event) {
	switch {
	case isShift(e):
		l.shiftDown = true
		if len(l.path) > 1 {
			l.LockLine()
			l.UpdatePreview()
		}
	case e.Code == key.CodeDeleteBackspace:
		l.RemovePoint()
	case e.Code == key.CodeEscape:
		l.ClearPath()
		l.clearPreview()
	}
}

func (l *Line) OnKeyUp(e key.Event) {
	if !isShift(e) {
		return
	}
	l.shiftDown = false
	if len(l.path) > 0 {
		l.path[len(l.path)-1] = l.mouse
		l.UpdatePreview()
	}
}

func (l *Line) OnActivate() {
	l.Base.OnActivate()
	l.shiftDown = false
}

// AddPoint appends a vertex.
func (l *Line) AddPoint(p geom.Vec2) {
	l.path = append(l.path, p)
}

// RemovePoint drops the last committed vertex while keeping the floating
// one. At least two committed vertices must remain.
func (l *Line) RemovePoint() {
	if len(l.path) <= 2 {
		return
	}
	l.path = l.path[:len(l.path)-2]
	l.path = append(l.path, l.mouse)
	l.UpdatePreview()
}

// ClearPath forgets every vertex.
func (l *Line) ClearPath() {
	l.path = nil
	l.stopClickTimer()
	l.canDoubleClick = false
}

// CalculateAngle returns the direction from the last committed vertex to the
// mouse.
func (l *Line) CalculateAngle() float64 {
	if len(l.path) < 2 {
		return 0
	}
	return geom.SnapAngleDegrees(l.path[len(l.path)-2], l.mouse)
}

// LockLine snaps the floating vertex to the nearest 45° direction from the
// last committed vertex.
func (l *Line) LockLine() {
	if len(l.path) < 2 {
		return
	}
	last := l.path[len(l.path)-2]
	l.path[len(l.path)-1] = geom.AxisSnap(l.CalculateAngle(), last, l.mouse)
}

// FinishLine closes the loop when mouse is near the first vertex, then draws
// and records the polyline.
func (l *Line) FinishLine(mouse geom.Vec2) {
	if len(l.path) == 0 {
		return
	}
	first := l.path[0]
	if len(l.path) > 2 &&
		math.Abs(mouse.X-first.X) <= MaxOffset &&
		math.Abs(mouse.Y-first.Y) <= MaxOffset {
		l.path = l.path[:len(l.path)-2]
		l.path = append(l.path, first)
	} else {
		l.path = l.path[:len(l.path)-1]
	}
	l.clearPreview()
	if len(l.path) > 1 {
		cmd := l.command(l.surface().Base)
		cmd.Execute()
		l.env.record(cmd)
	}
	l.ClearPath()
}

// UpdatePreview redraws the polyline on the preview layer.
func (l *Line) UpdatePreview() {
	l.clearPreview()
	l.command(l.surface().Preview).Execute()
}

// RemovePreview abandons the line in progress.
func (l *Line) RemovePreview() {
	l.ClearPath()
	l.clearPreview()
}

func (l *Line) stopClickTimer() {
	if l.clickTimer != nil {
		l.clickTimer.Stop()
		l.clickTimer = nil
	}
	l.clickGen++
}

func (l *Line) command(layer *surface.Layer) *LineCommand {
	pts := make([]geom.Vec2, len(l.path))
	copy(pts, l.path)
	return &LineCommand{
		Layer:            layer,
		Path:             pts,
		Color:            l.env.Colors.Primary(),
		Thickness:        l.thickness,
		Junction:         l.Junction,
		JunctionDiameter: l.JunctionDiameter,
	}
}
