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

// Stamp limits.
const (
	MinStampScale  = 0.25
	MaxStampScale  = 4
	StampAngleStep = 15
	// StampSize is the edge of a stamp at scale 1.
	StampSize = 40
)

// StampShape is one of the built-in stamps.
type StampShape int

const (
	StampStar StampShape = iota
	StampHeart
	StampCheck
	StampArrow
	StampSmiley
)

var stampNames = [...]string{"star", "heart", "check", "arrow", "smiley"}

func (s StampShape) String() string {
	if s < 0 || int(s) >= len(stampNames) {
		return fmt.Sprintf("StampShape(%d)", int(s))
	}
	return stampNames[s]
}

// ParseStamp accepts the names produced by String.
func ParseStamp(s string) (StampShape, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range stampNames {
		if n == s {
			return StampShape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stamp %q", s)
}

// trace adds the stamp path in a box of StampSize centred on the origin.
// It reports whether the path is stroked rather than filled.
func (s StampShape) trace(dc *gg.Context) (stroke bool) {
	const h = StampSize / 2
	switch s {
	case StampHeart:
		dc.MoveTo(0, h*0.8)
		dc.CubicTo(-h*1.3, -h*0.1, -h*0.6, -h*1.1, 0, -h*0.4)
		dc.CubicTo(h*0.6, -h*1.1, h*1.3, -h*0.1, 0, h*0.8)
		dc.ClosePath()
	case StampCheck:
		dc.MoveTo(-h*0.8, 0)
		dc.LineTo(-h*0.25, h*0.6)
		dc.LineTo(h*0.85, -h*0.7)
		return true
	case StampArrow:
		dc.MoveTo(-h, -h*0.25)
		dc.LineTo(h*0.2, -h*0.25)
		dc.LineTo(h*0.2, -h*0.7)
		dc.LineTo(h, 0)
		dc.LineTo(h*0.2, h*0.7)
		dc.LineTo(h*0.2, h*0.25)
		dc.LineTo(-h, h*0.25)
		dc.ClosePath()
	case StampSmiley:
		dc.DrawCircle(0, 0, h*0.9)
		dc.NewSubPath()
		dc.DrawCircle(-h*0.3, -h*0.25, h*0.1)
		dc.NewSubPath()
		dc.DrawCircle(h*0.3, -h*0.25, h*0.1)
		dc.NewSubPath()
		dc.DrawArc(0, 0, h*0.55, math.Pi*0.15, math.Pi*0.85)
		return true
	default:
		for i := 0; i < 10; i++ {
			r := float64(h)
			if i%2 == 1 {
				r = h * 0.4
			}
			a := -math.Pi/2 + float64(i)*math.Pi/5
			x, y := r*math.Cos(a), r*math.Sin(a)
			if i == 0 {
				dc.MoveTo(x, y)
				continue
			}
			dc.LineTo(x, y)
		}
		dc.ClosePath()
	}
	return false
}

// StampCommand replays one stamp.
type StampCommand struct {
	Layer *surface.Layer
	Shape StampShape
	Pos   geom.Vec2
	Scale float64
	// Angle is in degrees.
	Angle float64
	Color colors.Color
}

func (c *StampCommand) Execute() {
	c.Layer.Draw(func(dc *gg.Context) error {
		dc.Translate(c.Pos.X, c.Pos.Y)
		dc.Rotate(c.Angle * math.Pi / 180)
		dc.Scale(c.Scale, c.Scale)
		dc.SetColor(paint(c.Color))
		if c.Shape.trace(dc) {
			dc.SetStroke(surface.RoundPen(StampSize / 10))
			return dc.Stroke()
		}
		return dc.Fill()
	})
}

// Stamp drops a built-in shape at the cursor.
type Stamp struct {
	Base
	Shape StampShape
	Angle float64

	scale   float64
	cursor  geom.Vec2
	overlay bool
}

// NewStamp returns the stamp tool.
func NewStamp(env *Env) *Stamp {
	return &Stamp{Base: newBase(env, KindStamp, "Stamp"), scale: 1}
}

// Scale returns the stamp scale.
func (s *Stamp) Scale() float64 { return s.scale }

// SetScale clamps v into the supported range.
func (s *Stamp) SetScale(v float64) {
	s.scale = math.Min(math.Max(v, MinStampScale), MaxStampScale)
}

// Overlay reports whether the cursor preview is shown.
func (s *Stamp) Overlay() bool { return s.overlay }

func (s *Stamp) OnMouseDown(e MouseEvent) {
	if !e.IsLeft() {
		return
	}
	s.clearPreview()
	cmd := s.command(s.surface().Base, e.Pos)
	cmd.Execute()
	s.env.record(cmd)
	s.drawOverlay(e.Pos)
}

func (s *Stamp) OnMouseMove(e MouseEvent) { s.drawOverlay(e.Pos) }

func (s *Stamp) OnMouseOut(MouseEvent) { s.ClearOverlay() }

func (s *Stamp) OnKeyDown(e key.Event) {
	switch e.Rune {
	case '[':
		s.Angle = math.Mod(s.Angle-StampAngleStep+360, 360)
	case ']':
		s.Angle = math.Mod(s.Angle+StampAngleStep, 360)
	default:
		return
	}
	if s.overlay {
		s.drawOverlay(s.cursor)
	}
}

func (s *Stamp) drawOverlay(at geom.Vec2) {
	s.cursor = at
	s.overlay = true
	s.clearPreview()
	s.command(s.surface().Preview, at).Execute()
}

// ClearOverlay hides the cursor preview.
func (s *Stamp) ClearOverlay() {
	if s.overlay {
		s.clearPreview()
	}
	s.overlay = false
}

func (s *Stamp) command(l *surface.Layer, at geom.Vec2) *StampCommand {
	return &StampCommand{Layer: l, Shape: s.Shape, Pos: at, Scale: s.scale, Angle: s.Angle, Color: s.env.Colors.Primary()}
}
