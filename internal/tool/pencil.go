package tool

import (
	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/geom"
	"github.com/example/pixelpad/internal/surface"
	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// MinEraserThickness is the smallest eraser footprint.
const MinEraserThickness = 5

// PathCommand replays a freehand stroke.
type PathCommand struct {
	Layer     *surface.Layer
	Points    []geom.Vec2
	Color     colors.Color
	Thickness float64
	Erase     bool
}

func (c *PathCommand) Execute() {
	if len(c.Points) == 0 {
		return
	}
	if c.Erase {
		c.Layer.Erase(c.trace)
		return
	}
	c.Layer.Draw(c.trace)
}

func (c *PathCommand) trace(dc *gg.Context) error {
	if c.Erase {
		dc.SetStroke(gg.DefaultStroke().WithWidth(c.Thickness).WithCap(gg.LineCapSquare).WithJoin(gg.LineJoinMiter))
	} else {
		dc.SetStroke(surface.RoundPen(c.Thickness))
		dc.SetColor(paint(c.Color))
	}
	if isDot(c.Points) {
		p := c.Points[0]
		if c.Erase {
			h := c.Thickness / 2
			dc.DrawRectangle(p.X-h, p.Y-h, c.Thickness, c.Thickness)
		} else {
			dc.DrawCircle(p.X, p.Y, c.Thickness/2)
		}
		return dc.Fill()
	}
	dc.MoveTo(c.Points[0].X, c.Points[0].Y)
	for _, p := range c.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	return dc.Stroke()
}

func isDot(pts []geom.Vec2) bool {
	for _, p := range pts[1:] {
		if p != pts[0] {
			return false
		}
	}
	return true
}

// Pencil draws freehand strokes in the primary colour.
type Pencil struct {
	Base
	Pen
	path  []geom.Vec2
	erase bool
}

// NewPencil returns a pencil with a one pixel stroke.
func NewPencil(env *Env) *Pencil {
	p := &Pencil{Base: newBase(env, KindPencil, "Pencil")}
	p.SetThickness(1)
	return p
}

// NewEraser returns a pencil that clears pixels instead of painting them.
func NewEraser(env *Env) *Pencil {
	p := &Pencil{Base: newBase(env, KindEraser, "Eraser"), erase: true}
	p.SetThickness(MinEraserThickness)
	return p
}

func (p *Pencil) SetThickness(t float64) {
	if p.erase && t < MinEraserThickness {
		t = MinEraserThickness
	}
	p.Pen.SetThickness(t)
}

// Path returns the points collected for the stroke in progress.
func (p *Pencil) Path() []geom.Vec2 { return p.path }

func (p *Pencil) OnMouseDown(e MouseEvent) {
	p.mouseDown = e.IsLeft()
	if p.mouseDown {
		p.path = []geom.Vec2{e.Pos}
	}
}

func (p *Pencil) OnMouseUp(e MouseEvent) {
	if p.mouseDown {
		p.path = append(p.path, e.Pos)
		p.clearPreview()
		cmd := p.command(p.surface().Base)
		cmd.Execute()
		p.env.record(cmd)
	}
	p.mouseDown = false
	p.path = nil
}

func (p *Pencil) OnMouseMove(e MouseEvent) {
	p.trackButtons(e)
	if !p.mouseDown {
		if p.erase {
			p.clearPreview()
			p.drawFootprint(e.Pos)
		}
		return
	}
	p.path = append(p.path, e.Pos)
	p.clearPreview()
	cmd := p.command(p.surface().Preview)
	if p.erase {
		cmd.Erase = false
		cmd.Color = colors.New(colornames.White)
	}
	cmd.Execute()
	if p.erase {
		p.drawFootprint(e.Pos)
	}
}

func (p *Pencil) OnMouseOut(e MouseEvent) {
	p.OnMouseUp(e)
	if p.erase {
		p.clearPreview()
	}
}

func (p *Pencil) OnMouseEnter(e MouseEvent) {
	if e.Left {
		p.mouseDown = true
	}
}

func (p *Pencil) OnActivate() {
	p.Base.OnActivate()
	p.path = nil
}

func (p *Pencil) command(l *surface.Layer) *PathCommand {
	pts := make([]geom.Vec2, len(p.path))
	copy(pts, p.path)
	return &PathCommand{
		Layer:     l,
		Points:    pts,
		Color:     p.env.Colors.Primary(),
		Thickness: p.thickness,
		Erase:     p.erase,
	}
}

// drawFootprint outlines the square the eraser covers.
func (p *Pencil) drawFootprint(at geom.Vec2) {
	h := p.thickness / 2
	p.surface().Preview.Draw(func(dc *gg.Context) error {
		dc.DrawRectangle(at.X-h, at.Y-h, p.thickness, p.thickness)
		dc.SetColor(colornames.White)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		dc.SetColor(colornames.Black)
		return dc.Stroke()
	})
}
