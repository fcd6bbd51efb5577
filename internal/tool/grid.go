package tool

import (
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/mobile/event/key"
)

// Grid size limits, in pixels.
const (
	DefaultGridSize = 20
	MinGridSize     = 5
	GridStep        = 5
)

// Grid draws the alignment grid used by the selection magnet.
type Grid struct {
	Base
}

// NewGrid returns the grid tool.
func NewGrid(env *Env) *Grid {
	return &Grid{Base: newBase(env, KindGrid, "Grid")}
}

// Settings returns the shared grid settings.
func (g *Grid) Settings() *GridSettings { return g.env.grid() }

// SetSize changes the cell size, never below MinGridSize.
func (g *Grid) SetSize(n int) {
	g.env.grid().Size = max(n, MinGridSize)
	g.Draw()
}

// SetOpacity changes the line opacity.
func (g *Grid) SetOpacity(v float64) {
	g.env.grid().Opacity = math.Min(math.Max(v, 0), 1)
	g.Draw()
}

// Toggle shows or hides the grid.
func (g *Grid) Toggle() {
	s := g.env.grid()
	s.Visible = !s.Visible
	g.Draw()
}

// Show makes the grid visible.
func (g *Grid) Show() {
	g.env.grid().Visible = true
	g.Draw()
}

func (g *Grid) OnKeyDown(e key.Event) {
	s := g.env.grid()
	switch e.Rune {
	case '+', '=':
		g.SetSize(s.Size + GridStep)
	case '-':
		g.SetSize(s.Size - GridStep)
	}
}

// Draw renders the grid layer from the settings.
func (g *Grid) Draw() {
	l := g.surface().Grid
	l.Clear()
	s := g.env.grid()
	if !s.Visible || s.Size < MinGridSize {
		return
	}
	w, h := float64(g.surface().Width()), float64(g.surface().Height())
	step := float64(s.Size)
	l.Draw(func(dc *gg.Context) error {
		for x := step; x < w; x += step {
			dc.MoveTo(x+0.5, 0)
			dc.LineTo(x+0.5, h)
		}
		for y := step; y < h; y += step {
			dc.MoveTo(0, y+0.5)
			dc.LineTo(w, y+0.5)
		}
		dc.SetColor(gg.RGBA{R: 0.5, G: 0.5, B: 0.5, A: s.Opacity})
		return dc.Stroke()
	})
}
