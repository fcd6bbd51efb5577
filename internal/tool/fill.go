package tool

import (
	"image"
	"image/color"
	"math"

	bildpaint "github.com/anthonynsimon/bild/paint"
	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/surface"
	"golang.org/x/mobile/event/mouse"
)

// DefaultFillTolerance is the default colour tolerance, in percent.
const DefaultFillTolerance = 10

// FillCommand replays a flood fill from its seed point.
type FillCommand struct {
	Layer *surface.Layer
	Seed  image.Point
	Color colors.Color
	// Tolerance is 0..100.
	Tolerance float64
	// Global replaces every matching pixel instead of the connected area.
	Global bool
}

func (c *FillCommand) Execute() {
	if !c.Seed.In(c.Layer.Bounds()) {
		return
	}
	img := c.Layer.Image()
	// the background is white, so transparent pixels match as white
	onWhite(img)
	if c.Global {
		replaceColor(img, c.Seed, c.Color.RGBA(), c.threshold())
	} else {
		img = bildpaint.FloodFill(img, c.Seed, c.Color.RGBA(), c.threshold())
	}
	c.Layer.SetImage(img)
}

func (c *FillCommand) threshold() uint8 {
	t := math.Min(math.Max(c.Tolerance, 0), 100)
	return uint8(math.Round(t * 255 / 100))
}

func onWhite(img *image.RGBA) {
	p := img.Pix
	for i := 0; i < len(p); i += 4 {
		bg := 255 - p[i+3]
		p[i] += bg
		p[i+1] += bg
		p[i+2] += bg
		p[i+3] = 255
	}
}

// replaceColor sets every pixel within t of the seed colour to c.
func replaceColor(img *image.RGBA, seed image.Point, c color.RGBA, t uint8) {
	off := img.PixOffset(seed.X, seed.Y)
	m := [4]float64{}
	for i := range m {
		m[i] = float64(img.Pix[off+i])
	}
	limit := float64(t) * float64(t)
	p := img.Pix
	for i := 0; i < len(p); i += 4 {
		var d float64
		for j := 0; j < 3; j++ {
			v := m[j] - float64(p[i+j])
			d += v * v
		}
		if d <= limit {
			p[i], p[i+1], p[i+2], p[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

// Fill is the paint bucket.
type Fill struct {
	Base
	// Tolerance is 0..100.
	Tolerance float64
}

// NewFill returns the paint bucket tool.
func NewFill(env *Env) *Fill {
	return &Fill{Base: newBase(env, KindFill, "Fill drip"), Tolerance: DefaultFillTolerance}
}

func (f *Fill) OnMouseDown(e MouseEvent) {
	if e.Button != mouse.ButtonLeft && e.Button != mouse.ButtonRight {
		return
	}
	cmd := &FillCommand{
		Layer:     f.surface().Base,
		Seed:      e.Pos.Pt(),
		Color:     f.env.Colors.Primary(),
		Tolerance: f.Tolerance,
		Global:    e.Button == mouse.ButtonRight,
	}
	if !cmd.Seed.In(cmd.Layer.Bounds()) {
		return
	}
	cmd.Execute()
	f.env.record(cmd)
}
