package tool

import (
	"image"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/surface"
	"github.com/gogpu/gg"
)

// paint converts a colour and its opacity to a straight alpha gg colour.
func paint(c colors.Color) gg.RGBA {
	op := c.Opacity
	if op < 0 {
		op = 0
	}
	if op > 1 {
		op = 1
	}
	return gg.RGBA{
		R: float64(c.RGB.R) / 255,
		G: float64(c.RGB.G) / 255,
		B: float64(c.RGB.B) / 255,
		A: op,
	}
}

// BaselineCommand restores a full canvas image. It is always the first entry
// of the history.
type BaselineCommand struct {
	Layer *surface.Layer
	Image image.Image
}

// NewBaselineCommand captures the current content of l.
func NewBaselineCommand(l *surface.Layer) *BaselineCommand {
	return &BaselineCommand{Layer: l, Image: l.Image()}
}

func (c *BaselineCommand) Execute() {
	c.Layer.SetImage(c.Image)
}
