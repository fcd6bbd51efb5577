package tool

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/geom"
	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/mobile/event/mouse"
)

// Eyedropper zoom settings.
const (
	ZoneSize    = 11
	ZoomFactor  = 5
	zoomedSize  = ZoneSize * ZoomFactor
	zoomPadding = 4
)

// Eyedropper picks colours from the picture.
type Eyedropper struct {
	Base
}

// NewEyedropper returns the colour picker tool.
func NewEyedropper(env *Env) *Eyedropper {
	return &Eyedropper{Base: newBase(env, KindEyedropper, "Eyedropper")}
}

// Pick returns the colour at p as seen on screen, over the white
// background.
func (t *Eyedropper) Pick(p geom.Vec2) colors.Color {
	pt := p.Pt()
	c := t.surface().Base.At(pt.X, pt.Y)
	bg := 255 - c.A
	return colors.New(color.RGBA{R: c.R + bg, G: c.G + bg, B: c.B + bg, A: 255})
}

func (t *Eyedropper) OnMouseDown(e MouseEvent) {
	switch e.Button {
	case mouse.ButtonLeft:
		t.env.Colors.SetPrimary(t.Pick(e.Pos))
	case mouse.ButtonRight:
		t.env.Colors.SetSecondary(t.Pick(e.Pos))
	}
}

func (t *Eyedropper) OnMouseMove(e MouseEvent) {
	t.clearPreview()
	t.drawZoom(e.Pos)
}

func (t *Eyedropper) OnMouseOut(MouseEvent) { t.clearPreview() }

// drawZoom shows the pixels around p magnified in the top-left corner of the
// preview layer.
func (t *Eyedropper) drawZoom(p geom.Vec2) {
	pt := p.Pt()
	half := ZoneSize / 2
	zone := image.Rect(pt.X-half, pt.Y-half, pt.X+half+1, pt.Y+half+1)
	src := image.NewRGBA(image.Rect(0, 0, ZoneSize, ZoneSize))
	draw.Draw(src, src.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(src, src.Bounds(), t.surface().Base.ImageData(zone), image.Point{}, draw.Over)

	dst := image.Rect(zoomPadding, zoomPadding, zoomPadding+zoomedSize, zoomPadding+zoomedSize)
	pv := t.surface().Preview
	pv.DrawWith(func(img draw.Image) {
		xdraw.NearestNeighbor.Scale(img, dst, src, src.Bounds(), xdraw.Src, nil)
	})
	pv.Draw(func(dc *gg.Context) error {
		dc.DrawRectangle(float64(dst.Min.X), float64(dst.Min.Y), zoomedSize, zoomedSize)
		c := float64(zoomPadding + half*ZoomFactor)
		dc.DrawRectangle(c, c, ZoomFactor, ZoomFactor)
		dc.SetColor(color.Black)
		return dc.Stroke()
	})
}
