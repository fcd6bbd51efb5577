package export

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
)

// Shadow configures the drop shadow drawn under an exported drawing.
type Shadow struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadow is a soft shadow below and to the right of the page.
func DefaultShadow() Shadow {
	return Shadow{Radius: 12, Offset: image.Pt(8, 8), Opacity: 0.5}
}

// DropShadow composites img over a blurred silhouette of itself on a
// transparent canvas large enough for both. The canvas origin is zero; the
// returned point is where the top-left of img landed.
func DropShadow(img image.Image, s Shadow) (*image.RGBA, image.Point) {
	src := img.Bounds()
	if src.Empty() || s.Opacity <= 0 {
		out := image.NewRGBA(src.Sub(src.Min))
		draw.Draw(out, out.Bounds(), img, src.Min, draw.Src)
		return out, image.Point{}
	}
	radius := max(s.Radius, 0)
	opacity := min(s.Opacity, 1)

	shadow := src.Inset(-radius).Add(s.Offset)
	canvas := src.Union(shadow)
	shift := src.Min.Sub(canvas.Min)

	sil := image.NewRGBA(canvas.Sub(canvas.Min))
	tint := image.NewUniform(color.RGBA{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(sil, src.Sub(canvas.Min).Add(s.Offset), tint, image.Point{}, img, src.Min, draw.Over)

	out := blur.Box(sil, float64(radius))
	draw.Draw(out, src.Sub(canvas.Min), img, src.Min, draw.Over)
	return out, shift
}

// onWhite flattens img over an opaque white background.
func onWhite(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b.Sub(b.Min))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}
