// Package surface provides the drawing layers the tools paint on. Every
// layer is a gg context over its own pixmap; the base layer holds the
// picture, the preview layer holds in-progress feedback and the grid layer
// holds the optional grid overlay.
package surface

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/clone"
	"github.com/gogpu/gg"
)

// Layer is one full-canvas raster plane.
type Layer struct {
	s       *Surface
	name    string
	pm      *gg.Pixmap
	dc      *gg.Context
	mask    *gg.Pixmap
	maskCtx *gg.Context
}

// Surface groups the layers of one canvas.
type Surface struct {
	Base    *Layer
	Preview *Layer
	Grid    *Layer

	width, height int
	err           error
}

// New allocates a transparent surface of the given size.
func New(width, height int) *Surface {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s := &Surface{width: width, height: height}
	s.Base = s.newLayer("base")
	s.Preview = s.newLayer("preview")
	s.Grid = s.newLayer("grid")
	return s
}

func (s *Surface) newLayer(name string) *Layer {
	pm := gg.NewPixmap(s.width, s.height)
	return &Layer{s: s, name: name, pm: pm, dc: gg.NewContextForPixmap(pm)}
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// Bounds returns the canvas rectangle.
func (s *Surface) Bounds() image.Rectangle { return image.Rect(0, 0, s.width, s.height) }

// IsBase reports whether l is the base layer.
func (s *Surface) IsBase(l *Layer) bool { return l != nil && l == s.Base }

// Err returns the last renderer error and resets it.
func (s *Surface) Err() error {
	err := s.err
	s.err = nil
	return err
}

// Report keeps err for the next Err call. A nil err is ignored.
func (s *Surface) Report(err error) {
	if err != nil {
		s.err = err
	}
}

// Composite flattens base, preview and grid over a white background.
func (s *Surface) Composite() *image.RGBA {
	out := s.Flatten()
	for _, l := range []*Layer{s.Preview, s.Grid} {
		draw.Draw(out, out.Bounds(), l.view(), image.Point{}, draw.Over)
	}
	return out
}

// Flatten returns the base layer over a white background.
func (s *Surface) Flatten() *image.RGBA {
	out := image.NewRGBA(s.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), s.Base.view(), image.Point{}, draw.Over)
	return out
}

// Name identifies the layer in logs.
func (l *Layer) Name() string { return l.name }

// Bounds returns the layer rectangle.
func (l *Layer) Bounds() image.Rectangle { return l.s.Bounds() }

// Draw runs fn against the layer context. Graphics state changes made by fn
// do not leak into the next call.
func (l *Layer) Draw(fn func(dc *gg.Context) error) {
	l.dc.Push()
	resetPaint(l.dc)
	err := fn(l.dc)
	l.dc.ClearPath()
	l.dc.Pop()
	_ = l.dc.FlushGPU()
	l.s.Report(err)
}

// resetPaint restores the default pen. The stroke is always set as a whole
// since a stroke with a dash ignores SetLineWidth.
func resetPaint(dc *gg.Context) {
	dc.ClearPath()
	dc.SetStroke(gg.DefaultStroke())
	dc.SetFillRule(gg.FillRuleNonZero)
	dc.SetColor(color.Black)
}

// Erase makes transparent every pixel fn covers, weighted by coverage.
func (l *Layer) Erase(fn func(dc *gg.Context) error) {
	if l.mask == nil {
		l.mask = gg.NewPixmap(l.pm.Width(), l.pm.Height())
		l.maskCtx = gg.NewContextForPixmap(l.mask)
	}
	l.maskCtx.Clear()
	l.maskCtx.Push()
	resetPaint(l.maskCtx)
	err := fn(l.maskCtx)
	l.maskCtx.ClearPath()
	l.maskCtx.Pop()
	_ = l.maskCtx.FlushGPU()
	l.s.Report(err)

	md := l.mask.Data()
	d := l.pm.Data()
	for i := 3; i < len(d); i += 4 {
		a := uint32(md[i])
		if a == 0 {
			continue
		}
		keep := 255 - a
		for j := i - 3; j <= i; j++ {
			d[j] = uint8(uint32(d[j]) * keep / 255)
		}
	}
	l.pm.NotifyPixelsChanged()
}

// Clear makes the whole layer transparent.
func (l *Layer) Clear() {
	l.pm.Clear(gg.Transparent)
	l.pm.NotifyPixelsChanged()
}

// Fill paints the whole layer with c.
func (l *Layer) Fill(c color.Color) {
	l.pm.Clear(gg.FromColor(c))
	l.pm.NotifyPixelsChanged()
}

// view exposes the pixmap memory as an image.RGBA. Both store
// premultiplied RGBA in the same layout.
func (l *Layer) view() *image.RGBA {
	return &image.RGBA{
		Pix:    l.pm.Data(),
		Stride: l.pm.Width() * 4,
		Rect:   image.Rect(0, 0, l.pm.Width(), l.pm.Height()),
	}
}

// Image returns a copy of the layer pixels.
func (l *Layer) Image() *image.RGBA {
	return clone.AsRGBA(l.view())
}

// ImageData copies rect out of the layer. The result is anchored at the
// origin and areas outside the canvas are transparent.
func (l *Layer) ImageData(rect image.Rectangle) *image.RGBA {
	rect = rect.Canon()
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	src := rect.Intersect(l.Bounds())
	if !src.Empty() {
		draw.Draw(out, src.Sub(rect.Min), l.view(), src.Min, draw.Src)
	}
	return out
}

// PutImageData replaces the pixels at `at` with img, without blending.
func (l *Layer) PutImageData(img image.Image, at image.Point) {
	if img == nil {
		return
	}
	b := img.Bounds()
	draw.Draw(l.view(), b.Sub(b.Min).Add(at), img, b.Min, draw.Src)
	l.pm.NotifyPixelsChanged()
}

// DrawImage composites img over the layer at `at`.
func (l *Layer) DrawImage(img image.Image, at image.Point) {
	if img == nil {
		return
	}
	b := img.Bounds()
	draw.Draw(l.view(), b.Sub(b.Min).Add(at), img, b.Min, draw.Over)
	l.pm.NotifyPixelsChanged()
}

// DrawWith hands fn a draw.Image over the layer pixels, for code that
// renders with image/draw based libraries such as x/image/font.
func (l *Layer) DrawWith(fn func(dst draw.Image)) {
	fn(l.view())
	l.pm.NotifyPixelsChanged()
}

// SetImage replaces the layer content with img anchored at the origin.
func (l *Layer) SetImage(img image.Image) {
	l.pm.Clear(gg.Transparent)
	if img != nil {
		draw.Draw(l.view(), l.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	l.pm.NotifyPixelsChanged()
}

// At returns the premultiplied pixel at x, y.
func (l *Layer) At(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(l.Bounds()) {
		return color.RGBA{}
	}
	return l.view().RGBAAt(x, y)
}
