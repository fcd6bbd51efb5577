package editor

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"

	"github.com/example/pixelpad/internal/theme"
	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

type buttonFrame struct {
	button *CacheButton
	state  ButtonState
}

// paintState is everything the paint goroutine needs, copied off the UI
// goroutine.
type paintState struct {
	width, height int
	theme         *theme.Theme
	canvas        *image.RGBA
	canvasRect    image.Rectangle
	toolbarWidth  int
	buttons       []buttonFrame
	previews      image.Rectangle
	primary       color.RGBA
	secondary     color.RGBA
	status        string
	message       string
}

// frame captures the session for one repaint of a window of the given size.
func (s *Session) frame(width, height int) paintState {
	st := paintState{
		width:        width,
		height:       height,
		theme:        s.theme,
		canvas:       s.surface.Composite(),
		canvasRect:   s.CanvasRect(),
		toolbarWidth: s.toolbarWidth,
		previews:     s.previews,
		primary:      s.colors.Primary().RGB,
		secondary:    s.colors.Secondary().RGB,
		status:       s.Status(),
		message:      s.Message(),
	}
	for _, b := range s.buttons {
		if s.visible(b) {
			st.buttons = append(st.buttons, buttonFrame{button: b, state: s.state(b)})
		}
	}
	return st
}

// render draws st into dst. It returns false when ctx was canceled part way.
func render(ctx context.Context, dst *image.RGBA, st paintState) bool {
	t := st.theme
	b := dst.Bounds()
	draw.Draw(dst, b, &image.Uniform{t.Background}, image.Point{}, draw.Src)
	toolbar := image.Rect(0, 0, st.toolbarWidth, b.Max.Y-statusHeight)
	draw.Draw(dst, toolbar, &image.Uniform{t.ToolbarBackground}, image.Point{}, draw.Src)

	xdraw.NearestNeighbor.Scale(dst, st.canvasRect, st.canvas, st.canvas.Bounds(), draw.Src, nil)
	drawRect(dst, st.canvasRect.Inset(-1), t.CanvasBorder, 1)
	if ctx.Err() != nil {
		return false
	}

	for _, bf := range st.buttons {
		bf.button.Draw(dst, bf.state)
	}
	if !st.previews.Empty() {
		half := st.previews.Dx() / 2
		p := image.Rect(st.previews.Min.X, st.previews.Min.Y, st.previews.Min.X+half-2, st.previews.Max.Y)
		q := image.Rect(st.previews.Min.X+half+2, st.previews.Min.Y, st.previews.Max.X, st.previews.Max.Y)
		draw.Draw(dst, p, &image.Uniform{st.primary}, image.Point{}, draw.Src)
		draw.Draw(dst, q, &image.Uniform{st.secondary}, image.Point{}, draw.Src)
		drawRect(dst, p, t.SwatchBorder, 1)
		drawRect(dst, q, t.SwatchBorder, 1)
	}
	if ctx.Err() != nil {
		return false
	}

	bar := image.Rect(0, b.Max.Y-statusHeight, b.Max.X, b.Max.Y)
	draw.Draw(dst, bar, &image.Uniform{t.ToolbarBackground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(t.StatusText), Face: basicfont.Face7x13,
		Dot: fixed.P(4, bar.Min.Y+16)}
	d.DrawString(st.status)
	if st.message != "" {
		d.Src = image.NewUniform(t.Foreground)
		w := d.MeasureString(st.message).Ceil()
		d.Dot = fixed.P(max(bar.Max.X-w-4, d.Dot.X.Ceil()+16), bar.Min.Y+16)
		d.DrawString(st.message)
	}
	return ctx.Err() == nil
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	if !render(ctx, b.RGBA(), st) {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
