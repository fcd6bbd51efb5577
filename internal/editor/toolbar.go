package editor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/theme"
	"github.com/example/pixelpad/internal/tool"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
	// StateActive marks the current tool or the selected thickness.
	StateActive
	stateCount
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
// Only the paint goroutine draws, so the cache needs no lock.
type CacheButton struct {
	Button
	cache [stateCount]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [stateCount]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// label is a themed text button.
type label struct {
	text   string
	theme  *theme.Theme
	rect   image.Rectangle
	action func()
}

func (b *label) background(state ButtonState) color.RGBA {
	switch state {
	case StateHover:
		return b.theme.ButtonBackgroundHover
	case StatePressed:
		return b.theme.ButtonBackgroundPress
	case StateActive:
		return b.theme.ButtonActive
	}
	return b.theme.ButtonBackground
}

func (b *label) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, b.rect, &image.Uniform{b.background(state)}, image.Point{}, draw.Src)
	drawRect(dst, b.rect, b.theme.ButtonBorder, 1)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(b.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(b.rect.Min.X+4, b.rect.Min.Y+(b.rect.Dy()+10)/2)}
	d.DrawString(b.text)
}

func (b *label) Rect() image.Rectangle { return b.rect }

func (b *label) SetRect(r image.Rectangle) { b.rect = r }

func (b *label) Activate() {
	if b.action != nil {
		b.action()
	}
}

// ToolButton selects a drawing tool.
type ToolButton struct {
	label
	Kind tool.Kind
}

// ActionButton runs a named hotkey action such as undo or save.
type ActionButton struct {
	label
	Action string
}

// ThicknessButton sets the stroke width of the current drawing tool.
type ThicknessButton struct {
	label
	Width float64
	Color color.RGBA
}

func (b *ThicknessButton) Draw(dst *image.RGBA, state ButtonState) {
	b.label.Draw(dst, state)
	y := b.rect.Min.Y + b.rect.Dy()/2
	w := int(b.Width)
	r := image.Rect(b.rect.Min.X+28, y-w/2, b.rect.Max.X-4, y-w/2+max(w, 1))
	draw.Draw(dst, r, &image.Uniform{b.Color}, image.Point{}, draw.Over)
}

// Swatch picks a drawing colour. A left click sets the primary colour and a
// right click the secondary.
type Swatch struct {
	Color colors.Color
	theme *theme.Theme
	rect  image.Rectangle
	pick  func(c colors.Color, secondary bool)
}

func (s *Swatch) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, s.rect, &image.Uniform{s.Color.RGB}, image.Point{}, draw.Src)
	switch state {
	case StateHover:
		draw.Draw(dst, s.rect, &image.Uniform{color.RGBA{255, 255, 255, 80}}, image.Point{}, draw.Over)
	case StateActive:
		drawRect(dst, s.rect.Inset(1), color.White, 1)
	}
	drawRect(dst, s.rect, s.theme.SwatchBorder, 1)
}

func (s *Swatch) Rect() image.Rectangle { return s.rect }

func (s *Swatch) SetRect(r image.Rectangle) { s.rect = r }

func (s *Swatch) Activate() {
	if s.pick != nil {
		s.pick(s.Color, false)
	}
}

// ActivateSecondary handles a right click.
func (s *Swatch) ActivateSecondary() {
	if s.pick != nil {
		s.pick(s.Color, true)
	}
}

// Palette is the colour set offered by the toolbar.
func Palette() []colors.Color {
	names := []string{
		"black", "white", "gray", "silver",
		"red", "darkred", "orange", "gold",
		"yellow", "green", "darkgreen", "cyan",
		"blue", "navy", "purple", "magenta",
		"pink", "brown",
	}
	out := make([]colors.Color, 0, len(names))
	for _, n := range names {
		c, err := colors.Parse(n)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Thicknesses are the stroke widths offered for drawing tools.
var Thicknesses = []float64{1, 2, 4, 6, 8, 12}

// shortcutLabel renders the letter or digit of a single key shortcut.
func shortcutLabel(sc tool.KeyShortcut) string {
	if sc.Modifiers != 0 {
		return ""
	}
	return codeLabel(sc.Code)
}

func codeLabel(c key.Code) string {
	switch {
	case c >= key.CodeA && c <= key.CodeZ:
		return string(rune('A' + c - key.CodeA))
	case c >= key.Code1 && c <= key.Code9:
		return string(rune('1' + c - key.Code1))
	case c == key.Code0:
		return "0"
	}
	return ""
}

func toolLabel(k tool.Kind, shortcut string) string {
	if shortcut == "" {
		return k.String()
	}
	return fmt.Sprintf("%s:%s", shortcut, k)
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	u := &image.Uniform{col}
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thick), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-thick, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thick, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Max.X-thick, rect.Min.Y, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
}
