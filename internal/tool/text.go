package tool

import (
	"image"
	"image/draw"
	"strings"
	"sync"
	"unicode"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/geom"
	"github.com/example/pixelpad/internal/surface"
	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
)

// DefaultTextSize is the default font size in pixels.
const DefaultTextSize = 16

var (
	faceMu    sync.Mutex
	faceCache = map[float64]font.Face{}
	regular   *opentype.Font
)

// faceFor returns Go Regular at size, falling back to the basic bitmap face
// if the embedded font cannot be parsed.
func faceFor(size float64) font.Face {
	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faceCache[size]; ok {
		return f
	}
	var face font.Face = basicfont.Face7x13
	if regular == nil {
		regular, _ = opentype.Parse(goregular.TTF)
	}
	if regular != nil {
		f, err := opentype.NewFace(regular, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err == nil {
			face = f
		}
	}
	faceCache[size] = face
	return face
}

// TextCommand replays a committed text box.
type TextCommand struct {
	Layer *surface.Layer
	Pos   geom.Vec2
	Lines []string
	Color colors.Color
	Size  float64
}

func (c *TextCommand) Execute() {
	face := faceFor(c.Size)
	m := face.Metrics()
	c.Layer.DrawWith(func(dst draw.Image) {
		d := font.Drawer{Dst: dst, Src: image.NewUniform(c.Color.RGBA()), Face: face}
		for i, line := range c.Lines {
			d.Dot = fixed.P(int(c.Pos.X), int(c.Pos.Y))
			d.Dot.Y += m.Ascent + m.Height*fixed.Int26_6(i)
			d.DrawString(line)
		}
	})
}

// textBounds returns the box the lines occupy when drawn at pos.
func textBounds(pos geom.Vec2, lines []string, size float64) geom.Rect {
	face := faceFor(size)
	m := face.Metrics()
	w := 0
	for _, l := range lines {
		w = max(w, font.MeasureString(face, l).Ceil())
	}
	h := (m.Height * fixed.Int26_6(max(len(lines), 1))).Ceil()
	return geom.Rect{TopLeft: pos, BottomRight: pos.Add(geom.V(float64(max(w, int(size/2))), float64(h)))}
}

// Text types into an editing box and stamps it on the picture.
type Text struct {
	Base
	Size float64

	writing bool
	pos     geom.Vec2
	lines   [][]rune
	line    int
	col     int
}

// NewText returns the text tool.
func NewText(env *Env) *Text {
	return &Text{Base: newBase(env, KindText, "Text"), Size: DefaultTextSize}
}

// IsWriting reports whether a text box is open.
func (t *Text) IsWriting() bool { return t.writing }

// Text returns the content of the open box.
func (t *Text) Text() string { return strings.Join(t.strings(), "\n") }

// Caret returns the line and column of the caret.
func (t *Text) Caret() (line, col int) { return t.line, t.col }

func (t *Text) strings() []string {
	out := make([]string, len(t.lines))
	for i, l := range t.lines {
		out[i] = string(l)
	}
	return out
}

func (t *Text) OnMouseDown(e MouseEvent) {
	if !e.IsLeft() {
		return
	}
	if t.writing {
		t.Commit()
	}
	t.writing = true
	t.pos = e.Pos
	t.lines = [][]rune{nil}
	t.line, t.col = 0, 0
	t.drawPreview()
}

func (t *Text) OnKeyDown(e key.Event) {
	if !t.writing {
		return
	}
	switch e.Code {
	case key.CodeEscape:
		t.Cancel()
		return
	case key.CodeReturnEnter:
		cur := t.lines[t.line]
		rest := append([]rune(nil), cur[t.col:]...)
		t.lines[t.line] = cur[:t.col]
		t.lines = append(t.lines[:t.line+1], append([][]rune{rest}, t.lines[t.line+1:]...)...)
		t.line++
		t.col = 0
	case key.CodeDeleteBackspace:
		t.backspace()
	case key.CodeLeftArrow:
		t.col = max(t.col-1, 0)
	case key.CodeRightArrow:
		t.col = min(t.col+1, len(t.lines[t.line]))
	case key.CodeUpArrow:
		t.line = max(t.line-1, 0)
		t.col = min(t.col, len(t.lines[t.line]))
	case key.CodeDownArrow:
		t.line = min(t.line+1, len(t.lines)-1)
		t.col = min(t.col, len(t.lines[t.line]))
	default:
		if e.Modifiers&key.ModControl != 0 || e.Rune < 0 || !unicode.IsPrint(e.Rune) {
			return
		}
		cur := t.lines[t.line]
		cur = append(cur[:t.col], append([]rune{e.Rune}, cur[t.col:]...)...)
		t.lines[t.line] = cur
		t.col++
	}
	t.drawPreview()
}

func (t *Text) backspace() {
	if t.col > 0 {
		cur := t.lines[t.line]
		t.lines[t.line] = append(cur[:t.col-1], cur[t.col:]...)
		t.col--
		return
	}
	if t.line == 0 {
		return
	}
	prev := t.lines[t.line-1]
	t.col = len(prev)
	t.lines[t.line-1] = append(prev, t.lines[t.line]...)
	t.lines = append(t.lines[:t.line], t.lines[t.line+1:]...)
	t.line--
}

// Commit draws the open box on the picture and records it. Empty boxes are
// dropped.
func (t *Text) Commit() {
	if !t.writing {
		return
	}
	lines := t.strings()
	t.close()
	if strings.TrimSpace(strings.Join(lines, "")) == "" {
		return
	}
	cmd := &TextCommand{Layer: t.surface().Base, Pos: t.pos, Lines: lines, Color: t.env.Colors.Primary(), Size: t.Size}
	cmd.Execute()
	t.env.record(cmd)
}

// Cancel closes the box without drawing it.
func (t *Text) Cancel() { t.close() }

func (t *Text) close() {
	t.writing = false
	t.lines = nil
	t.line, t.col = 0, 0
	t.clearPreview()
}

func (t *Text) drawPreview() {
	t.clearPreview()
	lines := t.strings()
	pv := t.surface().Preview
	(&TextCommand{Layer: pv, Pos: t.pos, Lines: lines, Color: t.env.Colors.Primary(), Size: t.Size}).Execute()
	box := textBounds(t.pos, lines, t.Size)
	surface.DashedRect(pv, geom.Rect{TopLeft: box.TopLeft.Sub(geom.V(2, 2)), BottomRight: box.BottomRight.Add(geom.V(2, 2))})

	face := faceFor(t.Size)
	m := face.Metrics()
	x := t.pos.X + float64(font.MeasureString(face, string(t.lines[t.line][:t.col])).Ceil())
	y := t.pos.Y + float64((m.Height * fixed.Int26_6(t.line)).Ceil())
	h := float64(m.Height.Ceil())
	pv.Draw(func(dc *gg.Context) error {
		dc.MoveTo(x, y)
		dc.LineTo(x, y+h)
		return dc.Stroke()
	})
}
