// Package tool implements the drawing tools, the commands they record for
// undo and the registry that routes input to the current tool.
package tool

import (
	"fmt"
	"image"
	"strings"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/history"
	"github.com/example/pixelpad/internal/surface"
	"golang.org/x/mobile/event/key"
)

// Kind identifies a tool.
type Kind int

const (
	KindPencil Kind = iota
	KindEraser
	KindLine
	KindRectangle
	KindEllipse
	KindPolygon
	KindRectSelection
	KindEllipseSelection
	KindLasso
	KindText
	KindStamp
	KindSpray
	KindGrid
	KindEyedropper
	KindFill
	kindCount
)

var kindNames = [...]string{
	KindPencil:           "pencil",
	KindEraser:           "eraser",
	KindLine:             "line",
	KindRectangle:        "rectangle",
	KindEllipse:          "ellipse",
	KindPolygon:          "polygon",
	KindRectSelection:    "select-rect",
	KindEllipseSelection: "select-ellipse",
	KindLasso:            "lasso",
	KindText:             "text",
	KindStamp:            "stamp",
	KindSpray:            "spray",
	KindGrid:             "grid",
	KindEyedropper:       "eyedropper",
	KindFill:             "fill",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists every tool in toolbar order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind resolves a tool name as written in config files and scripts.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}

// Tool reacts to pointer and keyboard input.
type Tool interface {
	Kind() Kind
	Name() string
	OnMouseDown(e MouseEvent)
	OnMouseUp(e MouseEvent)
	OnMouseMove(e MouseEvent)
	OnMouseOut(e MouseEvent)
	OnMouseEnter(e MouseEvent)
	OnKeyDown(e key.Event)
	OnKeyUp(e key.Event)
	// OnActivate resets interaction state when the tool becomes current.
	OnActivate()
}

// DrawingTool is a tool with an adjustable stroke width.
type DrawingTool interface {
	Tool
	Thickness() float64
	SetThickness(t float64)
}

// ImageWriter receives copied selections.
type ImageWriter interface {
	WriteImage(img image.Image) error
}

// GridSettings is shared by the grid tool and the selection magnet.
type GridSettings struct {
	Size    int
	Opacity float64
	Visible bool
	Magnet  bool
	Anchor  Anchor
}

// Env holds the collaborators every tool works against.
type Env struct {
	Surface *surface.Surface
	History *history.Stack
	Colors  *colors.Service
	Grid    *GridSettings
	Clock   Clock
	// Post runs timer callbacks on the UI goroutine. Nil runs them inline.
	Post func(func())
}

func (env *Env) clock() Clock {
	if env.Clock == nil {
		return RealClock{}
	}
	return env.Clock
}

func (env *Env) post(f func()) {
	if env.Post == nil {
		f()
		return
	}
	env.Post(f)
}

func (env *Env) record(cmd history.Command) {
	if env.History != nil {
		env.History.AddCommand(cmd)
	}
}

func (env *Env) disableHistory() {
	if env.History != nil {
		env.History.Disable()
	}
}

func (env *Env) enableHistory() {
	if env.History != nil {
		env.History.Enable()
	}
}

func (env *Env) grid() *GridSettings {
	if env.Grid == nil {
		env.Grid = &GridSettings{Size: DefaultGridSize, Opacity: 0.5}
	}
	return env.Grid
}

// Base provides no-op handlers and the shared mouse state.
type Base struct {
	env       *Env
	kind      Kind
	name      string
	mouseDown bool
}

func newBase(env *Env, kind Kind, name string) Base {
	return Base{env: env, kind: kind, name: name}
}

func (b *Base) Kind() Kind                { return b.kind }
func (b *Base) Name() string              { return b.name }
func (b *Base) OnMouseDown(MouseEvent)    {}
func (b *Base) OnMouseUp(MouseEvent)      {}
func (b *Base) OnMouseMove(MouseEvent)    {}
func (b *Base) OnMouseOut(MouseEvent)     {}
func (b *Base) OnMouseEnter(MouseEvent)   {}
func (b *Base) OnKeyDown(key.Event)       {}
func (b *Base) OnKeyUp(key.Event)         {}
func (b *Base) OnActivate()               { b.mouseDown = false }
func (b *Base) MouseDown() bool           { return b.mouseDown }
func (b *Base) surface() *surface.Surface { return b.env.Surface }

// trackButtons drops the pressed state when the left button was released
// outside the canvas.
func (b *Base) trackButtons(e MouseEvent) {
	if !e.Left {
		b.mouseDown = false
	}
}

func (b *Base) clearPreview() { b.env.Surface.Preview.Clear() }

// Pen holds a stroke width.
type Pen struct {
	thickness float64
}

func (p *Pen) Thickness() float64 { return p.thickness }

func (p *Pen) SetThickness(t float64) {
	if t < 1 {
		t = 1
	}
	p.thickness = t
}
