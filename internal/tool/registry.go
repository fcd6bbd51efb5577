package tool

import (
	"image"
	"math/rand/v2"

	"golang.org/x/mobile/event/key"
)

// Registry owns every tool, tracks the current one and routes input to it.
type Registry struct {
	env     *Env
	tools   [kindCount]Tool
	current Tool

	lastSelection Kind
	clip          image.Image
	clipboard     ImageWriter

	subs   map[int]func(Tool)
	nextID int
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	rnd       *rand.Rand
	clipboard ImageWriter
}

// WithRand seeds the spray can.
func WithRand(rnd *rand.Rand) RegistryOption {
	return func(o *registryOptions) { o.rnd = rnd }
}

// WithClipboard mirrors copied selections to w.
func WithClipboard(w ImageWriter) RegistryOption {
	return func(o *registryOptions) { o.clipboard = w }
}

// NewRegistry builds every tool against env. The pencil is current.
func NewRegistry(env *Env, opts ...RegistryOption) *Registry {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}
	r := &Registry{env: env, clipboard: o.clipboard, lastSelection: KindRectSelection, subs: map[int]func(Tool){}}
	r.tools = [kindCount]Tool{
		KindPencil:           NewPencil(env),
		KindEraser:           NewEraser(env),
		KindLine:             NewLine(env),
		KindRectangle:        NewRectangle(env),
		KindEllipse:          NewEllipse(env),
		KindPolygon:          NewPolygon(env),
		KindRectSelection:    NewRectSelection(env),
		KindEllipseSelection: NewEllipseSelection(env),
		KindLasso:            NewLasso(env),
		KindText:             NewText(env),
		KindStamp:            NewStamp(env),
		KindSpray:            NewSpray(env, o.rnd),
		KindGrid:             NewGrid(env),
		KindEyedropper:       NewEyedropper(env),
		KindFill:             NewFill(env),
	}
	r.current = r.tools[KindPencil]
	return r
}

// Env returns the shared tool environment.
func (r *Registry) Env() *Env { return r.env }

// Current returns the active tool.
func (r *Registry) Current() Tool { return r.current }

// Tool returns the tool of kind k.
func (r *Registry) Tool(k Kind) Tool {
	if k < 0 || k >= kindCount {
		return nil
	}
	return r.tools[k]
}

func (r *Registry) Line() *Line   { return r.tools[KindLine].(*Line) }
func (r *Registry) Text() *Text   { return r.tools[KindText].(*Text) }
func (r *Registry) Stamp() *Stamp { return r.tools[KindStamp].(*Stamp) }
func (r *Registry) Grid() *Grid   { return r.tools[KindGrid].(*Grid) }
func (r *Registry) Spray() *Spray { return r.tools[KindSpray].(*Spray) }
func (r *Registry) Fill() *Fill   { return r.tools[KindFill].(*Fill) }

// Shape returns the shape tool of kind k, or nil.
func (r *Registry) Shape(k Kind) *Shape {
	s, _ := r.Tool(k).(*Shape)
	return s
}

// Selection returns the selection tool of kind k, or nil.
func (r *Registry) Selection(k Kind) *Selection {
	s, _ := r.Tool(k).(*Selection)
	return s
}

// Selections returns the selection tools.
func (r *Registry) Selections() []*Selection {
	return []*Selection{
		r.Selection(KindRectSelection),
		r.Selection(KindEllipseSelection),
		r.Selection(KindLasso),
	}
}

// DrawingTools returns every tool with an adjustable thickness.
func (r *Registry) DrawingTools() []DrawingTool {
	var out []DrawingTool
	for _, t := range r.tools {
		if d, ok := t.(DrawingTool); ok {
			out = append(out, d)
		}
	}
	return out
}

// Subscribe registers fn to be called after every tool change.
func (r *Registry) Subscribe(fn func(Tool)) (cancel func()) {
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	return func() { delete(r.subs, id) }
}

func isSelection(k Kind) bool {
	return k == KindRectSelection || k == KindEllipseSelection || k == KindLasso
}

// SetCurrent switches tools, cleaning up whatever the previous tool left in
// progress.
func (r *Registry) SetCurrent(k Kind) {
	next := r.Tool(k)
	if next == nil || next == r.current {
		return
	}
	from := r.current.Kind()
	selToGrid := isSelection(from) && k == KindGrid
	gridToSel := from == KindGrid && isSelection(k)

	for _, s := range r.Selections() {
		if selToGrid || (gridToSel && s.Kind() == k) {
			continue
		}
		s.Cancel()
	}
	r.Text().Commit()
	r.Spray().finish()
	r.Line().RemovePreview()
	r.Stamp().ClearOverlay()
	if k == KindGrid {
		r.Grid().Show()
	}
	if isSelection(from) {
		r.lastSelection = from
	}
	if !isSelection(from) && !gridToSel {
		r.env.Surface.Preview.Clear()
	}

	r.current = next
	next.OnActivate()
	for _, fn := range r.subs {
		fn(next)
	}
}

// ActiveSelection returns the current tool when it is a selection tool
// holding a selection.
func (r *Registry) ActiveSelection() *Selection {
	s, ok := r.current.(*Selection)
	if !ok || !s.Exists() {
		return nil
	}
	return s
}

func (r *Registry) MouseDown(e MouseEvent)  { r.current.OnMouseDown(e) }
func (r *Registry) MouseUp(e MouseEvent)    { r.current.OnMouseUp(e) }
func (r *Registry) MouseMove(e MouseEvent)  { r.current.OnMouseMove(e) }
func (r *Registry) MouseOut(e MouseEvent)   { r.current.OnMouseOut(e) }
func (r *Registry) MouseEnter(e MouseEvent) { r.current.OnMouseEnter(e) }
func (r *Registry) KeyDown(e key.Event)     { r.current.OnKeyDown(e) }
func (r *Registry) KeyUp(e key.Event)       { r.current.OnKeyUp(e) }

// Copy keeps the active selection for Paste and mirrors it to the system
// clipboard. The selection is kept either way; the error only reports the
// system clipboard.
func (r *Registry) Copy() error {
	s := r.ActiveSelection()
	if s == nil {
		return nil
	}
	img := s.Copy()
	r.clip = img
	if r.clipboard == nil {
		return nil
	}
	return r.clipboard.WriteImage(img)
}

// Cut copies then deletes the active selection.
func (r *Registry) Cut() error {
	s := r.ActiveSelection()
	if s == nil {
		return nil
	}
	err := r.Copy()
	s.Delete()
	return err
}

// Paste creates a selection at the origin holding the last copied pixels.
func (r *Registry) Paste() {
	if r.clip == nil {
		return
	}
	if k := r.current.Kind(); k != KindRectSelection && k != KindEllipseSelection {
		r.SetCurrent(KindRectSelection)
	}
	r.current.(*Selection).Paste(r.clip)
}

// PasteImage replaces the internal clipboard with img and pastes it.
func (r *Registry) PasteImage(img image.Image) {
	if img == nil {
		return
	}
	r.clip = img
	r.Paste()
}

// Clip returns the last copied pixels.
func (r *Registry) Clip() image.Image { return r.clip }

// Delete clears the active selection to white.
func (r *Registry) Delete() {
	if s := r.ActiveSelection(); s != nil {
		s.Delete()
	}
}

// SelectAll switches to the last used selection tool if needed and selects
// the whole canvas.
func (r *Registry) SelectAll() {
	if !isSelection(r.current.Kind()) {
		r.SetCurrent(r.lastSelection)
	}
	r.current.(*Selection).SelectAll()
}

// Undo reverts the last command.
func (r *Registry) Undo() {
	if r.env.History != nil {
		r.env.History.Undo()
	}
}

// Redo reapplies the last undone command.
func (r *Registry) Redo() {
	if r.env.History != nil {
		r.env.History.Redo()
	}
}

// Busy reports whether the text tool is capturing the keyboard.
func (r *Registry) Busy() bool {
	return r.current.Kind() == KindText && r.Text().IsWriting()
}
