package tool

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/example/pixelpad/internal/geom"
	"github.com/example/pixelpad/internal/surface"
	"github.com/gogpu/gg"
	"golang.org/x/mobile/event/key"
)

const (
	// SelectionOffset widens the selection hit area.
	SelectionOffset = 13
	// ArrowDelta is how far one arrow step moves a selection.
	ArrowDelta = 3
	// ArrowDelay is how long an arrow key must be held before it repeats.
	ArrowDelay = 500 * time.Millisecond
	// ArrowInterval is the repeat period of a held arrow key.
	ArrowInterval = 100 * time.Millisecond
)

// Control point sentinels, alongside the surface.Handle indices.
const (
	NoPoint = -1
	Center  = 8
)

// Mask is the shape a selection lifts.
type Mask int

const (
	MaskRectangle Mask = iota
	MaskEllipse
	MaskLasso
)

// SelectionMode is the interaction a selection tool is in.
type SelectionMode int

const (
	ModeIdle SelectionMode = iota
	ModeDragging
	ModeMoving
	ModeResizing
)

// SelectionCoords holds the rectangle the pixels were lifted from and the
// rectangle they are currently shown in. While dragging, Initial holds the
// raw drag corners.
type SelectionCoords struct {
	InitialTopLeft, InitialBottomRight geom.Vec2
	FinalTopLeft, FinalBottomRight     geom.Vec2
}

// Initial returns the normalised source rectangle.
func (c SelectionCoords) Initial() geom.Rect {
	return geom.NormalizeRect(c.InitialTopLeft, c.InitialBottomRight)
}

// Final returns the destination rectangle.
func (c SelectionCoords) Final() geom.Rect {
	return geom.NormalizeRect(c.FinalTopLeft, c.FinalBottomRight)
}

// outline describes a selection shape independently of where it is shown.
type selectionOutline struct {
	mask Mask
	// points is the lasso polygon in the coordinates of from.
	points []geom.Vec2
	from   geom.Rect
}

// trace adds the outline, fitted into r, to the current path.
func (o selectionOutline) trace(dc *gg.Context, r geom.Rect) {
	switch o.mask {
	case MaskEllipse:
		c := r.Center()
		dc.DrawEllipse(c.X, c.Y, r.Width()/2, r.Height()/2)
	case MaskLasso:
		if len(o.points) < 3 || o.from.Empty() {
			dc.DrawRectangle(r.TopLeft.X, r.TopLeft.Y, r.Width(), r.Height())
			return
		}
		sx, sy := r.Width()/o.from.Width(), r.Height()/o.from.Height()
		for i, p := range o.points {
			x := r.TopLeft.X + (p.X-o.from.TopLeft.X)*sx
			y := r.TopLeft.Y + (p.Y-o.from.TopLeft.Y)*sy
			if i == 0 {
				dc.MoveTo(x, y)
				continue
			}
			dc.LineTo(x, y)
		}
		dc.ClosePath()
	default:
		dc.DrawRectangle(r.TopLeft.X, r.TopLeft.Y, r.Width(), r.Height())
	}
}

// whiten paints the outline at r with the background colour.
func (o selectionOutline) whiten(l *surface.Layer, r geom.Rect) {
	if r.Empty() {
		return
	}
	l.Draw(func(dc *gg.Context) error {
		o.trace(dc, r)
		dc.SetColor(color.White)
		return dc.Fill()
	})
}

// clip keeps only the pixels of img, which covers r, that fall inside the
// outline.
func (o selectionOutline) clip(img *image.RGBA, r geom.Rect) error {
	if o.mask == MaskRectangle {
		return nil
	}
	b := img.Bounds()
	pm := gg.NewPixmap(b.Dx(), b.Dy())
	dc := gg.NewContextForPixmap(pm)
	defer dc.Close()
	dc.Translate(-r.TopLeft.X, -r.TopLeft.Y)
	o.trace(dc, r)
	dc.SetColor(color.Black)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("clip selection: %w", err)
	}
	if err := dc.FlushGPU(); err != nil {
		return fmt.Errorf("clip selection: %w", err)
	}
	md := pm.Data()
	for i := 3; i < len(md) && i < len(img.Pix); i += 4 {
		a := uint32(md[i])
		if a == 255 {
			continue
		}
		for j := i - 3; j <= i; j++ {
			img.Pix[j] = uint8(uint32(img.Pix[j]) * a / 255)
		}
	}
	return nil
}

// SelectionCommand replays a moved, resized, pasted or deleted selection.
type SelectionCommand struct {
	Layer   *surface.Layer
	Initial geom.Rect
	Final   geom.Rect
	// Data is already scaled to Final.
	Data    *image.RGBA
	outline selectionOutline
}

func (c *SelectionCommand) Execute() {
	c.outline.whiten(c.Layer, c.Initial)
	c.Layer.DrawImage(c.Data, c.Final.TopLeft.Pt())
}

// Selection lifts a region of the base layer so it can be moved, resized,
// copied or deleted. The rectangle, ellipse and lasso tools differ only by
// their mask.
type Selection struct {
	Base
	mask Mask

	mode    SelectionMode
	exists  bool
	coords  SelectionCoords
	outline selectionOutline
	lasso   []geom.Vec2
	data    *image.RGBA
	backup  *image.RGBA
	dirty   bool

	offset         geom.Vec2
	handle         int
	shiftDown      bool
	lastDimensions geom.Vec2

	arrows     map[key.Code]bool
	arrowDelay Timer
	arrowRep   *repeater
}

func newSelection(env *Env, kind Kind, name string, m Mask) *Selection {
	return &Selection{Base: newBase(env, kind, name), mask: m, handle: NoPoint, arrows: map[key.Code]bool{}}
}

// NewRectSelection returns the rectangle selection tool.
func NewRectSelection(env *Env) *Selection {
	return newSelection(env, KindRectSelection, "Rectangle selection", MaskRectangle)
}

// NewEllipseSelection returns the ellipse selection tool.
func NewEllipseSelection(env *Env) *Selection {
	return newSelection(env, KindEllipseSelection, "Ellipse selection", MaskEllipse)
}

// NewLasso returns the freehand selection tool.
func NewLasso(env *Env) *Selection {
	return newSelection(env, KindLasso, "Lasso", MaskLasso)
}

// Exists reports whether a selection is active.
func (s *Selection) Exists() bool { return s.exists }

// Mode returns the current interaction.
func (s *Selection) Mode() SelectionMode { return s.mode }

// Coords returns the current selection rectangles.
func (s *Selection) Coords() SelectionCoords { return s.coords }

// Data returns the lifted pixels, or nil when nothing is selected.
func (s *Selection) Data() *image.RGBA { return s.data }

func (s *Selection) clamp(p geom.Vec2) geom.Vec2 {
	return geom.Clamp(p, float64(s.surface().Width()), float64(s.surface().Height()))
}

func (s *Selection) OnMouseDown(e MouseEvent) {
	if !e.IsLeft() {
		return
	}
	s.mouseDown = true
	pos := e.Pos
	if s.exists && s.coords.Final().Contains(pos, -SelectionOffset) {
		if h := s.ControlPointAt(pos); h != NoPoint && h != Center {
			s.mode = ModeResizing
			s.handle = h
			s.lastDimensions = s.coords.Final().Size()
			return
		}
		s.mode = ModeMoving
		s.offset = pos.Sub(s.coords.FinalTopLeft)
		return
	}
	s.Cancel()
	s.mouseDown = true
	s.env.disableHistory()
	s.mode = ModeDragging
	pos = s.clamp(pos)
	s.coords = SelectionCoords{
		InitialTopLeft: pos, InitialBottomRight: pos,
		FinalTopLeft: pos, FinalBottomRight: pos,
	}
	s.lasso = []geom.Vec2{pos}
}

func (s *Selection) OnMouseMove(e MouseEvent) {
	s.trackButtons(e)
	if !s.mouseDown {
		return
	}
	switch s.mode {
	case ModeDragging:
		pos := s.clamp(e.Pos)
		s.coords.InitialBottomRight = pos
		r := s.coords.Initial()
		s.coords.FinalTopLeft, s.coords.FinalBottomRight = r.TopLeft, r.BottomRight
		if s.mask == MaskLasso {
			s.lasso = append(s.lasso, pos)
		}
		s.drawDragPreview()
	case ModeMoving:
		s.moveTo(e.Pos.Sub(s.offset), s.env.grid().Magnet)
		s.Redraw()
	case ModeResizing:
		s.resize(e.Pos)
		s.Redraw()
	}
}

func (s *Selection) OnMouseUp(e MouseEvent) {
	if !s.mouseDown || !e.IsLeft() {
		return
	}
	s.mouseDown = false
	switch s.mode {
	case ModeDragging:
		s.finishDrag(e.Pos)
	case ModeMoving, ModeResizing:
		s.mode = ModeIdle
		s.handle = NoPoint
		s.Redraw()
	}
}

func (s *Selection) OnKeyDown(e key.Event) {
	switch {
	case isShift(e):
		s.shiftDown = true
		if s.exists {
			s.lastDimensions = s.coords.Final().Size()
		}
	case e.Code == key.CodeEscape:
		s.Cancel()
	case isArrow(e):
		s.arrowDown(e.Code)
	}
}

func (s *Selection) OnKeyUp(e key.Event) {
	switch {
	case isShift(e):
		s.shiftDown = false
	case isArrow(e):
		s.arrowUp(e.Code)
	}
}

func (s *Selection) OnActivate() {
	s.Base.OnActivate()
	s.shiftDown = false
	if !s.exists {
		s.mode = ModeIdle
	}
}

func (s *Selection) finishDrag(at geom.Vec2) {
	var r geom.Rect
	if s.mask == MaskLasso {
		s.lasso = append(s.lasso, s.clamp(at))
		r = boundingBox(s.lasso)
	} else {
		end := geom.TrueEndCoord(s.coords.InitialTopLeft, at, s.shiftDown)
		r = geom.NormalizeRect(s.coords.InitialTopLeft, s.clamp(end))
	}
	s.mode = ModeIdle
	if r.Empty() || (s.mask == MaskLasso && len(s.lasso) < 3) {
		s.reset()
		s.clearPreview()
		s.env.enableHistory()
		return
	}
	s.coords = SelectionCoords{
		InitialTopLeft: r.TopLeft, InitialBottomRight: r.BottomRight,
		FinalTopLeft: r.TopLeft, FinalBottomRight: r.BottomRight,
	}
	s.outline = selectionOutline{mask: s.mask, from: r}
	if s.mask == MaskLasso {
		s.outline.points = append([]geom.Vec2(nil), s.lasso...)
	}
	s.lift(r)
	s.Redraw()
}

// lift copies the selected pixels out of the base layer and paints the
// source area white. The whitening is not recorded.
func (s *Selection) lift(r geom.Rect) {
	base := s.surface().Base
	s.backup = base.ImageData(r.Image())
	s.data = clone.AsRGBA(s.backup)
	s.surface().Report(s.outline.clip(s.data, r))
	s.outline.whiten(base, r)
	s.exists = true
	s.dirty = false
}

func boundingBox(pts []geom.Vec2) geom.Rect {
	if len(pts) == 0 {
		return geom.Rect{}
	}
	r := geom.Rect{TopLeft: pts[0], BottomRight: pts[0]}
	for _, p := range pts[1:] {
		r.TopLeft.X = min(r.TopLeft.X, p.X)
		r.TopLeft.Y = min(r.TopLeft.Y, p.Y)
		r.BottomRight.X = max(r.BottomRight.X, p.X)
		r.BottomRight.Y = max(r.BottomRight.Y, p.Y)
	}
	return r
}

// ControlPointAt returns the handle under p, Center when p is elsewhere
// inside the selection, or NoPoint.
func (s *Selection) ControlPointAt(p geom.Vec2) int {
	if !s.exists {
		return NoPoint
	}
	f := s.coords.Final()
	for i, h := range surface.HandleRects(f) {
		if h.Contains(p, -2) {
			return i
		}
	}
	if f.Contains(p, -SelectionOffset) {
		return Center
	}
	return NoPoint
}

func (s *Selection) moveTo(topLeft geom.Vec2, magnet bool) {
	size := s.coords.Final().Size()
	if g := s.env.grid(); magnet && g.Size > 0 {
		topLeft = magnetize(topLeft, size, g.Anchor, float64(g.Size))
	}
	s.coords.FinalTopLeft = topLeft
	s.coords.FinalBottomRight = topLeft.Add(size)
}

var handleEdges = [8]struct{ left, top, right, bottom bool }{
	surface.HandleTopLeft:     {left: true, top: true},
	surface.HandleTop:         {top: true},
	surface.HandleTopRight:    {right: true, top: true},
	surface.HandleRight:       {right: true},
	surface.HandleBottomRight: {right: true, bottom: true},
	surface.HandleBottom:      {bottom: true},
	surface.HandleBottomLeft:  {left: true, bottom: true},
	surface.HandleLeft:        {left: true},
}

// resize moves the edges attached to the grabbed handle to p. Width and
// height never drop below one pixel.
func (s *Selection) resize(p geom.Vec2) {
	if s.handle < 0 || s.handle >= len(handleEdges) {
		return
	}
	ed := handleEdges[s.handle]
	r := s.coords.Final()
	if ed.left {
		r.TopLeft.X = min(p.X, r.BottomRight.X-1)
	}
	if ed.right {
		r.BottomRight.X = max(p.X, r.TopLeft.X+1)
	}
	if ed.top {
		r.TopLeft.Y = min(p.Y, r.BottomRight.Y-1)
	}
	if ed.bottom {
		r.BottomRight.Y = max(p.Y, r.TopLeft.Y+1)
	}
	corner := (ed.left || ed.right) && (ed.top || ed.bottom)
	if corner && s.shiftDown && s.lastDimensions.X > 0 && s.lastDimensions.Y > 0 {
		h := max(r.Width()*s.lastDimensions.Y/s.lastDimensions.X, 1)
		if ed.top {
			r.TopLeft.Y = r.BottomRight.Y - h
		} else {
			r.BottomRight.Y = r.TopLeft.Y + h
		}
	}
	s.coords.FinalTopLeft, s.coords.FinalBottomRight = r.TopLeft, r.BottomRight
}

// content returns the lifted pixels scaled to the final rectangle.
func (s *Selection) content() *image.RGBA {
	f := s.coords.Final().Image()
	b := s.data.Bounds()
	if f.Dx() == b.Dx() && f.Dy() == b.Dy() {
		return s.data
	}
	return transform.Resize(s.data, f.Dx(), f.Dy(), transform.Linear)
}

func (s *Selection) drawDragPreview() {
	pv := s.surface().Preview
	pv.Clear()
	r := s.coords.Initial()
	switch s.mask {
	case MaskLasso:
		if len(s.lasso) < 2 {
			return
		}
		pv.Draw(func(dc *gg.Context) error {
			dc.SetStroke(surface.DashedPen())
			dc.MoveTo(s.lasso[0].X, s.lasso[0].Y)
			for _, p := range s.lasso[1:] {
				dc.LineTo(p.X, p.Y)
			}
			return dc.Stroke()
		})
	case MaskEllipse:
		surface.DashedRect(pv, r)
		surface.DashedEllipse(pv, r)
	default:
		surface.DashedRect(pv, r)
	}
}

// Redraw renders the active selection, its perimeter and its handles on the
// preview layer.
func (s *Selection) Redraw() {
	pv := s.surface().Preview
	pv.Clear()
	if !s.exists {
		return
	}
	f := s.coords.Final()
	pv.DrawImage(s.content(), f.TopLeft.Pt())
	switch s.outline.mask {
	case MaskRectangle:
		surface.DashedRect(pv, f)
	case MaskEllipse:
		surface.DashedRect(pv, f)
		surface.DashedEllipse(pv, f)
	default:
		surface.DashedRect(pv, f)
		pv.Draw(func(dc *gg.Context) error {
			dc.SetStroke(surface.DashedPen())
			s.outline.trace(dc, f)
			return dc.Stroke()
		})
	}
	surface.DrawHandles(pv, f)
}

// Cancel writes the selection back to the base layer at its current position
// and resumes history recording. A commit is recorded only when the
// selection was moved, resized or its content changed.
func (s *Selection) Cancel() {
	s.stopArrows()
	s.env.enableHistory()
	if s.exists {
		s.commit()
	}
	s.reset()
	s.clearPreview()
}

func (s *Selection) commit() {
	base := s.surface().Base
	if s.coords.Final() == s.coords.Initial() && !s.dirty {
		if s.backup != nil {
			base.PutImageData(s.backup, s.coords.Initial().TopLeft.Pt())
		}
		return
	}
	cmd := &SelectionCommand{
		Layer:   base,
		Initial: s.coords.Initial(),
		Final:   s.coords.Final(),
		Data:    clone.AsRGBA(s.content()),
		outline: s.outline,
	}
	cmd.Execute()
	s.env.record(cmd)
}

func (s *Selection) reset() {
	s.exists = false
	s.mode = ModeIdle
	s.coords = SelectionCoords{}
	s.outline = selectionOutline{}
	s.lasso = nil
	s.data = nil
	s.backup = nil
	s.dirty = false
	s.handle = NoPoint
	s.mouseDown = false
}

// SelectAll selects the whole canvas.
func (s *Selection) SelectAll() {
	s.Cancel()
	w, h := float64(s.surface().Width()), float64(s.surface().Height())
	s.OnMouseDown(LeftPress(geom.V(0, 0)))
	if s.mask == MaskLasso {
		s.OnMouseMove(LeftPress(geom.V(w, 0)))
		s.OnMouseMove(LeftPress(geom.V(w, h)))
		s.OnMouseUp(LeftPress(geom.V(0, h)))
		return
	}
	s.OnMouseUp(LeftPress(geom.V(w, h)))
}

// Copy returns the selected pixels as shown, or nil.
func (s *Selection) Copy() *image.RGBA {
	if !s.exists {
		return nil
	}
	return clone.AsRGBA(s.content())
}

// Delete clears the selected area to white and drops the selection.
func (s *Selection) Delete() {
	if !s.exists {
		return
	}
	d := s.data.Pix
	for i := 0; i < len(d); i += 4 {
		a := d[i+3]
		d[i], d[i+1], d[i+2] = a, a, a
	}
	s.dirty = true
	s.Cancel()
}

// Paste drops the current selection and creates a new one at the origin
// holding img.
func (s *Selection) Paste(img image.Image) {
	if img == nil || img.Bounds().Empty() {
		return
	}
	s.Cancel()
	s.env.disableHistory()
	data := clone.AsRGBA(img)
	data.Rect = data.Rect.Sub(data.Rect.Min)
	size := geom.V(float64(data.Rect.Dx()), float64(data.Rect.Dy()))
	// the source rectangle lies off canvas so replay whitens nothing
	off := geom.V(-size.X-1, -size.Y-1)
	s.coords = SelectionCoords{
		InitialTopLeft: off, InitialBottomRight: off.Add(size),
		FinalTopLeft: geom.V(0, 0), FinalBottomRight: size,
	}
	s.outline = selectionOutline{mask: MaskRectangle}
	s.data = data
	s.backup = nil
	s.exists = true
	s.mode = ModeIdle
	s.Redraw()
}

func arrowDirection(c key.Code) geom.Vec2 {
	switch c {
	case key.CodeLeftArrow:
		return geom.V(-1, 0)
	case key.CodeRightArrow:
		return geom.V(1, 0)
	case key.CodeUpArrow:
		return geom.V(0, -1)
	case key.CodeDownArrow:
		return geom.V(0, 1)
	}
	return geom.Vec2{}
}

func (s *Selection) arrowDown(c key.Code) {
	if !s.exists || s.arrows[c] {
		return
	}
	s.arrows[c] = true
	if s.arrowDelay != nil || s.arrowRep != nil {
		return
	}
	s.arrowDelay = s.env.after(ArrowDelay, func() {
		s.arrowDelay = nil
		if len(s.arrows) == 0 || !s.exists {
			return
		}
		s.applyArrows()
		s.arrowRep = s.env.every(ArrowInterval, s.applyArrows)
	})
}

func (s *Selection) arrowUp(c key.Code) {
	if !s.arrows[c] {
		return
	}
	delete(s.arrows, c)
	if len(s.arrows) > 0 {
		return
	}
	if s.arrowDelay != nil {
		s.stopArrows()
		s.step(arrowDirection(c))
		return
	}
	s.stopArrows()
}

// applyArrows moves the selection in the combined direction of every held
// arrow key.
func (s *Selection) applyArrows() {
	var d geom.Vec2
	for c := range s.arrows {
		d = d.Add(arrowDirection(c))
	}
	s.step(d)
}

func (s *Selection) step(d geom.Vec2) {
	if !s.exists || d == (geom.Vec2{}) {
		return
	}
	f := s.coords.Final()
	if g := s.env.grid(); g.Magnet && g.Size > 0 {
		s.moveTo(magnetStep(f.TopLeft, f.Size(), g.Anchor, float64(g.Size), d), false)
	} else {
		s.moveTo(f.TopLeft.Add(d.Scale(ArrowDelta)), false)
	}
	s.Redraw()
}

func (s *Selection) stopArrows() {
	if s.arrowDelay != nil {
		s.arrowDelay.Stop()
		s.arrowDelay = nil
	}
	s.arrowRep.Stop()
	s.arrowRep = nil
	clear(s.arrows)
}
