package editor

import (
	"image"
	"strconv"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/tool"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
)

var actions = []struct{ label, name string }{
	{"Undo", "undo"},
	{"Redo", "redo"},
	{"Grid", "grid"},
	{"Save", "save"},
	{"Export", "export"},
	{"New", "new"},
}

// layout rebuilds the toolbar. Buttons are stacked in one column: tools,
// actions, colour swatches, then stroke widths.
func (s *Session) layout() {
	bindings := s.hotkeys.Bindings()
	labels := make(map[tool.Kind]string)
	d := &font.Drawer{Face: basicfont.Face7x13}
	width := minToolbar
	for _, k := range tool.Kinds() {
		shortcut := ""
		if scs := bindings[k.String()]; len(scs) > 0 {
			shortcut = shortcutLabel(scs[0])
		}
		labels[k] = toolLabel(k, shortcut)
		width = max(width, d.MeasureString(labels[k]).Ceil()+8)
	}
	s.toolbarWidth = width

	var buttons []*CacheButton
	y := 0
	add := func(b Button, h int) {
		b.SetRect(image.Rect(0, y, width, y+h))
		buttons = append(buttons, &CacheButton{Button: b})
		y += h
	}
	for _, k := range tool.Kinds() {
		k := k
		add(&ToolButton{
			label: label{text: labels[k], theme: s.theme, action: func() { s.registry.SetCurrent(k) }},
			Kind:  k,
		}, buttonHeight)
	}
	y += 4
	for _, a := range actions {
		name := a.name
		add(&ActionButton{
			label:  label{text: a.label, theme: s.theme, action: func() { s.runAction(name) }},
			Action: name,
		}, buttonHeight)
	}

	y += 4
	x := 4
	for _, c := range Palette() {
		if x+swatchSize > width {
			x = 4
			y += swatchSize + 2
		}
		sw := &Swatch{Color: c, theme: s.theme, pick: s.pickColor}
		sw.SetRect(image.Rect(x, y, x+swatchSize, y+swatchSize))
		buttons = append(buttons, &CacheButton{Button: sw})
		x += swatchSize + 2
	}
	y += swatchSize + 4
	s.previews = image.Rect(4, y, width-4, y+swatchSize)
	y += swatchSize + 4

	for _, t := range Thicknesses {
		t := t
		add(&ThicknessButton{
			label: label{text: formatWidth(t), theme: s.theme, action: func() { s.setThickness(t) }},
			Width: t,
			Color: s.theme.Foreground,
		}, buttonHeight)
	}
	s.buttons = buttons
	s.toolbarEnd = y
	s.hover, s.pressed = nil, nil
}

func formatWidth(t float64) string { return strconv.FormatFloat(t, 'f', -1, 64) }

func (s *Session) runAction(name string) {
	if _, err := s.hotkeys.Run(name); err != nil {
		s.fail(name, err)
	}
	s.changed()
}

func (s *Session) pickColor(c colors.Color, secondary bool) {
	if secondary {
		s.colors.SetSecondary(c)
	} else {
		s.colors.SetPrimary(c)
	}
	s.changed()
}

func (s *Session) setThickness(t float64) {
	if d, ok := s.registry.Current().(tool.DrawingTool); ok {
		d.SetThickness(t)
		s.changed()
	}
}

// visible reports whether b is shown for the current tool. Stroke widths
// only apply to drawing tools.
func (s *Session) visible(b *CacheButton) bool {
	if _, ok := b.Button.(*ThicknessButton); ok {
		_, drawing := s.registry.Current().(tool.DrawingTool)
		return drawing
	}
	return true
}

// state returns how b should be drawn.
func (s *Session) state(b *CacheButton) ButtonState {
	switch v := b.Button.(type) {
	case *ToolButton:
		if v.Kind == s.registry.Current().Kind() {
			return StateActive
		}
	case *ThicknessButton:
		if d, ok := s.registry.Current().(tool.DrawingTool); ok && d.Thickness() == v.Width {
			return StateActive
		}
	case *Swatch:
		if v.Color.RGB == s.colors.Primary().RGB {
			return StateActive
		}
	}
	switch b {
	case s.pressed:
		return StatePressed
	case s.hover:
		return StateHover
	}
	return StateDefault
}

// buttonAt returns the visible toolbar button under p.
func (s *Session) buttonAt(p image.Point) *CacheButton {
	for _, b := range s.buttons {
		if s.visible(b) && p.In(b.Rect()) {
			return b
		}
	}
	return nil
}

// ButtonFor returns the toolbar button that selects tool k.
func (s *Session) ButtonFor(k tool.Kind) *CacheButton {
	for _, b := range s.buttons {
		if tb, ok := b.Button.(*ToolButton); ok && tb.Kind == k {
			return b
		}
	}
	return nil
}

// CanvasOrigin is the window position of canvas pixel (0, 0).
func (s *Session) CanvasOrigin() image.Point {
	return image.Pt(s.toolbarWidth+canvasMargin, canvasMargin)
}

// CanvasRect is the window rectangle the canvas is drawn into.
func (s *Session) CanvasRect() image.Rectangle {
	o := s.CanvasOrigin()
	return image.Rectangle{Min: o, Max: o.Add(image.Pt(s.surface.Width()*s.zoom, s.surface.Height()*s.zoom))}
}

// WindowSize fits the toolbar, the canvas and the status bar.
func (s *Session) WindowSize() image.Point {
	r := s.CanvasRect()
	h := max(r.Max.Y+canvasMargin, s.toolbarEnd)
	return image.Pt(r.Max.X+canvasMargin, h+statusHeight)
}

// toCanvas converts a window event into canvas coordinates.
func (s *Session) toCanvas(e mouse.Event) tool.MouseEvent {
	o := s.CanvasOrigin()
	e.X = (e.X - float32(o.X)) / float32(s.zoom)
	e.Y = (e.Y - float32(o.Y)) / float32(s.zoom)
	return tool.FromMouse(e, s.held)
}

// HandleMouse routes a window mouse event to the toolbar or the current
// tool. A drag that starts on the canvas stays with the tool until release.
func (s *Session) HandleMouse(e mouse.Event) {
	p := image.Pt(int(e.X), int(e.Y))
	inCanvas := p.In(s.CanvasRect())

	if !s.held && !inCanvas {
		s.handleToolbar(e, p)
	}
	if e.Direction == mouse.DirStep {
		return
	}

	if inCanvas != s.inside {
		s.inside = inCanvas
		if inCanvas {
			s.registry.MouseEnter(s.toCanvas(e))
		} else {
			s.registry.MouseOut(s.toCanvas(e))
		}
	}

	left := e.Button == mouse.ButtonLeft
	switch e.Direction {
	case mouse.DirPress:
		if !inCanvas {
			return
		}
		if left {
			s.held = true
		}
		s.registry.MouseDown(s.toCanvas(e))
	case mouse.DirRelease:
		if !inCanvas && !(left && s.held) {
			return
		}
		if left {
			s.held = false
		}
		s.registry.MouseUp(s.toCanvas(e))
	default:
		if !inCanvas && !s.held {
			return
		}
		s.registry.MouseMove(s.toCanvas(e))
	}
	s.changed()
}

func (s *Session) handleToolbar(e mouse.Event, p image.Point) {
	b := s.buttonAt(p)
	if b != s.hover {
		s.hover = b
		s.changed()
	}
	switch e.Direction {
	case mouse.DirPress:
		s.pressed = b
		s.changed()
	case mouse.DirRelease:
		pressed := s.pressed
		s.pressed = nil
		if b == nil || b != pressed {
			s.changed()
			return
		}
		if sec, ok := b.Button.(interface{ ActivateSecondary() }); ok && e.Button == mouse.ButtonRight {
			sec.ActivateSecondary()
		} else {
			b.Activate()
		}
		s.changed()
	}
}

// HandleKey runs the matching shortcut, or hands the key to the current
// tool when no shortcut matched.
func (s *Session) HandleKey(e key.Event) {
	name, err := s.hotkeys.Handle(e)
	if err != nil {
		s.fail(name, err)
	}
	if name != "" {
		s.changed()
		return
	}
	if e.Direction == key.DirRelease {
		s.registry.KeyUp(e)
	} else {
		s.registry.KeyDown(e)
	}
	s.changed()
}
