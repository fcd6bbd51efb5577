package tool

import (
	"sort"

	"golang.org/x/mobile/event/key"
)

// KeyShortcut describes a keyboard combination that triggers an action.
// Only Control and Shift are significant, and Shift only together with
// Control.
type KeyShortcut struct {
	Code      key.Code
	Modifiers key.Modifiers
}

// ShortcutFor normalises e into the form actions are registered under.
func ShortcutFor(e key.Event) KeyShortcut {
	mods := e.Modifiers & (key.ModControl | key.ModShift)
	if mods&key.ModControl == 0 {
		mods = 0
	}
	return KeyShortcut{Code: e.Code, Modifiers: mods}
}

// Hotkeys maps shortcuts to named actions.
type Hotkeys struct {
	reg            *Registry
	keyboardAction map[KeyShortcut]string
	actions        map[string]func() error

	// Save stores the drawing in the gallery.
	Save func() error
	// Export writes the drawing to a file.
	Export func() error
	// NewDrawing resets the canvas.
	NewDrawing func() error
	// Gallery opens the gallery browser.
	Gallery func() error
}

// NewHotkeys registers the default shortcuts against r.
func NewHotkeys(r *Registry) *Hotkeys {
	h := &Hotkeys{reg: r, keyboardAction: map[KeyShortcut]string{}, actions: map[string]func() error{}}

	tools := []struct {
		code key.Code
		kind Kind
	}{
		{key.CodeC, KindPencil},
		{key.CodeE, KindEraser},
		{key.CodeL, KindLine},
		{key.CodeA, KindSpray},
		{key.CodeI, KindEyedropper},
		{key.Code1, KindRectangle},
		{key.Code2, KindEllipse},
		{key.Code3, KindPolygon},
		{key.CodeR, KindRectSelection},
		{key.CodeS, KindEllipseSelection},
		{key.CodeV, KindLasso},
		{key.CodeT, KindText},
		{key.CodeD, KindStamp},
		{key.CodeB, KindFill},
	}
	for _, t := range tools {
		k := t.kind
		h.Register(k.String(), []KeyShortcut{{Code: t.code}}, func() error {
			r.SetCurrent(k)
			return nil
		})
	}

	h.Register("grid", []KeyShortcut{{Code: key.CodeG}}, func() error {
		r.Grid().Toggle()
		return nil
	})
	h.Register("magnet", []KeyShortcut{{Code: key.CodeM}}, func() error {
		g := r.Env().grid()
		g.Magnet = !g.Magnet
		return nil
	})

	ctrl := func(c key.Code) []KeyShortcut {
		return []KeyShortcut{{Code: c, Modifiers: key.ModControl}}
	}
	h.Register("select-all", ctrl(key.CodeA), func() error {
		r.SelectAll()
		return nil
	})
	h.Register("undo", ctrl(key.CodeZ), func() error {
		r.Undo()
		return nil
	})
	h.Register("redo", []KeyShortcut{{Code: key.CodeZ, Modifiers: key.ModControl | key.ModShift}}, func() error {
		r.Redo()
		return nil
	})
	h.Register("copy", ctrl(key.CodeC), r.Copy)
	h.Register("cut", ctrl(key.CodeX), r.Cut)
	h.Register("paste", ctrl(key.CodeV), func() error {
		r.Paste()
		return nil
	})
	h.Register("delete", []KeyShortcut{{Code: key.CodeDeleteForward}}, func() error {
		r.Delete()
		return nil
	})
	h.Register("save", ctrl(key.CodeS), func() error { return call(h.Save) })
	h.Register("export", ctrl(key.CodeE), func() error { return call(h.Export) })
	h.Register("new", ctrl(key.CodeO), func() error { return call(h.NewDrawing) })
	h.Register("gallery", ctrl(key.CodeG), func() error { return call(h.Gallery) })
	return h
}

func call(fn func() error) error {
	if fn == nil {
		return nil
	}
	return fn()
}

// Register binds name to fn and to every shortcut in keys.
func (h *Hotkeys) Register(name string, keys []KeyShortcut, fn func() error) {
	h.actions[name] = fn
	for _, sc := range keys {
		h.keyboardAction[sc] = name
	}
}

// Lookup returns the action bound to e.
func (h *Hotkeys) Lookup(e key.Event) (string, bool) {
	name, ok := h.keyboardAction[ShortcutFor(e)]
	return name, ok
}

// Run invokes the named action.
func (h *Hotkeys) Run(name string) (bool, error) {
	fn, ok := h.actions[name]
	if !ok {
		return false, nil
	}
	return true, fn()
}

// Handle runs the action bound to a key press. Shortcuts are ignored while
// the text tool is typing. It returns the action name, or "" when nothing
// ran.
func (h *Hotkeys) Handle(e key.Event) (string, error) {
	if e.Direction == key.DirRelease || h.reg.Busy() {
		return "", nil
	}
	name, ok := h.Lookup(e)
	if !ok {
		return "", nil
	}
	_, err := h.Run(name)
	return name, err
}

// Bindings lists the registered shortcuts by action name, for help output.
func (h *Hotkeys) Bindings() map[string][]KeyShortcut {
	out := map[string][]KeyShortcut{}
	for sc, name := range h.keyboardAction {
		out[name] = append(out[name], sc)
	}
	for _, scs := range out {
		sort.Slice(scs, func(i, j int) bool {
			if scs[i].Modifiers != scs[j].Modifiers {
				return scs[i].Modifiers < scs[j].Modifiers
			}
			return scs[i].Code < scs[j].Code
		})
	}
	return out
}
