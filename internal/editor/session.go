// Package editor is the pixelpad window: a toolbar of tools, swatches and
// actions beside the canvas, with input routed to the tool registry.
package editor

import (
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/example/pixelpad/internal/autosave"
	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/config"
	"github.com/example/pixelpad/internal/export"
	"github.com/example/pixelpad/internal/gallery"
	"github.com/example/pixelpad/internal/history"
	"github.com/example/pixelpad/internal/notify"
	"github.com/example/pixelpad/internal/surface"
	"github.com/example/pixelpad/internal/theme"
	"github.com/example/pixelpad/internal/tool"
	"golang.org/x/mobile/event/key"
)

const (
	statusHeight = 24
	canvasMargin = 8
	buttonHeight = 20
	swatchSize   = 16
	minToolbar   = 96
	maxZoom      = 8
	messageTime  = 2 * time.Second
)

// ErrNoGallery is returned by Save and OpenNext when no gallery is attached.
var ErrNoGallery = errors.New("no gallery configured")

// Clipboard is the system clipboard as the editor uses it.
type Clipboard interface {
	WriteImage(img image.Image) error
	ReadImage() (image.Image, error)
}

// Gallery stores named drawings.
type Gallery interface {
	Save(name string, tags []string, img image.Image) (gallery.Drawing, error)
	List(tags ...string) ([]gallery.Drawing, error)
	Load(id string) (image.Image, gallery.Drawing, error)
}

// Session is the editor state without the window: the canvas, its history,
// the tools and the toolbar layout. All methods run on the UI goroutine.
type Session struct {
	cfg      *config.Config
	theme    *theme.Theme
	surface  *surface.Surface
	history  *history.Stack
	colors   *colors.Service
	registry *tool.Registry
	hotkeys  *tool.Hotkeys

	clipboard Clipboard
	gallery   Gallery
	notifier  *notify.Notifier
	autosave  *autosave.Store

	name       string
	tags       []string
	exportPath string
	exportOpts export.Options
	galleryPos int

	buttons      []*CacheButton
	toolbarWidth int
	toolbarEnd   int
	previews     image.Rectangle
	hover        *CacheButton
	pressed      *CacheButton
	held         bool
	inside       bool
	zoom         int

	message      string
	messageUntil time.Time
	now          func() time.Time
	onChange     func()
}

// Option configures a Session.
type Option func(*options)

type options struct {
	cfg        *config.Config
	theme      *theme.Theme
	image      image.Image
	clipboard  Clipboard
	gallery    Gallery
	notifier   *notify.Notifier
	autosave   *autosave.Store
	name       string
	tags       []string
	exportPath string
	exportOpts export.Options
	clock      tool.Clock
	now        func() time.Time
	onChange   func()
}

// WithConfig applies cfg to the tools and picks the start tool from it.
func WithConfig(cfg *config.Config) Option { return func(o *options) { o.cfg = cfg } }

// WithTheme sets the chrome colours instead of the configured theme.
func WithTheme(t *theme.Theme) Option { return func(o *options) { o.theme = t } }

// WithImage opens img instead of the autosaved canvas.
func WithImage(img image.Image) Option { return func(o *options) { o.image = img } }

// WithClipboard mirrors copies to c and pastes from it.
func WithClipboard(c Clipboard) Option { return func(o *options) { o.clipboard = c } }

// WithGallery enables Ctrl+S and Ctrl+G.
func WithGallery(g Gallery) Option { return func(o *options) { o.gallery = g } }

// WithNotifier reports saves, exports and copies.
func WithNotifier(n *notify.Notifier) Option { return func(o *options) { o.notifier = n } }

// WithAutosave restores the canvas from s and snapshots every history change.
func WithAutosave(s *autosave.Store) Option { return func(o *options) { o.autosave = s } }

// WithName sets the gallery name and tags used by Save.
func WithName(name string, tags ...string) Option {
	return func(o *options) { o.name, o.tags = name, tags }
}

// WithExport sets the Ctrl+E target. The format follows the extension.
func WithExport(path string, opts export.Options) Option {
	return func(o *options) { o.exportPath, o.exportOpts = path, opts }
}

// WithClock drives the timed tools.
func WithClock(c tool.Clock) Option { return func(o *options) { o.clock = c } }

// WithNow replaces time.Now for status messages.
func WithNow(fn func() time.Time) Option { return func(o *options) { o.now = fn } }

// WithOnChange is called whenever the canvas, the tool or the history
// changes and a repaint is due.
func WithOnChange(fn func()) Option { return func(o *options) { o.onChange = fn } }

// New builds a session. The canvas comes from WithImage, then the autosave
// store, then a blank canvas of the configured size.
func New(opts ...Option) *Session {
	o := options{name: "untitled", exportPath: "pixelpad.png", now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg == nil {
		o.cfg = config.New()
	}
	w, h := o.cfg.CanvasWidth, o.cfg.CanvasHeight
	if w <= 0 {
		w = config.DefaultCanvasWidth
	}
	if h <= 0 {
		h = config.DefaultCanvasHeight
	}
	img := o.image
	if img == nil && o.autosave != nil {
		var err error
		if img, err = o.autosave.LoadBaseline(w, h); err != nil {
			log.Printf("autosave: %v", err)
			img = nil
		}
	}
	if img == nil {
		img = autosave.Blank(w, h)
	}
	w, h = img.Bounds().Dx(), img.Bounds().Dy()

	s := &Session{
		cfg:        o.cfg,
		theme:      o.theme,
		surface:    surface.New(w, h),
		colors:     colors.NewService(),
		clipboard:  o.clipboard,
		gallery:    o.gallery,
		notifier:   o.notifier,
		autosave:   o.autosave,
		name:       o.name,
		tags:       o.tags,
		exportPath: o.exportPath,
		exportOpts: o.exportOpts,
		zoom:       1,
		now:        o.now,
		onChange:   o.onChange,
	}
	var hopts []history.Option
	if s.autosave != nil {
		s.autosave.Source = func() image.Image { return s.surface.Flatten() }
		hopts = append(hopts, history.WithSnapshotter(s.autosave))
	}
	s.history = history.New(s.surface.Base, hopts...)
	s.history.AddListener(s.changed)

	env := &tool.Env{
		Surface: s.surface,
		History: s.history,
		Colors:  s.colors,
		Clock:   o.clock,
	}
	var ropts []tool.RegistryOption
	if s.clipboard != nil {
		ropts = append(ropts, tool.WithClipboard(s.clipboard))
	}
	s.registry = tool.NewRegistry(env, ropts...)
	s.registry.Subscribe(func(tool.Tool) { s.changed() })
	s.hotkeys = s.newHotkeys()

	s.setBaseline(img)
	s.applyConfig(s.cfg)
	s.registry.SetCurrent(s.cfg.StartTool())
	s.layout()
	return s
}

// Registry returns the tool registry.
func (s *Session) Registry() *tool.Registry { return s.registry }

// History returns the undo stack.
func (s *Session) History() *history.Stack { return s.history }

// Hotkeys returns the keyboard bindings.
func (s *Session) Hotkeys() *tool.Hotkeys { return s.hotkeys }

// Surface returns the canvas layers.
func (s *Session) Surface() *surface.Surface { return s.surface }

// Colors returns the colour service.
func (s *Session) Colors() *colors.Service { return s.colors }

// Theme returns the chrome colours in use.
func (s *Session) Theme() *theme.Theme { return s.theme }

// SetPost routes timer callbacks through fn, normally a window Send.
func (s *Session) SetPost(fn func(func())) { s.registry.Env().Post = fn }

// Image returns the picture over a white background.
func (s *Session) Image() *image.RGBA { return s.surface.Flatten() }

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// flash shows msg in the status bar for a moment and logs it.
func (s *Session) flash(msg string) {
	log.Print(msg)
	s.show(msg)
}

func (s *Session) fail(action string, err error) {
	log.Printf("%s: %v", action, err)
	s.show(fmt.Sprintf("%s failed: %v", action, err))
}

func (s *Session) show(msg string) {
	s.message = msg
	s.messageUntil = s.now().Add(messageTime)
	s.changed()
	if fn := s.onChange; fn != nil {
		time.AfterFunc(messageTime, fn)
	}
}

// Message returns the current status message, if any.
func (s *Session) Message() string {
	if s.message == "" || !s.now().Before(s.messageUntil) {
		return ""
	}
	return s.message
}

// Status is the status bar text: tool, history depth and colour.
func (s *Session) Status() string {
	hist := fmt.Sprintf("undo %d  redo %d", s.history.Len()-1, s.history.RedoLen())
	if !s.history.Enabled() {
		hist = "history paused"
	}
	st := fmt.Sprintf("%s  %s  %s", s.registry.Current().Name(), hist, s.colors.Primary())
	if s.zoom > 1 {
		st += fmt.Sprintf("  %dx", s.zoom)
	}
	return st
}

func (s *Session) newHotkeys() *tool.Hotkeys {
	h := tool.NewHotkeys(s.registry)
	h.Save = s.Save
	h.Export = s.Export
	h.NewDrawing = s.NewDrawing
	h.Gallery = s.OpenNext

	ctrl := func(c key.Code) []tool.KeyShortcut {
		return []tool.KeyShortcut{{Code: c, Modifiers: key.ModControl}}
	}
	h.Register("copy", ctrl(key.CodeC), s.copySelection)
	h.Register("paste", ctrl(key.CodeV), func() error {
		s.paste()
		return nil
	})
	h.Register("zoom-in", ctrl(key.CodeEqualSign), func() error {
		s.SetZoom(s.zoom + 1)
		return nil
	})
	h.Register("zoom-out", ctrl(key.CodeHyphenMinus), func() error {
		s.SetZoom(s.zoom - 1)
		return nil
	})
	return h
}

func (s *Session) copySelection() error {
	if s.registry.ActiveSelection() == nil {
		return nil
	}
	if err := s.registry.Copy(); err != nil {
		return err
	}
	s.notifier.Copy("selection")
	s.flash("selection copied to clipboard")
	return nil
}

// paste prefers an image on the system clipboard over the last internal
// copy.
func (s *Session) paste() {
	if s.clipboard != nil {
		if img, err := s.clipboard.ReadImage(); err == nil && img != nil {
			s.registry.PasteImage(img)
			return
		}
	}
	s.registry.Paste()
}

// SetZoom sets the integer canvas magnification.
func (s *Session) SetZoom(z int) {
	s.zoom = min(max(z, 1), maxZoom)
	s.changed()
}

// Zoom returns the canvas magnification.
func (s *Session) Zoom() int { return s.zoom }

func (s *Session) setBaseline(img image.Image) {
	s.history.SetBaseline(history.CommandFunc(func() {
		s.surface.Base.SetImage(img)
	}))
}

// reset drops every in-progress tool state before the canvas is replaced.
func (s *Session) reset() {
	s.registry.Text().Cancel()
	for _, sel := range s.registry.Selections() {
		sel.Cancel()
	}
	s.registry.Line().RemovePreview()
	s.registry.Stamp().ClearOverlay()
	s.surface.Preview.Clear()
}

func (s *Session) snapshot() {
	if s.autosave == nil {
		return
	}
	if err := s.autosave.SaveSnapshot(); err != nil {
		log.Printf("autosave: %v", err)
	}
}

// NewDrawing replaces the canvas with a blank one of the same size.
func (s *Session) NewDrawing() error {
	s.reset()
	s.setBaseline(autosave.Blank(s.surface.Width(), s.surface.Height()))
	s.snapshot()
	s.flash("new drawing")
	return nil
}

// Save stores the drawing in the gallery.
func (s *Session) Save() error {
	if s.gallery == nil {
		return ErrNoGallery
	}
	img := s.Image()
	d, err := s.gallery.Save(s.name, s.tags, img)
	if err != nil {
		return err
	}
	s.notifier.Save(d.Name, img)
	s.flash(fmt.Sprintf("saved %q to the gallery", d.Name))
	return nil
}

// Export writes the drawing to the export path.
func (s *Session) Export() error {
	f, err := export.FormatFromPath(s.exportPath)
	if err != nil {
		return err
	}
	if err := export.WriteFile(s.exportPath, s.Image(), f, s.exportOpts); err != nil {
		return err
	}
	s.notifier.Export(s.exportPath)
	s.flash(fmt.Sprintf("exported %s", s.exportPath))
	return nil
}

// OpenNext loads the next gallery drawing, newest first, as a fresh canvas.
func (s *Session) OpenNext() error {
	if s.gallery == nil {
		return ErrNoGallery
	}
	list, err := s.gallery.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		s.flash("gallery is empty")
		return nil
	}
	d := list[s.galleryPos%len(list)]
	s.galleryPos++
	img, d, err := s.gallery.Load(d.ID)
	if err != nil {
		return err
	}
	s.reset()
	s.setBaseline(img)
	s.snapshot()
	s.name, s.tags = d.Name, d.Tags
	s.flash(fmt.Sprintf("opened %q", d.Name))
	return nil
}

// ApplyConfig re-applies tool defaults, notifications and the theme from a
// reloaded config.
func (s *Session) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.applyConfig(cfg)
	s.layout()
	s.changed()
}

func (s *Session) applyConfig(cfg *config.Config) {
	s.cfg = cfg
	if err := cfg.Apply(s.registry); err != nil {
		log.Printf("config: %v", err)
	}
	s.notifier.Enable(notify.EventSave, cfg.Notify.Save)
	s.notifier.Enable(notify.EventExport, cfg.Notify.Export)
	s.notifier.Enable(notify.EventCopy, cfg.Notify.Copy)

	if cfg.Theme == "" {
		if s.theme == nil {
			s.theme = theme.Default()
		}
		return
	}
	t, err := theme.NewLoader(cfg.Themes).Load(cfg.Theme)
	if err != nil {
		log.Printf("theme: %v", err)
		if s.theme == nil {
			s.theme = theme.Default()
		}
		return
	}
	s.theme = t
}
