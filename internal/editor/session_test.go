package editor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/config"
	"github.com/example/pixelpad/internal/export"
	"github.com/example/pixelpad/internal/gallery"
	"github.com/example/pixelpad/internal/notify"
	"github.com/example/pixelpad/internal/platform"
	"github.com/example/pixelpad/internal/theme"
	"github.com/example/pixelpad/internal/tool"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
)

type fakeClipboard struct {
	written image.Image
	read    image.Image
}

func (c *fakeClipboard) WriteImage(img image.Image) error {
	c.written = img
	return nil
}

func (c *fakeClipboard) ReadImage() (image.Image, error) {
	if c.read == nil {
		return nil, errors.New("clipboard empty")
	}
	return c.read, nil
}

func smallConfig() *config.Config {
	cfg := config.New()
	cfg.CanvasWidth = 120
	cfg.CanvasHeight = 80
	return cfg
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	return New(append([]Option{WithConfig(smallConfig())}, opts...)...)
}

// at returns the window position of canvas pixel (x, y).
func at(s *Session, x, y int) (float32, float32) {
	o := s.CanvasOrigin()
	return float32(o.X + x*s.Zoom()), float32(o.Y + y*s.Zoom())
}

func press(s *Session, x, y float32, b mouse.Button) {
	s.HandleMouse(mouse.Event{X: x, Y: y, Button: b, Direction: mouse.DirPress})
}

func release(s *Session, x, y float32, b mouse.Button) {
	s.HandleMouse(mouse.Event{X: x, Y: y, Button: b, Direction: mouse.DirRelease})
}

func move(s *Session, x, y float32) {
	s.HandleMouse(mouse.Event{X: x, Y: y})
}

func clickButton(s *Session, b *CacheButton, btn mouse.Button) {
	c := b.Rect().Min.Add(b.Rect().Max).Div(2)
	move(s, float32(c.X), float32(c.Y))
	press(s, float32(c.X), float32(c.Y), btn)
	release(s, float32(c.X), float32(c.Y), btn)
}

func ctrl(c key.Code) key.Event {
	return key.Event{Code: c, Modifiers: key.ModControl, Direction: key.DirPress, Rune: -1}
}

func isWhite(c color.RGBA) bool {
	return c == color.RGBA{255, 255, 255, 255}
}

func TestNewUsesConfiguredCanvas(t *testing.T) {
	s := newSession(t)
	if s.Surface().Width() != 120 || s.Surface().Height() != 80 {
		t.Fatalf("canvas %dx%d, want 120x80", s.Surface().Width(), s.Surface().Height())
	}
	if !isWhite(s.Image().RGBAAt(5, 5)) {
		t.Fatalf("new canvas not white: %v", s.Image().RGBAAt(5, 5))
	}
	if s.History().Len() != 1 {
		t.Fatalf("history len %d, want baseline only", s.History().Len())
	}
	if s.Registry().Current().Kind() != tool.KindPencil {
		t.Fatalf("start tool %v", s.Registry().Current().Kind())
	}
}

func TestWithImageSetsCanvasSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 0, 0, 255}), image.Point{}, draw.Src)
	s := newSession(t, WithImage(img))
	if s.Surface().Width() != 30 || s.Surface().Height() != 20 {
		t.Fatalf("canvas %dx%d, want 30x20", s.Surface().Width(), s.Surface().Height())
	}
	if got := s.Image().RGBAAt(10, 10); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("pixel %v, want red", got)
	}
}

func TestStartToolFromConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.DefaultTool = "fill"
	s := New(WithConfig(cfg))
	if s.Registry().Current().Kind() != tool.KindFill {
		t.Fatalf("start tool %v, want fill", s.Registry().Current().Kind())
	}
}

func TestPencilStrokeThroughWindow(t *testing.T) {
	s := newSession(t)
	x0, y0 := at(s, 10, 10)
	x1, y1 := at(s, 30, 10)
	move(s, x0, y0)
	press(s, x0, y0, mouse.ButtonLeft)
	move(s, x1, y1)
	release(s, x1, y1, mouse.ButtonLeft)

	if s.History().Len() != 2 {
		t.Fatalf("history len %d, want 2", s.History().Len())
	}
	if isWhite(s.Image().RGBAAt(20, 10)) {
		t.Fatalf("stroke missing at (20,10)")
	}
	if !strings.Contains(s.Status(), "undo 1") {
		t.Fatalf("status %q", s.Status())
	}
}

func TestDragLeavingCanvasCommits(t *testing.T) {
	s := newSession(t)
	x0, y0 := at(s, 10, 10)
	x1, y1 := at(s, 40, 10)
	move(s, x0, y0)
	press(s, x0, y0, mouse.ButtonLeft)
	move(s, x1, y1)
	move(s, 2, 2)
	release(s, 2, 2, mouse.ButtonLeft)

	if s.History().Len() != 2 {
		t.Fatalf("history len %d, want 2", s.History().Len())
	}
	if s.held {
		t.Fatalf("left button still tracked as held")
	}
	if s.Registry().Current().Kind() != tool.KindPencil {
		t.Fatalf("release over the toolbar switched tools")
	}
}

func TestZoomConvertsCoordinates(t *testing.T) {
	s := newSession(t)
	s.HandleKey(ctrl(key.CodeEqualSign))
	if s.Zoom() != 2 {
		t.Fatalf("zoom %d, want 2", s.Zoom())
	}
	x, y := at(s, 15, 12)
	e := s.toCanvas(mouse.Event{X: x, Y: y})
	if e.Pos.X != 15 || e.Pos.Y != 12 {
		t.Fatalf("canvas pos %v, want (15,12)", e.Pos)
	}
	s.SetZoom(100)
	if s.Zoom() != maxZoom {
		t.Fatalf("zoom %d, want clamp to %d", s.Zoom(), maxZoom)
	}
	s.HandleKey(ctrl(key.CodeHyphenMinus))
	if s.Zoom() != maxZoom-1 {
		t.Fatalf("zoom %d after zoom out", s.Zoom())
	}
}

func TestToolbarSelectsTool(t *testing.T) {
	s := newSession(t)
	clickButton(s, s.ButtonFor(tool.KindLine), mouse.ButtonLeft)
	if s.Registry().Current().Kind() != tool.KindLine {
		t.Fatalf("current %v, want line", s.Registry().Current().Kind())
	}
	if got := s.state(s.ButtonFor(tool.KindLine)); got != StateActive {
		t.Fatalf("line button state %v, want active", got)
	}
}

func TestToolbarPressAndReleaseMustMatch(t *testing.T) {
	s := newSession(t)
	a := s.ButtonFor(tool.KindLine).Rect()
	b := s.ButtonFor(tool.KindFill).Rect()
	press(s, float32(a.Min.X+2), float32(a.Min.Y+2), mouse.ButtonLeft)
	release(s, float32(b.Min.X+2), float32(b.Min.Y+2), mouse.ButtonLeft)
	if s.Registry().Current().Kind() != tool.KindPencil {
		t.Fatalf("current %v, want pencil", s.Registry().Current().Kind())
	}
}

func TestHotkeysRunBeforeTool(t *testing.T) {
	s := newSession(t)
	s.HandleKey(key.Event{Code: key.CodeL, Rune: 'l', Direction: key.DirPress})
	if s.Registry().Current().Kind() != tool.KindLine {
		t.Fatalf("current %v, want line", s.Registry().Current().Kind())
	}

	s.HandleKey(key.Event{Code: key.CodeT, Rune: 't', Direction: key.DirPress})
	x, y := at(s, 10, 20)
	press(s, x, y, mouse.ButtonLeft)
	release(s, x, y, mouse.ButtonLeft)
	s.HandleKey(key.Event{Code: key.CodeL, Rune: 'l', Direction: key.DirPress})
	if s.Registry().Current().Kind() != tool.KindText {
		t.Fatalf("typing switched tools to %v", s.Registry().Current().Kind())
	}
	if got := s.Registry().Text().Text(); got != "l" {
		t.Fatalf("text %q, want %q", got, "l")
	}
}

func TestSwatchesPickColours(t *testing.T) {
	s := newSession(t)
	var red *CacheButton
	for _, b := range s.buttons {
		if sw, ok := b.Button.(*Swatch); ok && sw.Color.Hex() == "#ff0000" {
			red = b
		}
	}
	if red == nil {
		t.Fatalf("no red swatch")
	}
	clickButton(s, red, mouse.ButtonLeft)
	if s.Colors().Primary().Hex() != "#ff0000" {
		t.Fatalf("primary %s", s.Colors().Primary())
	}
	clickButton(s, red, mouse.ButtonRight)
	if s.Colors().Secondary().Hex() != "#ff0000" {
		t.Fatalf("secondary %s", s.Colors().Secondary())
	}
	if got := s.state(red); got != StateActive {
		t.Fatalf("primary swatch state %v", got)
	}
}

func TestThicknessButtonsFollowTool(t *testing.T) {
	s := newSession(t)
	var widest *CacheButton
	for _, b := range s.buttons {
		if tb, ok := b.Button.(*ThicknessButton); ok && tb.Width == 12 {
			widest = b
		}
	}
	if widest == nil {
		t.Fatalf("no thickness button for 12")
	}
	clickButton(s, widest, mouse.ButtonLeft)
	pencil := s.Registry().Tool(tool.KindPencil).(tool.DrawingTool)
	if pencil.Thickness() != 12 {
		t.Fatalf("pencil thickness %v, want 12", pencil.Thickness())
	}

	s.Registry().SetCurrent(tool.KindEyedropper)
	c := widest.Rect().Min.Add(image.Pt(2, 2))
	if b := s.buttonAt(c); b != nil {
		t.Fatalf("thickness button visible for the eyedropper")
	}
}

func TestActionButtonsUndoRedo(t *testing.T) {
	s := newSession(t)
	x0, y0 := at(s, 10, 10)
	x1, y1 := at(s, 30, 30)
	press(s, x0, y0, mouse.ButtonLeft)
	move(s, x1, y1)
	release(s, x1, y1, mouse.ButtonLeft)

	find := func(name string) *CacheButton {
		for _, b := range s.buttons {
			if ab, ok := b.Button.(*ActionButton); ok && ab.Action == name {
				return b
			}
		}
		t.Fatalf("no %s button", name)
		return nil
	}
	clickButton(s, find("undo"), mouse.ButtonLeft)
	if s.History().Len() != 1 || s.History().RedoLen() != 1 {
		t.Fatalf("after undo len %d redo %d", s.History().Len(), s.History().RedoLen())
	}
	clickButton(s, find("redo"), mouse.ButtonLeft)
	if s.History().Len() != 2 {
		t.Fatalf("after redo len %d", s.History().Len())
	}
}

func TestSelectionMoveThroughWindow(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(10, 10, 40, 40), image.Black, image.Point{}, draw.Src)
	s := newSession(t, WithImage(img))
	s.Registry().SetCurrent(tool.KindRectSelection)

	drag := func(fx, fy, tx, ty int) {
		x0, y0 := at(s, fx, fy)
		x1, y1 := at(s, tx, ty)
		move(s, x0, y0)
		press(s, x0, y0, mouse.ButtonLeft)
		move(s, x1, y1)
		release(s, x1, y1, mouse.ButtonLeft)
	}
	drag(10, 10, 40, 40)
	sel := s.Registry().ActiveSelection()
	if sel == nil {
		t.Fatalf("drag made no selection")
	}
	drag(25, 25, 75, 25)
	s.HandleKey(key.Event{Code: key.CodeEscape, Direction: key.DirPress, Rune: -1})

	if s.Registry().ActiveSelection() != nil {
		t.Fatalf("escape kept the selection")
	}
	if !s.History().Enabled() || s.History().Len() != 2 {
		t.Fatalf("enabled=%v len=%d", s.History().Enabled(), s.History().Len())
	}
	out := s.Image()
	if isWhite(out.RGBAAt(75, 25)) {
		t.Errorf("selection not committed at its new place")
	}
	if !isWhite(out.RGBAAt(25, 25)) {
		t.Errorf("source area not cleared: %v", out.RGBAAt(25, 25))
	}
}

func TestCopyAndPasteUseClipboard(t *testing.T) {
	cb := &fakeClipboard{}
	cfg := smallConfig()
	cfg.Notify.Copy = true
	var sent []string
	n := notify.New(notify.DefaultPreferences(), func(title, body string, opts platform.Options) error {
		sent = append(sent, body)
		return nil
	})
	s := New(WithConfig(cfg), WithClipboard(cb), WithNotifier(n))

	s.HandleKey(ctrl(key.CodeA))
	s.HandleKey(ctrl(key.CodeC))
	if cb.written == nil {
		t.Fatalf("copy did not reach the clipboard")
	}
	if len(sent) != 1 {
		t.Fatalf("notifications %v, want one", sent)
	}
	if !strings.Contains(s.Message(), "copied") {
		t.Fatalf("message %q", s.Message())
	}

	cb.read = image.NewRGBA(image.Rect(0, 0, 5, 7))
	s.HandleKey(ctrl(key.CodeV))
	sel := s.Registry().ActiveSelection()
	if sel == nil {
		t.Fatalf("paste made no selection")
	}
	if b := sel.Data().Bounds(); b.Dx() != 5 || b.Dy() != 7 {
		t.Fatalf("pasted %v, want 5x7", b)
	}
}

func TestPasteFallsBackToInternalCopy(t *testing.T) {
	s := newSession(t, WithClipboard(&fakeClipboard{}))
	s.HandleKey(ctrl(key.CodeA))
	s.HandleKey(ctrl(key.CodeC))
	s.HandleKey(ctrl(key.CodeV))
	sel := s.Registry().ActiveSelection()
	if sel == nil {
		t.Fatalf("paste made no selection")
	}
	if b := sel.Data().Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Fatalf("pasted %v, want the whole canvas", b)
	}
}

func TestSaveWithoutGallery(t *testing.T) {
	s := newSession(t)
	if err := s.Save(); !errors.Is(err, ErrNoGallery) {
		t.Fatalf("err %v, want ErrNoGallery", err)
	}
	s.HandleKey(ctrl(key.CodeS))
	if !strings.Contains(s.Message(), "failed") {
		t.Fatalf("message %q", s.Message())
	}
}

func TestSaveAndOpenGallery(t *testing.T) {
	store, err := gallery.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	s := newSession(t, WithGallery(store), WithName("sketch", "demo"))
	s.Colors().SetPrimary(mustColor(t, "red"))
	s.Registry().SetCurrent(tool.KindFill)
	x, y := at(s, 5, 5)
	press(s, x, y, mouse.ButtonLeft)
	release(s, x, y, mouse.ButtonLeft)

	s.HandleKey(ctrl(key.CodeS))
	list, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "sketch" || !list[0].HasTag("demo") {
		t.Fatalf("gallery %+v", list)
	}

	s.HandleKey(ctrl(key.CodeO))
	if !isWhite(s.Image().RGBAAt(5, 5)) || s.History().Len() != 1 {
		t.Fatalf("new drawing kept content")
	}

	s.HandleKey(ctrl(key.CodeG))
	if got := s.Image().RGBAAt(50, 50); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("opened pixel %v, want red", got)
	}
	if s.History().Len() != 1 {
		t.Fatalf("opened drawing has history len %d", s.History().Len())
	}
}

func TestExportWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	s := newSession(t, WithExport(path, export.Options{Filter: export.FilterGrayscale}))
	s.HandleKey(ctrl(key.CodeE))
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("export missing: %v", err)
	}
	if st.Size() == 0 {
		t.Fatalf("export empty")
	}
}

func TestApplyConfigReloads(t *testing.T) {
	s := newSession(t)
	cfg := smallConfig()
	cfg.Theme = "dark"
	cfg.Tools.Thickness = 5
	s.ApplyConfig(cfg)
	if s.Theme().Name != "dark" {
		t.Fatalf("theme %q, want dark", s.Theme().Name)
	}
	pencil := s.Registry().Tool(tool.KindPencil).(tool.DrawingTool)
	if pencil.Thickness() != 5 {
		t.Fatalf("pencil thickness %v, want 5", pencil.Thickness())
	}
	for _, b := range s.buttons {
		if tb, ok := b.Button.(*ToolButton); ok && tb.theme != s.Theme() {
			t.Fatalf("button %s kept the old theme", tb.text)
		}
	}
}

func TestRenderFrame(t *testing.T) {
	s := newSession(t, WithTheme(theme.Default()))
	sz := s.WindowSize()
	dst := image.NewRGBA(image.Rectangle{Max: sz})
	if !render(context.Background(), dst, s.frame(sz.X, sz.Y)) {
		t.Fatalf("render canceled")
	}
	o := s.CanvasOrigin()
	if !isWhite(dst.RGBAAt(o.X+3, o.Y+3)) {
		t.Fatalf("canvas pixel %v", dst.RGBAAt(o.X+3, o.Y+3))
	}
	th := s.Theme()
	if got := dst.RGBAAt(o.X-1, o.Y-1); got != th.CanvasBorder {
		t.Fatalf("border %v, want %v", got, th.CanvasBorder)
	}
	if got := dst.RGBAAt(sz.X-1, sz.Y-1); got != th.ToolbarBackground {
		t.Fatalf("status bar %v, want %v", got, th.ToolbarBackground)
	}
	r := s.ButtonFor(tool.KindPencil).Rect()
	if got := dst.RGBAAt(r.Max.X-2, r.Max.Y-2); got != th.ButtonActive {
		t.Fatalf("pencil button %v, want active colour", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if render(ctx, dst, s.frame(sz.X, sz.Y)) {
		t.Fatalf("render ignored cancellation")
	}
}

func mustColor(t *testing.T, name string) colors.Color {
	t.Helper()
	c, err := colors.Parse(name)
	if err != nil {
		t.Fatalf("colour %s: %v", name, err)
	}
	return c
}
