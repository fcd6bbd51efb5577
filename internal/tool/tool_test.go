package tool

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/geom"
	"github.com/example/pixelpad/internal/history"
	"github.com/example/pixelpad/internal/surface"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward, firing due timers in order, including timers
// scheduled by the callbacks themselves.
func (c *fakeClock) Advance(d time.Duration) {
	end := c.now + d
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > end {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		next.f()
	}
	c.now = end
}

func (c *fakeClock) pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type testEnv struct {
	*Env
	clock *fakeClock
}

func newTestEnv(t *testing.T, w, h int) testEnv {
	t.Helper()
	s := surface.New(w, h)
	s.Base.Fill(color.White)
	hist := history.New(s.Base)
	hist.SetBaseline(NewBaselineCommand(s.Base))
	clk := &fakeClock{}
	return testEnv{
		Env: &Env{
			Surface: s,
			History: hist,
			Colors:  colors.NewService(),
			Clock:   clk,
		},
		clock: clk,
	}
}

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed)) }

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func press(x, y float64) MouseEvent { return LeftPress(geom.V(x, y)) }

func release(x, y float64) MouseEvent {
	return MouseEvent{Pos: geom.V(x, y), Button: mouse.ButtonLeft}
}

func keyPress(c key.Code) key.Event {
	return key.Event{Code: c, Rune: -1, Direction: key.DirPress}
}

func keyRelease(c key.Code) key.Event {
	return key.Event{Code: c, Rune: -1, Direction: key.DirRelease}
}

func runeKey(r rune) key.Event {
	return key.Event{Rune: r, Direction: key.DirPress}
}

func TestKindNamesRoundTrip(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Kinds() {
		name := k.String()
		if seen[name] {
			t.Fatalf("duplicate name %q", name)
		}
		seen[name] = true
		got, err := ParseKind(name)
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseKind("brush"); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestPencilRecordsOneCommand(t *testing.T) {
	env := newTestEnv(t, 40, 40)
	env.Colors.SetPrimary(colors.New(color.RGBA{R: 255, A: 255}))
	p := NewPencil(env.Env)
	p.SetThickness(3)
	p.OnMouseDown(press(5, 20))
	for x := 6.0; x <= 30; x++ {
		p.OnMouseMove(press(x, 20))
	}
	if env.History.Len() != 1 {
		t.Fatalf("moves recorded commands: len %d", env.History.Len())
	}
	if got := env.Surface.Preview.At(15, 20); got.A == 0 {
		t.Error("preview not drawn while dragging")
	}
	p.OnMouseUp(release(30, 20))
	if env.History.Len() != 2 {
		t.Fatalf("len = %d, want 2", env.History.Len())
	}
	if got := env.Surface.Base.At(15, 20); got.R != 255 || got.G != 0 {
		t.Errorf("stroke pixel = %v", got)
	}
	if got := env.Surface.Preview.At(15, 20); got.A != 0 {
		t.Errorf("preview left behind: %v", got)
	}
	if p.Path() != nil {
		t.Error("path not cleared")
	}
}

func TestPencilMoveWithoutButtonDisarms(t *testing.T) {
	env := newTestEnv(t, 20, 20)
	p := NewPencil(env.Env)
	p.OnMouseDown(press(5, 5))
	p.OnMouseMove(MouseEvent{Pos: geom.V(6, 6)})
	if p.MouseDown() {
		t.Fatal("mouseDown kept after a move with no button held")
	}
	p.OnMouseUp(release(6, 6))
	if env.History.Len() != 1 {
		t.Errorf("released outside drag recorded a command")
	}
}

func TestEraserClearsToBackground(t *testing.T) {
	env := newTestEnv(t, 40, 40)
	e := NewEraser(env.Env)
	e.SetThickness(1)
	if e.Thickness() != MinEraserThickness {
		t.Fatalf("thickness = %v, want minimum %d", e.Thickness(), MinEraserThickness)
	}
	e.OnMouseDown(press(10, 20))
	e.OnMouseMove(press(30, 20))
	e.OnMouseUp(release(30, 20))
	if got := env.Surface.Base.At(20, 20); got.A != 0 {
		t.Errorf("erased pixel = %v", got)
	}
	if got := env.Surface.Base.At(20, 5); got.A != 255 {
		t.Errorf("untouched pixel = %v", got)
	}
}

func TestSprayReplaysIdentically(t *testing.T) {
	env := newTestEnv(t, 60, 60)
	r := NewRegistry(env.Env, WithRand(newRand(7)))
	s := r.Spray()
	s.Density = 4
	s.Rate = 20

	s.OnMouseDown(press(30, 30))
	env.clock.Advance(200 * time.Millisecond)
	if got := len(s.Droplets()); got != 5*4 {
		t.Fatalf("droplets = %d, want %d", got, 5*4)
	}
	s.OnMouseUp(release(30, 30))
	if env.clock.pending() != 0 {
		t.Fatalf("ticker still armed")
	}
	want := env.Surface.Base.Image()

	env.History.Undo()
	env.History.Redo()
	got := env.Surface.Base.Image()
	if string(got.Pix) != string(want.Pix) {
		t.Fatal("replayed spray differs from the original")
	}
	for _, d := range env.History.Commands()[1].(*SprayCommand).Droplets {
		if d.Dist(geom.V(30, 30)) > DefaultSprayDiameter/2 {
			t.Errorf("droplet %v outside the spray disc", d)
		}
	}
}

func TestFillCommandReplays(t *testing.T) {
	env := newTestEnv(t, 40, 40)
	env.Surface.Base.PutImageData(solid(20, 20, color.RGBA{A: 255}), geom.V(10, 10).Pt())
	env.History.SetBaseline(NewBaselineCommand(env.Surface.Base))
	env.Colors.SetPrimary(colors.New(color.RGBA{B: 255, A: 255}))

	f := NewFill(env.Env)
	f.Tolerance = 0
	f.OnMouseDown(press(2, 2))
	blue := color.RGBA{B: 255, A: 255}
	if got := env.Surface.Base.At(2, 2); got != blue {
		t.Fatalf("seed pixel = %v", got)
	}
	if got := env.Surface.Base.At(20, 20); got != (color.RGBA{A: 255}) {
		t.Errorf("fill leaked into the square: %v", got)
	}
	want := env.Surface.Base.Image()
	env.History.Undo()
	if got := env.Surface.Base.At(2, 2); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("undo left %v", got)
	}
	env.History.Redo()
	if string(env.Surface.Base.Image().Pix) != string(want.Pix) {
		t.Error("fill replay differs")
	}
}

func TestGlobalFillReplacesDisconnectedPixels(t *testing.T) {
	env := newTestEnv(t, 30, 30)
	black := color.RGBA{A: 255}
	env.Surface.Base.PutImageData(solid(4, 4, black), geom.V(2, 2).Pt())
	env.Surface.Base.PutImageData(solid(4, 4, black), geom.V(20, 20).Pt())
	env.Colors.SetPrimary(colors.New(color.RGBA{G: 255, A: 255}))
	f := NewFill(env.Env)
	f.OnMouseDown(MouseEvent{Pos: geom.V(3, 3), Button: mouse.ButtonRight})
	green := color.RGBA{G: 255, A: 255}
	if got := env.Surface.Base.At(21, 21); got != green {
		t.Errorf("disconnected pixel = %v", got)
	}
	if got := env.Surface.Base.At(10, 10); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("background changed: %v", got)
	}
}

func TestEyedropperPicksOverWhite(t *testing.T) {
	env := newTestEnv(t, 20, 20)
	env.Surface.Base.Clear()
	env.Surface.Base.PutImageData(solid(5, 5, color.RGBA{R: 200, A: 255}), geom.V(0, 0).Pt())
	e := NewEyedropper(env.Env)
	e.OnMouseDown(press(2, 2))
	if got := env.Colors.Primary().RGB; got != (color.RGBA{R: 200, A: 255}) {
		t.Errorf("primary = %v", got)
	}
	e.OnMouseDown(MouseEvent{Pos: geom.V(10, 10), Button: mouse.ButtonRight})
	if got := env.Colors.Secondary().RGB; got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("secondary over transparent = %v", got)
	}
}

func TestTextEditing(t *testing.T) {
	env := newTestEnv(t, 100, 60)
	tx := NewText(env.Env)
	tx.OnMouseDown(press(5, 5))
	for _, r := range "hi" {
		tx.OnKeyDown(runeKey(r))
	}
	tx.OnKeyDown(keyPress(key.CodeReturnEnter))
	tx.OnKeyDown(runeKey('y'))
	tx.OnKeyDown(runeKey('o'))
	tx.OnKeyDown(keyPress(key.CodeDeleteBackspace))
	tx.OnKeyDown(keyPress(key.CodeLeftArrow))
	tx.OnKeyDown(runeKey('x'))
	if got := tx.Text(); got != "hi\nxy" {
		t.Fatalf("text = %q", got)
	}
	if line, col := tx.Caret(); line != 1 || col != 1 {
		t.Errorf("caret = %d,%d", line, col)
	}
	tx.Commit()
	if tx.IsWriting() {
		t.Error("still writing after commit")
	}
	if env.History.Len() != 2 {
		t.Errorf("len = %d, want 2", env.History.Len())
	}
}

func TestTextEscapeDiscards(t *testing.T) {
	env := newTestEnv(t, 60, 40)
	tx := NewText(env.Env)
	tx.OnMouseDown(press(5, 5))
	tx.OnKeyDown(runeKey('a'))
	tx.OnKeyDown(keyPress(key.CodeEscape))
	if tx.IsWriting() || env.History.Len() != 1 {
		t.Errorf("escape kept text: writing=%v len=%d", tx.IsWriting(), env.History.Len())
	}
}

func TestStampRotatesAndRecords(t *testing.T) {
	env := newTestEnv(t, 80, 80)
	s := NewStamp(env.Env)
	s.SetScale(10)
	if s.Scale() != MaxStampScale {
		t.Errorf("scale = %v", s.Scale())
	}
	s.SetScale(1)
	s.OnKeyDown(runeKey('['))
	if s.Angle != 360-StampAngleStep {
		t.Errorf("angle = %v", s.Angle)
	}
	s.OnMouseMove(press(40, 40))
	if !s.Overlay() {
		t.Fatal("no overlay after move")
	}
	s.OnMouseDown(press(40, 40))
	if env.History.Len() != 2 {
		t.Errorf("len = %d", env.History.Len())
	}
	s.ClearOverlay()
	if got := env.Surface.Preview.At(40, 40); got.A != 0 {
		t.Errorf("overlay left on preview: %v", got)
	}
}

func TestGridSizeKeys(t *testing.T) {
	env := newTestEnv(t, 50, 50)
	g := NewGrid(env.Env)
	g.Toggle()
	if !g.Settings().Visible {
		t.Fatal("toggle did not show the grid")
	}
	g.OnKeyDown(runeKey('+'))
	if g.Settings().Size != DefaultGridSize+GridStep {
		t.Errorf("size = %d", g.Settings().Size)
	}
	g.SetSize(1)
	if g.Settings().Size != MinGridSize {
		t.Errorf("size = %d, want %d", g.Settings().Size, MinGridSize)
	}
}

func sortedKeys(m map[string][]KeyShortcut) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
