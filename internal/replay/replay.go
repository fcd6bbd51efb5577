// Package replay drives the drawing tools from a text script without a
// window. Each line is an operation followed by its arguments:
//
//	# draw a red square outline
//	tool rectangle
//	color red
//	thickness 3
//	drag 10 10 60 60
//	undo
//	redo
//
// Coordinates are canvas pixels. Blank lines and lines starting with # are
// ignored.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/geom"
	"github.com/example/pixelpad/internal/history"
	"github.com/example/pixelpad/internal/surface"
	"github.com/example/pixelpad/internal/tool"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
)

// ErrUnknownOp is returned for a script line with an unknown operation.
var ErrUnknownOp = errors.New("unknown operation")

// Step is one script line.
type Step struct {
	Line int
	Op   string
	Args []string
}

func (s Step) String() string {
	return strings.TrimSpace(s.Op + " " + strings.Join(s.Args, " "))
}

// Parse reads a script.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		op := strings.ToLower(fields[0])
		if _, ok := ops[op]; !ok {
			return nil, fmt.Errorf("line %d: %w %q", n, ErrUnknownOp, fields[0])
		}
		steps = append(steps, Step{Line: n, Op: op, Args: fields[1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// Runner owns a canvas and the tools that draw on it.
type Runner struct {
	Surface  *surface.Surface
	History  *history.Stack
	Colors   *colors.Service
	Registry *tool.Registry
	Hotkeys  *tool.Hotkeys
	Clock    *Clock

	held bool
	last geom.Vec2
}

// New returns a runner over a copy of base. A nil base gives a transparent
// canvas of the given size. seed fixes the spray pattern.
func New(base image.Image, width, height int, seed uint64) *Runner {
	if base != nil {
		width, height = base.Bounds().Dx(), base.Bounds().Dy()
	}
	r := &Runner{
		Surface: surface.New(width, height),
		Colors:  colors.NewService(),
		Clock:   &Clock{},
	}
	r.History = history.New(r.Surface.Base)
	env := &tool.Env{Surface: r.Surface, History: r.History, Colors: r.Colors, Clock: r.Clock}
	r.Registry = tool.NewRegistry(env, tool.WithRand(rand.New(rand.NewPCG(seed, seed))))
	r.Hotkeys = tool.NewHotkeys(r.Registry)
	r.History.SetBaseline(history.CommandFunc(func() {
		if base != nil {
			r.Surface.Base.SetImage(base)
		}
	}))
	return r
}

// Run executes steps in order and stops at the first failing one.
func (r *Runner) Run(steps []Step) error {
	for _, s := range steps {
		if err := r.Exec(s); err != nil {
			return fmt.Errorf("line %d: %s: %w", s.Line, s, err)
		}
	}
	if err := r.Surface.Err(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Finish commits whatever the current tool still holds: open text, floating
// selections and pending previews.
func (r *Runner) Finish() {
	if r.held {
		r.Registry.MouseUp(tool.MouseEvent{Pos: r.last, Button: mouse.ButtonLeft})
		r.held = false
	}
	r.Registry.Text().Commit()
	for _, s := range r.Registry.Selections() {
		s.Cancel()
	}
	r.Registry.Line().RemovePreview()
	r.Registry.Stamp().ClearOverlay()
	r.Surface.Preview.Clear()
}

// Image returns the canvas over white.
func (r *Runner) Image() *image.RGBA { return r.Surface.Flatten() }

type opFunc func(r *Runner, args []string) error

var ops map[string]opFunc

func init() {
	ops = map[string]opFunc{
		"tool":       opTool,
		"color":      opColor,
		"primary":    opColor,
		"secondary":  opSecondary,
		"swap":       noArgs(func(r *Runner) { r.Colors.Swap() }),
		"thickness":  opThickness,
		"down":       opMouse(mouse.DirPress),
		"up":         opMouse(mouse.DirRelease),
		"move":       opMouse(mouse.DirNone),
		"out":        opEdge(false),
		"enter":      opEdge(true),
		"click":      opClick,
		"drag":       opDrag,
		"key":        opKey(key.DirPress),
		"keyup":      opKey(key.DirRelease),
		"type":       opType,
		"wait":       opWait,
		"undo":       action("undo"),
		"redo":       action("redo"),
		"select-all": action("select-all"),
		"copy":       action("copy"),
		"cut":        action("cut"),
		"paste":      action("paste"),
		"delete":     action("delete"),
		"grid":       action("grid"),
		"magnet":     action("magnet"),
	}
}

// Exec runs one step.
func (r *Runner) Exec(s Step) error {
	fn, ok := ops[s.Op]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownOp, s.Op)
	}
	return fn(r, s.Args)
}

func want(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("want %d arguments, got %d", n, len(args))
	}
	return nil
}

func noArgs(fn func(r *Runner)) opFunc {
	return func(r *Runner, args []string) error {
		if err := want(args, 0); err != nil {
			return err
		}
		fn(r)
		return nil
	}
}

func action(name string) opFunc {
	return func(r *Runner, args []string) error {
		if err := want(args, 0); err != nil {
			return err
		}
		_, err := r.Hotkeys.Run(name)
		return err
	}
}

func opTool(r *Runner, args []string) error {
	if err := want(args, 1); err != nil {
		return err
	}
	k, err := tool.ParseKind(args[0])
	if err != nil {
		return err
	}
	r.Registry.SetCurrent(k)
	return nil
}

func opColor(r *Runner, args []string) error {
	if err := want(args, 1); err != nil {
		return err
	}
	c, err := colors.Parse(args[0])
	if err != nil {
		return err
	}
	r.Colors.SetPrimary(c)
	return nil
}

func opSecondary(r *Runner, args []string) error {
	if err := want(args, 1); err != nil {
		return err
	}
	c, err := colors.Parse(args[0])
	if err != nil {
		return err
	}
	r.Colors.SetSecondary(c)
	return nil
}

func opThickness(r *Runner, args []string) error {
	if err := want(args, 1); err != nil {
		return err
	}
	t, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	d, ok := r.Registry.Current().(tool.DrawingTool)
	if !ok {
		return fmt.Errorf("%s has no thickness", r.Registry.Current().Name())
	}
	d.SetThickness(t)
	return nil
}

func parsePoint(args []string) (geom.Vec2, error) {
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return geom.Vec2{}, err
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return geom.Vec2{}, err
	}
	return geom.V(x, y), nil
}

// button reads an optional trailing left|right|middle.
func button(args []string, n int) (mouse.Button, error) {
	if len(args) == n {
		return mouse.ButtonLeft, nil
	}
	if len(args) != n+1 {
		return 0, fmt.Errorf("want %d or %d arguments, got %d", n, n+1, len(args))
	}
	switch strings.ToLower(args[n]) {
	case "left":
		return mouse.ButtonLeft, nil
	case "right":
		return mouse.ButtonRight, nil
	case "middle":
		return mouse.ButtonMiddle, nil
	}
	return 0, fmt.Errorf("unknown button %q", args[n])
}

func (r *Runner) mouse(dir mouse.Direction, p geom.Vec2, b mouse.Button) {
	r.last = p
	switch dir {
	case mouse.DirPress:
		if b == mouse.ButtonLeft {
			r.held = true
		}
		r.Registry.MouseDown(tool.MouseEvent{Pos: p, Button: b, Left: r.held})
	case mouse.DirRelease:
		if b == mouse.ButtonLeft {
			r.held = false
		}
		r.Registry.MouseUp(tool.MouseEvent{Pos: p, Button: b, Left: r.held})
	default:
		r.Registry.MouseMove(tool.MouseEvent{Pos: p, Left: r.held})
	}
}

func opMouse(dir mouse.Direction) opFunc {
	return func(r *Runner, args []string) error {
		b, err := button(args, 2)
		if err != nil {
			return err
		}
		p, err := parsePoint(args)
		if err != nil {
			return err
		}
		r.mouse(dir, p, b)
		return nil
	}
}

func opEdge(enter bool) opFunc {
	return func(r *Runner, args []string) error {
		if err := want(args, 2); err != nil {
			return err
		}
		p, err := parsePoint(args)
		if err != nil {
			return err
		}
		e := tool.MouseEvent{Pos: p, Left: r.held}
		if enter {
			r.Registry.MouseEnter(e)
		} else {
			r.Registry.MouseOut(e)
		}
		return nil
	}
}

func opClick(r *Runner, args []string) error {
	b, err := button(args, 2)
	if err != nil {
		return err
	}
	p, err := parsePoint(args)
	if err != nil {
		return err
	}
	r.mouse(mouse.DirPress, p, b)
	r.mouse(mouse.DirRelease, p, b)
	return nil
}

// opDrag presses at the first point, moves in unit steps along the longer
// axis to the second point and releases there.
func opDrag(r *Runner, args []string) error {
	if err := want(args, 4); err != nil {
		return err
	}
	from, err := parsePoint(args[:2])
	if err != nil {
		return err
	}
	to, err := parsePoint(args[2:])
	if err != nil {
		return err
	}
	d := to.Sub(from)
	n := int(max(abs(d.X), abs(d.Y)))
	r.mouse(mouse.DirPress, from, mouse.ButtonLeft)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		r.mouse(mouse.DirNone, geom.V(from.X+d.X*t, from.Y+d.Y*t), 0)
	}
	r.mouse(mouse.DirRelease, to, mouse.ButtonLeft)
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

var namedKeys = map[string]key.Code{
	"enter":     key.CodeReturnEnter,
	"return":    key.CodeReturnEnter,
	"escape":    key.CodeEscape,
	"esc":       key.CodeEscape,
	"backspace": key.CodeDeleteBackspace,
	"delete":    key.CodeDeleteForward,
	"left":      key.CodeLeftArrow,
	"right":     key.CodeRightArrow,
	"up":        key.CodeUpArrow,
	"down":      key.CodeDownArrow,
	"shift":     key.CodeLeftShift,
	"space":     key.CodeSpacebar,
	"tab":       key.CodeTab,
}

// ParseKey reads a key such as "a", "shift", "ctrl+z" or "ctrl+shift+z".
func ParseKey(s string) (key.Event, error) {
	parts := strings.Split(strings.ToLower(s), "+")
	e := key.Event{Rune: -1}
	for _, m := range parts[:len(parts)-1] {
		switch m {
		case "ctrl", "control":
			e.Modifiers |= key.ModControl
		case "shift":
			e.Modifiers |= key.ModShift
		case "alt":
			e.Modifiers |= key.ModAlt
		default:
			return key.Event{}, fmt.Errorf("unknown modifier %q in %q", m, s)
		}
	}
	name := parts[len(parts)-1]
	if c, ok := namedKeys[name]; ok {
		e.Code = c
		if c == key.CodeSpacebar {
			e.Rune = ' '
		}
		return e, nil
	}
	runes := []rune(name)
	if len(runes) != 1 {
		return key.Event{}, fmt.Errorf("unknown key %q", s)
	}
	return runeEvent(runes[0], e.Modifiers), nil
}

// runeEvent builds the event a keyboard sends for a printable character.
func runeEvent(ch rune, mods key.Modifiers) key.Event {
	e := key.Event{Rune: ch, Modifiers: mods}
	lower := unicode.ToLower(ch)
	switch {
	case lower >= 'a' && lower <= 'z':
		e.Code = key.CodeA + key.Code(lower-'a')
	case ch >= '1' && ch <= '9':
		e.Code = key.Code1 + key.Code(ch-'1')
	case ch == '0':
		e.Code = key.Code0
	case ch == ' ':
		e.Code = key.CodeSpacebar
	}
	if unicode.IsUpper(ch) {
		e.Modifiers |= key.ModShift
	}
	if mods&key.ModControl != 0 {
		e.Rune = -1
	}
	return e
}

// press gives shortcuts the first chance at a key, like the editor window.
func (r *Runner) press(e key.Event) error {
	e.Direction = key.DirPress
	name, err := r.Hotkeys.Handle(e)
	if err != nil {
		return err
	}
	if name == "" {
		r.Registry.KeyDown(e)
	}
	return nil
}

func opKey(dir key.Direction) opFunc {
	return func(r *Runner, args []string) error {
		if err := want(args, 1); err != nil {
			return err
		}
		e, err := ParseKey(args[0])
		if err != nil {
			return err
		}
		if dir == key.DirRelease {
			e.Direction = dir
			r.Registry.KeyUp(e)
			return nil
		}
		return r.press(e)
	}
}

// opType sends each character of its arguments, joined by single spaces.
func opType(r *Runner, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("nothing to type")
	}
	for _, ch := range strings.Join(args, " ") {
		if err := r.press(runeEvent(ch, 0)); err != nil {
			return err
		}
	}
	return nil
}

func opWait(r *Runner, args []string) error {
	if err := want(args, 1); err != nil {
		return err
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("negative wait %s", d)
	}
	r.Clock.Advance(d)
	return nil
}
