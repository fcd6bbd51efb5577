package tool

import (
	"math"

	"github.com/example/pixelpad/internal/geom"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
)

// MouseEvent is a pointer event in canvas coordinates.
type MouseEvent struct {
	Pos    geom.Vec2
	Button mouse.Button
	// Left reports whether the left button is held, the equivalent of a
	// buttons bitmask equal to one.
	Left bool
}

// FromMouse converts a window event already offset to canvas coordinates.
// held is the tracked state of the left button.
func FromMouse(e mouse.Event, held bool) MouseEvent {
	return MouseEvent{
		Pos:    geom.V(math.Round(float64(e.X)), math.Round(float64(e.Y))),
		Button: e.Button,
		Left:   held,
	}
}

// LeftPress builds a left button event at p.
func LeftPress(p geom.Vec2) MouseEvent {
	return MouseEvent{Pos: p, Button: mouse.ButtonLeft, Left: true}
}

// IsLeft reports whether the event was caused by the left button.
func (e MouseEvent) IsLeft() bool { return e.Button == mouse.ButtonLeft }

func isShift(e key.Event) bool {
	return e.Code == key.CodeLeftShift || e.Code == key.CodeRightShift
}

func isArrow(e key.Event) bool {
	switch e.Code {
	case key.CodeLeftArrow, key.CodeRightArrow, key.CodeUpArrow, key.CodeDownArrow:
		return true
	}
	return false
}
