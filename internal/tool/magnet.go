package tool

import (
	"fmt"
	"math"
	"strings"

	"github.com/example/pixelpad/internal/geom"
)

// Anchor is the point of a selection that snaps to the grid.
type Anchor int

const (
	AnchorTopLeft Anchor = iota
	AnchorTopMid
	AnchorTopRight
	AnchorMidLeft
	AnchorCenter
	AnchorMidRight
	AnchorBottomLeft
	AnchorBottomMid
	AnchorBottomRight
)

var anchorNames = [...]string{
	"top-left", "top-mid", "top-right",
	"mid-left", "center", "mid-right",
	"bottom-left", "bottom-mid", "bottom-right",
}

func (a Anchor) String() string {
	if a < 0 || int(a) >= len(anchorNames) {
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
	return anchorNames[a]
}

// ParseAnchor accepts the names produced by String.
func ParseAnchor(s string) (Anchor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range anchorNames {
		if n == s {
			return Anchor(i), nil
		}
	}
	return 0, fmt.Errorf("unknown anchor %q", s)
}

// offset is the anchor position relative to the top-left of a box of the
// given size.
func (a Anchor) offset(size geom.Vec2) geom.Vec2 {
	col, row := float64(int(a)%3), float64(int(a)/3)
	return geom.V(size.X*col/2, size.Y*row/2)
}

// magnetize returns the top-left that puts the anchor of a box of the given
// size on the grid point nearest to where it would be at topLeft.
func magnetize(topLeft, size geom.Vec2, a Anchor, grid float64) geom.Vec2 {
	p := topLeft.Add(a.offset(size))
	p = geom.V(math.Round(p.X/grid)*grid, math.Round(p.Y/grid)*grid)
	return p.Sub(a.offset(size))
}

// nextLine returns the next grid line after v in direction dir (-1 or 1).
func nextLine(v, grid, dir float64) float64 {
	switch {
	case dir > 0:
		return math.Floor(v/grid)*grid + grid
	case dir < 0:
		return math.Ceil(v/grid)*grid - grid
	}
	return v
}

// magnetStep moves the anchor of a box to the next grid line in the
// direction of d.
func magnetStep(topLeft, size geom.Vec2, a Anchor, grid float64, d geom.Vec2) geom.Vec2 {
	p := topLeft.Add(a.offset(size))
	if d.X != 0 {
		p.X = nextLine(p.X, grid, d.X)
	}
	if d.Y != 0 {
		p.Y = nextLine(p.Y, grid, d.Y)
	}
	return p.Sub(a.offset(size))
}
