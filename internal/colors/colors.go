// Package colors holds the primary and secondary drawing colours and parses
// colour strings from config and scripts.
package colors

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/colornames"
)

// MaxRecent is how many recently used colours are remembered.
const MaxRecent = 10

// Color is an opaque RGB value with a separate opacity in [0,1].
type Color struct {
	RGB     color.RGBA
	Opacity float64
}

// New returns c at full opacity.
func New(c color.RGBA) Color {
	c.A = 255
	return Color{RGB: c, Opacity: 1}
}

// RGBA returns the colour with the opacity folded into alpha, premultiplied.
func (c Color) RGBA() color.RGBA {
	op := c.Opacity
	if op < 0 {
		op = 0
	}
	if op > 1 {
		op = 1
	}
	a := uint8(op*255 + 0.5)
	return color.RGBA{
		R: uint8(uint32(c.RGB.R) * uint32(a) / 255),
		G: uint8(uint32(c.RGB.G) * uint32(a) / 255),
		B: uint8(uint32(c.RGB.B) * uint32(a) / 255),
		A: a,
	}
}

// Hex renders the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.RGB.R, c.RGB.G, c.RGB.B)
}

func (c Color) String() string {
	if c.Opacity >= 1 {
		return c.Hex()
	}
	return fmt.Sprintf("%s@%.2f", c.Hex(), c.Opacity)
}

var (
	Black = New(color.RGBA{})
	White = New(color.RGBA{R: 255, G: 255, B: 255})
)

// Service tracks the active colours.
type Service struct {
	mu        sync.RWMutex
	primary   Color
	secondary Color
	recent    []Color
}

// NewService starts with black primary and white secondary.
func NewService() *Service {
	return &Service{primary: Black, secondary: White}
}

func (s *Service) Primary() Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary
}

func (s *Service) Secondary() Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secondary
}

func (s *Service) SetPrimary(c Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary = c
	s.remember(c)
}

func (s *Service) SetSecondary(c Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secondary = c
	s.remember(c)
}

// Swap exchanges primary and secondary.
func (s *Service) Swap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary, s.secondary = s.secondary, s.primary
}

// Recent returns the last distinct colours, newest first.
func (s *Service) Recent() []Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Color, len(s.recent))
	copy(out, s.recent)
	return out
}

func (s *Service) remember(c Color) {
	for i, r := range s.recent {
		if r.RGB == c.RGB {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			break
		}
	}
	s.recent = append([]Color{c}, s.recent...)
	if len(s.recent) > MaxRecent {
		s.recent = s.recent[:MaxRecent]
	}
}

// Parse accepts a colour name, #rgb, #rrggbb, #rrggbbaa or rgb(r,g,b).
func Parse(v string) (Color, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return Color{}, fmt.Errorf("empty colour")
	}
	if c, ok := colornames.Map[v]; ok {
		return New(c), nil
	}
	if strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")") {
		parts := strings.Split(v[4:len(v)-1], ",")
		if len(parts) != 3 {
			return Color{}, fmt.Errorf("invalid colour %q", v)
		}
		var ch [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return Color{}, fmt.Errorf("invalid colour %q: %w", v, err)
			}
			ch[i] = uint8(n)
		}
		return New(color.RGBA{R: ch[0], G: ch[1], B: ch[2]}), nil
	}
	hex := strings.TrimPrefix(v, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid colour %q", v)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", v, err)
	}
	if len(hex) == 6 {
		return New(color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}), nil
	}
	c := New(color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8)})
	c.Opacity = float64(uint8(n)) / 255
	return c, nil
}
