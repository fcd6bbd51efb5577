package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/example/pixelpad/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Save   bool `toml:"save"`
	Export bool `toml:"export"`
	Copy   bool `toml:"copy"`
}

// Tools holds the defaults applied to the drawing tools on startup and on
// every config reload. Zero values leave the tool default untouched.
type Tools struct {
	Thickness        float64 `toml:"thickness"`
	TraceType        string  `toml:"trace_type"`
	PolygonSides     int     `toml:"polygon_sides"`
	Junction         bool    `toml:"junction"`
	JunctionDiameter float64 `toml:"junction_diameter"`
	SprayDiameter    float64 `toml:"spray_diameter"`
	SprayDroplet     float64 `toml:"spray_droplet"`
	SprayRate        int     `toml:"spray_rate"`
	FillTolerance    float64 `toml:"fill_tolerance"`
	TextSize         float64 `toml:"text_size"`
	Stamp            string  `toml:"stamp"`
	StampScale       float64 `toml:"stamp_scale"`
}

// Grid holds the grid overlay and magnet settings.
type Grid struct {
	Size    int     `toml:"size"`
	Opacity float64 `toml:"opacity"`
	Magnet  bool    `toml:"magnet"`
	Anchor  string  `toml:"anchor"`
}

// Config holds the application configuration.
type Config struct {
	Theme        string `toml:"theme"`
	GalleryDir   string `toml:"gallery_dir"`
	DefaultTool  string `toml:"default_tool"`
	CanvasWidth  int    `toml:"canvas_width"`
	CanvasHeight int    `toml:"canvas_height"`

	Tools  Tools  `toml:"tools"`
	Grid   Grid   `toml:"grid"`
	Notify Notify `toml:"notify"`

	Themes map[string]*theme.Theme `toml:"-"`
}

const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		DefaultTool:  "pencil",
		CanvasWidth:  DefaultCanvasWidth,
		CanvasHeight: DefaultCanvasHeight,
		Grid:         Grid{Size: 20, Opacity: 0.5, Anchor: "top-left"},
		Themes:       make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.GalleryDir != "" {
		fmt.Fprintf(&sb, "gallery_dir = %s\n", c.GalleryDir)
	}
	if c.DefaultTool != "" {
		fmt.Fprintf(&sb, "default_tool = %s\n", c.DefaultTool)
	}
	fmt.Fprintf(&sb, "canvas_width = %d\n", c.CanvasWidth)
	fmt.Fprintf(&sb, "canvas_height = %d\n", c.CanvasHeight)
	sb.WriteString("\n")

	t := c.Tools
	sb.WriteString("[tools]\n")
	writeNonZero(&sb, "thickness", t.Thickness)
	if t.TraceType != "" {
		fmt.Fprintf(&sb, "trace_type = %s\n", t.TraceType)
	}
	if t.PolygonSides != 0 {
		fmt.Fprintf(&sb, "polygon_sides = %d\n", t.PolygonSides)
	}
	fmt.Fprintf(&sb, "junction = %v\n", t.Junction)
	writeNonZero(&sb, "junction_diameter", t.JunctionDiameter)
	writeNonZero(&sb, "spray_diameter", t.SprayDiameter)
	writeNonZero(&sb, "spray_droplet", t.SprayDroplet)
	if t.SprayRate != 0 {
		fmt.Fprintf(&sb, "spray_rate = %d\n", t.SprayRate)
	}
	writeNonZero(&sb, "fill_tolerance", t.FillTolerance)
	writeNonZero(&sb, "text_size", t.TextSize)
	if t.Stamp != "" {
		fmt.Fprintf(&sb, "stamp = %s\n", t.Stamp)
	}
	writeNonZero(&sb, "stamp_scale", t.StampScale)
	sb.WriteString("\n")

	sb.WriteString("[grid]\n")
	fmt.Fprintf(&sb, "size = %d\n", c.Grid.Size)
	fmt.Fprintf(&sb, "opacity = %g\n", c.Grid.Opacity)
	fmt.Fprintf(&sb, "magnet = %v\n", c.Grid.Magnet)
	if c.Grid.Anchor != "" {
		fmt.Fprintf(&sb, "anchor = %s\n", c.Grid.Anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, toHex(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeNonZero(sb *strings.Builder, key string, v float64) {
	if v != 0 {
		fmt.Fprintf(sb, "%s = %g\n", key, v)
	}
}

func toHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
