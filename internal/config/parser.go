package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/pixelpad/internal/theme"
)

// Parse reads configuration in RC format from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if name, ok := strings.CutPrefix(currentSection, "theme."); ok {
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = name
				cfg.Themes[name] = currentTheme
			}
			continue
		}

		// Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) > 1 {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = theme.Set(currentTheme, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		case currentSection == "tools":
			err = setToolsField(&cfg.Tools, key, value)
		case currentSection == "grid":
			err = setGridField(&cfg.Grid, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "gallery_dir":
		cfg.GalleryDir = value
	case "default_tool":
		cfg.DefaultTool = value
	case "canvas_width":
		cfg.CanvasWidth, err = parseInt(key, value)
	case "canvas_height":
		cfg.CanvasHeight, err = parseInt(key, value)
	}
	return err
}

func setToolsField(t *Tools, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "thickness":
		t.Thickness, err = parseFloat(key, value)
	case "trace_type":
		t.TraceType = value
	case "polygon_sides":
		t.PolygonSides, err = parseInt(key, value)
	case "junction":
		t.Junction, err = parseBool(key, value)
	case "junction_diameter":
		t.JunctionDiameter, err = parseFloat(key, value)
	case "spray_diameter":
		t.SprayDiameter, err = parseFloat(key, value)
	case "spray_droplet":
		t.SprayDroplet, err = parseFloat(key, value)
	case "spray_rate":
		t.SprayRate, err = parseInt(key, value)
	case "fill_tolerance":
		t.FillTolerance, err = parseFloat(key, value)
	case "text_size":
		t.TextSize, err = parseFloat(key, value)
	case "stamp":
		t.Stamp = value
	case "stamp_scale":
		t.StampScale, err = parseFloat(key, value)
	}
	return err
}

func setGridField(g *Grid, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "size":
		g.Size, err = parseInt(key, value)
	case "opacity":
		g.Opacity, err = parseFloat(key, value)
	case "magnet":
		g.Magnet, err = parseBool(key, value)
	case "anchor":
		g.Anchor = value
	}
	return err
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := parseBool(key, value)
	if err != nil {
		return err
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	return b, nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	return f, nil
}
