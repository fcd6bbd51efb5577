package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/example/pixelpad/internal/theme"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time or by -config
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load attempts to load the configuration.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil // No config file found, return defaults
	}
	return LoadFile(path)
}

// LoadFile reads path as TOML when it ends in .toml and as RC otherwise.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(bytes.NewReader(data))
}

// tomlThemes decodes theme blocks, which TOML files write as
// [themes.NAME] tables of hex strings.
type tomlThemes struct {
	Themes map[string]map[string]string `toml:"themes"`
}

// ParseTOML decodes a TOML configuration over the defaults.
func ParseTOML(data []byte) (*Config, error) {
	cfg := New()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}
	var extra tomlThemes
	if err := toml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("decode toml themes: %w", err)
	}
	for name, fields := range extra.Themes {
		t := theme.Default()
		t.Name = name
		for k, v := range fields {
			if err := theme.Set(t, k, v); err != nil {
				return nil, fmt.Errorf("error in [themes.%s]: %w", name, err)
			}
		}
		cfg.Themes[name] = t
	}
	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	// 1. Variable override path
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	// 2. Local run directory (dev mode)
	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".pixelpadrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	// 3. XDG config path, rc first
	for _, name := range []string{"config.rc", "config.toml"} {
		p := filepath.Join(DefaultDir(), name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultDir is the per-user configuration directory.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pixelpad")
}
