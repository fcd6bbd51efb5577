// Package autosave keeps a copy of the canvas on disk after every history
// change so an interrupted session can be resumed.
package autosave

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultPath is ~/.cache/pixelpad/autosave.png.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pixelpad", "autosave.png")
}

// Store writes snapshots of Source to Path. It implements
// history.Snapshotter.
type Store struct {
	Path   string
	Source func() image.Image
}

// New returns a store for path reading the canvas from src.
func New(path string, src func() image.Image) *Store {
	return &Store{Path: path, Source: src}
}

// SaveSnapshot writes the current canvas. The file is replaced atomically so
// a crash never leaves a truncated PNG behind.
func (s *Store) SaveSnapshot() error {
	if s.Source == nil {
		return nil
	}
	img := s.Source()
	if img == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("autosave dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".autosave-*.png")
	if err != nil {
		return fmt.Errorf("autosave temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("autosave encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("autosave close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("autosave rename: %w", err)
	}
	return nil
}

// LoadBaseline returns the saved canvas, or a white canvas of the given size
// when nothing was saved yet.
func (s *Store) LoadBaseline(width, height int) (image.Image, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Blank(width, height), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("autosave %s: %w", s.Path, err)
	}
	return img, nil
}

// Clear removes the saved canvas.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Blank returns an opaque white image.
func Blank(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}
