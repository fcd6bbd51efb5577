// Package clipboard exchanges images and text with the system clipboard.
package clipboard

import (
	"errors"
	"image"
)

var (
	// ErrNoDisplay is returned on Unix when no X11 or Wayland display is set.
	ErrNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	// ErrEmpty is returned when the clipboard holds nothing of the requested kind.
	ErrEmpty = errors.New("clipboard does not contain the requested data")
)

// System adapts the package functions to the editor's clipboard interfaces.
type System struct{}

func (System) WriteImage(img image.Image) error { return WriteImage(img) }
func (System) ReadImage() (image.Image, error) { return ReadImage() }
func (System) WriteText(text string) error { return WriteText(text) }
func (System) ReadText() (string, error) { return ReadText() }
