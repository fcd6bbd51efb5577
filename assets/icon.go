// Package assets renders the pixelpad application icon.
package assets

import (
	"bytes"
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/gogpu/gg"
)

var sizes = []int{16, 32, 48, 64, 128, 256}

var (
	mu       sync.Mutex
	images   = map[int]image.Image{}
	pngBytes = map[int][]byte{}
)

// IconSizes lists the icon sizes that can be rendered.
func IconSizes() []int {
	return slices.Clone(sizes)
}

// IconImage returns the icon rendered at size pixels square.
func IconImage(size int) (image.Image, error) {
	mu.Lock()
	defer mu.Unlock()
	return iconLocked(size)
}

func iconLocked(size int) (image.Image, error) {
	if img, ok := images[size]; ok {
		return img, nil
	}
	if !slices.Contains(sizes, size) {
		return nil, fmt.Errorf("icon %dpx not available", size)
	}
	img, err := render(float64(size))
	if err != nil {
		return nil, fmt.Errorf("render %dpx icon: %w", size, err)
	}
	images[size] = img
	return img, nil
}

// IconPNG returns a copy of the PNG encoding of the icon at size.
func IconPNG(size int) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()
	if data, ok := pngBytes[size]; ok {
		return bytes.Clone(data), nil
	}
	img, err := iconLocked(size)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContextForImage(img)
	defer dc.Close()
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	pngBytes[size] = buf.Bytes()
	return bytes.Clone(buf.Bytes()), nil
}

// render draws a paint palette with three wells and a brush stroke, laid out
// on a 16 unit grid and scaled to s.
func render(s float64) (image.Image, error) {
	dc := gg.NewContext(int(s), int(s))
	defer dc.Close()
	u := s / 16

	dc.DrawRoundedRectangle(u, u, 14*u, 14*u, 3*u)
	dc.SetRGB(0.96, 0.87, 0.70)
	if err := dc.Fill(); err != nil {
		return nil, err
	}
	dc.DrawCircle(11*u, 11*u, 1.5*u)
	dc.SetRGB(1, 1, 1)
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	wells := []struct {
		x, y    float64
		r, g, b float64
	}{
		{5, 5, 0.86, 0.20, 0.18},
		{10, 4.5, 0.16, 0.50, 0.73},
		{4.5, 10, 0.95, 0.77, 0.06},
	}
	for _, w := range wells {
		dc.DrawCircle(w.x*u, w.y*u, 1.8*u)
		dc.SetRGB(w.r, w.g, w.b)
		if err := dc.Fill(); err != nil {
			return nil, err
		}
	}

	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineWidth(max(1.2*u, 1))
	dc.SetRGB(0.17, 0.24, 0.31)
	dc.DrawLine(7*u, 13*u, 13*u, 7*u)
	if err := dc.Stroke(); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}
