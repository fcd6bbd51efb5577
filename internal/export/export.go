// Package export writes drawings to image and document formats, optionally
// through a colour filter.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/jung-kurt/gofpdf"
)

// ErrUnknownFormat is returned for format or filter names that are not
// supported.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an output encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	PDF  Format = "pdf"
)

// Filter is a colour effect applied before encoding.
type Filter string

const (
	FilterNone      Filter = "none"
	FilterGrayscale Filter = "grayscale"
	FilterSepia     Filter = "sepia"
	FilterInvert    Filter = "invert"
	FilterBlur      Filter = "blur"
	FilterBrighten  Filter = "brighten"
)

// Filters lists the supported filters.
func Filters() []Filter {
	return []Filter{FilterNone, FilterGrayscale, FilterSepia, FilterInvert, FilterBlur, FilterBrighten}
}

// DefaultQuality is the JPEG quality used when Options.Quality is zero.
const DefaultQuality = 90

// Options tunes Encode.
type Options struct {
	Filter Filter
	// Quality is the JPEG quality, 1..100.
	Quality int
	// Title is stored in the PDF metadata.
	Title string
	// Shadow adds a drop shadow around the drawing when set.
	Shadow *Shadow
}

// ParseFormat accepts a format name, with "jpg" as an alias for jpeg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseFilter accepts a filter name. An empty name is FilterNone.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterNone, nil
	}
	for _, f := range Filters() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: filter %q", ErrUnknownFormat, s)
}

// Apply runs the filter over img. FilterNone returns img unchanged.
func Apply(img image.Image, f Filter) (image.Image, error) {
	switch f {
	case FilterNone, "":
		return img, nil
	case FilterGrayscale:
		return effect.Grayscale(img), nil
	case FilterSepia:
		return effect.Sepia(img), nil
	case FilterInvert:
		return effect.Invert(img), nil
	case FilterBlur:
		return blur.Gaussian(img, 2), nil
	case FilterBrighten:
		return adjust.Brightness(img, 0.2), nil
	}
	return nil, fmt.Errorf("%w: filter %q", ErrUnknownFormat, f)
}

// Encode filters img and writes it to w in format f.
func Encode(w io.Writer, img image.Image, f Format, opts Options) error {
	img, err := Apply(img, opts.Filter)
	if err != nil {
		return err
	}
	if opts.Shadow != nil {
		img, _ = DropShadow(img, *opts.Shadow)
		if f == JPEG {
			img = onWhite(img)
		}
	}
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		q := opts.Quality
		if q <= 0 {
			q = DefaultQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: min(q, 100)})
	case PDF:
		return encodePDF(w, img, opts.Title)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// encodePDF places img on an A4 page, scaled to fit inside the margins and
// centred, landscape when the image is wider than tall.
func encodePDF(w io.Writer, img image.Image, title string) error {
	b := img.Bounds()
	orientation := "P"
	if b.Dx() > b.Dy() {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetCreator("pixelpad", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.AddPage()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode page image: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("drawing", opts, &buf)

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	boxW, boxH := pageW-left-right, pageH-top-bottom
	scale := min(boxW/float64(b.Dx()), boxH/float64(b.Dy()))
	imgW, imgH := float64(b.Dx())*scale, float64(b.Dy())*scale
	x := left + (boxW-imgW)/2
	y := top + (boxH-imgH)/2
	pdf.ImageOptions("drawing", x, y, imgW, imgH, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}
