package export

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JPG")
	require.NoError(t, err)
	assert.Equal(t, JPEG, f)

	f, err = FormatFromPath("/tmp/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, PDF, f)

	_, err = ParseFormat("bmp")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterNone, f)

	for _, want := range Filters() {
		got, err := ParseFilter(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = ParseFilter("emboss")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestApplyFilters(t *testing.T) {
	src := testImage()

	same, err := Apply(src, FilterNone)
	require.NoError(t, err)
	assert.Same(t, src, same)

	gray, err := Apply(src, FilterGrayscale)
	require.NoError(t, err)
	r, g, b, _ := gray.At(3, 2).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)

	inv, err := Apply(src, FilterInvert)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 55, G: 215, B: 215, A: 255}, color.RGBAModel.Convert(inv.At(0, 0)))

	bright, err := Apply(src, FilterBrighten)
	require.NoError(t, err)
	_, bg, _, _ := bright.At(1, 1).RGBA()
	_, sg, _, _ := src.At(1, 1).RGBA()
	assert.Greater(t, bg, sg)

	for _, f := range []Filter{FilterSepia, FilterBlur} {
		out, err := Apply(src, f)
		require.NoError(t, err)
		assert.Equal(t, src.Bounds(), out.Bounds())
	}
}

func TestEncodePNGAndJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(), PNG, Options{Filter: FilterInvert}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 55, G: 215, B: 215, A: 255}, color.RGBAModel.Convert(img.At(2, 2)))

	buf.Reset()
	require.NoError(t, Encode(&buf, testImage(), JPEG, Options{Quality: 500}))
	cfg, err := jpeg.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 4, cfg.Height)

	assert.ErrorIs(t, Encode(&buf, testImage(), Format("tiff"), Options{}), ErrUnknownFormat)
}

func TestEncodePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(), PDF, Options{Title: "cat"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "/Subtype /Image")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, WriteFile(path, testImage(), "", Options{}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)

	err = WriteFile(filepath.Join(t.TempDir(), "out.gif"), testImage(), "", Options{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDropShadow(t *testing.T) {
	s := Shadow{Radius: 2, Offset: image.Pt(4, 3), Opacity: 0.5}
	out, at := DropShadow(testImage(), s)
	assert.Equal(t, image.Rect(0, 0, 14, 9), out.Bounds())
	assert.Equal(t, image.Point{}, at)

	assert.Equal(t, color.RGBA{R: 200, G: 40, B: 40, A: 255}, out.RGBAAt(3, 2))
	shade := out.RGBAAt(10, 5)
	assert.NotZero(t, shade.A, "no shadow below the drawing")
	assert.Less(t, shade.A, uint8(255))
	assert.Zero(t, out.RGBAAt(13, 0).A, "shadow outside its offset")
}

func TestDropShadowNegativeOffset(t *testing.T) {
	out, at := DropShadow(testImage(), Shadow{Offset: image.Pt(-2, -1), Opacity: 1})
	assert.Equal(t, image.Rect(0, 0, 10, 5), out.Bounds())
	assert.Equal(t, image.Pt(2, 1), at)
	assert.Equal(t, uint8(255), out.RGBAAt(0, 0).A)
}

func TestDropShadowDisabled(t *testing.T) {
	out, at := DropShadow(testImage(), Shadow{Radius: 5, Offset: image.Pt(3, 3)})
	assert.Equal(t, testImage().Bounds(), out.Bounds())
	assert.Equal(t, image.Point{}, at)
}

func TestEncodeWithShadow(t *testing.T) {
	var buf bytes.Buffer
	sh := DefaultShadow()
	require.NoError(t, Encode(&buf, testImage(), PNG, Options{Shadow: &sh}))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 28, cfg.Height)

	buf.Reset()
	require.NoError(t, Encode(&buf, testImage(), JPEG, Options{Shadow: &sh}))
	img, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	r, g, b, _ := img.At(img.Bounds().Dx()-1, 0).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}
