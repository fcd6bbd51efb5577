package gallery

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{B: 255, A: 255})
	return img
}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSaveListLoadDelete(t *testing.T) {
	s := newStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	cat, err := s.Save("  cat ", []string{"pets", "sketch"}, testImage(6, 4))
	require.NoError(t, err)
	assert.Equal(t, "cat", cat.Name)
	assert.Equal(t, 6, cat.Width)
	assert.Equal(t, 4, cat.Height)
	assert.NotEmpty(t, cat.ID)

	s.now = func() time.Time { return base.Add(time.Hour) }
	dog, err := s.Save("dog", []string{"pets"}, testImage(3, 3))
	require.NoError(t, err)
	assert.NotEqual(t, cat.ID, dog.ID)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, dog.ID, all[0].ID, "newest first")

	sketches, err := s.List("SKETCH")
	require.NoError(t, err)
	require.Len(t, sketches, 1)
	assert.Equal(t, cat.ID, sketches[0].ID)

	img, meta, err := s.Load(cat.ID)
	require.NoError(t, err)
	assert.Equal(t, cat, meta)
	assert.Equal(t, image.Rect(0, 0, 6, 4), img.Bounds())
	assert.Equal(t, color.RGBA{B: 255, A: 255}, color.RGBAModel.Convert(img.At(1, 1)))

	require.NoError(t, s.Delete(cat.ID))
	_, _, err = s.Load(cat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(cat.ID), ErrNotFound)
	assert.NoFileExists(t, filepath.Join(s.Dir(), cat.ID+".png"))

	reopened, err := NewFileStore(s.Dir())
	require.NoError(t, err)
	left, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, dog.ID, left[0].ID)
}

func TestValidation(t *testing.T) {
	s := newStore(t)
	img := testImage(2, 2)

	_, err := s.Save("   ", nil, img)
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = s.Save(strings.Repeat("x", MaxNameLength+1), nil, img)
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = s.Save(strings.Repeat("é", MaxNameLength), nil, img)
	assert.NoError(t, err)

	_, err = s.Save("ok", []string{"a", "b", "c", "d", "e", "f"}, img)
	assert.ErrorIs(t, err, ErrInvalidTag)
	_, err = s.Save("ok", []string{"with space"}, img)
	assert.ErrorIs(t, err, ErrInvalidTag)
	_, err = s.Save("ok", []string{strings.Repeat("t", MaxTagLength+1)}, img)
	assert.ErrorIs(t, err, ErrInvalidTag)
	_, err = s.Save("ok", []string{""}, img)
	assert.ErrorIs(t, err, ErrInvalidTag)

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseTags(" a, ,b,"))
	assert.Nil(t, ParseTags(""))
}

func TestSubscribe(t *testing.T) {
	s := newStore(t)
	var got []Event
	cancel := s.Subscribe(func(e Event) { got = append(got, e) })

	d, err := s.Save("one", nil, testImage(1, 1))
	require.NoError(t, err)
	require.NoError(t, s.Delete(d.ID))
	cancel()
	_, err = s.Save("two", nil, testImage(1, 1))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, EventSaved, got[0].Type)
	assert.Equal(t, EventDeleted, got[1].Type)
	assert.Equal(t, d.ID, got[1].Drawing.ID)
}

func TestCorruptIndex(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), indexFile), []byte("drawings: [\n"), 0o644))
	_, err := s.List()
	assert.Error(t, err)
}
