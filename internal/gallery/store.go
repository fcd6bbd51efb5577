package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const indexFile = "index.yaml"

type index struct {
	Drawings []Drawing `yaml:"drawings"`
}

// FileStore keeps drawings as <id>.png next to an index.yaml file.
type FileStore struct {
	dir string
	now func() time.Time

	mu     sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// NewFileStore opens or creates a gallery in dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("gallery dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now, subs: map[int]func(Event){}}, nil
}

// DefaultDir is ~/.local/share/pixelpad/gallery, or the cache directory
// when no home is known.
func DefaultDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "pixelpad", "gallery")
	}
	dir, _ := os.UserCacheDir()
	return filepath.Join(dir, "pixelpad", "gallery")
}

// Dir returns the gallery directory.
func (s *FileStore) Dir() string { return s.dir }

// Subscribe registers fn for change events. Events are delivered on the
// goroutine that made the change.
func (s *FileStore) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *FileStore) publish(e Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}

// Save stores img under a new ID.
func (s *FileStore) Save(name string, tags []string, img image.Image) (Drawing, error) {
	if err := ValidateName(name); err != nil {
		return Drawing{}, err
	}
	if err := ValidateTags(tags); err != nil {
		return Drawing{}, err
	}
	if img == nil {
		return Drawing{}, errors.New("gallery: nil image")
	}
	b := img.Bounds()
	d := Drawing{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(name),
		Tags:    append([]string(nil), tags...),
		Created: s.now().UTC().Truncate(time.Second),
		Width:   b.Dx(),
		Height:  b.Dy(),
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Drawing{}, fmt.Errorf("encode drawing: %w", err)
	}

	s.mu.Lock()
	err := s.saveLocked(d, buf.Bytes())
	s.mu.Unlock()
	if err != nil {
		return Drawing{}, err
	}
	s.publish(Event{Type: EventSaved, Drawing: d})
	return d, nil
}

func (s *FileStore) saveLocked(d Drawing, data []byte) error {
	idx, err := s.readIndex()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.imagePath(d.ID), data); err != nil {
		return err
	}
	idx.Drawings = append(idx.Drawings, d)
	if err := s.writeIndex(idx); err != nil {
		os.Remove(s.imagePath(d.ID))
		return err
	}
	return nil
}

// List returns the drawings carrying every tag in tags, newest first.
func (s *FileStore) List(tags ...string) ([]Drawing, error) {
	s.mu.Lock()
	idx, err := s.readIndex()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]Drawing, 0, len(idx.Drawings))
next:
	for _, d := range idx.Drawings {
		for _, t := range tags {
			if t != "" && !d.HasTag(t) {
				continue next
			}
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out, nil
}

// Get returns the metadata of one drawing.
func (s *FileStore) Get(id string) (Drawing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.readIndex()
	if err != nil {
		return Drawing{}, err
	}
	i := find(idx, id)
	if i < 0 {
		return Drawing{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return idx.Drawings[i], nil
}

// Load decodes the image of one drawing.
func (s *FileStore) Load(id string) (image.Image, Drawing, error) {
	d, err := s.Get(id)
	if err != nil {
		return nil, Drawing{}, err
	}
	f, err := os.Open(s.imagePath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Drawing{}, fmt.Errorf("%w: %s has no image", ErrNotFound, id)
	}
	if err != nil {
		return nil, Drawing{}, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, Drawing{}, fmt.Errorf("decode %s: %w", id, err)
	}
	return img, d, nil
}

// ImagePath returns the PNG file of a drawing.
func (s *FileStore) ImagePath(id string) (string, error) {
	if _, err := s.Get(id); err != nil {
		return "", err
	}
	return s.imagePath(id), nil
}

// Delete removes a drawing and its image.
func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	idx, err := s.readIndex()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	i := find(idx, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	d := idx.Drawings[i]
	idx.Drawings = append(idx.Drawings[:i], idx.Drawings[i+1:]...)
	err = s.writeIndex(idx)
	if err == nil {
		if rerr := os.Remove(s.imagePath(id)); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			err = rerr
		}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventDeleted, Drawing: d})
	return nil
}

func find(idx index, id string) int {
	for i, d := range idx.Drawings {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (s *FileStore) imagePath(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".png")
}

func (s *FileStore) readIndex() (index, error) {
	var idx index
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return idx, err
	}
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return idx, fmt.Errorf("read %s: %w", indexFile, err)
	}
	return idx, nil
}

func (s *FileStore) writeIndex(idx index) error {
	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("write %s: %w", indexFile, err)
	}
	return writeFileAtomic(filepath.Join(s.dir, indexFile), data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
