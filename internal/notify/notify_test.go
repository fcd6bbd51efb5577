package notify

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/pixelpad/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func recorder(out *[]sent, err error) SendFunc {
	return func(title, body string, opts platform.Options) error {
		_, statErr := os.Stat(opts.IconPath)
		*out = append(*out, sent{title, body, opts, opts.IconPath != "" && statErr == nil})
		return err
	}
}

func TestDisabledEventsAreSilent(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences(), recorder(&got, nil))
	n.Save("cat", nil)
	n.Export("/tmp/cat.png")
	n.Copy("")
	if len(got) != 0 {
		t.Fatalf("sent %d notifications while disabled", len(got))
	}
	var nilNotifier *Notifier
	nilNotifier.Enable(EventSave, true)
	nilNotifier.Save("x", nil)
}

func TestSaveAttachesThumbnail(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences(), recorder(&got, nil))
	n.Enable(EventSave, true)
	n.Save("cat", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(got) != 1 {
		t.Fatalf("sent %d", len(got))
	}
	if got[0].body != `Saved "cat" to the gallery` || got[0].title != "pixelpad" {
		t.Errorf("notification = %+v", got[0])
	}
	if !got[0].iconExisted {
		t.Error("thumbnail missing while sending")
	}
	if _, err := os.Stat(got[0].opts.IconPath); !os.IsNotExist(err) {
		t.Error("thumbnail not removed")
	}
}

func TestExportUsesImageAsIcon(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "out.png")
	pdf := filepath.Join(dir, "out.pdf")
	for _, p := range []string{png, pdf} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	var got []sent
	n := New(DefaultPreferences(), recorder(&got, errors.New("no bus")))
	n.Enable(EventExport, true)
	n.Export(png)
	n.Export(pdf)
	if len(got) != 2 {
		t.Fatalf("sent %d", len(got))
	}
	if got[0].opts.IconPath != png || got[1].opts.IconPath != "" {
		t.Errorf("icons = %q, %q", got[0].opts.IconPath, got[1].opts.IconPath)
	}
}

func TestCustomTemplate(t *testing.T) {
	t.Setenv("PIXELPAD_NOTIFY_COPY_TEXT", "Clipboard: %s")
	t.Setenv("PIXELPAD_NOTIFY_TITLE", "Paint")
	var got []sent
	n := New(LoadPreferences(), recorder(&got, nil))
	n.Enable(EventCopy, true)
	n.Copy("")
	if len(got) != 1 || got[0].body != "Clipboard: selection" || got[0].title != "Paint" {
		t.Errorf("got %+v", got)
	}
}
