package main

import (
	"flag"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/example/pixelpad/internal/autosave"
	"github.com/example/pixelpad/internal/clipboard"
	"github.com/example/pixelpad/internal/config"
	"github.com/example/pixelpad/internal/editor"
	"github.com/example/pixelpad/internal/export"
	"github.com/example/pixelpad/internal/gallery"
)

type editCmd struct {
	file       string
	width      int
	height     int
	name       string
	tags       string
	exportPath string
	filter     string
	noAutosave bool
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "image to open instead of the autosaved drawing")
	fs.IntVar(&e.width, "width", 0, "canvas width for a new drawing")
	fs.IntVar(&e.height, "height", 0, "canvas height for a new drawing")
	fs.StringVar(&e.name, "name", "untitled", "gallery name used by Ctrl+S")
	fs.StringVar(&e.tags, "tags", "", "comma separated gallery tags used by Ctrl+S")
	fs.StringVar(&e.exportPath, "export", "pixelpad.png", "file written by Ctrl+E")
	fs.StringVar(&e.filter, "filter", "", "filter applied by Ctrl+E")
	fs.BoolVar(&e.noAutosave, "no-autosave", false, "do not restore or write the autosave snapshot")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: e}
	}
	if e.width < 0 || e.height < 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", e.width, e.height)
	}
	if err := gallery.ValidateName(e.name); err != nil {
		return nil, err
	}
	if err := gallery.ValidateTags(gallery.ParseTags(e.tags)); err != nil {
		return nil, err
	}
	if _, err := export.FormatFromPath(e.exportPath); err != nil {
		return nil, err
	}
	if _, err := export.ParseFilter(e.filter); err != nil {
		return nil, err
	}
	return e, nil
}

// sessionConfig copies the loaded config with the command line overrides
// applied, so a live reload keeps the theme and notifications chosen here.
func (e *editCmd) sessionConfig() *config.Config {
	cfg := config.New()
	if e.config != nil {
		c := *e.config
		cfg = &c
	}
	if e.width > 0 {
		cfg.CanvasWidth = e.width
	}
	if e.height > 0 {
		cfg.CanvasHeight = e.height
	}
	if e.themeName != "" {
		cfg.Theme = e.themeName
	}
	cfg.Notify = config.Notify{Save: e.saveAlerts, Export: e.exportAlerts, Copy: e.copyAlerts}
	return cfg
}

func (e *editCmd) options() ([]editor.Option, error) {
	cfg := e.sessionConfig()
	filter, err := export.ParseFilter(e.filter)
	if err != nil {
		return nil, err
	}
	opts := []editor.Option{
		editor.WithConfig(cfg),
		editor.WithTheme(e.activeTheme),
		editor.WithNotifier(e.notifier),
		editor.WithName(e.name, gallery.ParseTags(e.tags)...),
		editor.WithExport(e.exportPath, export.Options{Filter: filter, Quality: export.DefaultQuality}),
	}
	if e.file != "" {
		img, err := loadImage(e.file)
		if err != nil {
			return nil, err
		}
		opts = append(opts, editor.WithImage(img))
	}
	if !e.noAutosave {
		opts = append(opts, editor.WithAutosave(autosave.New(autosave.DefaultPath(), nil)))
	}
	dir := cfg.GalleryDir
	if dir == "" {
		dir = gallery.DefaultDir()
	}
	store, err := gallery.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	opts = append(opts, editor.WithGallery(store))
	return opts, nil
}

func (e *editCmd) Run() error {
	opts, err := e.options()
	if err != nil {
		return err
	}
	sess := editor.New(append(opts, editor.WithClipboard(clipboard.System{}))...)
	win := &editor.Window{
		Session:    sess,
		ConfigPath: config.NewLoader(version, configPathOverride).GetConfigPath(),
	}
	win.Run()
	return nil
}

// loadImage reads a PNG or JPEG file.
func loadImage(path string) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return img, nil
}
