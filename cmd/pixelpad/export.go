package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/example/pixelpad/internal/export"
	"github.com/example/pixelpad/internal/gallery"
)

type exportCmd struct {
	file    string
	id      string
	dir     string
	format  string
	filter  string
	quality int
	title   string
	output  string
	shadow  bool
	*root
	fs *flag.FlagSet
}

func (e *exportCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	e := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "image file to export")
	fs.StringVar(&e.id, "id", "", "gallery drawing to export instead of -file")
	fs.StringVar(&e.dir, "dir", "", "gallery directory used with -id")
	fs.StringVar(&e.format, "format", "", "png, jpeg or pdf (default from the output extension)")
	fs.StringVar(&e.filter, "filter", "none", "filter applied before encoding")
	fs.IntVar(&e.quality, "quality", export.DefaultQuality, "JPEG quality, 1 to 100")
	fs.StringVar(&e.title, "title", "", "PDF title (default the output name)")
	fs.StringVar(&e.output, "output", "", "file to write")
	fs.BoolVar(&e.shadow, "shadow", false, "draw a drop shadow around the image")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: e}
	}
	if (e.file == "") == (e.id == "") {
		return nil, fmt.Errorf("exactly one of -file or -id is required")
	}
	if e.output == "" {
		return nil, fmt.Errorf("output file is required")
	}
	if e.quality < 1 || e.quality > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100, got %d", e.quality)
	}
	if _, err := e.resolveFormat(); err != nil {
		return nil, err
	}
	if _, err := export.ParseFilter(e.filter); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *exportCmd) resolveFormat() (export.Format, error) {
	if e.format != "" {
		return export.ParseFormat(e.format)
	}
	return export.FormatFromPath(e.output)
}

func (e *exportCmd) source() (image.Image, error) {
	if e.file != "" {
		return loadImage(e.file)
	}
	dir := e.dir
	if dir == "" && e.config != nil {
		dir = e.config.GalleryDir
	}
	if dir == "" {
		dir = gallery.DefaultDir()
	}
	store, err := gallery.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	img, _, err := store.Load(e.id)
	return img, err
}

func (e *exportCmd) Run() error {
	img, err := e.source()
	if err != nil {
		return err
	}
	f, err := e.resolveFormat()
	if err != nil {
		return err
	}
	filter, err := export.ParseFilter(e.filter)
	if err != nil {
		return err
	}
	title := e.title
	if title == "" {
		title = e.output
	}
	opts := export.Options{Filter: filter, Quality: e.quality, Title: title}
	if e.shadow {
		sh := export.DefaultShadow()
		opts.Shadow = &sh
	}
	if err := export.WriteFile(e.output, img, f, opts); err != nil {
		return err
	}
	if e.notifier != nil {
		e.notifier.Export(e.output)
	}
	fmt.Fprintf(os.Stderr, "Exported %s\n", e.output)
	return nil
}
