package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/example/pixelpad/internal/gallery"
)

type galleryCmd struct {
	dir  string
	addr string
	name string
	tags string
	tag  string
	*root
	fs *flag.FlagSet

	stdout io.Writer
}

func (g *galleryCmd) FlagSet() *flag.FlagSet {
	return g.fs
}

func parseGalleryCmd(args []string, r *root) (*galleryCmd, error) {
	fs := flag.NewFlagSet("gallery", flag.ExitOnError)
	g := &galleryCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(g)
	fs.StringVar(&g.dir, "dir", "", "gallery directory (default from config, then ~/.local/share/pixelpad/gallery)")
	fs.StringVar(&g.addr, "addr", "localhost:8080", "listen address for serve")
	fs.StringVar(&g.name, "name", "", "drawing name for save (default the file name)")
	fs.StringVar(&g.tags, "tags", "", "comma separated tags for save")
	fs.StringVar(&g.tag, "tag", "", "comma separated tags a listed drawing must carry")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: g}
	}
	return g, nil
}

func (g *galleryCmd) store() (*gallery.FileStore, error) {
	dir := g.dir
	if dir == "" && g.config != nil {
		dir = g.config.GalleryDir
	}
	if dir == "" {
		dir = gallery.DefaultDir()
	}
	return gallery.NewFileStore(dir)
}

func (g *galleryCmd) Run() error {
	args := g.fs.Args()
	store, err := g.store()
	if err != nil {
		return err
	}
	switch args[0] {
	case "list":
		return g.runList(store)
	case "save":
		if len(args) != 2 {
			return &UsageError{of: g}
		}
		return g.runSave(store, args[1])
	case "delete":
		if len(args) != 2 {
			return &UsageError{of: g}
		}
		if err := store.Delete(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(g.stdout, "deleted %s\n", args[1])
		return nil
	case "serve":
		return g.runServe(store)
	default:
		return fmt.Errorf("unknown gallery command: %s", args[0])
	}
}

func (g *galleryCmd) runList(store *gallery.FileStore) error {
	drawings, err := store.List(gallery.ParseTags(g.tag)...)
	if err != nil {
		return err
	}
	for _, d := range drawings {
		fmt.Fprintf(g.stdout, "%s\t%s\t%dx%d\t%s\t%s\n", d.ID, d.Name, d.Width, d.Height,
			d.Created.Format(time.DateTime), strings.Join(d.Tags, ","))
	}
	return nil
}

func (g *galleryCmd) runSave(store *gallery.FileStore, path string) error {
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	name := g.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	d, err := store.Save(name, gallery.ParseTags(g.tags), img)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.stdout, d.ID)
	return nil
}

func (g *galleryCmd) runServe(store *gallery.FileStore) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	l, err := net.Listen("tcp", g.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", g.addr, err)
	}
	log.Printf("gallery: serving %s on http://%s", store.Dir(), l.Addr())
	return gallery.NewServer(store).Serve(ctx, l)
}
