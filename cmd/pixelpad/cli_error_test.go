package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/example/pixelpad/internal/config"
	"github.com/example/pixelpad/internal/export"
)

func testRoot() *root {
	return &root{
		fs:      flag.NewFlagSet("pixelpad", flag.ContinueOnError),
		program: "pixelpad",
		config:  config.New(),
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{0, 0, 255, 255}}, image.Point{}, draw.Src)
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestRunWithoutCommandIsUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"bogus"}} {
		r := testRoot()
		err := r.Run(args)
		var uerr *UsageError
		if !errors.As(err, &uerr) {
			t.Fatalf("%v: expected usage error, got %v", args, err)
		}
		if want := "Commands:"; !strings.Contains(uerr.Error(), want) {
			t.Fatalf("expected help to contain %q, got %q", want, uerr.Error())
		}
	}
}

func TestHelpTemplatesRender(t *testing.T) {
	r := testRoot()
	replay, err := parseReplayCmd([]string{"-script", "a.txt", "-output", "b.png"}, r.subcommand("replay"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	cfg, err := parseConfigCmd(nil, r.subcommand("config"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	for _, h := range []HelpData{r, replay, cfg, &versionCmd{r: r}} {
		help, err := (&UsageError{of: h}).renderHelp()
		if err != nil {
			t.Fatalf("%s: %v", h.Template(), err)
		}
		if !strings.Contains(help, "Usage: "+h.Program()) {
			t.Errorf("%s: help %q lacks the program name", h.Template(), help)
		}
	}
}

func TestParseReplayRequiresScript(t *testing.T) {
	_, err := parseReplayCmd([]string{"-output", "out.png"}, testRoot().subcommand("replay"))
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "-script"; !strings.Contains(uerr.Error(), want) {
		t.Fatalf("expected help to mention %q, got %q", want, uerr.Error())
	}
}

func TestParseReplayRejectsOutputFormat(t *testing.T) {
	_, err := parseReplayCmd([]string{"-script", "s.txt", "-output", "out.gif"}, testRoot())
	if !errors.Is(err, export.ErrUnknownFormat) {
		t.Fatalf("expected unknown format, got %v", err)
	}
}

func TestReplayWritesPNG(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "square.txt")
	body := "# outline\ncolor yellow\nsecondary black\ntool rectangle\nthickness 2\ndrag 5 5 30 20\n"
	if err := os.WriteFile(script, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.png")
	cmd, err := parseReplayCmd([]string{"-script", script, "-output", out, "-width", "40", "-height", "30"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := imgio.Open(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("output size = %v", b)
	}
	if r, g, b, _ := img.At(5, 12).RGBA(); r > 0x3000 || g > 0x3000 || b > 0x3000 {
		t.Error("rectangle edge missing")
	}
	if r, g, b, _ := img.At(17, 12).RGBA(); r < 0xc000 || g < 0xc000 || b > 0x3000 {
		t.Error("rectangle fill missing")
	}
	if !isWhite(img.At(36, 26)) {
		t.Error("paint outside the rectangle")
	}
}

func TestReplayFromStdinOverFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writePNG(t, in, 20, 10)
	out := filepath.Join(dir, "out.png")
	cmd, err := parseReplayCmd([]string{"-script", "-", "-file", in, "-output", out}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	cmd.stdin = strings.NewReader("tool select-rect\nselect-all\ndelete\n")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := imgio.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("output size = %v", b)
	}
	if !isWhite(img.At(10, 5)) {
		t.Error("delete did not clear the canvas")
	}
}

func TestReplayReportsScriptLine(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(script, []byte("tool pencil\ntool brush\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd, err := parseReplayCmd([]string{"-script", script, "-output", filepath.Join(dir, "o.png"), "-width", "10", "-height", "10"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err == nil {
		t.Fatalf("expected error")
	} else if want := "line 2"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseExportRequiresOutput(t *testing.T) {
	_, err := parseExportCmd([]string{"-file", "in.png"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "output file is required"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseExportNeedsOneSource(t *testing.T) {
	for _, args := range [][]string{
		{"-output", "o.png"},
		{"-file", "in.png", "-id", "abc", "-output", "o.png"},
	} {
		if _, err := parseExportCmd(args, testRoot()); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestParseExportRejectsFilter(t *testing.T) {
	_, err := parseExportCmd([]string{"-file", "in.png", "-output", "o.png", "-filter", "posterize"}, testRoot())
	if !errors.Is(err, export.ErrUnknownFormat) {
		t.Fatalf("expected unknown filter, got %v", err)
	}
}

func TestExportWritesJPEG(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writePNG(t, in, 16, 12)
	out := filepath.Join(dir, "out.jpg")
	cmd, err := parseExportCmd([]string{"-file", in, "-output", out, "-filter", "grayscale", "-quality", "80"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := imgio.Open(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Fatalf("output size = %v", b)
	}
}

func TestExportShadowGrowsCanvas(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writePNG(t, in, 16, 12)
	out := filepath.Join(dir, "out.png")
	cmd, err := parseExportCmd([]string{"-file", in, "-output", out, "-shadow"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := imgio.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() <= 16 || b.Dy() <= 12 {
		t.Fatalf("output size = %v", b)
	}
}

func TestGallerySaveListDelete(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sketch.png")
	writePNG(t, in, 8, 8)
	store := filepath.Join(dir, "gallery")

	run := func(args ...string) string {
		t.Helper()
		g, err := parseGalleryCmd(append([]string{"-dir", store}, args...), testRoot())
		if err != nil {
			t.Fatalf("%v: parse: %v", args, err)
		}
		var buf bytes.Buffer
		g.stdout = &buf
		if err := g.Run(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return buf.String()
	}

	id := strings.TrimSpace(run("-tags", "blue,test", "save", in))
	if id == "" {
		t.Fatal("save printed no id")
	}
	list := run("list")
	if !strings.Contains(list, id) || !strings.Contains(list, "sketch") || !strings.Contains(list, "8x8") {
		t.Fatalf("list = %q", list)
	}
	if got := run("-tag", "red", "list"); got != "" {
		t.Errorf("tag filter kept %q", got)
	}
	run("delete", id)
	if got := run("list"); got != "" {
		t.Errorf("list after delete = %q", got)
	}
}

func TestGalleryUnknownCommand(t *testing.T) {
	g, err := parseGalleryCmd([]string{"-dir", t.TempDir(), "rename"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := g.Run(); err == nil || !strings.Contains(err.Error(), "unknown gallery command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestConfigUnknownCommand(t *testing.T) {
	c, err := parseConfigCmd([]string{"reset"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := c.Run(); err == nil || !strings.Contains(err.Error(), "unknown config command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEditValidates(t *testing.T) {
	for _, args := range [][]string{
		{"-export", "out.gif"},
		{"-filter", "posterize"},
		{"-name", "   "},
		{"-tags", "no spaces"},
		{"-width", "-5"},
	} {
		if _, err := parseEditCmd(args, testRoot()); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestEditSessionConfigOverrides(t *testing.T) {
	r := testRoot()
	r.themeName = "dark"
	r.saveAlerts = true
	e, err := parseEditCmd([]string{"-width", "50", "-height", "40"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	cfg := e.sessionConfig()
	if cfg.CanvasWidth != 50 || cfg.CanvasHeight != 40 {
		t.Errorf("canvas = %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.Theme != "dark" || !cfg.Notify.Save || cfg.Notify.Copy {
		t.Errorf("theme=%q notify=%+v", cfg.Theme, cfg.Notify)
	}
	if r.config.CanvasWidth != config.DefaultCanvasWidth {
		t.Error("overrides leaked into the loaded config")
	}
}
