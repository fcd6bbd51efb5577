package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"

	"github.com/example/pixelpad/internal/config"
	"github.com/example/pixelpad/internal/export"
	"github.com/example/pixelpad/internal/replay"
)

type replayCmd struct {
	script string
	output string
	file   string
	width  int
	height int
	seed   uint64
	*root
	fs *flag.FlagSet

	stdin io.Reader
}

func (c *replayCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseReplayCmd(args []string, r *root) (*replayCmd, error) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	c := &replayCmd{root: r, fs: fs, stdin: os.Stdin}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.script, "script", "", "script to apply, - for stdin")
	fs.StringVar(&c.output, "output", "", "file to write (.png, .jpg or .pdf)")
	fs.StringVar(&c.file, "file", "", "starting image instead of a blank canvas")
	fs.IntVar(&c.width, "width", 0, "blank canvas width (default from config)")
	fs.IntVar(&c.height, "height", 0, "blank canvas height (default from config)")
	fs.Uint64Var(&c.seed, "seed", 1, "seed for the spray can")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.script == "" || c.output == "" || fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if _, err := export.FormatFromPath(c.output); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *replayCmd) readScript() ([]replay.Step, error) {
	if c.script == "-" {
		return replay.Parse(c.stdin)
	}
	f, err := os.Open(c.script)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	steps, err := replay.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.script, err)
	}
	return steps, nil
}

func (c *replayCmd) Run() error {
	steps, err := c.readScript()
	if err != nil {
		return err
	}
	cfg := c.config
	if cfg == nil {
		cfg = config.New()
	}
	var base image.Image
	if c.file != "" {
		if base, err = loadImage(c.file); err != nil {
			return err
		}
	}
	w, h := cfg.CanvasWidth, cfg.CanvasHeight
	if c.width > 0 {
		w = c.width
	}
	if c.height > 0 {
		h = c.height
	}
	if w <= 0 || h <= 0 {
		w, h = config.DefaultCanvasWidth, config.DefaultCanvasHeight
	}

	runner := replay.New(base, w, h, c.seed)
	if err := cfg.Apply(runner.Registry); err != nil {
		log.Printf("config: %v", err)
	}
	runner.Registry.SetCurrent(cfg.StartTool())
	if err := runner.Run(steps); err != nil {
		return err
	}
	runner.Finish()
	if err := runner.Surface.Err(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := export.WriteFile(c.output, runner.Image(), "", export.Options{Quality: export.DefaultQuality, Title: c.output}); err != nil {
		return err
	}
	if c.verbose {
		log.Printf("replay: %d steps, %d commands, wrote %s", len(steps), runner.History.Len()-1, c.output)
	}
	return nil
}
