package editor

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/example/pixelpad/internal/config"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// Window shows a Session in a shiny window.
type Window struct {
	Session *Session
	// ConfigPath is watched and re-applied on change when set.
	ConfigPath string
	// OnClose runs once when the window goes away.
	OnClose func()

	updateCh  chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

// postEvent runs a tool timer callback on the UI goroutine.
type postEvent func()

// configEvent carries a reloaded config to the UI goroutine.
type configEvent struct {
	cfg *config.Config
}

// requestPaint coalesces repaint requests.
func (win *Window) requestPaint() {
	select {
	case win.updateCh <- struct{}{}:
	default:
	}
}

func (win *Window) notifyClose() {
	win.closeOnce.Do(func() {
		win.closed.Store(true)
		if win.OnClose != nil {
			win.OnClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (win *Window) Run() { driver.Main(win.Main) }

func (win *Window) Main(s screen.Screen) {
	sess := win.Session
	sz := sess.WindowSize()
	width, height := sz.X, sz.Y
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "pixelpad"})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer win.notifyClose()

	win.updateCh = make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-win.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	sess.onChange = win.requestPaint
	sess.SetPost(func(f func()) {
		if !win.closed.Load() {
			w.Send(postEvent(f))
		}
	})

	if win.ConfigPath != "" {
		watcher, err := config.Watch(win.ConfigPath, config.DefaultWatchDebounce,
			func(cfg *config.Config) { w.Send(configEvent{cfg: cfg}) },
			func(err error) { log.Printf("config watch: %v", err) })
		if err != nil {
			log.Printf("config watch: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		switch e := w.NextEvent().(type) {
		case postEvent:
			e()
			win.requestPaint()
		case configEvent:
			sess.ApplyConfig(e.cfg)
			log.Printf("config: reloaded %s", win.ConfigPath)
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := sess.frame(width, height)
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			sess.HandleMouse(e)
		case key.Event:
			if e.Direction == key.DirPress && e.Code == key.CodeQ && e.Modifiers&key.ModControl != 0 {
				stopPaint()
				return
			}
			sess.HandleKey(e)
		case error:
			log.Printf("window: %v", e)
		}
	}
}
