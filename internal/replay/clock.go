package replay

import (
	"time"

	"github.com/example/pixelpad/internal/tool"
)

// Clock is a manual clock. Timers only fire from Advance, so a script runs
// the same way every time.
type Clock struct {
	now    time.Duration
	seq    int
	timers []*timer
}

type timer struct {
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *timer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc schedules f to run d after the current script time.
func (c *Clock) AfterFunc(d time.Duration, f func()) tool.Timer {
	c.seq++
	t := &timer{at: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Now is the script time elapsed so far.
func (c *Clock) Now() time.Duration { return c.now }

// Advance moves time forward by d, firing due timers in order. Timers
// scheduled by a callback fire too when they fall inside the window.
func (c *Clock) Advance(d time.Duration) {
	end := c.now + d
	for {
		next := c.next(end)
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		next.f()
	}
	c.now = end
	c.prune()
}

func (c *Clock) next(end time.Duration) *timer {
	var best *timer
	for _, t := range c.timers {
		if t.stopped || t.fired || t.at > end {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (c *Clock) prune() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live
}

// Pending returns how many timers are still scheduled.
func (c *Clock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
