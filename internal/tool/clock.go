package tool

import "time"

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock uses the runtime timers.
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// repeater calls f every interval until stopped.
type repeater struct {
	clock    Clock
	interval time.Duration
	f        func()
	timer    Timer
	stopped  bool
}

func (r *repeater) arm() {
	r.timer = r.clock.AfterFunc(r.interval, func() {
		if r.stopped {
			return
		}
		r.f()
		if !r.stopped {
			r.arm()
		}
	})
}

func (r *repeater) Stop() bool {
	if r == nil || r.stopped {
		return false
	}
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
	return true
}

// every schedules f repeatedly through env so each tick runs on the UI
// goroutine.
func (env *Env) every(d time.Duration, f func()) *repeater {
	r := &repeater{clock: postingClock{env}, interval: d, f: f}
	r.arm()
	return r
}

// after schedules a one shot callback through env.
func (env *Env) after(d time.Duration, f func()) Timer {
	return postingClock{env}.AfterFunc(d, f)
}

// postingClock forwards fired callbacks through Env.Post.
type postingClock struct{ env *Env }

func (c postingClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.env.clock().AfterFunc(d, func() { c.env.post(f) })
}
