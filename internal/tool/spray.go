package tool

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/example/pixelpad/internal/colors"
	"github.com/example/pixelpad/internal/geom"
	"github.com/example/pixelpad/internal/surface"
	"github.com/gogpu/gg"
)

// Spray can defaults.
const (
	DefaultSprayDiameter  = 30
	DefaultDropletSize    = 1
	DefaultSprayRate      = 20
	DefaultSprayDensity   = 10
	minSprayRate          = 1
	maxSprayRate          = 100
	minSprayDropletSize   = 1
	minSprayDiameterValue = 2
)

// SprayCommand replays the droplets of one spray.
type SprayCommand struct {
	Layer    *surface.Layer
	Droplets []geom.Vec2
	Diameter float64
	Color    colors.Color
}

func (c *SprayCommand) Execute() {
	if len(c.Droplets) == 0 {
		return
	}
	c.Layer.Draw(func(dc *gg.Context) error {
		dc.SetColor(paint(c.Color))
		for _, d := range c.Droplets {
			dc.NewSubPath()
			dc.DrawCircle(d.X, d.Y, c.Diameter/2)
		}
		return dc.Fill()
	})
}

// Spray emits random droplets around the pointer while the button is held.
type Spray struct {
	Base
	// Diameter is the size of the spray area.
	Diameter float64
	// DropletSize is the diameter of a single droplet.
	DropletSize float64
	// Rate is the number of emissions per second.
	Rate int
	// Density is the number of droplets per emission.
	Density int

	rnd      *rand.Rand
	last     geom.Vec2
	droplets []geom.Vec2
	ticker   *repeater
}

// NewSpray returns a spray can. A nil rnd seeds from the runtime.
func NewSpray(env *Env, rnd *rand.Rand) *Spray {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Spray{
		Base:        newBase(env, KindSpray, "Spray can"),
		Diameter:    DefaultSprayDiameter,
		DropletSize: DefaultDropletSize,
		Rate:        DefaultSprayRate,
		Density:     DefaultSprayDensity,
		rnd:         rnd,
	}
}

// Droplets returns the droplets emitted during the current press.
func (s *Spray) Droplets() []geom.Vec2 { return s.droplets }

func (s *Spray) interval() time.Duration {
	rate := min(max(s.Rate, minSprayRate), maxSprayRate)
	return time.Second / time.Duration(rate)
}

func (s *Spray) OnMouseDown(e MouseEvent) {
	s.mouseDown = e.IsLeft()
	if !s.mouseDown {
		return
	}
	s.stop()
	s.last = e.Pos
	s.droplets = nil
	s.emit()
	s.ticker = s.env.every(s.interval(), s.emit)
}

func (s *Spray) OnMouseMove(e MouseEvent) {
	s.trackButtons(e)
	if !s.mouseDown {
		if s.ticker != nil {
			s.finish()
		}
		return
	}
	s.last = e.Pos
}

func (s *Spray) OnMouseUp(e MouseEvent) {
	if s.mouseDown {
		s.last = e.Pos
	}
	s.finish()
}

func (s *Spray) OnMouseOut(e MouseEvent) { s.OnMouseUp(e) }

func (s *Spray) OnActivate() {
	s.Base.OnActivate()
	s.stop()
	s.droplets = nil
}

func (s *Spray) stop() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *Spray) finish() {
	s.stop()
	s.mouseDown = false
	if len(s.droplets) == 0 {
		return
	}
	s.clearPreview()
	cmd := s.command(s.surface().Base)
	cmd.Execute()
	s.env.record(cmd)
	s.droplets = nil
}

// emit adds one batch of droplets uniformly distributed in the spray disc.
func (s *Spray) emit() {
	r := math.Max(s.Diameter, minSprayDiameterValue) / 2
	for i := 0; i < max(s.Density, 1); i++ {
		angle := s.rnd.Float64() * 2 * math.Pi
		dist := r * math.Sqrt(s.rnd.Float64())
		s.droplets = append(s.droplets, geom.V(
			s.last.X+dist*math.Cos(angle),
			s.last.Y+dist*math.Sin(angle),
		))
	}
	s.clearPreview()
	s.command(s.surface().Preview).Execute()
}

func (s *Spray) command(l *surface.Layer) *SprayCommand {
	d := make([]geom.Vec2, len(s.droplets))
	copy(d, s.droplets)
	return &SprayCommand{
		Layer:    l,
		Droplets: d,
		Diameter: math.Max(s.DropletSize, minSprayDropletSize),
		Color:    s.env.Colors.Primary(),
	}
}
