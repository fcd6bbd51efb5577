package config

import (
	"errors"

	"github.com/example/pixelpad/internal/tool"
)

// Apply pushes the tool and grid defaults onto the tools of r. Invalid
// names are reported but do not stop the remaining settings.
func (c *Config) Apply(r *tool.Registry) error {
	var errs []error
	t := c.Tools

	if t.Thickness > 0 {
		for _, d := range r.DrawingTools() {
			d.SetThickness(t.Thickness)
		}
	}
	if t.TraceType != "" {
		trace, err := tool.ParseTraceType(t.TraceType)
		if err != nil {
			errs = append(errs, err)
		} else {
			for _, k := range []tool.Kind{tool.KindRectangle, tool.KindEllipse, tool.KindPolygon} {
				r.Shape(k).Trace = trace
			}
		}
	}
	if t.PolygonSides > 0 {
		r.Shape(tool.KindPolygon).SetSides(t.PolygonSides)
	}

	line := r.Line()
	line.Junction = t.Junction
	if t.JunctionDiameter > 0 {
		line.JunctionDiameter = t.JunctionDiameter
	}

	spray := r.Spray()
	if t.SprayDiameter > 0 {
		spray.Diameter = t.SprayDiameter
	}
	if t.SprayDroplet > 0 {
		spray.DropletSize = t.SprayDroplet
	}
	if t.SprayRate > 0 {
		spray.Rate = t.SprayRate
	}
	if t.FillTolerance > 0 {
		r.Fill().Tolerance = min(t.FillTolerance, 100)
	}
	if t.TextSize > 0 {
		r.Text().Size = t.TextSize
	}
	if t.Stamp != "" {
		shape, err := tool.ParseStamp(t.Stamp)
		if err != nil {
			errs = append(errs, err)
		} else {
			r.Stamp().Shape = shape
		}
	}
	if t.StampScale > 0 {
		r.Stamp().SetScale(t.StampScale)
	}

	g := r.Grid()
	if c.Grid.Size > 0 {
		g.SetSize(c.Grid.Size)
	}
	if c.Grid.Opacity > 0 {
		g.SetOpacity(c.Grid.Opacity)
	}
	g.Settings().Magnet = c.Grid.Magnet
	if c.Grid.Anchor != "" {
		a, err := tool.ParseAnchor(c.Grid.Anchor)
		if err != nil {
			errs = append(errs, err)
		} else {
			g.Settings().Anchor = a
		}
	}
	return errors.Join(errs...)
}

// StartTool returns the configured initial tool, or the pencil.
func (c *Config) StartTool() tool.Kind {
	k, err := tool.ParseKind(c.DefaultTool)
	if err != nil {
		return tool.KindPencil
	}
	return k
}
