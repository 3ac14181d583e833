package scene

import (
	"image/color"

	"battlemap/pkg/engine/geom"
	"battlemap/pkg/game/mapdef"
)

// Style is the drawing configuration for the static map layers.
type Style struct {
	WallColor   color.RGBA
	ObjectColor color.RGBA
	PortalColor color.RGBA
	GridColor   color.RGBA
	WallWidth   float32
	GridWidth   float32
}

// DefaultStyle matches the usual VTT convention: line-of-sight walls in
// blue, object walls in red.
func DefaultStyle() Style {
	return Style{
		WallColor:   color.RGBA{70, 130, 255, 255},
		ObjectColor: color.RGBA{230, 70, 70, 255},
		PortalColor: color.RGBA{200, 170, 60, 255},
		GridColor:   color.RGBA{255, 255, 255, 28},
		WallWidth:   3,
		GridWidth:   1,
	}
}

// Strip is a wall polyline in world/pixel space.
type Strip []geom.Point

// PortalOutline is a portal's bounds polygon in world space.
type PortalOutline struct {
	Points []geom.Point
	Closed bool
}

// LightCircle is the precomputed visual for one light source: a soft outer
// disc whose alpha scales with intensity, plus a brighter inner core.
type LightCircle struct {
	Center      geom.Point
	OuterRadius float64
	InnerRadius float64
	OuterColor  color.RGBA
	InnerColor  color.RGBA
}

const (
	// minLightAlpha keeps near-zero-intensity lights visible on screen.
	minLightAlpha = 28
	maxLightAlpha = 160
	// innerCoreRatio sizes the bright core relative to the light's range.
	innerCoreRatio = 0.3
)

// computeStrips converts grid-unit polylines to world-space strips, skipping
// degenerate single-point entries.
func computeStrips(d *mapdef.Definition, segs [][]mapdef.Point) []Strip {
	out := make([]Strip, 0, len(segs))
	for _, seg := range segs {
		if len(seg) < 2 {
			continue
		}
		strip := make(Strip, len(seg))
		for i, p := range seg {
			strip[i] = d.ToWorld(p)
		}
		out = append(out, strip)
	}
	return out
}

// computePortals converts portal bounds to world-space outlines. Portals
// without at least two bound points have no drawable outline.
func computePortals(d *mapdef.Definition) []PortalOutline {
	out := make([]PortalOutline, 0, len(d.Portals))
	for _, p := range d.Portals {
		if len(p.Bounds) < 2 {
			continue
		}
		pts := make([]geom.Point, len(p.Bounds))
		for i, b := range p.Bounds {
			pts[i] = d.ToWorld(b)
		}
		out = append(out, PortalOutline{Points: pts, Closed: p.Closed})
	}
	return out
}

// computeLights converts light sources to concentric world-space circles.
// Intensity drives the outer disc's alpha, clamped so every light stays
// visible; the core reuses the light's color at a fixed brighter alpha.
func computeLights(d *mapdef.Definition) []LightCircle {
	cell := d.CellSize()
	out := make([]LightCircle, 0, len(d.Lights))
	for _, l := range d.Lights {
		if l.Range <= 0 {
			continue
		}
		c := l.Color.Color()
		outer := c
		outer.A = lightAlpha(l.Intensity)
		inner := c
		inner.A = maxLightAlpha
		out = append(out, LightCircle{
			Center:      d.ToWorld(l.Position),
			OuterRadius: l.Range * cell,
			InnerRadius: l.Range * cell * innerCoreRatio,
			OuterColor:  outer,
			InnerColor:  inner,
		})
	}
	return out
}

func lightAlpha(intensity float64) uint8 {
	a := intensity * float64(maxLightAlpha)
	if a < minLightAlpha {
		a = minLightAlpha
	}
	if a > maxLightAlpha {
		a = maxLightAlpha
	}
	return uint8(a)
}

// gridLines computes the grid's vertical and horizontal line endpoints over
// the map extent. Each returned strip has exactly two points.
func gridLines(d *mapdef.Definition) []Strip {
	bounds := d.WorldBounds()
	cell := d.CellSize()
	if cell <= 0 {
		return nil
	}
	var out []Strip
	for x := bounds.Min.X; x <= bounds.Max.X+cell/2; x += cell {
		out = append(out, Strip{{X: x, Y: bounds.Min.Y}, {X: x, Y: bounds.Max.Y}})
	}
	for y := bounds.Min.Y; y <= bounds.Max.Y+cell/2; y += cell {
		out = append(out, Strip{{X: bounds.Min.X, Y: y}, {X: bounds.Max.X, Y: y}})
	}
	return out
}
