package decor

import "battlemap/pkg/engine/geom"

// World-space bar metrics, scaled with the viewport like the token itself.
const (
	barHeight = 6.0
	barGap    = 2.0
	ringPad   = 3.0
)

// BarRect is the computed placement of one status bar: Track is the full-
// width background, Fill is the filled portion for the bar's percentage.
type BarRect struct {
	Track geom.Rect
	Fill  geom.Rect
	Bar   StatusBarDatum
}

// BarLayout computes world-space rectangles for a token's bars at one
// position. Bars stack outward from the token: the first bar is nearest.
// center is the token's world center, pixelSize its sprite edge length.
func BarLayout(center geom.Point, pixelSize float64, bars []StatusBarDatum, pos BarPosition) []BarRect {
	if len(bars) == 0 {
		return nil
	}
	half := pixelSize / 2
	out := make([]BarRect, 0, len(bars))
	for i, bar := range bars {
		offset := float64(i)*(barHeight+barGap) + barGap
		var top float64
		if pos == BarTop {
			top = center.Y - half - offset - barHeight
		} else {
			top = center.Y + half + offset
		}
		track := geom.Rect{
			Min: geom.Point{X: center.X - half, Y: top},
			Max: geom.Point{X: center.X + half, Y: top + barHeight},
		}
		pct := bar.Percentage
		if pct < 0 {
			pct = 0
		}
		if pct > 1 {
			pct = 1
		}
		fill := track
		fill.Max.X = track.Min.X + track.Width()*pct
		out = append(out, BarRect{Track: track, Fill: fill, Bar: bar})
	}
	return out
}

// RingRadius returns the world-space radius of a decoration ring around a
// token of the given sprite size.
func RingRadius(pixelSize float64) float64 {
	return pixelSize/2 + ringPad
}
