package decor

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Ring colors.
var (
	colorSelection = color.RGBA{230, 60, 60, 255}   // red
	colorHover     = color.RGBA{235, 235, 245, 200} // soft white
	colorTarget    = color.RGBA{255, 150, 40, 255}  // orange
	colorBarTrack  = color.RGBA{20, 20, 28, 200}
)

const ringWidth = 2.5

// pulseBrightness oscillates between 70% and 100% over a 2s period so active
// rings read as live without being distracting.
func pulseBrightness(now time.Time) float64 {
	const period = 2000.0
	phase := float64(now.UnixMilli()%int64(period)) / period
	pulse := (math.Sin(phase*2*math.Pi) + 1) / 2
	return 0.7 + 0.3*pulse
}

func scaled(c color.RGBA, brightness float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * brightness),
		G: uint8(float64(c.G) * brightness),
		B: uint8(float64(c.B) * brightness),
		A: c.A,
	}
}

// DrawRings strokes the rings present in the list around a token. cx, cy and
// radius are in screen space; the caller applies the viewport transform.
func DrawRings(screen *ebiten.Image, l *List, cx, cy, radius float32, now time.Time) {
	b := pulseBrightness(now)
	if l.HasKind(KindTargetRing) {
		vector.StrokeCircle(screen, cx, cy, radius+ringWidth*2, ringWidth, scaled(colorTarget, b), true)
	}
	if l.HasKind(KindHoverRing) {
		vector.StrokeCircle(screen, cx, cy, radius, ringWidth, colorHover, true)
	}
	if l.HasKind(KindSelectionRing) {
		vector.StrokeCircle(screen, cx, cy, radius, ringWidth, scaled(colorSelection, b), true)
	}
}

// DrawBars fills the precomputed bar rectangles. Rects arrive already
// transformed to screen space.
func DrawBars(screen *ebiten.Image, rects []BarRect) {
	for _, r := range rects {
		vector.DrawFilledRect(screen,
			float32(r.Track.Min.X), float32(r.Track.Min.Y),
			float32(r.Track.Width()), float32(r.Track.Height()),
			colorBarTrack, false)
		if r.Fill.Width() > 0 {
			vector.DrawFilledRect(screen,
				float32(r.Fill.Min.X), float32(r.Fill.Min.Y),
				float32(r.Fill.Width()), float32(r.Fill.Height()),
				r.Bar.DisplayColor, false)
		}
	}
}
