package token

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"battlemap/pkg/engine/geom"
	"battlemap/pkg/game/decor"
)

// labelOffset is the world-space gap between sprite edge and name label.
const labelOffset = 4.0

var labelFace *text.GoTextFace

// SetLabelFace installs the face used for token name labels. Labels are
// skipped while no face is set.
func SetLabelFace(face *text.GoTextFace) {
	labelFace = face
}

// Draw renders all token sprites, the drag ghost, and per-token decorations
// under the given viewport transform.
func (m *Manager) Draw(screen *ebiten.Image, pan geom.Point, scale float64, now time.Time) {
	for _, id := range m.order {
		s := m.sprites[id]
		if s == nil || !s.Visible {
			continue
		}
		m.drawSprite(screen, s, s.WorldPos, s.Alpha, pan, scale)
	}

	if m.ghost != nil {
		if s, ok := m.sprites[m.ghost.tokenID]; ok {
			m.drawSprite(screen, s, m.ghost.worldPos, ghostAlpha, pan, scale)
		}
	}

	for _, id := range m.order {
		s := m.sprites[id]
		if s == nil || !s.Visible {
			continue
		}
		m.drawDecorations(screen, s, pan, scale, now)
	}
}

func (m *Manager) drawSprite(screen *ebiten.Image, s *Sprite, world geom.Point, alpha float64, pan geom.Point, scale float64) {
	img := s.ensureImage()
	center := geom.WorldToScreen(world, pan, scale)
	size := s.PixelSize * scale

	if img != nil && size > 0 {
		bounds := img.Bounds()
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(size/float64(bounds.Dx()), size/float64(bounds.Dy()))
		op.GeoM.Translate(center.X-size/2, center.Y-size/2)
		op.ColorScale.ScaleAlpha(float32(alpha))
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, &op)
	}

	if s.Name != "" && labelFace != nil {
		op := &text.DrawOptions{}
		op.GeoM.Translate(center.X, center.Y+size/2+labelOffset*scale)
		op.PrimaryAlign = text.AlignCenter
		op.ColorScale.ScaleAlpha(float32(alpha))
		text.Draw(screen, s.Name, labelFace, op)
	}
}

func (m *Manager) drawDecorations(screen *ebiten.Image, s *Sprite, pan geom.Point, scale float64, now time.Time) {
	center := geom.WorldToScreen(s.WorldPos, pan, scale)
	radius := decor.RingRadius(s.PixelSize) * scale
	decor.DrawRings(screen, &s.Decorations, float32(center.X), float32(center.Y), float32(radius), now)

	for _, pos := range []decor.BarPosition{decor.BarTop, decor.BarBottom} {
		bars := s.Decorations.Bars(pos)
		if len(bars) == 0 {
			continue
		}
		rects := decor.BarLayout(s.WorldPos, s.PixelSize, bars, pos)
		for i := range rects {
			rects[i].Track.Min = geom.WorldToScreen(rects[i].Track.Min, pan, scale)
			rects[i].Track.Max = geom.WorldToScreen(rects[i].Track.Max, pan, scale)
			rects[i].Fill.Min = geom.WorldToScreen(rects[i].Fill.Min, pan, scale)
			rects[i].Fill.Max = geom.WorldToScreen(rects[i].Fill.Max, pan, scale)
		}
		decor.DrawBars(screen, rects)
	}
}
