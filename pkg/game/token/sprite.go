// Package token maintains the pooled set of token visuals: sprite sizing
// from grid bounds, texture resolution with fallback, move animation, and
// the drag ghost.
package token

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"battlemap/pkg/engine/geom"
	"battlemap/pkg/game/decor"
)

// MoveDuration is the length of an animated MoveToken ease.
const moveDurationSec = 0.2

// Sprite is the visual record of one token. Sprites are pooled; Reset puts a
// recycled sprite back into a clean state.
type Sprite struct {
	TokenID   string
	Name      string
	WorldPos  geom.Point
	PixelSize float64
	Visible   bool
	Alpha     float64

	Bounds      geom.GridBounds
	Decorations decor.List

	// Texture state. src is the decoded image from the cache; img is the
	// GPU copy, created lazily on the first draw.
	src      image.Image
	srcURL   string
	img      *ebiten.Image
	texGen   int // bumped on every texture request; stale loads are dropped

	anim *moveAnimation
}

// moveAnimation eases the sprite from one world position to another.
type moveAnimation struct {
	from  geom.Point
	to    geom.Point
	tween *gween.Tween
}

func newMoveAnimation(from, to geom.Point) *moveAnimation {
	return &moveAnimation{
		from:  from,
		to:    to,
		tween: gween.New(0, 1, moveDurationSec, ease.OutQuad),
	}
}

// step advances the animation and returns the interpolated position and
// whether the animation has finished.
func (a *moveAnimation) step(dt float64) (geom.Point, bool) {
	t, done := a.tween.Update(float32(dt))
	f := float64(t)
	return geom.Point{
		X: a.from.X + (a.to.X-a.from.X)*f,
		Y: a.from.Y + (a.to.Y-a.from.Y)*f,
	}, done
}

// Reset clears a recycled sprite for reuse by a new token.
func (s *Sprite) Reset() {
	s.TokenID = ""
	s.Name = ""
	s.WorldPos = geom.Point{}
	s.PixelSize = 0
	s.Visible = false
	s.Alpha = 1
	s.Bounds = geom.GridBounds{}
	s.Decorations.Clear()
	s.src = nil
	s.srcURL = ""
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.texGen++
	s.anim = nil
}

// SetTexture installs a decoded image; the GPU copy is rebuilt on next draw.
func (s *Sprite) SetTexture(src image.Image) {
	s.src = src
	s.img = nil
}

// ensureImage creates the GPU image from the decoded source. Only called
// from the draw path where a graphics context exists.
func (s *Sprite) ensureImage() *ebiten.Image {
	if s.img == nil && s.src != nil {
		s.img = ebiten.NewImageFromImage(s.src)
	}
	return s.img
}

// destroy releases GPU resources for a sprite leaving the pool for good.
func (s *Sprite) destroy() {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.src = nil
}
