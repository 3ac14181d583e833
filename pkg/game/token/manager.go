package token

import (
	"fmt"
	"image"
	"log"

	"battlemap/pkg/engine/geom"
	"battlemap/pkg/engine/texture"
	"battlemap/pkg/game/decor"
)

// Token is the renderer's read-mostly mirror of one token in the external
// game-state store. Bounds are authoritative grid cells.
type Token struct {
	ID       string
	Name     string
	ImageURL string
	Visible  bool
	Bounds   geom.GridBounds
}

const (
	ghostAlpha  = 0.5
	draggedDim  = 0.4
)

// ghostState is the temporary drag visual: the token's appearance at the
// tentative position while the original sprite is dimmed.
type ghostState struct {
	tokenID  string
	worldPos geom.Point
}

// Manager owns the token sprites inside the viewport-transformed space.
// It is driven entirely from the game loop; no internal locking.
type Manager struct {
	sprites  map[string]*Sprite
	order    []string // draw order, oldest first
	pool     *pool
	textures *texture.Cache

	origin   geom.Point
	cellSize float64

	ghost *ghostState
}

// NewManager creates a manager backed by the given texture cache.
func NewManager(textures *texture.Cache, maxPoolSize int) *Manager {
	return &Manager{
		sprites:  make(map[string]*Sprite),
		pool:     newPool(maxPoolSize),
		textures: textures,
		cellSize: 1,
	}
}

// Configure sets the grid parameters for the loaded map. Existing sprites
// are resized and repositioned against the new grid.
func (m *Manager) Configure(origin geom.Point, cellSize float64) {
	m.origin = origin
	m.cellSize = cellSize
	for _, s := range m.sprites {
		s.PixelSize = s.Bounds.PixelSize(cellSize)
		s.WorldPos = s.Bounds.CenterWorld(origin, cellSize)
	}
}

// AddToken creates (or replaces) the sprite for a token. Re-adding an
// existing id removes the old sprite first, so the call is an upsert.
func (m *Manager) AddToken(tok Token) error {
	if tok.ID == "" {
		return fmt.Errorf("token: empty id")
	}
	if !tok.Bounds.Valid() {
		return fmt.Errorf("token %q: inverted bounds %+v", tok.ID, tok.Bounds)
	}
	if _, exists := m.sprites[tok.ID]; exists {
		m.RemoveToken(tok.ID)
	}

	s := m.pool.acquire()
	s.TokenID = tok.ID
	s.Name = tok.Name
	s.Visible = tok.Visible
	s.Alpha = 1
	s.Bounds = tok.Bounds
	s.PixelSize = tok.Bounds.PixelSize(m.cellSize)
	s.WorldPos = tok.Bounds.CenterWorld(m.origin, m.cellSize)

	m.sprites[tok.ID] = s
	m.order = append(m.order, tok.ID)
	m.resolveTexture(s, tok.ImageURL)
	return nil
}

// UpdateToken reconfigures an existing sprite in place. The texture is
// swapped only when the image URL changed. Unknown ids fall back to AddToken.
func (m *Manager) UpdateToken(tok Token) error {
	s, ok := m.sprites[tok.ID]
	if !ok {
		return m.AddToken(tok)
	}
	if !tok.Bounds.Valid() {
		return fmt.Errorf("token %q: inverted bounds %+v", tok.ID, tok.Bounds)
	}
	s.Name = tok.Name
	s.Visible = tok.Visible
	s.Bounds = tok.Bounds
	s.PixelSize = tok.Bounds.PixelSize(m.cellSize)
	s.WorldPos = tok.Bounds.CenterWorld(m.origin, m.cellSize)
	s.anim = nil
	if tok.ImageURL != s.srcURL {
		m.resolveTexture(s, tok.ImageURL)
	}
	return nil
}

// RemoveToken detaches a token's sprite and releases it to the pool.
// Removing an unknown id is a no-op.
func (m *Manager) RemoveToken(id string) {
	s, ok := m.sprites[id]
	if !ok {
		return
	}
	delete(m.sprites, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.ghost != nil && m.ghost.tokenID == id {
		m.ghost = nil
	}
	m.pool.release(s)
}

// MoveToken moves a token toward a new world center, optionally easing over
// ~200ms. The stored bounds snap to the new center immediately, preserving
// footprint and elevation, and the visual settles on the rewritten bounds'
// own center so even-footprint tokens never end up half a cell off.
func (m *Manager) MoveToken(id string, worldPos geom.Point, animate bool) {
	s, ok := m.sprites[id]
	if !ok {
		return
	}
	s.Bounds = geom.BoundsFromCenter(s.Bounds, worldPos, m.origin, m.cellSize)
	target := s.Bounds.CenterWorld(m.origin, m.cellSize)
	if animate {
		s.anim = newMoveAnimation(s.WorldPos, target)
	} else {
		s.anim = nil
		s.WorldPos = target
	}
}

// Update advances move animations. dt is in seconds.
func (m *Manager) Update(dt float64) {
	for _, s := range m.sprites {
		if s.anim == nil {
			continue
		}
		pos, done := s.anim.step(dt)
		s.WorldPos = pos
		if done {
			s.WorldPos = s.anim.to
			s.anim = nil
		}
	}
}

// resolveTexture requests the token image from the cache. The completion
// callback guards against the token having been removed (or re-textured)
// while the load was in flight.
func (m *Manager) resolveTexture(s *Sprite, url string) {
	s.srcURL = url
	s.texGen++
	gen := s.texGen
	id := s.TokenID

	m.textures.Get(url, func(img image.Image) {
		cur, ok := m.sprites[id]
		if !ok || cur != s || cur.texGen != gen {
			// Token removed or re-textured mid-load; drop the result.
			return
		}
		cur.SetTexture(img)
	})
	if url != "" && !m.textures.Loaded(url) {
		log.Printf("token: loading texture for %q from %q", id, url)
	}
}

// Sprite returns the visual record for a token id.
func (m *Manager) Sprite(id string) (*Sprite, bool) {
	s, ok := m.sprites[id]
	return s, ok
}

// Count returns the number of live token sprites.
func (m *Manager) Count() int { return len(m.sprites) }

// IDs returns the token ids in draw order (oldest first).
func (m *Manager) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// TokenAt hit-tests a world position against the token discs, topmost first.
func (m *Manager) TokenAt(world geom.Point) (string, bool) {
	for i := len(m.order) - 1; i >= 0; i-- {
		s := m.sprites[m.order[i]]
		if s == nil || !s.Visible {
			continue
		}
		if geom.Dist(world, s.WorldPos) <= s.PixelSize/2 {
			return s.TokenID, true
		}
	}
	return "", false
}

// Center returns the current world center of a token's sprite.
func (m *Manager) Center(id string) (geom.Point, bool) {
	s, ok := m.sprites[id]
	if !ok {
		return geom.Point{}, false
	}
	return s.WorldPos, true
}

// Decorations returns the decoration list attached to a token's sprite.
func (m *Manager) Decorations(id string) (*decor.List, bool) {
	s, ok := m.sprites[id]
	if !ok {
		return nil, false
	}
	return &s.Decorations, true
}

// ShowGhost creates the drag ghost for a token and dims the original.
func (m *Manager) ShowGhost(id string, pos geom.Point) {
	s, ok := m.sprites[id]
	if !ok {
		return
	}
	s.Alpha = draggedDim
	m.ghost = &ghostState{tokenID: id, worldPos: pos}
}

// MoveGhost repositions the drag ghost.
func (m *Manager) MoveGhost(pos geom.Point) {
	if m.ghost != nil {
		m.ghost.worldPos = pos
	}
}

// HideGhost destroys the ghost and restores the original sprite's opacity.
func (m *Manager) HideGhost() {
	if m.ghost == nil {
		return
	}
	if s, ok := m.sprites[m.ghost.tokenID]; ok {
		s.Alpha = 1
	}
	m.ghost = nil
}

// Ghost returns the active ghost's token id and position, if any.
func (m *Manager) Ghost() (string, geom.Point, bool) {
	if m.ghost == nil {
		return "", geom.Point{}, false
	}
	return m.ghost.tokenID, m.ghost.worldPos, true
}

// PoolSize returns the current free-list length (test hook).
func (m *Manager) PoolSize() int { return m.pool.size() }

// Teardown releases every sprite and drops the ghost.
func (m *Manager) Teardown() {
	for id := range m.sprites {
		m.RemoveToken(id)
	}
	m.ghost = nil
}
