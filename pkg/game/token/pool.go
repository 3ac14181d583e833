package token

// DefaultMaxPoolSize caps how many released sprites are kept for reuse.
const DefaultMaxPoolSize = 50

// pool is a free-list of reusable sprites. Acquire and release are O(1);
// releases beyond the cap destroy the sprite outright to bound memory.
type pool struct {
	free []*Sprite
	max  int
}

func newPool(max int) *pool {
	if max <= 0 {
		max = DefaultMaxPoolSize
	}
	return &pool{free: make([]*Sprite, 0, max), max: max}
}

// acquire returns a recycled sprite or allocates a new one.
func (p *pool) acquire() *Sprite {
	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return s
	}
	return &Sprite{Alpha: 1}
}

// release returns a sprite to the free list, or destroys it if the list is
// at capacity. Reports whether the sprite was retained.
func (p *pool) release(s *Sprite) bool {
	s.Reset()
	if len(p.free) >= p.max {
		s.destroy()
		return false
	}
	p.free = append(p.free, s)
	return true
}

// size returns the current free-list length.
func (p *pool) size() int { return len(p.free) }
