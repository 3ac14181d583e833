// Package input layers raw key events into viewer actions. The host binds
// device key codes to Actions; a Repeater turns held keys into a debounced
// fire-per-interval stream for continuous actions like panning and zooming.
package input

import "time"

// Action is a high-level intent over the map view.
type Action int

const (
	ActionNone Action = iota

	// Continuous view movement
	ActionPanNorth
	ActionPanSouth
	ActionPanWest
	ActionPanEast
	ActionZoomIn
	ActionZoomOut

	// One-shot view control
	ActionZoomReset

	// Layer toggles
	ActionToggleWalls
	ActionToggleObjects
	ActionTogglePortals
	ActionToggleGrid
	ActionRevealLighting

	ActionClearTargets
)

// Repeatable reports whether holding the bound key should re-fire the
// action. Toggles and resets fire once per press.
func (a Action) Repeatable() bool {
	switch a {
	case ActionPanNorth, ActionPanSouth, ActionPanWest, ActionPanEast,
		ActionZoomIn, ActionZoomOut:
		return true
	}
	return false
}

// Default repeat cadence: a held key fires immediately, pauses, then
// re-fires on a short interval.
const (
	DefaultInitialDelay   = 350 * time.Millisecond
	DefaultRepeatInterval = 50 * time.Millisecond
)

type heldKey struct {
	since    time.Time
	lastFire time.Time
}

// Repeater tracks held keys and decides which fire on a given frame. K is
// the host's key identifier type.
type Repeater[K comparable] struct {
	initialDelay time.Duration
	interval     time.Duration
	held         map[K]heldKey
}

// NewRepeater creates a repeater; non-positive durations take the defaults.
func NewRepeater[K comparable](initialDelay, interval time.Duration) *Repeater[K] {
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	if interval <= 0 {
		interval = DefaultRepeatInterval
	}
	return &Repeater[K]{
		initialDelay: initialDelay,
		interval:     interval,
		held:         make(map[K]heldKey),
	}
}

// Sync reconciles the held-key set against the keys currently pressed and
// returns, in argument order, the keys that fire this frame. A key fires on
// its first appearance, then again each interval once the initial delay has
// passed. Keys absent from pressed are released.
func (r *Repeater[K]) Sync(now time.Time, pressed ...K) []K {
	seen := make(map[K]bool, len(pressed))
	var fire []K
	for _, k := range pressed {
		seen[k] = true
		h, holding := r.held[k]
		if !holding {
			r.held[k] = heldKey{since: now, lastFire: now}
			fire = append(fire, k)
			continue
		}
		if now.Sub(h.since) >= r.initialDelay && now.Sub(h.lastFire) >= r.interval {
			h.lastFire = now
			r.held[k] = h
			fire = append(fire, k)
		}
	}
	for k := range r.held {
		if !seen[k] {
			delete(r.held, k)
		}
	}
	return fire
}
