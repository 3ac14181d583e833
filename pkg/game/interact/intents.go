package interact

import (
	"battlemap/pkg/engine/geom"
	"battlemap/pkg/game/decor"
)

// Button identifies which pointer button an event carries.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// Mod is a bitmask of modifier keys held during a pointer event.
type Mod uint8

const (
	// ModTarget marks the click as a target toggle instead of a selection.
	ModTarget Mod = 1 << iota
)

// Handlers is the intent sink for the state machine. Every field is optional;
// nil handlers are skipped. The machine never mutates authoritative token
// state itself: it emits these intents and expects the collaborator to echo
// confirmed updates back through the sprite manager.
type Handlers struct {
	OnSelect          func(tokenID string)
	OnDeselect        func(tokenID string)
	OnDoubleClick     func(tokenID string)
	OnContextMenu     func(tokenID string, world geom.Point)
	OnDragStart       func(tokenID string, origin geom.Point)
	OnDragMove        func(tokenID string, tentative geom.Point)
	OnDragEnd         func(tokenID string, resolved geom.Point)
	OnTargetChange    func(tokenID string, targeted bool)
	OnBackgroundClick func(world geom.Point)
}

// TokenView is the slice of the sprite manager the machine drives: hit
// testing, the drag ghost, and per-token decorations.
type TokenView interface {
	TokenAt(world geom.Point) (string, bool)
	Center(id string) (geom.Point, bool)
	ShowGhost(id string, pos geom.Point)
	MoveGhost(pos geom.Point)
	HideGhost()
	Decorations(id string) (*decor.List, bool)
}

// Converter translates screen positions into world space under the current
// viewport transform.
type Converter interface {
	ScreenToWorld(p geom.Point) (geom.Point, error)
}
