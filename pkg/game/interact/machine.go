// Package interact turns raw pointer events on the map canvas into selection,
// targeting, and drag intents.
package interact

import (
	"log"
	"time"

	"github.com/zyedidia/generic/mapset"

	"battlemap/pkg/engine/geom"
	"battlemap/pkg/game/decor"
)

// Gesture defaults, screen-space pixels and wall-clock durations.
const (
	DragThreshold     = 5.0
	DoubleClickWindow = 300 * time.Millisecond
	LongPressDelay    = 600 * time.Millisecond
)

type state int

const (
	stateIdle state = iota
	statePotentialDrag
	stateDragging
)

// dragSession tracks one press from pointer-down to its resolution. It exists
// from pointer-down over a token until pointer-up, cancel, or long-press.
type dragSession struct {
	tokenID     string
	startScreen geom.Point
	originWorld geom.Point // token center at press time
	grabOffset  geom.Point // pointer world position minus token center
	pressedAt   time.Time
}

// Machine disambiguates click, double-click, long-press, and drag over token
// visuals and the empty canvas. It is single-threaded and driven from the
// game loop; call Tick every frame for long-press detection.
type Machine struct {
	tokens   TokenView
	convert  Converter
	handlers Handlers
	now      func() time.Time

	gridOrigin geom.Point
	cellSize   float64
	mapBounds  geom.Rect
	hasBounds  bool

	st      state
	session *dragSession

	selected string
	targets  mapset.Set[string]
	hovered  string

	lastClickAt time.Time
	lastClickID string
}

// NewMachine wires the machine to a token view, a coordinate converter, and
// the intent handler set.
func NewMachine(tokens TokenView, convert Converter, handlers Handlers) *Machine {
	return &Machine{
		tokens:   tokens,
		convert:  convert,
		handlers: handlers,
		now:      time.Now,
		targets:  mapset.New[string](),
		cellSize: 1,
	}
}

// SetClock replaces the wall clock (test hook).
func (m *Machine) SetClock(now func() time.Time) { m.now = now }

// SetGrid sets the grid origin and cell size drag results snap to. The origin
// must match the one the token manager was configured with.
func (m *Machine) SetGrid(origin geom.Point, cellSize float64) {
	m.gridOrigin = origin
	if cellSize > 0 {
		m.cellSize = cellSize
	}
}

// SetMapBounds constrains resolved drag positions to the given world rect.
func (m *Machine) SetMapBounds(r geom.Rect) {
	m.mapBounds = r
	m.hasBounds = true
}

// PointerDown feeds a press at a screen position.
func (m *Machine) PointerDown(screen geom.Point, btn Button, mods Mod) {
	world, err := m.convert.ScreenToWorld(screen)
	if err != nil {
		log.Printf("interact: pointer down dropped: %v", err)
		return
	}
	id, hit := m.tokens.TokenAt(world)

	// Context menu fires independently of the click/drag pipeline.
	if btn == ButtonRight {
		if hit {
			m.fireContextMenu(id, world)
		}
		return
	}
	if !hit {
		m.Deselect()
		if h := m.handlers.OnBackgroundClick; h != nil {
			h(world)
		}
		return
	}
	if mods&ModTarget != 0 {
		m.ToggleTarget(id)
		return
	}

	now := m.now()
	if id == m.lastClickID && now.Sub(m.lastClickAt) <= DoubleClickWindow {
		// Second press in the window: double-click wins over any pending drag.
		m.abortSession()
		m.lastClickID = ""
		if h := m.handlers.OnDoubleClick; h != nil {
			h(id)
		}
		return
	}

	center, ok := m.tokens.Center(id)
	if !ok {
		return
	}
	m.session = &dragSession{
		tokenID:     id,
		startScreen: screen,
		originWorld: center,
		grabOffset:  geom.Point{X: world.X - center.X, Y: world.Y - center.Y},
		pressedAt:   now,
	}
	m.st = statePotentialDrag
}

// PointerMove feeds pointer motion. Below the threshold a press stays a
// potential click; beyond it the press becomes a drag with a ghost visual.
func (m *Machine) PointerMove(screen geom.Point) {
	world, err := m.convert.ScreenToWorld(screen)
	if err != nil {
		return
	}
	switch m.st {
	case stateIdle:
		m.updateHover(world)
	case statePotentialDrag:
		if geom.Dist(screen, m.session.startScreen) <= DragThreshold {
			return
		}
		m.st = stateDragging
		m.tokens.ShowGhost(m.session.tokenID, m.session.originWorld)
		if h := m.handlers.OnDragStart; h != nil {
			h(m.session.tokenID, m.session.originWorld)
		}
		m.dragTo(world)
	case stateDragging:
		m.dragTo(world)
	}
}

// PointerUp resolves the press: a drag snaps to the grid center, then clamps
// to map bounds; a sub-threshold press is a plain click and selects.
func (m *Machine) PointerUp(screen geom.Point) {
	world, err := m.convert.ScreenToWorld(screen)
	if err != nil {
		m.abortSession()
		return
	}
	switch m.st {
	case stateDragging:
		s := m.session
		m.st = stateIdle
		m.session = nil
		m.tokens.HideGhost()

		tentative := geom.Point{X: world.X - s.grabOffset.X, Y: world.Y - s.grabOffset.Y}
		resolved := geom.SnapToGridCenter(tentative, m.gridOrigin, m.cellSize)
		if m.hasBounds {
			resolved = m.mapBounds.Clamp(resolved)
		}
		if h := m.handlers.OnDragEnd; h != nil {
			h(s.tokenID, resolved)
		}
	case statePotentialDrag:
		s := m.session
		m.st = stateIdle
		m.session = nil
		m.lastClickAt = m.now()
		m.lastClickID = s.tokenID
		m.Select(s.tokenID)
	}
}

// PointerCancel drops the current press without emitting any intent. The
// ghost and the original sprite's opacity are always restored.
func (m *Machine) PointerCancel() {
	m.abortSession()
}

// Tick runs time-based detection; call it once per frame. A press held past
// the long-press delay without crossing the drag threshold becomes a context
// menu, standing in for right-click on touch devices.
func (m *Machine) Tick(now time.Time) {
	if m.st != statePotentialDrag {
		return
	}
	if now.Sub(m.session.pressedAt) < LongPressDelay {
		return
	}
	s := m.session
	m.session = nil
	m.st = stateIdle
	world := geom.Point{X: s.originWorld.X + s.grabOffset.X, Y: s.originWorld.Y + s.grabOffset.Y}
	m.fireContextMenu(s.tokenID, world)
}

// Select makes the token the single selected one, deselecting any previous.
func (m *Machine) Select(id string) {
	if m.selected == id {
		return
	}
	m.Deselect()
	m.selected = id
	m.setRing(id, decor.KindSelectionRing)
	if h := m.handlers.OnSelect; h != nil {
		h(id)
	}
}

// Deselect clears the current selection, if any.
func (m *Machine) Deselect() {
	if m.selected == "" {
		return
	}
	id := m.selected
	m.selected = ""
	m.removeRing(id, decor.KindSelectionRing)
	if h := m.handlers.OnDeselect; h != nil {
		h(id)
	}
}

// Selected returns the selected token id, or "".
func (m *Machine) Selected() string { return m.selected }

// ToggleTarget flips a token's targeted state.
func (m *Machine) ToggleTarget(id string) {
	if m.targets.Has(id) {
		m.targets.Remove(id)
		m.removeRing(id, decor.KindTargetRing)
		if h := m.handlers.OnTargetChange; h != nil {
			h(id, false)
		}
		return
	}
	m.targets.Put(id)
	m.setRing(id, decor.KindTargetRing)
	if h := m.handlers.OnTargetChange; h != nil {
		h(id, true)
	}
}

// Targeted reports whether a token is in the target set.
func (m *Machine) Targeted(id string) bool { return m.targets.Has(id) }

// TargetCount returns the number of targeted tokens.
func (m *Machine) TargetCount() int { return m.targets.Size() }

// ClearTargets empties the target set, notifying per token.
func (m *Machine) ClearTargets() {
	m.targets.Each(func(id string) {
		m.removeRing(id, decor.KindTargetRing)
		if h := m.handlers.OnTargetChange; h != nil {
			h(id, false)
		}
	})
	m.targets = mapset.New[string]()
}

// ForgetToken drops any machine state referring to a removed token.
func (m *Machine) ForgetToken(id string) {
	if m.selected == id {
		m.selected = ""
	}
	if m.targets.Has(id) {
		m.targets.Remove(id)
	}
	if m.hovered == id {
		m.hovered = ""
	}
	if m.session != nil && m.session.tokenID == id {
		m.abortSession()
	}
	if m.lastClickID == id {
		m.lastClickID = ""
	}
}

// Teardown aborts any in-flight gesture and clears decoration state.
func (m *Machine) Teardown() {
	m.abortSession()
	m.Deselect()
	m.ClearTargets()
	if m.hovered != "" {
		m.removeRing(m.hovered, decor.KindHoverRing)
		m.hovered = ""
	}
}

func (m *Machine) abortSession() {
	if m.st == stateDragging {
		m.tokens.HideGhost()
	}
	m.st = stateIdle
	m.session = nil
}

func (m *Machine) dragTo(world geom.Point) {
	s := m.session
	tentative := geom.Point{X: world.X - s.grabOffset.X, Y: world.Y - s.grabOffset.Y}
	m.tokens.MoveGhost(tentative)
	if h := m.handlers.OnDragMove; h != nil {
		h(s.tokenID, tentative)
	}
}

func (m *Machine) updateHover(world geom.Point) {
	id, _ := m.tokens.TokenAt(world)
	if id == m.hovered {
		return
	}
	if m.hovered != "" {
		m.removeRing(m.hovered, decor.KindHoverRing)
	}
	m.hovered = id
	if id != "" {
		m.setRing(id, decor.KindHoverRing)
	}
}

func (m *Machine) fireContextMenu(id string, world geom.Point) {
	if h := m.handlers.OnContextMenu; h != nil {
		h(id, world)
	}
}

func (m *Machine) setRing(id string, kind decor.Kind) {
	if l, ok := m.tokens.Decorations(id); ok {
		l.SetRing(kind)
	}
}

func (m *Machine) removeRing(id string, kind decor.Kind) {
	if l, ok := m.tokens.Decorations(id); ok {
		l.RemoveKind(kind)
	}
}
