// Package viewport owns the pan/zoom transform applied to the whole scene
// root, converting between screen and world space and keeping the view
// inside the map when constrained.
package viewport

import (
	"errors"

	"battlemap/pkg/engine/geom"
)

// Default zoom limits and fit margin.
const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 5.0
	fitMargin       = 0.9
)

// ErrNotInitialized is returned by coordinate conversions before Attach has
// supplied a canvas size. Callers must not silently proceed.
var ErrNotInitialized = errors.New("viewport: not attached to a canvas")

// State is the persistable part of the viewport transform.
type State struct {
	PanX  float64 `json:"panX"`
	PanY  float64 `json:"panY"`
	Scale float64 `json:"scale"`
}

// Listener receives the new state after every pan or zoom.
type Listener func(State)

// Controller owns the viewport transform. It is not safe for concurrent use;
// all calls happen on the game loop.
type Controller struct {
	panX  float64
	panY  float64
	scale float64

	minScale float64
	maxScale float64

	screenW float64
	screenH float64

	mapBounds         geom.Rect
	hasMapBounds      bool
	constrainToBounds bool

	attached  bool
	listeners []Listener
}

// New returns a controller with scale 1 and the default zoom limits.
func New() *Controller {
	return &Controller{
		scale:    1,
		minScale: DefaultMinScale,
		maxScale: DefaultMaxScale,
	}
}

// Attach supplies the canvas size. Conversions fail until this is called.
func (c *Controller) Attach(screenW, screenH float64) {
	c.screenW = screenW
	c.screenH = screenH
	c.attached = true
}

// Resize updates the canvas size and re-clamps the current pan.
func (c *Controller) Resize(screenW, screenH float64) {
	c.screenW = screenW
	c.screenH = screenH
	if !c.attached {
		c.attached = true
	}
	c.clampPan()
	c.notify()
}

// SetZoomLimits overrides the min/max scale. Current scale is re-clamped.
func (c *Controller) SetZoomLimits(min, max float64) {
	c.minScale = min
	c.maxScale = max
	c.SetZoom(c.scale)
}

// SetMapBounds sets the world-space rectangle panning is clamped to when
// constrained. Pan/zoom before this is set are permitted but unconstrained.
func (c *Controller) SetMapBounds(r geom.Rect, constrain bool) {
	c.mapBounds = r
	c.hasMapBounds = true
	c.constrainToBounds = constrain
	c.clampPan()
	c.notify()
}

// ScreenSize returns the canvas size last supplied via Attach or Resize.
func (c *Controller) ScreenSize() (w, h float64) {
	return c.screenW, c.screenH
}

// State returns the current pan/zoom state.
func (c *Controller) State() State {
	return State{PanX: c.panX, PanY: c.panY, Scale: c.scale}
}

// Restore applies a previously persisted state, clamped to current limits.
func (c *Controller) Restore(s State) {
	c.scale = clamp(s.Scale, c.minScale, c.maxScale)
	c.panX = s.PanX
	c.panY = s.PanY
	c.clampPan()
	c.notify()
}

// Scale returns the current zoom scale.
func (c *Controller) Scale() float64 { return c.scale }

// Pan shifts the view by a screen-space delta.
func (c *Controller) Pan(dx, dy float64) {
	c.SetPan(c.panX+dx, c.panY+dy)
}

// SetPan sets the pan offset, clamping to map bounds when constrained.
func (c *Controller) SetPan(x, y float64) {
	c.panX = x
	c.panY = y
	c.clampPan()
	c.notify()
}

// Zoom adjusts the scale by delta, keeping the current pan.
func (c *Controller) Zoom(delta float64) {
	c.SetZoom(c.scale + delta)
}

// SetZoom sets the scale, clamped to the configured limits.
func (c *Controller) SetZoom(scale float64) {
	c.scale = clamp(scale, c.minScale, c.maxScale)
	c.clampPan()
	c.notify()
}

// ZoomAt adjusts the scale by delta while keeping the world point under the
// given screen position fixed: the world point is computed before the zoom,
// and the pan is recomputed so it maps back to the same screen position.
func (c *Controller) ZoomAt(screenX, screenY, delta float64) {
	newScale := clamp(c.scale+delta, c.minScale, c.maxScale)
	if newScale == c.scale {
		return
	}
	cursor := geom.Point{X: screenX, Y: screenY}
	world := geom.ScreenToWorld(cursor, geom.Point{X: c.panX, Y: c.panY}, c.scale)

	c.scale = newScale
	after := geom.WorldToScreen(world, geom.Point{X: c.panX, Y: c.panY}, c.scale)
	c.panX += cursor.X - after.X
	c.panY += cursor.Y - after.Y
	c.clampPan()
	c.notify()
}

// FitToScreen scales the map to fit the canvas with a 10% margin and centers
// it. Requires Attach and map bounds; otherwise it is a no-op.
func (c *Controller) FitToScreen() {
	if !c.attached || !c.hasMapBounds {
		return
	}
	mapW := c.mapBounds.Width()
	mapH := c.mapBounds.Height()
	if mapW <= 0 || mapH <= 0 {
		return
	}
	scale := c.screenW / mapW
	if s := c.screenH / mapH; s < scale {
		scale = s
	}
	c.scale = clamp(scale*fitMargin, c.minScale, c.maxScale)
	c.panX = c.screenW/2 - (c.mapBounds.Min.X+c.mapBounds.Max.X)/2*c.scale
	c.panY = c.screenH/2 - (c.mapBounds.Min.Y+c.mapBounds.Max.Y)/2*c.scale
	c.notify()
}

// ScreenToWorld converts a screen position to world space.
func (c *Controller) ScreenToWorld(p geom.Point) (geom.Point, error) {
	if !c.attached {
		return geom.Point{}, ErrNotInitialized
	}
	return geom.ScreenToWorld(p, geom.Point{X: c.panX, Y: c.panY}, c.scale), nil
}

// WorldToScreen converts a world position to screen space.
func (c *Controller) WorldToScreen(p geom.Point) (geom.Point, error) {
	if !c.attached {
		return geom.Point{}, ErrNotInitialized
	}
	return geom.WorldToScreen(p, geom.Point{X: c.panX, Y: c.panY}, c.scale), nil
}

// OnChange registers a listener called after every pan/zoom change.
func (c *Controller) OnChange(fn Listener) {
	c.listeners = append(c.listeners, fn)
}

// clampPan keeps the visible viewport inside the map bounds. If the scaled
// map is smaller than the viewport on an axis, the map is centered on that
// axis instead.
func (c *Controller) clampPan() {
	if !c.constrainToBounds || !c.hasMapBounds || !c.attached {
		return
	}
	c.panX = clampAxis(c.panX, c.mapBounds.Min.X, c.mapBounds.Max.X, c.screenW, c.scale)
	c.panY = clampAxis(c.panY, c.mapBounds.Min.Y, c.mapBounds.Max.Y, c.screenH, c.scale)
}

func clampAxis(pan, mapMin, mapMax, screen, scale float64) float64 {
	scaled := (mapMax - mapMin) * scale
	if scaled <= screen {
		// Map smaller than viewport: center.
		return screen/2 - (mapMin+mapMax)/2*scale
	}
	// Map edge may not cross into the viewport interior.
	if hi := -mapMin * scale; pan > hi {
		pan = hi
	}
	if lo := screen - mapMax*scale; pan < lo {
		pan = lo
	}
	return pan
}

func (c *Controller) notify() {
	s := c.State()
	for _, fn := range c.listeners {
		fn(s)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
