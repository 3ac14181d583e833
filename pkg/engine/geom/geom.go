// Package geom provides the pure coordinate math shared by the map renderer:
// conversions between grid cells, world/pixel space, and screen space.
package geom

import "math"

// Point is a position in continuous world (or screen) space, in pixels.
type Point struct {
	X float64
	Y float64
}

// GridPoint is an integer grid-cell coordinate.
type GridPoint struct {
	X int
	Y int
}

// GridToWorld converts a grid cell to the world position of its top-left
// corner: world = (grid - origin) * cellSize.
func GridToWorld(g GridPoint, origin Point, cellSize float64) Point {
	return Point{
		X: (float64(g.X) - origin.X) * cellSize,
		Y: (float64(g.Y) - origin.Y) * cellSize,
	}
}

// WorldToGrid is the inverse of GridToWorld, rounded to the nearest cell.
// Composing GridToWorld then WorldToGrid is exact for integer grid input.
func WorldToGrid(w Point, origin Point, cellSize float64) GridPoint {
	return GridPoint{
		X: int(math.Round(w.X/cellSize + origin.X)),
		Y: int(math.Round(w.Y/cellSize + origin.Y)),
	}
}

// SnapToGridCenter snaps a world position to the center of the nearest grid
// cell, on the same origin-shifted grid GridToWorld uses. Snapping an
// already-snapped point returns the same point.
func SnapToGridCenter(p Point, origin Point, cellSize float64) Point {
	return Point{
		X: (math.Round(p.X/cellSize+origin.X-0.5) - origin.X + 0.5) * cellSize,
		Y: (math.Round(p.Y/cellSize+origin.Y-0.5) - origin.Y + 0.5) * cellSize,
	}
}

// WorldToScreen applies a viewport pan/scale: screen = world*scale + pan.
func WorldToScreen(p Point, pan Point, scale float64) Point {
	return Point{
		X: p.X*scale + pan.X,
		Y: p.Y*scale + pan.Y,
	}
}

// ScreenToWorld is the inverse of WorldToScreen: world = (screen - pan)/scale.
func ScreenToWorld(p Point, pan Point, scale float64) Point {
	return Point{
		X: (p.X - pan.X) / scale,
		Y: (p.Y - pan.Y) / scale,
	}
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned world-space rectangle.
type Rect struct {
	Min Point
	Max Point
}

// Width returns the rectangle's horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the rectangle's vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside or on the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Clamp returns the nearest point to p that lies inside or on the rectangle.
func (r Rect) Clamp(p Point) Point {
	if p.X < r.Min.X {
		p.X = r.Min.X
	}
	if p.X > r.Max.X {
		p.X = r.Max.X
	}
	if p.Y < r.Min.Y {
		p.Y = r.Min.Y
	}
	if p.Y > r.Max.Y {
		p.Y = r.Max.Y
	}
	return p
}
