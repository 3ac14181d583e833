// Package mapdef models the UVTT-style map definition consumed by the scene
// builder: grid resolution, wall and object line-of-sight segments, portals,
// and lights. All geometry arrives in grid units; the renderer converts to
// pixels once at load time.
package mapdef

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"battlemap/pkg/engine/geom"
)

// Point is a 2D position in grid units as stored in the map file.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Resolution describes the grid of the map.
type Resolution struct {
	PixelsPerGrid float64 `json:"pixels_per_grid"`
	MapOrigin     Point   `json:"map_origin"`
	MapSize       Point   `json:"map_size"`
}

// Portal is a door/window opening in a wall.
type Portal struct {
	Position     Point   `json:"position"`
	Bounds       []Point `json:"bounds"`
	Rotation     float64 `json:"rotation"`
	Closed       bool    `json:"closed"`
	Freestanding bool    `json:"freestanding"`
}

// Light is a point light source.
type Light struct {
	Position  Point      `json:"position"`
	Range     float64    `json:"range"`
	Intensity float64    `json:"intensity"`
	Color     LightColor `json:"color"`
	Shadows   bool       `json:"shadows"`
}

// Definition is a complete map as supplied by the persistence collaborator.
type Definition struct {
	BackgroundImageURL string      `json:"background_image,omitempty"`
	Resolution         Resolution  `json:"resolution"`
	WallSegments       [][]Point   `json:"line_of_sight"`
	ObjectWallSegments [][]Point   `json:"objects_line_of_sight"`
	Portals            []Portal    `json:"portals"`
	Lights             []Light     `json:"lights"`
}

// Parse decodes and validates a map definition.
func Parse(r io.Reader) (*Definition, error) {
	var d Definition
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("mapdef: decode: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseFile reads and parses a map definition from disk.
func ParseFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapdef: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks the fields the renderer cannot work without.
func (d *Definition) Validate() error {
	if d.Resolution.PixelsPerGrid <= 0 {
		return fmt.Errorf("mapdef: pixels_per_grid must be positive, got %v", d.Resolution.PixelsPerGrid)
	}
	if d.Resolution.MapSize.X <= 0 || d.Resolution.MapSize.Y <= 0 {
		return fmt.Errorf("mapdef: map_size must be positive, got %vx%v",
			d.Resolution.MapSize.X, d.Resolution.MapSize.Y)
	}
	return nil
}

// CellSize returns the pixel edge length of one grid cell.
func (d *Definition) CellSize() float64 { return d.Resolution.PixelsPerGrid }

// Origin returns the grid origin used for grid/world conversions.
func (d *Definition) Origin() geom.Point {
	return geom.Point{X: d.Resolution.MapOrigin.X, Y: d.Resolution.MapOrigin.Y}
}

// WorldBounds returns the map extent in world/pixel space. The origin cell
// maps to world (0,0).
func (d *Definition) WorldBounds() geom.Rect {
	return geom.Rect{
		Max: geom.Point{
			X: d.Resolution.MapSize.X * d.Resolution.PixelsPerGrid,
			Y: d.Resolution.MapSize.Y * d.Resolution.PixelsPerGrid,
		},
	}
}

// ToWorld converts a grid-unit map point to world/pixel space.
func (d *Definition) ToWorld(p Point) geom.Point {
	return geom.Point{
		X: (p.X - d.Resolution.MapOrigin.X) * d.Resolution.PixelsPerGrid,
		Y: (p.Y - d.Resolution.MapOrigin.Y) * d.Resolution.PixelsPerGrid,
	}
}
