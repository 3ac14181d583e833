package mapdef

import (
	"encoding/json"
	"image/color"
	"strings"
	"testing"

	"battlemap/pkg/engine/geom"
)

const sampleMap = `{
	"background_image": "maps/crypt.png",
	"resolution": {
		"pixels_per_grid": 50,
		"map_origin": {"x": 0, "y": 0},
		"map_size": {"x": 20, "y": 15}
	},
	"line_of_sight": [
		[{"x": 0, "y": 0}, {"x": 5, "y": 0}, {"x": 5, "y": 4}]
	],
	"objects_line_of_sight": [
		[{"x": 2, "y": 2}, {"x": 3, "y": 2}]
	],
	"portals": [
		{
			"position": {"x": 5, "y": 2},
			"bounds": [{"x": 4.8, "y": 1.8}, {"x": 5.2, "y": 2.2}],
			"rotation": 0,
			"closed": true,
			"freestanding": false
		}
	],
	"lights": [
		{"position": {"x": 10, "y": 7}, "range": 4, "intensity": 0.8, "color": "#ffaa00", "shadows": true}
	]
}`

func TestParseSampleMap(t *testing.T) {
	d, err := Parse(strings.NewReader(sampleMap))
	if err != nil {
		t.Fatal(err)
	}
	if d.BackgroundImageURL != "maps/crypt.png" {
		t.Errorf("background = %q", d.BackgroundImageURL)
	}
	if d.CellSize() != 50 {
		t.Errorf("CellSize = %v, want 50", d.CellSize())
	}
	if len(d.WallSegments) != 1 || len(d.WallSegments[0]) != 3 {
		t.Errorf("wall segments = %v", d.WallSegments)
	}
	if len(d.ObjectWallSegments) != 1 {
		t.Errorf("object wall segments = %v", d.ObjectWallSegments)
	}
	if len(d.Portals) != 1 || !d.Portals[0].Closed {
		t.Errorf("portals = %+v", d.Portals)
	}
	if len(d.Lights) != 1 || !d.Lights[0].Shadows {
		t.Errorf("lights = %+v", d.Lights)
	}
	if got := d.Lights[0].Color.Color(); got != (color.RGBA{255, 170, 0, 255}) {
		t.Errorf("light color = %v", got)
	}
	if got := d.WorldBounds(); got != (geom.Rect{Max: geom.Point{X: 1000, Y: 750}}) {
		t.Errorf("WorldBounds = %v", got)
	}
}

func TestParseRejectsBadResolution(t *testing.T) {
	bad := []string{
		`{"resolution": {"pixels_per_grid": 0, "map_size": {"x": 10, "y": 10}}}`,
		`{"resolution": {"pixels_per_grid": 50, "map_size": {"x": 0, "y": 10}}}`,
	}
	for _, src := range bad {
		if _, err := Parse(strings.NewReader(src)); err == nil {
			t.Errorf("Parse(%s) succeeded, want error", src)
		}
	}
}

func TestToWorldHonorsOrigin(t *testing.T) {
	d := &Definition{Resolution: Resolution{
		PixelsPerGrid: 50,
		MapOrigin:     Point{X: 2, Y: 1},
		MapSize:       Point{X: 10, Y: 10},
	}}
	got := d.ToWorld(Point{X: 4, Y: 3})
	if got != (geom.Point{X: 100, Y: 100}) {
		t.Errorf("ToWorld = %v, want (100,100)", got)
	}
}

func TestLightColorVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want color.RGBA
	}{
		{"six digit", `"ffaa00"`, color.RGBA{255, 170, 0, 255}},
		{"hash prefixed", `"#00ff00"`, color.RGBA{0, 255, 0, 255}},
		{"eight digit with alpha", `"ff000080"`, color.RGBA{255, 0, 0, 128}},
		{"hash and alpha", `"#0000ff40"`, color.RGBA{0, 0, 255, 64}},
		{"numeric rgb", `16755200`, color.RGBA{255, 170, 0, 255}},
		{"malformed text", `"not a color"`, White},
		{"wrong length", `"ffaa"`, White},
		{"bad alpha digits", `"ffaa00zz"`, White},
		{"negative number", `-5`, White},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var lc LightColor
			if err := json.Unmarshal([]byte(tc.in), &lc); err != nil {
				t.Fatalf("UnmarshalJSON returned error: %v", err)
			}
			if got := lc.Color(); got != tc.want {
				t.Errorf("Color() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLightColorAbsentDefaultsToWhite(t *testing.T) {
	var l Light
	if err := json.Unmarshal([]byte(`{"position": {"x": 1, "y": 1}, "range": 2}`), &l); err != nil {
		t.Fatal(err)
	}
	if l.Color.Color() != White {
		t.Errorf("absent color = %v, want white", l.Color.Color())
	}
}
