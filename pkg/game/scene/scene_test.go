package scene

import (
	"context"
	"fmt"
	"image"
	"strings"
	"testing"
	"time"

	"battlemap/pkg/engine/geom"
	"battlemap/pkg/engine/texture"
	"battlemap/pkg/engine/viewport"
	"battlemap/pkg/game/interact"
	"battlemap/pkg/game/mapdef"
	"battlemap/pkg/game/token"
)

const testMap = `{
	"background_image": "dungeon.png",
	"resolution": {
		"pixels_per_grid": 50,
		"map_origin": {"x": 0, "y": 0},
		"map_size": {"x": 10, "y": 8}
	},
	"line_of_sight": [
		[{"x": 0, "y": 0}, {"x": 10, "y": 0}, {"x": 10, "y": 8}]
	],
	"objects_line_of_sight": [
		[{"x": 2, "y": 2}, {"x": 3, "y": 2}]
	],
	"portals": [
		{"position": {"x": 5, "y": 0}, "bounds": [{"x": 4.5, "y": 0}, {"x": 5.5, "y": 0}], "rotation": 0, "closed": true, "freestanding": false}
	],
	"lights": [
		{"position": {"x": 5, "y": 4}, "range": 3, "intensity": 0.5, "color": "ff9000", "shadows": true},
		{"position": {"x": 1, "y": 1}, "range": 2, "intensity": 0, "color": "ffffff", "shadows": false}
	]
}`

func parseTestMap(t *testing.T, src string) *mapdef.Definition {
	t.Helper()
	d, err := mapdef.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse test map: %v", err)
	}
	return d
}

func newTestScene(t *testing.T, loader texture.Loader) *Scene {
	t.Helper()
	if loader == nil {
		loader = func(ctx context.Context, url string) (image.Image, error) {
			return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
		}
	}
	view := viewport.New()
	view.Attach(800, 600)
	return New(view, texture.NewCache(texture.WithLoader(loader)), interact.Handlers{})
}

func TestComputeStripsConvertsToWorld(t *testing.T) {
	d := parseTestMap(t, testMap)

	strips := computeStrips(d, d.WallSegments)
	if len(strips) != 1 {
		t.Fatalf("strips = %d, want 1", len(strips))
	}
	if got := strips[0][1]; got.X != 500 || got.Y != 0 {
		t.Errorf("strip point = %+v, want (500, 0)", got)
	}
	if len(strips[0]) != 3 {
		t.Errorf("strip has %d points, want 3", len(strips[0]))
	}
}

func TestComputeStripsSkipsDegenerate(t *testing.T) {
	d := parseTestMap(t, testMap)
	segs := [][]mapdef.Point{
		{{X: 1, Y: 1}},
		{{X: 0, Y: 0}, {X: 1, Y: 0}},
	}
	strips := computeStrips(d, segs)
	if len(strips) != 1 {
		t.Errorf("strips = %d, want 1 (single-point entries skipped)", len(strips))
	}
}

func TestComputePortals(t *testing.T) {
	d := parseTestMap(t, testMap)

	portals := computePortals(d)
	if len(portals) != 1 {
		t.Fatalf("portals = %d, want 1", len(portals))
	}
	if !portals[0].Closed {
		t.Error("portal lost its closed flag")
	}
	if portals[0].Points[0].X != 225 {
		t.Errorf("portal point X = %v, want 225", portals[0].Points[0].X)
	}
}

func TestComputeLights(t *testing.T) {
	d := parseTestMap(t, testMap)

	lights := computeLights(d)
	if len(lights) != 2 {
		t.Fatalf("lights = %d, want 2", len(lights))
	}
	l := lights[0]
	if l.Center.X != 250 || l.Center.Y != 200 {
		t.Errorf("light center = %+v, want (250, 200)", l.Center)
	}
	if l.OuterRadius != 150 {
		t.Errorf("outer radius = %v, want 150 (3 cells)", l.OuterRadius)
	}
	if l.InnerRadius >= l.OuterRadius {
		t.Error("inner core not smaller than the outer disc")
	}
	if l.OuterColor.R != 255 || l.OuterColor.G != 144 {
		t.Errorf("light color = %+v, want ff9000", l.OuterColor)
	}
}

func TestZeroIntensityLightStaysVisible(t *testing.T) {
	d := parseTestMap(t, testMap)

	lights := computeLights(d)
	if a := lights[1].OuterColor.A; a < minLightAlpha {
		t.Errorf("alpha = %d below the visible minimum %d", a, minLightAlpha)
	}
	if a := lights[0].OuterColor.A; a <= minLightAlpha || a > maxLightAlpha {
		t.Errorf("intensity 0.5 alpha = %d out of range", lights[0].OuterColor.A)
	}
}

func TestGridLinesCoverMap(t *testing.T) {
	d := parseTestMap(t, testMap)

	lines := gridLines(d)
	// 10x8 cells: 11 vertical + 9 horizontal.
	if len(lines) != 20 {
		t.Errorf("grid lines = %d, want 20", len(lines))
	}
	for _, l := range lines {
		if len(l) != 2 {
			t.Fatalf("grid line with %d points", len(l))
		}
	}
}

func TestLoadMapPopulatesLayers(t *testing.T) {
	s := newTestScene(t, nil)

	if err := s.LoadMap(parseTestMap(t, testMap)); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if len(s.walls) != 1 || len(s.objects) != 1 || len(s.portals) != 1 || len(s.lights) != 2 {
		t.Errorf("layer geometry incomplete: walls=%d objects=%d portals=%d lights=%d",
			len(s.walls), len(s.objects), len(s.portals), len(s.lights))
	}
	if s.Definition() == nil {
		t.Error("definition not retained")
	}
	if !s.buffered {
		t.Error("a 500x400 map should use layer buffers")
	}
}

func TestLoadMapRejectsInvalidAndLeavesSceneEmpty(t *testing.T) {
	s := newTestScene(t, nil)
	if err := s.LoadMap(parseTestMap(t, testMap)); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	bad := parseTestMap(t, `{"resolution": {"pixels_per_grid": 0, "map_size": {"x": 1, "y": 1}}}`)
	if err := s.LoadMap(bad); err == nil {
		t.Fatal("invalid map accepted")
	}
	if s.Definition() != nil || len(s.walls) != 0 || len(s.lights) != 0 {
		t.Error("failed load left stale layers behind")
	}
}

func TestLoadMapConfiguresCollaborators(t *testing.T) {
	s := newTestScene(t, nil)
	if err := s.LoadMap(parseTestMap(t, testMap)); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	if err := s.Tokens.AddToken(tokenAt(2, 2)); err != nil {
		t.Fatalf("AddToken: %v", err)
	}
	sp, _ := s.Tokens.Sprite("t")
	if sp.PixelSize != 50 {
		t.Errorf("sprite size = %v, want 50 from map grid", sp.PixelSize)
	}
	if sp.WorldPos.X != 125 {
		t.Errorf("sprite X = %v, want 125", sp.WorldPos.X)
	}
}

func TestLoadMapSharesOriginBetweenTokensAndGeometry(t *testing.T) {
	s := newTestScene(t, nil)
	shifted := strings.Replace(testMap, `"map_origin": {"x": 0, "y": 0}`, `"map_origin": {"x": 1, "y": 1}`, 1)
	d := parseTestMap(t, shifted)
	if err := s.LoadMap(d); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	// Grid point (2,2) through the map's conversion lands at world (50,50).
	wall := d.ToWorld(mapdef.Point{X: 2, Y: 2})
	if wall.X != 50 || wall.Y != 50 {
		t.Fatalf("wall vertex = %+v, want (50, 50)", wall)
	}

	// A token occupying cell (2,2) must center on that same cell, not on
	// the unshifted grid.
	if err := s.Tokens.AddToken(tokenAt(2, 2)); err != nil {
		t.Fatalf("AddToken: %v", err)
	}
	sp, _ := s.Tokens.Sprite("t")
	if sp.WorldPos.X != 75 || sp.WorldPos.Y != 75 {
		t.Errorf("token center = %+v, want (75, 75) on the shifted grid", sp.WorldPos)
	}
}

func TestBackgroundFailureLeavesMapUsable(t *testing.T) {
	s := newTestScene(t, func(ctx context.Context, url string) (image.Image, error) {
		return nil, fmt.Errorf("boom")
	})
	if err := s.LoadMap(parseTestMap(t, testMap)); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	waitForTexture(t, s, "dungeon.png")
	if s.bgSrc != nil {
		t.Error("failed background was applied to the scene")
	}
	if s.Definition() == nil {
		t.Error("scene dropped the map over a background failure")
	}
}

func TestStaleBackgroundFromPreviousMapIgnored(t *testing.T) {
	gate := make(chan struct{})
	s := newTestScene(t, func(ctx context.Context, url string) (image.Image, error) {
		if url == "dungeon.png" {
			<-gate
		}
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	})
	if err := s.LoadMap(parseTestMap(t, testMap)); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	second := strings.Replace(testMap, "dungeon.png", "crypt.png", 1)
	if err := s.LoadMap(parseTestMap(t, second)); err != nil {
		t.Fatalf("second LoadMap: %v", err)
	}
	close(gate)
	waitForTexture(t, s, "dungeon.png")

	// Only the current map's background may land.
	waitForTexture(t, s, "crypt.png")
	if s.bgSrc == nil {
		t.Error("current map's background missing")
	}
}

func TestVisibilityTogglesDefaultOn(t *testing.T) {
	s := newTestScene(t, nil)
	if !s.ShowWalls || !s.ShowObjects || !s.ShowPortals || !s.ShowGrid {
		t.Error("static layers should default to visible")
	}
	if s.RevealLighting {
		t.Error("lighting should stay hidden until revealed")
	}
}

func tokenAt(x, y int) token.Token {
	return token.Token{
		ID:      "t",
		Visible: true,
		Bounds: geom.GridBounds{
			TopLeft:     geom.GridPoint{X: x, Y: y},
			BottomRight: geom.GridPoint{X: x, Y: y},
		},
	}
}

func waitForTexture(t *testing.T, s *Scene, url string) {
	t.Helper()
	for i := 0; i < 200; i++ {
		s.textures.Flush()
		if s.textures.Loaded(url) {
			s.textures.Flush()
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("texture %q never resolved", url)
}
