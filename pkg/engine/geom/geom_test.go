package geom

import (
	"math"
	"testing"
)

func TestGridToWorldRoundTrip_Exact(t *testing.T) {
	origin := Point{X: 1, Y: -2}
	for _, cellSize := range []float64{1, 25, 50, 72.5} {
		for x := -5; x <= 5; x++ {
			for y := -5; y <= 5; y++ {
				g := GridPoint{X: x, Y: y}
				got := WorldToGrid(GridToWorld(g, origin, cellSize), origin, cellSize)
				if got != g {
					t.Fatalf("round trip %v at cell %v = %v, want identical", g, cellSize, got)
				}
			}
		}
	}
}

func TestWorldScreenRoundTrip(t *testing.T) {
	pans := []Point{{0, 0}, {100, -250}, {-3.7, 9999.5}}
	scales := []float64{0.1, 0.5, 1, 1.1, 5}
	points := []Point{{0, 0}, {125, 125}, {-40.25, 3.5}, {1e4, -1e4}}

	for _, pan := range pans {
		for _, s := range scales {
			for _, p := range points {
				got := WorldToScreen(ScreenToWorld(p, pan, s), pan, s)
				if math.Abs(got.X-p.X) > 1e-6 || math.Abs(got.Y-p.Y) > 1e-6 {
					t.Errorf("round trip %v pan=%v scale=%v = %v", p, pan, s, got)
				}
			}
		}
	}
}

func TestSnapToGridCenter_Idempotent(t *testing.T) {
	const cell = 50.0
	origins := []Point{{}, {1, 1}, {0.5, -2.25}}
	points := []Point{{0, 0}, {24, 26}, {125, 125}, {-12.3, 49.9}, {1000, -75}}
	for _, o := range origins {
		for _, p := range points {
			once := SnapToGridCenter(p, o, cell)
			twice := SnapToGridCenter(once, o, cell)
			if once != twice {
				t.Errorf("snap not idempotent for %v origin %v: %v then %v", p, o, once, twice)
			}
		}
	}
}

func TestSnapToGridCenter_SnapsToCellCenters(t *testing.T) {
	got := SnapToGridCenter(Point{X: 110, Y: 140}, Point{}, 50)
	want := Point{X: 125, Y: 125}
	if got != want {
		t.Errorf("SnapToGridCenter(110,140) = %v, want %v", got, want)
	}
}

func TestSnapToGridCenter_HonorsFractionalOrigin(t *testing.T) {
	// With origin (0.5,0.5) the cell centers land on whole multiples of the
	// cell size, matching GridToWorld of the same origin.
	got := SnapToGridCenter(Point{X: 110, Y: 140}, Point{X: 0.5, Y: 0.5}, 50)
	want := Point{X: 100, Y: 150}
	if got != want {
		t.Errorf("snap with origin (0.5,0.5) = %v, want %v", got, want)
	}
	center := GridBounds{TopLeft: GridPoint{X: 2, Y: 3}, BottomRight: GridPoint{X: 2, Y: 3}}.
		CenterWorld(Point{X: 0.5, Y: 0.5}, 50)
	if snapped := SnapToGridCenter(center, Point{X: 0.5, Y: 0.5}, 50); snapped != center {
		t.Errorf("cell center %v moved to %v under snap", center, snapped)
	}
}

func TestGridBounds_SingleCellScenario(t *testing.T) {
	// pixelsPerGrid=50, token at {topLeft:(2,2), bottomRight:(2,2)}.
	b := GridBounds{TopLeft: GridPoint{2, 2}, BottomRight: GridPoint{2, 2}}
	if !b.Valid() {
		t.Fatal("bounds should be valid")
	}
	center := b.CenterWorld(Point{}, 50)
	if center != (Point{X: 125, Y: 125}) {
		t.Errorf("CenterWorld = %v, want (125,125)", center)
	}
	if got := b.PixelSize(50); got != 50 {
		t.Errorf("PixelSize = %v, want 50", got)
	}
}

func TestGridBounds_WideTokenUsesLargestAxis(t *testing.T) {
	b := GridBounds{TopLeft: GridPoint{0, 0}, BottomRight: GridPoint{2, 1}}
	if got := b.PixelSize(50); got != 150 {
		t.Errorf("PixelSize = %v, want 150", got)
	}
	if b.Width() != 3 || b.Height() != 2 {
		t.Errorf("Width/Height = %d/%d, want 3/2", b.Width(), b.Height())
	}
}

func TestBoundsFromCenter_PreservesSizeAndElevation(t *testing.T) {
	prev := GridBounds{
		TopLeft:     GridPoint{2, 2},
		BottomRight: GridPoint{3, 3},
		Elevation:   10,
	}
	// 2x2 token centered on the corner shared by cells (5,5)..(6,6).
	got := BoundsFromCenter(prev, Point{X: 300, Y: 300}, Point{}, 50)
	want := GridBounds{
		TopLeft:     GridPoint{5, 5},
		BottomRight: GridPoint{6, 6},
		Elevation:   10,
	}
	if got != want {
		t.Errorf("BoundsFromCenter = %+v, want %+v", got, want)
	}
}

func TestRectClamp(t *testing.T) {
	r := Rect{Min: Point{0, 0}, Max: Point{500, 400}}
	tests := []struct {
		in   Point
		want Point
	}{
		{Point{250, 200}, Point{250, 200}},
		{Point{-10, 200}, Point{0, 200}},
		{Point{600, 500}, Point{500, 400}},
		{Point{250, -1}, Point{250, 0}},
	}
	for _, tc := range tests {
		if got := r.Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
		if !r.Contains(r.Clamp(tc.in)) {
			t.Errorf("clamped point %v not contained", tc.in)
		}
	}
}
