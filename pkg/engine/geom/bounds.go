package geom

// GridBounds is an inclusive rectangle of grid cells occupied by a token,
// plus its elevation. BottomRight must be >= TopLeft on both axes.
type GridBounds struct {
	TopLeft     GridPoint
	BottomRight GridPoint
	Elevation   float64
}

// Valid reports whether the bounds describe a non-inverted cell rectangle.
func (b GridBounds) Valid() bool {
	return b.BottomRight.X >= b.TopLeft.X && b.BottomRight.Y >= b.TopLeft.Y
}

// Width returns the number of cells covered horizontally (inclusive).
func (b GridBounds) Width() int { return b.BottomRight.X - b.TopLeft.X + 1 }

// Height returns the number of cells covered vertically (inclusive).
func (b GridBounds) Height() int { return b.BottomRight.Y - b.TopLeft.Y + 1 }

// PixelSize returns the sprite edge length for these bounds:
// max(width, height) * cellSize. Tokens render square.
func (b GridBounds) PixelSize(cellSize float64) float64 {
	w, h := b.Width(), b.Height()
	if h > w {
		w = h
	}
	return float64(w) * cellSize
}

// CenterWorld returns the world-space center of the covered cells.
func (b GridBounds) CenterWorld(origin Point, cellSize float64) Point {
	tl := GridToWorld(b.TopLeft, origin, cellSize)
	return Point{
		X: tl.X + float64(b.Width())*cellSize/2,
		Y: tl.Y + float64(b.Height())*cellSize/2,
	}
}

// BoundsFromCenter rebuilds grid bounds around a new world-space center,
// preserving the cell footprint and elevation of prev. The center is assumed
// to already be snapped so the footprint lands on whole cells.
func BoundsFromCenter(prev GridBounds, center Point, origin Point, cellSize float64) GridBounds {
	w, h := prev.Width(), prev.Height()
	tl := WorldToGrid(Point{
		X: center.X - float64(w)*cellSize/2,
		Y: center.Y - float64(h)*cellSize/2,
	}, origin, cellSize)
	return GridBounds{
		TopLeft:     tl,
		BottomRight: GridPoint{X: tl.X + w - 1, Y: tl.Y + h - 1},
		Elevation:   prev.Elevation,
	}
}
