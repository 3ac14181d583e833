// Package decor renders the visual decorations attached to a token: the
// selection, hover, and target rings, and externally supplied status bars.
// The engine only draws this data; it never computes game semantics.
package decor

import "image/color"

// Kind tags a decoration entity owned by a token's visual record.
// Decorations are looked up and removed by kind, not by name scanning.
type Kind int

// Decoration kinds.
const (
	KindSelectionRing Kind = iota
	KindHoverRing
	KindTargetRing
	KindStatusBar
)

// BarPosition places a status bar above or below the token.
type BarPosition string

// Status bar positions.
const (
	BarTop    BarPosition = "top"
	BarBottom BarPosition = "bottom"
)

// StatusBarDatum is one externally computed bar: purely presentational.
// Percentage is clamped to [0,1] at draw time.
type StatusBarDatum struct {
	ID           string
	Position     BarPosition
	Percentage   float64
	DisplayColor color.RGBA
	Visible      bool
}

// Decoration is a tagged variant: rings carry only their kind, status bars
// carry the bar datum.
type Decoration struct {
	Kind Kind
	Bar  StatusBarDatum // set when Kind == KindStatusBar
}

// List holds the decorations of one token visual.
type List struct {
	items []Decoration
}

// SetRing ensures a ring decoration of the given kind is present.
func (l *List) SetRing(k Kind) {
	if k == KindStatusBar {
		return
	}
	for _, d := range l.items {
		if d.Kind == k {
			return
		}
	}
	l.items = append(l.items, Decoration{Kind: k})
}

// RemoveKind removes every decoration of the given kind.
func (l *List) RemoveKind(k Kind) {
	out := l.items[:0]
	for _, d := range l.items {
		if d.Kind != k {
			out = append(out, d)
		}
	}
	l.items = out
}

// HasKind reports whether a decoration of the given kind is present.
func (l *List) HasKind(k Kind) bool {
	for _, d := range l.items {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// UpsertBar adds or replaces a status bar keyed by its ID.
func (l *List) UpsertBar(bar StatusBarDatum) {
	for i, d := range l.items {
		if d.Kind == KindStatusBar && d.Bar.ID == bar.ID {
			l.items[i].Bar = bar
			return
		}
	}
	l.items = append(l.items, Decoration{Kind: KindStatusBar, Bar: bar})
}

// RemoveBar removes the status bar with the given ID, if present.
func (l *List) RemoveBar(id string) {
	for i, d := range l.items {
		if d.Kind == KindStatusBar && d.Bar.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// Bars returns the visible bars for one position, in insertion order.
// Insertion order fixes stacking: earlier bars sit closer to the token.
func (l *List) Bars(pos BarPosition) []StatusBarDatum {
	var out []StatusBarDatum
	for _, d := range l.items {
		if d.Kind == KindStatusBar && d.Bar.Position == pos && d.Bar.Visible {
			out = append(out, d.Bar)
		}
	}
	return out
}

// Clear removes every decoration.
func (l *List) Clear() {
	l.items = nil
}
