// Package menu places row action menus. The menu is rendered at the end of
// <body> so table overflow cannot clip it, which means its coordinates must be
// computed from the trigger button's viewport rectangle plus page scroll.
package menu

// DefaultWidth is the rendered width of an action menu in CSS pixels.
const DefaultWidth = 192

// gap separates the menu from the bottom edge of its trigger.
const gap = 5

// Rect is a viewport-relative bounding box as reported by getBoundingClientRect.
type Rect struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Scroll is the page scroll offset.
type Scroll struct {
	X float64
	Y float64
}

// Point is a document-relative position.
type Point struct {
	Top  float64
	Left float64
}

// Position aligns the menu's right edge with the trigger's right edge, just
// below it. A non-positive width falls back to DefaultWidth. Left never goes
// negative.
func Position(trigger Rect, scroll Scroll, width float64) Point {
	if width <= 0 {
		width = DefaultWidth
	}
	p := Point{
		Top:  trigger.Bottom + scroll.Y + gap,
		Left: trigger.Right + scroll.X - width,
	}
	if p.Left < 0 {
		p.Left = 0
	}
	return p
}
