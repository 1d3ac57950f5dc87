package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition(t *testing.T) {
	cases := []struct {
		name    string
		trigger Rect
		scroll  Scroll
		width   float64
		want    Point
	}{
		{"no scroll", Rect{Top: 100, Right: 800, Bottom: 132, Left: 768}, Scroll{}, 0, Point{Top: 137, Left: 608}},
		{"scrolled", Rect{Top: 10, Right: 500, Bottom: 42, Left: 468}, Scroll{X: 20, Y: 300}, DefaultWidth, Point{Top: 347, Left: 328}},
		{"custom width", Rect{Bottom: 50, Right: 300}, Scroll{}, 100, Point{Top: 55, Left: 200}},
		{"clamped left", Rect{Bottom: 20, Right: 60}, Scroll{}, 0, Point{Top: 25, Left: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Position(tc.trigger, tc.scroll, tc.width))
		})
	}
}
