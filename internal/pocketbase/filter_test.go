package pocketbase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	created := time.Date(2024, 5, 6, 7, 8, 9, 10_000_000, time.FixedZone("x", 3600))

	cases := []struct {
		name   string
		expr   string
		params map[string]any
		want   string
	}{
		{"no params", "stock > 0", nil, "stock > 0"},
		{"string", "slug = {:slug}", map[string]any{"slug": "red-shoe"}, `slug = "red-shoe"`},
		{"escapes quotes", "slug = {:slug}", map[string]any{"slug": `a"b\c`}, `slug = "a\"b\\c"`},
		{"numbers and bools", "stock <= {:n} && verified = {:v}", map[string]any{"n": 5, "v": true}, "stock <= 5 && verified = true"},
		{"float", "price > {:p}", map[string]any{"p": 9.5}, "price > 9.5"},
		{"time", "created >= {:t}", map[string]any{"t": created}, `created >= "2024-05-06 06:08:09.010Z"`},
		{"nil", "avatar = {:a}", map[string]any{"a": nil}, "avatar = null"},
		{"unknown placeholder kept", "slug = {:other}", map[string]any{"slug": "x"}, "slug = {:other}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Filter(tc.expr, tc.params))
		})
	}
}
