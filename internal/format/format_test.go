package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	assert.Equal(t, "$0.00", Price(0))
	assert.Equal(t, "$19.99", Price(19.99))
	assert.Equal(t, "$1,234.50", Price(1234.5))
	assert.Equal(t, "$1,000,000.00", Price(1e6))
	assert.Equal(t, "-$5.25", Price(-5.25))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "Mar 9, 2024", Date(time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", Date(time.Time{}))
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Red Running Shoe":  "red-running-shoe",
		"50% Off! Deal":     "50-off-deal",
		"already-slugged_1": "already-slugged_1",
		"  Padded  ":        "--padded--",
		"Café Crème":        "caf-crme",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), "slug of %q", in)
	}
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`<p onclick="x()">Soft <b>cotton</b></p><script>alert(1)</script>`)
	assert.Equal(t, `<p>Soft <b>cotton</b></p>`, out)
}

func TestExcerpt(t *testing.T) {
	desc := `<h2>Great</h2><p>A   very <em>comfortable</em> chair.</p><script>var x;</script><p>Second</p>`
	assert.Equal(t, "Great A very comfortable chair. Second", Excerpt(desc, 100))
	assert.Equal(t, "Great A very…", Excerpt(desc, 13))
	assert.Equal(t, "", Excerpt(desc, 0))
	assert.Equal(t, "plain", Excerpt("plain", 10))
}
