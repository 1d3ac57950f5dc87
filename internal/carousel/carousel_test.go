package carousel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarousel_IndexWraps(t *testing.T) {
	c := New(DefaultSlides, 0, 0)
	assert.Equal(t, 0, c.Index())

	c.Paginate(1)
	c.Paginate(1)
	c.Paginate(1)
	assert.Equal(t, 3, c.Page())
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, 1, c.Direction())

	c = New(DefaultSlides, 0, 0)
	c.Paginate(-1)
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, -1, c.Direction())

	assert.Equal(t, 1, New(DefaultSlides, -5, 0).Index())
	assert.Equal(t, 2, New(DefaultSlides, 8, 0).Index())
}

func TestCarousel_GoTo(t *testing.T) {
	c := New(DefaultSlides, 0, 0)
	c.GoTo(2)
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, 1, c.Direction())

	c.GoTo(0)
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, -1, c.Direction())

	// Same slide counts as backwards.
	c.GoTo(0)
	assert.Equal(t, -1, c.Direction())
}

func TestCarousel_State(t *testing.T) {
	s, ok := New(DefaultSlides, 0, 0).State()
	require.True(t, ok)
	assert.Equal(t, "Huge Summer Sale!", s.Slide.Title)
	assert.Equal(t, "center", s.Enter)
	assert.Equal(t, 3, s.Total)

	s, _ = New(DefaultSlides, 4, 7).State()
	assert.Equal(t, "Check Out Our New Arrivals", s.Slide.Title)
	assert.Equal(t, 1, s.Direction)
	assert.Equal(t, "enter-from-right", s.Enter)
	assert.Equal(t, "exit-to-left", s.Exit)

	s, _ = New(DefaultSlides, -1, -1).State()
	assert.Equal(t, "Free Shipping On All Orders", s.Slide.Title)
	assert.Equal(t, "enter-from-left", s.Enter)
	assert.Equal(t, "exit-to-right", s.Exit)

	_, ok = New(nil, 0, 0).State()
	assert.False(t, ok)
	assert.Equal(t, 0, New(nil, 3, 0).Index())
}

func TestLoadSlides(t *testing.T) {
	slides, err := LoadSlides("")
	require.NoError(t, err)
	assert.Len(t, slides, 3)

	dir := t.TempDir()
	path := filepath.Join(dir, "slides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`slides:
  - image_url: https://cdn.example.com/a.png
    title: Autumn
    subtitle: Warm coats
    link: /products?sort=-created
  - image_url: https://cdn.example.com/b.png
    title: Gifts
    alt: Gift boxes
`), 0o600))

	slides, err = LoadSlides(path)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "Autumn", slides[0].Alt)
	assert.Equal(t, "/products?sort=-created", slides[0].Link)
	assert.Equal(t, "Gift boxes", slides[1].Alt)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("slides:\n  - title: No image\n"), 0o600))
	_, err = LoadSlides(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("slides: []\n"), 0o600))
	_, err = LoadSlides(empty)
	assert.Error(t, err)

	_, err = LoadSlides(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
