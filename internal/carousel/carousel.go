// Package carousel implements the hero slider on the home page. The browser
// holds no state of its own: every transition is a request carrying the page
// counter and the direction, and the server answers with the next frame.
package carousel

import (
	"fmt"
	"os"
	"time"

	"github.com/Settj76/ecom/models"

	"gopkg.in/yaml.v3"
)

// AutoAdvance is the delay between automatic transitions.
const AutoAdvance = 5 * time.Second

// PlaceholderImage replaces a slide image that fails to load.
const PlaceholderImage = "https://placehold.co/1200x500/cccccc/ffffff?text=Image+Not+Found"

// DefaultSlides are shown when no slides file is configured.
var DefaultSlides = []models.Slide{
	{
		ImageURL: "https://placehold.co/1200x500/3498db/ffffff?text=Summer+Sale",
		Title:    "Huge Summer Sale!",
		Subtitle: "Up to 50% off on selected items. Dont miss out!",
		Link:     "/products?sort=price",
		Alt:      "Summer sale promotion",
	},
	{
		ImageURL: "https://placehold.co/1200x500/2ecc71/ffffff?text=New+Arrivals",
		Title:    "Check Out Our New Arrivals",
		Subtitle: "The latest trends in fashion and electronics.",
		Link:     "/products?sort=-created",
		Alt:      "New arrivals promotion",
	},
	{
		ImageURL: "https://placehold.co/1200x500/e74c3c/ffffff?text=Free+Shipping",
		Title:    "Free Shipping On All Orders",
		Subtitle: "Get your items delivered to your doorstep for free.",
		Link:     "/cart",
		Alt:      "Free shipping promotion",
	},
}

// Carousel is the slider state: a page counter that may run past either end
// and the direction of the last move (+1, -1 or 0 before the first move).
type Carousel struct {
	slides    []models.Slide
	page      int
	direction int
}

// New creates a carousel positioned at page with the given direction.
// Directions other than -1 and +1 are treated as 0.
func New(slides []models.Slide, page, direction int) *Carousel {
	if direction > 0 {
		direction = 1
	} else if direction < 0 {
		direction = -1
	}
	return &Carousel{slides: slides, page: page, direction: direction}
}

// Len returns the number of slides.
func (c *Carousel) Len() int {
	return len(c.slides)
}

// Page returns the raw page counter.
func (c *Carousel) Page() int {
	return c.page
}

// Direction returns the direction of the last move.
func (c *Carousel) Direction() int {
	return c.direction
}

// Index maps the page counter onto a slide index, wrapping in both directions.
func (c *Carousel) Index() int {
	n := len(c.slides)
	if n == 0 {
		return 0
	}
	return ((c.page % n) + n) % n
}

// Paginate moves dir pages forward (positive) or backward (negative).
func (c *Carousel) Paginate(dir int) {
	c.page += dir
	switch {
	case dir > 0:
		c.direction = 1
	case dir < 0:
		c.direction = -1
	}
}

// GoTo jumps to slide i. The direction is +1 when i is past the current index
// and -1 otherwise.
func (c *Carousel) GoTo(i int) {
	if i > c.Index() {
		c.direction = 1
	} else {
		c.direction = -1
	}
	c.page = i
}

// State is one rendered frame of the slider.
type State struct {
	Slide     models.Slide
	Index     int
	Page      int
	Direction int
	Total     int
	// Enter and Exit are CSS animation classes for the incoming and the
	// outgoing slide.
	Enter string
	Exit  string
}

// State returns the current frame. ok is false when there are no slides.
func (c *Carousel) State() (State, bool) {
	if len(c.slides) == 0 {
		return State{}, false
	}
	s := State{
		Slide:     c.slides[c.Index()],
		Index:     c.Index(),
		Page:      c.page,
		Direction: c.direction,
		Total:     len(c.slides),
	}
	switch {
	case c.direction > 0:
		s.Enter, s.Exit = "enter-from-right", "exit-to-left"
	case c.direction < 0:
		s.Enter, s.Exit = "enter-from-left", "exit-to-right"
	default:
		s.Enter, s.Exit = "center", "center"
	}
	return s, true
}

type slidesFile struct {
	Slides []models.Slide `yaml:"slides"`
}

// LoadSlides reads slides from a YAML file of the form
//
//	slides:
//	  - image_url: https://...
//	    title: ...
//
// An empty path returns DefaultSlides.
func LoadSlides(path string) ([]models.Slide, error) {
	if path == "" {
		return DefaultSlides, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slides file: %w", err)
	}
	var f slidesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse slides file: %w", err)
	}
	for i, s := range f.Slides {
		if s.ImageURL == "" {
			return nil, fmt.Errorf("slide %d: image_url is required", i+1)
		}
		if s.Alt == "" {
			f.Slides[i].Alt = s.Title
		}
	}
	if len(f.Slides) == 0 {
		return nil, fmt.Errorf("slides file %s has no slides", path)
	}
	return f.Slides, nil
}
