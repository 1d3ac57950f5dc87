// Package format holds the presentation helpers shared by the storefront and
// the admin console templates.
package format

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer       = message.NewPrinter(language.English)
	slugStrip     = regexp.MustCompile(`[^\w-]+`)
	sanitizerOnce sync.Once
	sanitizer     *bluemonday.Policy
)

// Price renders an amount as US dollars, e.g. $1,234.50.
func Price(amount float64) string {
	if amount < 0 {
		return "-$" + printer.Sprintf("%.2f", -amount)
	}
	return "$" + printer.Sprintf("%.2f", amount)
}

// Date renders t as "Jan 2, 2006". The zero time renders as "".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// Slug lower-cases name, turns spaces into dashes and drops anything that is
// not a letter, digit, underscore or dash.
func Slug(name string) string {
	s := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	return slugStrip.ReplaceAllString(s, "")
}

// SanitizeHTML strips scripts, handlers and other unsafe markup from a
// product description.
func SanitizeHTML(s string) string {
	sanitizerOnce.Do(func() {
		sanitizer = bluemonday.UGCPolicy()
	})
	return sanitizer.Sanitize(s)
}
