package format

import (
	"strings"

	"golang.org/x/net/html"
)

// Excerpt returns at most n runes of the visible text of an HTML fragment,
// with whitespace collapsed and an ellipsis appended when truncated.
func Excerpt(fragment string, n int) string {
	if n <= 0 {
		return ""
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
loop:
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			break loop
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			} else if isBlock(tag) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			} else if isBlock(tag) {
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}

	text := []rune(strings.Join(strings.Fields(b.String()), " "))
	if len(text) <= n {
		return string(text)
	}
	return strings.TrimRight(string(text[:n]), " ") + "…"
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "td", "section", "article":
		return true
	}
	return false
}
