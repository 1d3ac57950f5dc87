package pocketbase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var placeholderPattern = regexp.MustCompile(`\{:(\w+)\}`)

// Filter binds {:name} placeholders in a filter expression to escaped literals.
// Unknown placeholders are left untouched.
//
//	Filter("slug = {:slug}", map[string]any{"slug": `a"b`}) // slug = "a\"b"
func Filter(expr string, params map[string]any) string {
	if len(params) == 0 {
		return expr
	}
	return placeholderPattern.ReplaceAllStringFunc(expr, func(match string) string {
		name := match[2 : len(match)-1]
		value, ok := params[name]
		if !ok {
			return match
		}
		return literal(value)
	})
}

func literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return quote(v.UTC().Format("2006-01-02 15:04:05.000Z"))
	case string:
		return quote(v)
	default:
		return quote(fmt.Sprint(v))
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
