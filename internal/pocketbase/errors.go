package pocketbase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// FieldError is a per-field validation failure reported by the backend.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseError is a non-2xx backend response.
type ResponseError struct {
	Status  int                   `json:"status"`
	Message string                `json:"message"`
	Data    map[string]FieldError `json:"data"`
	URL     string                `json:"-"`
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("backend responded with status %d", e.Status)
}

// FieldMessages returns "field: message" pairs sorted by field name.
func (e *ResponseError) FieldMessages() []string {
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+e.Data[k].Message)
	}
	return out
}

// FieldMessage returns the message for one field, or "".
func (e *ResponseError) FieldMessage(field string) string {
	return e.Data[field].Message
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf returns the backend HTTP status wrapped in err, or 0.
func StatusOf(err error) int {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// AsResponseError unwraps a *ResponseError from err.
func AsResponseError(err error) (*ResponseError, bool) {
	var re *ResponseError
	ok := errors.As(err, &re)
	return re, ok
}

func decodeError(resp *http.Response, url string) error {
	re := &ResponseError{Status: resp.StatusCode, URL: url}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		return re
	}

	var payload struct {
		Code    int                   `json:"code"`
		Status  int                   `json:"status"`
		Message string                `json:"message"`
		Data    map[string]FieldError `json:"data"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return re
	}
	re.Message = payload.Message
	re.Data = payload.Data
	return re
}

func notFoundError(url string) error {
	return &ResponseError{
		Status:  http.StatusNotFound,
		Message: "The requested resource wasn't found.",
		URL:     url,
	}
}
