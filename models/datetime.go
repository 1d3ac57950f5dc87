package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the timestamp layout used by the records backend.
const DateTimeLayout = "2006-01-02 15:04:05.000Z"

// DateTime wraps a backend timestamp. An empty string decodes to the zero time.
type DateTime struct {
	time.Time
}

// NewDateTime returns t truncated to millisecond precision in UTC.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC().Truncate(time.Millisecond)}
}

// ParseDateTime parses the backend layout, falling back to RFC3339.
func ParseDateTime(value string) (DateTime, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DateTime{}, nil
	}
	for _, layout := range []string{DateTimeLayout, "2006-01-02 15:04:05Z", time.RFC3339Nano} {
		if t, err := time.Parse(layout, value); err == nil {
			return DateTime{Time: t.UTC()}, nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid datetime %q", value)
}

func (d DateTime) String() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(DateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = DateTime{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode datetime: %w", err)
	}
	parsed, err := ParseDateTime(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
