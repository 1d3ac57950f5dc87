package pocketbase

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
)

// File is an upload attached to a Form field.
type File struct {
	Field  string
	Name   string
	Reader io.Reader
}

// Form is an ordered record body. Without files it is sent as JSON, otherwise
// as multipart/form-data.
type Form struct {
	keys   []string
	values map[string]any
	files  []File
}

func NewForm() *Form {
	return &Form{values: make(map[string]any)}
}

// Set assigns a field value, keeping first-insertion order.
func (f *Form) Set(key string, value any) *Form {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// AddFile attaches an upload. A nil reader is ignored.
func (f *Form) AddFile(field, name string, r io.Reader) *Form {
	if r == nil {
		return f
	}
	f.files = append(f.files, File{Field: field, Name: name, Reader: r})
	return f
}

func (f *Form) HasFiles() bool {
	return len(f.files) > 0
}

// Values returns a copy of the non-file fields.
func (f *Form) Values() map[string]any {
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Get returns a field value.
func (f *Form) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *Form) Files() []File {
	return f.files
}

func (f *Form) multipart() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range f.keys {
		if err := w.WriteField(k, formatValue(f.values[k])); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
