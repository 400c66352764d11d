package statement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonObjectWriter builds a JSON object whose keys keep the order they were written in.
// The zero value is an empty object. The first marshal error is kept and returned by MarshalJSON.
type jsonObjectWriter struct {
	buf bytes.Buffer
	err error
}

func (w *jsonObjectWriter) key(k string) {
	if w.buf.Len() > 0 {
		w.buf.WriteByte(',')
	}
	kb, _ := json.Marshal(k)
	w.buf.Write(kb)
	w.buf.WriteByte(':')
}

// Append writes key with value marshaled by encoding/json.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	data, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("cannot marshal %q: %w", key, err)
		return w
	}
	w.key(key)
	w.buf.Write(data)
	return w
}

// Number writes key with a decimal literal, kept as is so that "12.30" does not become 12.3.
func (w *jsonObjectWriter) Number(key, literal string) *jsonObjectWriter {
	return w.Append(key, json.Number(literal))
}

// Optional is Append, skipped for zero values and empty slices.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	v := reflect.ValueOf(value)
	if !v.IsValid() || v.IsZero() || (v.Kind() == reflect.Slice && v.Len() == 0) {
		return w
	}
	return w.Append(key, value)
}

// MarshalJSON implements the json.Marshaler interface.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.buf.Len()+2)
	out = append(out, '{')
	out = append(out, w.buf.Bytes()...)
	return append(out, '}'), nil
}
