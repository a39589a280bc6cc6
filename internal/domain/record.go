package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Field is a single key/value pair of a raw record, rendered as text.
type Field struct {
	Key   string
	Value string
}

// RawRecord is one JSON object from the AEMET data URL. Key order is kept so
// the yearly CSV header follows the order the API emits.
type RawRecord struct {
	Fields []Field
}

// UnmarshalJSON decodes a flat JSON object. Strings are kept verbatim,
// numbers and booleans as their JSON literal and null as "".
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode raw record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("decode raw record: expected JSON object")
	}

	fields := make([]Field, 0, 32)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode raw record: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode raw record: unexpected key %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode raw record field %q: %w", key, err)
		}
		fields = append(fields, Field{Key: key, Value: rawValueText(value)})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode raw record: %w", err)
	}

	r.Fields = fields
	return nil
}

func rawValueText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(v))
	if text == "null" {
		return ""
	}
	return text
}

// Get returns the value of the first field named key.
func (r RawRecord) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Columns returns the union of record keys in first-seen order.
func Columns(records []RawRecord) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range records {
		for _, f := range r.Fields {
			if _, ok := seen[f.Key]; ok {
				continue
			}
			seen[f.Key] = struct{}{}
			cols = append(cols, f.Key)
		}
	}
	return cols
}
