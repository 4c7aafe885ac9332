package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ordered is a JSON object that keeps its keys in document order.
// Catalogs and report sections are displayed in the order the fixture
// author wrote them, which a plain Go map would lose.
type Ordered[V any] struct {
	Keys   []string
	Values map[string]V
}

// Len returns the number of keys.
func (o Ordered[V]) Len() int {
	return len(o.Keys)
}

// Get returns the value stored under key.
func (o Ordered[V]) Get(key string) (V, bool) {
	v, ok := o.Values[key]
	return v, ok
}

// Set stores value under key, appending the key if it is new.
func (o *Ordered[V]) Set(key string, value V) {
	if o.Values == nil {
		o.Values = make(map[string]V)
	}
	if _, exists := o.Values[key]; !exists {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = value
}

// UnmarshalJSON decodes an object while recording key order.
// Duplicate keys keep their first position and their last value.
func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	o.Keys = nil
	o.Values = make(map[string]V)

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", tok)
		}
		var value V
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode value for %q: %w", key, err)
		}
		o.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read object end: %w", err)
	}
	return nil
}

// MarshalJSON encodes the object with keys in their recorded order.
func (o Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.Values[key])
		if err != nil {
			return nil, fmt.Errorf("encode value for %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
