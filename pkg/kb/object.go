package kb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// member is one key of a JSON object, kept as raw bytes.
type member struct {
	Key   string
	Value json.RawMessage
}

// object is a JSON object whose key order and unknown keys survive a
// decode/encode round trip. Members are never mutated after decoding.
type object []member

func (o object) get(key string) (json.RawMessage, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

func (o object) has(key string) bool {
	_, ok := o.get(key)
	return ok
}

// decodeObject reads a JSON object keeping member order.
func decodeObject(data []byte) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var obj object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		obj = append(obj, member{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

// field is a known key with its current value.
type field struct {
	key   string
	value any
	// emit reports whether a key absent from the original is written.
	emit bool
}

// encodeObject writes orig in its original key order, replacing known keys
// with their current values and appending known keys that were absent. A
// known value that is semantically equal to the original keeps the original
// bytes, so untouched numbers like 1 or 0.50 are written back as they were.
func encodeObject(orig object, fields []field) ([]byte, error) {
	known := make(map[string]int, len(fields))
	for i, f := range fields {
		known[f.key] = i
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	write := func(key string, value []byte) error {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		k, err := marshalValue(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	for _, m := range orig {
		i, ok := known[m.Key]
		if !ok {
			if err := write(m.Key, m.Value); err != nil {
				return nil, err
			}
			continue
		}
		value, err := marshalValue(fields[i].value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", m.Key, err)
		}
		if sameJSON(m.Value, value) || (isNull(m.Value) && zero(fields[i].value)) {
			value = m.Value
		}
		if err := write(m.Key, value); err != nil {
			return nil, err
		}
	}

	for _, f := range fields {
		if orig.has(f.key) || !f.emit {
			continue
		}
		value, err := marshalValue(f.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.key, err)
		}
		if err := write(f.key, value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isNull(raw []byte) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// sameJSON reports whether a and b decode to equal values.
func sameJSON(a, b []byte) bool {
	if bytes.Equal(a, b) {
		return true
	}
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}
