// Package codec decodes stored JSON without losing integer precision.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeJSON unmarshals data into v. Numbers inside untyped values
// (map[string]any, []any, any) come back as int64 when integral and float64
// otherwise, instead of always float64.
func DecodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// Numbers replaces every json.Number in v, recursively.
func Numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = Numbers(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = Numbers(x[k])
		}
		return x
	default:
		return v
	}
}

// DecodeObject decodes a JSON object with Numbers applied to its values.
// A JSON null decodes to an empty map.
func DecodeObject(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := DecodeJSON(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return map[string]any{}, nil
	}
	return Numbers(m).(map[string]any), nil
}
