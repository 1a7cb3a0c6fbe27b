package record

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/codec"
)

func encodeAttrs(attrs map[string]any) (string, error) {
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

// canonical round-trips attrs through the stored encoding so in-memory values
// have the same Go types as values loaded later.
func canonical(attrs map[string]any) (map[string]any, error) {
	data, err := encodeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	return decodeAttrs(data)
}

// decodeAttrs keeps integral numbers as int64 so scores and condition values
// round-trip without float formatting.
func decodeAttrs(data string) (map[string]any, error) {
	attrs, err := codec.DecodeObject([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	return attrs, nil
}
