package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// The wire form of a document is plain JSON. Temporal values would collapse
// into bare strings on a round trip, so top-level time.Time fields are
// wrapped in a tagged envelope on encode and restored on decode. All
// backends share this codec so the mirror sees identical field typing
// regardless of the configured store.
const (
	typeKey       = "$type"
	valueKey      = "$value"
	timestampType = "timestamp"
)

// EncodeFields serializes a field map to JSON, tagging temporal values.
func EncodeFields(fields map[string]any) ([]byte, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if t, ok := v.(time.Time); ok {
			out[k] = map[string]any{typeKey: timestampType, valueKey: t.Format(time.RFC3339Nano)}
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// DecodeFields parses JSON produced by EncodeFields, restoring tagged
// temporal values to time.Time.
func DecodeFields(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("document decode error: %w", err)
	}
	for k, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if m[typeKey] != timestampType {
			continue
		}
		s, ok := m[valueKey].(string)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("document decode error: field %q: %w", k, err)
		}
		raw[k] = t
	}
	return raw, nil
}
