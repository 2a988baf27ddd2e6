package models

import (
	"encoding/json"
	"fmt"
)

// Merge shallow-merges updates over rec: every top-level key in updates
// replaces the record's field of the same JSON name. Keys listed in
// protected are ignored. Keys the record type does not know are dropped.
func Merge[T any](rec T, updates map[string]json.RawMessage, protected ...string) (T, error) {
	var out T

	raw, err := json.Marshal(rec)
	if err != nil {
		return out, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out, err
	}

	skip := make(map[string]bool, len(protected))
	for _, k := range protected {
		skip[k] = true
	}
	for k, v := range updates {
		if !skip[k] {
			fields[k] = v
		}
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(merged, &out); err != nil {
		return out, fmt.Errorf("invalid updates: %w", err)
	}
	return out, nil
}
