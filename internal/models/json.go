package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ToJSON marshals a value into a jsonb column payload. Marshal failures
// (unsupported types) degrade to SQL null rather than aborting a write.
func ToJSON(value any) datatypes.JSON {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// FromJSON unmarshals a jsonb column into out; empty columns are a no-op.
func FromJSON(raw datatypes.JSON, out any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, out)
}

// JSONMap decodes a jsonb column into a generic map, returning an empty map
// for null or malformed payloads.
func JSONMap(raw datatypes.JSON) map[string]any {
	result := map[string]any{}
	if len(raw) == 0 {
		return result
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return map[string]any{}
	}
	return result
}

// JSONStrings decodes a jsonb column into a string list, tolerating
// heterogeneous arrays by skipping non-string entries.
func JSONStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var generic []any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	out := make([]string, 0, len(generic))
	for _, item := range generic {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
