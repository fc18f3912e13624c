package world

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const envelopeVersion = 1

// envelope is the persisted shape of every partition.
type envelope struct {
	Version int             `json:"version"`
	Kind    Kind            `json:"kind"`
	Items   json.RawMessage `json:"items"`
}

type migration func(kind Kind, items []any) ([]any, error)

// migrations[v] upgrades items stored at version v to version v+1.
var migrations = map[int]migration{
	0: migrateV0,
}

func encodeEnvelope(kind Kind, items any) ([]byte, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshalling %s items: %w", kind, err)
	}
	data, err := json.Marshal(envelope{Version: envelopeVersion, Kind: kind, Items: raw})
	if err != nil {
		return nil, fmt.Errorf("marshalling %s envelope: %w", kind, err)
	}
	return data, nil
}

// decodeEnvelope returns the items array of a partition at the current
// version. A bare JSON array is the unversioned legacy format.
func decodeEnvelope(kind Kind, data []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return json.RawMessage("[]"), nil
	}

	var env envelope
	if trimmed[0] == '[' {
		env = envelope{Version: 0, Kind: kind, Items: trimmed}
	} else {
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decoding envelope: %w", err)
		}
		if env.Version < 1 {
			return nil, fmt.Errorf("envelope version must be set")
		}
		if env.Kind != "" && env.Kind != kind {
			return nil, fmt.Errorf("envelope holds %s, expected %s", env.Kind, kind)
		}
	}

	if env.Version > envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	if len(env.Items) == 0 || bytes.Equal(bytes.TrimSpace(env.Items), []byte("null")) {
		return json.RawMessage("[]"), nil
	}
	if env.Version == envelopeVersion {
		return env.Items, nil
	}

	return migrateItems(kind, env.Version, env.Items)
}

func migrateItems(kind Kind, version int, raw json.RawMessage) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding version %d items: %w", version, err)
	}

	for v := version; v < envelopeVersion; v++ {
		migrate, ok := migrations[v]
		if !ok {
			return nil, fmt.Errorf("no migration from version %d", v)
		}
		var err error
		items, err = migrate(kind, items)
		if err != nil {
			return nil, fmt.Errorf("migrating from version %d: %w", v, err)
		}
	}

	out, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding migrated items: %w", err)
	}
	return out, nil
}

// idFields hold identifiers or references that version 0 stored as numbers.
var idFields = []string{"id", "character1Id", "character2Id", "mapId", "parentId", "magicTypeId", "relatedEvent"}

func migrateV0(kind Kind, items []any) ([]any, error) {
	out := make([]any, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case map[string]any:
			stringifyIDs(v)
			if kind == KindTimelines {
				if events, ok := v["events"].([]any); ok {
					for _, event := range events {
						if m, ok := event.(map[string]any); ok {
							stringifyIDs(m)
						}
					}
				}
			}
			out = append(out, v)
		case nil:
			continue
		default:
			return nil, fmt.Errorf("item %d is not an object", i)
		}
	}
	return out, nil
}

func stringifyIDs(m map[string]any) {
	for _, field := range idFields {
		switch v := m[field].(type) {
		case json.Number:
			m[field] = v.String()
		case float64:
			m[field] = fmt.Sprintf("%.0f", v)
		}
	}
}
