package world

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidWorldID is returned when a world-scoped operation gets a blank id.
var ErrInvalidWorldID = errors.New("world id is required")

// Kind names one entity collection. Kind names never contain an underscore,
// which keeps namespace keys unambiguous.
type Kind string

const (
	KindCharacters    Kind = "characters"
	KindNotes         Kind = "notes"
	KindTimelines     Kind = "timelines"
	KindRelationships Kind = "relationships"
	KindLore          Kind = "lore"
	KindMagicTypes    Kind = "magicTypes"
	KindSkills        Kind = "skills"
	KindMaps          Kind = "maps"
	KindMarkers       Kind = "markers"
	KindDrawings      Kind = "drawings"
	KindTemplates     Kind = "templates"
)

// Kinds lists every world-scoped kind in a fixed order.
var Kinds = []Kind{
	KindCharacters,
	KindNotes,
	KindTimelines,
	KindRelationships,
	KindLore,
	KindMagicTypes,
	KindSkills,
	KindMaps,
	KindMarkers,
	KindDrawings,
	KindTemplates,
}

// World-independent partitions.
const (
	RegistryKey  = "worlds"
	SelectionKey = "selectedWorld"
)

// legacyKeys are the global partitions written before data was scoped per world.
var legacyKeys = map[Kind][]string{
	KindCharacters: {"characters"},
	KindNotes:      {"notes", "events"},
	KindLore:       {"loreEntries"},
}

func (k Kind) Valid() bool {
	for _, kind := range Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(name string) (Kind, error) {
	for _, kind := range Kinds {
		if strings.EqualFold(string(kind), strings.TrimSpace(name)) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown kind: %s", name)
}

// NamespaceKey returns the partition key holding kind for worldID.
func NamespaceKey(worldID string, kind Kind) (string, error) {
	if strings.TrimSpace(worldID) == "" {
		return "", ErrInvalidWorldID
	}
	if !kind.Valid() {
		return "", fmt.Errorf("unknown kind: %s", kind)
	}
	return string(kind) + "_" + worldID, nil
}

// splitNamespaceKey is the inverse of NamespaceKey.
func splitNamespaceKey(key string) (string, Kind, bool) {
	prefix, worldID, ok := strings.Cut(key, "_")
	if !ok || worldID == "" {
		return "", "", false
	}
	kind := Kind(prefix)
	if !kind.Valid() {
		return "", "", false
	}
	return worldID, kind, true
}
