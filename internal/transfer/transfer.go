// Package transfer moves a whole world in and out of a single JSON document.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"worldsmith/internal/world"
)

// ErrUnrecognizedFormat rejects import documents with no known collection.
var ErrUnrecognizedFormat = errors.New("unrecognized import format")

const documentVersion = 1

// Document is the export file layout. Every collection is present on export;
// on import any subset is accepted.
type Document struct {
	Version       int                    `json:"version"`
	WorldID       string                 `json:"worldId"`
	ExportedAt    time.Time              `json:"exportedAt"`
	Characters    []*world.Character     `json:"characters"`
	Notes         []*world.Note          `json:"notes"`
	Timelines     []*world.Timeline      `json:"timelines"`
	Relationships []*world.Relationship  `json:"relationships"`
	Lore          []*world.LoreEntry     `json:"lore"`
	MagicTypes    []*world.MagicType     `json:"magicTypes"`
	Skills        []*world.Skill         `json:"skills"`
	Maps          []*world.MapDefinition `json:"maps"`
	Markers       []*world.Marker        `json:"markers"`
	Drawings      []*world.Drawing       `json:"drawings"`
	Templates     []*world.Template      `json:"templates"`
}

// Export snapshots every collection of ws.
func Export(ws *world.Workspace, now time.Time) *Document {
	return &Document{
		Version:       documentVersion,
		WorldID:       ws.WorldID,
		ExportedAt:    now.UTC(),
		Characters:    ws.Characters.All(),
		Notes:         ws.Notes.All(),
		Timelines:     ws.Timelines.All(),
		Relationships: ws.Relationships.All(),
		Lore:          ws.Lore.All(),
		MagicTypes:    ws.MagicTypes.All(),
		Skills:        ws.Skills.All(),
		Maps:          ws.Maps.All(),
		Markers:       ws.Markers.All(),
		Drawings:      ws.Drawings.All(),
		Templates:     ws.Templates.All(),
	}
}

// Marshal renders the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return append(data, '\n'), nil
}

// Filename returns world_<id>_export_<YYYY-MM-DD>.json, dated in UTC.
func Filename(worldID string, now time.Time) string {
	return fmt.Sprintf("world_%s_export_%s.json", worldID, now.UTC().Format(time.DateOnly))
}

// Result lists the kinds an import replaced and how many records each holds.
type Result struct {
	Replaced map[world.Kind]int
}

// Import replaces every collection present in data. All present kinds are
// decoded and validated before the first write, so a rejected document leaves
// the workspace untouched.
func Import(ctx context.Context, ws *world.Workspace, data []byte) (*Result, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecognizedFormat, err)
	}

	steps := []importer{
		stage(ws.Characters, top),
		stage(ws.Notes, top),
		stage(ws.Timelines, top),
		stage(ws.Relationships, top),
		stage(ws.Lore, top),
		stage(ws.MagicTypes, top),
		stage(ws.Skills, top),
		stage(ws.Maps, top),
		stage(ws.Markers, top),
		stage(ws.Drawings, top),
		stage(ws.Templates, top),
	}

	var present []importer
	for _, step := range steps {
		if step.present {
			present = append(present, step)
		}
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("%w: no known collection", ErrUnrecognizedFormat)
	}

	for _, step := range present {
		if err := step.check(); err != nil {
			return nil, err
		}
	}

	res := &Result{Replaced: make(map[world.Kind]int, len(present))}
	var errs []error
	for _, step := range present {
		n, err := step.apply(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.Replaced[step.kind] = n
	}
	return res, errors.Join(errs...)
}

type importer struct {
	kind    world.Kind
	present bool
	check   func() error
	apply   func(ctx context.Context) (int, error)
}

// stage decodes the collection for c's kind, accepting the current envelope
// or a bare legacy array.
func stage[T world.Record](c *world.Collection[T], top map[string]json.RawMessage) importer {
	kind := c.Kind()
	raw, ok := top[string(kind)]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return importer{kind: kind}
	}

	var items []T
	decodeErr := world.DecodeItems(kind, raw, &items)

	return importer{
		kind:    kind,
		present: true,
		check: func() error {
			if decodeErr != nil {
				return fmt.Errorf("%w: %s: %w", ErrUnrecognizedFormat, kind, decodeErr)
			}
			return world.CheckAll(kind, items)
		},
		apply: func(ctx context.Context) (int, error) {
			if err := c.Replace(ctx, items); err != nil {
				return 0, err
			}
			return c.Len(), nil
		},
	}
}
