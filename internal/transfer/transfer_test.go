package transfer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldsmith/internal/store/memory"
	"worldsmith/internal/world"
)

var exportTime = time.Date(2024, 5, 17, 23, 30, 0, 0, time.UTC)

func openWorkspace(t *testing.T, worldID string) *world.Workspace {
	t.Helper()
	ws, err := world.OpenWorkspace(context.Background(), memory.New(), worldID,
		world.WithClock(func() time.Time { return exportTime }))
	require.NoError(t, err)
	return ws
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "world_abc_export_2024-05-17.json", Filename("abc", exportTime))

	kyiv := time.FixedZone("EEST", 3*60*60)
	assert.Equal(t, "world_abc_export_2024-05-17.json", Filename("abc", exportTime.In(kyiv)))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openWorkspace(t, "src")
	require.NoError(t, src.Characters.Add(ctx, &world.Character{Name: "Rowan", Race: "Elf", Age: 120}))
	require.NoError(t, src.Characters.Add(ctx, &world.Character{Name: "Mira", Tags: []string{"mage"}}))
	require.NoError(t, src.Maps.Add(ctx, &world.MapDefinition{ID: "m1", Name: "Aldor"}))
	require.NoError(t, src.Markers.Add(ctx, &world.Marker{MapID: "m1", X: 50, Y: 25, Label: "Capital"}))

	data, err := Export(src, exportTime).Marshal()
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "characters")
	assert.Contains(t, doc, "exportedAt")

	dst := openWorkspace(t, "dst")
	res, err := Import(ctx, dst, data)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Replaced[world.KindCharacters])
	assert.Equal(t, src.Characters.All(), dst.Characters.All())
	assert.Equal(t, src.Markers.All(), dst.Markers.All())
	assert.Equal(t, 0, dst.Notes.Len())
}

func TestExportImportEmptyKinds(t *testing.T) {
	ctx := context.Background()

	data, err := Export(openWorkspace(t, "empty"), exportTime).Marshal()
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.JSONEq(t, `[]`, string(doc["characters"]))
	assert.JSONEq(t, `[]`, string(doc["notes"]))

	_, err = Import(ctx, openWorkspace(t, "other"), data)
	require.NoError(t, err)

	src := openWorkspace(t, "src")
	require.NoError(t, src.Characters.Add(ctx, &world.Character{Name: "Rowan"}))
	data, err = Export(src, exportTime).Marshal()
	require.NoError(t, err)

	dst := openWorkspace(t, "dst")
	require.NoError(t, dst.Notes.Add(ctx, &world.Note{Title: "stale", Category: "c"}))
	res, err := Import(ctx, dst, data)
	require.NoError(t, err)
	assert.Contains(t, res.Replaced, world.KindNotes)
	assert.Equal(t, 1, dst.Characters.Len())
	assert.Equal(t, 0, dst.Notes.Len())
}

func TestImportReplacesNotMerges(t *testing.T) {
	ctx := context.Background()
	ws := openWorkspace(t, "w")
	require.NoError(t, ws.Characters.Add(ctx, &world.Character{Name: "Old"}))
	require.NoError(t, ws.Notes.Add(ctx, &world.Note{Title: "untouched", Category: "c"}))

	_, err := Import(ctx, ws, []byte(`{"characters":[{"id":"n","name":"New"}]}`))
	require.NoError(t, err)

	chars := ws.Characters.All()
	require.Len(t, chars, 1)
	assert.Equal(t, "New", chars[0].Name)
	assert.Equal(t, 1, ws.Notes.Len())
}

func TestImportLegacyDocument(t *testing.T) {
	ctx := context.Background()
	ws := openWorkspace(t, "w")

	legacy := `{"characters":[{"id":1700000000000,"name":"Rowan","age":30}],"timestamp":"2023-01-01T00:00:00.000Z"}`
	_, err := Import(ctx, ws, []byte(legacy))
	require.NoError(t, err)

	got, ok := ws.Characters.Get("1700000000000")
	require.True(t, ok)
	assert.Equal(t, "Rowan", got.Name)
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"characters":`},
		{"no known key", `{"people":[]}`},
		{"array document", `[1,2,3]`},
		{"wrong shape", `{"characters":"Rowan"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := openWorkspace(t, "w")
			_, err := Import(context.Background(), ws, []byte(tt.data))
			assert.ErrorIs(t, err, ErrUnrecognizedFormat)
		})
	}
}

func TestImportValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	ws := openWorkspace(t, "w")
	require.NoError(t, ws.Characters.Add(ctx, &world.Character{ID: "keep", Name: "Keep"}))

	doc := `{"characters":[{"id":"a","name":"Fine"}],"notes":[{"id":"n","title":"missing category"}]}`
	_, err := Import(ctx, ws, []byte(doc))
	var verr *world.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, world.KindNotes, verr.Kind)

	_, ok := ws.Characters.Get("keep")
	assert.True(t, ok)
	assert.Equal(t, 1, ws.Characters.Len())
}
