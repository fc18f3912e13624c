package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldsmith/internal/store/memory"
	"worldsmith/internal/world"
)

func seededWorkspace(t *testing.T) *world.Workspace {
	t.Helper()
	ctx := context.Background()
	ws, err := world.OpenWorkspace(ctx, memory.New(), "w1")
	require.NoError(t, err)

	require.NoError(t, ws.Characters.Add(ctx, &world.Character{ID: "c1", Name: "Rowan", Race: "Elf"}))
	require.NoError(t, ws.Characters.Add(ctx, &world.Character{ID: "c2", Name: "Ярослава", Biography: "Відьма з Карпат"}))
	require.NoError(t, ws.Notes.Add(ctx, &world.Note{ID: "n1", Title: "Elven harvest", Category: "economy"}))
	require.NoError(t, ws.Relationships.Add(ctx, &world.Relationship{ID: "r1", Character1ID: "c1", Character2ID: "c2", Type: "rival", Description: "an old grudge between elves"}))
	require.NoError(t, ws.Lore.Add(ctx, &world.LoreEntry{ID: "l1", Section: "racesAndPeoples", Text: "The ELVES came from the west."}))
	require.NoError(t, ws.Maps.Add(ctx, &world.MapDefinition{ID: "m1", Name: "Café Élysée"}))
	require.NoError(t, ws.Timelines.Add(ctx, &world.Timeline{ID: "t1", Name: "Ages", Events: []world.TimelineEvent{
		{ID: "e1", Title: "Fall of the elf king"},
	}}))
	return ws
}

func TestSearch_OrderedByKind(t *testing.T) {
	results := Search(seededWorkspace(t), "el")

	var kinds []string
	for _, r := range results {
		kinds = append(kinds, r.Kind+":"+r.ID)
	}
	assert.Equal(t, []string{"character:c1", "note:n1", "relationship:r1", "lore:l1", "event:e1"}, kinds)
	assert.Equal(t, "Rowan -[rival]-> Ярослава", results[2].Title)
}

func TestSearch_CaseAndNormalization(t *testing.T) {
	ws := seededWorkspace(t)

	results := Search(ws, "КАРПАТ")
	require.Len(t, results, 1)
	assert.Equal(t, "c2", results[0].ID)

	// Decomposed e + combining acute.
	results = Search(ws, "CAFE\u0301")
	require.Len(t, results, 1)
	assert.Equal(t, KindMap, results[0].Kind)
}

func TestSearch_BlankQuery(t *testing.T) {
	assert.Empty(t, Search(seededWorkspace(t), "   "))
}

func TestSnippet(t *testing.T) {
	m := newMatcher("needle")
	text := strings.Repeat("a ", 40) + "NEEDLE" + strings.Repeat(" b", 40)

	got, ok := m.match(text)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, "…"))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Contains(t, got, "NEEDLE")

	got, ok = m.match("needle in a haystack")
	require.True(t, ok)
	assert.Equal(t, "needle in a haystack", got)

	_, ok = m.match("haystack")
	assert.False(t, ok)
}
