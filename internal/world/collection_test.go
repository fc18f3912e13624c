package world

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldsmith/internal/store/memory"
)

func TestCollection_AddAssignsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	constant := func() string { return "same" }
	chars, err := LoadCollection[*Character](ctx, st, "w1", KindCharacters, WithIDFunc(constant))
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		c := &Character{Name: fmt.Sprintf("c%d", i)}
		require.NoError(t, chars.Add(ctx, c))
		require.NotEmpty(t, c.ID)
		require.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.Equal(t, 100, chars.Len())
}

func TestCollection_AddRejectsExplicitDuplicate(t *testing.T) {
	ctx := context.Background()
	chars := mustLoad[*Character](t, memory.New(), KindCharacters)

	require.NoError(t, chars.Add(ctx, &Character{ID: "a", Name: "Aria"}))
	err := chars.Add(ctx, &Character{ID: "a", Name: "Other"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, chars.Len())
}

func TestCollection_AddRejectsInvalidWithoutWriting(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	chars := mustLoad[*Character](t, st, KindCharacters)

	err := chars.Add(ctx, &Character{Name: "", Age: -1})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindCharacters, verr.Kind)
	assert.Equal(t, 0, st.puts)
	assert.Equal(t, 0, chars.Len())
}

func TestCollection_AddStampsTimes(t *testing.T) {
	ctx := context.Background()
	notes := mustLoad[*Note](t, memory.New(), KindNotes)

	n := &Note{Title: "t", Category: "idea"}
	require.NoError(t, notes.Add(ctx, n))
	assert.Equal(t, fixedNow, n.CreatedAt)
	assert.Equal(t, fixedNow, n.UpdatedAt)
}

func TestCollection_UpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	chars := mustLoad[*Character](t, st, KindCharacters)
	require.NoError(t, chars.Add(ctx, &Character{Name: "Aria", Race: "elf", Age: 120}))
	id := chars.All()[0].ID

	found, err := chars.Update(ctx, id, map[string]any{"age": 121, "id": "hijack", "race": nil})
	require.NoError(t, err)
	require.True(t, found)

	got, ok := chars.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Aria", got.Name)
	assert.Equal(t, 121, got.Age)
	assert.Empty(t, got.Race)

	reloaded := mustLoad[*Character](t, st, KindCharacters)
	again, ok := reloaded.Get(id)
	require.True(t, ok)
	assert.Equal(t, 121, again.Age)
}

func TestCollection_UpdateMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	chars := mustLoad[*Character](t, st, KindCharacters)

	found, err := chars.Update(ctx, "ghost", map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, st.puts)
}

func TestCollection_UpdateEmptyPatchIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	chars := mustLoad[*Character](t, st, KindCharacters)
	require.NoError(t, chars.Add(ctx, &Character{Name: "Aria"}))
	id := chars.All()[0].ID
	writes := st.puts

	for _, patch := range []map[string]any{nil, {}} {
		found, err := chars.Update(ctx, id, patch)
		require.NoError(t, err)
		assert.True(t, found)
	}
	assert.Equal(t, writes, st.puts)
	got, _ := chars.Get(id)
	assert.Equal(t, "Aria", got.Name)
}

func TestCollection_UpdateInvalidLeavesRecord(t *testing.T) {
	ctx := context.Background()
	chars := mustLoad[*Character](t, memory.New(), KindCharacters)
	require.NoError(t, chars.Add(ctx, &Character{Name: "Aria"}))
	id := chars.All()[0].ID

	found, err := chars.Update(ctx, id, map[string]any{"name": ""})
	assert.True(t, found)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	got, _ := chars.Get(id)
	assert.Equal(t, "Aria", got.Name)
}

func TestCollection_ModifyWorksOnCopy(t *testing.T) {
	ctx := context.Background()
	chars := mustLoad[*Character](t, memory.New(), KindCharacters)
	require.NoError(t, chars.Add(ctx, &Character{Name: "Aria"}))
	id := chars.All()[0].ID

	_, err := chars.Modify(ctx, id, func(c *Character) error {
		c.Name = ""
		return nil
	})
	require.Error(t, err)
	got, _ := chars.Get(id)
	assert.Equal(t, "Aria", got.Name)

	found, err := chars.Modify(ctx, id, func(c *Character) error {
		c.Tags = append(c.Tags, "hero")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, found)
	got, _ = chars.Get(id)
	assert.Equal(t, []string{"hero"}, got.Tags)
}

func TestCollection_PutReplacesByID(t *testing.T) {
	ctx := context.Background()
	maps := mustLoad[*MapDefinition](t, memory.New(), KindMaps)
	require.NoError(t, maps.Add(ctx, &MapDefinition{ID: "m1", Name: "Old"}))

	found, err := maps.Put(ctx, &MapDefinition{ID: "m1", Name: "New", Width: 800})
	require.NoError(t, err)
	assert.True(t, found)
	got, _ := maps.Get("m1")
	assert.Equal(t, "New", got.Name)

	found, err = maps.Put(ctx, &MapDefinition{ID: "m2", Name: "Other"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, maps.Len())
}

func TestCollection_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	notes := mustLoad[*Note](t, st, KindNotes)
	require.NoError(t, notes.Add(ctx, &Note{ID: "n1", Title: "a", Category: "c"}))
	require.NoError(t, notes.Add(ctx, &Note{ID: "n2", Title: "b", Category: "c"}))

	removed, err := notes.Remove(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, removed)
	writes := st.puts

	removed, err = notes.Remove(ctx, "n1")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, writes, st.puts)
	assert.Equal(t, 1, notes.Len())
}

func TestCollection_RoundTripPreservesData(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	chars := mustLoad[*Character](t, st, KindCharacters)
	portrait := "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk"
	require.NoError(t, chars.Add(ctx, &Character{Name: "Ярослава", Race: "людина", Portrait: portrait, Tags: []string{"відьма"}}))

	skills := mustLoad[*Skill](t, st, KindSkills)
	require.NoError(t, skills.Add(ctx, &Skill{ID: "root", Name: "Spark"}))
	require.NoError(t, skills.Add(ctx, &Skill{ID: "child", Name: "Flame", ParentID: "root"}))
	require.NoError(t, skills.Add(ctx, &Skill{ID: "leaf", Name: "Inferno", ParentID: "child", IsUltimate: true}))

	reChars := mustLoad[*Character](t, st, KindCharacters)
	assert.Equal(t, chars.All(), reChars.All())

	reSkills := mustLoad[*Skill](t, st, KindSkills)
	assert.Equal(t, skills.All(), reSkills.All())
	tree := NewSkillTree(reSkills.All())
	ancestors, cycle := tree.Ancestors("leaf")
	assert.False(t, cycle)
	require.Len(t, ancestors, 2)
	assert.Equal(t, "child", ancestors[0].ID)
	assert.Equal(t, "root", ancestors[1].ID)
}

func TestCollection_CorruptPartitionLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Put(ctx, "notes_w1", []byte("{not json")))

	notes := mustLoad[*Note](t, st, KindNotes)
	assert.Equal(t, 0, notes.Len())

	require.NoError(t, notes.Add(ctx, &Note{Title: "fresh", Category: "c"}))
	assert.Equal(t, 1, mustLoad[*Note](t, st, KindNotes).Len())
}

func TestCollection_NewerVersionLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Put(ctx, "notes_w1", []byte(`{"version":99,"kind":"notes","items":[{"id":"n1","title":"a","category":"c"}]}`)))

	assert.Equal(t, 0, mustLoad[*Note](t, st, KindNotes).Len())
}

func TestCollection_PersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	notes := mustLoad[*Note](t, st, KindNotes)
	st.failPuts = true

	err := notes.Add(ctx, &Note{ID: "n1", Title: "kept", Category: "c"})
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, errWriteFailed)

	got, ok := notes.Get("n1")
	require.True(t, ok)
	assert.Equal(t, "kept", got.Title)

	st.failPuts = false
	require.NoError(t, notes.Persist(ctx))
	assert.Equal(t, 1, mustLoad[*Note](t, st, KindNotes).Len())
}

func TestCollection_LoadsLegacyArray(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	legacy := `[{"id":1700000000000,"character1Id":1,"character2Id":2,"type":"Friend","description":"old pals"},null]`
	require.NoError(t, st.Put(ctx, "relationships_w1", []byte(legacy)))

	rels := mustLoad[*Relationship](t, st, KindRelationships)
	require.Equal(t, 1, rels.Len())
	r := rels.All()[0]
	assert.Equal(t, "1700000000000", r.ID)
	assert.Equal(t, "1", r.Character1ID)
	assert.Equal(t, "2", r.Character2ID)
}

func TestCollection_LoadAssignsMissingIDs(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Put(ctx, "notes_w1", []byte(`[{"id":null,"title":"a","category":"c"},{"title":"b","category":"c"}]`)))

	notes := mustLoad[*Note](t, st, KindNotes)
	all := notes.All()
	require.Len(t, all, 2)
	assert.NotEmpty(t, all[0].ID)
	assert.NotEmpty(t, all[1].ID)
	assert.NotEqual(t, all[0].ID, all[1].ID)

	reloaded, err := LoadCollection[*Note](ctx, st, "w1", KindNotes, WithIDFunc(func() string { return "other" }))
	require.NoError(t, err)
	again := reloaded.All()
	require.Len(t, again, 2)
	assert.Equal(t, all[0].ID, again[0].ID)
	assert.Equal(t, all[1].ID, again[1].ID)

	found, err := reloaded.Remove(ctx, all[0].ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCollection_EmptyAllIsNotNil(t *testing.T) {
	chars := mustLoad[*Character](t, memory.New(), KindCharacters)
	assert.NotNil(t, chars.All())
	assert.Empty(t, chars.All())
}

func TestCollection_ReplaceValidatesFirst(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	lore := mustLoad[*LoreEntry](t, st, KindLore)
	require.NoError(t, lore.Add(ctx, &LoreEntry{Section: "magic", Text: "old"}))
	writes := st.puts

	err := lore.Replace(ctx, []*LoreEntry{{Section: "magic", Text: "ok"}, {Section: "cooking", Text: "bad"}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, writes, st.puts)
	assert.Equal(t, "old", lore.All()[0].Text)

	err = lore.Replace(ctx, []*LoreEntry{{ID: "x", Section: "magic", Text: "a"}, {ID: "x", Section: "magic", Text: "b"}})
	assert.ErrorIs(t, err, ErrDuplicateID)

	require.NoError(t, lore.Replace(ctx, []*LoreEntry{{Section: "magic-fire", Text: "new"}}))
	require.Equal(t, 1, lore.Len())
	assert.Equal(t, "new", lore.All()[0].Text)
	assert.NotEmpty(t, lore.All()[0].ID)
}
