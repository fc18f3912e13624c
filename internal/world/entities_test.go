package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{"character ok", &Character{Name: "Rowan", Age: 3}, false},
		{"character no name", &Character{Name: " "}, true},
		{"character negative age", &Character{Name: "Rowan", Age: -1}, true},
		{"character portrait url", &Character{Name: "Rowan", Portrait: "https://example.com/a.png"}, true},
		{"character portrait data", &Character{Name: "Rowan", Portrait: "data:image/jpeg;base64,AAAA"}, false},
		{"note no category", &Note{Title: "t"}, true},
		{"note ok", &Note{Title: "t", Category: "c"}, false},
		{"timeline numeric ok", &Timeline{Name: "T", NumericDates: true, Events: []TimelineEvent{{Date: "-40", Title: "x"}}}, false},
		{"timeline numeric bad", &Timeline{Name: "T", NumericDates: true, Events: []TimelineEvent{{Date: "abc", Title: "x"}}}, true},
		{"timeline free dates", &Timeline{Name: "T", Events: []TimelineEvent{{Date: "abc", Title: "x"}}}, false},
		{"timeline duplicate events", &Timeline{Name: "T", Events: []TimelineEvent{{ID: "e", Title: "x"}, {ID: "e", Title: "y"}}}, true},
		{"relationship mixed case", &Relationship{Character1ID: "1", Character2ID: "2", Type: "ALLY"}, false},
		{"relationship unknown type", &Relationship{Character1ID: "1", Character2ID: "2", Type: "lover"}, true},
		{"relationship missing end", &Relationship{Character1ID: "1", Type: "friend"}, true},
		{"lore nested section", &LoreEntry{Section: "racesAndPeoples-elves", Text: "x"}, false},
		{"lore unknown section", &LoreEntry{Section: "cooking", Text: "x"}, true},
		{"skill own parent", &Skill{ID: "s", Name: "S", ParentID: "s"}, true},
		{"map negative", &MapDefinition{Name: "M", Width: -1}, true},
		{"marker out of range", &Marker{MapID: "m", X: 101, Y: 5}, true},
		{"marker edge", &Marker{MapID: "m", X: 100, Y: 0}, false},
		{"drawing one point", &Drawing{MapID: "m", Points: []Point{{X: 1, Y: 1}}}, true},
		{"drawing ok", &Drawing{MapID: "m", Points: []Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, Stroke: Stroke{Color: "#000", Width: 2}}, false},
		{"template no name", &Template{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSortNotes_PinnedFirstStable(t *testing.T) {
	notes := []*Note{
		{ID: "a"},
		{ID: "b", IsPinned: true},
		{ID: "c"},
		{ID: "d", IsPinned: true},
	}
	sorted := SortNotes(notes)
	var ids []string
	for _, n := range sorted {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
	assert.Equal(t, "a", notes[0].ID)
	assert.Len(t, NotesByCategory([]*Note{{Category: "x"}, {Category: "y"}}, "x"), 1)
}

func TestTemplateDetails_SkipsEmptyFields(t *testing.T) {
	tmpl := &Template{Name: "Bare", Races: "Humans"}
	assert.Equal(t, "Races: Humans", tmpl.Details())
}
