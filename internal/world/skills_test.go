package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skillIDs(skills []*Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.ID)
	}
	return out
}

func TestSkillTree(t *testing.T) {
	tree := NewSkillTree([]*Skill{
		{ID: "fire", MagicTypeID: "m1", Name: "Fire"},
		{ID: "ember", MagicTypeID: "m1", Name: "Ember", ParentID: "fire"},
		{ID: "blaze", MagicTypeID: "m1", Name: "Blaze", ParentID: "fire"},
		{ID: "nova", MagicTypeID: "m1", Name: "Nova", ParentID: "blaze", IsUltimate: true},
		{ID: "frost", MagicTypeID: "m2", Name: "Frost"},
		{ID: "stray", MagicTypeID: "m2", Name: "Stray", ParentID: "deleted"},
	})

	assert.Equal(t, []string{"ember", "blaze"}, skillIDs(tree.ChildrenOf("fire")))
	assert.Empty(t, tree.ChildrenOf("nova"))
	assert.Equal(t, []string{"fire"}, skillIDs(tree.Roots("m1")))
	assert.Equal(t, []string{"frost", "stray"}, skillIDs(tree.Roots("m2")))
	assert.Len(t, tree.Roots(""), 3)

	ancestors, cycle := tree.Ancestors("nova")
	assert.False(t, cycle)
	assert.Equal(t, []string{"blaze", "fire"}, skillIDs(ancestors))

	var visited []string
	var depths []int
	tree.Walk(tree.Roots("m1"), func(s *Skill, depth int) {
		visited = append(visited, s.ID)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"fire", "ember", "blaze", "nova"}, visited)
	assert.Equal(t, []int{0, 1, 1, 2}, depths)
}

func TestSkillTree_Cycle(t *testing.T) {
	tree := NewSkillTree([]*Skill{
		{ID: "a", Name: "A", ParentID: "b"},
		{ID: "b", Name: "B", ParentID: "a"},
	})

	assert.Empty(t, tree.Roots(""))
	_, cycle := tree.Ancestors("a")
	assert.True(t, cycle)

	count := 0
	a, ok := tree.Get("a")
	require.True(t, ok)
	tree.Walk([]*Skill{a}, func(*Skill, int) { count++ })
	assert.Equal(t, 2, count)
}
