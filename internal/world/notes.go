package world

import "sort"

// SortNotes orders pinned notes first and otherwise keeps stored order.
func SortNotes(notes []*Note) []*Note {
	out := append([]*Note(nil), notes...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsPinned && !out[j].IsPinned
	})
	return out
}

// NotesByCategory filters notes whose category matches exactly.
func NotesByCategory(notes []*Note, category string) []*Note {
	var out []*Note
	for _, n := range notes {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out
}
