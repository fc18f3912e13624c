package world

import "fmt"

// UnknownCharacter is rendered in place of a dangling character reference.
const UnknownCharacter = "unknown character"

// Find resolves id within items by linear scan. Dangling or empty ids report
// false rather than failing.
func Find[T Record](items []T, id string) (T, bool) {
	var zero T
	if id == "" {
		return zero, false
	}
	for _, item := range items {
		if item.RecordID() == id {
			return item, true
		}
	}
	return zero, false
}

// CharacterName returns the name behind a character reference, or the
// placeholder when the character no longer exists.
func CharacterName(characters []*Character, id string) string {
	if c, ok := Find(characters, id); ok {
		return c.Name
	}
	return UnknownCharacter
}

// DescribeRelationship renders a relationship with both ends resolved.
func DescribeRelationship(characters []*Character, r *Relationship) string {
	kind, _ := r.Type.Normalize()
	return fmt.Sprintf("%s -[%s]-> %s", CharacterName(characters, r.Character1ID), kind, CharacterName(characters, r.Character2ID))
}

// RelationshipsOf returns relationships touching characterID on either end.
func RelationshipsOf(relationships []*Relationship, characterID string) []*Relationship {
	var out []*Relationship
	for _, r := range relationships {
		if r.Character1ID == characterID || r.Character2ID == characterID {
			out = append(out, r)
		}
	}
	return out
}
