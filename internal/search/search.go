// Package search finds text across the collections of one world.
package search

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"worldsmith/internal/world"
)

const (
	KindCharacter    = "character"
	KindNote         = "note"
	KindRelationship = "relationship"
	KindLore         = "lore"
	KindMap          = "map"
	KindEvent        = "event"
)

// snippetRadius is the number of runes kept on each side of a match.
const snippetRadius = 30

type Result struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Search returns every record with a field containing query. Matching ignores
// case and Unicode normalization differences. Results are grouped by kind in
// a fixed order and keep stored order within a kind. A blank query matches
// nothing.
func Search(ws *world.Workspace, query string) []Result {
	m := newMatcher(query)
	if m == nil {
		return nil
	}

	var out []Result
	chars := ws.Characters.All()
	for _, c := range chars {
		if snippet, ok := m.first(c.Name, c.Race, c.Role, c.Description, c.Biography, strings.Join(c.Tags, " ")); ok {
			out = append(out, Result{Kind: KindCharacter, ID: c.ID, Title: c.Name, Snippet: snippet})
		}
	}
	for _, n := range ws.Notes.All() {
		if snippet, ok := m.first(n.Title, n.Text, n.Category, strings.Join(n.Tags, " ")); ok {
			out = append(out, Result{Kind: KindNote, ID: n.ID, Title: n.Title, Snippet: snippet})
		}
	}
	for _, r := range ws.Relationships.All() {
		if snippet, ok := m.first(r.Description, string(r.Type)); ok {
			out = append(out, Result{Kind: KindRelationship, ID: r.ID, Title: world.DescribeRelationship(chars, r), Snippet: snippet})
		}
	}
	for _, l := range ws.Lore.All() {
		if snippet, ok := m.first(l.Text); ok {
			out = append(out, Result{Kind: KindLore, ID: l.ID, Title: l.Section, Snippet: snippet})
		}
	}
	for _, mp := range ws.Maps.All() {
		if snippet, ok := m.first(mp.Name); ok {
			out = append(out, Result{Kind: KindMap, ID: mp.ID, Title: mp.Name, Snippet: snippet})
		}
	}
	for _, e := range ws.Events() {
		if snippet, ok := m.first(e.Title, e.Description); ok {
			out = append(out, Result{Kind: KindEvent, ID: e.ID, Title: e.Title, Snippet: snippet})
		}
	}
	return out
}

type matcher struct {
	caser cases.Caser
	query string
}

func newMatcher(query string) *matcher {
	m := &matcher{caser: cases.Fold()}
	m.query = m.caser.String(norm.NFC.String(strings.TrimSpace(query)))
	if m.query == "" {
		return nil
	}
	return m
}

// first returns a snippet around the match in the first matching field.
func (m *matcher) first(fields ...string) (string, bool) {
	for _, field := range fields {
		if snippet, ok := m.match(field); ok {
			return snippet, true
		}
	}
	return "", false
}

func (m *matcher) match(field string) (string, bool) {
	if field == "" {
		return "", false
	}
	text := []rune(norm.NFC.String(field))

	// Fold rune by rune so a match offset maps back to the source text.
	var folded strings.Builder
	origin := make([]int, 0, len(text))
	for i, r := range text {
		f := m.caser.String(string(r))
		folded.WriteString(f)
		for range utf8.RuneCountInString(f) {
			origin = append(origin, i)
		}
	}

	foldedRunes := []rune(folded.String())
	at := indexRunes(foldedRunes, []rune(m.query))
	if at < 0 {
		return "", false
	}
	start := origin[at]
	end := origin[at+utf8.RuneCountInString(m.query)-1] + 1
	return snippet(text, start, end), true
}

func indexRunes(s, sub []rune) int {
	i := strings.Index(string(s), string(sub))
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(string(s)[:i])
}

func snippet(text []rune, start, end int) string {
	from := max(0, start-snippetRadius)
	to := min(len(text), end+snippetRadius)

	s := strings.Join(strings.Fields(string(text[from:to])), " ")
	if from > 0 {
		s = "…" + s
	}
	if to < len(text) {
		s += "…"
	}
	return s
}
