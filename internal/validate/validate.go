package validate

import (
	"fmt"
	"strings"

	"worldsmith/internal/world"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDuplicateID      = "duplicate_id"
	codeInvalidRecord    = "invalid_record"
	codeMissingTitle     = "missing_title"
	codeMissingName      = "missing_name"
	codeSelfRelationship = "self_relationship"
	codeDanglingRef      = "dangling_reference"
	codeSkillCycle       = "skill_cycle"
)

type Issue struct {
	Severity Severity   `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	Kind     world.Kind `json:"kind"`
	ID       string     `json:"id,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of issues with the given severity.
func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// Run checks the integrity of one world. References are never enforced on
// write, so dangling ones show up here as warnings.
func Run(ws *world.Workspace) *Report {
	issues := make([]Issue, 0)

	issues = append(issues, checkRecords(world.KindCharacters, ws.Characters.All(), nil)...)
	issues = append(issues, checkRecords(world.KindNotes, ws.Notes.All(), untitledOnly)...)
	issues = append(issues, checkRecords(world.KindTimelines, ws.Timelines.All(), nil)...)
	issues = append(issues, checkRecords(world.KindRelationships, ws.Relationships.All(), nil)...)
	issues = append(issues, checkRecords(world.KindLore, ws.Lore.All(), nil)...)
	issues = append(issues, checkRecords(world.KindMagicTypes, ws.MagicTypes.All(), nil)...)
	issues = append(issues, checkRecords(world.KindSkills, ws.Skills.All(), nil)...)
	issues = append(issues, checkRecords(world.KindMaps, ws.Maps.All(), unnamedOnly)...)
	issues = append(issues, checkRecords(world.KindMarkers, ws.Markers.All(), nil)...)
	issues = append(issues, checkRecords(world.KindDrawings, ws.Drawings.All(), nil)...)
	issues = append(issues, checkRecords(world.KindTemplates, ws.Templates.All(), nil)...)

	issues = append(issues, checkNotes(ws)...)
	issues = append(issues, checkRelationships(ws)...)
	issues = append(issues, checkMapRefs(ws)...)
	issues = append(issues, checkSkills(ws)...)
	issues = append(issues, checkLore(ws)...)

	return &Report{Issues: issues}
}

// checkRecords reports duplicate ids and records that no longer validate,
// which can only come from hand-edited or legacy partitions. Records for
// which covered reports true are left to a more specific check.
func checkRecords[T world.Record](kind world.Kind, items []T, covered func(T) bool) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		id := item.RecordID()
		if seen[id] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateID,
				Message:  fmt.Sprintf("duplicate %s id: %s", kind, id),
				Kind:     kind,
				ID:       id,
			})
		}
		seen[id] = true

		if covered != nil && covered(item) {
			continue
		}
		if err := item.Validate(); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeInvalidRecord,
				Message:  err.Error(),
				Kind:     kind,
				ID:       id,
			})
		}
	}
	return issues
}

// untitledOnly reports notes whose only problem is the missing title that
// checkNotes already flags.
func untitledOnly(n *world.Note) bool {
	if strings.TrimSpace(n.Title) != "" {
		return false
	}
	titled := *n
	titled.Title = "untitled"
	return titled.Validate() == nil
}

// unnamedOnly is untitledOnly for maps.
func unnamedOnly(m *world.MapDefinition) bool {
	if strings.TrimSpace(m.Name) != "" {
		return false
	}
	named := *m
	named.Name = "unnamed"
	return named.Validate() == nil
}

func checkNotes(ws *world.Workspace) []Issue {
	events := make(map[string]bool)
	for _, e := range ws.Events() {
		events[e.ID] = true
	}

	var issues []Issue
	for _, n := range ws.Notes.All() {
		if strings.TrimSpace(n.Title) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeMissingTitle,
				Message:  "note has no title",
				Kind:     world.KindNotes,
				ID:       n.ID,
			})
		}
		if n.RelatedEvent != "" && !events[n.RelatedEvent] {
			issues = append(issues, danglingIssue(world.KindNotes, n.ID, "related event", n.RelatedEvent))
		}
	}
	return issues
}

func checkRelationships(ws *world.Workspace) []Issue {
	chars := ws.Characters.All()

	var issues []Issue
	for _, r := range ws.Relationships.All() {
		if r.Character1ID != "" && r.Character1ID == r.Character2ID {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeSelfRelationship,
				Message:  fmt.Sprintf("relationship links character %s to itself", r.Character1ID),
				Kind:     world.KindRelationships,
				ID:       r.ID,
			})
		}
		for _, ref := range []string{r.Character1ID, r.Character2ID} {
			if ref == "" {
				continue
			}
			if _, ok := world.Find(chars, ref); !ok {
				issues = append(issues, danglingIssue(world.KindRelationships, r.ID, "character", ref))
			}
		}
	}
	return issues
}

func checkMapRefs(ws *world.Workspace) []Issue {
	maps := ws.Maps.All()

	var issues []Issue
	for _, m := range maps {
		if strings.TrimSpace(m.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeMissingName,
				Message:  "map has no name",
				Kind:     world.KindMaps,
				ID:       m.ID,
			})
		}
	}
	for _, m := range ws.Markers.All() {
		if _, ok := world.Find(maps, m.MapID); !ok {
			issues = append(issues, danglingIssue(world.KindMarkers, m.ID, "map", m.MapID))
		}
	}
	for _, d := range ws.Drawings.All() {
		if _, ok := world.Find(maps, d.MapID); !ok {
			issues = append(issues, danglingIssue(world.KindDrawings, d.ID, "map", d.MapID))
		}
	}
	return issues
}

func checkSkills(ws *world.Workspace) []Issue {
	skills := ws.Skills.All()
	magicTypes := ws.MagicTypes.All()
	tree := world.NewSkillTree(skills)

	var issues []Issue
	for _, s := range skills {
		if s.MagicTypeID != "" {
			if _, ok := world.Find(magicTypes, s.MagicTypeID); !ok {
				issues = append(issues, danglingIssue(world.KindSkills, s.ID, "magic type", s.MagicTypeID))
			}
		}
		if s.ParentID != "" {
			if _, ok := tree.Get(s.ParentID); !ok {
				issues = append(issues, danglingIssue(world.KindSkills, s.ID, "parent skill", s.ParentID))
			}
		}
		if _, cycle := tree.Ancestors(s.ID); cycle {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeSkillCycle,
				Message:  fmt.Sprintf("skill %s has a parent cycle", s.Name),
				Kind:     world.KindSkills,
				ID:       s.ID,
			})
		}
	}
	return issues
}

// checkLore flags magic sections naming a magic type that does not exist.
// Ids may contain the section separator, so the longest matching id wins.
func checkLore(ws *world.Workspace) []Issue {
	magicTypes := ws.MagicTypes.All()

	var issues []Issue
	for _, l := range ws.Lore.All() {
		rest, ok := strings.CutPrefix(l.Section, "magic-")
		if !ok || rest == "" {
			continue
		}
		if magicTypeFor(magicTypes, rest) == nil {
			issues = append(issues, danglingIssue(world.KindLore, l.ID, "magic type", rest))
		}
	}
	return issues
}

// magicTypeFor finds the magic type whose id is rest or a "-" separated
// prefix of it.
func magicTypeFor(magicTypes []*world.MagicType, rest string) *world.MagicType {
	var best *world.MagicType
	for _, m := range magicTypes {
		if m.ID == "" {
			continue
		}
		if rest != m.ID && !strings.HasPrefix(rest, m.ID+"-") {
			continue
		}
		if best == nil || len(m.ID) > len(best.ID) {
			best = m
		}
	}
	return best
}

func danglingIssue(kind world.Kind, id, target, ref string) Issue {
	return Issue{
		Severity: SeverityWarn,
		Code:     codeDanglingRef,
		Message:  fmt.Sprintf("references missing %s %s", target, ref),
		Kind:     kind,
		ID:       id,
	}
}
