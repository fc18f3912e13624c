package world

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pixil98/go-errors"
)

type Character struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Race        string    `json:"race,omitempty"`
	Age         int       `json:"age,omitempty"`
	Role        string    `json:"role,omitempty"`
	Description string    `json:"description,omitempty"`
	Biography   string    `json:"biography,omitempty"`
	Portrait    string    `json:"portrait,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Character) RecordID() string      { return c.ID }
func (c *Character) SetRecordID(id string) { c.ID = id }

func (c *Character) stamp(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func (c *Character) Validate() error {
	el := errors.NewErrorList()
	if strings.TrimSpace(c.Name) == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if c.Age < 0 {
		el.Add(fmt.Errorf("age must not be negative"))
	}
	if c.Portrait != "" && !strings.HasPrefix(c.Portrait, "data:image/") {
		el.Add(fmt.Errorf("portrait must be an image data URL"))
	}
	return el.Err()
}

type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Text         string    `json:"text,omitempty"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags,omitempty"`
	RelatedEvent string    `json:"relatedEvent,omitempty"`
	IsPinned     bool      `json:"isPinned,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (n *Note) RecordID() string      { return n.ID }
func (n *Note) SetRecordID(id string) { n.ID = id }

func (n *Note) stamp(now time.Time) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
}

func (n *Note) Validate() error {
	el := errors.NewErrorList()
	if strings.TrimSpace(n.Title) == "" {
		el.Add(fmt.Errorf("title is required"))
	}
	if strings.TrimSpace(n.Category) == "" {
		el.Add(fmt.Errorf("category is required"))
	}
	return el.Err()
}

// Timeline is a named, ordered list of events. When NumericDates is set every
// event date must be an integer year.
type Timeline struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	NumericDates bool            `json:"numericDates,omitempty"`
	Events       []TimelineEvent `json:"events"`
}

type TimelineEvent struct {
	ID                string `json:"id"`
	Date              string `json:"date"`
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	Location          string `json:"location,omitempty"`
	RelatedCharacters string `json:"relatedCharacters,omitempty"`
	Type              string `json:"type,omitempty"`
}

func (t *Timeline) RecordID() string      { return t.ID }
func (t *Timeline) SetRecordID(id string) { t.ID = id }

func (t *Timeline) Validate() error {
	el := errors.NewErrorList()
	if strings.TrimSpace(t.Name) == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	seen := make(map[string]struct{}, len(t.Events))
	for i := range t.Events {
		event := &t.Events[i]
		if event.ID != "" {
			if _, dup := seen[event.ID]; dup {
				el.Add(fmt.Errorf("event %s: duplicate id", event.ID))
			}
			seen[event.ID] = struct{}{}
		}
		if err := t.ValidateEvent(event); err != nil {
			el.Add(fmt.Errorf("event %d: %w", i, err))
		}
	}
	return el.Err()
}

// ValidateEvent checks an event against this timeline's date rules.
func (t *Timeline) ValidateEvent(event *TimelineEvent) error {
	el := errors.NewErrorList()
	if strings.TrimSpace(event.Title) == "" {
		el.Add(fmt.Errorf("title is required"))
	}
	if t.NumericDates {
		if _, err := strconv.Atoi(strings.TrimSpace(event.Date)); err != nil {
			el.Add(fmt.Errorf("date %q must be numeric", event.Date))
		}
	}
	return el.Err()
}

type RelationshipType string

const (
	RelationshipFriend RelationshipType = "friend"
	RelationshipEnemy  RelationshipType = "enemy"
	RelationshipFamily RelationshipType = "family"
	RelationshipAlly   RelationshipType = "ally"
	RelationshipRival  RelationshipType = "rival"
)

var RelationshipTypes = []RelationshipType{
	RelationshipFriend,
	RelationshipEnemy,
	RelationshipFamily,
	RelationshipAlly,
	RelationshipRival,
}

// Normalize returns the canonical lower-case type, or false if unknown.
func (t RelationshipType) Normalize() (RelationshipType, bool) {
	for _, known := range RelationshipTypes {
		if strings.EqualFold(string(known), strings.TrimSpace(string(t))) {
			return known, true
		}
	}
	return t, false
}

// Relationship is a directed edge between two characters. The ids are not
// checked against the character collection.
type Relationship struct {
	ID           string           `json:"id"`
	Character1ID string           `json:"character1Id"`
	Character2ID string           `json:"character2Id"`
	Type         RelationshipType `json:"type"`
	Description  string           `json:"description,omitempty"`
}

func (r *Relationship) RecordID() string      { return r.ID }
func (r *Relationship) SetRecordID(id string) { r.ID = id }

func (r *Relationship) Validate() error {
	el := errors.NewErrorList()
	if strings.TrimSpace(r.Character1ID) == "" || strings.TrimSpace(r.Character2ID) == "" {
		el.Add(fmt.Errorf("both character ids are required"))
	}
	if _, ok := r.Type.Normalize(); !ok {
		el.Add(fmt.Errorf("unknown relationship type %q", r.Type))
	}
	return el.Err()
}

// LoreSections are the fixed roots of the lore taxonomy. Sections nest with
// "-", e.g. worldDescription-geography-continents or magic-<magicTypeId>.
var LoreSections = []string{
	"worldDescription",
	"racesAndPeoples",
	"religionAndMythology",
	"characters",
	"magic",
	"artifacts",
}

const loreSectionSeparator = "-"

type LoreEntry struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	Text    string `json:"text"`
}

func (l *LoreEntry) RecordID() string      { return l.ID }
func (l *LoreEntry) SetRecordID(id string) { l.ID = id }

// SectionPath splits the hierarchical section key.
func (l *LoreEntry) SectionPath() []string {
	return strings.Split(l.Section, loreSectionSeparator)
}

func (l *LoreEntry) Validate() error {
	el := errors.NewErrorList()
	root := l.SectionPath()[0]
	known := false
	for _, section := range LoreSections {
		if section == root {
			known = true
			break
		}
	}
	if !known {
		el.Add(fmt.Errorf("unknown lore section %q", l.Section))
	}
	if strings.TrimSpace(l.Text) == "" {
		el.Add(fmt.Errorf("text is required"))
	}
	return el.Err()
}

type MagicType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

func (m *MagicType) RecordID() string      { return m.ID }
func (m *MagicType) SetRecordID(id string) { m.ID = id }

func (m *MagicType) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Skill is a node in a magic type's skill tree; ParentID is empty for roots.
type Skill struct {
	ID          string `json:"id"`
	MagicTypeID string `json:"magicTypeId,omitempty"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	ParentID    string `json:"parentId,omitempty"`
	IsUltimate  bool   `json:"isUltimate,omitempty"`
}

func (s *Skill) RecordID() string      { return s.ID }
func (s *Skill) SetRecordID(id string) { s.ID = id }

func (s *Skill) Validate() error {
	el := errors.NewErrorList()
	if strings.TrimSpace(s.Name) == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if s.ParentID != "" && s.ParentID == s.ID {
		el.Add(fmt.Errorf("skill cannot be its own parent"))
	}
	return el.Err()
}

type MapDefinition struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func (m *MapDefinition) RecordID() string      { return m.ID }
func (m *MapDefinition) SetRecordID(id string) { m.ID = id }

func (m *MapDefinition) Validate() error {
	el := errors.NewErrorList()
	if strings.TrimSpace(m.Name) == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if m.Width < 0 || m.Height < 0 {
		el.Add(fmt.Errorf("dimensions must not be negative"))
	}
	return el.Err()
}

// Marker is placed on a map in percentages of its width and height.
type Marker struct {
	ID    string  `json:"id"`
	MapID string  `json:"mapId"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Type  string  `json:"type,omitempty"`
	Label string  `json:"label,omitempty"`
}

func (m *Marker) RecordID() string      { return m.ID }
func (m *Marker) SetRecordID(id string) { m.ID = id }

func (m *Marker) Validate() error {
	el := errors.NewErrorList()
	if strings.TrimSpace(m.MapID) == "" {
		el.Add(fmt.Errorf("map id is required"))
	}
	if m.X < 0 || m.X > 100 || m.Y < 0 || m.Y > 100 {
		el.Add(fmt.Errorf("position (%g, %g) must be within 0-100%%", m.X, m.Y))
	}
	return el.Err()
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Stroke struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Drawing is a freehand polyline over a map.
type Drawing struct {
	ID     string  `json:"id"`
	MapID  string  `json:"mapId"`
	Points []Point `json:"points"`
	Stroke Stroke  `json:"stroke"`
}

func (d *Drawing) RecordID() string      { return d.ID }
func (d *Drawing) SetRecordID(id string) { d.ID = id }

func (d *Drawing) Validate() error {
	el := errors.NewErrorList()
	if strings.TrimSpace(d.MapID) == "" {
		el.Add(fmt.Errorf("map id is required"))
	}
	if len(d.Points) < 2 {
		el.Add(fmt.Errorf("at least two points are required"))
	}
	if d.Stroke.Width < 0 {
		el.Add(fmt.Errorf("stroke width must not be negative"))
	}
	return el.Err()
}

// Template seeds the narrative fields of a new world.
type Template struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Geography string `json:"geography,omitempty"`
	Races     string `json:"races,omitempty"`
	Magic     string `json:"magic,omitempty"`
}

func (t *Template) RecordID() string      { return t.ID }
func (t *Template) SetRecordID(id string) { t.ID = id }

func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Details renders the template as a world description.
func (t *Template) Details() string {
	var b strings.Builder
	for _, field := range []struct{ label, value string }{
		{"Geography", t.Geography},
		{"Races", t.Races},
		{"Magic", t.Magic},
	} {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(field.label)
		b.WriteString(": ")
		b.WriteString(field.value)
	}
	return b.String()
}
