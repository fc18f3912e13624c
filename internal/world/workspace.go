package world

import (
	"context"
	"errors"
	"fmt"

	"worldsmith/internal/store"
)

// ErrTimelineNotFound is returned by event operations on an unknown timeline.
var ErrTimelineNotFound = errors.New("timeline not found")

// Workspace holds every collection of one world, loaded together.
type Workspace struct {
	WorldID string

	Characters    *Collection[*Character]
	Notes         *Collection[*Note]
	Timelines     *Collection[*Timeline]
	Relationships *Collection[*Relationship]
	Lore          *Collection[*LoreEntry]
	MagicTypes    *Collection[*MagicType]
	Skills        *Collection[*Skill]
	Maps          *Collection[*MapDefinition]
	Markers       *Collection[*Marker]
	Drawings      *Collection[*Drawing]
	Templates     *Collection[*Template]

	opts options
}

func OpenWorkspace(ctx context.Context, st store.Store, worldID string, opts ...Option) (*Workspace, error) {
	if _, err := NamespaceKey(worldID, KindCharacters); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	ws := &Workspace{WorldID: worldID, opts: o}

	ws.Characters = openKind[*Character](ctx, st, worldID, KindCharacters, o)
	ws.Notes = openKind[*Note](ctx, st, worldID, KindNotes, o)
	ws.Timelines = openKind[*Timeline](ctx, st, worldID, KindTimelines, o)
	ws.Relationships = openKind[*Relationship](ctx, st, worldID, KindRelationships, o)
	ws.Lore = openKind[*LoreEntry](ctx, st, worldID, KindLore, o)
	ws.MagicTypes = openKind[*MagicType](ctx, st, worldID, KindMagicTypes, o)
	ws.Skills = openKind[*Skill](ctx, st, worldID, KindSkills, o)
	ws.Maps = openKind[*MapDefinition](ctx, st, worldID, KindMaps, o)
	ws.Markers = openKind[*Marker](ctx, st, worldID, KindMarkers, o)
	ws.Drawings = openKind[*Drawing](ctx, st, worldID, KindDrawings, o)
	ws.Templates = openKind[*Template](ctx, st, worldID, KindTemplates, o)

	return ws, nil
}

func openKind[T Record](ctx context.Context, st store.Store, worldID string, kind Kind, o options) *Collection[T] {
	key, _ := NamespaceKey(worldID, kind)
	return loadCollection[T](ctx, st, key, kind, o)
}

// AddEvent appends event to a timeline, assigning it an id. Events failing
// the timeline's date rules are rejected without writing.
func (ws *Workspace) AddEvent(ctx context.Context, timelineID string, event TimelineEvent) (TimelineEvent, error) {
	found, err := ws.Timelines.Modify(ctx, timelineID, func(t *Timeline) error {
		if err := t.ValidateEvent(&event); err != nil {
			return &ValidationError{Kind: KindTimelines, ID: timelineID, Err: err}
		}
		if event.ID == "" {
			event.ID = ws.freshEventID(t)
		}
		for _, existing := range t.Events {
			if existing.ID == event.ID {
				return fmt.Errorf("adding event %s: %w", event.ID, ErrDuplicateID)
			}
		}
		t.Events = append(t.Events, event)
		return nil
	})
	if err != nil {
		return TimelineEvent{}, err
	}
	if !found {
		return TimelineEvent{}, fmt.Errorf("%w: %s", ErrTimelineNotFound, timelineID)
	}
	return event, nil
}

// UpdateEvent replaces the event with the same id inside a timeline.
func (ws *Workspace) UpdateEvent(ctx context.Context, timelineID string, event TimelineEvent) (bool, error) {
	replaced := false
	found, err := ws.Timelines.Modify(ctx, timelineID, func(t *Timeline) error {
		for i := range t.Events {
			if t.Events[i].ID == event.ID {
				t.Events[i] = event
				replaced = true
				return nil
			}
		}
		return errNoChange
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("%w: %s", ErrTimelineNotFound, timelineID)
	}
	return replaced, nil
}

// RemoveEvent drops an event from a timeline; an absent event is a no-op.
func (ws *Workspace) RemoveEvent(ctx context.Context, timelineID, eventID string) (bool, error) {
	found, err := ws.Timelines.Modify(ctx, timelineID, func(t *Timeline) error {
		for i := range t.Events {
			if t.Events[i].ID == eventID {
				t.Events = append(t.Events[:i:i], t.Events[i+1:]...)
				return nil
			}
		}
		return errNoChange
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("%w: %s", ErrTimelineNotFound, timelineID)
	}
	return true, nil
}

// Events returns every event across timelines, in timeline then event order.
func (ws *Workspace) Events() []TimelineEvent {
	var out []TimelineEvent
	for _, t := range ws.Timelines.All() {
		out = append(out, t.Events...)
	}
	return out
}

// errNoChange aborts a Modify without writing.
var errNoChange = errors.New("no change")

func (ws *Workspace) freshEventID(t *Timeline) string {
	used := make(map[string]struct{}, len(t.Events))
	for _, e := range t.Events {
		used[e.ID] = struct{}{}
	}
	base := ws.opts.newID()
	candidate := base
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken && candidate != "" {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
