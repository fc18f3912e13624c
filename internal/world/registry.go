package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"worldsmith/internal/store"
)

var ErrWorldNotFound = errors.New("world not found")

const kindWorlds Kind = "worlds"

type World struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Template    string    `json:"template,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (w *World) RecordID() string      { return w.ID }
func (w *World) SetRecordID(id string) { w.ID = id }

func (w *World) stamp(now time.Time) {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
}

func (w *World) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Registry is the list of worlds plus the current selection. Deleting a
// world removes every partition it owns.
type Registry struct {
	st     store.Store
	opts   options
	worlds *Collection[*World]
}

func OpenRegistry(ctx context.Context, st store.Store, opts ...Option) *Registry {
	o := newOptions(opts)
	return &Registry{
		st:     st,
		opts:   o,
		worlds: loadCollection[*World](ctx, st, RegistryKey, kindWorlds, o),
	}
}

func (r *Registry) Worlds() []*World {
	return r.worlds.All()
}

func (r *Registry) Get(id string) (*World, bool) {
	return r.worlds.Get(id)
}

func (r *Registry) CreateWorld(ctx context.Context, name, description string) (*World, error) {
	w := &World{Name: strings.TrimSpace(name), Description: description}
	if err := r.worlds.Add(ctx, w); err != nil {
		return w, err
	}
	return w, nil
}

// CreateFromTemplate creates a world whose description is built from the
// template's narrative fields.
func (r *Registry) CreateFromTemplate(ctx context.Context, name string, tmpl *Template) (*World, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("creating world from template: nil template")
	}
	w := &World{
		Name:        strings.TrimSpace(name),
		Description: tmpl.Details(),
		Template:    tmpl.Name,
	}
	if w.Name == "" {
		w.Name = tmpl.Name
	}
	if err := r.worlds.Add(ctx, w); err != nil {
		return w, err
	}
	return w, nil
}

func (r *Registry) UpdateWorld(ctx context.Context, id string, patch map[string]any) (bool, error) {
	return r.worlds.Update(ctx, id, patch)
}

// DeleteWorld unregisters a world and deletes every partition it owns. The
// selection is cleared when it pointed at the deleted world.
func (r *Registry) DeleteWorld(ctx context.Context, id string) (bool, error) {
	found, err := r.worlds.Remove(ctx, id)
	if !found {
		return false, nil
	}

	errs := []error{err}
	errs = append(errs, r.deletePartitions(ctx, id))

	selected, selErr := r.storedSelection(ctx)
	errs = append(errs, selErr)
	if selErr == nil && selected == id {
		errs = append(errs, r.SelectWorld(ctx, ""))
	}
	return true, errors.Join(errs...)
}

func (r *Registry) deletePartitions(ctx context.Context, worldID string) error {
	var errs []error
	for _, kind := range Kinds {
		key, err := NamespaceKey(worldID, kind)
		if err != nil {
			return err
		}
		if err := r.st.Delete(ctx, key); err != nil {
			r.opts.logger.Warn("deleting partition failed", "key", key, "kind", kind, "error", err)
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

type selection struct {
	WorldID string `json:"worldId"`
}

// SelectWorld records id as the current world. An empty id clears the
// selection.
func (r *Registry) SelectWorld(ctx context.Context, id string) error {
	if id == "" {
		if err := r.st.Delete(ctx, SelectionKey); err != nil {
			return fmt.Errorf("clearing selection: %w", err)
		}
		return nil
	}
	if _, ok := r.worlds.Get(id); !ok {
		return fmt.Errorf("selecting %s: %w", id, ErrWorldNotFound)
	}

	data, err := json.Marshal(selection{WorldID: id})
	if err != nil {
		return fmt.Errorf("encoding selection: %w", err)
	}
	if err := r.st.Put(ctx, SelectionKey, data); err != nil {
		return fmt.Errorf("%w %s: %w", ErrPersist, SelectionKey, err)
	}
	return nil
}

// Selected returns the current world id, or "" when none is selected or the
// selected world no longer exists.
func (r *Registry) Selected(ctx context.Context) (string, error) {
	id, err := r.storedSelection(ctx)
	if err != nil || id == "" {
		return "", err
	}
	if _, ok := r.worlds.Get(id); !ok {
		return "", nil
	}
	return id, nil
}

// storedSelection returns the persisted selection whether or not the world
// is still registered.
func (r *Registry) storedSelection(ctx context.Context) (string, error) {
	data, err := r.st.Get(ctx, SelectionKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading selection: %w", err)
	}

	var sel selection
	if err := json.Unmarshal(data, &sel); err != nil {
		r.opts.logger.Warn("discarding unreadable selection", "key", SelectionKey, "error", err)
		return "", nil
	}
	return sel.WorldID, nil
}

// Purge deletes world partitions whose world is no longer registered and
// returns the deleted keys.
func (r *Registry) Purge(ctx context.Context) ([]string, error) {
	keys, err := r.st.Keys(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	var purged []string
	var errs []error
	for _, key := range keys {
		worldID, _, ok := splitNamespaceKey(key)
		if !ok {
			continue
		}
		if _, registered := r.worlds.Get(worldID); registered {
			continue
		}
		if err := r.st.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
			continue
		}
		r.opts.logger.Info("purged orphan partition", "key", key)
		purged = append(purged, key)
	}
	return purged, errors.Join(errs...)
}

// Adoption summarises moving one legacy kind into a world.
type Adoption struct {
	Kind     Kind
	Adopted  int
	Invalid  int
	Occupied bool
}

// AdoptLegacy moves the pre-world global partitions into worldID. A kind is
// only adopted when the world's partition for it is empty; legacy items that
// fail validation are dropped with a warning. Adopted legacy keys are deleted.
func (r *Registry) AdoptLegacy(ctx context.Context, worldID string) ([]Adoption, error) {
	if _, ok := r.worlds.Get(worldID); !ok {
		return nil, fmt.Errorf("adopting into %s: %w", worldID, ErrWorldNotFound)
	}

	var out []Adoption
	var errs []error
	for _, kind := range []Kind{KindCharacters, KindNotes, KindLore} {
		var (
			a   Adoption
			err error
		)
		switch kind {
		case KindCharacters:
			a, err = adoptKind(ctx, r, worldID, kind, decodeLegacy[*Character])
		case KindNotes:
			a, err = adoptKind(ctx, r, worldID, kind, r.decodeLegacyNotes)
		case KindLore:
			a, err = adoptKind(ctx, r, worldID, kind, decodeLegacy[*LoreEntry])
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if a.Adopted > 0 || a.Invalid > 0 || a.Occupied {
			out = append(out, a)
		}
	}
	return out, errors.Join(errs...)
}

func adoptKind[T Record](ctx context.Context, r *Registry, worldID string, kind Kind, decode func(key string, raw json.RawMessage) ([]T, error)) (Adoption, error) {
	a := Adoption{Kind: kind}

	var items []T
	var adoptedKeys []string
	for _, key := range legacyKeys[kind] {
		data, err := r.st.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return a, fmt.Errorf("reading legacy %s: %w", key, err)
		}
		raw, err := decodeEnvelope(kind, data)
		if err != nil {
			r.opts.logger.Warn("skipping unreadable legacy partition", "key", key, "error", err)
			continue
		}
		decoded, err := decode(key, raw)
		if err != nil {
			r.opts.logger.Warn("skipping unreadable legacy partition", "key", key, "error", err)
			continue
		}
		items = append(items, decoded...)
		adoptedKeys = append(adoptedKeys, key)
	}
	if len(adoptedKeys) == 0 {
		return a, nil
	}

	target := openKind[T](ctx, r.st, worldID, kind, r.opts)
	if target.Len() > 0 {
		a.Occupied = true
		return a, nil
	}

	seen := make(map[string]struct{}, len(items))
	valid := make([]T, 0, len(items))
	for _, item := range items {
		if isNil(item) {
			continue
		}
		if err := item.Validate(); err != nil {
			r.opts.logger.Warn("dropping invalid legacy record", "kind", kind, "id", item.RecordID(), "error", err)
			a.Invalid++
			continue
		}
		// Legacy notes and events were numbered independently.
		if _, dup := seen[item.RecordID()]; dup {
			item.SetRecordID("")
		}
		seen[item.RecordID()] = struct{}{}
		if s, ok := any(item).(stamper); ok {
			s.stamp(r.opts.now())
		}
		valid = append(valid, item)
	}

	if err := target.Replace(ctx, valid); err != nil {
		return a, fmt.Errorf("adopting %s: %w", kind, err)
	}
	a.Adopted = len(valid)

	for _, key := range adoptedKeys {
		if err := r.st.Delete(ctx, key); err != nil {
			return a, fmt.Errorf("deleting legacy %s: %w", key, err)
		}
	}
	return a, nil
}

func decodeLegacy[T Record](key string, raw json.RawMessage) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return items, nil
}

// decodeLegacyNotes reads the legacy notes partition, and turns entries of
// the legacy flat event log into notes of category "event".
func (r *Registry) decodeLegacyNotes(key string, raw json.RawMessage) ([]*Note, error) {
	if key != "events" {
		return decodeLegacy[*Note](key, raw)
	}

	var events []TimelineEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	notes := make([]*Note, 0, len(events))
	for _, e := range events {
		category := strings.TrimSpace(e.Type)
		if category == "" {
			category = "event"
		}
		text := e.Description
		if e.Date != "" {
			text = strings.TrimSpace(e.Date + "\n" + text)
		}
		notes = append(notes, &Note{
			ID:       e.ID,
			Title:    e.Title,
			Text:     text,
			Category: category,
		})
	}
	return notes, nil
}
