package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	jsonpatch "github.com/evanphx/json-patch"

	"worldsmith/internal/store"
)

var (
	ErrDuplicateID = errors.New("duplicate id")
	// ErrPersist marks a failed write-back. The in-memory change is kept.
	ErrPersist = errors.New("persisting partition")
)

type Option func(*options)

type options struct {
	newID  IDFunc
	now    func() time.Time
	logger *slog.Logger
}

func WithIDFunc(fn IDFunc) Option {
	return func(o *options) { o.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(o *options) { o.now = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	o := options{
		newID: NewID,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Collection is the ordered list of one kind's records for one world. It is
// read once when loaded and written back in full after every mutation.
// Collections are not safe for concurrent use.
type Collection[T Record] struct {
	st    store.Store
	kind  Kind
	key   string
	opts  options
	items []T
}

// LoadCollection reads kind's partition for worldID. Unreadable or corrupt
// partitions are logged and treated as empty.
func LoadCollection[T Record](ctx context.Context, st store.Store, worldID string, kind Kind, opts ...Option) (*Collection[T], error) {
	key, err := NamespaceKey(worldID, kind)
	if err != nil {
		return nil, err
	}
	return loadCollection[T](ctx, st, key, kind, newOptions(opts)), nil
}

func loadCollection[T Record](ctx context.Context, st store.Store, key string, kind Kind, o options) *Collection[T] {
	c := &Collection[T]{st: st, kind: kind, key: key, opts: o}
	c.items = c.read(ctx)
	return c
}

func (c *Collection[T]) read(ctx context.Context) []T {
	data, err := c.st.Get(ctx, c.key)
	if errors.Is(err, store.ErrNotFound) {
		return []T{}
	}
	if err != nil {
		c.opts.logger.Warn("reading partition failed", "key", c.key, "kind", c.kind, "error", err)
		return []T{}
	}

	items, err := decodeItems[T](c.kind, data)
	if err != nil {
		c.opts.logger.Warn("discarding unreadable partition", "key", c.key, "kind", c.kind, "error", err)
		return []T{}
	}

	c.items = items
	assigned := 0
	for _, item := range items {
		if item.RecordID() == "" {
			item.SetRecordID(c.freshID())
			assigned++
		}
	}
	if assigned > 0 {
		c.opts.logger.Warn("assigned ids to records without one", "key", c.key, "kind", c.kind, "count", assigned)
		// A failed write is already logged; the ids then only hold for this load.
		_ = c.Persist(ctx)
	}
	return c.items
}

func decodeItems[T Record](kind Kind, data []byte) ([]T, error) {
	raw, err := decodeEnvelope(kind, data)
	if err != nil {
		return nil, err
	}
	var decoded []T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decoding %s items: %w", kind, err)
	}
	items := make([]T, 0, len(decoded))
	for _, item := range decoded {
		if isNil(item) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// DecodeItems decodes a partition payload, an envelope or a bare legacy
// array, into out. Legacy items are migrated to the current shape.
func DecodeItems[T Record](kind Kind, data []byte, out *[]T) error {
	items, err := decodeItems[T](kind, data)
	if err != nil {
		return err
	}
	*out = items
	return nil
}

func (c *Collection[T]) Kind() Kind  { return c.kind }
func (c *Collection[T]) Key() string { return c.key }
func (c *Collection[T]) Len() int    { return len(c.items) }

// All returns the records in stored order. The records are shared with the
// collection; change them through Update or Modify so they are persisted.
func (c *Collection[T]) All() []T {
	return append(make([]T, 0, len(c.items)), c.items...)
}

// Get resolves id with a linear scan.
func (c *Collection[T]) Get(id string) (T, bool) {
	return Find(c.items, id)
}

// Add validates item, assigns an id if it has none, appends it and persists.
func (c *Collection[T]) Add(ctx context.Context, item T) error {
	if isNil(item) {
		return fmt.Errorf("adding %s: nil record", c.kind)
	}
	if err := item.Validate(); err != nil {
		return &ValidationError{Kind: c.kind, ID: item.RecordID(), Err: err}
	}

	if id := item.RecordID(); id == "" {
		item.SetRecordID(c.freshID())
	} else if c.indexOf(id) >= 0 {
		return fmt.Errorf("adding %s %s: %w", c.kind, id, ErrDuplicateID)
	}
	c.stamp(item)

	c.items = append(c.items, item)
	return c.Persist(ctx)
}

// Update merges patch (RFC 7386 semantics) into the record with id. The id
// itself cannot be patched. A missing id is not an error: found is false and
// nothing is written. An empty patch writes nothing either.
func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]any) (bool, error) {
	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}
	if len(patch) == 0 {
		return true, nil
	}

	original, err := json.Marshal(c.items[i])
	if err != nil {
		return true, fmt.Errorf("marshalling %s %s: %w", c.kind, id, err)
	}
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return true, fmt.Errorf("marshalling patch: %w", err)
	}
	merged, err := jsonpatch.MergePatch(original, patchJSON)
	if err != nil {
		return true, fmt.Errorf("merging patch into %s %s: %w", c.kind, id, err)
	}

	var updated T
	if err := json.Unmarshal(merged, &updated); err != nil {
		return true, &ValidationError{Kind: c.kind, ID: id, Err: err}
	}
	return true, c.replaceAt(ctx, i, updated)
}

// Modify applies fn to a copy of the record with id and stores the result if
// it validates. A missing id reports found=false.
func (c *Collection[T]) Modify(ctx context.Context, id string, fn func(T) error) (bool, error) {
	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}

	updated, err := clone(c.items[i])
	if err != nil {
		return true, fmt.Errorf("copying %s %s: %w", c.kind, id, err)
	}
	if err := fn(updated); err != nil {
		return true, err
	}
	return true, c.replaceAt(ctx, i, updated)
}

// Put replaces the record with the same id as item, or reports found=false.
func (c *Collection[T]) Put(ctx context.Context, item T) (bool, error) {
	if isNil(item) {
		return false, fmt.Errorf("putting %s: nil record", c.kind)
	}
	i := c.indexOf(item.RecordID())
	if i < 0 {
		return false, nil
	}
	return true, c.replaceAt(ctx, i, item)
}

func (c *Collection[T]) replaceAt(ctx context.Context, i int, updated T) error {
	id := c.items[i].RecordID()
	updated.SetRecordID(id)
	if err := updated.Validate(); err != nil {
		return &ValidationError{Kind: c.kind, ID: id, Err: err}
	}
	c.stamp(updated)
	c.items[i] = updated
	return c.Persist(ctx)
}

// Remove deletes the record with id. Removing an absent id writes nothing.
func (c *Collection[T]) Remove(ctx context.Context, id string) (bool, error) {
	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return true, c.Persist(ctx)
}

// Replace swaps the whole collection, as an import does. Every record is
// validated and ids must be distinct before anything changes.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	if err := c.checkReplacement(items); err != nil {
		return err
	}

	next := make([]T, 0, len(items))
	for _, item := range items {
		if item.RecordID() == "" {
			item.SetRecordID(freshIDAgainst(c.opts.newID, next))
		}
		next = append(next, item)
	}
	c.items = next
	return c.Persist(ctx)
}

func (c *Collection[T]) checkReplacement(items []T) error {
	return CheckAll(c.kind, items)
}

// CheckAll validates items as a replacement for a kind's collection: every
// record must be valid and explicit ids must be distinct.
func CheckAll[T Record](kind Kind, items []T) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if isNil(item) {
			return fmt.Errorf("replacing %s: nil record", kind)
		}
		if err := item.Validate(); err != nil {
			return &ValidationError{Kind: kind, ID: item.RecordID(), Err: err}
		}
		id := item.RecordID()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("replacing %s %s: %w", kind, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Persist writes the full collection to its partition. Failures are logged
// and returned wrapped in ErrPersist; the in-memory state is left as is.
func (c *Collection[T]) Persist(ctx context.Context) error {
	data, err := encodeEnvelope(c.kind, c.items)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrPersist, c.key, err)
	}
	if err := c.st.Put(ctx, c.key, data); err != nil {
		c.opts.logger.Warn("persisting partition failed", "key", c.key, "kind", c.kind, "error", err)
		return fmt.Errorf("%w %s: %w", ErrPersist, c.key, err)
	}
	return nil
}

func (c *Collection[T]) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range c.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) freshID() string {
	return freshIDAgainst(c.opts.newID, c.items)
}

// freshIDAgainst draws an id from gen and suffixes it until it is unused, so
// even a coarse generator (a millisecond clock) never yields duplicates.
func freshIDAgainst[T Record](gen IDFunc, items []T) string {
	used := make(map[string]struct{}, len(items))
	for _, item := range items {
		used[item.RecordID()] = struct{}{}
	}
	base := gen()
	candidate := base
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken && candidate != "" {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (c *Collection[T]) stamp(item T) {
	if s, ok := any(item).(stamper); ok {
		s.stamp(c.opts.now())
	}
}

func clone[T Record](item T) (T, error) {
	var out T
	data, err := json.Marshal(item)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
