package world

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"worldsmith/internal/store"
	"worldsmith/internal/store/memory"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func testOptions() []Option {
	return []Option{
		WithIDFunc(sequentialIDs()),
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

var errWriteFailed = errors.New("disk full")

// flakyStore wraps a memory store and fails writes while failPuts is set.
type flakyStore struct {
	*memory.Client
	failPuts bool
	puts     int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Client: memory.New()}
}

func (s *flakyStore) Put(ctx context.Context, key string, data []byte) error {
	s.puts++
	if s.failPuts {
		return errWriteFailed
	}
	return s.Client.Put(ctx, key, data)
}

var _ store.Store = (*flakyStore)(nil)

func mustLoad[T Record](t *testing.T, st store.Store, kind Kind) *Collection[T] {
	t.Helper()
	c, err := LoadCollection[T](context.Background(), st, "w1", kind, testOptions()...)
	if err != nil {
		t.Fatalf("loading %s: %v", kind, err)
	}
	return c
}
