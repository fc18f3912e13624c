package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldsmith/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	c, err := New(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(ctx) })
	require.NoError(t, c.EnsureSchema(ctx))
	return c
}

func TestClient_PutGet(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, c.Put(ctx, "characters_w1", []byte(`{"version":1}`)))
	data, err := c.Get(ctx, "characters_w1")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))

	require.NoError(t, c.Put(ctx, "characters_w1", []byte(`{"version":2}`)))
	data, err = c.Get(ctx, "characters_w1")
	require.NoError(t, err)
	assert.Equal(t, `{"version":2}`, string(data))
}

func TestClient_GetMissing(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Get(context.Background(), "nothing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClient_DeleteAndKeys(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	for _, key := range []string{"notes_w1", "notes_w2", "maps_w1", "worlds"} {
		require.NoError(t, c.Put(ctx, key, []byte(`[]`)))
	}

	keys, err := c.Keys(ctx, "notes_")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes_w1", "notes_w2"}, keys)

	require.NoError(t, c.Delete(ctx, "notes_w1"))
	require.NoError(t, c.Delete(ctx, "notes_w1"))

	keys, err = c.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"maps_w1", "notes_w2", "worlds"}, keys)
}

func TestClient_FileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "world.db")

	c, err := New(ctx, "sqlite://"+path)
	require.NoError(t, err)
	require.NoError(t, c.EnsureSchema(ctx))
	require.NoError(t, c.Put(ctx, "worlds", []byte(`[]`)))
	require.NoError(t, c.Close(ctx))

	reopened, err := New(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer reopened.Close(ctx)

	data, err := reopened.Get(ctx, "worlds")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "memory", input: "sqlite://:memory:", want: ":memory:"},
		{name: "absolute", input: "sqlite:///var/data/w.db", want: "/var/data/w.db"},
		{name: "relative", input: "sqlite://./w.db", want: "./w.db"},
		{name: "bare relative", input: "sqlite://w.db", want: "./w.db"},
		{name: "escaped", input: "sqlite://my%20world.db", want: "./my world.db"},
		{name: "query", input: "sqlite://w.db?cache=shared", want: "./w.db?cache=shared"},
		{name: "wrong scheme", input: "postgres://x", wantErr: true},
		{name: "empty path", input: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
