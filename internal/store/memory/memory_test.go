package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldsmith/internal/store"
)

func TestClient_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	c := New()

	_, err := c.Get(ctx, "characters_w1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, c.Put(ctx, "characters_w1", []byte(`[]`)))
	data, err := c.Get(ctx, "characters_w1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	require.NoError(t, c.Delete(ctx, "characters_w1"))
	require.NoError(t, c.Delete(ctx, "characters_w1"))
	_, err = c.Get(ctx, "characters_w1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClient_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := New()

	require.NoError(t, c.Put(ctx, "notes_w1", []byte(`abc`)))
	data, err := c.Get(ctx, "notes_w1")
	require.NoError(t, err)
	data[0] = 'z'

	again, err := c.Get(ctx, "notes_w1")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestClient_KeysByPrefix(t *testing.T) {
	ctx := context.Background()
	c := New()

	for _, key := range []string{"notes_b", "characters_b", "characters_a", "worlds"} {
		require.NoError(t, c.Put(ctx, key, []byte(`[]`)))
	}

	keys, err := c.Keys(ctx, "characters_")
	require.NoError(t, err)
	assert.Equal(t, []string{"characters_a", "characters_b"}, keys)

	all, err := c.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestClient_RejectsInvalidKey(t *testing.T) {
	c := New()
	assert.Error(t, c.Put(context.Background(), "../escape", []byte(`[]`)))
}
