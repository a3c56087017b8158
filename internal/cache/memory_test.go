package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NewMemoryStore()

	_, err := s.Read(ctx, "a.json")
	require.ErrorIs(t, err, ErrNotFound)

	data := []byte(`["x"]`)
	require.NoError(t, s.Write(ctx, "b.json", data))
	require.NoError(t, s.Write(ctx, "a.json", []byte(`[]`)))
	data[0] = '{'

	got, err := s.Read(ctx, "b.json")
	require.NoError(t, err)
	assert.Equal(t, `["x"]`, string(got), "stored bytes are copied")

	mod, err := s.ModTime(ctx, "b.json")
	require.NoError(t, err)
	assert.False(t, mod.IsZero())

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json"}, keys)

	require.NoError(t, s.Delete(ctx, "a.json"))
	require.ErrorIs(t, s.Delete(ctx, "a.json"), ErrNotFound)
	require.ErrorIs(t, s.Write(ctx, "", nil), ErrInvalidKey)
}
