package rewardcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AddAndLoad(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ids, err := store.Load(ctx, "viewer@example.com")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Add(ctx, "viewer@example.com", "UCa", "UCb"))
	require.NoError(t, store.Add(ctx, "viewer@example.com", "UCb")) // duplicate is a no-op

	ids, err = store.Load(ctx, "viewer@example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"UCa", "UCb"}, ids)
}

func TestMemoryStore_SetsAreKeyedByUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "a@example.com", "UCa"))
	require.NoError(t, store.Add(ctx, "b@example.com", "UCb"))

	ids, err := store.Load(ctx, "a@example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"UCa"}, ids)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "viewer@example.com", "UCa"))
	require.NoError(t, store.Clear(ctx, "viewer@example.com"))

	ids, err := store.Load(ctx, "viewer@example.com")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryStore_AddNothing(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Add(context.Background(), "viewer@example.com"))
}
