package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, New(rdb)
}

func TestGet_AbsentKeyIsEmpty(t *testing.T) {
	_, store := setupTestStore(t)

	v, err := store.Get(context.Background(), "urge_1")

	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSet_ExpiresAfterTTL(t *testing.T) {
	mr, store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "urge_1", "1", 30*time.Minute))

	v, err := store.Get(ctx, "urge_1")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	// Just before the window closes the marker must still gate urges.
	mr.FastForward(29 * time.Minute)
	v, err = store.Get(ctx, "urge_1")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	mr.FastForward(2 * time.Minute)
	v, err = store.Get(ctx, "urge_1")
	require.NoError(t, err)
	assert.Empty(t, v, "marker must vanish after the 30-minute window")
}

func TestSetForever_NoExpiry(t *testing.T) {
	mr, store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetForever(ctx, "admin_email", "admin@example.com"))

	mr.FastForward(240 * time.Hour)
	v, err := store.Get(ctx, "admin_email")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", v)
}

func TestDel(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetForever(ctx, "admin_email", "admin@example.com"))
	require.NoError(t, store.Del(ctx, "admin_email"))

	v, err := store.Get(ctx, "admin_email")
	require.NoError(t, err)
	assert.Empty(t, v)

	// Deleting a key that is already gone is not an error.
	require.NoError(t, store.Del(ctx, "admin_email"))
}
