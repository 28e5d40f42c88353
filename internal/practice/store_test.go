package practice

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	cfg := DefaultConfig("desert-smiles")
	cfg.Name = "Desert Smiles Dental"
	cfg.Token = "tok-ds"
	require.NoError(t, store.Put(ctx, cfg))

	got, err := store.Get(ctx, "desert-smiles")
	require.NoError(t, err)
	require.Equal(t, "Desert Smiles Dental", got.Name)
	require.Equal(t, "tok-ds", got.Token)
	require.Equal(t, "2", got.AppointmentTypeCode("emergency-exam"),
		"lookup table did not survive round trip")
}

func TestRedisStoreGetMissingReturnsDefault(t *testing.T) {
	store := newRedisStore(t)

	got, err := store.Get(context.Background(), "unknown-practice")
	require.NoError(t, err)
	require.Equal(t, "unknown-practice", got.ID)
	require.Equal(t, "1", got.AppointmentTypeCode("cleaning"), "expected default lookup table")
}

func TestRedisStoreSeedDoesNotOverwrite(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	cfg := DefaultConfig("p1")
	cfg.Name = "Original"
	require.NoError(t, store.Put(ctx, cfg))

	seed := DefaultConfig("p1")
	seed.Name = "Seeded"
	require.NoError(t, store.Seed(ctx, seed))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Original", got.Name, "Seed overwrote existing config")
}

func TestRedisStoreList(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	for _, id := range []string{"b-practice", "a-practice"} {
		require.NoError(t, store.Put(ctx, DefaultConfig(id)))
	}

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a-practice", got[0].ID)
	require.Equal(t, "b-practice", got[1].ID)
}

func TestMemoryStoreSeedAndGet(t *testing.T) {
	seed := DefaultConfig("default")
	seed.Name = "Seeded Practice"
	store := NewMemoryStore(seed)
	ctx := context.Background()

	got, err := store.Get(ctx, "default")
	require.NoError(t, err)
	require.Equal(t, "Seeded Practice", got.Name)

	missing, err := store.Get(ctx, "other")
	require.NoError(t, err)
	require.NotEqual(t, "Seeded Practice", missing.Name, "unknown id should return defaults")
}

func TestMemoryStoreCopiesOnReadAndWrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	cfg := DefaultConfig("p1")
	require.NoError(t, store.Put(ctx, cfg))
	cfg.AppointmentTypes["cleaning"] = "999"

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "1", got.AppointmentTypes["cleaning"], "store shared the caller's map")

	got.AppointmentTypes["cleaning"] = "888"
	again, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "1", again.AppointmentTypes["cleaning"], "store handed out its internal map")
}
