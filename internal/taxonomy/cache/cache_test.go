package cache

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinship/internal/taxonomy/models"
	"kinship/internal/taxonomy/store"
	id "kinship/pkg/domain"
)

// mapKV is an in-process KV for exercising cache behavior without redis.
type mapKV struct {
	mu     sync.Mutex
	values map[string]string
	gets   int
	dels   []string
}

func newMapKV() *mapKV {
	return &mapKV{values: make(map[string]string)}
}

func (m *mapKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mapKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
		m.dels = append(m.dels, k)
	}
	return nil
}

func newCached(t *testing.T) (*Store, *store.InMemory, *mapKV) {
	t.Helper()
	inner := store.NewInMemory()
	kv := newMapKV()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(inner, kv, time.Minute, logger, nil), inner, kv
}

func mustEntry(t *testing.T, entryType models.EntryType, value string, parentID *id.EntryID) *models.Entry {
	t.Helper()
	entry, err := models.NewEntry(id.NewEntryID(), entryType, value, parentID, time.Now())
	require.NoError(t, err)
	return entry
}

func TestReadThrough(t *testing.T) {
	ctx := context.Background()
	cached, inner, kv := newCached(t)

	require.NoError(t, inner.CreateIfValueAvailable(ctx, mustEntry(t, models.TypeClan, "Iyer", nil)))

	first, err := cached.ListByType(ctx, models.TypeClan)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Second read must come from the cache, not the store.
	_, ok, err := kv.Get(ctx, "taxonomy:clan")
	require.NoError(t, err)
	assert.True(t, ok, "expected filled cache key after first read")

	second, err := cached.ListByType(ctx, models.TypeClan)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestWriteInvalidatesType(t *testing.T) {
	ctx := context.Background()
	cached, _, kv := newCached(t)

	require.NoError(t, cached.CreateIfValueAvailable(ctx, mustEntry(t, models.TypeClan, "Iyer", nil)))

	entries, err := cached.ListByType(ctx, models.TypeClan)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, cached.CreateIfValueAvailable(ctx, mustEntry(t, models.TypeClan, "Chettiar", nil)))
	assert.Contains(t, kv.dels, "taxonomy:clan")

	entries, err = cached.ListByType(ctx, models.TypeClan)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "list after write must reflect the new entry")
}

func TestDeleteInvalidatesDependentType(t *testing.T) {
	ctx := context.Background()
	cached, _, kv := newCached(t)

	deity := mustEntry(t, models.TypeClanDeity, "Murugan", nil)
	require.NoError(t, cached.CreateIfValueAvailable(ctx, deity))
	require.NoError(t, cached.CreateIfValueAvailable(ctx, mustEntry(t, models.TypeSubClan, "Kanakkan", &deity.ID)))

	// Warm both type keys.
	_, err := cached.ListByType(ctx, models.TypeClanDeity)
	require.NoError(t, err)
	_, err = cached.ListByType(ctx, models.TypeSubClan)
	require.NoError(t, err)

	_, err = cached.Delete(ctx, deity.ID)
	require.NoError(t, err)

	assert.Contains(t, kv.dels, "taxonomy:clan_deity")
	assert.Contains(t, kv.dels, "taxonomy:sub_clan", "detached children make the child type stale")
}
