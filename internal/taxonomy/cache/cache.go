// Package cache provides the read-through dropdown cache in front of the
// taxonomy store, keyed by entry type. Any create, update, or delete touching
// a type invalidates that type's key, so dependent dropdowns never serve a
// stale option list past the write that changed it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"kinship/internal/taxonomy/models"
	"kinship/internal/taxonomy/store"
	id "kinship/pkg/domain"
)

// KV is the narrow key-value contract the cache needs. The redis adapter
// satisfies it in production; tests use an in-process map.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Metrics receives cache hit/miss counts. *metrics.Metrics satisfies it.
type Metrics interface {
	IncrementCacheHit()
	IncrementCacheMiss()
}

// Store decorates a taxonomy store with a read-through list cache. It
// implements store.Store so callers cannot reach the backing store without
// passing the invalidation point.
type Store struct {
	inner   store.Store
	kv      KV
	ttl     time.Duration
	logger  *slog.Logger
	metrics Metrics
	group   singleflight.Group
}

func New(inner store.Store, kv KV, ttl time.Duration, logger *slog.Logger, m Metrics) *Store {
	return &Store{inner: inner, kv: kv, ttl: ttl, logger: logger, metrics: m}
}

func typeKey(entryType models.EntryType) string {
	return "taxonomy:" + string(entryType)
}

func (s *Store) ListByType(ctx context.Context, entryType models.EntryType) ([]*models.Entry, error) {
	key := typeKey(entryType)

	if raw, ok, err := s.kv.Get(ctx, key); err == nil && ok {
		var entries []*models.Entry
		if err := json.Unmarshal([]byte(raw), &entries); err == nil {
			s.countHit()
			return entries, nil
		}
		// Unreadable payloads are dropped and refilled from the store.
		_ = s.kv.Del(ctx, key)
	} else if err != nil {
		s.logger.WarnContext(ctx, "taxonomy cache read failed", "type", entryType, "error", err)
	}
	s.countMiss()

	// Collapse concurrent fills for the same type into one store read.
	v, err, _ := s.group.Do(key, func() (any, error) {
		entries, err := s.inner.ListByType(ctx, entryType)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.kv.Set(ctx, key, string(raw), s.ttl); err != nil {
				s.logger.WarnContext(ctx, "taxonomy cache fill failed", "type", entryType, "error", err)
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	entries, ok := v.([]*models.Entry)
	if !ok {
		return nil, fmt.Errorf("unexpected cache fill result %T", v)
	}
	return entries, nil
}

func (s *Store) CreateIfValueAvailable(ctx context.Context, entry *models.Entry) error {
	if err := s.inner.CreateIfValueAvailable(ctx, entry); err != nil {
		return err
	}
	s.invalidate(ctx, entry.Type)
	return nil
}

func (s *Store) UpdateValue(ctx context.Context, entryID id.EntryID, value string) (*models.Entry, error) {
	entry, err := s.inner.UpdateValue(ctx, entryID, value)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, entry.Type)
	return entry, nil
}

func (s *Store) Delete(ctx context.Context, entryID id.EntryID) (*models.Entry, error) {
	entry, err := s.inner.Delete(ctx, entryID)
	if err != nil {
		return nil, err
	}
	// Deleting a parent detaches children of the dependent type, so that
	// type's cached list is stale too.
	s.invalidate(ctx, entry.Type, childTypesOf(entry.Type)...)
	return entry, nil
}

func (s *Store) FindByID(ctx context.Context, entryID id.EntryID) (*models.Entry, error) {
	return s.inner.FindByID(ctx, entryID)
}

func (s *Store) ListByParent(ctx context.Context, parentID id.EntryID) ([]*models.Entry, error) {
	return s.inner.ListByParent(ctx, parentID)
}

func (s *Store) invalidate(ctx context.Context, entryType models.EntryType, extra ...models.EntryType) {
	keys := []string{typeKey(entryType)}
	for _, t := range extra {
		keys = append(keys, typeKey(t))
	}
	if err := s.kv.Del(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "taxonomy cache invalidation failed", "keys", keys, "error", err)
	}
}

func childTypesOf(parent models.EntryType) []models.EntryType {
	var out []models.EntryType
	for _, t := range []models.EntryType{
		models.TypeClan, models.TypeClanDeity, models.TypeSubClan, models.TypeDegree,
		models.TypeDepartment, models.TypeInstitution, models.TypeCompany, models.TypePosition,
	} {
		if p, ok := t.ParentType(); ok && p == parent {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) countHit() {
	if s.metrics != nil {
		s.metrics.IncrementCacheHit()
	}
}

func (s *Store) countMiss() {
	if s.metrics != nil {
		s.metrics.IncrementCacheMiss()
	}
}
