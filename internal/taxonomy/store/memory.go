package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kinship/internal/taxonomy/models"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store for tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	entries map[id.EntryID]*models.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[id.EntryID]*models.Entry)}
}

func (s *InMemory) CreateIfValueAvailable(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries {
		if existing.Type == entry.Type && strings.EqualFold(existing.Value, entry.Value) {
			return sentinel.ErrConflict
		}
	}
	cp := *entry
	s.entries[entry.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, entryID id.EntryID) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (s *InMemory) ListByType(_ context.Context, entryType models.EntryType) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Entry
	for _, entry := range s.entries {
		if entry.Type == entryType {
			cp := *entry
			out = append(out, &cp)
		}
	}
	sortByValue(out)
	return out, nil
}

func (s *InMemory) ListByParent(_ context.Context, parentID id.EntryID) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Entry
	for _, entry := range s.entries {
		if entry.ParentID != nil && *entry.ParentID == parentID {
			cp := *entry
			out = append(out, &cp)
		}
	}
	sortByValue(out)
	return out, nil
}

func (s *InMemory) UpdateValue(_ context.Context, entryID id.EntryID, value string) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	for _, existing := range s.entries {
		if existing.ID != entryID && existing.Type == entry.Type && strings.EqualFold(existing.Value, value) {
			return nil, sentinel.ErrConflict
		}
	}
	entry.Value = value
	entry.UpdatedAt = time.Now()
	cp := *entry
	return &cp, nil
}

func (s *InMemory) Delete(_ context.Context, entryID id.EntryID) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	// Detach children rather than cascading the delete.
	for _, child := range s.entries {
		if child.ParentID != nil && *child.ParentID == entryID {
			child.ParentID = nil
		}
	}
	delete(s.entries, entryID)
	cp := *entry
	return &cp, nil
}

func sortByValue(entries []*models.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Value) < strings.ToLower(entries[j].Value)
	})
}
