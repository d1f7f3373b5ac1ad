package store

import (
	"context"
	"sort"
	"sync"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/sentinel"
)

type lineageKey struct {
	memberID id.MemberID
	lineage  models.Lineage
}

// InMemory is a mutex-guarded store for tests and local development. Writes
// are applied atomically under the lock, standing in for the SQL transaction
// production wiring relies on.
type InMemory struct {
	mu        sync.RWMutex
	members   map[id.MemberID]*models.Member
	spouses   map[id.MemberID]*models.Spouse
	children  map[id.MemberID][]*models.Child
	ancestors map[lineageKey]map[models.Relation]*models.AncestorSlot
}

func NewInMemory() *InMemory {
	return &InMemory{
		members:   make(map[id.MemberID]*models.Member),
		spouses:   make(map[id.MemberID]*models.Spouse),
		children:  make(map[id.MemberID][]*models.Child),
		ancestors: make(map[lineageKey]map[models.Relation]*models.AncestorSlot),
	}
}

func (s *InMemory) CreateMember(_ context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[member.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *member
	s.members[member.ID] = &cp
	return nil
}

func (s *InMemory) FindMember(_ context.Context, memberID id.MemberID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.members[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *member
	return &cp, nil
}

func (s *InMemory) UpdateMember(_ context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.members[member.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != member.Version {
		return sentinel.ErrVersionMismatch
	}
	cp := *member
	cp.Version++
	s.members[member.ID] = &cp
	member.Version = cp.Version
	return nil
}

func (s *InMemory) FindSpouse(_ context.Context, memberID id.MemberID) (*models.Spouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spouse, ok := s.spouses[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *spouse
	return &cp, nil
}

func (s *InMemory) SaveSpouse(_ context.Context, spouse *models.Spouse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *spouse
	s.spouses[spouse.MemberID] = &cp
	return nil
}

func (s *InMemory) DeleteSpouse(_ context.Context, memberID id.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.spouses, memberID)
	// Spouse-side ancestry goes with the spouse.
	delete(s.ancestors, lineageKey{memberID: memberID, lineage: models.LineageSpouse})
	return nil
}

func (s *InMemory) ListChildren(_ context.Context, memberID id.MemberID) ([]*models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.children[memberID]
	out := make([]*models.Child, 0, len(stored))
	for _, child := range stored {
		cp := *child
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (s *InMemory) ReplaceChildren(_ context.Context, memberID id.MemberID, children []*models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]*models.Child, 0, len(children))
	for _, child := range children {
		cp := *child
		replacement = append(replacement, &cp)
	}
	s.children[memberID] = replacement
	return nil
}

func (s *InMemory) ListAncestors(_ context.Context, memberID id.MemberID, lineage models.Lineage) ([]*models.AncestorSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.ancestors[lineageKey{memberID: memberID, lineage: lineage}]
	var out []*models.AncestorSlot
	for _, relation := range models.Relations {
		if slot, ok := stored[relation]; ok {
			cp := *slot
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) SaveAncestors(_ context.Context, memberID id.MemberID, lineage models.Lineage, slots []*models.AncestorSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lineageKey{memberID: memberID, lineage: lineage}
	stored, ok := s.ancestors[key]
	if !ok {
		stored = make(map[models.Relation]*models.AncestorSlot)
		s.ancestors[key] = stored
	}
	for _, slot := range slots {
		cp := *slot
		stored[slot.Relation] = &cp
	}
	return nil
}
