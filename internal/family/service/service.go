// Package service owns the family graph: the member record and its spouse,
// children, and ancestor slots, including the derivations that run on every
// write (spouse gender, residence mirroring).
package service

import (
	"context"
	"errors"
	"log/slog"

	"kinship/internal/family/models"
	"kinship/internal/family/store"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/sentinel"
	"kinship/pkg/requestcontext"
)

// Service is the FamilyGraph write and read surface. Validation lives in the
// rules package; the profile service invokes it before any Save here is
// allowed to finalize a section.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreateMember bootstraps the member row on first authenticated visit.
// A concurrent first visit from a second tab loses the insert race and reads
// the winner's row instead.
func (s *Service) GetOrCreateMember(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	member, err := s.store.FindMember(ctx, memberID)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
	}

	member = models.NewMember(memberID, requestcontext.Now(ctx))
	if err := s.store.CreateMember(ctx, member); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return s.Member(ctx, memberID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create member")
	}
	s.logger.InfoContext(ctx, "member created", "member_id", member.ID)
	return member, nil
}

// Member loads the member row.
func (s *Service) Member(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	member, err := s.store.FindMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
	}
	return member, nil
}

// SaveMember persists the member row and runs the cross-entity derivations
// that hang off member attributes:
//
//   - spouse gender follows the member's (never overwriting an explicit pick)
//   - a marital status change to unmarried deletes the spouse record and its
//     lineage ancestors
//
// The write is a compare-and-swap on member.Version; a stale version from a
// second tab surfaces as a conflict.
func (s *Service) SaveMember(ctx context.Context, member *models.Member) error {
	member.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.UpdateMember(ctx, member); err != nil {
		return translateMemberWrite(err)
	}

	if !member.MaritalStatus.ImpliesSpouse() {
		if err := s.store.DeleteSpouse(ctx, member.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove spouse record")
		}
		return nil
	}

	spouse, err := s.store.FindSpouse(ctx, member.ID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load spouse")
	}
	before := spouse.Gender
	spouse.DeriveGenderFrom(member.Gender)
	if spouse.Gender == before {
		return nil
	}
	spouse.UpdatedAt = member.UpdatedAt
	if err := s.store.SaveSpouse(ctx, spouse); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save spouse")
	}
	return nil
}

// OpenSpouse returns the member's spouse record, creating an empty one with a
// derived gender when the section is opened for the first time.
func (s *Service) OpenSpouse(ctx context.Context, member *models.Member) (*models.Spouse, error) {
	if !member.MaritalStatus.ImpliesSpouse() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "marital status does not imply a spouse")
	}
	spouse, err := s.store.FindSpouse(ctx, member.ID)
	if err == nil {
		return spouse, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load spouse")
	}

	now := requestcontext.Now(ctx)
	spouse = &models.Spouse{MemberID: member.ID, CreatedAt: now, UpdatedAt: now}
	spouse.DeriveGenderFrom(member.Gender)
	if err := s.store.SaveSpouse(ctx, spouse); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create spouse")
	}
	return spouse, nil
}

// SaveSpouse persists user-entered spouse details. An incoming gender is an
// explicit pick and is pinned against future derivation.
func (s *Service) SaveSpouse(ctx context.Context, member *models.Member, incoming *models.Spouse) (*models.Spouse, error) {
	spouse, err := s.OpenSpouse(ctx, member)
	if err != nil {
		return nil, err
	}
	spouse.Name = incoming.Name
	// A submitted gender that differs from the stored one is a user pick and
	// pins the field against derivation. Echoing back the derived value is
	// not a pick.
	if incoming.Gender != "" && incoming.Gender != spouse.Gender {
		spouse.SetGender(incoming.Gender)
	}
	spouse.DateOfBirth = incoming.DateOfBirth
	spouse.CountryCode = incoming.CountryCode
	spouse.Phone = incoming.Phone
	spouse.Email = incoming.Email
	spouse.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.SaveSpouse(ctx, spouse); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save spouse")
	}
	return spouse, nil
}

// Spouse loads the spouse record without creating one.
func (s *Service) Spouse(ctx context.Context, memberID id.MemberID) (*models.Spouse, error) {
	spouse, err := s.store.FindSpouse(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "spouse not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load spouse")
	}
	return spouse, nil
}

// Children lists the member's children in insertion order.
func (s *Service) Children(ctx context.Context, memberID id.MemberID) ([]*models.Child, error) {
	children, err := s.store.ListChildren(ctx, memberID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list children")
	}
	return children, nil
}

// SaveChildren replaces the member's children with the submitted set,
// reindexing by submission order. Existing child IDs are preserved when the
// caller echoes them back; new rows get fresh IDs.
func (s *Service) SaveChildren(ctx context.Context, memberID id.MemberID, children []*models.Child) ([]*models.Child, error) {
	now := requestcontext.Now(ctx)
	for i, child := range children {
		child.MemberID = memberID
		child.Index = i
		if child.ID.IsZero() {
			child.ID = id.NewChildID()
			child.CreatedAt = now
		}
		child.UpdatedAt = now
	}
	if err := s.store.ReplaceChildren(ctx, memberID, children); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save children")
	}
	return children, nil
}

// Ancestors lists one lineage side's slots in display order.
func (s *Service) Ancestors(ctx context.Context, memberID id.MemberID, lineage models.Lineage) ([]*models.AncestorSlot, error) {
	slots, err := s.store.ListAncestors(ctx, memberID, lineage)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ancestors")
	}
	return slots, nil
}

// SaveAncestors persists one lineage side's slots, applying the write-time
// derivations (residence mirroring, clearing a status without a name).
func (s *Service) SaveAncestors(ctx context.Context, memberID id.MemberID, lineage models.Lineage, slots []*models.AncestorSlot) ([]*models.AncestorSlot, error) {
	if !lineage.Valid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown lineage %q", lineage)
	}
	now := requestcontext.Now(ctx)
	for _, slot := range slots {
		if !slot.Relation.Valid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown ancestor relation %q", slot.Relation)
		}
		slot.MemberID = memberID
		slot.Lineage = lineage
		slot.Normalize()
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		slot.UpdatedAt = now
	}
	if err := s.store.SaveAncestors(ctx, memberID, lineage, slots); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save ancestors")
	}
	return slots, nil
}

func translateMemberWrite(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrVersionMismatch):
		return dErrors.New(dErrors.CodeConflict, "profile was modified by another request, reload and retry")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "member not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save member")
	}
}
