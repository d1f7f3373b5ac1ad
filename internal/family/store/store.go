// Package store persists the family graph: the member row plus one row per
// (member, slot) for spouse, children, and ancestor records. Implementations
// return sentinel errors; services translate them.
package store

import (
	"context"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
)

// Store is the family graph persistence contract.
//
// UpdateMember is a compare-and-swap: the write succeeds only when the stored
// row version equals member.Version, and bumps it by one. This is the guard
// against lost updates from concurrent requests for the same member (two
// browser tabs); a mismatch surfaces as sentinel.ErrVersionMismatch.
//
// Section writes (spouse, children, ancestors) participate in the SQL
// transaction carried by ctx when the profile state machine advances, so the
// step pointer and its section data commit or roll back together.
type Store interface {
	CreateMember(ctx context.Context, member *models.Member) error
	FindMember(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	UpdateMember(ctx context.Context, member *models.Member) error

	FindSpouse(ctx context.Context, memberID id.MemberID) (*models.Spouse, error)
	SaveSpouse(ctx context.Context, spouse *models.Spouse) error
	DeleteSpouse(ctx context.Context, memberID id.MemberID) error

	ListChildren(ctx context.Context, memberID id.MemberID) ([]*models.Child, error)
	ReplaceChildren(ctx context.Context, memberID id.MemberID, children []*models.Child) error

	ListAncestors(ctx context.Context, memberID id.MemberID, lineage models.Lineage) ([]*models.AncestorSlot, error)
	SaveAncestors(ctx context.Context, memberID id.MemberID, lineage models.Lineage, slots []*models.AncestorSlot) error
}
