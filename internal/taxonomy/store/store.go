// Package store persists taxonomy entries. Implementations return sentinel
// errors; the service layer translates them into coded domain errors.
package store

import (
	"context"

	"kinship/internal/taxonomy/models"
	id "kinship/pkg/domain"
)

// Store is the taxonomy persistence contract.
//
// CreateIfValueAvailable must perform the duplicate check and the insert
// atomically (unique constraint, not read-then-write); value uniqueness is
// case-insensitive within a type.
type Store interface {
	CreateIfValueAvailable(ctx context.Context, entry *models.Entry) error
	FindByID(ctx context.Context, entryID id.EntryID) (*models.Entry, error)
	ListByType(ctx context.Context, entryType models.EntryType) ([]*models.Entry, error)
	ListByParent(ctx context.Context, parentID id.EntryID) ([]*models.Entry, error)
	UpdateValue(ctx context.Context, entryID id.EntryID, value string) (*models.Entry, error)
	// Delete removes the entry and detaches its children (parent set to nil).
	Delete(ctx context.Context, entryID id.EntryID) (*models.Entry, error)
}
