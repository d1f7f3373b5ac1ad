// Package service orchestrates taxonomy administration and dropdown lookups.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"kinship/internal/platform/metrics"
	"kinship/internal/taxonomy/models"
	"kinship/internal/taxonomy/store"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/sentinel"
	"kinship/pkg/requestcontext"
)

// Service owns taxonomy entry lifecycle and the hierarchical lookups feeding
// dependent dropdowns.
type Service struct {
	entries store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service. Pass the cache-decorated store in production so
// every write flows through the invalidation point.
func New(entries store.Store, opts ...Option) *Service {
	s := &Service{entries: entries, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all entries of a type ordered by value ascending.
func (s *Service) List(ctx context.Context, entryType models.EntryType) ([]*models.Entry, error) {
	if !entryType.Valid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown taxonomy type %q", entryType)
	}
	entries, err := s.entries.ListByType(ctx, entryType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list taxonomy entries")
	}
	return entries, nil
}

// Create inserts a taxonomy entry, enforcing case-insensitive value
// uniqueness per type and parent compatibility.
func (s *Service) Create(ctx context.Context, entryType models.EntryType, value string, parentID *id.EntryID) (*models.Entry, error) {
	entry, err := models.NewEntry(id.NewEntryID(), entryType, value, parentID, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, errMessage(err))
		}
		return nil, err
	}

	if parentID != nil {
		if err := s.checkParent(ctx, entryType, *parentID); err != nil {
			return nil, err
		}
	}

	if err := s.entries.CreateIfValueAvailable(ctx, entry); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "a %s entry with this value already exists", entryType)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create taxonomy entry")
	}

	s.logger.InfoContext(ctx, "taxonomy entry created",
		"entry_id", entry.ID, "type", entry.Type, "request_id", requestcontext.RequestID(ctx))
	s.metrics.IncrementTaxonomyEntries(string(entryType))
	return entry, nil
}

// Update renames an entry, keeping the uniqueness rule.
func (s *Service) Update(ctx context.Context, entryID id.EntryID, value string) (*models.Entry, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "taxonomy value cannot be empty")
	}
	if strings.EqualFold(value, models.OtherValue) {
		return nil, dErrors.New(dErrors.CodeValidation, `"other" is a reserved value`)
	}

	entry, err := s.entries.UpdateValue(ctx, entryID, value)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "taxonomy entry not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "an entry with this value already exists")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update taxonomy entry")
		}
	}
	return entry, nil
}

// Delete removes an entry. Children are detached, never deleted.
func (s *Service) Delete(ctx context.Context, entryID id.EntryID) error {
	entry, err := s.entries.Delete(ctx, entryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "taxonomy entry not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete taxonomy entry")
	}
	s.logger.InfoContext(ctx, "taxonomy entry deleted",
		"entry_id", entry.ID, "type", entry.Type, "request_id", requestcontext.RequestID(ctx))
	return nil
}

// ChildrenOf returns the entries parented by the given entry, ordered by
// value. Used to narrow dependent dropdowns (sub-clan options once a
// clan-deity is chosen).
func (s *Service) ChildrenOf(ctx context.Context, parentID id.EntryID) ([]*models.Entry, error) {
	if _, err := s.entries.FindByID(ctx, parentID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "taxonomy entry not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load taxonomy entry")
	}
	children, err := s.entries.ListByParent(ctx, parentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list taxonomy children")
	}
	return children, nil
}

// Resolve loads an entry by ID, for callers validating stored references.
func (s *Service) Resolve(ctx context.Context, entryID id.EntryID) (*models.Entry, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "taxonomy entry not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load taxonomy entry")
	}
	return entry, nil
}

// checkParent enforces the designated parent type and the depth-one bound:
// a parent must itself be parentless.
func (s *Service) checkParent(ctx context.Context, entryType models.EntryType, parentID id.EntryID) error {
	wantType, ok := entryType.ParentType()
	if !ok {
		return dErrors.Newf(dErrors.CodeValidation, "%s entries take no parent", entryType)
	}
	parent, err := s.entries.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "parent entry not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load parent entry")
	}
	if parent.Type != wantType {
		return dErrors.Newf(dErrors.CodeValidation, "parent of a %s entry must be a %s entry", entryType, wantType)
	}
	if parent.ParentID != nil {
		return dErrors.New(dErrors.CodeValidation, "parent chains may be at most one level deep")
	}
	return nil
}

func errMessage(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
