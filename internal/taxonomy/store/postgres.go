package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"kinship/internal/taxonomy/models"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/sentinel"
	txcontext "kinship/pkg/platform/tx"
	"kinship/pkg/requestcontext"
)

// Postgres persists taxonomy entries in PostgreSQL. The unique index on
// (entry_type, lower(value)) makes the duplicate check and insert atomic, and
// the parent foreign key is declared ON DELETE SET NULL so deleting a parent
// detaches children at the database level.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if sqlTx, ok := txcontext.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

const entryColumns = `id, entry_type, value, parent_id, created_at, updated_at`

func (s *Postgres) CreateIfValueAvailable(ctx context.Context, entry *models.Entry) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO taxonomy_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(entry.ID), string(entry.Type), entry.Value, parentUUID(entry.ParentID),
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert taxonomy entry: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, entryID id.EntryID) (*models.Entry, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM taxonomy_entries WHERE id = $1`,
		uuid.UUID(entryID),
	)
	return scanEntry(row)
}

func (s *Postgres) ListByType(ctx context.Context, entryType models.EntryType) ([]*models.Entry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+entryColumns+` FROM taxonomy_entries
		WHERE entry_type = $1
		ORDER BY lower(value) ASC`,
		string(entryType),
	)
	if err != nil {
		return nil, fmt.Errorf("list taxonomy entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Postgres) ListByParent(ctx context.Context, parentID id.EntryID) ([]*models.Entry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+entryColumns+` FROM taxonomy_entries
		WHERE parent_id = $1
		ORDER BY lower(value) ASC`,
		uuid.UUID(parentID),
	)
	if err != nil {
		return nil, fmt.Errorf("list taxonomy children: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Postgres) UpdateValue(ctx context.Context, entryID id.EntryID, value string) (*models.Entry, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		UPDATE taxonomy_entries
		SET value = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+entryColumns,
		uuid.UUID(entryID), value, requestcontext.Now(ctx),
	)
	entry, err := scanEntry(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, err
	}
	return entry, nil
}

func (s *Postgres) Delete(ctx context.Context, entryID id.EntryID) (*models.Entry, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		DELETE FROM taxonomy_entries WHERE id = $1
		RETURNING `+entryColumns,
		uuid.UUID(entryID),
	)
	return scanEntry(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		entry     models.Entry
		rawID     uuid.UUID
		rawType   string
		rawParent uuid.NullUUID
	)
	err := row.Scan(&rawID, &rawType, &entry.Value, &rawParent, &entry.CreatedAt, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan taxonomy entry: %w", err)
	}
	entry.ID = id.EntryID(rawID)
	entry.Type = models.EntryType(rawType)
	if rawParent.Valid {
		parentID := id.EntryID(rawParent.UUID)
		entry.ParentID = &parentID
	}
	return &entry, nil
}

func scanEntries(rows *sql.Rows) ([]*models.Entry, error) {
	var out []*models.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate taxonomy entries: %w", err)
	}
	return out, nil
}

func parentUUID(parentID *id.EntryID) uuid.NullUUID {
	if parentID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*parentID), Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
