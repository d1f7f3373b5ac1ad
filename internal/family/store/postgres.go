package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"kinship/internal/family/models"
	taxonomy "kinship/internal/taxonomy/models"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/sentinel"
	txcontext "kinship/pkg/platform/tx"
)

// Row type discriminators for the family_members table. Every slot entity is
// one row keyed by (member_id, family_member_type, family_member_subtype,
// family_member_index).
const (
	rowTypeSpouse         = "spouse"
	rowTypeChild          = "child"
	rowTypeMemberAncestor = "member_ancestor"
	rowTypeSpouseAncestor = "spouse_ancestor"
)

// Postgres persists the family graph in PostgreSQL.
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

const memberColumns = `id, name, gender, date_of_birth, marital_status, has_children,
	country_code, phone, email, address_line, city, state, pincode,
	profile_step, intro_completed, questions_completed, version, created_at, updated_at`

func (s *Postgres) CreateMember(ctx context.Context, member *models.Member) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		uuid.UUID(member.ID), member.Name, string(member.Gender), member.DateOfBirth,
		string(member.MaritalStatus), member.HasChildren,
		member.CountryCode, member.Phone, member.Email,
		member.AddressLine, member.City, member.State, member.Pincode,
		string(member.Step), member.IntroCompleted, member.QuestionsCompleted,
		member.Version, member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (s *Postgres) FindMember(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT `+memberColumns+` FROM members WHERE id = $1`,
		uuid.UUID(memberID),
	)
	return scanMember(row)
}

// UpdateMember is a compare-and-swap on the row version. Zero rows affected
// means either the member vanished or another request won the write; the two
// cases are told apart with a follow-up existence lookup.
func (s *Postgres) UpdateMember(ctx context.Context, member *models.Member) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE members SET
			name = $2, gender = $3, date_of_birth = $4, marital_status = $5,
			has_children = $6, country_code = $7, phone = $8, email = $9,
			address_line = $10, city = $11, state = $12, pincode = $13,
			profile_step = $14, intro_completed = $15, questions_completed = $16,
			version = version + 1, updated_at = $17
		WHERE id = $1 AND version = $18`,
		uuid.UUID(member.ID), member.Name, string(member.Gender), member.DateOfBirth,
		string(member.MaritalStatus), member.HasChildren,
		member.CountryCode, member.Phone, member.Email,
		member.AddressLine, member.City, member.State, member.Pincode,
		string(member.Step), member.IntroCompleted, member.QuestionsCompleted,
		member.UpdatedAt, member.Version,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member rows affected: %w", err)
	}
	if affected == 0 {
		if _, lookupErr := s.FindMember(ctx, member.ID); errors.Is(lookupErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrVersionMismatch
	}
	member.Version++
	return nil
}

func (s *Postgres) FindSpouse(ctx context.Context, memberID id.MemberID) (*models.Spouse, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT member_id, name, gender, gender_explicit, date_of_birth,
			country_code, phone, email, created_at, updated_at
		FROM family_members
		WHERE member_id = $1 AND family_member_type = $2`,
		uuid.UUID(memberID), rowTypeSpouse,
	)
	var (
		spouse    models.Spouse
		rawID     uuid.UUID
		rawGender string
	)
	err := row.Scan(&rawID, &spouse.Name, &rawGender, &spouse.GenderExplicit, &spouse.DateOfBirth,
		&spouse.CountryCode, &spouse.Phone, &spouse.Email, &spouse.CreatedAt, &spouse.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan spouse: %w", err)
	}
	spouse.MemberID = id.MemberID(rawID)
	spouse.Gender = models.Gender(rawGender)
	return &spouse, nil
}

func (s *Postgres) SaveSpouse(ctx context.Context, spouse *models.Spouse) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO family_members (
			member_id, family_member_type, family_member_subtype, family_member_index,
			name, gender, gender_explicit, date_of_birth, country_code, phone, email,
			created_at, updated_at
		) VALUES ($1, $2, '', 0, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (member_id, family_member_type, family_member_subtype, family_member_index)
		DO UPDATE SET
			name = EXCLUDED.name, gender = EXCLUDED.gender,
			gender_explicit = EXCLUDED.gender_explicit,
			date_of_birth = EXCLUDED.date_of_birth,
			country_code = EXCLUDED.country_code, phone = EXCLUDED.phone,
			email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`,
		uuid.UUID(spouse.MemberID), rowTypeSpouse,
		spouse.Name, string(spouse.Gender), spouse.GenderExplicit, spouse.DateOfBirth,
		spouse.CountryCode, spouse.Phone, spouse.Email,
		spouse.CreatedAt, spouse.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert spouse: %w", err)
	}
	return nil
}

func (s *Postgres) DeleteSpouse(ctx context.Context, memberID id.MemberID) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		DELETE FROM family_members
		WHERE member_id = $1 AND family_member_type IN ($2, $3)`,
		uuid.UUID(memberID), rowTypeSpouse, rowTypeSpouseAncestor,
	)
	if err != nil {
		return fmt.Errorf("delete spouse rows: %w", err)
	}
	return nil
}

func (s *Postgres) ListChildren(ctx context.Context, memberID id.MemberID) ([]*models.Child, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT child_id, member_id, family_member_index, name, gender, date_of_birth,
			relationship, created_at, updated_at
		FROM family_members
		WHERE member_id = $1 AND family_member_type = $2
		ORDER BY family_member_index ASC`,
		uuid.UUID(memberID), rowTypeChild,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var out []*models.Child
	for rows.Next() {
		var (
			child       models.Child
			rawChildID  uuid.UUID
			rawMemberID uuid.UUID
			rawGender   string
			rawRel      string
		)
		if err := rows.Scan(&rawChildID, &rawMemberID, &child.Index, &child.Name, &rawGender,
			&child.DateOfBirth, &rawRel, &child.CreatedAt, &child.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		child.ID = id.ChildID(rawChildID)
		child.MemberID = id.MemberID(rawMemberID)
		child.Gender = models.Gender(rawGender)
		child.Relationship = models.Relationship(rawRel)
		out = append(out, &child)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children: %w", err)
	}
	return out, nil
}

func (s *Postgres) ReplaceChildren(ctx context.Context, memberID id.MemberID, children []*models.Child) error {
	execer := s.execer(ctx)
	if _, err := execer.ExecContext(ctx, `
		DELETE FROM family_members WHERE member_id = $1 AND family_member_type = $2`,
		uuid.UUID(memberID), rowTypeChild,
	); err != nil {
		return fmt.Errorf("clear children: %w", err)
	}
	for _, child := range children {
		if _, err := execer.ExecContext(ctx, `
			INSERT INTO family_members (
				member_id, family_member_type, family_member_subtype, family_member_index,
				child_id, name, gender, date_of_birth, relationship, created_at, updated_at
			) VALUES ($1, $2, '', $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.UUID(memberID), rowTypeChild, child.Index,
			uuid.UUID(child.ID), child.Name, string(child.Gender), child.DateOfBirth,
			string(child.Relationship), child.CreatedAt, child.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert child %d: %w", child.Index, err)
		}
	}
	return nil
}

func lineageRowType(lineage models.Lineage) string {
	if lineage == models.LineageSpouse {
		return rowTypeSpouseAncestor
	}
	return rowTypeMemberAncestor
}

func (s *Postgres) ListAncestors(ctx context.Context, memberID id.MemberID, lineage models.Lineage) ([]*models.AncestorSlot, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT member_id, family_member_subtype, name, native_place, residence_place,
			same_as_native, vital_status,
			kulam, kulam_other, kuladeivam, kuladeivam_other, kootam, kootam_other,
			created_at, updated_at
		FROM family_members
		WHERE member_id = $1 AND family_member_type = $2`,
		uuid.UUID(memberID), lineageRowType(lineage),
	)
	if err != nil {
		return nil, fmt.Errorf("list ancestors: %w", err)
	}
	defer rows.Close()

	byRelation := make(map[models.Relation]*models.AncestorSlot)
	for rows.Next() {
		var (
			slot        models.AncestorSlot
			rawMemberID uuid.UUID
			rawRelation string
			rawStatus   string
			refs        [6]string
		)
		if err := rows.Scan(&rawMemberID, &rawRelation, &slot.Name, &slot.NativePlace,
			&slot.ResidencePlace, &slot.SameAsNative, &rawStatus,
			&refs[0], &refs[1], &refs[2], &refs[3], &refs[4], &refs[5],
			&slot.CreatedAt, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ancestor slot: %w", err)
		}
		slot.MemberID = id.MemberID(rawMemberID)
		slot.Lineage = lineage
		slot.Relation = models.Relation(rawRelation)
		slot.Status = models.VitalStatus(rawStatus)
		slot.Clan = decodeRef(refs[0], refs[1])
		slot.ClanDeity = decodeRef(refs[2], refs[3])
		slot.SubClan = decodeRef(refs[4], refs[5])
		byRelation[slot.Relation] = &slot
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ancestors: %w", err)
	}

	// Display order follows the relation order, not row order.
	var out []*models.AncestorSlot
	for _, relation := range models.Relations {
		if slot, ok := byRelation[relation]; ok {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *Postgres) SaveAncestors(ctx context.Context, memberID id.MemberID, lineage models.Lineage, slots []*models.AncestorSlot) error {
	execer := s.execer(ctx)
	rowType := lineageRowType(lineage)
	for _, slot := range slots {
		if _, err := execer.ExecContext(ctx, `
			INSERT INTO family_members (
				member_id, family_member_type, family_member_subtype, family_member_index,
				name, native_place, residence_place, same_as_native, vital_status,
				kulam, kulam_other, kuladeivam, kuladeivam_other, kootam, kootam_other,
				created_at, updated_at
			) VALUES ($1, $2, $3, 0, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (member_id, family_member_type, family_member_subtype, family_member_index)
			DO UPDATE SET
				name = EXCLUDED.name, native_place = EXCLUDED.native_place,
				residence_place = EXCLUDED.residence_place,
				same_as_native = EXCLUDED.same_as_native,
				vital_status = EXCLUDED.vital_status,
				kulam = EXCLUDED.kulam, kulam_other = EXCLUDED.kulam_other,
				kuladeivam = EXCLUDED.kuladeivam, kuladeivam_other = EXCLUDED.kuladeivam_other,
				kootam = EXCLUDED.kootam, kootam_other = EXCLUDED.kootam_other,
				updated_at = EXCLUDED.updated_at`,
			uuid.UUID(memberID), rowType, string(slot.Relation),
			slot.Name, slot.NativePlace, slot.ResidencePlace, slot.SameAsNative, string(slot.Status),
			slot.Clan.Value(), slot.Clan.Override(),
			slot.ClanDeity.Value(), slot.ClanDeity.Override(),
			slot.SubClan.Value(), slot.SubClan.Override(),
			slot.CreatedAt, slot.UpdatedAt,
		); err != nil {
			return fmt.Errorf("upsert ancestor %s: %w", slot.Relation, err)
		}
	}
	return nil
}

func scanMember(row *sql.Row) (*models.Member, error) {
	var (
		member     models.Member
		rawID      uuid.UUID
		rawGender  string
		rawMarital string
		rawStep    string
	)
	err := row.Scan(&rawID, &member.Name, &rawGender, &member.DateOfBirth, &rawMarital,
		&member.HasChildren, &member.CountryCode, &member.Phone, &member.Email,
		&member.AddressLine, &member.City, &member.State, &member.Pincode,
		&rawStep, &member.IntroCompleted, &member.QuestionsCompleted,
		&member.Version, &member.CreatedAt, &member.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}
	member.ID = id.MemberID(rawID)
	member.Gender = models.Gender(rawGender)
	member.MaritalStatus = models.MaritalStatus(rawMarital)
	member.Step = models.Step(rawStep)
	return &member, nil
}

// decodeRef rebuilds the tagged taxonomy value from its stored column pair.
// Stored values were validated on the way in, so a parse failure degrades to
// an empty selection rather than failing the read.
func decodeRef(value, other string) taxonomy.Ref {
	ref, err := taxonomy.ParseRef(value, other)
	if err != nil {
		return taxonomy.Ref{}
	}
	return ref
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
