package models

import (
	"strings"
	"time"

	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
)

// EntryType enumerates the taxonomy families served to dependent dropdowns.
type EntryType string

const (
	TypeClan        EntryType = "clan"
	TypeClanDeity   EntryType = "clan_deity"
	TypeSubClan     EntryType = "sub_clan"
	TypeDegree      EntryType = "degree"
	TypeDepartment  EntryType = "department"
	TypeInstitution EntryType = "institution"
	TypeCompany     EntryType = "company"
	TypePosition    EntryType = "position"
)

// OtherValue is the reserved dropdown sentinel that switches a selection to
// its free-text override. It is never stored as an entry value; the override
// travels in the accompanying *_other field instead.
const OtherValue = "other"

var allTypes = map[EntryType]bool{
	TypeClan:        true,
	TypeClanDeity:   true,
	TypeSubClan:     true,
	TypeDegree:      true,
	TypeDepartment:  true,
	TypeInstitution: true,
	TypeCompany:     true,
	TypePosition:    true,
}

// parentTypes designates the only type an entry of a given type may be
// parented by. Types absent from the table take no parent at all. Parent
// chains stay at most one level deep because every designated parent type is
// itself parentless.
var parentTypes = map[EntryType]EntryType{
	TypeSubClan:    TypeClanDeity,
	TypeDepartment: TypeDegree,
}

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool { return allTypes[t] }

// ParentType returns the designated parent type for t. ok is false when t
// takes no parent.
func (t EntryType) ParentType() (EntryType, bool) {
	p, ok := parentTypes[t]
	return p, ok
}

// ParseEntryType validates a wire-level type string.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if !t.Valid() {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown taxonomy type %q", s)
	}
	return t, nil
}

// Entry is a node in the self-referencing taxonomy.
//
// Invariants:
//   - Value is non-empty, at most 100 characters, unique per type
//     case-insensitively, and never the reserved "other" sentinel
//   - ParentID, when set, references an entry of the designated parent type
//     for Type, and that parent is itself parentless (depth at most one)
//   - Deleting a parent detaches its children (ParentID set to nil) rather
//     than cascading the delete
type Entry struct {
	ID        id.EntryID  `json:"id"`
	Type      EntryType   `json:"type"`
	Value     string      `json:"value"`
	ParentID  *id.EntryID `json:"parent_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewEntry validates invariants and constructs a taxonomy entry. Parent
// compatibility is checked at the service layer where the parent entry can be
// loaded.
func NewEntry(entryID id.EntryID, entryType EntryType, value string, parentID *id.EntryID, now time.Time) (*Entry, error) {
	value = strings.TrimSpace(value)
	if !entryType.Valid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown taxonomy type %q", entryType)
	}
	if value == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "taxonomy value cannot be empty")
	}
	if len(value) > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "taxonomy value must be 100 characters or less")
	}
	if strings.EqualFold(value, OtherValue) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, `"other" is a reserved value`)
	}
	if parentID != nil {
		if _, ok := entryType.ParentType(); !ok {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "%s entries take no parent", entryType)
		}
	}
	return &Entry{
		ID:        entryID,
		Type:      entryType,
		Value:     value,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Option is the {id, value} pair served to dropdowns.
type Option struct {
	ID    id.EntryID `json:"id"`
	Value string     `json:"value"`
}
