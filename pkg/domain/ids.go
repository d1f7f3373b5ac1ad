// Package domain defines typed identifiers shared across the module.
//
// Wrapping uuid.UUID in distinct named types prevents accidentally passing a
// taxonomy entry ID where a member ID is expected. The wrappers marshal as
// plain UUID strings on the wire.
package domain

import "github.com/google/uuid"

// MemberID identifies a registered member.
type MemberID uuid.UUID

// EntryID identifies a taxonomy entry.
type EntryID uuid.UUID

// ChildID identifies a child record beneath a member.
type ChildID uuid.UUID

func NewMemberID() MemberID { return MemberID(uuid.New()) }
func NewEntryID() EntryID   { return EntryID(uuid.New()) }
func NewChildID() ChildID   { return ChildID(uuid.New()) }

func (id MemberID) String() string { return uuid.UUID(id).String() }
func (id EntryID) String() string  { return uuid.UUID(id).String() }
func (id ChildID) String() string  { return uuid.UUID(id).String() }

func (id MemberID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ChildID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }

// ParseMemberID parses a member ID from its string form.
func ParseMemberID(s string) (MemberID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return MemberID{}, err
	}
	return MemberID(u), nil
}

// ParseEntryID parses a taxonomy entry ID from its string form.
func ParseEntryID(s string) (EntryID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return EntryID{}, err
	}
	return EntryID(u), nil
}

// ParseChildID parses a child ID from its string form.
func ParseChildID(s string) (ChildID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ChildID{}, err
	}
	return ChildID(u), nil
}

func (id MemberID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id EntryID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id ChildID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *MemberID) UnmarshalText(b []byte) error {
	parsed, err := ParseMemberID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *EntryID) UnmarshalText(b []byte) error {
	parsed, err := ParseEntryID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ChildID) UnmarshalText(b []byte) error {
	parsed, err := ParseChildID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
