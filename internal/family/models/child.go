package models

import (
	"time"

	id "kinship/pkg/domain"
)

// Relationship of a child to the member. Must be consistent with the child's
// gender: son with male, daughter with female.
type Relationship string

const (
	RelationshipSon      Relationship = "son"
	RelationshipDaughter Relationship = "daughter"
)

func (r Relationship) Valid() bool {
	return r == RelationshipSon || r == RelationshipDaughter
}

// MatchesGender reports relationship/gender consistency.
func (r Relationship) MatchesGender(g Gender) bool {
	switch r {
	case RelationshipSon:
		return g == GenderMale
	case RelationshipDaughter:
		return g == GenderFemale
	}
	return false
}

// Child is one of zero or more children beneath a member. Index preserves
// insertion order for display; there is no other ordering invariant.
type Child struct {
	ID           id.ChildID   `json:"id"`
	MemberID     id.MemberID  `json:"member_id"`
	Index        int          `json:"index"`
	Name         string       `json:"name"`
	Gender       Gender       `json:"gender"`
	DateOfBirth  *time.Time   `json:"date_of_birth,omitempty"`
	Relationship Relationship `json:"relationship"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
