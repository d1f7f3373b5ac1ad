package models

import (
	"time"

	id "kinship/pkg/domain"
)

// Spouse is at most one per member, present only while the member's marital
// status implies a partner. Changing the status to unmarried deletes it.
//
// GenderExplicit distinguishes a user-entered gender from one derived off the
// member's gender. Derivation never overwrites an explicit value and applies
// at most once per member-gender write, so repeating the same write is a
// no-op (idempotent).
type Spouse struct {
	MemberID       id.MemberID `json:"member_id"`
	Name           string      `json:"name"`
	Gender         Gender      `json:"gender"`
	GenderExplicit bool        `json:"-"`
	DateOfBirth    *time.Time  `json:"date_of_birth,omitempty"`
	CountryCode    string      `json:"country_code"`
	Phone          string      `json:"phone"`
	Email          string      `json:"email"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// DeriveGenderFrom sets the spouse gender to the logical opposite of the
// member's, unless the user already picked one. Member gender "other"
// derives nothing.
func (s *Spouse) DeriveGenderFrom(memberGender Gender) {
	if s.GenderExplicit {
		return
	}
	if opposite, ok := memberGender.Opposite(); ok {
		s.Gender = opposite
	}
}

// SetGender records a user-supplied gender, pinning it against derivation.
func (s *Spouse) SetGender(g Gender) {
	s.Gender = g
	s.GenderExplicit = true
}
