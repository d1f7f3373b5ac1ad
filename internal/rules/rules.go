// Package rules is the validation layer gating section writes. Each section
// validator returns every violation it finds so the caller can report them in
// a single round trip.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"kinship/internal/family/models"
	taxonomy "kinship/internal/taxonomy/models"
	dErrors "kinship/pkg/domain-errors"
)

// Reason strings surfaced verbatim in field errors.
const (
	ReasonRequired            = "required"
	ReasonInvalidValue        = "invalid_value"
	ReasonUnderage            = "must_be_18_or_older"
	ReasonInvalidPhone        = "must_be_exactly_10_digits"
	ReasonInvalidEmail        = "invalid_email"
	ReasonInvalidRelationship = "invalid_relationship"
	ReasonStatusRequired      = "status_required"
	ReasonOverrideTextMissing = "override_text_required"
	ReasonUnknownEntry        = "unknown_taxonomy_entry"
	ReasonWrongEntryType      = "wrong_taxonomy_type"
)

const adultAge = 18

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// MemberDetails validates the member's own details section. The age check is
// evaluated against the supplied request time so results are reproducible.
func MemberDetails(member *models.Member, now time.Time) []dErrors.FieldError {
	var errs []dErrors.FieldError

	if strings.TrimSpace(member.Name) == "" {
		errs = append(errs, dErrors.FieldError{Field: "name", Reason: ReasonRequired})
	}
	if !member.Gender.Valid() {
		errs = append(errs, dErrors.FieldError{Field: "gender", Reason: ReasonRequired})
	}
	if !member.MaritalStatus.Valid() {
		errs = append(errs, dErrors.FieldError{Field: "marital_status", Reason: ReasonRequired})
	}
	switch {
	case member.DateOfBirth == nil:
		errs = append(errs, dErrors.FieldError{Field: "date_of_birth", Reason: ReasonRequired})
	case ageAt(*member.DateOfBirth, now) < adultAge:
		errs = append(errs, dErrors.FieldError{Field: "date_of_birth", Reason: ReasonUnderage})
	}
	errs = append(errs, phoneErrors("", member.CountryCode, member.Phone, true)...)
	if member.Email != "" && !emailPattern.MatchString(member.Email) {
		errs = append(errs, dErrors.FieldError{Field: "email", Reason: ReasonInvalidEmail})
	}
	for _, address := range []struct {
		field string
		value string
	}{
		{"address_line", member.AddressLine},
		{"city", member.City},
		{"state", member.State},
		{"pincode", member.Pincode},
	} {
		if strings.TrimSpace(address.value) == "" {
			errs = append(errs, dErrors.FieldError{Field: address.field, Reason: ReasonRequired})
		}
	}
	return errs
}

// SpouseDetails requires name and gender; the contact fields are optional but
// format-checked when present.
func SpouseDetails(spouse *models.Spouse) []dErrors.FieldError {
	var errs []dErrors.FieldError

	if strings.TrimSpace(spouse.Name) == "" {
		errs = append(errs, dErrors.FieldError{Field: "spouse_name", Reason: ReasonRequired})
	}
	if !spouse.Gender.Valid() {
		errs = append(errs, dErrors.FieldError{Field: "spouse_gender", Reason: ReasonRequired})
	}
	if spouse.Phone != "" || spouse.CountryCode != "" {
		errs = append(errs, phoneErrors("spouse_", spouse.CountryCode, spouse.Phone, false)...)
	}
	if spouse.Email != "" && !emailPattern.MatchString(spouse.Email) {
		errs = append(errs, dErrors.FieldError{Field: "spouse_email", Reason: ReasonInvalidEmail})
	}
	return errs
}

// ChildrenDetails validates every child and reports violations with indexed
// field names so the caller can attach them to the right row.
func ChildrenDetails(children []*models.Child) []dErrors.FieldError {
	var errs []dErrors.FieldError
	for i, child := range children {
		prefix := fmt.Sprintf("children[%d].", i)
		if strings.TrimSpace(child.Name) == "" {
			errs = append(errs, dErrors.FieldError{Field: prefix + "name", Reason: ReasonRequired})
		}
		switch child.Gender {
		case models.GenderMale, models.GenderFemale:
		default:
			errs = append(errs, dErrors.FieldError{Field: prefix + "gender", Reason: ReasonInvalidValue})
		}
		if child.DateOfBirth == nil {
			errs = append(errs, dErrors.FieldError{Field: prefix + "date_of_birth", Reason: ReasonRequired})
		}
		switch {
		case !child.Relationship.Valid():
			errs = append(errs, dErrors.FieldError{Field: prefix + "relationship", Reason: ReasonRequired})
		case !child.Relationship.MatchesGender(child.Gender):
			errs = append(errs, dErrors.FieldError{Field: prefix + "relationship", Reason: ReasonInvalidRelationship})
		}
	}
	return errs
}

// AncestorSlots validates one lineage side of the family tree. A nameless
// slot is "not provided" and skips validation entirely; a named slot must
// carry a vital status. Taxonomy override selections must carry their
// free-text value.
func AncestorSlots(slots []*models.AncestorSlot) []dErrors.FieldError {
	var errs []dErrors.FieldError
	for _, slot := range slots {
		if !slot.Named() {
			continue
		}
		prefix := string(slot.Relation) + "_"
		if !slot.Status.Valid() {
			errs = append(errs, dErrors.FieldError{Field: prefix + "status", Reason: ReasonStatusRequired})
		}
		errs = append(errs, refErrors(prefix+"kulam", slot.Clan)...)
		errs = append(errs, refErrors(prefix+"kuladeivam", slot.ClanDeity)...)
		errs = append(errs, refErrors(prefix+"kootam", slot.SubClan)...)
	}
	return errs
}

func refErrors(field string, ref taxonomy.Ref) []dErrors.FieldError {
	if text, ok := ref.OtherText(); ok && strings.TrimSpace(text) == "" {
		return []dErrors.FieldError{{Field: field + "_other", Reason: ReasonOverrideTextMissing}}
	}
	return nil
}

func phoneErrors(prefix, countryCode, phone string, required bool) []dErrors.FieldError {
	var errs []dErrors.FieldError
	if strings.TrimSpace(countryCode) == "" {
		if required || phone != "" {
			errs = append(errs, dErrors.FieldError{Field: prefix + "country_code", Reason: ReasonRequired})
		}
	}
	switch {
	case phone == "":
		if required {
			errs = append(errs, dErrors.FieldError{Field: prefix + "phone", Reason: ReasonRequired})
		}
	case !phonePattern.MatchString(phone):
		errs = append(errs, dErrors.FieldError{Field: prefix + "phone", Reason: ReasonInvalidPhone})
	}
	return errs
}

func ageAt(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
