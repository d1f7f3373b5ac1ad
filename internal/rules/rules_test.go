package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kinship/internal/family/models"
	taxonomy "kinship/internal/taxonomy/models"
	dErrors "kinship/pkg/domain-errors"
)

func fieldReasons(errs []dErrors.FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Reason
	}
	return out
}

func validMember(now time.Time) *models.Member {
	dob := now.AddDate(-30, 0, 0)
	return &models.Member{
		Name:          "Ramasamy",
		Gender:        models.GenderMale,
		DateOfBirth:   &dob,
		MaritalStatus: models.MaritalMarried,
		CountryCode:   "+91",
		Phone:         "9876543210",
		Email:         "ramasamy@example.com",
		AddressLine:   "12 Car Street",
		City:          "Madurai",
		State:         "Tamil Nadu",
		Pincode:       "625001",
	}
}

func TestMemberDetails(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("valid member passes", func(t *testing.T) {
		assert.Empty(t, MemberDetails(validMember(now), now))
	})

	t.Run("every missing field reported at once", func(t *testing.T) {
		errs := MemberDetails(&models.Member{}, now)
		reasons := fieldReasons(errs)
		for _, field := range []string{
			"name", "gender", "marital_status", "date_of_birth",
			"country_code", "phone", "address_line", "city", "state", "pincode",
		} {
			assert.Equal(t, ReasonRequired, reasons[field], field)
		}
	})

	t.Run("age is checked against request time", func(t *testing.T) {
		member := validMember(now)
		dob := now.AddDate(-18, 0, 1)
		member.DateOfBirth = &dob
		reasons := fieldReasons(MemberDetails(member, now))
		assert.Equal(t, ReasonUnderage, reasons["date_of_birth"])

		dob = now.AddDate(-18, 0, 0)
		member.DateOfBirth = &dob
		assert.Empty(t, MemberDetails(member, now))
	})

	t.Run("phone must be exactly ten digits", func(t *testing.T) {
		member := validMember(now)
		member.Phone = "98765"
		reasons := fieldReasons(MemberDetails(member, now))
		assert.Equal(t, ReasonInvalidPhone, reasons["phone"])
	})
}

func TestSpouseDetails(t *testing.T) {
	t.Run("name and gender required", func(t *testing.T) {
		reasons := fieldReasons(SpouseDetails(&models.Spouse{}))
		assert.Equal(t, ReasonRequired, reasons["spouse_name"])
		assert.Equal(t, ReasonRequired, reasons["spouse_gender"])
	})

	t.Run("contact fields optional but format checked", func(t *testing.T) {
		spouse := &models.Spouse{Name: "Meenakshi", Gender: models.GenderFemale}
		assert.Empty(t, SpouseDetails(spouse))

		spouse.CountryCode = "+91"
		spouse.Phone = "12345"
		spouse.Email = "not-an-address"
		reasons := fieldReasons(SpouseDetails(spouse))
		assert.Equal(t, ReasonInvalidPhone, reasons["spouse_phone"])
		assert.Equal(t, ReasonInvalidEmail, reasons["spouse_email"])
	})

	t.Run("phone without country code rejected", func(t *testing.T) {
		spouse := &models.Spouse{Name: "Meenakshi", Gender: models.GenderFemale, Phone: "9876543210"}
		reasons := fieldReasons(SpouseDetails(spouse))
		assert.Equal(t, ReasonRequired, reasons["spouse_country_code"])
	})
}

func TestChildrenDetails(t *testing.T) {
	dob := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("relationship must match gender", func(t *testing.T) {
		errs := ChildrenDetails([]*models.Child{{
			Name: "Kavya", Gender: models.GenderFemale,
			DateOfBirth: &dob, Relationship: models.RelationshipSon,
		}})
		reasons := fieldReasons(errs)
		assert.Equal(t, ReasonInvalidRelationship, reasons["children[0].relationship"])
	})

	t.Run("violations are indexed per child", func(t *testing.T) {
		errs := ChildrenDetails([]*models.Child{
			{Name: "Arun", Gender: models.GenderMale, DateOfBirth: &dob, Relationship: models.RelationshipSon},
			{Gender: models.GenderMale, Relationship: models.RelationshipSon},
		})
		reasons := fieldReasons(errs)
		assert.NotContains(t, reasons, "children[0].name")
		assert.Equal(t, ReasonRequired, reasons["children[1].name"])
		assert.Equal(t, ReasonRequired, reasons["children[1].date_of_birth"])
	})
}

func TestAncestorSlots(t *testing.T) {
	t.Run("nameless slot skips validation entirely", func(t *testing.T) {
		assert.Empty(t, AncestorSlots([]*models.AncestorSlot{{
			Relation: models.RelationFather,
		}}))
	})

	t.Run("named slot without status fails", func(t *testing.T) {
		errs := AncestorSlots([]*models.AncestorSlot{{
			Relation: models.RelationFather,
			Name:     "Ramasamy",
		}})
		reasons := fieldReasons(errs)
		assert.Equal(t, ReasonStatusRequired, reasons["father_status"])
	})

	t.Run("other selection requires free text", func(t *testing.T) {
		errs := AncestorSlots([]*models.AncestorSlot{{
			Relation: models.RelationMaternalGrandmother,
			Name:     "Lakshmi",
			Status:   models.StatusDeceased,
			Clan:     taxonomy.OtherRef(""),
		}})
		reasons := fieldReasons(errs)
		assert.Equal(t, ReasonOverrideTextMissing, reasons["maternal_grandmother_kulam_other"])
	})

	t.Run("fully populated slot passes", func(t *testing.T) {
		assert.Empty(t, AncestorSlots([]*models.AncestorSlot{{
			Relation: models.RelationFather,
			Name:     "Ramasamy",
			Status:   models.StatusLive,
			Clan:     taxonomy.OtherRef("Vellalar"),
		}}))
	})
}
