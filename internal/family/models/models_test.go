package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpouseGenderDerivation(t *testing.T) {
	t.Run("derives opposite of male", func(t *testing.T) {
		spouse := &Spouse{}
		spouse.DeriveGenderFrom(GenderMale)
		assert.Equal(t, GenderFemale, spouse.Gender)
	})

	t.Run("derives opposite of female", func(t *testing.T) {
		spouse := &Spouse{}
		spouse.DeriveGenderFrom(GenderFemale)
		assert.Equal(t, GenderMale, spouse.Gender)
	})

	t.Run("other derives nothing", func(t *testing.T) {
		spouse := &Spouse{}
		spouse.DeriveGenderFrom(GenderOther)
		assert.Equal(t, Gender(""), spouse.Gender)
	})

	t.Run("never overwrites an explicit gender", func(t *testing.T) {
		spouse := &Spouse{}
		spouse.SetGender(GenderMale)
		spouse.DeriveGenderFrom(GenderFemale)
		assert.Equal(t, GenderMale, spouse.Gender)

		// Repeating the derivation stays a no-op.
		spouse.DeriveGenderFrom(GenderMale)
		assert.Equal(t, GenderMale, spouse.Gender)
	})
}

func TestRelationshipGenderConsistency(t *testing.T) {
	assert.True(t, RelationshipSon.MatchesGender(GenderMale))
	assert.True(t, RelationshipDaughter.MatchesGender(GenderFemale))
	assert.False(t, RelationshipSon.MatchesGender(GenderFemale))
	assert.False(t, RelationshipDaughter.MatchesGender(GenderMale))
}

func TestAncestorSlotNormalize(t *testing.T) {
	t.Run("mirrors residence while toggle is on", func(t *testing.T) {
		slot := &AncestorSlot{Name: "Ramasamy", NativePlace: "Madurai", SameAsNative: true}
		slot.Normalize()
		assert.Equal(t, "Madurai", slot.ResidencePlace)

		slot.NativePlace = "Chennai"
		slot.Normalize()
		assert.Equal(t, "Chennai", slot.ResidencePlace)
	})

	t.Run("toggling off keeps the last mirrored value", func(t *testing.T) {
		slot := &AncestorSlot{Name: "Ramasamy", NativePlace: "Chennai", SameAsNative: true}
		slot.Normalize()

		slot.SameAsNative = false
		slot.NativePlace = "Madurai"
		slot.Normalize()
		assert.Equal(t, "Chennai", slot.ResidencePlace)
	})

	t.Run("clears status on nameless slot", func(t *testing.T) {
		slot := &AncestorSlot{Status: StatusLive}
		slot.Normalize()
		assert.Equal(t, VitalStatus(""), slot.Status)
	})
}

func TestRelationDecomposition(t *testing.T) {
	assert.Equal(t, GenerationParent, RelationFather.Generation())
	assert.Equal(t, GenerationGrandparent, RelationMaternalGrandmother.Generation())
	assert.Equal(t, BranchPaternal, RelationPaternalGrandfather.Branch())
	assert.Equal(t, BranchMaternal, RelationMother.Branch())
}
