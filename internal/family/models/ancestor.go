package models

import (
	"time"

	taxonomy "kinship/internal/taxonomy/models"
	id "kinship/pkg/domain"
)

// Lineage distinguishes the member's ancestry from the spouse's.
type Lineage string

const (
	LineageMember Lineage = "member"
	LineageSpouse Lineage = "spouse"
)

func (l Lineage) Valid() bool {
	return l == LineageMember || l == LineageSpouse
}

// Generation of an ancestor relative to the lineage holder.
type Generation string

const (
	GenerationParent      Generation = "parent"
	GenerationGrandparent Generation = "grandparent"
)

// Branch distinguishes the father's side from the mother's for grandparents.
type Branch string

const (
	BranchPaternal Branch = "paternal"
	BranchMaternal Branch = "maternal"
)

// Relation names one ancestor position beneath a lineage holder: the parent
// pair plus the paternal and maternal grandparent pairs. It doubles as the
// wire-field prefix (father_name, paternal_grandmother_status, ...) and the
// row subtype in storage.
type Relation string

const (
	RelationFather              Relation = "father"
	RelationMother              Relation = "mother"
	RelationPaternalGrandfather Relation = "paternal_grandfather"
	RelationPaternalGrandmother Relation = "paternal_grandmother"
	RelationMaternalGrandfather Relation = "maternal_grandfather"
	RelationMaternalGrandmother Relation = "maternal_grandmother"
)

// Relations lists every ancestor position of a lineage side in display order.
var Relations = []Relation{
	RelationFather,
	RelationMother,
	RelationPaternalGrandfather,
	RelationPaternalGrandmother,
	RelationMaternalGrandfather,
	RelationMaternalGrandmother,
}

func (r Relation) Valid() bool {
	for _, rel := range Relations {
		if r == rel {
			return true
		}
	}
	return false
}

// Generation decomposes the relation.
func (r Relation) Generation() Generation {
	if r == RelationFather || r == RelationMother {
		return GenerationParent
	}
	return GenerationGrandparent
}

// Branch is meaningful for grandparents only; parents return their own side
// (father paternal, mother maternal).
func (r Relation) Branch() Branch {
	switch r {
	case RelationFather, RelationPaternalGrandfather, RelationPaternalGrandmother:
		return BranchPaternal
	default:
		return BranchMaternal
	}
}

// VitalStatus of an ancestor. Required exactly when a name has been entered;
// a nameless slot is "not applicable" and skips validation entirely.
type VitalStatus string

const (
	StatusLive     VitalStatus = "live"
	StatusDeceased VitalStatus = "deceased"
)

func (v VitalStatus) Valid() bool {
	return v == StatusLive || v == StatusDeceased
}

// AncestorSlot is one ancestry record beneath a (member, lineage) pair.
//
// Invariants:
//   - Status is set iff Name is non-empty
//   - SameAsNative mirrors ResidencePlace from NativePlace on every write;
//     toggling it off keeps the last mirrored value
//   - Each taxonomy ref is either a stored entry or an "other" override
type AncestorSlot struct {
	MemberID       id.MemberID  `json:"member_id"`
	Lineage        Lineage      `json:"lineage"`
	Relation       Relation     `json:"relation"`
	Name           string       `json:"name"`
	NativePlace    string       `json:"native_place"`
	ResidencePlace string       `json:"residence_place"`
	SameAsNative   bool         `json:"same_as_native"`
	Status         VitalStatus  `json:"status,omitempty"`
	Clan           taxonomy.Ref `json:"-"`
	ClanDeity      taxonomy.Ref `json:"-"`
	SubClan        taxonomy.Ref `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Normalize applies the write-time derivations: residence mirroring while the
// toggle is on, and clearing a status that arrived without a name.
func (s *AncestorSlot) Normalize() {
	if s.SameAsNative {
		s.ResidencePlace = s.NativePlace
	}
	if s.Name == "" {
		s.Status = ""
	}
}

// Named reports whether the slot is in play; nameless slots skip validation.
func (s *AncestorSlot) Named() bool {
	return s.Name != ""
}
