package models

import (
	"time"

	id "kinship/pkg/domain"
)

// Gender of a member or relative.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// Opposite returns the logical opposite gender for spouse derivation.
// ok is false for "other", which derives nothing.
func (g Gender) Opposite() (Gender, bool) {
	switch g {
	case GenderMale:
		return GenderFemale, true
	case GenderFemale:
		return GenderMale, true
	default:
		return "", false
	}
}

// MaritalStatus of a member.
type MaritalStatus string

const (
	MaritalUnmarried MaritalStatus = "unmarried"
	MaritalMarried   MaritalStatus = "married"
	MaritalWidowed   MaritalStatus = "widowed"
	MaritalDivorced  MaritalStatus = "divorced"
	MaritalRemarried MaritalStatus = "remarried"
)

func (m MaritalStatus) Valid() bool {
	switch m {
	case MaritalUnmarried, MaritalMarried, MaritalWidowed, MaritalDivorced, MaritalRemarried:
		return true
	}
	return false
}

// ImpliesSpouse reports whether the status carries a partner, which gates the
// spouse sections of the workflow.
func (m MaritalStatus) ImpliesSpouse() bool {
	return m.Valid() && m != MaritalUnmarried
}

// Step is the profile-completion step stored on the member row. The step
// advances monotonically through the workflow; only an operator reset may
// move it backwards.
type Step string

const (
	StepIntro            Step = "intro"
	StepMemberDetails    Step = "member_details"
	StepSpouseDetails    Step = "spouse_details"
	StepChildrenDetails  Step = "children_details"
	StepMemberFamilyTree Step = "member_family_tree"
	StepSpouseFamilyTree Step = "spouse_family_tree"
	StepCompleted        Step = "completed"
)

// StepOrder is the full workflow in required order. Conditional skips are
// applied by the profile state machine, not here.
var StepOrder = []Step{
	StepIntro,
	StepMemberDetails,
	StepSpouseDetails,
	StepChildrenDetails,
	StepMemberFamilyTree,
	StepSpouseFamilyTree,
	StepCompleted,
}

func (s Step) Valid() bool {
	for _, step := range StepOrder {
		if s == step {
			return true
		}
	}
	return false
}

// Member is the aggregate root of the onboarding workflow.
//
// Invariants:
//   - Step only moves forward through StepOrder (operator reset excepted)
//   - Spouse, children, and ancestry sections are unreachable until the
//     intro is completed and Gender is set
//   - Version increases by one on every write; stores reject writes whose
//     expected version does not match (two-tab lost-update guard)
type Member struct {
	ID                 id.MemberID   `json:"id"`
	Name               string        `json:"name"`
	Gender             Gender        `json:"gender"`
	DateOfBirth        *time.Time    `json:"date_of_birth,omitempty"`
	MaritalStatus      MaritalStatus `json:"marital_status"`
	HasChildren        bool          `json:"has_children"`
	CountryCode        string        `json:"country_code"`
	Phone              string        `json:"phone"`
	Email              string        `json:"email"`
	AddressLine        string        `json:"address_line"`
	City               string        `json:"city"`
	State              string        `json:"state"`
	Pincode            string        `json:"pincode"`
	Step               Step          `json:"profile_step"`
	IntroCompleted     bool          `json:"intro_completed"`
	QuestionsCompleted bool          `json:"questions_completed"`
	Version            int64         `json:"version"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// NewMember constructs a freshly registered member at the intro step.
func NewMember(memberID id.MemberID, now time.Time) *Member {
	return &Member{
		ID:        memberID,
		Step:      StepIntro,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
