// Package profile owns the completion workflow: which section a member is
// on, which sections apply to them, and the transactional step advance.
package profile

import (
	"kinship/internal/family/models"
	dErrors "kinship/pkg/domain-errors"
)

func stepIndex(step models.Step) int {
	for i, s := range models.StepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

// Applicable reports whether a step applies to the member given their
// current attributes. Spouse steps drop out for unmarried members, the
// children step when the member has none.
func Applicable(member *models.Member, step models.Step) bool {
	switch step {
	case models.StepSpouseDetails, models.StepSpouseFamilyTree:
		return member.MaritalStatus.ImpliesSpouse()
	case models.StepChildrenDetails:
		return member.HasChildren
	default:
		return true
	}
}

// CurrentStep is a pure function of stored state. The stored step pointer may
// have become inapplicable since it was written (marital status edited to
// unmarried while parked on a spouse step); the current step skips forward
// past inapplicable ones.
func CurrentStep(member *models.Member) models.Step {
	i := stepIndex(member.Step)
	if i < 0 {
		return models.StepIntro
	}
	for ; i < len(models.StepOrder)-1; i++ {
		if Applicable(member, models.StepOrder[i]) {
			break
		}
	}
	return models.StepOrder[i]
}

// CanEnter reports whether the member may open a step: it must be applicable,
// already reached, and the later family sections additionally require the
// intro done and a gender on record.
func CanEnter(member *models.Member, step models.Step) bool {
	i := stepIndex(step)
	if i < 0 || !Applicable(member, step) {
		return false
	}
	if i > stepIndex(CurrentStep(member)) {
		return false
	}
	if i > stepIndex(models.StepMemberDetails) {
		return member.IntroCompleted && member.Gender.Valid()
	}
	return true
}

// IsComplete reports whether the member finished the workflow.
func IsComplete(member *models.Member) bool {
	return CurrentStep(member) == models.StepCompleted
}

// nextAfter computes the step following completed, skipping inapplicable
// ones. Branching past member details needs a marital status on record.
func nextAfter(member *models.Member, completed models.Step) (models.Step, error) {
	i := stepIndex(completed)
	if i >= stepIndex(models.StepMemberDetails) && !member.MaritalStatus.Valid() {
		return "", dErrors.New(dErrors.CodePrerequisiteMissing,
			"marital status must be set before the workflow can branch")
	}
	for i++; i < len(models.StepOrder)-1; i++ {
		if Applicable(member, models.StepOrder[i]) {
			return models.StepOrder[i], nil
		}
	}
	return models.StepCompleted, nil
}

// advanceStep validates that completed is the member's current step and moves
// the stored pointer to the next applicable one. The member row is mutated in
// place; persisting it is the caller's job, in the same transaction as the
// section data that was just written.
func advanceStep(member *models.Member, completed models.Step) (models.Step, error) {
	current := CurrentStep(member)
	if completed != current {
		return "", dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot complete step %q while on %q", completed, current)
	}
	next, err := nextAfter(member, completed)
	if err != nil {
		return "", err
	}
	member.Step = next
	if completed == models.StepIntro {
		member.IntroCompleted = true
	}
	if next == models.StepCompleted {
		member.QuestionsCompleted = true
	}
	return next, nil
}
