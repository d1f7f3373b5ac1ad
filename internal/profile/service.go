package profile

import (
	"context"
	"log/slog"
	"time"

	"kinship/internal/family/models"
	familyservice "kinship/internal/family/service"
	"kinship/internal/platform/metrics"
	"kinship/internal/rules"
	taxonomy "kinship/internal/taxonomy/models"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/tx"
	"kinship/pkg/requestcontext"
)

// Service orchestrates section submissions: it gates every write through the
// validation rules and commits the section data together with the step
// advance in one transaction, so the step pointer never runs ahead of its
// data.
// TaxonomyResolver loads a taxonomy entry by ID so submitted references can
// be checked against the store before they are persisted.
type TaxonomyResolver interface {
	Resolve(ctx context.Context, entryID id.EntryID) (*taxonomy.Entry, error)
}

type Service struct {
	family   *familyservice.Service
	taxonomy TaxonomyResolver
	runner   tx.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(family *familyservice.Service, resolver TaxonomyResolver, runner tx.Runner, opts ...Option) *Service {
	s := &Service{family: family, taxonomy: resolver, runner: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StepState is one workflow step as seen by the member: whether it applies to
// them and whether they are past it.
type StepState struct {
	Step       models.Step `json:"step"`
	Applicable bool        `json:"applicable"`
	Completed  bool        `json:"completed"`
}

// Overview is the GET-profile projection: the member row plus the workflow
// position.
type Overview struct {
	Member      *models.Member `json:"member"`
	CurrentStep models.Step    `json:"current_step"`
	Steps       []StepState    `json:"steps"`
	Complete    bool           `json:"complete"`
}

// Result of a successful section submission.
type Result struct {
	Step     models.Step `json:"profile_step"`
	Complete bool        `json:"complete"`
}

// Overview bootstraps the member row on first visit and reports where they
// are in the workflow.
func (s *Service) Overview(ctx context.Context, memberID id.MemberID) (*Overview, error) {
	member, err := s.family.GetOrCreateMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	current := CurrentStep(member)
	currentIdx := stepIndex(current)

	var steps []StepState
	for i, step := range models.StepOrder {
		if step == models.StepCompleted {
			continue
		}
		steps = append(steps, StepState{
			Step:       step,
			Applicable: Applicable(member, step),
			Completed:  i < currentIdx,
		})
	}
	return &Overview{
		Member:      member,
		CurrentStep: current,
		Steps:       steps,
		Complete:    IsComplete(member),
	}, nil
}

// CompleteIntro marks the intro step done and moves the member to the
// member-details section.
func (s *Service) CompleteIntro(ctx context.Context, memberID id.MemberID) (*Result, error) {
	member, err := s.family.Member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, member, models.StepIntro, nil)
}

// MemberDetailsInput is the member-details section payload. Version carries
// the row version the client last read; a stale version is rejected so two
// tabs cannot silently overwrite each other.
type MemberDetailsInput struct {
	Name          string
	Gender        models.Gender
	DateOfBirth   *time.Time
	MaritalStatus models.MaritalStatus
	HasChildren   bool
	CountryCode   string
	Phone         string
	Email         string
	AddressLine   string
	City          string
	State         string
	Pincode       string
	Version       int64
}

// SubmitMemberDetails validates and persists the member-details section.
func (s *Service) SubmitMemberDetails(ctx context.Context, memberID id.MemberID, input MemberDetailsInput) (*Result, error) {
	member, err := s.family.Member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	member.Name = input.Name
	member.Gender = input.Gender
	member.DateOfBirth = input.DateOfBirth
	member.MaritalStatus = input.MaritalStatus
	member.HasChildren = input.HasChildren
	member.CountryCode = input.CountryCode
	member.Phone = input.Phone
	member.Email = input.Email
	member.AddressLine = input.AddressLine
	member.City = input.City
	member.State = input.State
	member.Pincode = input.Pincode
	if input.Version != 0 {
		member.Version = input.Version
	}

	if errs := rules.MemberDetails(member, requestcontext.Now(ctx)); len(errs) > 0 {
		return nil, s.reject(models.StepMemberDetails, errs)
	}
	return s.finalize(ctx, member, models.StepMemberDetails, nil)
}

// SubmitSpouseDetails validates and persists the spouse section.
func (s *Service) SubmitSpouseDetails(ctx context.Context, memberID id.MemberID, input *models.Spouse) (*Result, error) {
	member, err := s.family.Member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !CanEnter(member, models.StepSpouseDetails) {
		return nil, notReachable(models.StepSpouseDetails)
	}
	stored, err := s.family.OpenSpouse(ctx, member)
	if err != nil {
		return nil, err
	}
	// Validate the record as it will be after the merge: an omitted gender
	// falls back to the stored (possibly derived) one.
	effective := *input
	if effective.Gender == "" {
		effective.Gender = stored.Gender
	}
	if errs := rules.SpouseDetails(&effective); len(errs) > 0 {
		return nil, s.reject(models.StepSpouseDetails, errs)
	}
	return s.finalize(ctx, member, models.StepSpouseDetails, func(ctx context.Context) error {
		_, err := s.family.SaveSpouse(ctx, member, input)
		return err
	})
}

// SubmitChildren validates and persists the children section.
func (s *Service) SubmitChildren(ctx context.Context, memberID id.MemberID, children []*models.Child) (*Result, error) {
	member, err := s.family.Member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !CanEnter(member, models.StepChildrenDetails) {
		return nil, notReachable(models.StepChildrenDetails)
	}
	if errs := rules.ChildrenDetails(children); len(errs) > 0 {
		return nil, s.reject(models.StepChildrenDetails, errs)
	}
	return s.finalize(ctx, member, models.StepChildrenDetails, func(ctx context.Context) error {
		_, err := s.family.SaveChildren(ctx, memberID, children)
		return err
	})
}

// SubmitFamilyTree validates and persists one lineage side's ancestor slots.
func (s *Service) SubmitFamilyTree(ctx context.Context, memberID id.MemberID, lineage models.Lineage, slots []*models.AncestorSlot) (*Result, error) {
	member, err := s.family.Member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	step := models.StepMemberFamilyTree
	if lineage == models.LineageSpouse {
		step = models.StepSpouseFamilyTree
	}
	if !CanEnter(member, step) {
		return nil, notReachable(step)
	}
	for _, slot := range slots {
		slot.Normalize()
	}
	errs := rules.AncestorSlots(slots)
	refErrs, err := s.resolveSlotRefs(ctx, slots)
	if err != nil {
		return nil, err
	}
	errs = append(errs, refErrs...)
	if len(errs) > 0 {
		return nil, s.reject(step, errs)
	}
	return s.finalize(ctx, member, step, func(ctx context.Context) error {
		_, err := s.family.SaveAncestors(ctx, memberID, lineage, slots)
		return err
	})
}

// resolveSlotRefs checks every concrete taxonomy reference on the submitted
// slots against the store: the entry must exist and carry the type the field
// expects. Override references carry their own text and need no lookup.
func (s *Service) resolveSlotRefs(ctx context.Context, slots []*models.AncestorSlot) ([]dErrors.FieldError, error) {
	var errs []dErrors.FieldError
	for _, slot := range slots {
		if !slot.Named() {
			continue
		}
		prefix := string(slot.Relation) + "_"
		refs := []struct {
			field string
			want  taxonomy.EntryType
			ref   taxonomy.Ref
		}{
			{prefix + "kulam", taxonomy.TypeClan, slot.Clan},
			{prefix + "kuladeivam", taxonomy.TypeClanDeity, slot.ClanDeity},
			{prefix + "kootam", taxonomy.TypeSubClan, slot.SubClan},
		}
		for _, r := range refs {
			entryID, ok := r.ref.Entry()
			if !ok {
				continue
			}
			entry, err := s.taxonomy.Resolve(ctx, entryID)
			switch {
			case dErrors.HasCode(err, dErrors.CodeNotFound):
				errs = append(errs, dErrors.FieldError{Field: r.field, Reason: rules.ReasonUnknownEntry})
			case err != nil:
				return nil, err
			case entry.Type != r.want:
				errs = append(errs, dErrors.FieldError{Field: r.field, Reason: rules.ReasonWrongEntryType})
			}
		}
	}
	return errs, nil
}

// Reset is the operator action moving a member's step pointer backwards.
// Section data is kept; the member walks forward again re-validating it.
func (s *Service) Reset(ctx context.Context, memberID id.MemberID, step models.Step) (*Result, error) {
	if !requestcontext.IsOperator(ctx) {
		return nil, dErrors.New(dErrors.CodeForbidden, "step reset requires operator authentication")
	}
	if !step.Valid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown step %q", step)
	}
	member, err := s.family.Member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	member.Step = step
	if stepIndex(step) <= stepIndex(models.StepIntro) {
		member.IntroCompleted = false
	}
	member.QuestionsCompleted = false
	if err := s.family.SaveMember(ctx, member); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "profile step reset by operator",
		"member_id", memberID, "step", step)
	return &Result{Step: CurrentStep(member), Complete: IsComplete(member)}, nil
}

// finalize runs the section write and the step advance in one transaction.
// Resubmitting an already-completed section rewrites its data without moving
// the step pointer; the pointer never regresses.
func (s *Service) finalize(ctx context.Context, member *models.Member, step models.Step, write func(ctx context.Context) error) (*Result, error) {
	current := CurrentStep(member)
	advancing := step == current
	if advancing {
		if _, err := advanceStep(member, step); err != nil {
			return nil, err
		}
	} else if stepIndex(step) > stepIndex(current) {
		return nil, dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot complete step %q while on %q", step, current)
	}

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if write != nil {
			if err := write(ctx); err != nil {
				return err
			}
		}
		return s.family.SaveMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementSectionSubmitted(string(step))
	if advancing && member.Step == models.StepCompleted {
		s.metrics.IncrementProfilesCompleted()
		s.logger.InfoContext(ctx, "profile completed", "member_id", member.ID)
	}
	return &Result{Step: CurrentStep(member), Complete: IsComplete(member)}, nil
}

func (s *Service) reject(step models.Step, errs []dErrors.FieldError) error {
	s.metrics.IncrementValidationFailure(string(step))
	return dErrors.NewValidation(errs)
}

func notReachable(step models.Step) error {
	return dErrors.Newf(dErrors.CodeInvalidTransition, "step %q is not reachable yet", step)
}
