package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinship/internal/family/models"
	familyservice "kinship/internal/family/service"
	"kinship/internal/family/store"
	"kinship/internal/rules"
	taxonomymodels "kinship/internal/taxonomy/models"
	taxonomyservice "kinship/internal/taxonomy/service"
	taxonomystore "kinship/internal/taxonomy/store"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/tx"
	"kinship/pkg/requestcontext"
)

func testContext() context.Context {
	return requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
}

func newTestService() (*Service, *familyservice.Service) {
	svc, family, _ := newTestServices()
	return svc, family
}

func newTestServices() (*Service, *familyservice.Service, *taxonomyservice.Service) {
	family := familyservice.New(store.NewInMemory())
	tax := taxonomyservice.New(taxonomystore.NewInMemory())
	return New(family, tax, tx.NewNoopRunner()), family, tax
}

func validDetails(marital models.MaritalStatus, hasChildren bool) MemberDetailsInput {
	dob := time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC)
	return MemberDetailsInput{
		Name:          "Ramasamy",
		Gender:        models.GenderMale,
		DateOfBirth:   &dob,
		MaritalStatus: marital,
		HasChildren:   hasChildren,
		CountryCode:   "+91",
		Phone:         "9876543210",
		AddressLine:   "12 Car Street",
		City:          "Madurai",
		State:         "Tamil Nadu",
		Pincode:       "625001",
	}
}

func bootstrap(t *testing.T, svc *Service, ctx context.Context) id.MemberID {
	t.Helper()
	memberID := id.NewMemberID()
	overview, err := svc.Overview(ctx, memberID)
	require.NoError(t, err)
	require.Equal(t, models.StepIntro, overview.CurrentStep)
	return memberID
}

func TestFullWalkthrough(t *testing.T) {
	ctx := testContext()
	svc, _ := newTestService()
	memberID := bootstrap(t, svc, ctx)
	dob := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	res, err := svc.CompleteIntro(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, models.StepMemberDetails, res.Step)

	res, err = svc.SubmitMemberDetails(ctx, memberID, validDetails(models.MaritalMarried, true))
	require.NoError(t, err)
	assert.Equal(t, models.StepSpouseDetails, res.Step)

	res, err = svc.SubmitSpouseDetails(ctx, memberID, &models.Spouse{Name: "Meenakshi"})
	require.NoError(t, err)
	assert.Equal(t, models.StepChildrenDetails, res.Step)

	res, err = svc.SubmitChildren(ctx, memberID, []*models.Child{{
		Name: "Arun", Gender: models.GenderMale, DateOfBirth: &dob,
		Relationship: models.RelationshipSon,
	}})
	require.NoError(t, err)
	assert.Equal(t, models.StepMemberFamilyTree, res.Step)

	res, err = svc.SubmitFamilyTree(ctx, memberID, models.LineageMember, []*models.AncestorSlot{{
		Relation: models.RelationFather, Name: "Karuppan", Status: models.StatusDeceased,
	}})
	require.NoError(t, err)
	assert.Equal(t, models.StepSpouseFamilyTree, res.Step)

	res, err = svc.SubmitFamilyTree(ctx, memberID, models.LineageSpouse, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StepCompleted, res.Step)
	assert.True(t, res.Complete)

	overview, err := svc.Overview(ctx, memberID)
	require.NoError(t, err)
	assert.True(t, overview.Complete)
	assert.True(t, overview.Member.QuestionsCompleted)
}

func TestUnmarriedWalkthroughSkipsSpouseSteps(t *testing.T) {
	ctx := testContext()
	svc, _ := newTestService()
	memberID := bootstrap(t, svc, ctx)

	_, err := svc.CompleteIntro(ctx, memberID)
	require.NoError(t, err)

	res, err := svc.SubmitMemberDetails(ctx, memberID, validDetails(models.MaritalUnmarried, false))
	require.NoError(t, err)
	assert.Equal(t, models.StepMemberFamilyTree, res.Step)

	res, err = svc.SubmitFamilyTree(ctx, memberID, models.LineageMember, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StepCompleted, res.Step)

	_, err = svc.SubmitSpouseDetails(ctx, memberID, &models.Spouse{Name: "Nobody"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func TestValidationFailureListsEveryField(t *testing.T) {
	ctx := testContext()
	svc, _ := newTestService()
	memberID := bootstrap(t, svc, ctx)
	_, err := svc.CompleteIntro(ctx, memberID)
	require.NoError(t, err)

	_, err = svc.SubmitMemberDetails(ctx, memberID, MemberDetailsInput{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	fields := dErrors.FieldsOf(err)
	assert.Greater(t, len(fields), 3)

	// Failed submission never moved the pointer.
	overview, err := svc.Overview(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, models.StepMemberDetails, overview.CurrentStep)
}

func TestSubmittingAheadRejected(t *testing.T) {
	ctx := testContext()
	svc, _ := newTestService()
	memberID := bootstrap(t, svc, ctx)

	_, err := svc.SubmitMemberDetails(ctx, memberID, validDetails(models.MaritalMarried, false))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func TestResubmitEarlierSectionKeepsStep(t *testing.T) {
	ctx := testContext()
	svc, _ := newTestService()
	memberID := bootstrap(t, svc, ctx)
	_, err := svc.CompleteIntro(ctx, memberID)
	require.NoError(t, err)
	_, err = svc.SubmitMemberDetails(ctx, memberID, validDetails(models.MaritalMarried, false))
	require.NoError(t, err)

	// Edit member details again while parked on the spouse section.
	details := validDetails(models.MaritalMarried, false)
	details.City = "Chennai"
	details.Version = 3
	res, err := svc.SubmitMemberDetails(ctx, memberID, details)
	require.NoError(t, err)
	assert.Equal(t, models.StepSpouseDetails, res.Step)

	overview, err := svc.Overview(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, "Chennai", overview.Member.City)
}

func TestStaleVersionRejected(t *testing.T) {
	ctx := testContext()
	svc, _ := newTestService()
	memberID := bootstrap(t, svc, ctx)
	_, err := svc.CompleteIntro(ctx, memberID)
	require.NoError(t, err)
	_, err = svc.SubmitMemberDetails(ctx, memberID, validDetails(models.MaritalMarried, false))
	require.NoError(t, err)

	stale := validDetails(models.MaritalMarried, false)
	stale.Version = 1
	_, err = svc.SubmitMemberDetails(ctx, memberID, stale)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestSectionRoundTrip(t *testing.T) {
	ctx := testContext()
	svc, family := newTestService()
	memberID := bootstrap(t, svc, ctx)
	_, err := svc.CompleteIntro(ctx, memberID)
	require.NoError(t, err)
	_, err = svc.SubmitMemberDetails(ctx, memberID, validDetails(models.MaritalMarried, false))
	require.NoError(t, err)

	_, err = svc.SubmitSpouseDetails(ctx, memberID, &models.Spouse{
		Name:        "Meenakshi",
		CountryCode: "+91",
		Phone:       "9123456780",
		Email:       "meenakshi@example.com",
	})
	require.NoError(t, err)

	spouse, err := family.Spouse(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, "Meenakshi", spouse.Name)
	assert.Equal(t, models.GenderFemale, spouse.Gender)
	assert.Equal(t, "9123456780", spouse.Phone)
	assert.Equal(t, "meenakshi@example.com", spouse.Email)
}

func TestOperatorReset(t *testing.T) {
	ctx := testContext()
	svc, _ := newTestService()
	memberID := bootstrap(t, svc, ctx)
	_, err := svc.CompleteIntro(ctx, memberID)
	require.NoError(t, err)
	_, err = svc.SubmitMemberDetails(ctx, memberID, validDetails(models.MaritalUnmarried, false))
	require.NoError(t, err)
	_, err = svc.SubmitFamilyTree(ctx, memberID, models.LineageMember, nil)
	require.NoError(t, err)

	// A member session cannot reset itself.
	_, err = svc.Reset(ctx, memberID, models.StepMemberDetails)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	opCtx := requestcontext.WithOperator(ctx)
	res, err := svc.Reset(opCtx, memberID, models.StepMemberDetails)
	require.NoError(t, err)
	assert.Equal(t, models.StepMemberDetails, res.Step)
	assert.False(t, res.Complete)

	_, err = svc.Reset(opCtx, memberID, "sideways")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestFamilyTreeChecksTaxonomyRefs(t *testing.T) {
	ctx := testContext()
	svc, family, tax := newTestServices()
	memberID := bootstrap(t, svc, ctx)
	_, err := svc.CompleteIntro(ctx, memberID)
	require.NoError(t, err)
	_, err = svc.SubmitMemberDetails(ctx, memberID, validDetails(models.MaritalUnmarried, false))
	require.NoError(t, err)

	clan, err := tax.Create(ctx, taxonomymodels.TypeClan, "Vellalar", nil)
	require.NoError(t, err)
	deity, err := tax.Create(ctx, taxonomymodels.TypeClanDeity, "Murugan", nil)
	require.NoError(t, err)

	slots := func(kulam taxonomymodels.Ref) []*models.AncestorSlot {
		return []*models.AncestorSlot{{
			Relation: models.RelationFather, Name: "Karuppan",
			Status: models.StatusDeceased, Clan: kulam,
		}}
	}

	// An ID that names no stored entry is rejected, not persisted.
	_, err = svc.SubmitFamilyTree(ctx, memberID, models.LineageMember,
		slots(taxonomymodels.EntryRef(id.NewEntryID())))
	require.Error(t, err)
	fields := dErrors.FieldsOf(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "father_kulam", fields[0].Field)
	assert.Equal(t, rules.ReasonUnknownEntry, fields[0].Reason)

	saved, err := family.Ancestors(ctx, memberID, models.LineageMember)
	require.NoError(t, err)
	assert.Empty(t, saved)
	overview, err := svc.Overview(ctx, memberID)
	require.NoError(t, err)
	assert.Equal(t, models.StepMemberFamilyTree, overview.CurrentStep)

	// A stored entry of the wrong type is just as unusable for the dropdown.
	_, err = svc.SubmitFamilyTree(ctx, memberID, models.LineageMember,
		slots(taxonomymodels.EntryRef(deity.ID)))
	require.Error(t, err)
	fields = dErrors.FieldsOf(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "father_kulam", fields[0].Field)
	assert.Equal(t, rules.ReasonWrongEntryType, fields[0].Reason)

	res, err := svc.SubmitFamilyTree(ctx, memberID, models.LineageMember,
		slots(taxonomymodels.EntryRef(clan.ID)))
	require.NoError(t, err)
	assert.Equal(t, models.StepCompleted, res.Step)
}
