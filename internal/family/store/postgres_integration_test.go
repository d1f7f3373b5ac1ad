//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinship/internal/family/models"
	"kinship/internal/family/store"
	taxonomy "kinship/internal/taxonomy/models"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/sentinel"
	"kinship/pkg/requestcontext"
	"kinship/pkg/testutil/containers"
)

func TestPostgresFamilyStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	st := store.NewPostgres(pg.DB)
	now := time.Now().UTC().Truncate(time.Second)
	ctx := requestcontext.WithTime(context.Background(), now)

	createMember := func(t *testing.T) *models.Member {
		t.Helper()
		member := models.NewMember(id.NewMemberID(), now)
		require.NoError(t, st.CreateMember(ctx, member))
		return member
	}

	t.Run("member compare-and-swap", func(t *testing.T) {
		member := createMember(t)
		member.Name = "Ramasamy"
		require.NoError(t, st.UpdateMember(ctx, member))
		assert.EqualValues(t, 2, member.Version)

		stale := *member
		stale.Version = 1
		assert.ErrorIs(t, st.UpdateMember(ctx, &stale), sentinel.ErrVersionMismatch)

		ghost := models.NewMember(id.NewMemberID(), now)
		assert.ErrorIs(t, st.UpdateMember(ctx, ghost), sentinel.ErrNotFound)

		loaded, err := st.FindMember(ctx, member.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ramasamy", loaded.Name)
		assert.EqualValues(t, 2, loaded.Version)
	})

	t.Run("spouse row lifecycle", func(t *testing.T) {
		member := createMember(t)
		spouse := &models.Spouse{
			MemberID: member.ID, Name: "Meenakshi", Gender: models.GenderFemale,
			CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, st.SaveSpouse(ctx, spouse))

		spouse.Name = "Meenakshi Sundaram"
		spouse.GenderExplicit = true
		require.NoError(t, st.SaveSpouse(ctx, spouse))

		loaded, err := st.FindSpouse(ctx, member.ID)
		require.NoError(t, err)
		assert.Equal(t, "Meenakshi Sundaram", loaded.Name)
		assert.True(t, loaded.GenderExplicit)

		require.NoError(t, st.SaveAncestors(ctx, member.ID, models.LineageSpouse, []*models.AncestorSlot{{
			Relation: models.RelationFather, Name: "Sundaram",
			Status: models.StatusDeceased, CreatedAt: now, UpdatedAt: now,
		}}))

		require.NoError(t, st.DeleteSpouse(ctx, member.ID))
		_, err = st.FindSpouse(ctx, member.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		slots, err := st.ListAncestors(ctx, member.ID, models.LineageSpouse)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("children replace keeps submission order", func(t *testing.T) {
		member := createMember(t)
		dob := now.AddDate(-10, 0, 0)
		first := []*models.Child{
			{ID: id.NewChildID(), MemberID: member.ID, Index: 0, Name: "Arun",
				Gender: models.GenderMale, DateOfBirth: &dob,
				Relationship: models.RelationshipSon, CreatedAt: now, UpdatedAt: now},
			{ID: id.NewChildID(), MemberID: member.ID, Index: 1, Name: "Kavya",
				Gender: models.GenderFemale, DateOfBirth: &dob,
				Relationship: models.RelationshipDaughter, CreatedAt: now, UpdatedAt: now},
		}
		require.NoError(t, st.ReplaceChildren(ctx, member.ID, first))

		reordered := []*models.Child{first[1], first[0]}
		reordered[0].Index = 0
		reordered[1].Index = 1
		require.NoError(t, st.ReplaceChildren(ctx, member.ID, reordered))

		listed, err := st.ListChildren(ctx, member.ID)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, "Kavya", listed[0].Name)
		assert.Equal(t, first[1].ID, listed[0].ID)
	})

	t.Run("ancestor slots upsert and taxonomy pair round trip", func(t *testing.T) {
		member := createMember(t)
		slot := &models.AncestorSlot{
			Relation: models.RelationFather, Name: "Karuppan",
			NativePlace: "Madurai", ResidencePlace: "Madurai", SameAsNative: true,
			Status:    models.StatusDeceased,
			Clan:      taxonomy.OtherRef("Vellalar"),
			CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, st.SaveAncestors(ctx, member.ID, models.LineageMember, []*models.AncestorSlot{slot}))

		slot.Status = models.StatusLive
		require.NoError(t, st.SaveAncestors(ctx, member.ID, models.LineageMember, []*models.AncestorSlot{slot}))

		slots, err := st.ListAncestors(ctx, member.ID, models.LineageMember)
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, models.StatusLive, slots[0].Status)
		text, ok := slots[0].Clan.OtherText()
		require.True(t, ok)
		assert.Equal(t, "Vellalar", text)
		assert.True(t, slots[0].SubClan.IsZero())
	})
}
