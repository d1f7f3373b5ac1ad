package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "kinship/pkg/domain"
)

func TestParseRef(t *testing.T) {
	entryID := id.EntryID(uuid.New())

	t.Run("empty pair yields zero ref", func(t *testing.T) {
		ref, err := ParseRef("", "")
		require.NoError(t, err)
		assert.True(t, ref.IsZero())
		assert.Equal(t, "", ref.Value())
	})

	t.Run("entry id yields entry ref", func(t *testing.T) {
		ref, err := ParseRef(entryID.String(), "")
		require.NoError(t, err)
		got, ok := ref.Entry()
		require.True(t, ok)
		assert.Equal(t, entryID, got)
		assert.Equal(t, entryID.String(), ref.Value())
	})

	t.Run("other sentinel carries override text", func(t *testing.T) {
		ref, err := ParseRef("other", "Agni Kulam")
		require.NoError(t, err)
		text, ok := ref.OtherText()
		require.True(t, ok)
		assert.Equal(t, "Agni Kulam", text)
		assert.Equal(t, OtherValue, ref.Value())
	})

	t.Run("sentinel match is case-insensitive", func(t *testing.T) {
		ref, err := ParseRef("Other", "Agni Kulam")
		require.NoError(t, err)
		_, ok := ref.OtherText()
		assert.True(t, ok)
	})

	t.Run("override text with concrete entry is rejected", func(t *testing.T) {
		_, err := ParseRef(entryID.String(), "stray text")
		require.Error(t, err)
	})

	t.Run("override text with no selection is rejected", func(t *testing.T) {
		_, err := ParseRef("", "stray text")
		require.Error(t, err)
	})

	t.Run("malformed entry id is rejected", func(t *testing.T) {
		_, err := ParseRef("not-a-uuid", "")
		require.Error(t, err)
	})
}

func TestNewEntryInvariants(t *testing.T) {
	now := time.Now()

	t.Run("rejects reserved other value", func(t *testing.T) {
		_, err := NewEntry(id.NewEntryID(), TypeClan, "Other", nil, now)
		require.Error(t, err)
	})

	t.Run("rejects parent on parentless type", func(t *testing.T) {
		parent := id.NewEntryID()
		_, err := NewEntry(id.NewEntryID(), TypeClan, "Iyer", &parent, now)
		require.Error(t, err)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		e, err := NewEntry(id.NewEntryID(), TypeClan, "  Iyer  ", nil, now)
		require.NoError(t, err)
		assert.Equal(t, "Iyer", e.Value)
	})

	t.Run("designated parent types", func(t *testing.T) {
		p, ok := TypeSubClan.ParentType()
		require.True(t, ok)
		assert.Equal(t, TypeClanDeity, p)

		p, ok = TypeDepartment.ParentType()
		require.True(t, ok)
		assert.Equal(t, TypeDegree, p)

		_, ok = TypeClanDeity.ParentType()
		assert.False(t, ok)
	})
}
