package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	t.Run("rejects malformed input", func(t *testing.T) {
		for _, s := range []string{"", "not-a-uuid", "1234"} {
			_, err := ParseMemberID(s)
			assert.Error(t, err, s)
			_, err = ParseEntryID(s)
			assert.Error(t, err, s)
		}
	})

	t.Run("round trips through string form", func(t *testing.T) {
		memberID := NewMemberID()
		parsed, err := ParseMemberID(memberID.String())
		require.NoError(t, err)
		assert.Equal(t, memberID, parsed)
	})
}

func TestIDJSONEncoding(t *testing.T) {
	entryID := NewEntryID()
	encoded, err := json.Marshal(entryID)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+entryID.String()+`"`, string(encoded))

	var decoded EntryID
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, entryID, decoded)
	assert.False(t, decoded.IsZero())
}
