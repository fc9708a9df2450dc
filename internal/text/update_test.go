package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/internal/posid"
)

func requireInvariants(t *testing.T, m *Metadata) {
	t.Helper()
	ids := m.IDs()
	require.Equal(t, len(ids), len([]rune(m.Value())), "ids and value must stay the same length")
	for i := 1; i < len(ids); i++ {
		require.Equal(t, -1, posid.Compare(ids[i-1], ids[i]), "ids must be strictly increasing")
	}
}

func TestApplyUpdate_InsertIntoEmpty(t *testing.T) {
	m := NewMetadata()
	value, change, patch := ApplyUpdate(m, []Splice{{Index: 0, Remove: 0, Text: "ab"}}, 1, 1)

	assert.Equal(t, "ab", value)
	assert.Equal(t, []ChangePart{{Index: 0, Removed: "", Inserted: "ab"}}, change)
	require.Len(t, patch, 1)
	assert.Empty(t, patch[0].RemovedIDs)
	assert.Len(t, patch[0].InsertedIDs, 2)
	assert.Equal(t, "ab", patch[0].InsertedText)
	requireInvariants(t, m)
}

func TestApplyUpdate_ReplaceMiddle(t *testing.T) {
	m := NewMetadata()
	ApplyUpdate(m, []Splice{{Text: "hello"}}, 1, 1)

	value, change, patch := ApplyUpdate(m, []Splice{{Index: 1, Remove: 3, Text: "ipp"}}, 1, 2)
	assert.Equal(t, "hippo", value)
	assert.Equal(t, []ChangePart{{Index: 1, Removed: "ell", Inserted: "ipp"}}, change)
	require.Len(t, patch, 1)
	assert.Len(t, patch[0].RemovedIDs, 3)
	assert.Equal(t, "ell", patch[0].RemovedText)
	requireInvariants(t, m)
}

func TestApplyUpdate_NegativeIndex(t *testing.T) {
	m := NewMetadata()
	ApplyUpdate(m, []Splice{{Text: "abcd"}}, 1, 1)

	value, change, _ := ApplyUpdate(m, []Splice{{Index: -1, Remove: 1, Text: "X"}}, 1, 2)
	assert.Equal(t, "abcX", value)
	assert.Equal(t, []ChangePart{{Index: 3, Removed: "d", Inserted: "X"}}, change)
}

func TestApplyUpdate_ClampsOutOfRange(t *testing.T) {
	m := NewMetadata()
	ApplyUpdate(m, []Splice{{Text: "ab"}}, 1, 1)

	value, change, _ := ApplyUpdate(m, []Splice{{Index: 10, Remove: 5, Text: "!"}}, 1, 2)
	assert.Equal(t, "ab!", value)
	assert.Equal(t, []ChangePart{{Index: 2, Removed: "", Inserted: "!"}}, change)

	value, change, _ = ApplyUpdate(m, []Splice{{Index: -99, Remove: 99, Text: ""}}, 1, 3)
	assert.Equal(t, "", value)
	assert.Equal(t, []ChangePart{{Index: 0, Removed: "ab!", Inserted: ""}}, change)
	requireInvariants(t, m)
}

func TestApplyUpdate_BatchSplicesSeeEarlierEffects(t *testing.T) {
	m := NewMetadata()
	value, change, patch := ApplyUpdate(m, []Splice{
		{Index: 0, Text: "ac"},
		{Index: 1, Text: "b"},
	}, 1, 1)

	assert.Equal(t, "abc", value)
	assert.Equal(t, []ChangePart{
		{Index: 0, Removed: "", Inserted: "ac"},
		{Index: 1, Removed: "", Inserted: "b"},
	}, change)
	assert.Len(t, patch, 2)
	requireInvariants(t, m)
}

func TestApplyUpdate_EmptySpliceList(t *testing.T) {
	m := NewMetadata()
	value, change, patch := ApplyUpdate(m, nil, 1, 1)
	assert.Equal(t, "", value)
	assert.Empty(t, change)
	assert.Empty(t, patch)
}

func TestApplyUpdate_Unicode(t *testing.T) {
	m := NewMetadata()
	ApplyUpdate(m, []Splice{{Text: "héllo"}}, 1, 1)

	value, change, _ := ApplyUpdate(m, []Splice{{Index: 1, Remove: 1, Text: "e"}}, 1, 2)
	assert.Equal(t, "hello", value)
	assert.Equal(t, []ChangePart{{Index: 1, Removed: "é", Inserted: "e"}}, change)
	requireInvariants(t, m)
}
