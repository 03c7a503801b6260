package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags_AddIsIdempotent(t *testing.T) {
	f := NewFlags()

	assert.True(t, f.Add(CategoryContent, "Critical scam phrase: send money"))
	assert.False(t, f.Add(CategoryContent, "Critical scam phrase: send money"))

	assert.Equal(t, []string{"Critical scam phrase: send money"}, f.Get(CategoryContent))
	assert.Equal(t, 1, f.Total())
}

func TestFlags_PreservesInsertionOrder(t *testing.T) {
	f := NewFlags()
	f.Add(CategoryFinancial, "b")
	f.Add(CategoryFinancial, "a")
	f.Add(CategoryFinancial, "b")
	f.Add(CategoryFinancial, "c")

	assert.Equal(t, []string{"b", "a", "c"}, f.Get(CategoryFinancial))
}

func TestFlags_IgnoresEmptyMessage(t *testing.T) {
	f := NewFlags()
	assert.False(t, f.Add(CategoryContent, ""))
	assert.Equal(t, 0, f.Count(CategoryContent))
}

func TestFlags_UnknownCategoryCreated(t *testing.T) {
	f := NewFlags()
	f.Add(Category("custom"), "something odd")

	assert.Equal(t, 1, f.Count(Category("custom")))
	cats := f.Categories()
	require.Len(t, cats, 6)
	assert.Equal(t, Categories(), cats[:5])
	assert.Equal(t, Category("custom"), cats[5])
}

func TestFlags_SnapshotIsIndependent(t *testing.T) {
	f := NewFlags()
	f.Add(CategoryVerification, "one")

	snap := f.Snapshot()
	f.Add(CategoryVerification, "two")

	assert.Equal(t, []string{"one"}, snap.Get(CategoryVerification))
	assert.Equal(t, 2, f.Count(CategoryVerification))
}

func TestFlags_JSONRoundTripKeepsOrder(t *testing.T) {
	f := NewFlags()
	f.Add(CategoryFinancial, "Financial red flag: bitcoin")
	f.Add(Category("zeta"), "z")
	f.Add(Category("alpha"), "a")

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"acquisition": [],
		"content": [],
		"verification": [],
		"financial": ["Financial red flag: bitcoin"],
		"intelligence": [],
		"zeta": ["z"],
		"alpha": ["a"]
	}`, string(data))
	assert.Regexp(t, `^\{"acquisition":`, string(data))

	var back Flags
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"Financial red flag: bitcoin"}, back.Get(CategoryFinancial))
	assert.Equal(t, Category("alpha"), back.Categories()[5])
}
