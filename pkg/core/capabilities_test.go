package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/fbdialect/pkg/core"
)

func TestBaseCapabilities_Complete(t *testing.T) {
	caps := core.BaseCapabilities()
	assert.Empty(t, caps.Missing())
	assert.Equal(t, len(core.Features), caps.Len())
}

func TestFeatures_Unique(t *testing.T) {
	seen := make(map[core.Feature]bool, len(core.Features))
	for _, f := range core.Features {
		assert.False(t, seen[f], "duplicate feature %q", f)
		seen[f] = true
	}
}

func TestCapabilities_With(t *testing.T) {
	base := core.BaseCapabilities()
	next := base.With(map[core.Feature]core.Support{
		core.FeatureLock:                  core.Yes(),
		core.FeatureInsertUpdateDuplicate: core.Keyword("MERGE INTO"),
	})

	assert.False(t, base.Supports(core.FeatureLock), "base must be unchanged")
	assert.True(t, next.Supports(core.FeatureLock))
	assert.Equal(t, "MERGE INTO", next.Value(core.FeatureInsertUpdateDuplicate))
	assert.Empty(t, base.Value(core.FeatureInsertUpdateDuplicate))
}

func TestCapabilities_Unknown(t *testing.T) {
	caps := core.NewCapabilities(map[core.Feature]core.Support{
		core.FeatureLock: core.Yes(),
	})

	_, ok := caps.Lookup("doesNotExist")
	assert.False(t, ok)
	assert.False(t, caps.Supports("doesNotExist"))

	missing := caps.Missing()
	require.NotEmpty(t, missing)
	assert.NotContains(t, missing, core.FeatureLock)
}

func TestCapabilities_ZeroValue(t *testing.T) {
	var caps core.Capabilities
	assert.False(t, caps.Supports(core.FeatureTransactions))
	assert.Len(t, caps.Missing(), len(core.Features))

	next := caps.With(map[core.Feature]core.Support{core.FeatureTransactions: core.Yes()})
	assert.True(t, next.Supports(core.FeatureTransactions))
}

func TestCapabilities_NewCopiesInput(t *testing.T) {
	entries := map[core.Feature]core.Support{core.FeatureLock: core.Yes()}
	caps := core.NewCapabilities(entries)
	entries[core.FeatureLock] = core.No()

	assert.True(t, caps.Supports(core.FeatureLock))
}

func TestCapabilities_FeaturesSorted(t *testing.T) {
	caps := core.NewCapabilities(map[core.Feature]core.Support{
		"b": core.Yes(),
		"a": core.No(),
		"c": core.Yes(),
	})
	assert.Equal(t, []core.Feature{"a", "b", "c"}, caps.Features())
}

func TestResultSet_Helpers(t *testing.T) {
	var nilSet *core.ResultSet
	assert.Equal(t, 0, nilSet.Len())

	rs := &core.ResultSet{
		Columns: []core.Column{{Name: "ID"}, {Name: "NAME"}},
		Rows:    []map[string]any{{"ID": int64(1), "NAME": "a"}},
	}
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, []string{"ID", "NAME"}, rs.ColumnNames())
}
