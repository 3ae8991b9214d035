package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveEntriesNaming(t *testing.T) {
	entries, err := DeriveEntries(ClientEntryPrefix, []string{
		"components/counter.js",
		"widgets/chart.jsx",
	})
	require.NoError(t, err)

	assert.Equal(t, EntryMap{
		"client__counter": "components/counter.js",
		"client__chart":   "widgets/chart.jsx",
	}, entries)
}

func TestDeriveEntriesCollision(t *testing.T) {
	_, err := DeriveEntries(ActionEntryPrefix, []string{
		"admin/actions.js",
		"shop/actions.js",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action__actions")
	assert.Contains(t, err.Error(), "admin/actions.js")
	assert.Contains(t, err.Error(), "shop/actions.js")
}

func TestDeriveEntriesEmpty(t *testing.T) {
	entries, err := DeriveEntries(ClientEntryPrefix, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTrailingSegment(t *testing.T) {
	assert.Equal(t, "counter", trailingSegment("components/counter.js"))
	assert.Equal(t, "index", trailingSegment("components/index.js"))
	assert.Equal(t, "styles", trailingSegment("styles.css"))
	assert.Equal(t, "plain", trailingSegment("plain"))
}
