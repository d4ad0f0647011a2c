package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-checker/harness"
)

func entry(description, runID string) Entry {
	return Entry{
		RunID:  runID,
		Report: harness.Report{Description: description},
	}
}

func TestStore(t *testing.T) {
	store, err := NewStore(2)
	require.NoError(t, err)

	store.Put(entry("alpha", "run-1"))
	store.Put(entry("beta", "run-1"))
	store.Put(entry("alpha", "run-2"))

	got, ok := store.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "run-2", got.RunID)
	assert.Equal(t, 2, store.Len())

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "beta", list[0].Report.Description)
	assert.Equal(t, "alpha", list[1].Report.Description)

	store.Put(entry("gamma", "run-2"))
	_, ok = store.Get("beta")
	assert.False(t, ok, "least recently written unit is evicted")
}

func TestNewStoreDefaultSize(t *testing.T) {
	store, err := NewStore(0)
	require.NoError(t, err)
	for i := 0; i < DefaultStoreSize+1; i++ {
		store.Put(entry(string(rune('a'+i%26))+string(rune('a'+i/26)), "run"))
	}
	assert.Equal(t, DefaultStoreSize, store.Len())
}
