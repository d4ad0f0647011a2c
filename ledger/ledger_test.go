package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

func TestLedgerRecord(t *testing.T) {
	l, err := OpenMemory(nil)
	require.NoError(t, err)
	defer l.Close()

	_, found, err := l.Last("alpha")
	require.NoError(t, err)
	assert.False(t, found)

	first := Record{Unit: "alpha", RunID: "run-1", Digest: "aa", Passed: 1, Total: 2}
	_, found, err = l.Record(first)
	require.NoError(t, err)
	assert.False(t, found)

	second := Record{Unit: "alpha", RunID: "run-2", Digest: "bb", Passed: 2, Total: 2}
	prev, found, err := l.Record(second)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first, prev)
	assert.False(t, prev.SameOutcome(second))

	last, found, err := l.Last("alpha")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "run-2", last.RunID)
}

func TestLedgerAll(t *testing.T) {
	l, err := OpenMemory(nil)
	require.NoError(t, err)
	defer l.Close()

	for _, unit := range []string{"beta", "alpha"} {
		_, _, err := l.Record(Record{Unit: unit, Digest: unit})
		require.NoError(t, err)
	}
	all, err := l.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Unit)
	assert.Equal(t, "beta", all[1].Unit)
}

func TestLedgerRejectsEmptyUnit(t *testing.T) {
	l, err := OpenMemory(nil)
	require.NoError(t, err)
	defer l.Close()

	_, _, err = l.Record(Record{})
	assert.True(t, types.IsInvalidArgument(err))
}

func TestLedgerPersists(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, nil)
	require.NoError(t, err)
	_, _, err = l.Record(Record{Unit: "alpha", Digest: "cc", Passed: 3, Total: 4})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()
	rec, found, err := reopened.Last("alpha")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "cc", rec.Digest)
	assert.True(t, rec.SameOutcome(Record{Passed: 3, Total: 4}))

	_, err = Open("", nil)
	assert.True(t, types.IsInvalidArgument(err))
}
