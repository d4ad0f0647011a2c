package harness

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-checker/digest"
	"github.com/ethereum-optimism/infra/op-checker/types"
)

func buildUnit(t *testing.T, clock Clock, opts ...UnitOption) *Unit {
	t.Helper()
	u, err := NewUnit("calculator", append([]UnitOption{WithClock(clock)}, opts...)...)
	require.NoError(t, err)

	test, err := NewTest("Addition")
	require.NoError(t, err)
	require.NoError(t, test.AddSubtest(newSubtest(t, "one plus one", Static(types.Passed))))
	require.NoError(t, test.AddSubtest(newSubtest(t, "two plus two", Static(types.Failed))))
	require.NoError(t, u.AddTest(test))
	return u
}

func splitDigest(t *testing.T, report string) (body, hex string) {
	t.Helper()
	idx := strings.LastIndex(report, DigestPrefix)
	require.GreaterOrEqual(t, idx, 0, "report has no digest line")
	return report[:idx], strings.TrimSuffix(report[idx+len(DigestPrefix):], "\n")
}

func TestNewUnitValidation(t *testing.T) {
	_, err := NewUnit("")
	assert.True(t, types.IsInvalidArgument(err))

	_, err = NewUnit("narrow", WithUnitWidth(79))
	assert.True(t, types.IsInvalidArgument(err))

	_, err = NewUnit("no clock", WithClock(nil))
	assert.True(t, types.IsInvalidArgument(err))

	_, err = NewUnit("bad digest", WithDigestSize(digest.Size(100)))
	assert.True(t, types.IsInvalidArgument(err))

	u, err := NewUnit("ok")
	require.NoError(t, err)
	assert.True(t, types.IsInvalidArgument(u.AddTest(nil)))
}

func TestUnitRunAggregates(t *testing.T) {
	u := buildUnit(t, fixedClock{refTime})

	second, err := NewTest("Subtraction")
	require.NoError(t, err)
	require.NoError(t, second.AddSubtest(newSubtest(t, "three minus one", Static(types.Passed))))
	require.NoError(t, u.AddTest(second))

	tests := u.Tests()
	require.NoError(t, u.Run())
	assert.Equal(t, 2, u.Passed())
	assert.Equal(t, 3, u.Total())
	assert.Equal(t, tests, u.Tests())

	// a second run must not double count
	require.NoError(t, u.Run())
	assert.Equal(t, 2, u.Passed())
	assert.Equal(t, 3, u.Total())
}

func TestUnitRunElapsed(t *testing.T) {
	clock := &steppingClock{t: refTime, step: 1500 * time.Millisecond}
	u := buildUnit(t, clock)
	require.NoError(t, u.Run())
	assert.Equal(t, 1500*time.Millisecond, u.Elapsed())
}

func TestUnitRunErrorKeepsCounters(t *testing.T) {
	u := buildUnit(t, fixedClock{refTime})
	require.NoError(t, u.Run())

	check := &countingCheck{err: errBoom}
	broken, err := NewTest("Broken")
	require.NoError(t, err)
	require.NoError(t, broken.AddSubtest(newSubtest(t, "explodes", check)))
	require.NoError(t, u.AddTest(broken))

	err = u.Run()
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), `unit "calculator"`)
	assert.Equal(t, 1, u.Passed())
	assert.Equal(t, 2, u.Total())
}

func TestUnitSetup(t *testing.T) {
	calls := 0
	u, err := NewUnit("guarded", WithUnitSetup(func() error {
		calls++
		return errBoom
	}))
	require.NoError(t, err)
	require.ErrorIs(t, u.Run(), errBoom)
	assert.Equal(t, 1, calls)
}

func TestUnitRender(t *testing.T) {
	u := buildUnit(t, fixedClock{refTime})
	require.NoError(t, u.Run())

	report, err := u.Render()
	require.NoError(t, err)

	rule := strings.Repeat("=", MinWidth)
	header := "CALCULATOR (2024-03-09 14:05:06)"
	dash := strings.Repeat("-", MinWidth)
	expectedBody := rule + "\n" +
		strings.Repeat(" ", (MinWidth-len(header))/2) + header + "\n" +
		rule + "\n" +
		"Test #1 - Addition\n" +
		dash + "\n" +
		"\t1. one plus one " + strings.Repeat(".", 20) + " Passed\n" +
		"\t2. two plus two " + strings.Repeat(".", 20) + " Failed\n" +
		dash + "\n" +
		"Passed: 1/2 => 50 %\n" +
		rule + "\n" +
		"Average Execution Time : 0 ms\n" +
		"Total Execution Time   : 0 ms\n" +
		"Total Passed           : 1/2 => 50 %\n" +
		rule + "\n"

	body, hex := splitDigest(t, report)
	assert.Equal(t, expectedBody, body)

	expectedHex, err := digest.ComputeHex([]byte(expectedBody), digest.Bits256)
	require.NoError(t, err)
	assert.Equal(t, expectedHex, hex)
	assert.Equal(t, expectedHex, u.Digest())
	assert.True(t, strings.HasSuffix(report, "\n"))
}

func TestUnitRenderAverage(t *testing.T) {
	clock := &steppingClock{t: refTime, step: 25 * time.Millisecond}
	u := buildUnit(t, clock)
	extra, err := NewTest("Extra")
	require.NoError(t, err)
	require.NoError(t, u.AddTest(extra))
	extra2, err := NewTest("Extra 2")
	require.NoError(t, err)
	require.NoError(t, u.AddTest(extra2))

	require.NoError(t, u.Run())
	report, err := u.Render()
	require.NoError(t, err)
	assert.Contains(t, report, "Average Execution Time : 8.33 ms\n")
	assert.Contains(t, report, "Total Execution Time   : 25 ms\n")
	assert.Contains(t, report, "Passed: 0/0 => 0 %\n")
}

func TestUnitDigestStable(t *testing.T) {
	first := buildUnit(t, fixedClock{refTime})
	second := buildUnit(t, fixedClock{refTime})
	require.NoError(t, first.Run())
	require.NoError(t, second.Run())

	a, err := first.Render()
	require.NoError(t, err)
	b, err := second.Render()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, first.Digest(), second.Digest())

	later := buildUnit(t, fixedClock{refTime.Add(time.Second)})
	require.NoError(t, later.Run())
	_, err = later.Render()
	require.NoError(t, err)
	assert.NotEqual(t, first.Digest(), later.Digest())
}

func TestUnitDigestSize(t *testing.T) {
	u := buildUnit(t, fixedClock{refTime}, WithDigestSize(digest.Bits512))
	require.NoError(t, u.Run())
	_, err := u.Render()
	require.NoError(t, err)
	assert.Len(t, u.Digest(), digest.Bits512.Bytes()*2)
}

func TestEmptyUnitRender(t *testing.T) {
	u, err := NewUnit("empty", WithClock(fixedClock{refTime}))
	require.NoError(t, err)
	require.NoError(t, u.Run())
	report, err := u.Render()
	require.NoError(t, err)
	assert.Contains(t, report, "Average Execution Time : 0 ms\n")
	assert.Contains(t, report, "Total Passed           : 0/0 => 0 %\n")
}

func TestUnitSnapshot(t *testing.T) {
	u := buildUnit(t, fixedClock{refTime})
	require.NoError(t, u.Run())
	_, err := u.Render()
	require.NoError(t, err)

	snap := u.Snapshot()
	assert.Equal(t, "calculator", snap.Description)
	assert.Equal(t, 1, snap.Passed)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, u.Digest(), snap.Digest)
}
