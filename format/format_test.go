package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

func TestBar(t *testing.T) {
	s, err := Bar('=', 5)
	require.NoError(t, err)
	assert.Equal(t, "=====", s)

	s, err = Bar('-', 0)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = Bar('-', -1)
	assert.True(t, types.IsInvalidArgument(err))

	assert.Panics(t, func() { MustBar('-', -1) })
}

func TestDots(t *testing.T) {
	assert.Equal(t, "...", Dots(3))
	assert.Equal(t, "", Dots(0))
	assert.Equal(t, "", Dots(-4))
}

func TestCenter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{name: "even padding", input: "ab", width: 6, expected: "  ab"},
		{name: "odd remainder rounds down", input: "ab", width: 7, expected: "  ab"},
		{name: "exact width", input: "abcd", width: 4, expected: "abcd"},
		{name: "wider than line", input: "abcdef", width: 4, expected: "abcdef"},
		{name: "escape sequences ignored", input: "\x1b[31mab\x1b[0m", width: 6, expected: "  \x1b[31mab\x1b[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Center(tt.input, tt.width))
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		passed, total int
		expected      string
	}{
		{1, 2, "50"},
		{1, 3, "33.33"},
		{2, 3, "66.67"},
		{1, 8, "12.5"},
		{3, 3, "100"},
		{0, 0, "0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Float(Percent(tt.passed, tt.total)), "%d/%d", tt.passed, tt.total)
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 2.5, Ratio(5, 2))
	assert.Equal(t, 3.33, Ratio(10, 3))
	assert.Equal(t, 0.0, Ratio(10, 0))
}

func TestPassRate(t *testing.T) {
	assert.Equal(t, "1/2 => 50 %", PassRate(1, 2))
	assert.Equal(t, "0/0 => 0 %", PassRate(0, 0))
}
