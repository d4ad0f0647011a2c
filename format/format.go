// Package format holds the string helpers shared by the report renderers.
package format

import (
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

// Bar returns ch repeated n times
func Bar(ch rune, n int) (string, error) {
	if n < 0 {
		return "", types.NewInvalidArgumentError("times", "must not be negative")
	}
	if n == 0 {
		return "", nil
	}
	return text.RepeatAndTrim(string(ch), n), nil
}

// MustBar is Bar for widths already validated by the caller
func MustBar(ch rune, n int) string {
	s, err := Bar(ch, n)
	if err != nil {
		panic(err)
	}
	return s
}

// Dots returns a run of n dots, or nothing when n is not positive
func Dots(n int) string {
	if n <= 0 {
		return ""
	}
	return MustBar('.', n)
}

// Width returns the display width of s, ignoring escape sequences
func Width(s string) int {
	return text.RuneWidthWithoutEscSequences(s)
}

// Center left-pads s so that it sits in the middle of a line of the given
// width. No trailing padding is added; s wider than width is returned as is.
func Center(s string, width int) string {
	pad := (width - Width(s)) / 2
	if pad <= 0 {
		return s
	}
	return MustBar(' ', pad) + s
}

// Round2 rounds x to two decimal places, ties to even
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// Percent returns 100*passed/total rounded to two decimals.
// An empty set is reported as 0%.
func Percent(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(passed*100) / float64(total))
}

// Ratio returns num/den rounded to two decimals, or 0 when den is 0
func Ratio(num float64, den int) float64 {
	if den == 0 {
		return 0
	}
	return Round2(num / float64(den))
}

// Float prints x with the fewest digits needed, so 50 renders as "50"
// and 33.33 as "33.33".
func Float(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// PassRate renders the "P/T => X %" fragment used by every summary line
func PassRate(passed, total int) string {
	return strconv.Itoa(passed) + "/" + strconv.Itoa(total) + " => " + Float(Percent(passed, total)) + " %"
}
