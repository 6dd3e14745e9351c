package taxlots

import (
	"math"
	"time"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to create a date in 2023, the year most tests use.
func day(month time.Month, d int) Date { return NewDate(2023, month, d) }

// near reports whether two percentages are within tolerance of each other.
func near(got, want Percent, tolerance float64) bool {
	return math.Abs(float64(got-want)) <= tolerance
}

// must is a helper for test to discard the error of a call that cannot fail.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
