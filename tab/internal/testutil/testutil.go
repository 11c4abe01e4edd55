// Package testutil provides shared test fixtures for the tabulation
// engine: the canonical 3x2 example grid used across tab/ tests and a
// tolerant float comparison helper.
package testutil

import (
	"math"
	"testing"
)

// XYRanges is the canonical two-axis example grid: x=[0,1,2], y=[0,1].
func XYRanges() map[string][]float64 {
	return map[string][]float64{
		"x": {0.0, 1.0, 2.0},
		"y": {0.0, 1.0},
	}
}

// XYOrder is the canonical nesting order for XYRanges.
func XYOrder() []string { return []string{"x", "y"} }

// XYData is the canonical flat value stream [0..5] over XYRanges in
// XYOrder: z(x,y) = 2x + y.
func XYData() []float64 { return []float64{0, 1, 2, 3, 4, 5} }

// AssertClose fails the test when got is not within tol of want.
func AssertClose(t *testing.T, want, got, tol float64, msg string) {
	t.Helper()
	if math.IsNaN(want) != math.IsNaN(got) || math.Abs(want-got) > tol {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}
