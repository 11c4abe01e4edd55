package tab

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enginepost/tabulate/tab/internal/testutil"
)

func TestInterpolate_ExactGridPoints(t *testing.T) {
	// GIVEN the z = 2x + y grid
	table := newXY(t)

	// THEN every grid node is reproduced exactly
	for i := 0; i < table.Size(); i++ {
		in, err := table.InputAt(i)
		require.NoError(t, err)
		want, err := table.Value(i)
		require.NoError(t, err)
		got, err := table.Interpolate(in["x"], in["y"])
		require.NoError(t, err)
		assert.Equal(t, want, got, "node x=%v y=%v", in["x"], in["y"])
	}
}

func TestInterpolate_Bilinear(t *testing.T) {
	table := newXY(t)

	// Cell-center query of a bilinear surface
	got, err := table.Interpolate(0.5, 0.5)
	require.NoError(t, err)
	testutil.AssertClose(t, 1.5, got, 1e-12, "z(0.5, 0.5)")

	// Off-center query, still inside the envelope
	got, err = table.Interpolate(1.5, 0.25)
	require.NoError(t, err)
	testutil.AssertClose(t, 3.25, got, 1e-12, "z(1.5, 0.25)")
}

func TestInterpolate_BoundaryPolicies(t *testing.T) {
	table := newXY(t)

	// Fatal (the default) rejects out-of-envelope queries
	_, err := table.Interpolate(3, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// ReturnNaN substitutes NaN
	got, err := table.InterpolateWith(ReturnNaN, 3, 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))

	// Extrapolate continues the outermost cell linearly: z = 2x + y
	got, err = table.InterpolateWith(Extrapolate, 3, 0)
	require.NoError(t, err)
	testutil.AssertClose(t, 6, got, 1e-12, "z(3, 0) extrapolated")

	got, err = table.InterpolateWith(Extrapolate, -1, 0.5)
	require.NoError(t, err)
	testutil.AssertClose(t, -1.5, got, 1e-12, "z(-1, 0.5) extrapolated")
}

func TestSetBoundary_ChangesDefault(t *testing.T) {
	table := newXY(t)
	require.Equal(t, Fatal, table.Boundary())

	table.SetBoundary(ReturnNaN)
	got, err := table.Interpolate(10, 10)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestInterpolate_ComponentCountMismatch(t *testing.T) {
	table := newXY(t)
	_, err := table.Interpolate(1)
	assert.ErrorIs(t, err, ErrShape)
	_, err = table.Interpolate(1, 1, 1)
	assert.ErrorIs(t, err, ErrShape)
}

func TestInterpolate_DegenerateAxisIsIgnored(t *testing.T) {
	// GIVEN a table with a single-sample axis
	table, err := New(
		[]float64{0, 1, 2, 3, 4, 5},
		map[string][]float64{"x": {0, 1, 2}, "y": {0, 1}, "p": {101325}},
		[]string{"x", "y", "p"},
	)
	require.NoError(t, err)

	// WHEN querying with the degenerate component on and off its sample
	got, err := table.Interpolate(0.5, 0.5, 101325)
	require.NoError(t, err)
	testutil.AssertClose(t, 1.5, got, 1e-12, "on-sample degenerate component")

	// THEN a mismatched component is warned about and ignored
	got, err = table.Interpolate(0.5, 0.5, 200000)
	require.NoError(t, err)
	testutil.AssertClose(t, 1.5, got, 1e-12, "off-sample degenerate component")
}

func TestInterpolateAll_Batch(t *testing.T) {
	table := newXY(t)

	got, err := table.InterpolateAll([][]float64{
		{0, 0},
		{1, 1},
		{0.5, 0.5},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	testutil.AssertClose(t, 0, got[0], 1e-12, "z(0, 0)")
	testutil.AssertClose(t, 3, got[1], 1e-12, "z(1, 1)")
	testutil.AssertClose(t, 1.5, got[2], 1e-12, "z(0.5, 0.5)")

	// A failing coordinate reports its position in the batch
	_, err = table.InterpolateAll([][]float64{{0, 0}, {9, 9}})
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.ErrorContains(t, err, "coordinate 1")
}

func TestParseBoundaryPolicy(t *testing.T) {
	for name, want := range map[string]BoundaryPolicy{
		"fatal":       Fatal,
		"nan":         ReturnNaN,
		"extrapolate": Extrapolate,
	} {
		got, err := ParseBoundaryPolicy(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}

	_, err := ParseBoundaryPolicy("clamp")
	assert.ErrorIs(t, err, ErrLookup)
	assert.ErrorContains(t, err, "available policies are: extrapolate, fatal, nan")
}
