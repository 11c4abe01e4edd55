package tab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enginepost/tabulate/tab/internal/testutil"
)

func newXY(t *testing.T) *Tabulation {
	t.Helper()
	table, err := New(testutil.XYData(), testutil.XYRanges(), testutil.XYOrder())
	require.NoError(t, err)
	return table
}

func TestNew_FlatConstructionRoundTrip(t *testing.T) {
	// GIVEN the canonical 3x2 grid
	table := newXY(t)

	// THEN shape, size, and every flat cell read back unchanged
	assert.Equal(t, []int{3, 2}, table.Shape())
	assert.Equal(t, 6, table.Size())
	assert.Equal(t, 2, table.Ndim())
	for i, want := range testutil.XYData() {
		got, err := table.Value(i)
		require.NoError(t, err)
		assert.Equal(t, want, got, "flat index %d", i)
	}
}

func TestNew_Validation(t *testing.T) {
	ranges := testutil.XYRanges()
	order := testutil.XYOrder()

	// Flat length mismatch
	_, err := New([]float64{1, 2, 3}, ranges, order)
	assert.ErrorIs(t, err, ErrShape)

	// Non-ascending samples
	_, err = New(testutil.XYData(), map[string][]float64{"x": {2, 1, 0}, "y": {0, 1}}, order)
	assert.ErrorIs(t, err, ErrInvariant)

	// Duplicate samples
	_, err = New(testutil.XYData(), map[string][]float64{"x": {0, 1, 1}, "y": {0, 1}}, order)
	assert.ErrorIs(t, err, ErrInvariant)

	// Empty axis
	_, err = New(nil, map[string][]float64{"x": {}, "y": {0, 1}}, order)
	assert.ErrorIs(t, err, ErrInvariant)

	// Order not a permutation of the range keys
	_, err = New(testutil.XYData(), ranges, []string{"x", "q"})
	assert.ErrorIs(t, err, ErrInvariant)
	_, err = New(testutil.XYData(), ranges, []string{"x"})
	assert.ErrorIs(t, err, ErrInvariant)
	_, err = New(testutil.XYData(), ranges, []string{"x", "y", "z"})
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestNewShaped_ChecksDimensions(t *testing.T) {
	table, err := NewShaped(testutil.XYData(), []int{3, 2}, testutil.XYRanges(), testutil.XYOrder())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, table.Shape())

	_, err = NewShaped(testutil.XYData(), []int{2, 3}, testutil.XYRanges(), testutil.XYOrder())
	assert.ErrorIs(t, err, ErrShape)

	_, err = NewShaped(testutil.XYData(), []int{6}, testutil.XYRanges(), testutil.XYOrder())
	assert.ErrorIs(t, err, ErrShape)
}

func TestFromPoints_BuildsSortedGrid(t *testing.T) {
	// GIVEN the 3x2 grid's cells in scrambled order
	var points []Point
	for _, x := range []float64{2, 0, 1} {
		for _, y := range []float64{1, 0} {
			points = append(points, Point{Coords: map[string]float64{"x": x, "y": y}, Value: 2*x + y})
		}
	}

	// WHEN constructed from points
	table, err := FromPoints(points, testutil.XYOrder())
	require.NoError(t, err)

	// THEN it equals the canonical table
	assert.True(t, table.Equal(newXY(t)))
}

func TestFromPoints_RejectsIncompleteGrid(t *testing.T) {
	points := []Point{
		{Coords: map[string]float64{"x": 0, "y": 0}, Value: 0},
		{Coords: map[string]float64{"x": 1, "y": 1}, Value: 3},
	}
	_, err := FromPoints(points, testutil.XYOrder())
	assert.ErrorIs(t, err, ErrShape)
}

func TestIndexMapping_FlatAndNested(t *testing.T) {
	table := newXY(t)

	// Flat position 3 is nested (1, 1) in a (3, 2) grid
	nested, err := table.Unravel(3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, nested)

	flat, err := table.FlatIndex([]int{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 3, flat)

	v, err := table.ValueAt(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	// Out-of-range access fails eagerly
	_, err = table.Unravel(6)
	assert.ErrorIs(t, err, ErrIndex)
	_, err = table.FlatIndex([]int{3, 0})
	assert.ErrorIs(t, err, ErrIndex)
	_, err = table.FlatIndex([]int{0})
	assert.ErrorIs(t, err, ErrIndex)
	_, err = table.Value(-1)
	assert.ErrorIs(t, err, ErrIndex)
}

func TestInputAt_ReturnsCoordinateByAxis(t *testing.T) {
	table := newXY(t)

	in, err := table.InputAt(3)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"x": 1, "y": 1}, in)

	in, err = table.InputAtIndex([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"x": 2, "y": 0}, in)
}

func TestSetValue_UpdatesInterpolation(t *testing.T) {
	// GIVEN the canonical table
	table := newXY(t)

	// WHEN a cell changes
	require.NoError(t, table.SetValue(3, 30))

	// THEN both element access and interpolation see the new value
	v, err := table.ValueAt(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
	got, err := table.Interpolate(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got)

	require.NoError(t, table.SetValueAt([]int{1, 1}, 3))
	assert.True(t, table.Equal(newXY(t)))
}

func TestSetValues_BulkWrite(t *testing.T) {
	// GIVEN the canonical table
	table := newXY(t)

	// WHEN overwriting the middle x plane in one call
	require.NoError(t, table.SetValues(2, []float64{20, 30}))

	// THEN element access and interpolation see the new values
	assert.Equal(t, []float64{0, 1, 20, 30, 4, 5}, table.Data())
	got, err := table.Interpolate(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 20.0, got)

	// Out-of-range runs are rejected without partial writes
	err = table.SetValues(4, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrIndex)
	err = table.SetValues(-1, []float64{1})
	assert.ErrorIs(t, err, ErrIndex)
	assert.Equal(t, []float64{0, 1, 20, 30, 4, 5}, table.Data())
}

func TestSetOrder_TransposesContent(t *testing.T) {
	// GIVEN the canonical table and a probe coordinate
	table := newXY(t)
	before, err := table.Interpolate(1, 1)
	require.NoError(t, err)

	// WHEN the nesting order flips
	require.NoError(t, table.SetOrder([]string{"y", "x"}))

	// THEN querying with reordered components returns the same value
	after, err := table.Interpolate(1, 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []int{2, 3}, table.Shape())

	// AND the flat stream is transposed
	assert.Equal(t, []float64{0, 2, 4, 1, 3, 5}, table.Data())

	// AND flipping back restores the original table
	require.NoError(t, table.SetOrder([]string{"x", "y"}))
	assert.True(t, table.Equal(newXY(t)))
}

func TestSetOrder_RejectsNonPermutations(t *testing.T) {
	table := newXY(t)
	assert.ErrorIs(t, table.SetOrder([]string{"x"}), ErrInvariant)
	assert.ErrorIs(t, table.SetOrder([]string{"x", "z"}), ErrInvariant)
	assert.ErrorIs(t, table.SetOrder([]string{"x", "x"}), ErrInvariant)
	assert.ErrorIs(t, table.SetOrder([]string{"x", "y", "z"}), ErrInvariant)
}

func TestEqual_IsOrderSensitive(t *testing.T) {
	// GIVEN two tables holding the same grid under different nesting
	a := newXY(t)
	b := newXY(t)
	require.NoError(t, b.SetOrder([]string{"y", "x"}))

	// THEN they compare unequal even though content matches
	assert.False(t, a.Equal(b))
	require.NoError(t, b.SetOrder([]string{"x", "y"}))
	assert.True(t, a.Equal(b))
}

func TestEqual_DetectsDataAndRangeDrift(t *testing.T) {
	a := newXY(t)

	b := newXY(t)
	require.NoError(t, b.SetValue(0, 42))
	assert.False(t, a.Equal(b))

	c, err := New(testutil.XYData(), map[string][]float64{"x": {0, 1, 3}, "y": {0, 1}}, testutil.XYOrder())
	require.NoError(t, err)
	assert.False(t, a.Equal(c))

	assert.False(t, a.Equal(nil))
}

func TestCopy_IsDeep(t *testing.T) {
	// GIVEN a copy of the canonical table
	a := newXY(t)
	b := a.Copy()
	require.True(t, a.Equal(b))

	// WHEN the copy mutates
	require.NoError(t, b.SetValue(0, 99))

	// THEN the original is untouched
	v, err := a.Value(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
	assert.False(t, a.Equal(b))
}

func TestRange_UnknownAxisFails(t *testing.T) {
	table := newXY(t)
	_, err := table.Range("nope")
	assert.ErrorIs(t, err, ErrLookup)

	samples, err := table.Range("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, samples)
}
