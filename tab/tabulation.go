package tab

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Tabulation is one dense n-dimensional grid of scalar values over the
// Cartesian product of its axes. Storage is a flat float64 slice in
// row-major order with respect to the nesting order (outer axis first).
type Tabulation struct {
	order  []string
	axes   map[string]*Axis
	data   []float64
	policy BoundaryPolicy
	interp *gridInterpolator
}

// New constructs a tabulation from flat data (row-major over order), the
// per-axis ascending sample sets, and the nesting order of the axes.
// The boundary policy defaults to Fatal.
func New(data []float64, ranges map[string][]float64, order []string) (*Tabulation, error) {
	t := &Tabulation{policy: Fatal}
	if err := t.init(data, ranges, order); err != nil {
		return nil, err
	}
	return t, nil
}

// NewShaped constructs a tabulation from a pre-shaped value stream: the
// flat data plus the explicit dimensions it was shaped with. The shape
// must match the axis lengths in order.
func NewShaped(data []float64, shape []int, ranges map[string][]float64, order []string) (*Tabulation, error) {
	if len(shape) != len(order) {
		return nil, fmt.Errorf("%w: %d dimensions given for %d axes", ErrShape, len(shape), len(order))
	}
	for i, key := range order {
		if n := len(ranges[key]); shape[i] != n {
			return nil, fmt.Errorf("%w: dimension %d has %d entries, axis %q has %d samples",
				ErrShape, i, shape[i], key, n)
		}
	}
	return New(data, ranges, order)
}

// Point is one sampled value at a named coordinate, used by FromPoints.
type Point struct {
	Coords map[string]float64
	Value  float64
}

// FromPoints constructs a tabulation from unordered coordinate/value
// records. The axis sample sets are derived from the unique coordinate
// values; the records must cover the full Cartesian grid exactly once.
func FromPoints(points []Point, order []string) (*Tabulation, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points given", ErrShape)
	}
	ranges := make(map[string][]float64, len(order))
	for _, key := range order {
		seen := make(map[float64]bool)
		var samples []float64
		for _, p := range points {
			v, ok := p.Coords[key]
			if !ok {
				return nil, fmt.Errorf("%w: point missing coordinate %q", ErrShape, key)
			}
			if !seen[v] {
				seen[v] = true
				samples = append(samples, v)
			}
		}
		sort.Float64s(samples)
		ranges[key] = samples
	}

	size := 1
	for _, key := range order {
		size *= len(ranges[key])
	}
	if len(points) != size {
		return nil, fmt.Errorf("%w: %d points for a %d-cell grid", ErrShape, len(points), size)
	}

	shape := make([]int, len(order))
	for i, key := range order {
		shape[i] = len(ranges[key])
	}
	data := make([]float64, size)
	filled := make([]bool, size)
	nested := make([]int, len(order))
	for _, p := range points {
		for i, key := range order {
			j := sort.SearchFloat64s(ranges[key], p.Coords[key])
			nested[i] = j
		}
		flat := ravel(nested, shape)
		if filled[flat] {
			return nil, fmt.Errorf("%w: duplicate point at %v", ErrShape, p.Coords)
		}
		filled[flat] = true
		data[flat] = p.Value
	}
	return New(data, ranges, order)
}

// init validates ranges/order/data and installs them. Shared by the
// constructors and the mutating operations that rebuild the whole grid.
func (t *Tabulation) init(data []float64, ranges map[string][]float64, order []string) error {
	if len(order) != len(ranges) {
		return fmt.Errorf("%w: order has %d entries, ranges has %d axes", ErrInvariant, len(order), len(ranges))
	}
	axes := make(map[string]*Axis, len(order))
	size := 1
	for _, key := range order {
		samples, ok := ranges[key]
		if !ok {
			return fmt.Errorf("%w: axis %q in order but not in ranges", ErrInvariant, key)
		}
		if _, dup := axes[key]; dup {
			return fmt.Errorf("%w: axis %q repeated in order", ErrInvariant, key)
		}
		name := key
		if old, ok := t.axes[key]; ok {
			name = old.Name
		}
		ax, err := newAxis(key, name, samples)
		if err != nil {
			return err
		}
		axes[key] = ax
		size *= ax.Len()
	}
	if len(data) != size {
		return fmt.Errorf("%w: %d values for a %d-cell grid", ErrShape, len(data), size)
	}
	t.order = append([]string(nil), order...)
	t.axes = axes
	t.data = append([]float64(nil), data...)
	t.rebuild()
	return nil
}

// rebuild reconstructs the interpolator from the current data, axis
// order, and boundary policy. Called after every mutation.
func (t *Tabulation) rebuild() {
	t.interp = newGridInterpolator(t.orderedAxes(), t.data)
}

func (t *Tabulation) orderedAxes() []*Axis {
	axes := make([]*Axis, len(t.order))
	for i, key := range t.order {
		axes[i] = t.axes[key]
	}
	return axes
}

// Order returns the axis nesting order (outer axis first).
func (t *Tabulation) Order() []string {
	return append([]string(nil), t.order...)
}

// SetOrder reorders the axis nesting, transposing the stored data so
// that content is unchanged. The new order must be a permutation of the
// current axis keys.
func (t *Tabulation) SetOrder(order []string) error {
	if len(order) != len(t.order) {
		return fmt.Errorf("%w: new order has %d axes, table has %d", ErrInvariant, len(order), len(t.order))
	}
	perm := make([]int, len(order)) // perm[i] = position of order[i] in the old order
	seen := make(map[string]bool, len(order))
	for i, key := range order {
		if seen[key] {
			return fmt.Errorf("%w: axis %q repeated in new order", ErrInvariant, key)
		}
		seen[key] = true
		old := -1
		for j, k := range t.order {
			if k == key {
				old = j
				break
			}
		}
		if old < 0 {
			return fmt.Errorf("%w: axis %q not found in table (axes: %v)", ErrInvariant, key, t.order)
		}
		perm[i] = old
	}

	oldShape := t.shape()
	newShape := make([]int, len(order))
	for i := range order {
		newShape[i] = oldShape[perm[i]]
	}
	newData := make([]float64, len(t.data))
	oldNested := make([]int, len(order))
	for flat := 0; flat < len(newData); flat++ {
		nested := unravel(flat, newShape)
		for i, p := range perm {
			oldNested[p] = nested[i]
		}
		newData[flat] = t.data[ravel(oldNested, oldShape)]
	}
	t.order = append([]string(nil), order...)
	t.data = newData
	t.rebuild()
	return nil
}

// Ranges returns a copy of the per-axis sample sets.
func (t *Tabulation) Ranges() map[string][]float64 {
	out := make(map[string][]float64, len(t.axes))
	for key, ax := range t.axes {
		out[key] = append([]float64(nil), ax.Samples...)
	}
	return out
}

// Range returns a copy of one axis's sample set.
func (t *Tabulation) Range(key string) ([]float64, error) {
	ax, ok := t.axes[key]
	if !ok {
		return nil, fmt.Errorf("%w: axis %q (axes: %v)", ErrLookup, key, t.order)
	}
	return append([]float64(nil), ax.Samples...), nil
}

// Shape returns the per-axis sample counts, in nesting order.
func (t *Tabulation) Shape() []int { return t.shape() }

func (t *Tabulation) shape() []int {
	shape := make([]int, len(t.order))
	for i, key := range t.order {
		shape[i] = t.axes[key].Len()
	}
	return shape
}

// Size returns the number of cells (product of the axis lengths).
func (t *Tabulation) Size() int { return len(t.data) }

// Ndim returns the number of axes.
func (t *Tabulation) Ndim() int { return len(t.order) }

// Boundary returns the current boundary policy.
func (t *Tabulation) Boundary() BoundaryPolicy { return t.policy }

// SetBoundary changes how out-of-envelope queries are handled.
func (t *Tabulation) SetBoundary(policy BoundaryPolicy) {
	t.policy = policy
	t.rebuild()
}

// Data returns a copy of the flat value stream, row-major in order.
func (t *Tabulation) Data() []float64 {
	return append([]float64(nil), t.data...)
}

// Value returns the cell at a flat position.
func (t *Tabulation) Value(flat int) (float64, error) {
	if flat < 0 || flat >= len(t.data) {
		return 0, fmt.Errorf("%w: flat index %d for table of size %d", ErrIndex, flat, len(t.data))
	}
	return t.data[flat], nil
}

// ValueAt returns the cell at a nested coordinate, bypassing flattening.
func (t *Tabulation) ValueAt(nested ...int) (float64, error) {
	flat, err := t.FlatIndex(nested)
	if err != nil {
		return 0, err
	}
	return t.data[flat], nil
}

// SetValue writes the cell at a flat position and rebuilds the
// interpolator.
func (t *Tabulation) SetValue(flat int, v float64) error {
	if flat < 0 || flat >= len(t.data) {
		return fmt.Errorf("%w: flat index %d for table of size %d", ErrIndex, flat, len(t.data))
	}
	t.data[flat] = v
	t.rebuild()
	return nil
}

// SetValues overwrites the contiguous run of cells starting at a flat
// position with one interpolator rebuild for the whole write.
func (t *Tabulation) SetValues(start int, values []float64) error {
	if start < 0 || start+len(values) > len(t.data) {
		return fmt.Errorf("%w: writing %d values at flat index %d for table of size %d",
			ErrIndex, len(values), start, len(t.data))
	}
	copy(t.data[start:], values)
	t.rebuild()
	return nil
}

// SetValueAt writes the cell at a nested coordinate and rebuilds the
// interpolator.
func (t *Tabulation) SetValueAt(nested []int, v float64) error {
	flat, err := t.FlatIndex(nested)
	if err != nil {
		return err
	}
	t.data[flat] = v
	t.rebuild()
	return nil
}

// FlatIndex maps a nested coordinate to its flat position.
func (t *Tabulation) FlatIndex(nested []int) (int, error) {
	if len(nested) != len(t.order) {
		return 0, fmt.Errorf("%w: %d indices for %d axes", ErrIndex, len(nested), len(t.order))
	}
	shape := t.shape()
	for i, id := range nested {
		if id < 0 || id >= shape[i] {
			return 0, fmt.Errorf("%w: index %d out of range for axis %q (%d >= %d)",
				ErrIndex, id, t.order[i], id, shape[i])
		}
	}
	return ravel(nested, shape), nil
}

// Unravel maps a flat position to its nested coordinate.
func (t *Tabulation) Unravel(flat int) ([]int, error) {
	if flat < 0 || flat >= len(t.data) {
		return nil, fmt.Errorf("%w: flat index %d for table of size %d", ErrIndex, flat, len(t.data))
	}
	return unravel(flat, t.shape()), nil
}

// InputAt returns the axis-key → sample-value coordinate of a flat
// position.
func (t *Tabulation) InputAt(flat int) (map[string]float64, error) {
	nested, err := t.Unravel(flat)
	if err != nil {
		return nil, err
	}
	return t.InputAtIndex(nested)
}

// InputAtIndex returns the axis-key → sample-value coordinate of a
// nested position, bypassing unravel.
func (t *Tabulation) InputAtIndex(nested []int) (map[string]float64, error) {
	if _, err := t.FlatIndex(nested); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(t.order))
	for i, key := range t.order {
		out[key] = t.axes[key].Samples[nested[i]]
	}
	return out, nil
}

// Equal reports whether two tables hold the same axes with identical
// sample sets, the same nesting order, and identical values at every
// coordinate. Equality is order-sensitive on purpose: two tables with
// identical grids but different nesting orders compare unequal, matching
// the behavior existing consumers rely on.
func (t *Tabulation) Equal(other *Tabulation) bool {
	if other == nil {
		return false
	}
	if len(t.order) != len(other.order) {
		return false
	}
	for i, key := range t.order {
		if other.order[i] != key {
			return false
		}
		ax, ok := other.axes[key]
		if !ok || !t.axes[key].sameSamples(ax) {
			return false
		}
	}
	return floats.Equal(t.data, other.data)
}

// Copy returns a deep copy: independent data, ranges, and a freshly
// built interpolator.
func (t *Tabulation) Copy() *Tabulation {
	axes := make(map[string]*Axis, len(t.axes))
	for key, ax := range t.axes {
		axes[key] = ax.copyAxis()
	}
	c := &Tabulation{
		order:  append([]string(nil), t.order...),
		axes:   axes,
		data:   append([]float64(nil), t.data...),
		policy: t.policy,
	}
	c.rebuild()
	return c
}

// ravel maps a nested coordinate to a flat row-major position.
func ravel(nested, shape []int) int {
	flat := 0
	for i, id := range nested {
		flat = flat*shape[i] + id
	}
	return flat
}

// unravel maps a flat row-major position to a nested coordinate.
func unravel(flat int, shape []int) []int {
	nested := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		nested[i] = flat % shape[i]
		flat /= shape[i]
	}
	return nested
}
