package tab

import (
	"fmt"
	"sort"
)

// SliceInPlace reduces the table to the Cartesian product of the selected
// indices per axis, given in nesting order. A nil entry keeps every
// index of that axis. Index lists are sorted before applying.
func (t *Tabulation) SliceInPlace(sel [][]int) error {
	if len(sel) != len(t.order) {
		return fmt.Errorf("%w: %d selections for %d axes (%v)", ErrIndex, len(sel), len(t.order), t.order)
	}
	shape := t.shape()
	lists := make([][]int, len(sel))
	for i, s := range sel {
		if s == nil {
			lists[i] = make([]int, shape[i])
			for j := range lists[i] {
				lists[i][j] = j
			}
			continue
		}
		list := append([]int(nil), s...)
		sort.Ints(list)
		for _, id := range list {
			if id < 0 || id >= shape[i] {
				return fmt.Errorf("%w: index %d out of range for axis %q (%d >= %d)",
					ErrIndex, id, t.order[i], id, shape[i])
			}
		}
		if len(list) == 0 {
			return fmt.Errorf("%w: empty selection for axis %q", ErrInvariant, t.order[i])
		}
		lists[i] = list
	}

	ranges := make(map[string][]float64, len(t.order))
	newShape := make([]int, len(t.order))
	for i, key := range t.order {
		samples := make([]float64, len(lists[i]))
		for j, id := range lists[i] {
			samples[j] = t.axes[key].Samples[id]
		}
		ranges[key] = samples
		newShape[i] = len(samples)
	}

	size := 1
	for _, n := range newShape {
		size *= n
	}
	data := make([]float64, size)
	oldNested := make([]int, len(t.order))
	for flat := 0; flat < size; flat++ {
		nested := unravel(flat, newShape)
		for i, id := range nested {
			oldNested[i] = lists[i][id]
		}
		data[flat] = t.data[ravel(oldNested, shape)]
	}
	return t.init(data, ranges, t.order)
}

// Slice returns a new table holding the selected sub-grid.
func (t *Tabulation) Slice(sel [][]int) (*Tabulation, error) {
	c := t.Copy()
	if err := c.SliceInPlace(sel); err != nil {
		return nil, err
	}
	return c, nil
}

// SliceRangesInPlace reduces the table to a subset of existing sample
// values per axis. Every requested value must be an exact sample of the
// corresponding axis; axes not named keep their full range.
func (t *Tabulation) SliceRangesInPlace(ranges map[string][]float64) error {
	sel := make([][]int, len(t.order))
	for key, values := range ranges {
		ax, ok := t.axes[key]
		if !ok {
			return fmt.Errorf("%w: axis %q (axes: %v)", ErrLookup, key, t.order)
		}
		pos := -1
		for i, k := range t.order {
			if k == key {
				pos = i
				break
			}
		}
		list := make([]int, 0, len(values))
		for _, v := range values {
			id := ax.indexOf(v)
			if id < 0 {
				return fmt.Errorf("%w: sample %v not found in range of axis %q (%v)",
					ErrInvariant, v, key, ax.Samples)
			}
			list = append(list, id)
		}
		sel[pos] = list
	}
	return t.SliceInPlace(sel)
}

// SliceRanges returns a new table reduced to the named sample subsets.
func (t *Tabulation) SliceRanges(ranges map[string][]float64) (*Tabulation, error) {
	c := t.Copy()
	if err := c.SliceRangesInPlace(ranges); err != nil {
		return nil, err
	}
	return c, nil
}

// ClipInPlace retains, per named axis, the samples inside the closed
// interval. Axes not named keep their full range.
func (t *Tabulation) ClipInPlace(bounds map[string]Interval) error {
	sel := make([][]int, len(t.order))
	for key, iv := range bounds {
		ax, ok := t.axes[key]
		if !ok {
			return fmt.Errorf("%w: axis %q (axes: %v)", ErrLookup, key, t.order)
		}
		idx := ax.clipIndices(iv.Low, iv.High)
		if len(idx) == 0 {
			return fmt.Errorf("%w: clipping [%v, %v] leaves axis %q empty",
				ErrInvariant, iv.Low, iv.High, key)
		}
		for i, k := range t.order {
			if k == key {
				sel[i] = idx
			}
		}
	}
	return t.SliceInPlace(sel)
}

// Clip returns a new table clipped to the given per-axis intervals.
func (t *Tabulation) Clip(bounds map[string]Interval) (*Tabulation, error) {
	c := t.Copy()
	if err := c.ClipInPlace(bounds); err != nil {
		return nil, err
	}
	return c, nil
}

// Squeeze removes every axis with a single sample from the order, the
// ranges, and the storage shape. Values are unchanged.
func (t *Tabulation) Squeeze() {
	var order []string
	ranges := make(map[string][]float64)
	for _, key := range t.order {
		if t.axes[key].Len() > 1 {
			order = append(order, key)
			ranges[key] = t.axes[key].Samples
		}
	}
	// Dropping size-1 dimensions never moves data in row-major storage.
	if err := t.init(t.data, ranges, order); err != nil {
		panic(fmt.Sprintf("squeeze broke table invariants: %v", err))
	}
}

// Squeezed returns a copy with every single-sample axis removed.
func (t *Tabulation) Squeezed() *Tabulation {
	c := t.Copy()
	c.Squeeze()
	return c
}

// InsertDimension adds a new single-sample axis at the given position in
// the nesting order, broadcasting the existing data unchanged. Used to
// tag per-sweep-point tables before concatenating them into a larger
// parameter sweep.
func (t *Tabulation) InsertDimension(key string, value float64, pos int) error {
	if _, ok := t.axes[key]; ok {
		return fmt.Errorf("%w: axis %q already in table", ErrInvariant, key)
	}
	if pos < 0 || pos > len(t.order) {
		return fmt.Errorf("%w: insert position %d for table with %d axes", ErrIndex, pos, len(t.order))
	}
	order := make([]string, 0, len(t.order)+1)
	order = append(order, t.order[:pos]...)
	order = append(order, key)
	order = append(order, t.order[pos:]...)
	ranges := t.Ranges()
	ranges[key] = []float64{value}
	return t.init(t.data, ranges, order)
}

// WithDimension returns a copy with the new single-sample axis inserted.
func (t *Tabulation) WithDimension(key string, value float64, pos int) (*Tabulation, error) {
	c := t.Copy()
	if err := c.InsertDimension(key, value, pos); err != nil {
		return nil, err
	}
	return c, nil
}

// ConcatOptions control how overlapping and missing cells are handled
// when merging two tables.
type ConcatOptions struct {
	// Overwrite lets the other table's values win in overlapping regions.
	// Without it, any overlap fails the merge.
	Overwrite bool
	// Fill supplies the value for grid cells present in neither operand.
	// Without it, any gap fails the merge.
	Fill *float64
}

// Append extends the table with the data of another table holding the
// same axes (nesting order may differ). Per-axis ranges become the
// sorted union of both operands.
func (t *Tabulation) Append(other *Tabulation, opts ConcatOptions) error {
	if len(other.order) != len(t.order) {
		return fmt.Errorf("%w: tables must have the same axes to concatenate (%v vs %v)",
			ErrInvariant, t.order, other.order)
	}
	for _, key := range t.order {
		if _, ok := other.axes[key]; !ok {
			return fmt.Errorf("%w: tables must have the same axes to concatenate (%v vs %v)",
				ErrInvariant, t.order, other.order)
		}
	}

	union := make(map[string][]float64, len(t.order))
	shape := make([]int, len(t.order))
	size := 1
	for i, key := range t.order {
		union[key] = unionSamples(t.axes[key].Samples, other.axes[key].Samples)
		shape[i] = len(union[key])
		size *= shape[i]
	}

	data := make([]float64, size)
	written := make([]bool, size)

	// Receiver's cells map into the union grid first.
	t.scatter(t, union, shape, data, written)

	// Then the other operand's cells, watching for overlap.
	otherNested := make([]int, len(t.order))
	otherShape := other.shape()
	for flat := 0; flat < other.Size(); flat++ {
		nested := unravel(flat, otherShape)
		for i, key := range t.order {
			pos := -1
			for j, k := range other.order {
				if k == key {
					pos = j
					break
				}
			}
			otherNested[i] = sort.SearchFloat64s(union[key], other.axes[key].Samples[nested[pos]])
		}
		target := ravel(otherNested, shape)
		if written[target] && !opts.Overwrite {
			return fmt.Errorf("%w: overlapping regions between the two tables; set Overwrite to merge them",
				ErrInvariant)
		}
		data[target] = other.data[flat]
		written[target] = true
	}

	// Cells present in neither operand need an explicit fill value.
	for i, ok := range written {
		if !ok {
			if opts.Fill == nil {
				coord := unravel(i, shape)
				return fmt.Errorf("%w: sampling point at %v missing from both tables; set Fill to concatenate",
					ErrInvariant, coord)
			}
			data[i] = *opts.Fill
		}
	}
	return t.init(data, union, t.order)
}

// scatter copies src's cells into the union-shaped buffer. src's order
// must equal t.order (always true for the receiver itself).
func (t *Tabulation) scatter(src *Tabulation, union map[string][]float64, shape []int, data []float64, written []bool) {
	srcShape := src.shape()
	target := make([]int, len(t.order))
	for flat := 0; flat < src.Size(); flat++ {
		nested := unravel(flat, srcShape)
		for i, key := range t.order {
			target[i] = sort.SearchFloat64s(union[key], src.axes[key].Samples[nested[i]])
		}
		j := ravel(target, shape)
		data[j] = src.data[flat]
		written[j] = true
	}
}

// Concat returns a new table merging the receiver with another table.
func (t *Tabulation) Concat(other *Tabulation, opts ConcatOptions) (*Tabulation, error) {
	c := t.Copy()
	if err := c.Append(other, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// Add is the non-overwriting, no-fill concatenation: overlapping or
// gapped merges always fail loudly.
func (t *Tabulation) Add(other *Tabulation) (*Tabulation, error) {
	return t.Concat(other, ConcatOptions{})
}
