package tab

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Axis is one named dimension of a grid: a key identifying it inside a
// table, a display name used in persisted metadata (may differ from the
// key), and its strictly ascending sample points.
type Axis struct {
	Key     string
	Name    string
	Samples []float64
}

// newAxis validates and copies the sample set. Samples must be non-empty
// and strictly ascending; the caller never pre-sorts on our behalf.
func newAxis(key, name string, samples []float64) (*Axis, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: axis %q has no samples", ErrInvariant, key)
	}
	for i := 1; i < len(samples); i++ {
		if samples[i] <= samples[i-1] {
			if samples[i] == samples[i-1] {
				return nil, fmt.Errorf("%w: axis %q has duplicate sample %v", ErrInvariant, key, samples[i])
			}
			return nil, fmt.Errorf("%w: axis %q samples not in ascending order", ErrInvariant, key)
		}
	}
	return &Axis{Key: key, Name: name, Samples: append([]float64(nil), samples...)}, nil
}

// copyAxis returns an independent copy.
func (a *Axis) copyAxis() *Axis {
	return &Axis{Key: a.Key, Name: a.Name, Samples: append([]float64(nil), a.Samples...)}
}

// Len returns the number of sample points.
func (a *Axis) Len() int { return len(a.Samples) }

// indexOf returns the position of an exact sample value, or -1.
func (a *Axis) indexOf(v float64) int {
	i := sort.SearchFloat64s(a.Samples, v)
	if i < len(a.Samples) && a.Samples[i] == v {
		return i
	}
	return -1
}

// clipIndices returns the indices of all samples inside the closed
// interval [lo, hi]. Unbounded sides are expressed with ±Inf.
func (a *Axis) clipIndices(lo, hi float64) []int {
	var idx []int
	for i, v := range a.Samples {
		if v >= lo && v <= hi {
			idx = append(idx, i)
		}
	}
	return idx
}

// sameSamples reports exact sample equality.
func (a *Axis) sameSamples(b *Axis) bool {
	return floats.Equal(a.Samples, b.Samples)
}

// unionSamples merges two ascending sample sets into one ascending,
// duplicate-free set.
func unionSamples(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i == len(a):
			out = append(out, b[j])
			j++
		case j == len(b):
			out = append(out, a[i])
			i++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Interval is a closed [Low, High] clipping range for one axis.
// Unbounded returns an interval spanning the whole real line.
type Interval struct {
	Low  float64
	High float64
}

// Unbounded is the clipping interval that retains every sample.
func Unbounded() Interval {
	return Interval{Low: math.Inf(-1), High: math.Inf(1)}
}

// Above clips from lo upwards, Below clips up to hi.
func Above(lo float64) Interval { return Interval{Low: lo, High: math.Inf(1)} }
func Below(hi float64) Interval { return Interval{Low: math.Inf(-1), High: hi} }
