package tab

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// BoundaryPolicy selects how interpolation queries outside the sampled
// envelope are handled.
type BoundaryPolicy int

const (
	// Fatal fails the query with ErrOutOfBounds.
	Fatal BoundaryPolicy = iota
	// ReturnNaN substitutes NaN for each out-of-envelope query.
	ReturnNaN
	// Extrapolate continues the multilinear surface beyond the envelope.
	Extrapolate
)

var boundaryPolicies = map[string]BoundaryPolicy{
	"fatal":       Fatal,
	"nan":         ReturnNaN,
	"extrapolate": Extrapolate,
}

// ParseBoundaryPolicy resolves a policy by name.
func ParseBoundaryPolicy(name string) (BoundaryPolicy, error) {
	if p, ok := boundaryPolicies[name]; ok {
		return p, nil
	}
	keys := make([]string, 0, len(boundaryPolicies))
	for k := range boundaryPolicies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Fatal, fmt.Errorf("%w: boundary policy %q, available policies are: %s",
		ErrLookup, name, strings.Join(keys, ", "))
}

func (p BoundaryPolicy) String() string {
	switch p {
	case Fatal:
		return "fatal"
	case ReturnNaN:
		return "nan"
	case Extrapolate:
		return "extrapolate"
	}
	return fmt.Sprintf("BoundaryPolicy(%d)", int(p))
}

// gridInterpolator is the multilinear kernel over a regular grid.
// Single-sample (degenerate) axes are excluded from the interpolation
// grid but kept in the storage shape; their index is pinned to 0.
type gridInterpolator struct {
	shape   []int       // full storage shape, degenerate axes included
	active  []int       // positions in the storage order of interpolable axes
	samples [][]float64 // sample sets of the active axes
	data    []float64   // the table's flat storage (shared, not owned)
}

func newGridInterpolator(axes []*Axis, data []float64) *gridInterpolator {
	g := &gridInterpolator{shape: make([]int, len(axes)), data: data}
	for i, ax := range axes {
		g.shape[i] = ax.Len()
		if ax.Len() > 1 {
			g.active = append(g.active, i)
			g.samples = append(g.samples, ax.Samples)
		}
	}
	return g
}

// evaluate interpolates at a coordinate over the active axes only.
// The weights fall outside [0,1] only under Extrapolate.
func (g *gridInterpolator) evaluate(coord []float64, policy BoundaryPolicy) (float64, error) {
	k := len(g.active)
	lower := make([]int, k)
	weight := make([]float64, k)
	for i, x := range coord {
		s := g.samples[i]
		if x < s[0] || x > s[len(s)-1] {
			switch policy {
			case ReturnNaN:
				return math.NaN(), nil
			case Fatal:
				return 0, fmt.Errorf("%w: %v outside [%v, %v]", ErrOutOfBounds, x, s[0], s[len(s)-1])
			}
		}
		// Bracketing interval [j, j+1], clamped to the edge intervals so
		// extrapolation continues the outermost cell linearly.
		j := sort.SearchFloat64s(s, x) - 1
		if j < 0 {
			j = 0
		}
		if j > len(s)-2 {
			j = len(s) - 2
		}
		lower[i] = j
		weight[i] = (x - s[j]) / (s[j+1] - s[j])
	}

	// Accumulate the 2^k cell corners.
	nested := make([]int, len(g.shape))
	var sum float64
	for mask := 0; mask < 1<<k; mask++ {
		w := 1.0
		for i := 0; i < k; i++ {
			if mask&(1<<i) != 0 {
				w *= weight[i]
				nested[g.active[i]] = lower[i] + 1
			} else {
				w *= 1 - weight[i]
				nested[g.active[i]] = lower[i]
			}
		}
		sum += w * g.data[ravel(nested, g.shape)]
	}
	return sum, nil
}

// Interpolate evaluates the table at one coordinate given in nesting
// order, one component per axis (degenerate axes included). Components
// for degenerate axes must equal the sole sample; a mismatch is reported
// through the warning channel and ignored.
func (t *Tabulation) Interpolate(coord ...float64) (float64, error) {
	return t.InterpolateWith(t.policy, coord...)
}

// InterpolateWith evaluates with a one-off boundary policy override.
func (t *Tabulation) InterpolateWith(policy BoundaryPolicy, coord ...float64) (float64, error) {
	if len(coord) != len(t.order) {
		return 0, fmt.Errorf("%w: %d coordinate components for %d axes", ErrShape, len(coord), len(t.order))
	}
	active := make([]float64, 0, len(t.interp.active))
	for i, key := range t.order {
		ax := t.axes[key]
		if ax.Len() > 1 {
			active = append(active, coord[i])
		} else if coord[i] != ax.Samples[0] {
			logrus.Warnf("axis %q has a single sample %v, cannot interpolate along it; coordinate %v ignored",
				key, ax.Samples[0], coord[i])
		}
	}
	return t.interp.evaluate(active, policy)
}

// InterpolateAll evaluates a batch of coordinates, returning one value
// per coordinate.
func (t *Tabulation) InterpolateAll(coords [][]float64) ([]float64, error) {
	out := make([]float64, len(coords))
	for i, c := range coords {
		v, err := t.Interpolate(c...)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
