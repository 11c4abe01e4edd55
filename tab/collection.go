package tab

import (
	"fmt"
	"sort"
	"strings"
)

// MetadataEntry is one caller-supplied tableProperties entry, copied
// verbatim into the persisted metadata. Order is preserved.
type MetadataEntry struct {
	Key   string
	Value any
}

// fieldData pairs a field's on-disk storage name with its grid. The
// table is nil for fields listed but skipped on read.
type fieldData struct {
	file  string
	table *Tabulation
}

// TableCollection is a named set of Tabulations sharing the same axes
// and nesting order, persisted together as one solver directory
// artifact.
type TableCollection struct {
	order    []string
	axes     map[string]*Axis
	fields   map[string]*fieldData
	names    []string // field iteration order
	path     string
	writable bool
	extra    []MetadataEntry
	policy   BoundaryPolicy
}

// CollectionConfig groups the construction parameters of a collection.
type CollectionConfig struct {
	Ranges    map[string][]float64 // per-axis ascending samples
	Order     []string             // axis nesting order
	Data      map[string][]float64 // per-field flat data, row-major in Order
	Files     map[string]string    // optional storage file name per field (default: field name)
	AxisNames map[string]string    // optional display name per axis (default: axis key)
	Path      string               // optional on-disk root
	Writable  bool                 // gate against accidental overwrite
	Boundary  BoundaryPolicy       // boundary policy for every field
	Metadata  []MetadataEntry      // extra tableProperties entries, order preserved
}

// NewCollection builds one Tabulation per field over the shared axes.
// Field data lengths are validated against the grid size; rename maps
// must only name existing axes/fields.
func NewCollection(cfg CollectionConfig) (*TableCollection, error) {
	c := &TableCollection{
		fields:   make(map[string]*fieldData),
		path:     cfg.Path,
		writable: cfg.Writable,
		policy:   cfg.Boundary,
		extra:    append([]MetadataEntry(nil), cfg.Metadata...),
	}
	if len(cfg.Order) != len(cfg.Ranges) {
		return nil, fmt.Errorf("%w: order has %d entries, ranges has %d axes",
			ErrInvariant, len(cfg.Order), len(cfg.Ranges))
	}
	c.order = append([]string(nil), cfg.Order...)
	c.axes = make(map[string]*Axis, len(cfg.Order))
	for _, key := range cfg.Order {
		samples, ok := cfg.Ranges[key]
		if !ok {
			return nil, fmt.Errorf("%w: axis %q in order but not in ranges", ErrInvariant, key)
		}
		ax, err := newAxis(key, key, samples)
		if err != nil {
			return nil, err
		}
		c.axes[key] = ax
	}
	for key, name := range cfg.AxisNames {
		ax, ok := c.axes[key]
		if !ok {
			return nil, fmt.Errorf("%w: axis %q in AxisNames (axes: %v)", ErrLookup, key, c.order)
		}
		ax.Name = name
	}
	for name := range cfg.Files {
		if _, ok := cfg.Data[name]; !ok {
			return nil, fmt.Errorf("%w: field %q in Files (fields: %v)", ErrLookup, name, mapKeys(cfg.Data))
		}
	}

	for _, name := range mapKeys(cfg.Data) {
		file := name
		if f, ok := cfg.Files[name]; ok {
			file = f
		}
		if err := c.AddField(name, cfg.Data[name], file); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Order returns the axis nesting order.
func (c *TableCollection) Order() []string { return append([]string(nil), c.order...) }

// Fields returns the field names in iteration order.
func (c *TableCollection) Fields() []string { return append([]string(nil), c.names...) }

// Files returns the per-field storage file names.
func (c *TableCollection) Files() map[string]string {
	out := make(map[string]string, len(c.fields))
	for name, f := range c.fields {
		out[name] = f.file
	}
	return out
}

// AxisNames returns the per-axis display names used in the persisted
// metadata.
func (c *TableCollection) AxisNames() map[string]string {
	out := make(map[string]string, len(c.axes))
	for key, ax := range c.axes {
		out[key] = ax.Name
	}
	return out
}

// Ranges returns a copy of the per-axis sample sets.
func (c *TableCollection) Ranges() map[string][]float64 {
	out := make(map[string][]float64, len(c.axes))
	for key, ax := range c.axes {
		out[key] = append([]float64(nil), ax.Samples...)
	}
	return out
}

// Shape returns the per-axis sample counts in nesting order.
func (c *TableCollection) Shape() []int {
	shape := make([]int, len(c.order))
	for i, key := range c.order {
		shape[i] = c.axes[key].Len()
	}
	return shape
}

// Size returns the number of cells per field.
func (c *TableCollection) Size() int {
	size := 1
	for _, key := range c.order {
		size *= c.axes[key].Len()
	}
	return size
}

// Path returns the on-disk root, empty when unresolved.
func (c *TableCollection) Path() string { return c.path }

// SetPath resolves the on-disk root.
func (c *TableCollection) SetPath(path string) { c.path = path }

// Writable reports whether Write is permitted.
func (c *TableCollection) Writable() bool { return c.writable }

// SetWritable opens or closes the write gate.
func (c *TableCollection) SetWritable(w bool) { c.writable = w }

// Metadata returns the caller-supplied extra tableProperties entries.
func (c *TableCollection) Metadata() []MetadataEntry {
	return append([]MetadataEntry(nil), c.extra...)
}

// Table returns a deep copy of a field's grid, or nil for a field listed
// but not loaded.
func (c *TableCollection) Table(name string) (*Tabulation, error) {
	f, err := c.field(name)
	if err != nil {
		return nil, err
	}
	if f.table == nil {
		return nil, nil
	}
	return f.table.Copy(), nil
}

func (c *TableCollection) field(name string) (*fieldData, error) {
	f, ok := c.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: field %q, available fields are: %s",
			ErrLookup, name, strings.Join(c.names, ", "))
	}
	return f, nil
}

// AddField builds a new field over the collection's axes from flat data.
func (c *TableCollection) AddField(name string, data []float64, file string) error {
	if _, ok := c.fields[name]; ok {
		return fmt.Errorf("%w: field %q already stored in the collection", ErrInvariant, name)
	}
	if len(data) != c.Size() {
		return fmt.Errorf("%w: field %q has %d values for a %d-cell grid", ErrShape, name, len(data), c.Size())
	}
	t, err := New(data, c.Ranges(), c.order)
	if err != nil {
		return err
	}
	t.SetBoundary(c.policy)
	if file == "" {
		file = name
	}
	c.fields[name] = &fieldData{file: file, table: t}
	c.names = append(c.names, name)
	return nil
}

// AddUniformField builds a new field holding the same value in every
// cell.
func (c *TableCollection) AddUniformField(name string, value float64, file string) error {
	data := make([]float64, c.Size())
	for i := range data {
		data[i] = value
	}
	return c.AddField(name, data, file)
}

// addPlaceholder records a field that exists in the artifact but was not
// loaded.
func (c *TableCollection) addPlaceholder(name, file string) error {
	if _, ok := c.fields[name]; ok {
		return fmt.Errorf("%w: field %q already stored in the collection", ErrInvariant, name)
	}
	c.fields[name] = &fieldData{file: file}
	c.names = append(c.names, name)
	return nil
}

// DelField removes a field.
func (c *TableCollection) DelField(name string) error {
	if _, err := c.field(name); err != nil {
		return err
	}
	delete(c.fields, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
	return nil
}

// SetFile renames a field's on-disk storage name.
func (c *TableCollection) SetFile(name, file string) error {
	f, err := c.field(name)
	if err != nil {
		return err
	}
	f.file = file
	return nil
}

// SetTable replaces a field's grid. The replacement must share the
// collection's order and per-axis sample sets.
func (c *TableCollection) SetTable(name string, t *Tabulation) error {
	f, err := c.field(name)
	if err != nil {
		return err
	}
	if t == nil {
		f.table = nil
		return nil
	}
	if len(t.order) != len(c.order) {
		return fmt.Errorf("%w: table has %d axes, collection has %d", ErrShape, len(t.order), len(c.order))
	}
	for i, key := range c.order {
		if t.order[i] != key {
			return fmt.Errorf("%w: table order %v, collection order %v", ErrShape, t.order, c.order)
		}
		if !c.axes[key].sameSamples(t.axes[key]) {
			return fmt.Errorf("%w: table samples for axis %q differ from the collection's", ErrShape, key)
		}
	}
	f.table = t.Copy()
	return nil
}

// SetName renames an axis's persisted display name.
func (c *TableCollection) SetName(key, name string) error {
	ax, ok := c.axes[key]
	if !ok {
		return fmt.Errorf("%w: axis %q (axes: %v)", ErrLookup, key, c.order)
	}
	ax.Name = name
	return nil
}

// SetOrder reorders the axis nesting collection-wide, cascading to every
// loaded field.
func (c *TableCollection) SetOrder(order []string) error {
	if len(order) != len(c.order) {
		return fmt.Errorf("%w: new order has %d axes, collection has %d", ErrInvariant, len(order), len(c.order))
	}
	seen := make(map[string]bool, len(order))
	for _, key := range order {
		if _, ok := c.axes[key]; !ok {
			return fmt.Errorf("%w: axis %q not found in collection (axes: %v)", ErrInvariant, key, c.order)
		}
		if seen[key] {
			return fmt.Errorf("%w: axis %q repeated in new order", ErrInvariant, key)
		}
		seen[key] = true
	}
	for name, f := range c.fields {
		if f.table == nil {
			continue
		}
		if err := f.table.SetOrder(order); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	c.order = append([]string(nil), order...)
	return nil
}

// Interpolate delegates to the named field's grid.
func (c *TableCollection) Interpolate(name string, coord ...float64) (float64, error) {
	f, err := c.field(name)
	if err != nil {
		return 0, err
	}
	if f.table == nil {
		return 0, fmt.Errorf("%w: field %q not loaded", ErrLookup, name)
	}
	return f.table.Interpolate(coord...)
}

// derive clones the collection's structure for a derived (sliced,
// clipped, concatenated) result: no path, not writable.
func (c *TableCollection) derive() *TableCollection {
	d := &TableCollection{
		order:  append([]string(nil), c.order...),
		axes:   make(map[string]*Axis, len(c.axes)),
		fields: make(map[string]*fieldData, len(c.fields)),
		names:  append([]string(nil), c.names...),
		extra:  append([]MetadataEntry(nil), c.extra...),
		policy: c.policy,
	}
	for key, ax := range c.axes {
		d.axes[key] = ax.copyAxis()
	}
	for name, f := range c.fields {
		nf := &fieldData{file: f.file}
		if f.table != nil {
			nf.table = f.table.Copy()
		}
		d.fields[name] = nf
	}
	return d
}

// applyPerField runs the same grid operation on every loaded field and
// refreshes the collection axes from the result.
func (c *TableCollection) applyPerField(op func(*Tabulation) error) error {
	var sample *Tabulation
	for _, name := range c.names {
		f := c.fields[name]
		if f.table == nil {
			continue
		}
		if err := op(f.table); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		sample = f.table
	}
	if sample == nil {
		// No loaded field: run the operation on a probe grid so the
		// collection axes still move.
		probe, err := New(make([]float64, c.Size()), c.Ranges(), c.order)
		if err != nil {
			return err
		}
		if err := op(probe); err != nil {
			return err
		}
		sample = probe
	}
	c.order = sample.Order()
	for key, samples := range sample.Ranges() {
		name := key
		if old, ok := c.axes[key]; ok {
			name = old.Name
		}
		ax, err := newAxis(key, name, samples)
		if err != nil {
			return err
		}
		c.axes[key] = ax
	}
	for key := range c.axes {
		found := false
		for _, k := range c.order {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			delete(c.axes, key)
		}
	}
	return nil
}

// Slice returns a derived collection reduced to the selected indices per
// axis, applied to every field.
func (c *TableCollection) Slice(sel [][]int) (*TableCollection, error) {
	d := c.derive()
	if err := d.applyPerField(func(t *Tabulation) error { return t.SliceInPlace(sel) }); err != nil {
		return nil, err
	}
	return d, nil
}

// SliceRanges returns a derived collection reduced to the named sample
// subsets, applied to every field.
func (c *TableCollection) SliceRanges(ranges map[string][]float64) (*TableCollection, error) {
	d := c.derive()
	if err := d.applyPerField(func(t *Tabulation) error { return t.SliceRangesInPlace(ranges) }); err != nil {
		return nil, err
	}
	return d, nil
}

// Clip returns a derived collection clipped to the per-axis intervals,
// applied to every field.
func (c *TableCollection) Clip(bounds map[string]Interval) (*TableCollection, error) {
	d := c.derive()
	if err := d.applyPerField(func(t *Tabulation) error { return t.ClipInPlace(bounds) }); err != nil {
		return nil, err
	}
	return d, nil
}

// Append merges another collection into this one field by field. Both
// collections must hold the same field set.
func (c *TableCollection) Append(other *TableCollection, opts ConcatOptions) error {
	if len(other.fields) != len(c.fields) {
		return fmt.Errorf("%w: collections must hold the same fields to concatenate (%v vs %v)",
			ErrInvariant, c.names, other.names)
	}
	for _, name := range c.names {
		if _, ok := other.fields[name]; !ok {
			return fmt.Errorf("%w: field %q missing from the other collection", ErrInvariant, name)
		}
	}
	for _, key := range c.order {
		if _, ok := other.axes[key]; !ok {
			return fmt.Errorf("%w: axis %q missing from the other collection", ErrInvariant, key)
		}
	}
	for _, name := range c.names {
		f := c.fields[name]
		of := other.fields[name]
		if f.table == nil || of.table == nil {
			return fmt.Errorf("%w: field %q not loaded on both sides", ErrLookup, name)
		}
		if err := f.table.Append(of.table, opts); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	// Refresh the collection axes to the merged sample unions.
	for _, key := range c.order {
		union := unionSamples(c.axes[key].Samples, other.axes[key].Samples)
		ax, err := newAxis(key, c.axes[key].Name, union)
		if err != nil {
			return err
		}
		c.axes[key] = ax
	}
	return nil
}

// Concat returns a derived collection merging the receiver with another
// collection.
func (c *TableCollection) Concat(other *TableCollection, opts ConcatOptions) (*TableCollection, error) {
	d := c.derive()
	if err := d.Append(other, opts); err != nil {
		return nil, err
	}
	return d, nil
}

// Equal reports whether two collections hold the same axes (keys,
// display names, samples), order, fields (storage names and grids),
// path, and extra metadata.
func (c *TableCollection) Equal(other *TableCollection) bool {
	if other == nil {
		return false
	}
	if len(c.order) != len(other.order) || len(c.fields) != len(other.fields) {
		return false
	}
	for i, key := range c.order {
		if other.order[i] != key {
			return false
		}
		ax, ok := other.axes[key]
		if !ok || ax.Name != c.axes[key].Name || !c.axes[key].sameSamples(ax) {
			return false
		}
	}
	for name, f := range c.fields {
		of, ok := other.fields[name]
		if !ok || of.file != f.file {
			return false
		}
		switch {
		case f.table == nil && of.table == nil:
		case f.table == nil || of.table == nil:
			return false
		case !f.table.Equal(of.table):
			return false
		}
	}
	if c.path != other.path {
		return false
	}
	if len(c.extra) != len(other.extra) {
		return false
	}
	for i, e := range c.extra {
		if other.extra[i].Key != e.Key || fmt.Sprint(other.extra[i].Value) != fmt.Sprint(e.Value) {
			return false
		}
	}
	return true
}
