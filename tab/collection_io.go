package tab

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/enginepost/tabulate/tab/foam"
)

const (
	tablePropertiesFile = "tableProperties"
	constantDir         = "constant"
	systemDir           = "system"
	controlDictFile     = "controlDict"

	axisEntrySuffix   = "Values"
	orderEntryKey     = "inputVariables"
	fieldListEntryKey = "fields"
)

// ReadOptions control how a persisted collection is loaded.
type ReadOptions struct {
	// FieldNames renames fields on load: storage file name → logical
	// field name. Unnamed fields keep the storage name.
	FieldNames map[string]string
	// AxisNames renames axes on load: persisted display name → axis key.
	// Unnamed axes use the display name as key.
	AxisNames map[string]string
	// Skip lists storage files whose data is not loaded; the fields stay
	// visible as unloaded placeholders.
	Skip []string
	// Boundary is the boundary policy installed on every loaded field.
	Boundary BoundaryPolicy
}

// ReadCollection loads the directory artifact at path: axes and order
// from tableProperties, one scalarList per field from constant/. The
// loaded collection keeps path resolved but is not writable, so a
// later Write cannot silently clobber the source without opting in.
func ReadCollection(path string, opts ReadOptions) (*TableCollection, error) {
	src, err := os.ReadFile(filepath.Join(path, tablePropertiesFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", tablePropertiesFile, err)
	}
	props, err := foam.ParseDict(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, tablePropertiesFile, err)
	}

	c := &TableCollection{
		fields: make(map[string]*fieldData),
		axes:   make(map[string]*Axis),
		path:   path,
		policy: opts.Boundary,
	}

	// Axis entries are those named <displayName>Values holding a numeric
	// list; everything else (minus the order and field list) is carried
	// as extra metadata.
	displayKeys := make(map[string]string) // display name → axis key
	for _, e := range props.Entries() {
		if e.Key == orderEntryKey || e.Key == fieldListEntryKey {
			continue
		}
		samples, isList := e.Value.([]float64)
		if isList && strings.HasSuffix(e.Key, axisEntrySuffix) {
			display := strings.TrimSuffix(e.Key, axisEntrySuffix)
			key := display
			if k, ok := opts.AxisNames[display]; ok {
				key = k
			}
			ax, err := newAxis(key, display, samples)
			if err != nil {
				return nil, fmt.Errorf("%w: %s entry %q: %v", ErrFormat, tablePropertiesFile, e.Key, err)
			}
			displayKeys[display] = key
			c.axes[key] = ax
			continue
		}
		c.extra = append(c.extra, MetadataEntry{Key: e.Key, Value: e.Value})
	}
	for display := range opts.AxisNames {
		if _, ok := displayKeys[display]; !ok {
			return nil, fmt.Errorf("%w: axis %q in AxisNames, available axes are: %s",
				ErrLookup, display, strings.Join(mapKeys(displayKeys), ", "))
		}
	}

	// Nesting order, given as display names.
	orderNames, ok := props.Words(orderEntryKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s entry", ErrFormat, tablePropertiesFile, orderEntryKey)
	}
	if len(orderNames) != len(c.axes) {
		return nil, fmt.Errorf("%w: %s lists %d input variables for %d axis entries",
			ErrFormat, orderEntryKey, len(orderNames), len(c.axes))
	}
	for _, display := range orderNames {
		key, ok := displayKeys[display]
		if !ok {
			return nil, fmt.Errorf("%w: input variable %q has no %s%s entry",
				ErrFormat, display, display, axisEntrySuffix)
		}
		c.order = append(c.order, key)
	}

	// Field list: explicit entry when present, otherwise the contents of
	// constant/.
	files, ok := props.Words(fieldListEntryKey)
	if !ok {
		entries, err := os.ReadDir(filepath.Join(path, constantDir))
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", constantDir, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, e.Name())
			}
		}
		sort.Strings(files)
	}
	for file := range opts.FieldNames {
		found := false
		for _, f := range files {
			if f == file {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: file %q in FieldNames, available files are: %s",
				ErrLookup, file, strings.Join(files, ", "))
		}
	}
	skip := make(map[string]bool, len(opts.Skip))
	for _, file := range opts.Skip {
		skip[file] = true
	}

	for _, file := range files {
		name := file
		if n, ok := opts.FieldNames[file]; ok {
			name = n
		}
		if skip[file] {
			if err := c.addPlaceholder(name, file); err != nil {
				return nil, err
			}
			continue
		}
		values, err := foam.ReadScalarList(filepath.Join(path, constantDir, file))
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrFormat, name, err)
		}
		if len(values) != c.Size() {
			return nil, fmt.Errorf("%w: field %q holds %d values for a %d-cell grid",
				ErrFormat, name, len(values), c.Size())
		}
		if err := c.AddField(name, values, file); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WriteOptions control how a collection is persisted.
type WriteOptions struct {
	// Path overrides the collection's resolved path for this write.
	Path string
	// Binary selects the binary scalarList body encoding.
	Binary bool
}

// Write persists the collection as the solver directory artifact,
// recreating the target directory from scratch. Requires the collection
// to be writable and a resolved path.
func (c *TableCollection) Write(opts WriteOptions) error {
	path := c.path
	if opts.Path != "" {
		path = opts.Path
	}
	if path == "" {
		return fmt.Errorf("%w: set a path on the collection or in WriteOptions", ErrNoPath)
	}
	if !c.writable {
		return fmt.Errorf("%w: call SetWritable(true) to overwrite", ErrReadOnly)
	}

	if _, err := os.Stat(path); err == nil {
		logrus.Warnf("overwriting table at %q", path)
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	for _, dir := range []string{path, filepath.Join(path, constantDir), filepath.Join(path, systemDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	if err := os.WriteFile(filepath.Join(path, tablePropertiesFile), c.tableProperties().Encode(), 0o644); err != nil {
		return err
	}

	format := foam.FormatASCII
	if opts.Binary {
		format = foam.FormatBinary
	}
	for _, name := range c.names {
		f := c.fields[name]
		if f.table == nil {
			continue
		}
		if err := foam.WriteScalarList(filepath.Join(path, constantDir, f.file), f.table.Data(), format); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}

	return foam.WriteControlDict(filepath.Join(path, systemDir, controlDictFile))
}

// tableProperties assembles the persisted metadata: per-axis sample
// arrays under their display names, the nesting order, the field file
// list, and the extra entries verbatim.
func (c *TableCollection) tableProperties() *foam.Dict {
	d := &foam.Dict{}
	names := make([]string, len(c.order))
	for i, key := range c.order {
		ax := c.axes[key]
		names[i] = ax.Name
		d.Set(ax.Name+axisEntrySuffix, append([]float64(nil), ax.Samples...))
	}
	d.Set(orderEntryKey, names)
	files := make([]string, 0, len(c.names))
	for _, name := range c.names {
		files = append(files, c.fields[name].file)
	}
	d.Set(fieldListEntryKey, files)
	for _, e := range c.extra {
		d.Set(e.Key, e.Value)
	}
	return d
}
