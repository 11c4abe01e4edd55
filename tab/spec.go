package tab

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// TableSpec is a declarative collection build, loaded from YAML via
// LoadTableSpec. It exists so sweep post-processing scripts can assemble
// a solver artifact without writing Go.
type TableSpec struct {
	Path     string           `yaml:"path,omitempty"`     // output directory
	Binary   bool             `yaml:"binary,omitempty"`   // scalarList body encoding
	Boundary string           `yaml:"boundary,omitempty"` // fatal (default), nan, extrapolate
	Order    []string         `yaml:"order"`
	Axes     []AxisSpec       `yaml:"axes"`
	Fields   []FieldSpec      `yaml:"fields"`
	Metadata []MetadataKVSpec `yaml:"metadata,omitempty"`
}

// AxisSpec declares one axis of the grid.
type AxisSpec struct {
	Key     string    `yaml:"key"`
	Name    string    `yaml:"name,omitempty"` // persisted display name (default: key)
	Samples []float64 `yaml:"samples"`
}

// FieldSpec declares one tabulated field. Exactly one of Values,
// Uniform, or CSV supplies the data.
type FieldSpec struct {
	Name    string    `yaml:"name"`
	File    string    `yaml:"file,omitempty"` // storage file name (default: name)
	Values  []float64 `yaml:"values,omitempty"`
	Uniform *float64  `yaml:"uniform,omitempty"`
	CSV     *CSVSpec  `yaml:"csv,omitempty"`
}

// CSVSpec points a field at one column of a CSV file. The file must have
// a header row; rows are taken in flat row-major order over the spec's
// axis order.
type CSVSpec struct {
	File   string `yaml:"file"`
	Column string `yaml:"column"`
}

// MetadataKVSpec is one extra tableProperties entry.
type MetadataKVSpec struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// LoadTableSpec reads and parses a YAML build spec.
func LoadTableSpec(path string) (*TableSpec, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table spec: %w", err)
	}
	var spec TableSpec
	if err := yaml.Unmarshal(src, &spec); err != nil {
		return nil, fmt.Errorf("parsing table spec %s: %w", path, err)
	}
	return &spec, nil
}

// Build assembles the collection described by the spec. Relative CSV
// paths resolve against baseDir.
func (s *TableSpec) Build(baseDir string) (*TableCollection, error) {
	policy := Fatal
	if s.Boundary != "" {
		p, err := ParseBoundaryPolicy(s.Boundary)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	cfg := CollectionConfig{
		Ranges:    make(map[string][]float64, len(s.Axes)),
		Order:     s.Order,
		Data:      make(map[string][]float64, len(s.Fields)),
		Files:     make(map[string]string),
		AxisNames: make(map[string]string),
		Path:      s.Path,
		Writable:  true,
		Boundary:  policy,
	}
	for _, ax := range s.Axes {
		cfg.Ranges[ax.Key] = ax.Samples
		if ax.Name != "" {
			cfg.AxisNames[ax.Key] = ax.Name
		}
	}
	for _, m := range s.Metadata {
		cfg.Metadata = append(cfg.Metadata, MetadataEntry{Key: m.Key, Value: m.Value})
	}

	size := 1
	for _, key := range s.Order {
		size *= len(cfg.Ranges[key])
	}
	for _, f := range s.Fields {
		values, err := f.load(baseDir)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if values == nil {
			// Uniform field, expanded to the grid size.
			values = make([]float64, size)
			for i := range values {
				values[i] = *f.Uniform
			}
		}
		cfg.Data[f.Name] = values
		if f.File != "" {
			cfg.Files[f.Name] = f.File
		}
	}
	return NewCollection(cfg)
}

// load resolves the field's data source.
func (f *FieldSpec) load(baseDir string) ([]float64, error) {
	sources := 0
	if f.Values != nil {
		sources++
	}
	if f.Uniform != nil {
		sources++
	}
	if f.CSV != nil {
		sources++
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of values, uniform, or csv must be set")
	}
	switch {
	case f.Values != nil:
		return f.Values, nil
	case f.CSV != nil:
		return readCSVColumn(resolvePath(baseDir, f.CSV.File), f.CSV.Column)
	}
	return nil, nil // uniform, expanded by the caller
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// readCSVColumn reads one named column of a headed CSV file as floats.
func readCSVColumn(path, column string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV %s empty or missing header", path)
	}
	col := -1
	for i, name := range records[0] {
		if name == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("column %q not found in CSV %s (header: %v)", column, path, records[0])
	}
	values := make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		if col >= len(record) {
			return nil, fmt.Errorf("CSV row %d: missing column %q", i+2, column)
		}
		v, err := strconv.ParseFloat(record[col], 64)
		if err != nil {
			return nil, fmt.Errorf("CSV row %d: invalid value %q: %w", i+2, record[col], err)
		}
		values = append(values, v)
	}
	return values, nil
}
