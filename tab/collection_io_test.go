package tab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enginepost/tabulate/tab/foam"
	"github.com/enginepost/tabulate/tab/internal/testutil"
)

func newDiskCollection(t *testing.T, path string) *TableCollection {
	t.Helper()
	c, err := NewCollection(CollectionConfig{
		Ranges: testutil.XYRanges(),
		Order:  testutil.XYOrder(),
		Data: map[string][]float64{
			"z": testutil.XYData(),
			"w": {0, 10, 20, 30, 40, 50},
		},
		Path:     path,
		Writable: true,
		Metadata: []MetadataEntry{{Key: "author", Value: "sweepgen"}},
	})
	require.NoError(t, err)
	return c
}

func TestWriteRead_ASCIIRoundTrip(t *testing.T) {
	// GIVEN a two-field collection persisted as ascii
	dir := filepath.Join(t.TempDir(), "table")
	c := newDiskCollection(t, dir)
	require.NoError(t, c.Write(WriteOptions{}))

	// THEN the artifact has the expected layout
	for _, f := range []string{
		tablePropertiesFile,
		filepath.Join(constantDir, "z"),
		filepath.Join(constantDir, "w"),
		filepath.Join(systemDir, controlDictFile),
	} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}

	// WHEN read back
	got, err := ReadCollection(dir, ReadOptions{})
	require.NoError(t, err)

	// THEN the collection round-trips, is read-only, and interpolates
	assert.True(t, c.Equal(got))
	assert.False(t, got.Writable())
	assert.Equal(t, dir, got.Path())
	v, err := got.Interpolate("z", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestWriteRead_BinaryRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "table")
	c := newDiskCollection(t, dir)
	require.NoError(t, c.Write(WriteOptions{Binary: true}))

	got, err := ReadCollection(dir, ReadOptions{})
	require.NoError(t, err)
	assert.True(t, c.Equal(got))
}

func TestWrite_Gates(t *testing.T) {
	// No resolved path
	c := newDiskCollection(t, "")
	assert.ErrorIs(t, c.Write(WriteOptions{}), ErrNoPath)

	// Not writable
	dir := filepath.Join(t.TempDir(), "table")
	c = newDiskCollection(t, dir)
	c.SetWritable(false)
	assert.ErrorIs(t, c.Write(WriteOptions{}), ErrReadOnly)

	// WriteOptions.Path overrides the resolved path
	c.SetWritable(true)
	other := filepath.Join(t.TempDir(), "elsewhere")
	require.NoError(t, c.Write(WriteOptions{Path: other}))
	_, err := os.Stat(filepath.Join(other, tablePropertiesFile))
	assert.NoError(t, err)
}

func TestWrite_RecreatesExistingDirectory(t *testing.T) {
	// GIVEN an artifact with a stale extra field file
	dir := filepath.Join(t.TempDir(), "table")
	c := newDiskCollection(t, dir)
	require.NoError(t, c.Write(WriteOptions{}))
	stale := filepath.Join(dir, constantDir, "stale")
	require.NoError(t, os.WriteFile(stale, []byte("junk"), 0o644))

	// WHEN written again
	require.NoError(t, c.Write(WriteOptions{}))

	// THEN the directory was rebuilt from scratch
	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	got, err := ReadCollection(dir, ReadOptions{})
	require.NoError(t, err)
	assert.True(t, c.Equal(got))
}

func TestRead_RenamesAxesAndFields(t *testing.T) {
	// GIVEN an artifact whose display names differ from the wanted keys
	dir := filepath.Join(t.TempDir(), "table")
	c, err := NewCollection(CollectionConfig{
		Ranges:    testutil.XYRanges(),
		Order:     testutil.XYOrder(),
		Data:      map[string][]float64{"z": testutil.XYData()},
		Files:     map[string]string{"z": "zeta"},
		AxisNames: map[string]string{"x": "pressure", "y": "temperature"},
		Path:      dir,
		Writable:  true,
	})
	require.NoError(t, err)
	require.NoError(t, c.Write(WriteOptions{}))

	// WHEN read with rename maps
	got, err := ReadCollection(dir, ReadOptions{
		AxisNames:  map[string]string{"pressure": "x", "temperature": "y"},
		FieldNames: map[string]string{"zeta": "z"},
	})
	require.NoError(t, err)

	// THEN keys are restored while display and storage names persist
	assert.True(t, c.Equal(got))
	assert.Equal(t, map[string]string{"x": "pressure", "y": "temperature"}, got.AxisNames())
	assert.Equal(t, map[string]string{"z": "zeta"}, got.Files())

	// Rename maps naming unknown entries fail with the alternatives
	_, err = ReadCollection(dir, ReadOptions{AxisNames: map[string]string{"density": "rho"}})
	assert.ErrorIs(t, err, ErrLookup)
	assert.ErrorContains(t, err, "available axes are: pressure, temperature")

	_, err = ReadCollection(dir, ReadOptions{FieldNames: map[string]string{"nope": "z"}})
	assert.ErrorIs(t, err, ErrLookup)
	assert.ErrorContains(t, err, "available files are: zeta")
}

func TestRead_SkipLeavesPlaceholders(t *testing.T) {
	// GIVEN the two-field artifact
	dir := filepath.Join(t.TempDir(), "table")
	c := newDiskCollection(t, dir)
	require.NoError(t, c.Write(WriteOptions{}))

	// WHEN reading with one field skipped
	got, err := ReadCollection(dir, ReadOptions{Skip: []string{"w"}})
	require.NoError(t, err)

	// THEN the field is visible but not loaded
	assert.Equal(t, []string{"w", "z"}, got.Fields())
	table, err := got.Table("w")
	require.NoError(t, err)
	assert.Nil(t, table)
	_, err = got.Interpolate("w", 0, 0)
	assert.ErrorIs(t, err, ErrLookup)
	assert.ErrorContains(t, err, "not loaded")

	// AND the loaded field is intact
	v, err := got.Interpolate("z", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestRead_BoundaryPolicyInstalledOnFields(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "table")
	c := newDiskCollection(t, dir)
	require.NoError(t, c.Write(WriteOptions{}))

	got, err := ReadCollection(dir, ReadOptions{Boundary: Extrapolate})
	require.NoError(t, err)
	v, err := got.Interpolate("z", 3, 0)
	require.NoError(t, err)
	testutil.AssertClose(t, 6, v, 1e-12, "extrapolated z(3, 0)")
}

func writeArtifact(t *testing.T, props string, fields map[string][]float64) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, constantDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, tablePropertiesFile), []byte(props), 0o644))
	for name, values := range fields {
		require.NoError(t, foam.WriteScalarList(filepath.Join(dir, constantDir, name), values, foam.FormatASCII))
	}
	return dir
}

func TestRead_FieldListDefaultsToConstantDir(t *testing.T) {
	// GIVEN an artifact without a fields entry
	props := "xValues ( 0 1 2 );\nyValues ( 0 1 );\ninputVariables ( x y );\n"
	dir := writeArtifact(t, props, map[string][]float64{"z": testutil.XYData()})

	// WHEN read THEN the field list comes from the directory
	got, err := ReadCollection(dir, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, got.Fields())
}

func TestRead_FormatErrors(t *testing.T) {
	good := "xValues ( 0 1 2 );\nyValues ( 0 1 );\ninputVariables ( x y );\nfields ( z );\n"

	// Field data shorter than the grid
	dir := writeArtifact(t, good, map[string][]float64{"z": {1, 2, 3}})
	_, err := ReadCollection(dir, ReadOptions{})
	assert.ErrorIs(t, err, ErrFormat)

	// Missing inputVariables entry
	dir = writeArtifact(t, "xValues ( 0 1 2 );\nyValues ( 0 1 );\nfields ( z );\n",
		map[string][]float64{"z": testutil.XYData()})
	_, err = ReadCollection(dir, ReadOptions{})
	assert.ErrorIs(t, err, ErrFormat)

	// Input variable without a matching sample entry
	dir = writeArtifact(t, "xValues ( 0 1 2 );\nyValues ( 0 1 );\ninputVariables ( x q );\nfields ( z );\n",
		map[string][]float64{"z": testutil.XYData()})
	_, err = ReadCollection(dir, ReadOptions{})
	assert.ErrorIs(t, err, ErrFormat)

	// Unparseable tableProperties
	dir = writeArtifact(t, "xValues ( 0 1 2 )", nil)
	_, err = ReadCollection(dir, ReadOptions{})
	assert.ErrorIs(t, err, ErrFormat)
}

func TestRead_ExtraMetadataIsCarried(t *testing.T) {
	// GIVEN an artifact with entries beyond the axes and field list
	props := "xValues ( 0 1 2 );\nyValues ( 0 1 );\ninputVariables ( x y );\nfields ( z );\nfuel propane;\n"
	dir := writeArtifact(t, props, map[string][]float64{"z": testutil.XYData()})

	got, err := ReadCollection(dir, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, got.Metadata(), 1)
	assert.Equal(t, "fuel", got.Metadata()[0].Key)
	assert.Equal(t, "propane", got.Metadata()[0].Value)
}
