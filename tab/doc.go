// Package tab implements a dense structured-grid tabulation engine for
// engine post-processing data: n-dimensional lookup tables with named
// axes, multilinear interpolation, and a named-collection wrapper that
// persists sets of tables in the legacy solver directory layout.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - axis.go: axis sample sets (sorted, strictly ascending) and helpers
//   - tabulation.go: grid storage, index mapping, and axis ordering
//   - interpolator.go: the multilinear kernel and boundary policies
//
// # Architecture
//
// The tab package owns the data model; the on-disk codec lives in the
// tab/foam sub-package:
//   - tab/foam/: scalarList files (ascii/binary), the ordered dictionary
//     used by tableProperties, and the static controlDict boilerplate
//
// A Tabulation is one dense grid over the Cartesian product of its axes,
// stored flat in row-major order with respect to the axis nesting order.
// Every mutating operation (reordering, slicing, concatenation, element
// writes) rebuilds the interpolator so queries always see current data.
//
// A TableCollection groups named Tabulations sharing the same axes and
// order, carries the file-naming metadata of the solver layout, and reads
// or writes the whole directory artifact:
//
//	<path>/
//	  tableProperties
//	  constant/<storageName>   one scalarList per field
//	  system/controlDict       static solver-compatibility boilerplate
//
// Nothing in this package is safe for concurrent mutation. Parallel
// producers build independent tables and merge them afterwards through
// Concat/WithDimension; Copy is always deep, so sharing a copy never
// aliases live storage.
package tab
