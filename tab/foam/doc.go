// Package foam reads and writes the legacy solver file formats consumed
// by the tabulation directory layout: scalarList files (ascii or binary)
// under constant/, the ordered key/value dictionary used by
// tableProperties, and the static controlDict boilerplate under system/.
//
// Only the dictionary subset the tabulation artifact actually uses is
// supported: top-level `key value;` entries whose values are words,
// numbers, numeric lists, or word lists, plus the FoamFile header block.
package foam
