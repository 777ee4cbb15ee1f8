// Package cellcompile compiles individual cells to dynamic libraries,
// generating the FFI wrapper that exposes a fixed C ABI entry point and
// caching artifacts by (source_hash, deps_hash). Grounded on
// original_source/crates/venus-core/src/compile/cell.rs.
package cellcompile

import "hash/fnv"

// HashSource computes source_hash over a cell's raw source text. Cache
// validity only needs process-lifetime stability (spec §4.5), so FNV-1a
// is sufficient.
func HashSource(sourceCode string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(sourceCode))
	return h.Sum64()
}
