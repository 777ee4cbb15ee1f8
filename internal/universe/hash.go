// Package universe builds the shared crate that every compiled cell
// links against: the lifted type/helper definitions plus the notebook's
// external dependency manifest, content-addressed so cells only rebuild
// against it when its shape actually changes (spec §4.4), grounded on
// original_source/crates/venus-core/src/compile/universe.rs.
package universe

import (
	"hash/fnv"
	"sort"

	"github.com/venus-notebooks/venus/internal/notebook"
)

// DepsHash computes deps_hash = H(dependencies) ^ H(type_definitions)
// using FNV-1a over a canonical encoding: dependency names sorted, then
// definition content concatenated in parse order. Process-lifetime
// stability is all the spec requires, so a non-cryptographic hash is
// deliberate (SPEC_FULL.md §2.4) rather than an oversight.
func DepsHash(deps []notebook.ExternalDependency, defs []notebook.DefinitionCell) uint64 {
	return hashDependencies(deps) ^ hashDefinitions(defs)
}

func hashDependencies(deps []notebook.ExternalDependency) uint64 {
	names := make([]string, len(deps))
	byName := make(map[string]notebook.ExternalDependency, len(deps))
	for _, d := range deps {
		names = append(names, d.Name)
		byName[d.Name] = d
	}
	sort.Strings(names)

	h := fnv.New64a()
	for _, name := range names {
		d := byName[name]
		h.Write([]byte(d.Name))
		h.Write([]byte(d.Version))
		h.Write([]byte(d.LocalPath))
		for _, f := range d.Features {
			h.Write([]byte(f))
		}
	}
	return h.Sum64()
}

func hashDefinitions(defs []notebook.DefinitionCell) uint64 {
	h := fnv.New64a()
	for _, def := range defs {
		h.Write([]byte(def.Content))
	}
	return h.Sum64()
}
