package cellcompile

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/venus-notebooks/venus/internal/graph"
)

type cacheSidecar struct {
	SourceHash    uint64
	DepsHash      uint64
	DylibPath     string
	EntrySymbol   string
	Name          string
	CompileTimeMs int64
}

func sidecarPath(dir string, id graph.CellID) string {
	return filepath.Join(dir, fmt.Sprintf("%d.json", int(id)))
}

// checkCache returns a cached CompiledCell only if both source_hash and
// deps_hash still match what's on record - either input changing
// invalidates the cache entry (spec §4.5).
func checkCache(fs afero.Fs, dir string, id graph.CellID, sourceHash, depsHash uint64) (*CompiledCell, bool) {
	raw, err := afero.ReadFile(fs, sidecarPath(dir, id))
	if err != nil {
		return nil, false
	}
	var sc cacheSidecar
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, false
	}
	if sc.SourceHash != sourceHash || sc.DepsHash != depsHash {
		return nil, false
	}
	if exists, _ := afero.Exists(fs, sc.DylibPath); !exists {
		return nil, false
	}
	return &CompiledCell{
		CellID:        id,
		Name:          sc.Name,
		DylibPath:     sc.DylibPath,
		EntrySymbol:   sc.EntrySymbol,
		SourceHash:    sc.SourceHash,
		DepsHash:      sc.DepsHash,
		CompileTimeMs: sc.CompileTimeMs,
	}, true
}

func saveToCache(fs afero.Fs, dir string, compiled CompiledCell) error {
	sc := cacheSidecar{
		SourceHash:    compiled.SourceHash,
		DepsHash:      compiled.DepsHash,
		DylibPath:     compiled.DylibPath,
		EntrySymbol:   compiled.EntrySymbol,
		Name:          compiled.Name,
		CompileTimeMs: compiled.CompileTimeMs,
	}
	raw, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, sidecarPath(dir, compiled.CellID), raw, 0o644)
}
