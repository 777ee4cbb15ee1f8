// Package state owns cell outputs for a session: an in-memory cache
// backed by an afero filesystem for persistence, plus the schema-change
// hook that invalidates stale outputs on breaking type changes. Grounded
// on original_source/crates/venus-core/src/state/manager.rs.
package state

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/venus-notebooks/venus/internal/graph"
	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/schema"
	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// Manager owns the in-memory and on-disk output caches for one session.
type Manager struct {
	fs       afero.Fs
	stateDir string
	logger   hclog.Logger

	mu           sync.RWMutex
	outputs      map[graph.CellID]*notebook.BoxedOutput
	fingerprints map[graph.CellID]schema.Fingerprint
	dirty        map[graph.CellID]bool
}

// New creates a state manager rooted at stateDir, ensuring it exists.
func New(fs afero.Fs, stateDir string, logger hclog.Logger) (*Manager, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := fs.MkdirAll(stateDir, 0o755); err != nil {
		return nil, &tfdiags.Diagnostic{Kind: tfdiags.IO, Message: "creating state directory", Cause: err}
	}
	return &Manager{
		fs:           fs,
		stateDir:     stateDir,
		logger:       logger,
		outputs:      make(map[graph.CellID]*notebook.BoxedOutput),
		fingerprints: make(map[graph.CellID]schema.Fingerprint),
		dirty:        make(map[graph.CellID]bool),
	}, nil
}

// StoreOutput records a pre-serialized output, typically produced by the
// executor from a worker's FFI result.
func (m *Manager) StoreOutput(id graph.CellID, output notebook.BoxedOutput) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[id] = &output
	m.dirty[id] = true
}

// GetOutput returns the cached output for id, if any.
func (m *Manager) GetOutput(id graph.CellID) (*notebook.BoxedOutput, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out, ok := m.outputs[id]
	return out, ok
}

// GetOutputTyped is the type-coherent counterpart to GetOutput: a reader
// that knows what type it expects to find passes expectedTypeHash, and a
// cached output tagged with a different non-zero hash is rejected with
// tfdiags.ErrSchemaEvolution rather than handed back silently (spec
// §4.10). An output with no type tag (TypeHash == 0, e.g. one that
// arrived straight from worker FFI bytes per notebook.BoxedOutput's
// documented limitation) is always trusted, since there's nothing to
// check it against.
func (m *Manager) GetOutputTyped(id graph.CellID, expectedTypeHash uint64) (*notebook.BoxedOutput, bool, error) {
	out, ok := m.GetOutput(id)
	if !ok {
		return nil, false, nil
	}
	if out.TypeHash != 0 && expectedTypeHash != 0 && out.TypeHash != expectedTypeHash {
		return nil, true, (&tfdiags.Diagnostic{
			Kind:    tfdiags.SchemaEvolution,
			Message: "cached output type does not match the type the reader expected",
		}).WithCell(int(id))
	}
	return out, true, nil
}

// HasOutput reports whether id has a cached output, in memory or on disk.
func (m *Manager) HasOutput(id graph.CellID) bool {
	m.mu.RLock()
	_, ok := m.outputs[id]
	m.mu.RUnlock()
	if ok {
		return true
	}
	exists, _ := afero.Exists(m.fs, m.outputPath(id))
	return exists
}

// Invalidate drops both the in-memory and on-disk cache entries for id.
func (m *Manager) Invalidate(id graph.CellID) {
	m.mu.Lock()
	delete(m.outputs, id)
	delete(m.fingerprints, id)
	delete(m.dirty, id)
	m.mu.Unlock()
	_ = m.fs.Remove(m.outputPath(id))
}

// InvalidateMany invalidates a batch of cells.
func (m *Manager) InvalidateMany(ids []graph.CellID) {
	for _, id := range ids {
		m.Invalidate(id)
	}
}

// OnCellModified invalidates id and its dependents, returning the full
// set invalidated - the canonical reactive cascade (spec §4.10).
func (m *Manager) OnCellModified(id graph.CellID, dependents []graph.CellID) []graph.CellID {
	invalidated := append([]graph.CellID{id}, dependents...)
	m.InvalidateMany(invalidated)
	return invalidated
}

// UpdateFingerprint compares new against any stored fingerprint for id,
// invalidating the cell's output on a breaking change and logging the
// transition.
func (m *Manager) UpdateFingerprint(id graph.CellID, newFP schema.Fingerprint) schema.Change {
	m.mu.Lock()
	old, had := m.fingerprints[id]
	m.fingerprints[id] = newFP
	m.mu.Unlock()

	if !had {
		return schema.Change{Kind: schema.ChangeNone}
	}

	change := schema.Compare(old, newFP)
	if change.IsBreaking() {
		m.Invalidate(id)
		m.logger.Warn("schema change invalidated cell output", "cell_id", id, "change", change.Description())
	}
	return change
}

// Flush persists every dirty output to disk.
func (m *Manager) Flush() error {
	m.mu.Lock()
	dirty := make([]graph.CellID, 0, len(m.dirty))
	for id := range m.dirty {
		dirty = append(dirty, id)
	}
	for id := range m.dirty {
		delete(m.dirty, id)
	}
	outputs := make(map[graph.CellID]*notebook.BoxedOutput, len(dirty))
	for _, id := range dirty {
		outputs[id] = m.outputs[id]
	}
	m.mu.Unlock()

	outputsDir := filepath.Join(m.stateDir, "outputs")
	if err := m.fs.MkdirAll(outputsDir, 0o755); err != nil {
		return &tfdiags.Diagnostic{Kind: tfdiags.IO, Message: "creating outputs directory", Cause: err}
	}

	for id, out := range outputs {
		if out == nil {
			continue
		}
		bytes, err := msgpack.Marshal(out)
		if err != nil {
			return &tfdiags.Diagnostic{Kind: tfdiags.Serialization, Message: "encoding cell output", CellID: cellIDPtr(id), Cause: err}
		}
		if err := afero.WriteFile(m.fs, m.outputPath(id), bytes, 0o644); err != nil {
			return &tfdiags.Diagnostic{Kind: tfdiags.IO, Message: "writing cell output", CellID: cellIDPtr(id), Cause: err}
		}
	}
	return nil
}

// Restore loads every cached output file present under {state_dir}/outputs
// into memory, returning the count restored. Files that fail to decode
// are skipped with a logged warning rather than aborting the whole scan.
func (m *Manager) Restore() (int, error) {
	outputsDir := filepath.Join(m.stateDir, "outputs")
	exists, err := afero.DirExists(m.fs, outputsDir)
	if err != nil {
		return 0, &tfdiags.Diagnostic{Kind: tfdiags.IO, Message: "checking outputs directory", Cause: err}
	}
	if !exists {
		return 0, nil
	}

	entries, err := afero.ReadDir(m.fs, outputsDir)
	if err != nil {
		return 0, &tfdiags.Diagnostic{Kind: tfdiags.IO, Message: "reading outputs directory", Cause: err}
	}

	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if filepath.Ext(name) != ".bin" {
			continue
		}
		stem := name[:len(name)-len(".bin")]
		var rawID int
		if _, err := fmt.Sscanf(stem, "%d", &rawID); err != nil {
			continue
		}

		bytes, err := afero.ReadFile(m.fs, filepath.Join(outputsDir, name))
		if err != nil {
			m.logger.Warn("failed to read cached output", "file", name, "error", err)
			continue
		}
		var out notebook.BoxedOutput
		if err := msgpack.Unmarshal(bytes, &out); err != nil {
			m.logger.Warn("failed to restore cached output", "file", name, "error", err)
			continue
		}

		id := graph.CellID(rawID)
		m.mu.Lock()
		m.outputs[id] = &out
		m.mu.Unlock()
		count++
	}

	m.logger.Info("restored cached outputs", "count", count)
	return count, nil
}

func (m *Manager) outputPath(id graph.CellID) string {
	return filepath.Join(m.stateDir, "outputs", fmt.Sprintf("%d.bin", int(id)))
}

func cellIDPtr(id graph.CellID) *int {
	v := int(id)
	return &v
}
