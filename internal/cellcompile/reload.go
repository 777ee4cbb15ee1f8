package cellcompile

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ScratchLoader indirects dylib loading through UUID-named copies under a
// scratch directory, matching spec.md's "Resource lifetimes" contract for
// platforms where replacing an in-use dylib is forbidden: recompiling a
// cell while a prior version is still loaded must not fail, so the loader
// never hands out the original DylibPath directly, only a disposable copy.
type ScratchLoader struct {
	fs      afero.Fs
	dir     string
	ttl     time.Duration
	mu      sync.Mutex
	active  map[string]struct{} // scratch paths currently handed out, never reaped
	created map[string]time.Time
}

// NewScratchLoader returns a loader rooted at dir with ttl as the cleanup
// threshold for copies no longer tracked as active.
func NewScratchLoader(fs afero.Fs, dir string, ttl time.Duration) *ScratchLoader {
	return &ScratchLoader{
		fs:      fs,
		dir:     dir,
		ttl:     ttl,
		active:  make(map[string]struct{}),
		created: make(map[string]time.Time),
	}
}

// LoadCopy makes a UUID-named copy of srcPath under the scratch directory
// and marks it active so CleanupExpired never removes it while in use.
// Callers release the copy with Release once the compiled cell handle is
// dropped.
func (s *ScratchLoader) LoadCopy(srcPath string) (string, error) {
	content, err := afero.ReadFile(s.fs, srcPath)
	if err != nil {
		return "", fmt.Errorf("cellcompile: reading dylib for scratch copy: %w", err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("cellcompile: creating scratch dir: %w", err)
	}

	name := uuid.New().String() + filepath.Ext(srcPath)
	dst := filepath.Join(s.dir, name)
	if err := afero.WriteFile(s.fs, dst, content, 0o755); err != nil {
		return "", fmt.Errorf("cellcompile: writing scratch copy: %w", err)
	}

	s.mu.Lock()
	s.active[dst] = struct{}{}
	s.created[dst] = time.Now()
	s.mu.Unlock()

	return dst, nil
}

// Release stops tracking scratchPath as active, making it eligible for
// cleanup on its next CleanupExpired pass (it still must age past the TTL
// first - release alone does not delete it).
func (s *ScratchLoader) Release(scratchPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, scratchPath)
}

// CleanupExpired removes scratch copies older than the configured TTL,
// skipping any still tracked as active regardless of age.
func (s *ScratchLoader) CleanupExpired() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for path, createdAt := range s.created {
		if _, stillActive := s.active[path]; stillActive {
			continue
		}
		if now.Sub(createdAt) < s.ttl {
			continue
		}
		if err := s.fs.Remove(path); err != nil && !isNotExist(s.fs, path) {
			return fmt.Errorf("cellcompile: removing expired scratch copy %s: %w", path, err)
		}
		delete(s.created, path)
	}
	return nil
}

func isNotExist(fs afero.Fs, path string) bool {
	exists, err := afero.Exists(fs, path)
	return err == nil && !exists
}
