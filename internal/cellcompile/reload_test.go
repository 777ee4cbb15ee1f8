package cellcompile

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoadCopyProducesDistinctUUIDNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/dylibs/answer.so", []byte("fake"), 0o644))

	loader := NewScratchLoader(fs, "/scratch", time.Hour)
	a, err := loader.LoadCopy("/dylibs/answer.so")
	require.NoError(t, err)
	b, err := loader.LoadCopy("/dylibs/answer.so")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	exists, err := afero.Exists(fs, a)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestCleanupExpiredSkipsActiveCopies(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/dylibs/answer.so", []byte("fake"), 0o644))

	loader := NewScratchLoader(fs, "/scratch", -time.Second) // already expired
	path, err := loader.LoadCopy("/dylibs/answer.so")
	require.NoError(t, err)

	require.NoError(t, loader.CleanupExpired())
	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	require.True(t, exists, "active copy must survive cleanup regardless of age")

	loader.Release(path)
	require.NoError(t, loader.CleanupExpired())
	exists, err = afero.Exists(fs, path)
	require.NoError(t, err)
	require.False(t, exists, "released, expired copy must be removed")
}
