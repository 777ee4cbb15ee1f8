package ipc

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKillHandleIdempotent(t *testing.T) {
	cmd := exec.Command("/bin/sleep", "30")
	require.NoError(t, cmd.Start())

	kh := newKillHandle(cmd.Process)
	require.False(t, kh.Killed())

	require.NoError(t, kh.Kill())
	require.True(t, kh.Killed())

	// second call is a no-op, not an error
	require.NoError(t, kh.Kill())

	_ = cmd.Wait()
}
