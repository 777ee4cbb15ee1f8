package toolchain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venus-notebooks/venus/internal/tfdiags"
)

func TestLocateMissingCompilerIsFatalWithHint(t *testing.T) {
	d := NewDriver(WithCompilerName("venus-nonexistent-compiler-xyz"))
	_, err := d.Locate()
	require.Error(t, err)

	diag, ok := err.(*tfdiags.Diagnostic)
	require.True(t, ok)
	require.Equal(t, tfdiags.Toolchain, diag.Kind)
	require.Equal(t, "install the toolchain", diag.RecoveryHint)
}

func TestParseVersionExtractsFirstSemver(t *testing.T) {
	v := parseVersion("go version go1.22.0 darwin/arm64")
	require.NotNil(t, v)
	require.Equal(t, "1.22.0", v.String())
}

func TestParseVersionNoneFound(t *testing.T) {
	v := parseVersion("not a version string at all")
	require.Nil(t, v)
}
