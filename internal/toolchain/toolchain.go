// Package toolchain locates the host systems-language compiler and
// detects its optional fast-codegen backend (spec §4.3). The compiler
// name is a configurable command (default "go") rather than hardcoded,
// generalizing the notebook's "statically compiled systems language" to
// any toolchain exposing the same introspection subcommands, grounded on
// internal/command/plugins.go's exec.Command-based subprocess discovery
// and internal/toolchain_addons use of kardianos/osext for locating the
// current executable's directory.
package toolchain

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-version"
	"github.com/kardianos/osext"

	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// Info is everything the rest of the pipeline needs to know about the
// resolved host compiler.
type Info struct {
	CompilerPath    string
	Version         *version.Version
	RawVersion      string
	FastBackend     bool
	FastBackendFlag string
	Sysroot         string
	TargetLibDir    string
}

// Driver locates and invokes the host compiler.
type Driver struct {
	compilerName string
	logger       hclog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithCompilerName overrides the default "go" command name, letting the
// same engine target a different systems compiler.
func WithCompilerName(name string) Option {
	return func(d *Driver) { d.compilerName = name }
}

func WithLogger(l hclog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

func NewDriver(opts ...Option) *Driver {
	d := &Driver{compilerName: "go", logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Locate resolves the compiler binary and queries it for version, sysroot,
// and module cache directory. A missing compiler is a fatal startup error
// with a recovery hint, per spec §4.3.
func (d *Driver) Locate() (*Info, error) {
	path, err := exec.LookPath(d.compilerName)
	if err != nil {
		return nil, (&tfdiags.Diagnostic{
			Kind:    tfdiags.Toolchain,
			Message: "could not find compiler \"" + d.compilerName + "\" on PATH",
		}).WithHint("install the toolchain")
	}

	rawVersion, err := d.run(path, "version")
	if err != nil {
		return nil, &tfdiags.Diagnostic{
			Kind:    tfdiags.Toolchain,
			Message: "failed to query compiler version",
			Cause:   err,
		}
	}
	v := parseVersion(rawVersion)

	sysroot, _ := d.run(path, "env", "GOROOT")
	targetLibDir, _ := d.run(path, "env", "GOMODCACHE")

	info := &Info{
		CompilerPath: path,
		Version:      v,
		RawVersion:   strings.TrimSpace(rawVersion),
		Sysroot:      strings.TrimSpace(sysroot),
		TargetLibDir: strings.TrimSpace(targetLibDir),
	}

	info.FastBackend, info.FastBackendFlag = d.detectFastBackend(path)

	d.logger.Debug("resolved toolchain", "path", path, "version", info.RawVersion, "fast_backend", info.FastBackend)
	return info, nil
}

// detectFastBackend is best-effort: GOEXPERIMENT is the closest analogue
// to an opt-in, non-default codegen backend switch - when unset or empty,
// detection fails silently and the fast path is simply unavailable -
// never fatal (spec §4.3, Open Question resolved in SPEC_FULL.md §5).
func (d *Driver) detectFastBackend(path string) (available bool, flag string) {
	const candidateFlag = "GOEXPERIMENT=regabiwrappers"
	out, err := d.run(path, "env", "GOEXPERIMENT")
	if err != nil {
		return false, ""
	}
	if strings.TrimSpace(out) != "" {
		return true, candidateFlag
	}
	return false, ""
}

func (d *Driver) run(path string, args ...string) (string, error) {
	cmd := exec.Command(path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stdout.Len() > 0 {
			return stdout.String(), nil
		}
		return "", err
	}
	return stdout.String(), nil
}

// parseVersion extracts the first semver-looking field from a `go
// version` string, e.g. "go version go1.22.0 darwin/arm64" -> "1.22.0".
// Each field is tried with its leading "go" prefix stripped first, since
// go's own version fields (unlike a bare semver) carry that prefix.
func parseVersion(raw string) *version.Version {
	fields := strings.Fields(raw)
	for _, f := range fields {
		candidate := strings.TrimPrefix(f, "go")
		if v, err := version.NewVersion(candidate); err == nil {
			return v
		}
	}
	return nil
}

// SiblingShimDir returns the directory containing the running executable,
// used to search for a toolchain shim installed alongside Venus itself -
// the same pattern internal/command/plugins.go uses via osext.Executable
// to search beside the host binary before falling back to PATH.
func SiblingShimDir() (string, error) {
	exePath, err := osext.Executable()
	if err != nil {
		return "", err
	}
	idx := strings.LastIndexByte(exePath, '/')
	if idx < 0 {
		return ".", nil
	}
	return exePath[:idx], nil
}
