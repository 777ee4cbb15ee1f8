package universe

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/tfdiags"
	"github.com/venus-notebooks/venus/internal/toolchain"
)

// Builder synthesizes and builds the universe crate: the shared
// dependency manifest plus every lifted type/helper definition, linked
// by every compiled cell.
type Builder struct {
	fs      afero.Fs
	dir     string
	driver  *toolchain.Driver
	logger  hclog.Logger
}

func NewBuilder(fs afero.Fs, dir string, driver *toolchain.Driver, logger hclog.Logger) *Builder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Builder{fs: fs, dir: dir, driver: driver, logger: logger}
}

const hashSidecarName = ".universe-hash"

// Result reports what the build produced.
type Result struct {
	DepsHash uint64
	Cached   bool
	DylibPath string
}

// Build regenerates and rebuilds the universe crate unless its hash sidecar
// already matches the current deps_hash, per spec §4.4's "rebuild the shared
// manifest only when it changes" cache contract.
func (b *Builder) Build(deps []notebook.ExternalDependency, defs []notebook.DefinitionCell) (*Result, error) {
	h := DepsHash(deps, defs)

	if cached, ok := b.readCachedHash(); ok && cached == h {
		return &Result{DepsHash: h, Cached: true, DylibPath: b.dylibPath()}, nil
	}

	if err := b.fs.MkdirAll(b.dir, 0o755); err != nil {
		return nil, &tfdiags.Diagnostic{Kind: tfdiags.IO, Message: "creating universe directory", Cause: err}
	}

	source := b.synthesizeSource(defs)
	if err := afero.WriteFile(b.fs, filepath.Join(b.dir, "universe.go"), []byte(source), 0o644); err != nil {
		return nil, &tfdiags.Diagnostic{Kind: tfdiags.IO, Message: "writing universe source", Cause: err}
	}

	manifest := b.synthesizeManifest(deps)
	if err := afero.WriteFile(b.fs, filepath.Join(b.dir, "go.mod"), []byte(manifest), 0o644); err != nil {
		return nil, &tfdiags.Diagnostic{Kind: tfdiags.IO, Message: "writing universe manifest", Cause: err}
	}

	if err := b.invokeBuild(); err != nil {
		return nil, err
	}

	b.writeHash(h)
	return &Result{DepsHash: h, Cached: false, DylibPath: b.dylibPath()}, nil
}

func (b *Builder) dylibPath() string {
	return filepath.Join(b.dir, "universe.so")
}

func (b *Builder) synthesizeSource(defs []notebook.DefinitionCell) string {
	var sb strings.Builder
	sb.WriteString("package universe\n\n")
	for _, def := range defs {
		sb.WriteString(AugmentDerives(def.Content))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (b *Builder) synthesizeManifest(deps []notebook.ExternalDependency) string {
	var sb strings.Builder
	sb.WriteString("module venus/universe\n\ngo 1.24\n")
	if len(deps) > 0 {
		sb.WriteString("\nrequire (\n")
		for _, d := range deps {
			version := d.Version
			if version == "" {
				version = "v0.0.0"
			}
			fmt.Fprintf(&sb, "\t%s %s\n", d.Name, version)
		}
		sb.WriteString(")\n")
	}
	return sb.String()
}

// invokeBuild compiles the synthesized crate to a shared library, the Go
// analogue of "build a cdylib" (SPEC_FULL.md §2.4): `go build
// -buildmode=plugin` under the resolved compiler, matching the worker's
// dynamic-loader expectations (cmd/venus-worker/dlopen.go).
func (b *Builder) invokeBuild() error {
	info, err := b.driver.Locate()
	if err != nil {
		return err
	}
	cmd := exec.Command(info.CompilerPath, "build", "-buildmode=plugin", "-o", "universe.so", ".")
	cmd.Dir = b.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &tfdiags.Diagnostic{
			Kind:    tfdiags.Compilation,
			Message: "building universe: " + string(out),
			Cause:   err,
		}
	}
	b.logger.Debug("built universe", "dir", b.dir)
	return nil
}

func (b *Builder) readCachedHash() (uint64, bool) {
	raw, err := afero.ReadFile(b.fs, filepath.Join(b.dir, hashSidecarName))
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (b *Builder) writeHash(h uint64) {
	_ = afero.WriteFile(b.fs, filepath.Join(b.dir, hashSidecarName), []byte(strconv.FormatUint(h, 10)), 0o644)
}
