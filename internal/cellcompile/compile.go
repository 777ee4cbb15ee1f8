package cellcompile

import (
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/venus-notebooks/venus/internal/graph"
	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/toolchain"
)

// Compiler compiles cells to dynamic libraries, linking against a
// previously-built universe crate.
type Compiler struct {
	fs           afero.Fs
	workDir      string
	cacheDir     string
	universePath string
	driver       *toolchain.Driver
	logger       hclog.Logger
}

func NewCompiler(fs afero.Fs, workDir, cacheDir, universePath string, driver *toolchain.Driver, logger hclog.Logger) *Compiler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Compiler{
		fs: fs, workDir: workDir, cacheDir: cacheDir,
		universePath: universePath, driver: driver, logger: logger,
	}
}

// Compile compiles cell against depsHash, returning a cached result if
// both source_hash and deps_hash already matched a prior build.
func (c *Compiler) Compile(cell notebook.CodeCell, cellID graph.CellID, depsHash uint64) Result {
	sourceHash := HashSource(cell.SourceCode)

	if cached, ok := checkCache(c.fs, c.cacheDir, cellID, sourceHash, depsHash); ok {
		return Result{Kind: ResultCached, Compiled: cached, CellID: cellID}
	}

	start := time.Now()

	source, mappings := GenerateWrapper(cell)
	cellDir := filepath.Join(c.workDir, cell.Name)
	if err := c.fs.MkdirAll(cellDir, 0o755); err != nil {
		return Result{Kind: ResultFailed, CellID: cellID, Errors: []Diagnostic{{Message: err.Error()}}}
	}
	sourcePath := filepath.Join(cellDir, "wrapper.go")
	if err := afero.WriteFile(c.fs, sourcePath, []byte(source), 0o644); err != nil {
		return Result{Kind: ResultFailed, CellID: cellID, Errors: []Diagnostic{{Message: err.Error()}}}
	}

	dylibPath, rawDiags, err := c.compileToDylib(cellDir)
	if err != nil {
		diags := mapDiagnostics(rawDiags, mappings)
		return Result{Kind: ResultFailed, CellID: cellID, Errors: diags}
	}

	compiled := CompiledCell{
		CellID:        cellID,
		Name:          cell.Name,
		DylibPath:     dylibPath,
		EntrySymbol:   EntrySymbol(cell.Name),
		SourceHash:    sourceHash,
		DepsHash:      depsHash,
		CompileTimeMs: time.Since(start).Milliseconds(),
	}
	_ = saveToCache(c.fs, c.cacheDir, compiled)

	return Result{Kind: ResultSuccess, Compiled: &compiled, CellID: cellID}
}

func (c *Compiler) compileToDylib(cellDir string) (string, string, error) {
	info, err := c.driver.Locate()
	if err != nil {
		return "", "", err
	}

	dylibPath := filepath.Join(cellDir, "cell.so")
	args := []string{"build", "-buildmode=plugin", "-o", dylibPath}
	if c.universePath != "" {
		args = append(args, "-mod=mod")
	}
	args = append(args, ".")

	cmd := exec.Command(info.CompilerPath, args...)
	cmd.Dir = cellDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", string(out), err
	}
	return dylibPath, "", nil
}
