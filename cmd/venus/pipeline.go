package main

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/venus-notebooks/venus/internal/cellcompile"
	"github.com/venus-notebooks/venus/internal/graph"
	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/parser"
	"github.com/venus-notebooks/venus/internal/query"
	"github.com/venus-notebooks/venus/internal/toolchain"
	"github.com/venus-notebooks/venus/internal/universe"
)

// pipeline holds everything shared between the run and build commands: a
// parsed+graphed notebook and a compiled universe ready to link cells
// against.
type pipeline struct {
	fs      afero.Fs
	workDir string
	logger  hclog.Logger

	queries *query.Engine

	parsed   *notebook.ParsedFile
	graph    *graph.Graph
	analysis *query.Analysis
	univ     *universe.Result
	compile  *cellcompile.Compiler
}

// loadPipeline parses sourcePath, builds its dependency graph, and builds
// the shared universe crate all cells link against. Parsing and graph
// analysis are routed through a query.Engine keyed by the source's
// content hash (SPEC_FULL.md §2.12); the engine is created fresh on every
// call, so nothing is reused from one load to the next.
func loadPipeline(sourcePath string, logger hclog.Logger) (*pipeline, error) {
	fs := afero.NewOsFs()
	queries := query.New()

	source, err := afero.ReadFile(fs, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sourcePath, err)
	}
	contentKey := fmt.Sprintf("%s@%d", sourcePath, query.HashContent(string(source)))

	parseResult := queries.Eval(query.ParseCells, contentKey, func() query.Result {
		pf, err := parser.Parse(sourcePath, string(source))
		if err != nil {
			return query.Err(err)
		}
		return query.Ok(pf)
	})
	if !parseResult.IsOk() {
		return nil, fmt.Errorf("parsing %s: %w", sourcePath, parseResult.Err)
	}
	parsed := parseResult.Value.(*notebook.ParsedFile)

	graphResult := queries.Eval(query.GraphAnalysis, contentKey, func() query.Result {
		g, err := graph.Build(parsed.Cells)
		if err != nil {
			return query.Err(err)
		}
		return query.Ok(&query.Analysis{Graph: g})
	})
	if !graphResult.IsOk() {
		return nil, fmt.Errorf("building cell graph: %w", graphResult.Err)
	}
	analysis := graphResult.Value.(*query.Analysis)

	workDir := filepath.Join(filepath.Dir(sourcePath), ".venus")
	driver := toolchain.NewDriver()

	univBuilder := universe.NewBuilder(fs, filepath.Join(workDir, "universe"), driver, logger)
	univ, err := univBuilder.Build(parsed.Dependencies, parsed.Definitions)
	if err != nil {
		return nil, fmt.Errorf("building universe: %w", err)
	}

	compiler := cellcompile.NewCompiler(fs, filepath.Join(workDir, "cells"), filepath.Join(workDir, "cache"), univ.DylibPath, driver, logger)

	return &pipeline{
		fs: fs, workDir: workDir, logger: logger, queries: queries,
		parsed: parsed, graph: analysis.Graph, analysis: analysis, univ: univ, compile: compiler,
	}, nil
}

// compileAll compiles every cell in topological order so a cell never
// compiles before the definitions and universe symbols it depends on
// exist, returning the first compile failure it hits. Each cell's compile
// is memoized in the pipeline's query engine by (name, deps_hash), so a
// second call against the same pipeline reuses every earlier compile
// result; the cell's source is not part of the key.
func (p *pipeline) compileAll() (map[graph.CellID]*cellcompile.CompiledCell, []cellcompile.Diagnostic, error) {
	compiled := make(map[graph.CellID]*cellcompile.CompiledCell)
	order := p.analysis.ExecutionOrder()

	for _, id := range order {
		cell := p.graph.Cell(id)
		key := fmt.Sprintf("%s@%d", cell.Name, p.univ.DepsHash)

		queried := p.queries.Eval(query.CompileCell, key, func() query.Result {
			return query.Ok(p.compile.Compile(cell, id, p.univ.DepsHash))
		})
		result := queried.Value.(cellcompile.Result)

		switch result.Kind {
		case cellcompile.ResultFailed:
			return compiled, result.Errors, fmt.Errorf("cell %q failed to compile", cell.Name)
		default:
			compiled[id] = result.Compiled
		}
	}
	return compiled, nil, nil
}
