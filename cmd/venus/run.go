package main

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/venus-notebooks/venus/internal/executor"
	"github.com/venus-notebooks/venus/internal/graph"
	"github.com/venus-notebooks/venus/internal/ipc"
	"github.com/venus-notebooks/venus/internal/schema"
	"github.com/venus-notebooks/venus/internal/session"
	"github.com/venus-notebooks/venus/internal/state"
	"github.com/venus-notebooks/venus/internal/toolchain"
)

// defaultWorkerBinary is the name the worker subprocess is built under;
// run looks for it beside the venus binary first, falling back to PATH.
const defaultWorkerBinary = "venus-worker"

// RunCommand compiles a notebook source file and executes every cell in
// dependency order, printing a status line for each cell as it starts,
// completes ("<name>: ok"), or fails.
type RunCommand struct {
	Ui cli.Ui
}

func (c *RunCommand) Help() string {
	return strings.TrimSpace(`
Usage: venus run <notebook-file>

  Parses a notebook source file, compiles its cells, and executes them in
  dependency order in isolated worker processes, printing each cell's
  status as it starts, completes, or fails.
`)
}

func (c *RunCommand) Synopsis() string {
	return "Run a notebook's cells in dependency order"
}

func (c *RunCommand) Run(args []string) int {
	if len(args) != 1 {
		c.Ui.Error("run requires exactly one notebook source file argument")
		return 1
	}

	logger := hclog.New(&hclog.LoggerOptions{Name: "venus-run", Level: hclog.Warn})

	p, err := loadPipeline(args[0], logger)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	compiled, diags, err := p.compileAll()
	if err != nil {
		for _, d := range diags {
			c.Ui.Error(fmt.Sprintf("  %d:%d: %s", d.SourceLine, d.Column, d.Message))
		}
		c.Ui.Error(err.Error())
		return 1
	}

	workerPath, err := resolveWorkerBinary()
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	pool := ipc.NewPool(workerPath, 4, ipc.WithLogger(logger))
	defer pool.Shutdown()

	stateDir := filepath.Join(p.workDir, "state")
	stateManager, err := state.New(afero.NewOsFs(), stateDir, logger)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	sess := session.New()
	runner := executor.New(pool, stateManager)
	runner.SetCallback(&uiCallback{ui: c.Ui, session: sess})

	for id, cc := range compiled {
		cell := p.graph.Cell(id)
		runner.RegisterCell(executor.CompiledCell{
			CellID:         id,
			Name:           cell.Name,
			DylibPath:      cc.DylibPath,
			EntrySymbol:    cc.EntrySymbol,
			DepCount:       len(cell.Dependencies),
			ReturnTypeHash: schema.Primitive(cell.ReturnType).StructureHash,
		})
		sess.SetStatus(id, session.StatusIdle)
	}

	order := p.graph.TopologicalOrder()
	deps := make(map[graph.CellID][]graph.CellID, len(order))
	for _, id := range order {
		deps[id] = p.graph.Producers(id)
	}

	if err := runner.ExecuteInOrder(context.Background(), order, deps, 0); err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	now := time.Now()
	for _, id := range order {
		if out, ok := stateManager.GetOutput(id); ok {
			sess.RecordExecution(id, out.Bytes, out.DisplayText, now)
		}
	}

	c.Ui.Output(color.Color("[green]notebook run complete[reset]"))
	return 0
}

// uiCallback reports execution progress to the command's Ui as each cell
// starts, completes, or errors, keeping the session's per-cell status in
// step with what it prints (SPEC_FULL.md §3).
type uiCallback struct {
	ui      cli.Ui
	session *session.Session
}

func (u *uiCallback) OnCellStarted(id graph.CellID, name string) {
	u.session.SetStatus(id, session.StatusRunning)
	u.ui.Info(color.Color(fmt.Sprintf("[yellow]> %s[reset]", name)))
}

func (u *uiCallback) OnCellCompleted(id graph.CellID, name string) {
	u.session.SetStatus(id, session.StatusSuccess)
	u.ui.Output(color.Color(fmt.Sprintf("[green]%s: ok[reset]", name)))
}

func (u *uiCallback) OnCellError(id graph.CellID, name string, err error) {
	u.session.RecordError(id)
	u.ui.Error(fmt.Sprintf("%s: %s", name, err.Error()))
}

func resolveWorkerBinary() (string, error) {
	if dir, statErr := toolchain.SiblingShimDir(); statErr == nil {
		candidate := filepath.Join(dir, defaultWorkerBinary)
		if _, err := afero.NewOsFs().Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(defaultWorkerBinary)
	if err != nil {
		return "", fmt.Errorf("locating %s: not found beside venus or on PATH: %w", defaultWorkerBinary, err)
	}
	return path, nil
}
