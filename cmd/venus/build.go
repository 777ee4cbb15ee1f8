package main

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// BuildCommand compiles every cell in a notebook source file to a dylib
// without executing any of them - the "does this notebook compile"
// check a CI job or pre-commit hook would run.
type BuildCommand struct {
	Ui cli.Ui
}

func (c *BuildCommand) Help() string {
	return strings.TrimSpace(`
Usage: venus build <notebook-file>

  Parses a notebook source file, builds its dependency graph and shared
  universe crate, and compiles every cell to a dynamic library without
  executing any of them.
`)
}

func (c *BuildCommand) Synopsis() string {
	return "Compile a notebook's cells without running them"
}

func (c *BuildCommand) Run(args []string) int {
	if len(args) != 1 {
		c.Ui.Error("build requires exactly one notebook source file argument")
		return 1
	}

	logger := hclog.New(&hclog.LoggerOptions{Name: "venus-build", Level: hclog.Warn})

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

	c.Ui.Output(color.Color(fmt.Sprintf("[green]built %d cells successfully[reset]", len(compiled))))
	return 0
}
