package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
	"github.com/mitchellh/colorstring"
)

// Ui is the cli.Ui used for communicating to the outside world. Kept as a
// package var, mirroring the teacher's cmd/tofu entry point, since
// command constructors need it before the cli.CLI is assembled.
var Ui cli.Ui

var color = &colorstring.Colorize{
	Colors: colorstring.DefaultColors,
	Reset:  true,
}

func init() {
	Ui = newBasicUI()
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	args := os.Args[1:]

	c := &cli.CLI{
		Name:     "venus",
		Args:     args,
		Commands: commands(),
		HelpFunc: cli.BasicHelpFunc("venus"),
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
		return 1
	}
	return exitCode
}
