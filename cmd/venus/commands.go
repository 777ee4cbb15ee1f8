package main

import "github.com/mitchellh/cli"

// commands is the mapping of available venus commands. Only "run" and
// "build" are wired: the notebook's interactive frontends (watch, a
// WebSocket server, ipynb sync, a terminal renderer, an LSP proxy, HTML
// export) are out of scope here and left to a separate driver that
// consumes these same internal packages.
func commands() map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"run": func() (cli.Command, error) {
			return &RunCommand{Ui: Ui}, nil
		},
		"build": func() (cli.Command, error) {
			return &BuildCommand{Ui: Ui}, nil
		},
	}
}
