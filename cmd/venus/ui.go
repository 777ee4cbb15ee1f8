package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
	"github.com/mitchellh/colorstring"
)

// colorizeUi colors its output according to per-kind color schemes,
// mirroring the teacher's internal/command/cli_ui.go ColorizeUi.
type colorizeUi struct {
	colorize    *colorstring.Colorize
	outputColor string
	infoColor   string
	errorColor  string
	warnColor   string
	ui          cli.Ui
}

func (u *colorizeUi) Ask(query string) (string, error)   { return u.ui.Ask(u.color(query, u.outputColor)) }
func (u *colorizeUi) AskSecret(q string) (string, error) { return u.ui.AskSecret(u.color(q, u.outputColor)) }
func (u *colorizeUi) Output(message string)              { u.ui.Output(u.color(message, u.outputColor)) }
func (u *colorizeUi) Info(message string)                { u.ui.Info(u.color(message, u.infoColor)) }
func (u *colorizeUi) Error(message string)                { u.ui.Error(u.color(message, u.errorColor)) }
func (u *colorizeUi) Warn(message string)                 { u.ui.Warn(u.color(message, u.warnColor)) }

func (u *colorizeUi) color(message, c string) string {
	if c == "" {
		return message
	}
	return u.colorize.Color(fmt.Sprintf("%s%s[reset]", c, message))
}

func newBasicUI() cli.Ui {
	return &colorizeUi{
		colorize: color,
		ui: &cli.BasicUi{
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
			Reader:      os.Stdin,
		},
		errorColor: "[red]",
		warnColor:  "[yellow]",
	}
}
