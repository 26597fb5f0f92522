package main

import (
	"github.com/alecthomas/kong"
)

// Globals holds the flags shared by every command.
type Globals struct {
	Config string `help:"Path to a YAML configuration file." type:"path"`
	Debug  bool   `help:"Enable debug logging."`
}

var root struct {
	Globals

	Shell  shellCmd  `cmd:"" default:"1" help:"Start the interactive shell."`
	Exec   execCmd   `cmd:"" help:"Run a single command, save and exit."`
	Events eventsCmd `cmd:"" help:"Print ledger events from the broker until interrupted."`
}

func main() {
	ctx := kong.Parse(&root,
		kong.Name("moneytracker"),
		kong.Description("A personal income and expense tracker."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&root.Globals)
	ctx.FatalIfErrorf(err)
}
