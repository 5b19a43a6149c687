package main

import (
	"os"

	"github.com/michaeldyrynda/scriptrun/internal/cli"
)

// These variables are set at build time via -ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.BuildDate = date
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
