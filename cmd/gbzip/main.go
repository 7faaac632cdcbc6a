// Package main is the entry point for the gbzip CLI tool.
package main

import (
	"os"

	"github.com/gbzip/gbzip/internal/buildinfo"
	"github.com/gbzip/gbzip/internal/cli"
)

// Build-time metadata injected via ldflags, copied into internal/buildinfo
// before the command tree runs.
var (
	version   = "dev"
	commit    = "none"
	date      = "unknown"
	goVersion = "unknown"
)

func main() {
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date
	buildinfo.GoVersion = goVersion

	os.Exit(cli.Execute())
}
