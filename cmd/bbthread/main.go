package main

import (
	"os"

	"github.com/vegetable-and-chicken/Blackbone/cmd/bbthread/cmds"
	"github.com/vegetable-and-chicken/Blackbone/pkg/version"
)

// Build is the git sha of this binaries build.
var Build string

func main() {
	if Build != "" {
		version.ToolVersion.Build = Build
	}
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
