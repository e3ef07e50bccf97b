//go:build !windows
// +build !windows

package cmds

import (
	"io"
	"os"
)

// getColorableWriter simply returns stdout on
// *nix machines.
func getColorableWriter() io.Writer {
	return os.Stdout
}
