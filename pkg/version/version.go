package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Version represents the current version of bbthread.
type Version struct {
	Major    string
	Minor    string
	Patch    string
	Metadata string
	Build    string
}

// ToolVersion is the current version of bbthread.
var ToolVersion = Version{
	Major: "0", Minor: "3", Patch: "0", Metadata: "",
	Build: "$Id$",
}

func (v Version) String() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		stampBuild(&v, info)
	}
	ver := fmt.Sprintf("Version: %s.%s.%s", v.Major, v.Minor, v.Patch)
	if v.Metadata != "" {
		ver += "-" + v.Metadata
	}
	return fmt.Sprintf("%s\nBuild: %s", ver, v.Build)
}

// stampBuild replaces an unexpanded Build with the VCS revision recorded by
// the go command. Builds from a modified tree are marked as such.
func stampBuild(v *Version, info *debug.BuildInfo) {
	if !strings.HasPrefix(v.Build, "$Id") {
		return
	}
	var rev string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			rev = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if rev == "" {
		return
	}
	if modified {
		rev += " (modified)"
	}
	v.Build = rev
}
