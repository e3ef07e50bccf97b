package version

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"sort"
	"text/tabwriter"
)

// Dependency is a module linked into the bbthread binary.
type Dependency struct {
	Path    string
	Version string
}

// dependencies lists the modules of info sorted by path. Replaced modules
// are reported under their replacement.
func dependencies(info *debug.BuildInfo) []Dependency {
	deps := make([]Dependency, 0, len(info.Deps))
	for _, m := range info.Deps {
		if m.Replace != nil {
			m = m.Replace
		}
		deps = append(deps, Dependency{Path: m.Path, Version: m.Version})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Path < deps[j].Path })
	return deps
}

// BuildInfo returns the toolchain, the target platform and the modules the
// binary was built with.
func BuildInfo() string {
	buf := new(bytes.Buffer)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintf(buf, "Go: %s %s/%s\nnot built in module mode\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return buf.String()
	}
	writeBuildInfo(buf, runtime.Version(), runtime.GOOS+"/"+runtime.GOARCH, info)
	return buf.String()
}

func writeBuildInfo(w io.Writer, goVersion, platform string, info *debug.BuildInfo) {
	fmt.Fprintf(w, "Go: %s %s\n", goVersion, platform)
	fmt.Fprintf(w, "Module: %s %s\n", info.Main.Path, info.Main.Version)
	deps := dependencies(info)
	if len(deps) == 0 {
		return
	}
	fmt.Fprintf(w, "Dependencies:\n")
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, dep := range deps {
		fmt.Fprintf(tw, "  %s\t%s\n", dep.Path, dep.Version)
	}
	tw.Flush()
}
