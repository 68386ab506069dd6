package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags "-X github.com/abhisek/dailytutor/cmd.version=vX.Y.Z".
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dailytutor build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dailytutor %s (%s, %s/%s)\n",
			resolveVersion(version, readBuildInfo), runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func readBuildInfo() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	return info.Main.Version, true
}

// resolveVersion prefers the linker-stamped version and falls back to the
// module version recorded by `go install`.
func resolveVersion(stamped string, buildInfo func() (string, bool)) string {
	if stamped != "" && stamped != "(devel)" {
		return stamped
	}
	if v, ok := buildInfo(); ok && v != "" {
		return v
	}
	return "(devel)"
}
