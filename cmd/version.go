package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags "-X github.com/abhisek/olytutor/cmd.version=...".
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "olytutor %s (%s %s/%s)\n",
			resolvedVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

// resolvedVersion prefers the linker-injected version, then the module
// version recorded by `go install`.
func resolvedVersion() string {
	if version != "(devel)" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return version
}
