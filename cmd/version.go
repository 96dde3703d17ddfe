package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags; otherwise filled from the module build info.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v, c := buildVersion()
		fmt.Fprintf(cmd.OutOrStdout(), "zcfg %s (%s) built %s with %s\n", v, c, date, runtime.Version())
	},
}

// buildVersion returns the version and commit, falling back to the module
// version and VCS revision recorded by go install.
func buildVersion() (string, string) {
	v, c := version, commit

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, c
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && c == "none" && len(s.Value) >= 7 {
			c = s.Value[:7]
		}
	}
	return v, c
}
