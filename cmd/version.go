package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// buildInfo lists the fields stamped into the binary, in display order.
func buildInfo() [][2]string {
	return [][2]string{
		{"Version", version},
		{"Commit", commit},
		{"Built", date},
		{"Go", runtime.Version()},
		{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
	}
}

// versionCmd prints build metadata, handy when filing bug reports.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print hotmap build information",
	Long: `Print the hotmap release together with the commit and date it was built
from and the Go toolchain and platform it targets.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, "hotmap CLI")
		for _, kv := range buildInfo() {
			_, _ = fmt.Fprintf(out, "  %-9s %s\n", kv[0]+":", kv[1])
		}
	},
}
