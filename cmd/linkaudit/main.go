// Package main implements the linkaudit CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"linkaudit/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "linkaudit",
	Short: "Post-build shared-library linkage auditor",
	Long:  `linkaudit inspects the staged artifacts of a native-library build for broken or external linkage and reports what to fix.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("jobs", 0, "max parallel ldd invocations (0=auto)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color mode against the stream we write to.
func useColor(mode string, f *os.File) bool {
	return mode == "on" || (mode == "auto" && isTerminal(f))
}
