package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information set at compile time via ldflags
var (
	Commit = "none"
	Date   = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display the sheet2jira version, and with --verbose the commit hash and build date.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sheet2jira version %s\n", Version)
		if verbose {
			fmt.Fprintf(out, "  commit: %s\n", Commit)
			fmt.Fprintf(out, "  built:  %s\n", Date)
		}
	},
}

var verbose bool

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed version information")
}
