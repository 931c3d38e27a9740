package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/yahsan2/sheet2jira/pkg/output"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sheet2jira [file]",
	Short: "Create Jira issues and sub-tasks from a spreadsheet",
	Long: `Read a spreadsheet of tasks and create one Jira issue per task,
with a linked sub-task for every SUB-TASK row.

Rows sharing a TASK value form one group. The parent issue's estimate is the
sum of its sub-task points. When no file is given, spreadsheets in the current
directory are listed and you pick a file and a sheet by number.

Connection settings come from .env, .sheet2jira.yml and the environment.`,
	Example: `  # Pick a file and sheet interactively
  sheet2jira

  # Import a file using the configured sheet name
  sheet2jira backlog.xlsx

  # Preview without creating anything
  sheet2jira backlog.xlsx --sheet Sprint3 --dry-run`,
	Args:          cobra.MaximumNArgs(1),
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runImport,
}

// Global flags
var (
	outputFormat string
	debugHTTP    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, csv, quiet)")
	rootCmd.PersistentFlags().BoolVar(&debugHTTP, "debug", false, "Log HTTP requests and responses to stderr")
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		format, parseErr := output.ParseFormat(outputFormat)
		if parseErr != nil {
			format = output.FormatTable
		}
		_ = output.NewFormatterWithWriter(format, os.Stderr).FormatError(err)
		return 1
	}
	return 0
}
