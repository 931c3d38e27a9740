package cmd

import (
	"fmt"

	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"

	"github.com/yahsan2/sheet2jira/pkg/config"
	"github.com/yahsan2/sheet2jira/pkg/jira"
	"github.com/yahsan2/sheet2jira/pkg/output"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List Jira fields that can hold an estimate",
	Long: `List the Jira fields whose name mentions "point" or "estimate".

Use the ID of the right field as STORY_POINTS_FIELD_ID (or jira.estimate_field
in .sheet2jira.yml) so parent and sub-task estimates land in it.`,
	Example: `  # Find the story points field
  sheet2jira fields

  # Show every field as JSON
  sheet2jira fields --all -o json`,
	Args: cobra.NoArgs,
	RunE: runFields,
}

var fieldsAll bool

func init() {
	rootCmd.AddCommand(fieldsCmd)
	fieldsCmd.Flags().BoolVar(&fieldsAll, "all", false, "List every field, not only estimate-like ones")
}

func runFields(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := jira.Options{
		BaseURL:    cfg.BaseURL(),
		Email:      cfg.Jira.Email,
		APIToken:   cfg.Jira.APIToken,
		APIVersion: cfg.Jira.APIVersion,
		StrictSSL:  cfg.Jira.StrictSSL,
		Timeout:    cfg.Jira.Timeout,
	}
	if debugHTTP {
		opts.Debug = cmd.ErrOrStderr()
	}

	client, err := jira.NewClient(opts)
	if err != nil {
		return err
	}

	fields, err := client.ListFields(cmd.Context())
	if err != nil {
		return err
	}
	if !fieldsAll {
		fields = jira.FindEstimateFields(fields)
	}

	terminal := term.FromEnv()
	width, _, _ := terminal.Size()
	formatter := output.NewFormatterWithWriter(format, cmd.OutOrStdout()).WithTerminal(terminal.IsTerminalOutput(), width)
	if err := formatter.FormatFields(fields); err != nil {
		return err
	}

	if format == output.FormatTable && len(fields) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nCurrent estimate field: %s\n", cfg.Jira.EstimateField)
	}
	return nil
}
