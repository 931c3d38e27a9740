package cmd

import (
	"context"
	"io"
	"time"

	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/cli/go-gh/v2/pkg/text"
	"github.com/spf13/cobra"

	"github.com/yahsan2/sheet2jira/pkg/config"
	"github.com/yahsan2/sheet2jira/pkg/importer"
	"github.com/yahsan2/sheet2jira/pkg/jira"
	"github.com/yahsan2/sheet2jira/pkg/output"
	"github.com/yahsan2/sheet2jira/pkg/prompt"
	"github.com/yahsan2/sheet2jira/pkg/sheet"
	"github.com/yahsan2/sheet2jira/pkg/task"
	"github.com/yahsan2/sheet2jira/pkg/validate"
)

var (
	importSheet  string
	importDryRun bool
	importDelay  time.Duration
)

func init() {
	rootCmd.Flags().StringVarP(&importSheet, "sheet", "s", "", "Sheet name (defaults to SHEET_NAME, or a prompt in interactive mode)")
	rootCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show the issues that would be created without calling Jira")
	rootCmd.Flags().DurationVar(&importDelay, "delay", 0, "Pause between sub-task requests (overrides IMPORT_DELAY)")
}

// importOptions carries everything one import run reads besides the config
type importOptions struct {
	file   string
	sheet  string
	dryRun bool
	format output.FormatType

	// dir is searched for spreadsheets when file is empty.
	dir    string
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	isTTY      bool
	width      int
	debug      io.Writer
	debugColor bool
}

func runImport(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("delay") {
		cfg.Import.Delay = importDelay
	}

	terminal := term.FromEnv()
	width, _, _ := terminal.Size()

	opts := importOptions{
		sheet:      importSheet,
		dryRun:     importDryRun,
		format:     format,
		dir:        ".",
		in:         cmd.InOrStdin(),
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
		isTTY:      terminal.IsTerminalOutput(),
		width:      width,
		debugColor: terminal.IsColorEnabled(),
	}
	if len(args) > 0 {
		opts.file = args[0]
	}
	if debugHTTP {
		opts.debug = cmd.ErrOrStderr()
	}

	return executeImport(cmd.Context(), cfg, opts)
}

// executeImport runs config check, read, validate, group and create in order.
// Per-issue failures end up in the summary; only earlier stages return errors.
func executeImport(ctx context.Context, cfg *config.Config, opts importOptions) error {
	if !opts.dryRun {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Keep stdout clean for machine-readable formats
	progress := opts.out
	if opts.format != output.FormatTable {
		progress = opts.errOut
	}
	reporter := output.NewReporter(progress)

	table, err := readInput(cfg, opts, progress, reporter)
	if err != nil {
		return err
	}

	result, err := validate.New(cfg.Sheet.Columns).Validate(table)
	if result != nil && len(result.Warnings) > 0 {
		reporter.Warn("%s found", text.Pluralize(len(result.Warnings), "warning"))
		reporter.Detail(validate.Summarize(result.Warnings, validate.MaxReported))
	}
	if err != nil {
		return err
	}

	groups := task.Build(result.Records)
	reporter.Info("Found %s with %s",
		text.Pluralize(groups.Len(), "task"), text.Pluralize(groups.SubTaskCount(), "sub-task"))

	settings := importer.Settings{
		ProjectKey:    cfg.Jira.ProjectKey,
		ParentType:    cfg.IssueTypes.Parent,
		ChildType:     cfg.IssueTypes.Child,
		EstimateField: cfg.Jira.EstimateField,
		Delay:         cfg.Import.Delay,
	}
	formatter := output.NewFormatterWithWriter(opts.format, opts.out).WithTerminal(opts.isTTY, opts.width)

	if opts.dryRun {
		return formatter.FormatPlan(importer.New(nil, settings, reporter).Preview(groups))
	}

	client, err := jira.NewClient(jira.Options{
		BaseURL:    cfg.BaseURL(),
		Email:      cfg.Jira.Email,
		APIToken:   cfg.Jira.APIToken,
		APIVersion: cfg.Jira.APIVersion,
		StrictSSL:  cfg.Jira.StrictSSL,
		Timeout:    cfg.Jira.Timeout,
		Debug:      opts.debug,
		DebugColor: opts.debugColor,
	})
	if err != nil {
		return err
	}

	reporter.Header("Creating issues in %s on %s (REST API v%s)", cfg.Jira.ProjectKey, cfg.Hostname(), client.APIVersion())
	importResult := importer.New(client, settings, reporter).Run(ctx, groups)

	if opts.format != output.FormatTable {
		reporter.Info("Tasks: %d succeeded, %d failed; sub-tasks: %d created, %d failed",
			importResult.Succeeded, importResult.Failed, importResult.ChildrenCreated(), importResult.ChildrenFailed)
	}

	return formatter.FormatResult(importResult)
}

// readInput opens the named file, or asks for a file and sheet when none was given
func readInput(cfg *config.Config, opts importOptions, progress io.Writer, reporter *output.Reporter) (*sheet.Table, error) {
	path := opts.file
	sheetName := opts.sheet

	var selector *prompt.Selector
	if path == "" {
		selector = prompt.NewSelector(opts.in, progress)
		chosen, err := selector.SelectFile(opts.dir)
		if err != nil {
			return nil, err
		}
		path = chosen
	}

	wb, err := sheet.Open(path)
	if err != nil {
		return nil, err
	}

	if sheetName == "" {
		if selector != nil {
			sheetName, err = selector.SelectSheet(wb.SheetNames())
			if err != nil {
				return nil, err
			}
		} else {
			sheetName = cfg.Sheet.Name
		}
	}

	reporter.Info("Reading %s (sheet %q)", wb.Path(), sheetName)
	return wb.Table(sheetName)
}
