package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yahsan2/sheet2jira/pkg/config"
	"github.com/yahsan2/sheet2jira/pkg/output"
	"github.com/yahsan2/sheet2jira/pkg/prompt"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .sheet2jira.yml configuration file",
	Long: `Write a starter .sheet2jira.yml in the current directory.

The file holds the Jira host, project, issue types, column names and pacing.
The API token is never written; keep it in .env or the environment as
JIRA_API_TOKEN.`,
	Example: `  # Write defaults and edit by hand
  sheet2jira init

  # Prefill connection settings
  sheet2jira init --host example.atlassian.net --email me@example.com --project PRJ`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initHost    string
	initEmail   string
	initProject string
	initForce   bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initHost, "host", "", "Jira host, e.g. example.atlassian.net")
	initCmd.Flags().StringVar(&initEmail, "email", "", "Account email")
	initCmd.Flags().StringVar(&initProject, "project", "", "Project key")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration file without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg := config.DefaultConfig()
	cfg.Jira.Host = initHost
	cfg.Jira.Email = initEmail
	cfg.Jira.ProjectKey = initProject

	existing := config.FindConfigPath()
	if config.Exists() && filepath.Dir(existing) != dir {
		output.NewReporter(cmd.OutOrStdout()).Info("Found %s; the new file in this directory takes precedence", existing)
	}

	_, err = writeConfig(dir, cfg, initForce, cmd.InOrStdin(), cmd.OutOrStdout())
	return err
}

// writeConfig saves cfg into dir, asking before it replaces an existing file.
// It reports whether the file was written.
func writeConfig(dir string, cfg *config.Config, force bool, in io.Reader, out io.Writer) (bool, error) {
	reporter := output.NewReporter(out)
	path := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(path); err == nil && !force {
		selector := prompt.NewSelector(in, out)
		if !selector.Confirm(fmt.Sprintf("%s already exists. Overwrite it?", config.ConfigFileName)) {
			reporter.Info("Initialization cancelled")
			return false, nil
		}
	}

	if err := cfg.Save(path); err != nil {
		return false, err
	}

	reporter.Success("Wrote %s", path)
	if cfg.Jira.Host == "" || cfg.Jira.Email == "" || cfg.Jira.ProjectKey == "" {
		reporter.Info("Fill in the jira section, or set JIRA_HOST, JIRA_EMAIL and JIRA_PROJECT_KEY")
	}
	reporter.Info("Set JIRA_API_TOKEN in %s or the environment", config.EnvFileName)

	return true, nil
}
