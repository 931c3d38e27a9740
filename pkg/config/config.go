package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yahsan2/sheet2jira/pkg/importerr"
)

const (
	ConfigFileName = ".sheet2jira.yml"
	EnvFileName    = ".env"
)

// Config represents the importer configuration
type Config struct {
	Jira       JiraConfig       `yaml:"jira" mapstructure:"jira"`
	Sheet      SheetConfig      `yaml:"sheet" mapstructure:"sheet"`
	IssueTypes IssueTypesConfig `yaml:"issue_types" mapstructure:"issue_types"`
	Import     ImportConfig     `yaml:"import" mapstructure:"import"`
}

// JiraConfig represents tracker connection settings
type JiraConfig struct {
	Host          string        `yaml:"host" mapstructure:"host"`
	Email         string        `yaml:"email" mapstructure:"email"`
	APIToken      string        `yaml:"api_token,omitempty" mapstructure:"api_token"`
	ProjectKey    string        `yaml:"project_key" mapstructure:"project_key"`
	Protocol      string        `yaml:"protocol" mapstructure:"protocol"`
	APIVersion    string        `yaml:"api_version" mapstructure:"api_version"`
	StrictSSL     bool          `yaml:"strict_ssl" mapstructure:"strict_ssl"`
	EstimateField string        `yaml:"estimate_field" mapstructure:"estimate_field"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SheetConfig represents spreadsheet settings
type SheetConfig struct {
	Name    string        `yaml:"name" mapstructure:"name"`
	Columns ColumnsConfig `yaml:"columns" mapstructure:"columns"`
}

// ColumnsConfig maps the six logical columns to header text
type ColumnsConfig struct {
	Task         string `yaml:"task" mapstructure:"task"`
	Description  string `yaml:"description" mapstructure:"description"`
	Type         string `yaml:"type" mapstructure:"type"`
	SubTask      string `yaml:"sub_task" mapstructure:"sub_task"`
	SubTaskDesc  string `yaml:"sub_task_desc" mapstructure:"sub_task_desc"`
	SubTaskPoint string `yaml:"sub_task_point" mapstructure:"sub_task_point"`
}

// IssueTypesConfig represents the issue type names used on creation
type IssueTypesConfig struct {
	Parent string `yaml:"parent" mapstructure:"parent"`
	Child  string `yaml:"child" mapstructure:"child"`
}

// ImportConfig represents orchestration settings
type ImportConfig struct {
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`
}

// envBindings maps config keys to the environment variables that override them
var envBindings = map[string]string{
	"jira.host":                    "JIRA_HOST",
	"jira.email":                   "JIRA_EMAIL",
	"jira.api_token":               "JIRA_API_TOKEN",
	"jira.project_key":             "JIRA_PROJECT_KEY",
	"jira.protocol":                "JIRA_PROTOCOL",
	"jira.api_version":             "JIRA_API_VERSION",
	"jira.strict_ssl":              "JIRA_STRICT_SSL",
	"jira.estimate_field":          "STORY_POINTS_FIELD_ID",
	"jira.timeout":                 "JIRA_TIMEOUT",
	"sheet.name":                   "SHEET_NAME",
	"sheet.columns.task":           "COLUMN_TASK",
	"sheet.columns.description":    "COLUMN_DESCRIPTION",
	"sheet.columns.type":           "COLUMN_TYPE",
	"sheet.columns.sub_task":       "COLUMN_SUB_TASK",
	"sheet.columns.sub_task_desc":  "COLUMN_SUB_TASK_DESC",
	"sheet.columns.sub_task_point": "COLUMN_SUB_TASK_POINT",
	"issue_types.parent":           "DEFAULT_TASK_TYPE",
	"issue_types.child":            "DEFAULT_SUBTASK_TYPE",
	"import.delay":                 "IMPORT_DELAY",
}

// DefaultConfig returns a configuration with every optional value filled in
func DefaultConfig() *Config {
	return &Config{
		Jira: JiraConfig{
			Protocol:      "https",
			APIVersion:    "2",
			StrictSSL:     true,
			EstimateField: "customfield_10016",
			Timeout:       30 * time.Second,
		},
		Sheet: SheetConfig{
			Name: "Sheet1",
			Columns: ColumnsConfig{
				Task:         "TASK",
				Description:  "DESCRIPTION",
				Type:         "TYPE",
				SubTask:      "SUB-TASK",
				SubTaskDesc:  "SUB-TASK DESC",
				SubTaskPoint: "SUB-TASK POINT",
			},
		},
		IssueTypes: IssueTypesConfig{
			Parent: "Story",
			Child:  "Sub-task",
		},
		Import: ImportConfig{
			Delay: 500 * time.Millisecond,
		},
	}
}

// Load reads .env, the optional config file and the environment, in that order of precedence
func Load() (*Config, error) {
	// A missing .env is not an error; variables may come from the shell.
	_ = godotenv.Load(EnvFileName)

	return LoadFile(findConfigFile())
}

// LoadFile builds the configuration from defaults, the given yaml file (if any) and the environment
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("jira.protocol", d.Jira.Protocol)
	v.SetDefault("jira.api_version", d.Jira.APIVersion)
	v.SetDefault("jira.strict_ssl", d.Jira.StrictSSL)
	v.SetDefault("jira.estimate_field", d.Jira.EstimateField)
	v.SetDefault("jira.timeout", d.Jira.Timeout)
	v.SetDefault("sheet.name", d.Sheet.Name)
	v.SetDefault("sheet.columns.task", d.Sheet.Columns.Task)
	v.SetDefault("sheet.columns.description", d.Sheet.Columns.Description)
	v.SetDefault("sheet.columns.type", d.Sheet.Columns.Type)
	v.SetDefault("sheet.columns.sub_task", d.Sheet.Columns.SubTask)
	v.SetDefault("sheet.columns.sub_task_desc", d.Sheet.Columns.SubTaskDesc)
	v.SetDefault("sheet.columns.sub_task_point", d.Sheet.Columns.SubTaskPoint)
	v.SetDefault("issue_types.parent", d.IssueTypes.Parent)
	v.SetDefault("issue_types.child", d.IssueTypes.Child)
	v.SetDefault("import.delay", d.Import.Delay)
}

func (c *Config) normalize() {
	c.Jira.Host = strings.TrimRight(strings.TrimSpace(c.Jira.Host), "/")
	c.Jira.Email = strings.TrimSpace(c.Jira.Email)
	c.Jira.APIToken = strings.TrimSpace(c.Jira.APIToken)
	c.Jira.ProjectKey = strings.TrimSpace(c.Jira.ProjectKey)
	c.Jira.Protocol = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(c.Jira.Protocol)), "://")
}

// Validate checks that every mandatory connection field is present
func (c *Config) Validate() error {
	var missing []string

	if c.Jira.Host == "" {
		missing = append(missing, "JIRA_HOST")
	}
	if c.Jira.Email == "" {
		missing = append(missing, "JIRA_EMAIL")
	}
	if c.Jira.APIToken == "" {
		missing = append(missing, "JIRA_API_TOKEN")
	}
	if c.Jira.ProjectKey == "" {
		missing = append(missing, "JIRA_PROJECT_KEY")
	}

	if len(missing) > 0 {
		return importerr.New(importerr.KindMissingConfiguration,
			fmt.Sprintf("missing Jira configuration: %s", strings.Join(missing, ", ")))
	}

	return nil
}

// BaseURL returns the Jira site root, e.g. https://example.atlassian.net
func (c *Config) BaseURL() string {
	host := c.Jira.Host
	if strings.Contains(host, "://") {
		return host
	}

	protocol := c.Jira.Protocol
	if protocol == "" {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s", protocol, host)
}

// Hostname returns the Jira host without scheme or port
func (c *Config) Hostname() string {
	u, err := url.Parse(c.BaseURL())
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Save writes the configuration as yaml, leaving the API token out
func (c *Config) Save(path string) error {
	out := *c
	out.Jira.APIToken = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in current and parent directories
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Exists checks if configuration file exists
func Exists() bool {
	return findConfigFile() != ""
}

// FindConfigPath returns the path to the configuration file
func FindConfigPath() string {
	return findConfigFile()
}
