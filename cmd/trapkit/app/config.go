package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/pkg/constants"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/reconciler"
	"github.com/agentstation/trapkit/pkg/trials"
)

// Default contribution descriptor for the extended validation batch.
const (
	DefaultContributionID          = "affonso-2026-extended"
	DefaultContributor             = "Affonso (2026)"
	DefaultContributionDate        = "2026-02-18"
	DefaultContributionType        = "model-data"
	DefaultContributionDescription = "Extended validation: 34 vision-language models tested via API (10 trials per trap per model, 2,040 total trials)"
	DefaultContributionSource      = "Affonso (2026), Extended validation"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	Format  string

	// Config file
	ConfigFile string

	// Knowledge base configuration
	Document  string
	Tables    string
	Trials    []string
	Columns   trials.Columns
	Sheet     string
	Backup    bool
	BackupDir string

	// Contribution descriptor for update runs
	Contribution reconciler.Contribution

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (TRAPKIT_*)
// 3. .env files
// 4. Config file (.trapkit.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+configFile, err)
		}
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)

		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Document: v.GetString("document"),
		Tables:   v.GetString("tables"),
		Trials:   v.GetStringSlice("trials"),
		Columns: trials.Columns{
			Model:   v.GetString("columns.model"),
			Test:    v.GetString("columns.test"),
			Correct: v.GetString("columns.correct"),
		},
		Sheet:     v.GetString("sheet"),
		Backup:    v.GetBool("backup"),
		BackupDir: v.GetString("backup_dir"),

		Contribution: withBatchDefaults(reconciler.Contribution{
			ID:          v.GetString("contribution.id"),
			Contributor: v.GetString("contribution.contributor"),
			Date:        v.GetString("contribution.date"),
			Type:        v.GetString("contribution.type"),
			Description: v.GetString("contribution.description"),
			Source:      v.GetString("contribution.source"),
		}),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

// withBatchDefaults fills the unset descriptor fields of the default
// contribution. Any other contribution id keeps only what was configured, so
// a new batch never records the default batch's contributor or date.
func withBatchDefaults(c reconciler.Contribution) reconciler.Contribution {
	if c.ID != DefaultContributionID {
		return c
	}
	fill := func(dst *string, val string) {
		if *dst == "" {
			*dst = val
		}
	}
	fill(&c.Contributor, DefaultContributor)
	fill(&c.Date, DefaultContributionDate)
	fill(&c.Description, DefaultContributionDescription)
	fill(&c.Source, DefaultContributionSource)
	return c
}

// setDefaults registers the default value of every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("document", constants.DefaultDocumentPath)
	v.SetDefault("columns.model", constants.ModelColumn)
	v.SetDefault("columns.test", constants.TestColumn)
	v.SetDefault("columns.correct", constants.CorrectColumn)

	v.SetDefault("contribution.id", DefaultContributionID)
	v.SetDefault("contribution.type", DefaultContributionType)

	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet bool, format, logLevel, tables string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if tables != "" {
		c.Tables = tables
	}
}

// Settings returns the values commands default to.
func (c *Config) Settings() application.Settings {
	return application.Settings{
		Document:     c.Document,
		Tables:       c.Tables,
		Trials:       c.Trials,
		Columns:      c.Columns,
		Sheet:        c.Sheet,
		Contribution: c.Contribution,
		Backup:       c.Backup,
		BackupDir:    c.BackupDir,
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// Try to load .env files in order of precedence
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}
