// Package config loads and saves the jirabridge configuration file.
// Secrets never appear here; the API token is kept in the system
// keyring by the credential package.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	// BaseURL is the Jira instance root URL,
	// e.g. https://company.atlassian.net.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Email is the account used for Basic authentication together with
	// the API token from the keyring.
	Email string `mapstructure:"email" yaml:"email"`

	// DefaultProject is the project key assumed when a command does not
	// name one.
	DefaultProject string `mapstructure:"default_project" yaml:"default_project"`

	// MaxResults caps search result pages.
	MaxResults int `mapstructure:"max_results" yaml:"max_results"`

	// JournalPath is the location of the local operation journal
	// database. Empty means the default under the config directory.
	JournalPath string `mapstructure:"journal_path" yaml:"journal_path"`
}

// DefaultPath returns the default configuration file path, located at
// ~/.config/jirabridge/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "jirabridge", "config.yaml")
}

// DefaultJournalPath returns the default journal database path.
func DefaultJournalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "journal.db")
	}
	return filepath.Join(home, ".config", "jirabridge", "journal.db")
}

func defaultConfig() *Config {
	return &Config{
		MaxResults:  50,
		JournalPath: DefaultJournalPath(),
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("max_results", 50)
	v.SetDefault("journal_path", DefaultJournalPath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file at path, creating parent
// directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("base_url", cfg.BaseURL)
	v.Set("email", cfg.Email)
	v.Set("default_project", cfg.DefaultProject)
	v.Set("max_results", cfg.MaxResults)
	v.Set("journal_path", cfg.JournalPath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
