package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file.
const FileName = "rentcheck.yaml"

// Config represents the top-level rentcheck.yaml configuration.
type Config struct {
	Landlord     LandlordConfig `yaml:"landlord"`
	BankAccounts []BankAccount  `yaml:"bank_accounts,omitempty"`
	Matching     MatchingConfig `yaml:"matching"`
	Git          GitConfig      `yaml:"git"`
	Log          LogConfig      `yaml:"log"`
}

// LandlordConfig identifies the owner of the project.
type LandlordConfig struct {
	Name string `yaml:"name"`
}

// BankAccount maps a bank export to the account ID stamped on its
// transactions.
type BankAccount struct {
	Name     string `yaml:"name"`
	Format   string `yaml:"format"` // importer parser, e.g. "chase"
	LastFour string `yaml:"last_four,omitempty"`
}

// MatchingConfig controls when auto-match runs implicitly.
type MatchingConfig struct {
	AutoMatchOnImport     bool `yaml:"auto_match_on_import"`
	AutoMatchOnTenantSave bool `yaml:"auto_match_on_tenant_save"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LogConfig sets the log level (debug, info, warn, error).
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a rentcheck.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(landlordName string) *Config {
	return &Config{
		Landlord: LandlordConfig{
			Name: landlordName,
		},
		BankAccounts: []BankAccount{
			{Name: "checking", Format: "chase"},
		},
		Matching: MatchingConfig{
			AutoMatchOnImport:     true,
			AutoMatchOnTenantSave: true,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "rentcheck",
			AuthorEmail: "rentcheck@localhost",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Account returns the bank account with the given name.
func (c *Config) Account(name string) (BankAccount, bool) {
	for _, a := range c.BankAccounts {
		if a.Name == name {
			return a, true
		}
	}
	return BankAccount{}, false
}
