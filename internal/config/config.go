package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Account identity; every record in the database is owned by this user
	User UserConfig `yaml:"user"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Optional secondary check on entry times
	BusinessHours BusinessHoursConfig `yaml:"business_hours"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type UserConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type InvoiceConfig struct {
	OutputDir string `yaml:"output_dir"` // Directory for generated PDFs
}

// BusinessHoursConfig restricts entry times to working hours when enabled.
// Disabled by default.
type BusinessHoursConfig struct {
	Enabled   bool `yaml:"enabled"`
	StartHour int  `yaml:"start_hour"` // 0-23, inclusive start of the working day
	EndHour   int  `yaml:"end_hour"`   // 1-24, end of the working day
}

// Validate checks the business-hours window once at load time
func (b BusinessHoursConfig) Validate() error {
	if !b.Enabled {
		return nil
	}
	if b.StartHour < 0 || b.StartHour > 23 {
		return fmt.Errorf("business_hours.start_hour must be between 0 and 23, got %d", b.StartHour)
	}
	if b.EndHour < 1 || b.EndHour > 24 {
		return fmt.Errorf("business_hours.end_hour must be between 1 and 24, got %d", b.EndHour)
	}
	if b.StartHour >= b.EndHour {
		return fmt.Errorf("business_hours.start_hour %d must be before end_hour %d", b.StartHour, b.EndHour)
	}
	return nil
}

// DefaultConfigPath returns ~/.config/iworked/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "iworked", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "iworked", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "iworked", "iworked.db"),
		},
		User: UserConfig{
			Name:  "",
			Email: "me@localhost",
		},
		Invoice: InvoiceConfig{
			OutputDir: filepath.Join(homeDir, ".config", "iworked", "invoices"),
		},
		BusinessHours: BusinessHoursConfig{
			Enabled:   false,
			StartHour: 9,
			EndHour:   17,
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.BusinessHours.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for database, invoices, etc.)
func (c *Config) EnsureDirectories() error {
	dbDir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	return os.MkdirAll(c.Invoice.OutputDir, 0755)
}
