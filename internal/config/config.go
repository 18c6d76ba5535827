// Package config provides YAML-based configuration loading for SyncTech.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level SyncTech configuration, loaded from synctech.yaml.
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Database   DatabaseConfig    `yaml:"database"`
	Finance    FinanceConfig     `yaml:"finance"`
	ScopeTypes []ScopeTypeConfig `yaml:"scope_types"`
}

// ServerConfig holds REST API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig holds connection settings for the Postgres server.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// FinanceConfig holds background-job settings for the finance package.
type FinanceConfig struct {
	// OverdueSweep is a 5-field cron expression controlling how often open
	// entries past their due date are marked overdue.
	OverdueSweep string `yaml:"overdue_sweep"`
}

// ScopeTypeConfig defines one row of the scope type catalog to seed.
type ScopeTypeConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ColorHex    string `yaml:"color_hex"`
	IconName    string `yaml:"icon_name"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.Name == "" {
		c.Database.Name = "synctech"
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Finance.OverdueSweep == "" {
		c.Finance.OverdueSweep = "0 6 * * *"
	}
	if len(c.ScopeTypes) == 0 {
		c.ScopeTypes = DefaultScopeTypes()
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 0 and 65535")
	}
	seen := make(map[string]bool, len(c.ScopeTypes))
	for i, st := range c.ScopeTypes {
		if st.Name == "" {
			errs = append(errs, fmt.Sprintf("scope_types[%d].name is required", i))
			continue
		}
		if seen[st.Name] {
			errs = append(errs, fmt.Sprintf("scope_types[%d].name %q is duplicated", i, st.Name))
		}
		seen[st.Name] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DefaultScopeTypes returns the built-in scope type catalog used when the
// config file does not define its own.
func DefaultScopeTypes() []ScopeTypeConfig {
	return []ScopeTypeConfig{
		{Name: "Frontend", Description: "User interface development", ColorHex: "#3B82F6", IconName: "Monitor"},
		{Name: "Backend", Description: "Server logic and database development", ColorHex: "#10B981", IconName: "Database"},
		{Name: "Integrations", Description: "External systems and API integrations", ColorHex: "#F59E0B", IconName: "Zap"},
		{Name: "Automations", Description: "Web scraping, RPA and automated processes", ColorHex: "#8B5CF6", IconName: "Settings"},
		{Name: "Design", Description: "Logo and asset creation, vectorization and editing", ColorHex: "#EF4444", IconName: "Palette"},
		{Name: "Mobile", Description: "Mobile development", ColorHex: "#06B6D4", IconName: "Smartphone"},
		{Name: "DevOps", Description: "Infrastructure and deployment", ColorHex: "#EC4899", IconName: "Code"},
		{Name: "Testing", Description: "Testing and software quality", ColorHex: "#EAB308", IconName: "Check"},
	}
}
