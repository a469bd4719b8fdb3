// Package config loads adapter configuration with priority:
// defaults -> TOML file -> environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/agiloft-mcp/internal/common"
)

// AgiloftConfig holds connection settings for the Agiloft REST API.
type AgiloftConfig struct {
	BaseURL  string `toml:"base_url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	KB       string `toml:"kb"`
	Language string `toml:"language"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port string `toml:"port"`
}

// Config holds all agiloft-mcp configuration.
type Config struct {
	Agiloft AgiloftConfig        `toml:"agiloft"`
	Server  ServerConfig         `toml:"server"`
	Logging common.LoggingConfig `toml:"logging"`
}

// NewDefaultConfig returns a Config with sensible defaults.
// Password, base URL, and KB must come from the config file or environment.
func NewDefaultConfig() *Config {
	return &Config{
		Agiloft: AgiloftConfig{
			Username: "admin",
			Language: "en",
		},
		Server: ServerConfig{
			Name: "agiloft-mcp",
			Port: "8000",
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/agiloft-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// Load loads configuration from a TOML file with defaults and env overrides.
// A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies AGILOFT_* and MCP_* environment overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGILOFT_BASE_URL"); v != "" {
		cfg.Agiloft.BaseURL = v
	}
	if v := os.Getenv("AGILOFT_USERNAME"); v != "" {
		cfg.Agiloft.Username = v
	}
	if v := os.Getenv("AGILOFT_PASSWORD"); v != "" {
		cfg.Agiloft.Password = v
	}
	if v := os.Getenv("AGILOFT_KB"); v != "" {
		cfg.Agiloft.KB = v
	}
	if v := os.Getenv("AGILOFT_LANGUAGE"); v != "" {
		cfg.Agiloft.Language = v
	}
	if v := os.Getenv("MCP_SERVER_PORT"); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = v
		}
	}
	if v := os.Getenv("MCP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks that required connection fields are present. The transport
// consumes exactly base_url, username, password, kb, and language; it cannot
// operate without a base URL or password.
func (c *Config) Validate() error {
	var missing []string
	if c.Agiloft.BaseURL == "" {
		missing = append(missing, "agiloft.base_url")
	}
	if c.Agiloft.Username == "" {
		missing = append(missing, "agiloft.username")
	}
	if c.Agiloft.Password == "" {
		missing = append(missing, "agiloft.password")
	}
	if c.Agiloft.KB == "" {
		missing = append(missing, "agiloft.kb")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}
