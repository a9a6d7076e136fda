// Package config loads the process configuration from a YAML file with
// environment overrides for the deployment-specific endpoints.
package config

import (
	"fmt"
	"os"
	"time"

	"sigillo/entities"

	"gopkg.in/yaml.v3"
)

// Duration decodes "2s"-style YAML values into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type BridgeConfig struct {
	Port         int      `yaml:"port"`
	LinePort     int      `yaml:"line_port"`
	Slot         int      `yaml:"slot"`
	LibraryPath  string   `yaml:"library_path"`
	PollInterval Duration `yaml:"poll_interval"`
}

type Config struct {
	Company  entities.Company `yaml:"company"`
	Bridge   BridgeConfig     `yaml:"bridge"`
	Database string           `yaml:"database"`
	Redis    string           `yaml:"redis"`
	HTTPPort int              `yaml:"http_port"`
}

// Default ports mirror what the desktop integrations expect the bridge on.
func defaults() Config {
	return Config{
		Bridge: BridgeConfig{
			Port:         16330,
			LinePort:     16331,
			Slot:         0,
			PollInterval: Duration(1500 * time.Millisecond),
		},
		HTTPPort: 8080,
	}
}

// Load reads path, falling back to pure defaults when the file is absent.
// POSTGRES_URL and REDIS_ADDR always win over the file, so the same config
// ships across environments.
func Load(path string) (Config, error) {
	cfg := defaults()

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("could not parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults + environment only
	default:
		return Config{}, fmt.Errorf("could not read config %s: %w", path, err)
	}

	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis = v
	}
	if v := os.Getenv("LIBSIAE_PATH"); v != "" {
		cfg.Bridge.LibraryPath = v
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Bridge.Port <= 0 || c.Bridge.Port > 65535 {
		return fmt.Errorf("bridge port %d out of range", c.Bridge.Port)
	}
	if c.Bridge.LinePort <= 0 || c.Bridge.LinePort > 65535 {
		return fmt.Errorf("bridge line port %d out of range", c.Bridge.LinePort)
	}
	if c.Bridge.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Company.SystemCode != "" && len(c.Company.SystemCode) != 8 {
		return fmt.Errorf("system code must be 8 characters, got %q", c.Company.SystemCode)
	}
	return nil
}
