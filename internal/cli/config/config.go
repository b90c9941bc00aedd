package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings a `covenant.yaml` can override: how the CLI
// renders output, and a default risk level (see VerifyConfig).
type Config struct {
	Output OutputConfig `mapstructure:"output"`
	Verify VerifyConfig `mapstructure:"verify"`
}

// OutputConfig controls how diagnostics are rendered.
type OutputConfig struct {
	Color  bool   `mapstructure:"color"`
	Format string `mapstructure:"format"` // "human" or "json"
}

// VerifyConfig holds verification defaults. DefaultRisk is loaded and
// validated, but no subcommand reads it: `covenant check` and
// `verify-batch` take the risk level from the file header only.
type VerifyConfig struct {
	DefaultRisk string `mapstructure:"default_risk"` // low|medium|high|critical
}

// Load reads configuration from covenant.yaml/covenant.yml in the
// current directory, falling back to defaults, with COVENANT_-prefixed
// environment variables able to override any key.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("output.color", true)
	v.SetDefault("output.format", "human")
	v.SetDefault("verify.default_risk", "low")

	v.SetConfigName("covenant")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("covenant")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// InProject reports whether the current directory is a Covenant
// project — one with a covenant.yaml/covenant.yml at its root.
func InProject() bool {
	if _, err := os.Stat("covenant.yaml"); err == nil {
		return true
	}
	if _, err := os.Stat("covenant.yml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot walks up from the working directory looking for
// covenant.yaml/covenant.yml.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "covenant.yaml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "covenant.yml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Covenant project (no covenant.yaml found)")
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Output.Format {
	case "human", "json":
	default:
		return fmt.Errorf("output.format must be 'human' or 'json', got: %s", cfg.Output.Format)
	}

	switch cfg.Verify.DefaultRisk {
	case "low", "medium", "high", "critical":
	default:
		return fmt.Errorf("verify.default_risk must be one of low|medium|high|critical, got: %s", cfg.Verify.DefaultRisk)
	}

	return nil
}
