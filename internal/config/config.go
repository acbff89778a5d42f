// Package config loads worksheets settings from an optional YAML file and
// WORKSHEETS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// WORKSHEETS_PLANNER_MAX_STEPS.
const EnvPrefix = "WORKSHEETS"

type Config struct {
	// DB is the SQLite path for saved batches. Empty means the XDG default.
	DB      string `mapstructure:"db"`
	BankDir string `mapstructure:"bank_dir"`

	Log      LogConfig      `mapstructure:"log"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Variants VariantsConfig `mapstructure:"variants"`

	// Source is the config file that was read, if any.
	Source string `mapstructure:"-"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type PlannerConfig struct {
	MaxSteps int `mapstructure:"max_steps"` // 0 = unlimited
}

type VariantsConfig struct {
	Concurrency   int     `mapstructure:"concurrency"`
	MaxQuotaRatio float64 `mapstructure:"max_quota_ratio"`
	Shuffle       bool    `mapstructure:"shuffle"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Variants: VariantsConfig{
			Concurrency:   4,
			MaxQuotaRatio: 1.0,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("db", d.DB)
	v.SetDefault("bank_dir", d.BankDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("planner.max_steps", d.Planner.MaxSteps)
	v.SetDefault("variants.concurrency", d.Variants.Concurrency)
	v.SetDefault("variants.max_quota_ratio", d.Variants.MaxQuotaRatio)
	v.SetDefault("variants.shuffle", d.Variants.Shuffle)
}

// Load reads configuration. An explicit path (or $WORKSHEETS_CONFIG) must
// exist; otherwise worksheets.yaml is looked up in the working directory
// and the XDG config dir, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("worksheets")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configHome(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "worksheets"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the planner and assembler cannot use.
func (c *Config) Validate() error {
	if c.Planner.MaxSteps < 0 {
		return fmt.Errorf("planner.max_steps must be >= 0, got %d", c.Planner.MaxSteps)
	}
	if c.Variants.Concurrency < 1 {
		return fmt.Errorf("variants.concurrency must be >= 1, got %d", c.Variants.Concurrency)
	}
	if c.Variants.MaxQuotaRatio < 0 {
		return fmt.Errorf("variants.max_quota_ratio must be >= 0, got %g", c.Variants.MaxQuotaRatio)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

func configHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
