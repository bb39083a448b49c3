// Package config loads the coordinator's own settings: the debounce delay,
// the size-gate budget, single-inferred-project mode, the recognized
// configuration file names and the default compiler options applied to
// Inferred projects.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the coordinator's process-wide configuration.
type Config struct {
	// DebounceMs is the fixed delay applied to every scheduled graph update
	// and the inferred-refresh task. Kept at ~250ms by default but exposed
	// as an override for tests.
	DebounceMs int `mapstructure:"debounceMs"`

	// SizeGateBudgetBytes is the process-wide non-source byte budget shared
	// across all gated projects. Default 20 MiB.
	SizeGateBudgetBytes int64 `mapstructure:"sizeGateBudgetBytes"`

	// SingleInferredProject selects single-inferred mode: one shared
	// Inferred project hosts every orphan open file instead of one
	// Inferred project per orphan.
	SingleInferredProject bool `mapstructure:"singleInferredProject"`

	// ConfigFileNames are the two recognized configuration filenames probed
	// in order during upward search: primary then secondary.
	ConfigFileNames []string `mapstructure:"configFileNames"`

	// InferredCompilerOptions is the default options record applied to
	// every Inferred project, overridable at runtime via
	// setCompilerOptionsForInferredProjects.
	InferredCompilerOptions map[string]interface{} `mapstructure:"inferredCompilerOptions"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls the coordlog writer (see internal/coordlog).
type LoggingConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// DebounceDelay returns DebounceMs as a time.Duration.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// DefaultConfig returns the coordinator's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceMs:            250,
		SizeGateBudgetBytes:   20 * 1024 * 1024,
		SingleInferredProject: false,
		ConfigFileNames:       []string{"tsconfig.json", "jsconfig.json"},
		InferredCompilerOptions: map[string]interface{}{
			"allowJs": true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <repoRoot>/.pscoord/config.{json,yaml,toml}
// via viper's search-path-plus-AutomaticEnv pattern, with PSCOORD_*
// environment overrides. A missing config file is not an error: defaults
// are returned.
func Load(repoRoot string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("debounceMs", def.DebounceMs)
	v.SetDefault("sizeGateBudgetBytes", def.SizeGateBudgetBytes)
	v.SetDefault("singleInferredProject", def.SingleInferredProject)
	v.SetDefault("configFileNames", def.ConfigFileNames)
	v.SetDefault("inferredCompilerOptions", def.InferredCompilerOptions)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(repoRoot, ".pscoord"))

	v.SetEnvPrefix("pscoord")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = def.DebounceMs
	}
	if cfg.SizeGateBudgetBytes <= 0 {
		cfg.SizeGateBudgetBytes = def.SizeGateBudgetBytes
	}
	if len(cfg.ConfigFileNames) == 0 {
		cfg.ConfigFileNames = def.ConfigFileNames
	}
	return &cfg, nil
}
