// Package config aggregates the application configuration on top of the
// reusable core config.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "intakebot/core/config"
	coredatabase "intakebot/core/database"
)

// IntakeConfig holds settings specific to the order intake pipeline.
type IntakeConfig struct {
	// OperatorChatID is the group chat that receives published order cards.
	OperatorChatID int64 `yaml:"operator_chat_id" envconfig:"GROUP_ID"`
	// MediaWindowMS bounds the album aggregation window; 0 -> default.
	MediaWindowMS int    `yaml:"media_window_ms" envconfig:"MEDIA_WINDOW_MS"`
	DefaultLocale string `yaml:"default_locale" envconfig:"DEFAULT_LOCALE"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Intake   IntakeConfig        `yaml:"intake"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// MediaWindow returns the configured album aggregation window, or zero
// when the default should apply.
func (c *Config) MediaWindow() time.Duration {
	return time.Duration(c.Intake.MediaWindowMS) * time.Millisecond
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if cfg.Intake.OperatorChatID == 0 {
		return nil, fmt.Errorf("intake.operator_chat_id is required")
	}
	if cfg.Intake.MediaWindowMS < 0 {
		return nil, fmt.Errorf("intake.media_window_ms must be >= 0")
	}
	return &cfg, nil
}
