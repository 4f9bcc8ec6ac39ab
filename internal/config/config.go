// Package config defines the runtime configuration surface and the
// defaults applied before a config file, environment, or flags are
// merged in.
package config

import (
	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/fixfile"
	"github.com/driftsentry/driftsentry/internal/log"
	"github.com/driftsentry/driftsentry/internal/reporting/text"
	"github.com/driftsentry/driftsentry/internal/resources"
)

type Config struct {
	Settings  SettingsConfig  `mapstructure:"settings"`
	State     StateConfig     `mapstructure:"state"`
	Platform  PlatformConfig  `mapstructure:"platform"`
	Detection DetectionConfig `mapstructure:"detection"`
	Fixes     FixesConfig     `mapstructure:"fixes"`
}

type SettingsConfig struct {
	LogLevel     log.Level  `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat    log.Format `mapstructure:"log_format" validate:"omitempty,oneof=text json"`
	Concurrency  int        `mapstructure:"concurrency" validate:"gte=0,lte=64"`
	ReporterType string     `mapstructure:"reporter" validate:"omitempty,oneof=text json"`
	NoColor      bool       `mapstructure:"no_color"`
}

type StateConfig struct {
	// Source selects how the desired state is read: "tfstate" for a
	// raw state file, "tfshow" for `terraform show -json` output.
	Source string `mapstructure:"source" validate:"omitempty,oneof=tfstate tfshow"`
	Path   string `mapstructure:"path" validate:"required"`
}

type PlatformConfig struct {
	AWS AWSPlatformConfig `mapstructure:"aws"`
}

type AWSPlatformConfig struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
	MaxRPS  int    `mapstructure:"max_rps" validate:"gte=0,lte=100"`
}

// DetectionConfig tunes which attributes count as drift. Both lists
// merge on top of the built-in per-type defaults.
type DetectionConfig struct {
	IgnoreAttributes []string            `mapstructure:"ignore_attributes"`
	BenignNull       map[string][]string `mapstructure:"benign_null"`
}

type FixesConfig struct {
	OutputFile string `mapstructure:"output_file"`
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:     log.LevelInfo,
			LogFormat:    log.FormatText,
			Concurrency:  10,
			ReporterType: text.ReporterTypeText,
		},
		State: StateConfig{
			Source: "tfstate",
			Path:   "terraform.tfstate",
		},
		Platform: PlatformConfig{
			AWS: AWSPlatformConfig{},
		},
		Fixes: FixesConfig{
			OutputFile: fixfile.DefaultOutputFile,
		},
	}
}

// BuildSuppressionRules merges the user's detection overrides with the
// catalog defaults into the rule set the diff engine consumes.
func (c *Config) BuildSuppressionRules(catalog *resources.Catalog) domain.SuppressionRules {
	ignore := resources.DefaultIgnoreAttributes()
	ignore = append(ignore, c.Detection.IgnoreAttributes...)

	benignNull := catalog.BenignNullDefaults()
	for resourceType, attrs := range c.Detection.BenignNull {
		benignNull[resourceType] = append(benignNull[resourceType], attrs...)
	}
	return domain.NewSuppressionRules(ignore, benignNull)
}
