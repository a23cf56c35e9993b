// Package config loads runtime settings from flags, PROPOSAL_* environment
// variables and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"budgetproposal/logging"
	"budgetproposal/services"
)

// EnvPrefix is prepended to every environment variable, e.g.
// PROPOSAL_OUTPUT_DIR for output.dir.
const EnvPrefix = "PROPOSAL"

// Config is the resolved runtime configuration.
type Config struct {
	Data      string    `mapstructure:"data"`
	Output    Output    `mapstructure:"output"`
	Excel     Excel     `mapstructure:"excel"`
	Reconcile Reconcile `mapstructure:"reconcile"`
	Logging   Logging   `mapstructure:"logging"`
}

type Output struct {
	Dir     string   `mapstructure:"dir"`
	Name    string   `mapstructure:"name"`
	Formats []string `mapstructure:"formats"`
}

type Excel struct {
	Formulas bool `mapstructure:"formulas"`
}

type Reconcile struct {
	Tolerance float64 `mapstructure:"tolerance"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every key so that environment variables are picked
// up by Unmarshal even when no flag or file sets them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data", "")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.name", "proposal")
	v.SetDefault("output.formats", []string{"xlsx", "pdf", "csv"})
	v.SetDefault("excel.formulas", true)
	v.SetDefault("reconcile.tolerance", 1.0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", logging.FormatConsole)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile reads the config file at path. With an empty path it looks for
// proposal.yaml in the working directory and treats a missing file as no
// configuration.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("proposal")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

var (
	knownFormats = validation.By(func(value interface{}) error {
		names, _ := value.([]string)
		_, err := services.ParseFormats(names)
		return err
	})
	knownLevel = validation.By(func(value interface{}) error {
		_, err := logging.ParseLevel(value.(string))
		return err
	})
	plainName = validation.By(func(value interface{}) error {
		if strings.ContainsAny(value.(string), `/\`) {
			return errors.New("must be a file name without directories")
		}
		return nil
	})
)

// Validate checks every setting.
func (c Config) Validate() error {
	return validation.Errors{
		"output.dir":          validation.Validate(c.Output.Dir, validation.Required),
		"output.name":         validation.Validate(c.Output.Name, validation.Required, plainName),
		"output.formats":      validation.Validate(c.Output.Formats, validation.Required, knownFormats),
		"reconcile.tolerance": validation.Validate(c.Reconcile.Tolerance, validation.Min(0.0)),
		"logging.level":       validation.Validate(c.Logging.Level, knownLevel),
		"logging.format": validation.Validate(c.Logging.Format,
			validation.In(logging.FormatConsole, logging.FormatJSON).Error("must be console or json")),
	}.Filter()
}

// Formats returns the parsed output formats.
func (c Config) Formats() []services.Format {
	formats, _ := services.ParseFormats(c.Output.Formats)
	return formats
}

// Tolerance returns the reconcile tolerance as a decimal.
func (c Config) Tolerance() decimal.Decimal {
	return decimal.NewFromFloat(c.Reconcile.Tolerance)
}
