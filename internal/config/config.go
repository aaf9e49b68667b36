package config

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/IHTSDO/health-data-analytics/internal/domain/cohort"
)

type Config struct {
	Env              string `mapstructure:"ENV"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	CriteriaVariant  string `mapstructure:"CRITERIA_VARIANT"`
	StrictValidation bool   `mapstructure:"STRICT_VALIDATION"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CRITERIA_VARIANT", "event")
	v.SetDefault("STRICT_VALIDATION", false)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("CRITERIA_VARIANT")
	v.BindEnv("STRICT_VALIDATION")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Variant returns the configured criteria key.
func (c *Config) Variant() (cohort.Variant, error) {
	return cohort.ParseVariant(c.CriteriaVariant)
}

// Level returns the zerolog level for LOG_LEVEL. An empty value means info.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Validate checks CRITERIA_VARIANT and LOG_LEVEL.
func (c *Config) Validate() error {
	if _, err := c.Variant(); err != nil {
		return fmt.Errorf("CRITERIA_VARIANT must be \"event\" or \"encounter\": %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}
