// Package settings resolves CLI settings from defaults, an optional config
// file, ODL_* environment variables and explicit flag overrides.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys shared by the config file, the environment and the CLI flags.
const (
	KeyInstrument  = "instrument"
	KeyRecipe      = "recipe"
	KeyCals        = "cals"
	KeySeq         = "seq"
	KeyNoInternal  = "no-internal"
	KeyNoDomeFlats = "no-domeflats"
	KeyFormat      = "format"
	KeyOutput      = "output"
	KeyLogLevel    = "log-level"
	KeyWatch       = "watch"
)

// EnvPrefix prefixes environment overrides, e.g. ODL_LOG_LEVEL.
const EnvPrefix = "ODL"

// Settings holds the resolved CLI settings.
type Settings struct {
	Instrument  string        `mapstructure:"instrument"`
	Recipe      string        `mapstructure:"recipe"`
	Cals        bool          `mapstructure:"cals"`
	Seq         bool          `mapstructure:"seq"`
	NoInternal  bool          `mapstructure:"no-internal"`
	NoDomeFlats bool          `mapstructure:"no-domeflats"`
	Format      string        `mapstructure:"format"`
	Output      string        `mapstructure:"output"`
	LogLevel    string        `mapstructure:"log-level"`
	Watch       time.Duration `mapstructure:"watch"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Format:   "yaml",
		LogLevel: "info",
	}
}

// Load resolves settings. configFile may be empty. overrides holds values of
// flags the user set explicitly and wins over every other layer.
func Load(configFile string, overrides map[string]any) (*Settings, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault(KeyInstrument, d.Instrument)
	v.SetDefault(KeyRecipe, d.Recipe)
	v.SetDefault(KeyCals, d.Cals)
	v.SetDefault(KeySeq, d.Seq)
	v.SetDefault(KeyNoInternal, d.NoInternal)
	v.SetDefault(KeyNoDomeFlats, d.NoDomeFlats)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyWatch, d.Watch)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values that the CLI cannot act on.
func (s *Settings) Validate() error {
	switch s.Format {
	case "yaml", "yml", "json", "table":
	default:
		return fmt.Errorf("format must be yaml, json or table, got %q", s.Format)
	}
	if s.Watch < 0 {
		return fmt.Errorf("watch interval must be non-negative, got %v", s.Watch)
	}
	if s.Watch > 0 && s.Recipe == "" {
		return errors.New("watch requires a recipe")
	}
	if s.Recipe == "" && s.Instrument == "" {
		return errors.New("either a recipe or an instrument is required")
	}
	return nil
}
