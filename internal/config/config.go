// Package config loads armory configuration with Viper.
//
// Precedence, lowest first: defaults, config file, ARMORY_* environment
// variables. Nested keys map to env vars with "." replaced by "_", so
// data.abilities is ARMORY_DATA_ABILITIES.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/armory/internal/errors"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "ARMORY"

// Config is the complete armory configuration.
type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Data    DataConfig    `mapstructure:"data"`
	Planner PlannerConfig `mapstructure:"planner"`
	Log     LogConfig     `mapstructure:"log"`
}

// DBConfig configures the SQLite record store.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// DataConfig names the configuration sources a reload ingests.
type DataConfig struct {
	Schema      string `mapstructure:"schema"` // empty = embedded schema
	Abilities   string `mapstructure:"abilities"`
	Adversaries string `mapstructure:"adversaries"`
	Facts       string `mapstructure:"facts"`
}

// PlannerConfig is the planner registered on reload. An empty name disables it.
type PlannerConfig struct {
	Name   string `mapstructure:"name"`
	Module string `mapstructure:"module"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// SetDefaults configures default values for all options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "armory.db")

	v.SetDefault("data.schema", "")
	v.SetDefault("data.abilities", "data/abilities")
	v.SetDefault("data.adversaries", "data/adversaries")
	v.SetDefault("data.facts", "conf/facts.yml")

	v.SetDefault("planner.name", "sequential")
	v.SetDefault("planner.module", "plugins.planner.sequential")

	v.SetDefault("log.json", false)
}

// New returns a Viper instance with defaults and environment binding applied.
// If path is non-empty it is registered as the config file.
func New(path string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	}
	return v
}

// Load reads configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	v := New(path)
	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals configuration from a prepared Viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}
