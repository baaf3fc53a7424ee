// Package config loads runtime configuration and initialises logging.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/incentive-engine/incentive"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// StoreConfig configures persistence. Driver is "sqlite" or "memory".
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SchedulerConfig configures automatic payout snapshots. A zero interval
// disables them.
type SchedulerConfig struct {
	SnapshotInterval time.Duration `yaml:"snapshot_interval" mapstructure:"snapshot_interval"`
}

// EngineConfig overrides the default payout settings. Unset pointers keep
// the preset (or standard) value.
type EngineConfig struct {
	PresetsPath string   `yaml:"presets_path" mapstructure:"presets_path"`
	BaseMonths  *float64 `yaml:"base_months" mapstructure:"base_months"`
	CapPct      *float64 `yaml:"cap_pct" mapstructure:"cap_pct"`
	FactorMode  string   `yaml:"factor_mode" mapstructure:"factor_mode"`
	CapFactor   *bool    `yaml:"cap_factor" mapstructure:"cap_factor"`
}

// Apply writes the configured overrides onto defaults.
func (e EngineConfig) Apply(d *incentive.Defaults) {
	next := d.Settings
	if e.BaseMonths != nil {
		next.BaseMonths = *e.BaseMonths
	}
	if e.CapPct != nil {
		next.CapPct = *e.CapPct
	}
	if e.FactorMode != "" {
		next.FactorMode = incentive.FactorMode(strings.ToLower(e.FactorMode))
	}
	if e.CapFactor != nil {
		next.CapFactor = *e.CapFactor
	}

	s := incentive.State{Settings: d.Settings}
	incentive.UpdateSettings(&s, next)
	d.Settings = s.Settings
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INCENTIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "./data/incentive.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("engine.presets_path", "")
	v.SetDefault("engine.factor_mode", "")
	v.SetDefault("scheduler.snapshot_interval", "0s")

	// Pointer fields have no default; bind them so env vars still reach them.
	for _, key := range []string{"engine.base_months", "engine.cap_pct", "engine.cap_factor"} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
