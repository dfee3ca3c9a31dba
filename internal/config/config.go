package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/credit-engine/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store  store.Config `yaml:"store" mapstructure:"store"`
	Model  ModelConfig  `yaml:"model" mapstructure:"model"`
	Rules  RulesConfig  `yaml:"rules" mapstructure:"rules"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ModelConfig configures the trained predictor.
type ModelConfig struct {
	// Enabled selects the trained path; when false every request scores
	// through the rule-based path directly.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Path to the local gob model artifact.
	Path string `yaml:"path" mapstructure:"path"`

	// ServeURL routes predictions to an external model-serving endpoint
	// instead of the local artifact when non-empty.
	ServeURL string `yaml:"serve_url" mapstructure:"serve_url"`

	// TimeoutSecs bounds each external serving call.
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`

	// RateLimitRPS caps outbound serving calls; 0 disables the limiter.
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// RulesConfig configures the rule-based scorer.
type RulesConfig struct {
	// WeightsFile optionally overrides the built-in rule weights.
	WeightsFile string `yaml:"weights_file" mapstructure:"weights_file"`
}

// BatchConfig configures batch scoring.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CREDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Empty-string defaults keep the key known to viper so the
	// matching CREDIT_* env var is picked up by AutomaticEnv.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "credit-engine.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("model.enabled", true)
	v.SetDefault("model.path", "models/credit_score_gbrt.gob")
	v.SetDefault("model.serve_url", "")
	v.SetDefault("model.timeout_secs", 30)
	v.SetDefault("model.rate_limit_rps", 10)
	v.SetDefault("rules.weights_file", "")
	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
