package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	SEC     SECConfig     `yaml:"sec" mapstructure:"sec"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Trend   TrendConfig   `yaml:"trend" mapstructure:"trend"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DataConfig points at the raw and processed companyfacts corpus.
type DataConfig struct {
	FactsDir        string `yaml:"facts_dir" mapstructure:"facts_dir"`
	ProcessedDir    string `yaml:"processed_dir" mapstructure:"processed_dir"`
	LoadTimeoutSecs int    `yaml:"load_timeout_secs" mapstructure:"load_timeout_secs"`
}

// StoreConfig configures where the ticker directory and run log live.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`

	// Postgres pool sizing.
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// SECConfig holds EDGAR endpoints and the User-Agent SEC requires.
type SECConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TickersURL  string `yaml:"tickers_url" mapstructure:"tickers_url"`
	FactsURL    string `yaml:"facts_url" mapstructure:"facts_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`

	BreakerThreshold    int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// MetricsConfig configures metric selection lists.
type MetricsConfig struct {
	ListsFile string `yaml:"lists_file" mapstructure:"lists_file"`
}

// TrendConfig configures the trend classifier.
type TrendConfig struct {
	ShortTermWindow int `yaml:"short_term_window" mapstructure:"short_term_window"`
}

// BatchConfig configures offline corpus processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// Store drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FACTSBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("data.facts_dir", "/var/lib/data/companyfacts")
	v.SetDefault("data.processed_dir", "/var/lib/data/processed")
	v.SetDefault("data.load_timeout_secs", 10)
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.path", "data/company_tickers.json")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("sec.user_agent", "TheBottomTick/1.0 (financial-analysis-platform)")
	v.SetDefault("sec.tickers_url", "https://www.sec.gov/files/company_tickers.json")
	v.SetDefault("sec.facts_url", "https://data.sec.gov/api/xbrl/companyfacts")
	v.SetDefault("sec.timeout_secs", 60)
	v.SetDefault("sec.breaker_threshold", 5)
	v.SetDefault("sec.breaker_cooldown_secs", 30)
	v.SetDefault("trend.short_term_window", 3)
	v.SetDefault("batch.concurrency", 4)
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
		if c.Store.Path == "" {
			return eris.Errorf("config: store.path is required for driver %q", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required for driver \"postgres\"")
		}
	default:
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}

	if c.Trend.ShortTermWindow < 1 || c.Trend.ShortTermWindow > 6 {
		return eris.Errorf("config: trend.short_term_window must be between 1 and 6, got %d", c.Trend.ShortTermWindow)
	}
	if c.Batch.Concurrency < 1 {
		return eris.Errorf("config: batch.concurrency must be positive, got %d", c.Batch.Concurrency)
	}
	return nil
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
