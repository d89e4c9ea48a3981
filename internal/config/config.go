package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Hermes    HermesConfig    `yaml:"hermes"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Model     ModelConfig     `yaml:"model"`
	Recommend RecommendConfig `yaml:"recommend"`
	Startup   StartupConfig   `yaml:"startup"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port               int      `yaml:"port"`
	MetricsPort        int      `yaml:"metrics_port"`
	CORSOrigins        []string `yaml:"cors_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type CatalogConfig struct {
	Source  string `yaml:"source"`
	CSVPath string `yaml:"csv_path"`
}

type ModelConfig struct {
	Path string `yaml:"path"`
}

type RecommendConfig struct {
	DefaultTopN        int     `yaml:"default_top_n"`
	DefaultMinGoodProb float64 `yaml:"default_min_good_prob"`
}

type StartupConfig struct {
	TimeoutMs int `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) StartupTimeout() time.Duration {
	return time.Duration(c.Startup.TimeoutMs) * time.Millisecond
}

// LogLevel maps logging.level onto slog, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load builds the config from defaults, then the yaml file at path (if any),
// then RECOMMENDER_* environment variables. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               8000,
			MetricsPort:        8001,
			CORSOrigins:        []string{"*"},
			RateLimitPerMinute: 600,
		},
		Catalog: CatalogConfig{
			Source:  "auto",
			CSVPath: "data/raw/formula_master.csv",
		},
		Model: ModelConfig{
			Path: "models/trained/knn_v1.json",
		},
		Recommend: RecommendConfig{
			DefaultTopN:        3,
			DefaultMinGoodProb: 0.3,
		},
		Startup: StartupConfig{
			TimeoutMs: 30000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case "database", "csv", "auto":
	default:
		return fmt.Errorf("invalid config: catalog.source %q (want database, csv or auto)", c.Catalog.Source)
	}
	if c.Catalog.Source == "database" && c.Database.URL == "" {
		return fmt.Errorf("invalid config: catalog.source is database but database.url is empty")
	}
	if c.Model.Path == "" {
		return fmt.Errorf("invalid config: model.path is required")
	}
	if c.Recommend.DefaultTopN < 0 {
		return fmt.Errorf("invalid config: recommend.default_top_n must be >= 0")
	}
	if p := c.Recommend.DefaultMinGoodProb; math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("invalid config: recommend.default_min_good_prob must be in [0,1]")
	}
	if c.Startup.TimeoutMs <= 0 {
		return fmt.Errorf("invalid config: startup.timeout_ms must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RECOMMENDER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("RECOMMENDER_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("RECOMMENDER_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	if v := os.Getenv("RECOMMENDER_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("RECOMMENDER_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("RECOMMENDER_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("RECOMMENDER_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("RECOMMENDER_CATALOG_CSV_PATH"); v != "" {
		cfg.Catalog.CSVPath = v
	}
	if v := os.Getenv("RECOMMENDER_MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("RECOMMENDER_DEFAULT_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Recommend.DefaultTopN = n
		}
	}
	if v := os.Getenv("RECOMMENDER_DEFAULT_MIN_GOOD_PROB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Recommend.DefaultMinGoodProb = f
		}
	}
	if v := os.Getenv("RECOMMENDER_STARTUP_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Startup.TimeoutMs = n
		}
	}
	if v := os.Getenv("RECOMMENDER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
