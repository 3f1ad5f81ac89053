package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Canary     CanaryConfig     `mapstructure:"canary"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration   `mapstructure:"idleTimeout"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
	Auth         AuthConfig      `mapstructure:"auth"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwtSecret"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type MetricsConfig struct {
	Path string `mapstructure:"path"`
}

// ArtifactsConfig locates the trained artifacts. An empty Dir means the
// directory holding the running executable.
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"`
}

type PredictionConfig struct {
	CacheSize int `mapstructure:"cacheSize"`
}

type CanaryConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type DashboardConfig struct {
	Port           int           `mapstructure:"port"`
	APIURL         string        `mapstructure:"apiURL"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

type DatasetConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

const (
	DatasetSourceCSV      = "csv"
	DatasetSourcePostgres = "postgres"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.rps", 10)
	v.SetDefault("server.rateLimit.burst", 20)
	v.SetDefault("server.auth.enabled", false)
	v.SetDefault("server.auth.jwtSecret", "")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("artifacts.dir", "")
	v.SetDefault("prediction.cacheSize", 1024)
	v.SetDefault("canary.enabled", true)
	v.SetDefault("canary.schedule", "*/5 * * * *")
	v.SetDefault("canary.timeout", 30*time.Second)
	v.SetDefault("dashboard.port", 8501)
	v.SetDefault("dashboard.apiURL", "http://127.0.0.1:8000")
	v.SetDefault("dashboard.requestTimeout", 10*time.Second)
	v.SetDefault("dataset.source", DatasetSourceCSV)
	v.SetDefault("dataset.path", "../Churn_Modelling.csv")
	v.SetDefault("database.url", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Config file not found, using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Auth.Enabled && c.Server.Auth.JWTSecret == "" {
		return errors.New("server.auth.jwtSecret is required when auth is enabled")
	}
	switch c.Dataset.Source {
	case DatasetSourceCSV:
	case DatasetSourcePostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required when dataset.source is postgres")
		}
	default:
		return errors.New("dataset.source must be csv or postgres")
	}
	if c.Prediction.CacheSize < 0 {
		return errors.New("prediction.cacheSize cannot be negative")
	}
	return nil
}
