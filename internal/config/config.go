package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env        string `mapstructure:"APP_ENV"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogFile    string `mapstructure:"LOG_FILE"`

	DBType        string `mapstructure:"STORAGE_BACKEND"`
	DataDir       string `mapstructure:"DATA_DIR"`
	DBDSN         string `mapstructure:"POSTGRES_DSN"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTExpire time.Duration `mapstructure:"JWT_EXPIRE"`

	AIServiceURL     string        `mapstructure:"AI_SERVICE_URL"`
	AIServiceAPIKey  string        `mapstructure:"AI_SERVICE_API_KEY"`
	AIServiceTimeout time.Duration `mapstructure:"AI_SERVICE_TIMEOUT"`

	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	RateLimitBackend   string `mapstructure:"RATE_LIMIT_BACKEND"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RateLimitBurst     int    `mapstructure:"RATE_LIMIT_BURST"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB"`

	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

// devSecret signs tokens when APP_ENV=development and no JWT_SECRET is set.
const devSecret = "lifesense-development-secret"

var defaults = map[string]interface{}{
	"APP_ENV":               "development",
	"SERVER_PORT":           "5000",
	"LOG_LEVEL":             "info",
	"LOG_FILE":              "",
	"STORAGE_BACKEND":       "file",
	"DATA_DIR":              "data",
	"POSTGRES_DSN":          "",
	"MONGO_URI":             "",
	"MONGO_DATABASE":        "lifesense",
	"JWT_SECRET":            "",
	"JWT_EXPIRE":            "720h",
	"AI_SERVICE_URL":        "http://localhost:8000/api/v1/ai",
	"AI_SERVICE_API_KEY":    "",
	"AI_SERVICE_TIMEOUT":    "15s",
	"CORS_ORIGINS":          "*",
	"RATE_LIMIT_BACKEND":    "memory",
	"RATE_LIMIT_PER_MINUTE": 60,
	"RATE_LIMIT_BURST":      10,
	"REDIS_ADDR":            "localhost:6379",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"METRICS_ENABLED":       true,
}

// Load reads an optional .env file from path, overlays environment variables
// and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" && cfg.Env == "development" {
		cfg.JWTSecret = devSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	switch c.DBType {
	case "file":
		if c.DataDir == "" {
			return errors.New("file storage requires DATA_DIR to be set")
		}
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "mongo":
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("MONGO_URI and MONGO_DATABASE are required when STORAGE_BACKEND=mongo")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, postgres, mongo")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTExpire <= 0 {
		return errors.New("JWT_EXPIRE must be a positive duration")
	}
	if c.AIServiceURL == "" {
		return errors.New("AI_SERVICE_URL is required")
	}
	if c.AIServiceTimeout <= 0 {
		return errors.New("AI_SERVICE_TIMEOUT must be a positive duration")
	}
	if c.RateLimitBackend != "memory" && c.RateLimitBackend != "redis" {
		return errors.New("RATE_LIMIT_BACKEND must be one of: memory, redis")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
