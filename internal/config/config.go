// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env                    string  `mapstructure:"APP_ENV"`
	Host                   string  `mapstructure:"HOST"`
	Port                   string  `mapstructure:"PORT"`
	RedisURL               string  `mapstructure:"REDIS_URL"`
	RedisHost              string  `mapstructure:"REDIS_HOST"`
	RedisPort              int     `mapstructure:"REDIS_PORT"`
	RedisPassword          string  `mapstructure:"REDIS_PASSWORD"`
	RedisDB                int     `mapstructure:"REDIS_DB"`
	WithStatic             bool    `mapstructure:"WITH_STATIC"`
	TemplateReload         bool    `mapstructure:"TEMPLATE_RELOAD"`
	RateLimitMax           int     `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindowSeconds int     `mapstructure:"RATE_LIMIT_WINDOW_SECONDS"`
	TracingEnabled         bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter        string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint           string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio     float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config.%s.yml: %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.TracingExporter = strings.ToLower(strings.TrimSpace(config.TracingExporter))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("HOST", "127.0.0.1")
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("WITH_STATIC", true)
	viper.SetDefault("TEMPLATE_RELOAD", false)
	viper.SetDefault("RATE_LIMIT_MAX", 0)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

// Validate ensures that required configuration values are present and usable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}
	if c.RedisURL == "" {
		if c.RedisHost == "" {
			return errors.New("REDIS_HOST is required when REDIS_URL is not set")
		}
		if c.RedisPort <= 0 || c.RedisPort > 65535 {
			return fmt.Errorf("REDIS_PORT must be between 1 and 65535, got %d", c.RedisPort)
		}
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative, got %d", c.RedisDB)
	}
	if c.RateLimitMax < 0 || c.RateLimitWindowSeconds < 0 {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW_SECONDS must not be negative")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be within [0, 1], got %v", c.TracingSampleRatio)
	}
	switch c.TracingExporter {
	case "", "stdout", "otlp":
	default:
		return fmt.Errorf("TRACING_EXPORTER must be \"stdout\" or \"otlp\", got %q", c.TracingExporter)
	}

	if c.IsProduction() && c.TemplateReload {
		log.Println("WARNING: TEMPLATE_RELOAD is enabled in production. Templates will be re-parsed on every render.")
	}

	return nil
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// ListenAddr is the host:port pair the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// RedisAddr is the host:port pair of the key-value store.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}
