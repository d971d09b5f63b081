package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates all configuration settings for the application.
type Config struct {
	// Environment indicates the running environment (e.g., "development", "production").
	Environment string `mapstructure:"environment"`
	// LogLevel sets the global logging verbosity.
	LogLevel string `mapstructure:"log_level"`
	// Server holds configuration for the HTTP server.
	Server ServerConfig `mapstructure:"server"`
	// Redis holds configuration for the Redis connection.
	Redis RedisConfig `mapstructure:"redis"`
	// Forecast holds configuration for the demand forecasting engine.
	Forecast ForecastConfig `mapstructure:"forecast"`
	// Costs holds configuration for the vendor cost analyzer.
	Costs CostsConfig `mapstructure:"costs"`
	// Telemetry holds configuration for OpenTelemetry tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	// Port is the TCP port the server listens on.
	Port int `mapstructure:"port"`
	// AllowedOrigins is a list of CORS allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RedisConfig defines the Redis connection settings.
type RedisConfig struct {
	// Host is the Redis server hostname.
	Host string `mapstructure:"host"`
	// Port is the Redis server port.
	Port int `mapstructure:"port"`
	// Password is the Redis authentication password.
	Password string `mapstructure:"password"`
	// DB is the Redis database index to use.
	DB int `mapstructure:"db"`
	// Enabled toggles Redis-backed caching; the service runs without it.
	Enabled bool `mapstructure:"enabled"`
}

// ForecastConfig defines settings for the demand forecasting engine.
type ForecastConfig struct {
	// ARIMAP, ARIMAD and ARIMAQ form the primary ARIMA order.
	ARIMAP int `mapstructure:"arima_p"`
	ARIMAD int `mapstructure:"arima_d"`
	ARIMAQ int `mapstructure:"arima_q"`
	// HistoryLimit bounds the engine's rolling forecast history.
	HistoryLimit int `mapstructure:"history_limit"`
	// BaselineForecast is the fixed fallback when no history exists.
	BaselineForecast float64 `mapstructure:"baseline_forecast"`
	// CacheTTLSeconds is how long confidence reports stay cached.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

// CostsConfig defines settings for the vendor cost analyzer.
type CostsConfig struct {
	// VendorFile is an optional CSV of vendor records; a built-in sample
	// set is used when empty or unreadable.
	VendorFile string `mapstructure:"vendor_file"`
}

// TelemetryConfig defines OpenTelemetry tracing settings.
type TelemetryConfig struct {
	// Enabled toggles trace export.
	Enabled bool `mapstructure:"enabled"`
	// ServiceName identifies this service in traces.
	ServiceName string `mapstructure:"service_name"`
	// ServiceVersion is reported as a resource attribute.
	ServiceVersion string `mapstructure:"service_version"`
	// Endpoint is an OTLP HTTP endpoint; stdout export is used when empty.
	Endpoint string `mapstructure:"endpoint"`
}

// Load reads configuration from config.yaml, the environment, and an
// optional .env file, in ascending priority over the built-in defaults.
func Load() (*Config, error) {
	// A missing .env is fine; it only aids local development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("redis.host", "REDIS_HOST")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults initializes the default configuration values in Viper.
func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", false)

	viper.SetDefault("forecast.arima_p", 2)
	viper.SetDefault("forecast.arima_d", 1)
	viper.SetDefault("forecast.arima_q", 2)
	viper.SetDefault("forecast.history_limit", 100)
	viper.SetDefault("forecast.baseline_forecast", 100.0)
	viper.SetDefault("forecast.cache_ttl_seconds", 300)

	viper.SetDefault("costs.vendor_file", "")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.service_name", "supply-chain-optimizer")
	viper.SetDefault("telemetry.service_version", "dev")
	viper.SetDefault("telemetry.endpoint", "")
}

// validateConfig rejects settings the service cannot start with.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Forecast.HistoryLimit <= 0 {
		return fmt.Errorf("forecast history limit must be positive, got %d", cfg.Forecast.HistoryLimit)
	}
	if cfg.Forecast.ARIMAP < 0 || cfg.Forecast.ARIMAD < 0 || cfg.Forecast.ARIMAQ < 0 {
		return fmt.Errorf("ARIMA order components must be non-negative")
	}
	return nil
}
