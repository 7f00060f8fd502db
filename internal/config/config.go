// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	ERP       ERPConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds the ERP database settings.
type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev          bool
	Migrations   bool
	Seed         bool
	ProfilesFile string
	TimeZone     string
	TokenTTL     time.Duration
}

// ERPConfig points the panel at the ERP API.
type ERPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig selects the panel session store.
type SessionConfig struct {
	Store        string // memory or redis
	RedisURL     string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

// TelemetryConfig selects the trace exporter.
type TelemetryConfig struct {
	Exporter    string // none, stdout or otlp
	Endpoint    string
	ServiceName string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Location resolves TimeZone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	if a.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "fares"),
			Password:   getEnv("DB_PASSWORD", "fares123"),
			DBName:     getEnv("DB_NAME", "fares"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "fares.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:          getEnvBool("DEV", true),
			Migrations:   getEnvBool("MIGRATIONS", false),
			Seed:         getEnvBool("SEED", false),
			ProfilesFile: getEnv("SCREEN_PROFILES", ""),
			TimeZone:     getEnv("TZ_NAME", "America/Guatemala"),
			TokenTTL:     time.Duration(getEnvInt("TOKEN_TTL_HOURS", 8)) * time.Hour,
		},
		ERP: ERPConfig{
			BaseURL: getEnv("ERP_URL", "http://localhost:8081"),
			Timeout: time.Duration(getEnvInt("ERP_TIMEOUT", 15)) * time.Second,
		},
		Session: SessionConfig{
			Store:        getEnv("SESSION_STORE", "memory"),
			RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TTL:          time.Duration(getEnvInt("SESSION_TTL_HOURS", 8)) * time.Hour,
			CookieName:   getEnv("SESSION_COOKIE", "fares_session"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Telemetry: TelemetryConfig{
			Exporter:    getEnv("OTEL_EXPORTER", "none"),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "fares"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
