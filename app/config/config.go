package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Log      LogConfig
	Kafka    KafkaConfig
	CORS     CORSConfig
}

type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// Driver selects the database/sql driver: "pgx" or "postgres" (lib/pq).
	Driver          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	SlowQueryMS     int
	LogSQL          bool
}

type LogConfig struct {
	Level  string
	Format string
	Output string
	File   string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Load reads envFile (a missing file is fine) and the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		HTTP: HTTPConfig{
			Host:            v.GetString("HTTP_HOST"),
			Port:            v.GetInt("HTTP_PORT"),
			ReadTimeout:     v.GetInt("HTTP_READ_TIMEOUT"),
			WriteTimeout:    v.GetInt("HTTP_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetInt("HTTP_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("POSTGRES_HOST"),
			Port:            v.GetInt("POSTGRES_PORT"),
			User:            v.GetString("POSTGRES_USER"),
			Password:        v.GetString("POSTGRES_PASSWORD"),
			Name:            v.GetString("POSTGRES_DB"),
			SSLMode:         v.GetString("POSTGRES_SSLMODE"),
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetInt("DB_CONN_MAX_LIFETIME"),
			SlowQueryMS:     v.GetInt("DB_SLOW_QUERY_MS"),
			LogSQL:          v.GetBool("DB_LOG_SQL"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
			Output: strings.ToLower(v.GetString("LOG_OUTPUT")),
			File:   v.GetString("LOG_FILE"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   strings.TrimSpace(v.GetString("KAFKA_TOPIC")),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTP.Port)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid POSTGRES_PORT: %d", c.Database.Port)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}
	switch c.Database.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER: %s (must be pgx or postgres)", c.Database.Driver)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	switch c.Log.Output {
	case "stdout", "file", "both":
	default:
		return fmt.Errorf("invalid LOG_OUTPUT: %s (must be stdout, file, or both)", c.Log.Output)
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_HOST", "localhost")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("HTTP_READ_TIMEOUT", 15)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 15)
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", 30)

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_DB", "catalog")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("DB_DRIVER", "pgx")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_SLOW_QUERY_MS", 200)
	v.SetDefault("DB_LOG_SQL", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LOG_FILE", "logs/catalog.log")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "catalog-events")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
