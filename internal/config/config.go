package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:",squash"`
	Auth     AuthConfig     `mapstructure:",squash"`
	Database DatabaseConfig `mapstructure:",squash"`
	RabbitMQ RabbitMQConfig `mapstructure:",squash"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port string `mapstructure:"app_port" validate:"required"`
}

// AuthConfig contains the credential hashing and token signing settings.
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	BcryptCost int           `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// DatabaseConfig selects and locates the task and user store.
type DatabaseConfig struct {
	Driver string `mapstructure:"database_driver" validate:"required,oneof=postgres sqlite memory"`
	DSN    string `mapstructure:"database_dsn" validate:"required_unless=Driver memory"`
}

// RabbitMQConfig controls task event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL      string `mapstructure:"rabbitmq_url" validate:"omitempty,url"`
	Exchange string `mapstructure:"rabbitmq_exchange" validate:"required_with=URL"`
	Queue    string `mapstructure:"rabbitmq_queue" validate:"required_with=URL"`
}

// Enabled reports whether a broker URL was configured.
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

// SetDefaults registers the default value of every configuration key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", 48*time.Hour)
	v.SetDefault("BCRYPT_COST", 15)
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=tasks port=5432 sslmode=disable")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "tasks")
	v.SetDefault("RABBITMQ_QUEUE", "task_events")
}

// Load reads configuration from the environment and, when present, from a
// dotenv file named by CONFIG_FILE (default ".env"). Environment variables
// take precedence over the file.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = ".env"
	}
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else if os.Getenv("CONFIG_FILE") != "" {
		return nil, fmt.Errorf("config file %s not found: %w", configFile, err)
	}

	return FromViper(v)
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			e := validationErrors[0]
			return nil, fmt.Errorf("invalid configuration: field '%s' failed on the '%s' tag", e.Namespace(), e.Tag())
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
