// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port                   string  `mapstructure:"PORT"`
	MongoURI               string  `mapstructure:"MONGO_URI"`
	MongoDB                string  `mapstructure:"MONGO_DB"`
	RedisURL               string  `mapstructure:"REDIS_URL"`
	AllowedOrigins         string  `mapstructure:"ALLOWED_ORIGINS"`
	Env                    string  `mapstructure:"APP_ENV"`
	PublicIDKey            string  `mapstructure:"PUBLIC_ID_KEY"`
	TimelineIncludeReplies bool    `mapstructure:"TIMELINE_INCLUDE_REPLIES"`
	UseTransactions        bool    `mapstructure:"USE_TRANSACTIONS"`
	TracingEnabled         bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter        string  `mapstructure:"TRACING_EXPORTER"`
	TracingOTLPEndpoint    string  `mapstructure:"TRACING_OTLP_ENDPOINT"`
	TracingSamplerRatio    float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8480")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "chirp")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PUBLIC_ID_KEY", "dev-public-id-key-change-in-production")
	viper.SetDefault("TIMELINE_INCLUDE_REPLIES", true)
	viper.SetDefault("USE_TRANSACTIONS", false)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.MongoDB == "" {
		return errors.New("MONGO_DB is required")
	}
	if c.PublicIDKey == "" {
		return errors.New("PUBLIC_ID_KEY is required")
	}
	if len(c.PublicIDKey) > 64 {
		return errors.New("PUBLIC_ID_KEY must be at most 64 bytes")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.PublicIDKey == "dev-public-id-key-change-in-production" {
			return errors.New("PUBLIC_ID_KEY must be changed from the default value in production")
		}
		if len(c.PublicIDKey) < 32 {
			return errors.New("PUBLIC_ID_KEY must be at least 32 characters in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		// Development/Test warnings
		if len(c.PublicIDKey) < 32 {
			log.Println("WARNING: PUBLIC_ID_KEY is shorter than 32 characters. Consider using a stronger key for production.")
		}
	}

	return nil
}
