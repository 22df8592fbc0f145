package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Storage StorageConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Env  string `env:"ENV" envDefault:"development"` // "development" or "production"
}

// GameConfig holds game-related configuration
type GameConfig struct {
	DayDuration    time.Duration `env:"DAY_DURATION" envDefault:"300s"`
	VotingDuration time.Duration `env:"VOTING_DURATION" envDefault:"60s"`
	NightDuration  time.Duration `env:"NIGHT_DURATION" envDefault:"120s"`
	TrialDuration  time.Duration `env:"TRIAL_DURATION" envDefault:"180s"`
	TrialEnabled   bool          `env:"TRIAL_ENABLED" envDefault:"false"`
}

// StorageConfig holds game-history persistence configuration
type StorageConfig struct {
	// Path of the SQLite history file; empty disables persistence
	DBPath string `env:"DB_PATH" envDefault:"data/mafia.db"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}
