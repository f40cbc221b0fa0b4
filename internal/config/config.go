package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Config holds runtime configuration for the simulator. Language is the BCP 47
// tag used to order team names in reports.
type Config struct {
	Provider       string `env:"TOURNAMENT_PROVIDER" envDefault:"fixture"`
	TournamentFile string `env:"TOURNAMENT_FILE"`
	Simulations    int    `env:"SIMULATIONS" envDefault:"10000"`
	Workers        int    `env:"SIM_WORKERS"`
	Language       string `env:"REPORT_LANGUAGE" envDefault:"cs"`
	Model          ModelConfig
	Metrics        MetricsConfig
	Log            LogConfig
}

// ModelConfig tunes the goal model used by the match resolver.
type ModelConfig struct {
	BaseGoals        float64 `env:"MODEL_BASE_GOALS" envDefault:"2.6"`
	Exponent         float64 `env:"MODEL_EXPONENT" envDefault:"0.5"`
	SplitShootouts   bool    `env:"MODEL_SPLIT_SHOOTOUTS" envDefault:"false"`
	PlayoffOverrides bool    `env:"MODEL_PLAYOFF_OVERRIDES" envDefault:"false"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads an optional .env file, then configuration from environment
// variables with sensible defaults.
func Load() (Config, error) {
	if err := loadDotenv(dotenvFile); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

// FromEnv parses the current environment without touching .env files.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderFixture:
	case ProviderFile:
		if c.TournamentFile == "" {
			return fmt.Errorf("%s is required when %s=%s", envTournamentFile, envProvider, ProviderFile)
		}
	default:
		return fmt.Errorf("unknown %s %q", envProvider, c.Provider)
	}
	if c.Simulations <= 0 {
		return fmt.Errorf("%s must be positive, got %d", envSimulations, c.Simulations)
	}
	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("%s: %w", envLanguage, err)
	}
	return nil
}

// Collation returns the report language tag. Validate has already rejected
// malformed tags.
func (c Config) Collation() language.Tag {
	return language.Make(c.Language)
}

func loadDotenv(path string) error {
	// A missing file is normal outside local development.
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
