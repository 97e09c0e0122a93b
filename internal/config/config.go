// Package config loads application configuration from config files,
// environment variables and .env files.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

// Config holds the application configuration.
type Config struct {
	Provider    string
	DatabaseURL string
	QueryPath   string
	BatchSize   int
	Debug       bool
}

// Load reads configuration from .nestql.yaml (working dir, home dir or
// ~/.config/nestql), NESTQL_-prefixed environment variables and .env files.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(".nestql")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "nestql"))

	viper.SetEnvPrefix("NESTQL")
	viper.AutomaticEnv()

	viper.SetDefault("provider", "sqlite")
	viper.SetDefault("query_path", "query.json")
	viper.SetDefault("batch_size", 100)
	viper.SetDefault("debug", false)

	// Config file is optional.
	_ = viper.ReadInConfig()

	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	// .env.local wins over .env.
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		Provider:    viper.GetString("provider"),
		DatabaseURL: viper.GetString("database_url"),
		QueryPath:   viper.GetString("query_path"),
		BatchSize:   viper.GetInt("batch_size"),
		Debug:       viper.GetBool("debug"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// Save writes configuration to ~/.config/nestql/.nestql.yaml.
func Save(cfg *Config) error {
	viper.Set("provider", cfg.Provider)
	viper.Set("database_url", cfg.DatabaseURL)
	viper.Set("query_path", cfg.QueryPath)
	viper.Set("batch_size", cfg.BatchSize)
	viper.Set("debug", cfg.Debug)

	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", "nestql")
	if err := AppFs.MkdirAll(configPath, 0o755); err != nil {
		return err
	}

	return viper.WriteConfigAs(filepath.Join(configPath, ".nestql.yaml"))
}
