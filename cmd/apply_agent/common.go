package main

import (
	"fmt"
	"os"

	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/logging"
	"github.com/jonathan/apply-agent/internal/schemas"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// globalFlags are the persistent root flags
type globalFlags struct {
	DataDir     string
	DatabaseURL string
	Verbose     bool
}

func readGlobalFlags(flags *pflag.FlagSet) (globalFlags, error) {
	var g globalFlags
	var err error
	if g.DataDir, err = flags.GetString("data-dir"); err != nil {
		return g, err
	}
	if g.DatabaseURL, err = flags.GetString("db-url"); err != nil {
		return g, err
	}
	if g.Verbose, err = flags.GetBool("verbose"); err != nil {
		return g, err
	}
	return g, nil
}

// databaseURL returns the --db-url flag when set, else DATABASE_URL
func (g globalFlags) databaseURL() (string, error) {
	url := g.DatabaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	return url, nil
}

// newLogger writes to stderr and, when file is set, to a JSON log file
func newLogger(verbose bool, file string) (*zap.Logger, error) {
	return logging.New(logging.Options{Verbose: verbose, File: file, Console: os.Stderr})
}

// loadDataConfig reads config.yaml from dataDir, validates it against its schema
// and struct rules, and fills defaults
func loadDataConfig(dataDir string) (config.Config, error) {
	path := config.Resolve(dataDir, config.ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := schemas.ValidateConfig(data); err != nil {
		return config.Config{}, fmt.Errorf("invalid %s: %w", config.ConfigFileName, err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg.MergeWithDefaults(config.Config{}), nil
}
