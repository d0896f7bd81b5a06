package config

import (
	"fmt"
	"os"
	"strings"
)

// Run modes
const (
	ModeApply     = "apply"
	ModeReapply   = "reapply"
	ModeReconnect = "reconnect"
)

// Settings holds values read from the environment (and .env, when loaded)
type Settings struct {
	Email       string
	Password    string
	APIKey      string
	DatabaseURL string
	Mode        string
}

// LoadSettings reads LINKEDIN_EMAIL, LINKEDIN_PASSWORD, GEMINI_API_KEY,
// DATABASE_URL and MODE. Mode defaults to apply.
func LoadSettings() Settings {
	s := Settings{
		Email:       os.Getenv("LINKEDIN_EMAIL"),
		Password:    os.Getenv("LINKEDIN_PASSWORD"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Mode:        strings.ToLower(strings.TrimSpace(os.Getenv("MODE"))),
	}
	if s.Mode == "" {
		s.Mode = ModeApply
	}
	return s
}

// Validate checks that the settings can drive a run
func (s Settings) Validate() error {
	switch s.Mode {
	case ModeApply, ModeReapply, ModeReconnect:
	default:
		return fmt.Errorf("settings error: unknown mode %q", s.Mode)
	}
	if s.Password == "" {
		return fmt.Errorf("settings error: LINKEDIN_PASSWORD is required")
	}
	if s.DatabaseURL == "" {
		return fmt.Errorf("settings error: DATABASE_URL is required")
	}
	if s.Mode != ModeReconnect && s.APIKey == "" {
		return fmt.Errorf("settings error: GEMINI_API_KEY is required for %s mode", s.Mode)
	}
	return nil
}
