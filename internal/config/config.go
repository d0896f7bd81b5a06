// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/apply-agent/internal/types"
	"gopkg.in/yaml.v3"
)

// Default values applied by MergeWithDefaults
const (
	DefaultMaxApplications = 100
	DefaultConnectTarget   = 15
	DefaultMaxLLMRetries   = 20
	DefaultCoverLetterDir  = "cover_letters"
	DefaultLogFile         = "log/app.log"
	DefaultResumeFile      = "resume.pdf"
)

// Data folder file names
const (
	ConfigFileName = "config.yaml"
	ResumeFileName = "resume.yaml"
)

// Config represents the run configuration loaded from config.yaml.
// The search filters sit at the top level of the document.
type Config struct {
	types.SearchFilterSet `yaml:",inline"`

	// Limits
	MaxApplications int `yaml:"max_applications,omitempty" validate:"gte=0"` // Applications per run, 0 = uncapped
	ConnectTarget   int `yaml:"connect_target,omitempty" validate:"gte=0"`   // Invitations sent after an apply run
	MaxLLMRetries   int `yaml:"max_llm_retries,omitempty" validate:"gte=0"`  // Model retries per call, 0 = unbounded

	// Paths, relative to the data folder unless absolute
	ResumeFile     string `yaml:"resume_file,omitempty"`      // File uploaded to resume inputs
	CoverLetterDir string `yaml:"cover_letter_dir,omitempty"` // Where generated cover letters are written
	LogFile        string `yaml:"log_file,omitempty"`         // JSON log destination

	// Behavior
	Headless *bool  `yaml:"headless,omitempty"` // Run the browser without a window
	Model    string `yaml:"model,omitempty"`    // Override for the standard-tier model
}

// LoadConfig loads configuration from a YAML file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and that every filter key belongs to its vocabulary.
// Keys absent from a category are treated as false.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	categories := []struct {
		name   string
		values map[string]bool
		vocab  []string
	}{
		{"experience_level", c.ExperienceLevel, types.ExperienceLevels},
		{"job_types", c.JobTypes, types.JobTypes},
		{"work_types", c.WorkTypes, types.WorkTypes},
		{"date", c.Date, types.DateRecencies},
	}
	for _, cat := range categories {
		for key := range cat.values {
			if !contains(cat.vocab, key) {
				return fmt.Errorf("config error: invalid field '%s' in %s", key, cat.name)
			}
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults
// and the package defaults after that.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.MaxApplications == 0 {
		result.MaxApplications = firstNonZero(defaults.MaxApplications, DefaultMaxApplications)
	}
	if result.ConnectTarget == 0 {
		result.ConnectTarget = firstNonZero(defaults.ConnectTarget, DefaultConnectTarget)
	}
	if result.MaxLLMRetries == 0 {
		result.MaxLLMRetries = firstNonZero(defaults.MaxLLMRetries, DefaultMaxLLMRetries)
	}

	if result.ResumeFile == "" {
		result.ResumeFile = firstNonEmpty(defaults.ResumeFile, DefaultResumeFile)
	}
	if result.CoverLetterDir == "" {
		result.CoverLetterDir = firstNonEmpty(defaults.CoverLetterDir, DefaultCoverLetterDir)
	}
	if result.LogFile == "" {
		result.LogFile = firstNonEmpty(defaults.LogFile, DefaultLogFile)
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}

	if result.Headless == nil {
		headless := false
		if defaults.Headless != nil {
			headless = *defaults.Headless
		}
		result.Headless = &headless
	}

	return result
}

// IsHeadless reports the headless setting, false when unset
func (c *Config) IsHeadless() bool {
	return c.Headless != nil && *c.Headless
}

// Resolve returns path joined to dataDir unless it is already absolute
func Resolve(dataDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
