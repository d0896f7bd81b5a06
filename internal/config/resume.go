package config

import (
	"fmt"
	"os"

	"github.com/jonathan/apply-agent/internal/types"
	"gopkg.in/yaml.v3"
)

// LoadResume reads resume.yaml. The resume sections and the application profile
// share one document, so it is decoded twice.
func LoadResume(path string) (*types.Resume, *types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read resume file %s: %w", path, err)
	}
	return ParseResume(data)
}

// ParseResume decodes resume YAML into its resume and profile parts
func ParseResume(data []byte) (*types.Resume, *types.Profile, error) {
	var resume types.Resume
	if err := yaml.Unmarshal(data, &resume); err != nil {
		return nil, nil, fmt.Errorf("failed to parse resume YAML: %w", err)
	}

	var profile types.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}

	return &resume, &profile, nil
}
