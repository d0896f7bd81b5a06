package main

import (
	"fmt"
	"os"

	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the data folder before a run",
	Long:  "Validates config.yaml and resume.yaml against their schemas and checks that the resume file to upload exists.",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// check is one data folder validation and its outcome
type check struct {
	Name string
	Err  error
}

func runValidate(cmd *cobra.Command, _ []string) error {
	g, err := readGlobalFlags(cmd.Flags())
	if err != nil {
		return err
	}

	checks := validateDataDir(g.DataDir)
	failed := 0
	for _, c := range checks {
		if c.Err != nil {
			failed++
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", c.Name, c.Err)
			continue
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", c.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

// validateDataDir runs every check against dataDir. Later checks are skipped
// once the folder itself is missing.
func validateDataDir(dataDir string) []check {
	info, err := os.Stat(dataDir)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", dataDir)
	}
	checks := []check{{Name: "data folder " + dataDir, Err: err}}
	if err != nil {
		return checks
	}

	cfg, err := loadDataConfig(dataDir)
	checks = append(checks, check{Name: config.ConfigFileName, Err: err})

	resumePath := config.Resolve(dataDir, config.ResumeFileName)
	checks = append(checks, check{Name: config.ResumeFileName, Err: validateResume(resumePath)})

	if err == nil {
		uploadPath := config.Resolve(dataDir, cfg.ResumeFile)
		_, statErr := os.Stat(uploadPath)
		checks = append(checks, check{Name: "resume file " + cfg.ResumeFile, Err: statErr})
	}
	return checks
}

func validateResume(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	if err := schemas.ValidateResume(data); err != nil {
		return err
	}
	_, _, err = config.ParseResume(data)
	return err
}
