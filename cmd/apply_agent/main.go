// Package main provides the entry point for the apply agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// DefaultDataDir holds config.yaml, resume.yaml, the resume file and the browser profile
const DefaultDataDir = "data"

var rootCmd = &cobra.Command{
	Use:   "apply_agent",
	Short: "Job application agent",
	Long: `Apply Agent searches job listings, completes quick-apply forms with answers drawn
from your resume and an LLM, retries failed applications and connects with recruiters.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", DefaultDataDir, "Data folder with config.yaml and resume.yaml")
	rootCmd.PersistentFlags().String("db-url", "", "Database URL (defaults to DATABASE_URL env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
