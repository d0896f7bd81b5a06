package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validConfig = `
positions:
  - Go Developer
locations:
  - Berlin
work_types:
  remote: true
companies_blacklist:
  - Evil Corp
`

const validResume = `
personal_information:
  name: Ada
  email: ada@example.com
experience_details:
  - position: Backend Engineer
    company: Initech
`

// writeDataDir creates a data folder holding the given files
func writeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func completeDataDir(t *testing.T) string {
	return writeDataDir(t, map[string]string{
		"config.yaml": validConfig,
		"resume.yaml": validResume,
		"resume.pdf":  "%PDF-1.4",
	})
}

// execute runs the root command in-process and returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}
