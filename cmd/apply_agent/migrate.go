package main

import (
	"context"
	"fmt"

	"github.com/jonathan/apply-agent/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the questions and jobs tables",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	g, err := readGlobalFlags(cmd.Flags())
	if err != nil {
		return err
	}
	url, err := g.databaseURL()
	if err != nil {
		return err
	}

	store, err := db.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
	return nil
}
