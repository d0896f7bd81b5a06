package main

import (
	"context"
	"fmt"

	"github.com/jonathan/apply-agent/internal/cache"
	"github.com/jonathan/apply-agent/internal/db"
	"github.com/jonathan/apply-agent/internal/observability"
	"github.com/jonathan/apply-agent/internal/types"
	"github.com/spf13/cobra"
)

var questionsType string

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the cached answers to application questions",
	RunE:  runQuestions,
}

func init() {
	questionsCmd.Flags().StringVar(&questionsType, "type", "", "Only list answers of this field type (radio, dropdown, textbox, numeric, date, terms-acknowledgement)")
	rootCmd.AddCommand(questionsCmd)
}

func runQuestions(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	g, err := readGlobalFlags(cmd.Flags())
	if err != nil {
		return err
	}
	url, err := g.databaseURL()
	if err != nil {
		return err
	}

	var only types.FieldType
	if questionsType != "" {
		if only, err = types.ParseFieldType(questionsType); err != nil {
			return err
		}
	}

	store, err := db.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	answers := cache.New(store, nil)
	if err := answers.Load(ctx); err != nil {
		return err
	}

	entries := answers.Entries()
	if only != "" {
		var filtered []types.QuestionAnswer
		for _, qa := range entries {
			if qa.Type == only {
				filtered = append(filtered, qa)
			}
		}
		entries = filtered
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No cached answers")
		return nil
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintQuestions(entries)
	return nil
}
