// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/search"
	"github.com/jonathan/apply-agent/internal/session"
	"github.com/jonathan/apply-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSearchPlan outputs the filter fragment and the first searches of a run.
func (p *Printer) PrintSearchPlan(fragment string, searches []search.Search) {
	if len(searches) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Filters:  %s\n", fragment))
	sb.WriteString(fmt.Sprintf("Searches: %d\n\n", len(searches)))

	count := min(len(searches), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s in %s\n", searches[i].Position, searches[i].Location))
	}
	if len(searches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(searches)-maxItemsToShow))
	}

	p.printBox("SEARCH PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the counters of every mode a run executed.
func (p *Printer) PrintRunSummary(report session.Report) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode: %s\n", report.Mode))

	if report.Mode != config.ModeReconnect {
		sb.WriteString("\nApplications:\n")
		writeStats(&sb, report.Applications)
	}
	if report.Mode != config.ModeReapply {
		sb.WriteString("\nConnections:\n")
		writeStats(&sb, report.Connections)
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

func writeStats(sb *strings.Builder, stats session.Stats) {
	sb.WriteString(fmt.Sprintf("  ✓ %d succeeded\n", stats.Successes))
	sb.WriteString(fmt.Sprintf("  ✗ %d failed\n", stats.Failures))
	if stats.Skipped > 0 {
		sb.WriteString(fmt.Sprintf("  - %d skipped\n", stats.Skipped))
	}
	if stats.HaltReason != "" {
		sb.WriteString(fmt.Sprintf("  Stopped: %s\n", stats.HaltReason))
	}
}

// PrintQuestions outputs the cached answers grouped by field type.
func (p *Printer) PrintQuestions(questions []types.QuestionAnswer) {
	if len(questions) == 0 {
		return
	}

	var order []types.FieldType
	byType := make(map[types.FieldType][]types.QuestionAnswer)
	for _, qa := range questions {
		if _, ok := byType[qa.Type]; !ok {
			order = append(order, qa.Type)
		}
		byType[qa.Type] = append(byType[qa.Type], qa)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Cached answers: %d\n", len(questions)))
	for _, fieldType := range order {
		sb.WriteString(fmt.Sprintf("\n%s:\n", fieldType))
		for _, qa := range byType[fieldType] {
			sb.WriteString(fmt.Sprintf("  • %s\n", truncate(qa.Question, 40)))
			sb.WriteString(fmt.Sprintf("    → %s\n", truncate(qa.Answer, 40)))
		}
	}

	p.printBox("ANSWER CACHE", strings.TrimSuffix(sb.String(), "\n"))
}

// truncate shortens s to at most width runes, marking the cut with "..."
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
