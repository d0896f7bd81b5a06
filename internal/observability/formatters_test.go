package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/search"
	"github.com/jonathan/apply-agent/internal/session"
	"github.com/jonathan/apply-agent/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintSearchPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var searches []search.Search
	for i := 0; i < 7; i++ {
		searches = append(searches, search.Search{Position: fmt.Sprintf("Role %d", i), Location: "Berlin"})
	}

	p.PrintSearchPlan("?f_AL=true", searches)
	output := buf.String()

	assert.Contains(t, output, "SEARCH PLAN")
	assert.Contains(t, output, "?f_AL=true")
	assert.Contains(t, output, "Searches: 7")
	assert.Contains(t, output, "Role 0 in Berlin")
	assert.NotContains(t, output, "Role 5")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintSearchPlan_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSearchPlan("?", nil)
	assert.Empty(t, buf.String())
}

func TestPrintRunSummary(t *testing.T) {
	tests := []struct {
		name    string
		report  session.Report
		want    []string
		notWant []string
	}{
		{
			name: "apply with halt",
			report: session.Report{
				Mode:         config.ModeApply,
				Applications: session.Stats{Successes: 12, Failures: 3, Skipped: 2, HaltReason: session.ErrQuotaExceeded.Error()},
				Connections:  session.Stats{Successes: 4},
			},
			want: []string{"Mode: apply", "Applications:", "12 succeeded", "3 failed", "2 skipped", "Stopped: daily application quota exceeded", "Connections:", "4 succeeded"},
		},
		{
			name:    "reapply",
			report:  session.Report{Mode: config.ModeReapply, Applications: session.Stats{Successes: 1}},
			want:    []string{"Applications:", "1 succeeded"},
			notWant: []string{"Connections:", "skipped"},
		},
		{
			name:    "reconnect",
			report:  session.Report{Mode: config.ModeReconnect, Connections: session.Stats{Failures: 2}},
			want:    []string{"Connections:", "2 failed"},
			notWant: []string{"Applications:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).PrintRunSummary(tt.report)
			output := buf.String()

			assert.Contains(t, output, "RUN SUMMARY")
			for _, s := range tt.want {
				assert.Contains(t, output, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, output, s)
			}
		})
	}
}

func TestPrintQuestions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuestions([]types.QuestionAnswer{
		{Type: types.FieldRadio, Question: "Are you authorized to work?", Answer: "Yes"},
		{Type: types.FieldNumeric, Question: "Years of Go?", Answer: "6"},
		{Type: types.FieldRadio, Question: "Do you need sponsorship?", Answer: "No"},
	})
	output := buf.String()

	assert.Contains(t, output, "ANSWER CACHE")
	assert.Contains(t, output, "Cached answers: 3")
	assert.Less(t, strings.Index(output, "radio:"), strings.Index(output, "numeric:"))
	assert.Contains(t, output, "→ 6")
	assert.Equal(t, 1, strings.Count(output, "radio:"))
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TEST", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}
