package db

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jonathan/apply-agent/internal/types"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Store persists answered questions and processed jobs
type Store interface {
	// Migrate creates missing tables and indexes
	Migrate(ctx context.Context) error

	// LoadQuestions returns every stored question/answer
	LoadQuestions(ctx context.Context) ([]types.QuestionAnswer, error)
	// InsertQuestion stores qa unless its key exists and reports whether a row was added
	InsertQuestion(ctx context.Context, qa types.QuestionAnswer) (bool, error)

	// LoadJobs returns jobs matching filter, newest first
	LoadJobs(ctx context.Context, filter types.JobFilter) ([]types.Job, error)
	// UpsertJob inserts job keyed by link, or updates the flags of the existing row
	UpsertJob(ctx context.Context, job *types.Job, applied, connected bool) error

	// LoadDistinctUnconnectedRecruiters returns recruiters of applied jobs not yet connected
	LoadDistinctUnconnectedRecruiters(ctx context.Context) ([]string, error)
	// MarkRecruiterConnected flags every job of recruiter as connected
	MarkRecruiterConnected(ctx context.Context, recruiter string) error

	Close()
}

// Open connects to the store named by databaseURL.
// postgres:// and postgresql:// select Postgres; sqlite://path and file: select SQLite.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return Connect(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "file:"):
		return OpenSQLite(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database URL %q", redact(databaseURL))
	}
}

// jobFilterClause returns the WHERE clause for filter
func jobFilterClause(filter types.JobFilter) (string, error) {
	switch filter {
	case types.JobsAll, "":
		return "", nil
	case types.JobsNotApplied:
		return "WHERE applied = FALSE", nil
	case types.JobsAppliedNotConnected:
		return "WHERE applied = TRUE AND connected = FALSE", nil
	default:
		return "", fmt.Errorf("unknown job filter %q", filter)
	}
}

// redact hides everything after the scheme so credentials never reach logs
func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "..."
	}
	return "..."
}
