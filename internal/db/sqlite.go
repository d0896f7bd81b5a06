package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonathan/apply-agent/internal/types"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLite is a single-file Store for local runs and tests
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at dsn.
// dsn is a file path, ":memory:" or a "file:" URI.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps in-memory databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database
func (s *SQLite) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Migrate creates the questions and jobs tables when missing
func (s *SQLite) Migrate(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("schema/sqlite.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// LoadQuestions returns every stored question/answer in insertion order
func (s *SQLite) LoadQuestions(ctx context.Context) ([]types.QuestionAnswer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, question, answer FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	defer rows.Close()

	var questions []types.QuestionAnswer
	for rows.Next() {
		var qa types.QuestionAnswer
		var fieldType string
		if err := rows.Scan(&fieldType, &qa.Question, &qa.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		qa.Type = types.FieldType(fieldType)
		questions = append(questions, qa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	return questions, nil
}

// InsertQuestion adds qa unless (type, question) is already stored.
// The existence check and the insert share one transaction.
func (s *SQLite) InsertQuestion(ctx context.Context, qa types.QuestionAnswer) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE type = ? AND question = ?)`,
		string(qa.Type), qa.Question,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check question: %w", err)
	}
	if exists {
		return false, nil
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO questions (type, question, answer) VALUES (?, ?, ?)
		 ON CONFLICT (type, question) DO NOTHING`,
		string(qa.Type), qa.Question, qa.Answer,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert question: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit question: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// LoadJobs returns jobs matching filter, newest first
func (s *SQLite) LoadJobs(ctx context.Context, filter types.JobFilter) ([]types.Job, error) {
	where, err := jobFilterClause(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, title, link, recruiter, location, apply_method, applied, connected
		 FROM jobs `+where+` ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		var j types.Job
		if err := rows.Scan(&j.ID, &j.Company, &j.Title, &j.Link, &j.Recruiter,
			&j.Location, &j.ApplyMethod, &j.Applied, &j.Connected); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return jobs, nil
}

// UpsertJob inserts job or updates the flags of the row with the same link.
// A newly discovered recruiter replaces an empty one. job.ID is set from the row.
func (s *SQLite) UpsertJob(ctx context.Context, job *types.Job, applied, connected bool) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO jobs (company, title, link, recruiter, location, apply_method, applied, connected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (link) DO UPDATE SET
		     applied = excluded.applied,
		     connected = excluded.connected,
		     recruiter = COALESCE(NULLIF(excluded.recruiter, ''), jobs.recruiter),
		     updated_at = CURRENT_TIMESTAMP
		 RETURNING id`,
		job.Company, job.Title, job.Link, job.Recruiter, job.Location, job.ApplyMethod, applied, connected,
	).Scan(&job.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert job: %w", err)
	}
	return nil
}

// LoadDistinctUnconnectedRecruiters returns each recruiter of an applied,
// unconnected job once, most recently seen first
func (s *SQLite) LoadDistinctUnconnectedRecruiters(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recruiter FROM jobs
		 WHERE applied = TRUE AND connected = FALSE AND recruiter <> ''
		 GROUP BY recruiter
		 ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load recruiters: %w", err)
	}
	defer rows.Close()

	var recruiters []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("failed to scan recruiter: %w", err)
		}
		recruiters = append(recruiters, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recruiters: %w", err)
	}
	return recruiters, nil
}

// MarkRecruiterConnected sets connected on every job listing recruiter
func (s *SQLite) MarkRecruiterConnected(ctx context.Context, recruiter string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET connected = TRUE, updated_at = CURRENT_TIMESTAMP WHERE recruiter = ?`,
		recruiter,
	)
	if err != nil {
		return fmt.Errorf("failed to mark recruiter connected: %w", err)
	}
	return nil
}
