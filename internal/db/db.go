// Package db provides persistent storage for answered questions and processed jobs.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/apply-agent/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the questions and jobs tables when missing
func (db *DB) Migrate(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("schema/postgres.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.pool.Exec(ctx, string(ddl)); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Question Methods
// -----------------------------------------------------------------------------

// LoadQuestions returns every stored question/answer in insertion order
func (db *DB) LoadQuestions(ctx context.Context) ([]types.QuestionAnswer, error) {
	rows, err := db.pool.Query(ctx, `SELECT type, question, answer FROM questions ORDER BY id`)
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
func (db *DB) InsertQuestion(ctx context.Context, qa types.QuestionAnswer) (bool, error) {
	inserted := false
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM questions WHERE type = $1 AND question = $2)`,
			string(qa.Type), qa.Question,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO questions (type, question, answer) VALUES ($1, $2, $3)
			 ON CONFLICT (type, question) DO NOTHING`,
			string(qa.Type), qa.Question, qa.Answer,
		)
		if err != nil {
			return err
		}
		inserted = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert question: %w", err)
	}
	return inserted, nil
}

// -----------------------------------------------------------------------------
// Job Methods
// -----------------------------------------------------------------------------

// LoadJobs returns jobs matching filter, newest first
func (db *DB) LoadJobs(ctx context.Context, filter types.JobFilter) ([]types.Job, error) {
	where, err := jobFilterClause(filter)
	if err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx,
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
func (db *DB) UpsertJob(ctx context.Context, job *types.Job, applied, connected bool) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (company, title, link, recruiter, location, apply_method, applied, connected)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (link) DO UPDATE SET
		     applied = EXCLUDED.applied,
		     connected = EXCLUDED.connected,
		     recruiter = COALESCE(NULLIF(EXCLUDED.recruiter, ''), jobs.recruiter),
		     updated_at = NOW()
		 RETURNING id`,
		job.Company, job.Title, job.Link, job.Recruiter, job.Location, job.ApplyMethod, applied, connected,
	).Scan(&job.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert job: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Recruiter Methods
// -----------------------------------------------------------------------------

// LoadDistinctUnconnectedRecruiters returns each recruiter of an applied,
// unconnected job once, most recently seen first
func (db *DB) LoadDistinctUnconnectedRecruiters(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT recruiter FROM jobs
		 WHERE applied = TRUE AND connected = FALSE AND recruiter <> ''
		 GROUP BY recruiter
		 ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load recruiters: %w", err)
	}
	defer rows.Close()

	recruiters, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan recruiters: %w", err)
	}
	return recruiters, nil
}

// MarkRecruiterConnected sets connected on every job listing recruiter
func (db *DB) MarkRecruiterConnected(ctx context.Context, recruiter string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE jobs SET connected = TRUE, updated_at = NOW() WHERE recruiter = $1`,
		recruiter,
	)
	if err != nil {
		return fmt.Errorf("failed to mark recruiter connected: %w", err)
	}
	return nil
}
