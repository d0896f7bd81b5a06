//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/apply-agent/internal/types"
)

// getTestDB connects to TEST_DATABASE_URL and migrates the schema
func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func TestIntegration_InsertQuestion(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	question := "integration question " + uuid.NewString()
	defer func() { _, _ = db.pool.Exec(ctx, "DELETE FROM questions WHERE question = $1", question) }()

	qa := types.QuestionAnswer{Type: types.FieldTextbox, Question: question, Answer: "first"}

	inserted, err := db.InsertQuestion(ctx, qa)
	if err != nil {
		t.Fatalf("InsertQuestion failed: %v", err)
	}
	if !inserted {
		t.Error("first insert should add a row")
	}

	qa.Answer = "second"
	inserted, err = db.InsertQuestion(ctx, qa)
	if err != nil {
		t.Fatalf("InsertQuestion failed: %v", err)
	}
	if inserted {
		t.Error("duplicate key should not add a row")
	}

	questions, err := db.LoadQuestions(ctx)
	if err != nil {
		t.Fatalf("LoadQuestions failed: %v", err)
	}
	found := 0
	for _, q := range questions {
		if q.Question == question {
			found++
			if q.Answer != "first" {
				t.Errorf("Answer = %q, want %q", q.Answer, "first")
			}
		}
	}
	if found != 1 {
		t.Errorf("found %d rows for question, want 1", found)
	}
}

func TestIntegration_JobLifecycle(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	link := "https://www.linkedin.com/jobs/view/" + uuid.NewString()
	recruiter := "https://www.linkedin.com/in/" + uuid.NewString()
	defer func() { _, _ = db.pool.Exec(ctx, "DELETE FROM jobs WHERE link = $1", link) }()

	job := &types.Job{Title: "Backend Engineer", Company: "Initech", Link: link, Recruiter: recruiter}

	t.Run("upsert inserts then updates", func(t *testing.T) {
		if err := db.UpsertJob(ctx, job, false, false); err != nil {
			t.Fatalf("UpsertJob failed: %v", err)
		}
		id := job.ID
		if err := db.UpsertJob(ctx, job, true, false); err != nil {
			t.Fatalf("UpsertJob failed: %v", err)
		}
		if job.ID != id {
			t.Errorf("ID = %d, want %d", job.ID, id)
		}
	})

	t.Run("recruiter listed until connected", func(t *testing.T) {
		recruiters, err := db.LoadDistinctUnconnectedRecruiters(ctx)
		if err != nil {
			t.Fatalf("LoadDistinctUnconnectedRecruiters failed: %v", err)
		}
		if !contains(recruiters, recruiter) {
			t.Fatalf("recruiter %s missing from %v", recruiter, recruiters)
		}

		if err := db.MarkRecruiterConnected(ctx, recruiter); err != nil {
			t.Fatalf("MarkRecruiterConnected failed: %v", err)
		}

		recruiters, err = db.LoadDistinctUnconnectedRecruiters(ctx)
		if err != nil {
			t.Fatalf("LoadDistinctUnconnectedRecruiters failed: %v", err)
		}
		if contains(recruiters, recruiter) {
			t.Error("connected recruiter should not be listed")
		}
	})

	t.Run("not-applied filter excludes applied job", func(t *testing.T) {
		jobs, err := db.LoadJobs(ctx, types.JobsNotApplied)
		if err != nil {
			t.Fatalf("LoadJobs failed: %v", err)
		}
		for _, j := range jobs {
			if j.Link == link {
				t.Error("applied job returned by not-applied filter")
			}
		}
	})
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
