//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jobdigest/job-agent/internal/posting"
	"github.com/jobdigest/job-agent/internal/scoring"
)

func getTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	_, _ = s.pool.Exec(ctx, "DELETE FROM jobs WHERE company = 'Store Test Corp'")
	return s
}

func TestIntegration_JobLifecycle(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	day := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	url := "https://jobs.test.example.com/" + uuid.NewString()
	p := posting.Posting{Title: "Business Analyst", Company: "Store Test Corp", URL: url, Platform: posting.PlatformLinkedIn}

	id, inserted, err := s.Insert(ctx, p, day)
	if err != nil || !inserted {
		t.Fatalf("Insert() = %d, %v, %v", id, inserted, err)
	}

	if _, inserted, err := s.Insert(ctx, p, day); err != nil || inserted {
		t.Fatalf("duplicate insert must be skipped, got inserted=%v err=%v", inserted, err)
	}

	exists, err := s.Exists(ctx, url)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v", exists, err)
	}

	result := scoring.Result{
		FitScore:       9,
		RoleCategory:   "Business Analyst",
		RoleMatch:      scoring.LabelHigh,
		MatchingSkills: []string{"BRD Writing", "Agile"},
		MissingSkills:  []string{"MBA"},
		Summary:        "Strong match",
	}
	if err := s.UpdateScore(ctx, id, result); err != nil {
		t.Fatalf("UpdateScore() error: %v", err)
	}

	jobs, err := s.Shortlist(ctx, day, 6)
	if err != nil {
		t.Fatalf("Shortlist() error: %v", err)
	}
	var found *Job
	for i := range jobs {
		if jobs[i].ID == id {
			found = &jobs[i]
		}
	}
	if found == nil {
		t.Fatalf("job %d missing from shortlist", id)
	}
	if found.Status != StatusShortlisted || found.EmploymentType != posting.DefaultEmploymentType {
		t.Fatalf("unexpected defaults %+v", found)
	}
	if len(found.MatchingSkills) != 2 || found.MissingSkills[0] != "MBA" {
		t.Fatalf("unexpected skills %+v", found)
	}

	if err := s.MarkNotified(ctx, []int64{id}); err != nil {
		t.Fatalf("MarkNotified() error: %v", err)
	}
	jobs, err = s.Shortlist(ctx, day, 6)
	if err != nil {
		t.Fatalf("Shortlist() error: %v", err)
	}
	for _, job := range jobs {
		if job.ID == id {
			t.Fatalf("notified job must leave the shortlist")
		}
	}

	if err := s.UpdateStatus(ctx, id, StatusApplied); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}
	if err := s.UpdateNotes(ctx, -1, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegration_PostingsWithoutURLNeverCollide(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	p := posting.Posting{Title: "Pre-Sales Consultant", Company: "Store Test Corp"}
	for i := 0; i < 2; i++ {
		if _, inserted, err := s.Insert(ctx, p, time.Now()); err != nil || !inserted {
			t.Fatalf("insert %d: inserted=%v err=%v", i, inserted, err)
		}
	}
}

func TestIntegration_RunLogAndStats(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	runID := uuid.New()
	if err := s.LogRun(ctx, RunLog{RunID: runID, Found: 12, Scored: 10, Kept: 3, EmailSent: true}); err != nil {
		t.Fatalf("LogRun() error: %v", err)
	}

	stats, err := s.Stats(ctx, time.Now())
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.LastRun == nil || stats.LastRun.RunID != runID {
		t.Fatalf("expected last run %s, got %+v", runID, stats.LastRun)
	}
}
