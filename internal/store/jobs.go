package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jobdigest/job-agent/internal/posting"
	"github.com/jobdigest/job-agent/internal/scoring"
)

const jobColumns = `id, title, COALESCE(company, ''), COALESCE(location, ''), COALESCE(url, ''),
	COALESCE(platform, ''), COALESCE(employment_type, ''), COALESCE(description, ''),
	COALESCE(posted_date, ''), fit_score, COALESCE(role_category, ''), COALESCE(role_match, ''),
	COALESCE(matching_skills, ''), COALESCE(missing_skills, ''), COALESCE(key_requirement, ''),
	COALESCE(ai_summary, ''), date_found, status, notified, COALESCE(notes, ''), created_at`

func scanJob(row pgx.Row) (Job, error) {
	var (
		job              Job
		matching, missed string
		status           string
	)
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Location, &job.URL,
		&job.Platform, &job.EmploymentType, &job.Description,
		&job.PostedDate, &job.FitScore, &job.RoleCategory, &job.RoleMatch,
		&matching, &missed, &job.KeyRequirement,
		&job.Summary, &job.DateFound, &status, &job.Notified, &job.Notes, &job.CreatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	job.MatchingSkills = splitList(matching)
	job.MissingSkills = splitList(missed)
	job.Status = Status(status)
	return job, nil
}

func collectJobs(rows pgx.Rows) ([]Job, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Job, error) {
		return scanJob(row)
	})
}

// Exists reports whether a job with url is already tracked.
func (s *Store) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check job url: %w", err)
	}
	return exists, nil
}

// Insert stores p as found on foundOn. A posting whose URL is already tracked is not
// inserted and reports inserted=false without an error.
func (s *Store) Insert(ctx context.Context, p posting.Posting, foundOn time.Time) (int64, bool, error) {
	employment := p.EmploymentType
	if employment == "" {
		employment = posting.DefaultEmploymentType
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, company, location, url, platform, employment_type,
		                   description, posted_date, date_found)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (url) DO NOTHING
		 RETURNING id`,
		p.Title, p.Company, p.Location, nullable(p.URL), p.Platform, employment,
		p.Description, p.PostedDate, civilDay(foundOn),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert job: %w", err)
	}
	return id, true, nil
}

// UpdateScore writes the score result of job id.
func (s *Store) UpdateScore(ctx context.Context, id int64, r scoring.Result) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET
		     fit_score       = $1,
		     role_category   = $2,
		     role_match      = $3,
		     matching_skills = $4,
		     missing_skills  = $5,
		     key_requirement = $6,
		     ai_summary      = $7
		 WHERE id = $8`,
		r.FitScore, r.RoleCategory, string(r.RoleMatch), joinList(r.MatchingSkills),
		joinList(r.MissingSkills), r.KeyRequirement, r.Summary, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating score of job %d: %w", id, ErrNotFound)
	}
	return nil
}

// Shortlist returns jobs found on day that scored at least minScore and were not
// notified yet, best first.
func (s *Store) Shortlist(ctx context.Context, day time.Time, minScore int) ([]Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs
		 WHERE date_found = $1 AND fit_score >= $2 AND NOT notified
		 ORDER BY fit_score DESC, id`,
		civilDay(day), minScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query shortlist: %w", err)
	}

	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan shortlist: %w", err)
	}
	return jobs, nil
}

func (s *Store) MarkNotified(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `UPDATE jobs SET notified = true WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to mark jobs notified: %w", err)
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	return s.updateField(ctx, id, "status", string(status))
}

func (s *Store) UpdateNotes(ctx context.Context, id int64, notes string) error {
	return s.updateField(ctx, id, "notes", notes)
}

// updateField sets one text column; column is never user input.
func (s *Store) updateField(ctx context.Context, id int64, column, value string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE jobs SET `+column+` = $1 WHERE id = $2`, value, id)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating %s of job %d: %w", column, id, ErrNotFound)
	}
	return nil
}

// List returns tracked jobs, newest first, for export and review.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Job, error) {
	query, args := listQuery(opts)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan jobs: %w", err)
	}
	return jobs, nil
}

func listQuery(opts ListOptions) (string, []any) {
	var (
		where []string
		args  []any
	)
	if !opts.Since.IsZero() {
		args = append(args, civilDay(opts.Since))
		where = append(where, "date_found >= $"+strconv.Itoa(len(args)))
	}
	if opts.MinScore > 0 {
		args = append(args, opts.MinScore)
		where = append(where, "fit_score >= $"+strconv.Itoa(len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + jobColumns + " FROM jobs")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY date_found DESC, fit_score DESC, id")
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	return b.String(), args
}
