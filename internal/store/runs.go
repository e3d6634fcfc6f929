package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// LogRun appends one entry to the run history.
func (s *Store) LogRun(ctx context.Context, run RunLog) error {
	runAt := run.RunAt
	if runAt.IsZero() {
		runAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO run_log (run_id, run_at, jobs_found, jobs_scored, jobs_kept, email_sent)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.RunID, runAt, run.Found, run.Scored, run.Kept, run.EmailSent,
	)
	if err != nil {
		return fmt.Errorf("failed to log run: %w", err)
	}
	return nil
}

// Stats summarizes the tracker; today counts jobs found on day.
func (s *Store) Stats(ctx context.Context, day time.Time) (*Stats, error) {
	stats := &Stats{ByPlatform: map[string]int{}}

	var avg *float64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE date_found = $1),
		        AVG(fit_score) FILTER (WHERE fit_score > 0)
		 FROM jobs`,
		civilDay(day),
	).Scan(&stats.Total, &stats.Today, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	if avg != nil {
		stats.AvgScore = roundTenth(*avg)
	}

	rows, err := s.pool.Query(ctx, `SELECT COALESCE(platform, ''), COUNT(*) FROM jobs GROUP BY 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by platform: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			platform string
			count    int
		)
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("failed to scan platform count: %w", err)
		}
		stats.ByPlatform[platform] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count jobs by platform: %w", err)
	}

	stats.LastRun, err = s.lastRun(ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) lastRun(ctx context.Context) (*RunLog, error) {
	var run RunLog
	err := s.pool.QueryRow(ctx,
		`SELECT run_id, run_at, jobs_found, jobs_scored, jobs_kept, email_sent
		 FROM run_log ORDER BY run_at DESC, id DESC LIMIT 1`,
	).Scan(&run.RunID, &run.RunAt, &run.Found, &run.Scored, &run.Kept, &run.EmailSent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}
	return &run, nil
}
