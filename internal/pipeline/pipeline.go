// Package pipeline runs one collection, scoring and notification pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/digest"
	"github.com/jobdigest/job-agent/internal/logger"
	"github.com/jobdigest/job-agent/internal/notifier"
	"github.com/jobdigest/job-agent/internal/posting"
	"github.com/jobdigest/job-agent/internal/profile"
	"github.com/jobdigest/job-agent/internal/review"
	"github.com/jobdigest/job-agent/internal/scoring"
	"github.com/jobdigest/job-agent/internal/sources"
	"github.com/jobdigest/job-agent/internal/store"
)

const (
	DefaultMinScore = 6
	DefaultMaxJobs  = 30
	testMaxJobs     = 5
)

// Store is the part of the job store a run writes to.
type Store interface {
	Insert(ctx context.Context, p posting.Posting, foundOn time.Time) (int64, bool, error)
	UpdateScore(ctx context.Context, id int64, r scoring.Result) error
	UpdateNotes(ctx context.Context, id int64, notes string) error
	Shortlist(ctx context.Context, day time.Time, minScore int) ([]store.Job, error)
	MarkNotified(ctx context.Context, ids []int64) error
	LogRun(ctx context.Context, run store.RunLog) error
}

// Filterer drops collected postings before scoring.
type Filterer interface {
	RunFilters(ctx context.Context, postings []posting.Posting) ([]posting.Posting, error)
}

// Deps holds the collaborators of a run. Filters, Notifier and Reviewer are optional.
type Deps struct {
	Sources  []sources.Source
	Filters  Filterer
	Store    Store
	Notifier notifier.Notifier
	Reviewer review.Reviewer
	Profile  *profile.Profile
	Logger   *zap.Logger
	Now      func() time.Time
}

type Options struct {
	MinScore      int
	MaxJobs       int
	Recipient     string
	CandidateName string
	// TestMode collects a handful of postings per source and never marks anything notified.
	TestMode bool
}

// Report summarizes a finished run.
type Report struct {
	RunID       uuid.UUID
	Found       int
	Unique      int
	Scored      int
	Kept        int
	Shortlisted int
	EmailSent   bool
	Duration    time.Duration
}

type Runner struct {
	deps Deps
	opts Options
}

func New(deps Deps, opts Options) (*Runner, error) {
	if deps.Store == nil {
		return nil, errors.New("job store is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = DefaultMaxJobs
	}
	if opts.TestMode {
		opts.MaxJobs = testMaxJobs
	}
	return &Runner{deps: deps, opts: opts}, nil
}

// Run executes one pass. Collaborator failures are logged and degrade the run; only a
// filter configuration problem aborts it.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := r.deps.Now()
	report := &Report{RunID: uuid.New()}
	log := logger.WithFields(r.deps.Logger, logger.RunFields(report.RunID.String())...)

	log.Info("collecting postings", zap.Int("sources", len(r.deps.Sources)), zap.Int("max_jobs", r.opts.MaxJobs), zap.Bool("test_mode", r.opts.TestMode))
	found := sources.Collect(ctx, log, r.deps.Sources, r.opts.MaxJobs)
	report.Found = len(found)

	unique := found
	if r.deps.Filters != nil {
		var err error
		unique, err = r.deps.Filters.RunFilters(ctx, found)
		if err != nil {
			return nil, fmt.Errorf("filtering postings: %w", err)
		}
	}
	report.Unique = len(unique)
	log.Info("postings ready for scoring", zap.Int("found", report.Found), zap.Int("unique", report.Unique))

	scored := scoring.ScoreAll(unique, r.deps.Profile, log)
	report.Scored = len(scored)

	for i, item := range scored {
		kept := r.keep(ctx, log, item, start)
		if kept {
			report.Kept++
		}
		log.Info("posting scored",
			zap.Int("n", i+1),
			zap.Int("of", len(scored)),
			zap.Int("fit_score", item.Result.FitScore),
			zap.Bool("kept", kept),
			zap.String("title", item.Posting.Title),
			zap.String("company", item.Posting.Company),
		)
	}
	log.Info("scoring finished", zap.Int("kept", report.Kept), zap.Int("scored", report.Scored))

	report.Shortlisted, report.EmailSent = r.notify(ctx, log, start)

	run := store.RunLog{
		RunID:     report.RunID,
		RunAt:     start,
		Found:     report.Found,
		Scored:    report.Scored,
		Kept:      report.Kept,
		EmailSent: report.EmailSent,
	}
	if err := r.deps.Store.LogRun(ctx, run); err != nil {
		log.Warn("logging run failed", zap.Error(err))
	}

	report.Duration = r.deps.Now().Sub(start)
	log.Info("run finished",
		zap.Int("kept", report.Kept),
		zap.Bool("email_sent", report.EmailSent),
		zap.Duration("took", report.Duration),
	)
	return report, nil
}

// keep stores a posting that reached the threshold and reports whether it is new.
func (r *Runner) keep(ctx context.Context, log *zap.Logger, item scoring.Scored, foundOn time.Time) bool {
	if item.Result.FitScore < r.opts.MinScore {
		return false
	}

	itemLog := logger.WithFields(log, logger.PostingFields(item.Posting)...)

	id, inserted, err := r.deps.Store.Insert(ctx, item.Posting, foundOn)
	if err != nil {
		itemLog.Warn("storing posting failed. It will be skipped.", zap.Error(err))
		return false
	}
	if !inserted {
		itemLog.Debug("posting is already tracked")
		return false
	}

	if err := r.deps.Store.UpdateScore(ctx, id, item.Result); err != nil {
		itemLog.Warn("storing score failed. It will be skipped.", zap.Int64("id", id), zap.Error(err))
		return false
	}

	if r.deps.Reviewer != nil {
		note, err := r.deps.Reviewer.Review(ctx, item.Posting, item.Result)
		switch {
		case err != nil:
			itemLog.Warn("advisory note failed. The posting keeps no note.", zap.Error(err))
		case note != "":
			if err := r.deps.Store.UpdateNotes(ctx, id, note); err != nil {
				itemLog.Warn("storing advisory note failed", zap.Int64("id", id), zap.Error(err))
			}
		}
	}

	return true
}

// notify sends the shortlist of day and reports its size and whether it reached the inbox.
func (r *Runner) notify(ctx context.Context, log *zap.Logger, day time.Time) (int, bool) {
	if r.deps.Notifier == nil {
		log.Info("notifier is not configured; skipping digest")
		return 0, false
	}

	jobs, err := r.deps.Store.Shortlist(ctx, day, r.opts.MinScore)
	if err != nil {
		log.Warn("loading shortlist failed; skipping digest", zap.Error(err))
		return 0, false
	}
	log.Info("shortlist loaded", zap.Int("jobs", len(jobs)))

	msg, err := digest.Render(jobs, digest.Options{
		Date:          day,
		CandidateName: r.opts.CandidateName,
		MinScore:      r.opts.MinScore,
	})
	if err != nil {
		log.Warn("rendering digest failed", zap.Error(err))
		return len(jobs), false
	}

	err = r.deps.Notifier.Send(ctx, r.opts.Recipient, msg)
	switch {
	case errors.Is(err, notifier.ErrNotDelivered):
		log.Info("digest printed instead of sent")
		return len(jobs), false
	case err != nil:
		log.Warn("sending digest failed", zap.Error(err))
		return len(jobs), false
	}

	if r.opts.TestMode {
		return len(jobs), false
	}

	if len(jobs) > 0 {
		ids := make([]int64, 0, len(jobs))
		for _, job := range jobs {
			ids = append(ids, job.ID)
		}
		if err := r.deps.Store.MarkNotified(ctx, ids); err != nil {
			log.Warn("marking jobs notified failed", zap.Error(err))
		}
	}
	return len(jobs), true
}
