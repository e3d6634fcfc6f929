// Package review attaches an optional advisory note to a scored posting.
// Notes never change the fit score, the label or what gets stored.
package review

import (
	"context"

	"github.com/jobdigest/job-agent/internal/posting"
	"github.com/jobdigest/job-agent/internal/scoring"
)

// Reviewer writes a short note for a posting that passed the score threshold.
type Reviewer interface {
	Review(ctx context.Context, p posting.Posting, result scoring.Result) (string, error)
}
