// Package sources collects raw job postings from job boards.
package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jobdigest/job-agent/internal/logger"
	"github.com/jobdigest/job-agent/internal/posting"
)

// UnknownCompany fills the company of a scraped card that does not name one.
const UnknownCompany = "Unknown"

// Source fetches up to maxJobs postings from one job board. Finding nothing is not an
// error; an error means the board could not be queried at all.
type Source interface {
	Name() string
	Fetch(ctx context.Context, maxJobs int) ([]posting.Posting, error)
}

// Search is one keyword and location pair queried on a board.
type Search struct {
	Keyword  string `mapstructure:"keyword"`
	Location string `mapstructure:"location"`
}

// Collect runs every source concurrently and concatenates the results in the order the
// sources were given. A failing source is logged and contributes nothing.
func Collect(ctx context.Context, log *zap.Logger, sources []Source, maxJobs int) []posting.Posting {
	if log == nil {
		log = zap.NewNop()
	}

	results := make([][]posting.Posting, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			srcLog := logger.WithFields(log, zap.String(logger.FieldSource, src.Name()))

			found, err := fetchSafely(gctx, src, maxJobs)
			if err != nil {
				srcLog.Warn("source failed. It will be skipped.", zap.Error(err))
				return nil
			}
			if maxJobs > 0 && len(found) > maxJobs {
				found = found[:maxJobs]
			}

			srcLog.Info("source collected",
				zap.Int("postings", len(found)),
				zap.Duration("took", time.Since(start)),
			)
			results[i] = found
			return nil
		})
	}
	// Sources never return errors to the group.
	_ = g.Wait()

	var all []posting.Posting
	for _, found := range results {
		all = append(all, found...)
	}
	return all
}

func fetchSafely(ctx context.Context, src Source, maxJobs int) (found []posting.Posting, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()
	return src.Fetch(ctx, maxJobs)
}

// collector accumulates postings for one source, dropping repeated URLs.
type collector struct {
	max      int
	seen     map[string]struct{}
	postings []posting.Posting
	errs     []error
	searches int
}

func newCollector(max int) *collector {
	return &collector{max: max, seen: make(map[string]struct{})}
}

func (c *collector) full() bool {
	return c.max > 0 && len(c.postings) >= c.max
}

// add keeps p when it has a title and an unseen URL. It reports whether p was kept.
func (c *collector) add(p posting.Posting) bool {
	if c.full() || strings.TrimSpace(p.Title) == "" || p.URL == "" {
		return false
	}
	if _, ok := c.seen[p.URL]; ok {
		return false
	}
	c.seen[p.URL] = struct{}{}
	c.postings = append(c.postings, p)
	return true
}

func (c *collector) fail(search Search, err error) {
	c.errs = append(c.errs, fmt.Errorf("search %q in %q: %w", search.Keyword, search.Location, err))
}

// result returns the postings, or the joined search errors when every search failed.
func (c *collector) result() ([]posting.Posting, error) {
	if len(c.postings) == 0 && len(c.errs) > 0 && len(c.errs) >= c.searches {
		return nil, errors.Join(c.errs...)
	}
	return c.postings, nil
}
