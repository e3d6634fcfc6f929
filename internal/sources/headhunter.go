package sources

import (
	"context"

	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/headhunter"
	"github.com/jobdigest/job-agent/internal/posting"
)

// HeadHunter queries the hh.ru vacancy API once per configured search.
type HeadHunter struct {
	client   *headhunter.Client
	logger   *zap.Logger
	searches []headhunter.SearchParams
}

func NewHeadHunter(client *headhunter.Client, logger *zap.Logger, searches []headhunter.SearchParams) *HeadHunter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeadHunter{client: client, logger: logger, searches: searches}
}

func (h *HeadHunter) Name() string {
	return posting.PlatformHeadHunter
}

func (h *HeadHunter) Fetch(ctx context.Context, maxJobs int) ([]posting.Posting, error) {
	c := newCollector(maxJobs)

	for _, params := range h.searches {
		if c.full() {
			break
		}
		c.searches++

		remaining := 0
		if maxJobs > 0 {
			remaining = maxJobs - len(c.postings)
		}

		vacancies, err := h.client.Search(ctx, &params, remaining)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			h.logger.Warn("HeadHunter search failed. It will be skipped.", zap.String("text", params.Text), zap.Error(err))
			c.fail(Search{Keyword: params.Text}, err)
			continue
		}

		for _, p := range vacancies.ToPostings() {
			c.add(p)
		}
		h.logger.Debug("HeadHunter vacancies converted", zap.Int("vacancies", vacancies.Len()), zap.Int("collected", len(c.postings)))
	}

	return c.result()
}
