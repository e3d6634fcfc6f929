// Package headhunter is a read-only client for the public hh.ru vacancy search API.
package headhunter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/fetch"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "job-agent/1.0 (jobdigest@users.noreply.github.com)"
	// Max value for search per page.
	perPage = "100"
)

type Client struct {
	http      *fetch.Client
	token     string
	logger    *zap.Logger
	UserAgent string
	APIURL    string
}

// New returns a client. The token is optional: vacancy search works anonymously.
func New(http *fetch.Client, logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:      http,
		token:     token,
		APIURL:    apiURL,
		logger:    logger,
		UserAgent: userAgent,
	}
}

// Search returns at most limit vacancies matching params. A limit of zero or less means
// every page.
func (c *Client) Search(ctx context.Context, params *SearchParams, limit int) (*Vacancies, error) {
	vacancies, err := c.search(ctx, params, limit)
	if err != nil {
		return nil, fmt.Errorf("searching vacancies %q: %w", params.Text, err)
	}
	return vacancies, nil
}
