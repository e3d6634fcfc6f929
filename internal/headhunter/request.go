package headhunter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const contentType = "application/json"

type ItemResponse struct {
	Items   []Item
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

type Item interface{}

// GetItems makes GET requests to the HeadHunter API and returns items from all pages,
// stopping early once limit items are collected.
func (c *Client) GetItems(ctx context.Context, rawURL string, q url.Values, limit int) ([]Item, error) {
	var items []Item

	response, err := c.getPage(ctx, rawURL, q)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response from HH.ru", zap.Int("pages", response.Pages), zap.Int("max items per page", response.PerPage))

	items = append(items, response.Items...)

	for response.Page < (response.Pages-1) && !reached(items, limit) {
		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", response.Page+1, response.Pages),
		))

		response, err = c.getPage(ctx, rawURL, addPage(q, response.Page+1))
		if err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

func (c *Client) getPage(ctx context.Context, rawURL string, q url.Values) (*ItemResponse, error) {
	body, err := c.http.Get(ctx, rawURL, q, c.headers())
	if err != nil {
		return nil, err
	}

	var response ItemResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decoding item response: %w", err)
	}

	return &response, nil
}

func (c *Client) headers() map[string]string {
	headers := map[string]string{
		"Accept": contentType,
		// hh.ru rejects requests without an identifying agent.
		"HH-User-Agent": c.UserAgent,
	}
	if c.token != "" {
		headers["Authorization"] = fmt.Sprintf("Bearer %s", c.token)
	}
	return headers
}

func reached(items []Item, limit int) bool {
	return limit > 0 && len(items) >= limit
}

// addPage returns a copy of q with the page parameter set.
func addPage(q url.Values, page int) url.Values {
	next := url.Values{}
	for key, values := range q {
		next[key] = append([]string(nil), values...)
	}
	next.Set("page", strconv.Itoa(page))

	return next
}
