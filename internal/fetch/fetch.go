// Package fetch is the HTTP client shared by every job source. It spaces requests with a
// token bucket, retries throttled or failed responses, and decodes gzip bodies.
package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jobdigest/job-agent/internal/utils"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultInterval  = 4 * time.Second

	acceptEncoding = "gzip"
	maxBodyBytes   = 8 << 20
	maxRetryDelay  = 30 * time.Second
)

// Options configures a Client. Zero Timeout, UserAgent and Burst fall back to the defaults;
// a zero Interval disables rate limiting.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Interval is the minimum spacing between requests; Burst requests may go out at once.
	Interval  time.Duration
	Burst     int
	Retries   int
	RetryBase time.Duration
	Headers   map[string]string
}

func DefaultOptions() Options {
	return Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Interval:  DefaultInterval,
		Burst:     1,
		Retries:   2,
		RetryBase: 2 * time.Second,
	}
}

// StatusError reports a response with a status other than 200.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status for %s: %s", e.URL, e.Status)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type Client struct {
	HTTPClient *http.Client
	opts       Options
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func New(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.Burst <= 0 {
		opts.Burst = defaults.Burst
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		limiter:    rate.NewLimiter(limit, opts.Burst),
		logger:     logger,
	}
}

// Get fetches rawURL with the query q and returns the decoded body. Headers extend the
// client's default headers for this request only.
func (c *Client) Get(ctx context.Context, rawURL string, q url.Values, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		if attempt > 0 {
			delay := utils.Backoff(c.opts.RetryBase, attempt-1, maxRetryDelay)
			c.logger.Debug("retrying request",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := utils.WaitFor(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, retry, err := c.get(ctx, rawURL, q, headers)
		if err == nil {
			return body, nil
		}
		if !retry || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// get performs a single attempt. retry reports whether the failure is transient:
// transport errors, throttling and server errors.
func (c *Client) get(ctx context.Context, rawURL string, q url.Values, headers map[string]string) (body []byte, retry bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	if len(q) > 0 {
		req.URL.RawQuery = q.Encode()
	}
	c.setHeaders(req, headers)

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, false, fmt.Errorf("decoding gzip body from %s: %w", req.URL, err)
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("reading body from %s: %w", req.URL, err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode, Status: resp.Status}
		return nil, statusErr.Temporary(), statusErr
	}

	return data, false, nil
}

func (c *Client) setHeaders(req *http.Request, extra map[string]string) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for key, value := range c.opts.Headers {
		req.Header.Set(key, value)
	}
	for key, value := range extra {
		req.Header.Set(key, value)
	}
}
