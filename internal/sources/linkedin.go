package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/fetch"
	"github.com/jobdigest/job-agent/internal/posting"
)

const linkedInURL = "https://www.linkedin.com"

const (
	linkedInCards    = "div.job-search-card, li.jobs-search-results__list-item, div.base-card"
	linkedInTitle    = "h3.base-search-card__title, h3.job-search-card__title, a.job-card-list__title"
	linkedInCompany  = "h4.base-search-card__subtitle, a.job-card-container__company-name, span.job-search-card__company-name"
	linkedInLocation = "span.job-search-card__location, span.job-card-container__metadata-item"
	linkedInLink     = "a.base-card__full-link, a.job-card-list__title, a[href*='/jobs/view/']"
	linkedInPosted   = "time, span.job-search-card__listdate"
	linkedInSnippet  = "p.job-search-card__snippet, div.job-card-list__footer-wrapper"
)

// DefaultLinkedInSearches are the public search queries run when none are configured.
var DefaultLinkedInSearches = []Search{
	{Keyword: "business consultant", Location: "Delhi NCR, India"},
	{Keyword: "business analyst", Location: "Noida, India"},
	{Keyword: "product manager", Location: "Gurugram, India"},
	{Keyword: "IT sales business development", Location: "Delhi, India"},
	{Keyword: "pre-sales consultant", Location: "Delhi NCR, India"},
}

// LinkedIn scrapes the public job search page, which needs no login.
type LinkedIn struct {
	client   *fetch.Client
	logger   *zap.Logger
	searches []Search
	BaseURL  string
}

func NewLinkedIn(client *fetch.Client, logger *zap.Logger, searches []Search) *LinkedIn {
	if len(searches) == 0 {
		searches = DefaultLinkedInSearches
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkedIn{client: client, logger: logger, searches: searches, BaseURL: linkedInURL}
}

func (l *LinkedIn) Name() string {
	return posting.PlatformLinkedIn
}

func (l *LinkedIn) Fetch(ctx context.Context, maxJobs int) ([]posting.Posting, error) {
	c := newCollector(maxJobs)

	for _, search := range l.searches {
		if c.full() {
			break
		}
		c.searches++

		q := url.Values{
			"keywords": {search.Keyword},
			"location": {search.Location},
			"f_TPR":    {"r86400"}, // posted in the last 24 hours
			"f_E":      {"2,3"},    // associate and mid-senior
			"start":    {"0"},
		}

		l.logger.Debug("searching LinkedIn", zap.String("keyword", search.Keyword), zap.String("location", search.Location))
		body, err := l.client.Get(ctx, l.BaseURL+"/jobs/search/", q, map[string]string{
			"Accept":  "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Referer": l.BaseURL + "/",
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Warn("LinkedIn search failed. It will be skipped.", zap.String("keyword", search.Keyword), zap.Error(err))
			c.fail(search, err)
			continue
		}

		cards, err := parseLinkedIn(body, search.Location, l.BaseURL)
		if err != nil {
			c.fail(search, err)
			continue
		}
		for _, p := range cards {
			c.add(p)
		}
		l.logger.Debug("LinkedIn cards parsed", zap.Int("cards", len(cards)), zap.Int("collected", len(c.postings)))
	}

	return c.result()
}

// parseLinkedIn extracts one posting per search card. Cards without a title or link are
// skipped; the search location stands in for a missing card location.
func parseLinkedIn(body []byte, searchLocation, base string) ([]posting.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing LinkedIn page: %w", err)
	}

	var postings []posting.Posting
	doc.Find(linkedInCards).Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, linkedInTitle)
		if title == "" {
			return
		}

		href, _ := card.Find(linkedInLink).First().Attr("href")
		jobURL := fetch.CleanURL(href, base)
		if jobURL == "" {
			return
		}

		company := firstText(card, linkedInCompany)
		if company == "" {
			company = UnknownCompany
		}
		location := firstText(card, linkedInLocation)
		if location == "" {
			location = searchLocation
		}
		posted, _ := card.Find(linkedInPosted).First().Attr("datetime")

		postings = append(postings, posting.Posting{
			Title:          title,
			Company:        company,
			Location:       location,
			URL:            jobURL,
			Platform:       posting.PlatformLinkedIn,
			EmploymentType: posting.DefaultEmploymentType,
			Description:    firstText(card, linkedInSnippet),
			PostedDate:     strings.TrimSpace(posted),
		})
	})

	return postings, nil
}

// firstText returns the trimmed, whitespace-collapsed text of the first match.
func firstText(s *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(s.Find(selector).First().Text()), " ")
}
