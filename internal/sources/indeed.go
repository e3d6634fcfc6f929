package sources

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/fetch"
	"github.com/jobdigest/job-agent/internal/posting"
)

const (
	indeedURL = "https://in.indeed.com"
	// indeedJobKey is the query parameter holding the job id on every Indeed link.
	indeedJobKey = "jk"
)

const (
	indeedCards    = "div.job_seen_beacon, div.resultContent, td.resultContent"
	indeedTitle    = "h2.jobTitle span, a.jcs-JobTitle"
	indeedCompany  = "span.companyName, [data-testid='company-name']"
	indeedLocation = "div.companyLocation, [data-testid='text-location']"
	indeedLink     = "a[id^='job_'], a.jcs-JobTitle"
)

var DefaultIndeedSearches = []Search{
	{Keyword: "business consultant", Location: "Delhi, India"},
	{Keyword: "business analyst", Location: "Noida, India"},
	{Keyword: "product manager", Location: "Gurugram, India"},
	{Keyword: "IT sales business development", Location: "Delhi NCR"},
	{Keyword: "pre sales consultant", Location: "Delhi NCR"},
	{Keyword: "associate product manager", Location: "Delhi, India"},
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Source      string `xml:"source"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// Indeed reads the search RSS feed, falling back to the HTML results page when the
// feed is not valid XML.
type Indeed struct {
	client   *fetch.Client
	logger   *zap.Logger
	searches []Search
	BaseURL  string
}

func NewIndeed(client *fetch.Client, logger *zap.Logger, searches []Search) *Indeed {
	if len(searches) == 0 {
		searches = DefaultIndeedSearches
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indeed{client: client, logger: logger, searches: searches, BaseURL: indeedURL}
}

func (i *Indeed) Name() string {
	return posting.PlatformIndeed
}

func (i *Indeed) Fetch(ctx context.Context, maxJobs int) ([]posting.Posting, error) {
	c := newCollector(maxJobs)

	for _, search := range i.searches {
		if c.full() {
			break
		}
		c.searches++

		postings, err := i.search(ctx, search)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			i.logger.Warn("Indeed search failed. It will be skipped.", zap.String("keyword", search.Keyword), zap.Error(err))
			c.fail(search, err)
			continue
		}
		for _, p := range postings {
			c.add(p)
		}
		i.logger.Debug("Indeed items parsed", zap.Int("items", len(postings)), zap.Int("collected", len(c.postings)))
	}

	return c.result()
}

func (i *Indeed) search(ctx context.Context, search Search) ([]posting.Posting, error) {
	q := url.Values{
		"q":       {search.Keyword},
		"l":       {search.Location},
		"sort":    {"date"},
		"fromage": {"1"}, // last day
		"limit":   {"15"},
	}

	body, err := i.client.Get(ctx, i.BaseURL+"/rss", q, nil)
	if err != nil {
		return nil, err
	}

	postings, err := parseIndeedRSS(body, search.Location)
	if err == nil {
		return postings, nil
	}

	i.logger.Info("Indeed feed is not valid XML, trying the results page", zap.Error(err))
	q.Del("limit")
	body, err = i.client.Get(ctx, i.BaseURL+"/jobs", q, nil)
	if err != nil {
		return nil, fmt.Errorf("html fallback: %w", err)
	}
	return parseIndeedHTML(body, search.Location, i.BaseURL)
}

func parseIndeedRSS(body []byte, searchLocation string) ([]posting.Posting, error) {
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decoding Indeed feed: %w", err)
	}

	postings := make([]posting.Posting, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		link := fetch.CleanURL(item.Link, "", indeedJobKey)
		if title == "" || link == "" {
			continue
		}

		company := strings.TrimSpace(item.Source)
		if company == "" {
			company = UnknownCompany
		}

		postings = append(postings, posting.Posting{
			Title:          title,
			Company:        company,
			Location:       searchLocation,
			URL:            link,
			Platform:       posting.PlatformIndeed,
			EmploymentType: posting.DefaultEmploymentType,
			Description:    fetch.Clip(fetch.PlainText(item.Description), maxDescriptionLength),
			PostedDate:     strings.TrimSpace(item.PubDate),
		})
	}

	return postings, nil
}

func parseIndeedHTML(body []byte, searchLocation, base string) ([]posting.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing Indeed page: %w", err)
	}

	var postings []posting.Posting
	doc.Find(indeedCards).Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, indeedTitle)
		href, _ := card.Find(indeedLink).First().Attr("href")
		jobURL := fetch.CleanURL(href, base, indeedJobKey)
		if title == "" || jobURL == "" {
			return
		}

		company := firstText(card, indeedCompany)
		if company == "" {
			company = UnknownCompany
		}
		location := firstText(card, indeedLocation)
		if location == "" {
			location = searchLocation
		}

		postings = append(postings, posting.Posting{
			Title:          title,
			Company:        company,
			Location:       location,
			URL:            jobURL,
			Platform:       posting.PlatformIndeed,
			EmploymentType: posting.DefaultEmploymentType,
		})
	})

	return postings, nil
}
