package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/fetch"
	"github.com/jobdigest/job-agent/internal/posting"
)

const (
	naukriURL = "https://www.naukri.com"

	maxDescriptionLength = 2000
)

const (
	naukriCards         = "article.jobTuple, div.jobTuple, div[class*='srp-jobtuple']"
	naukriFallbackCards = "a.title, div.job-title-wrapper"
	naukriTitle         = "a.title, a[class*='jobTitle'], h2 a, .title a"
	naukriCompany       = "a.subTitle, a[class*='companyName'], span[class*='comp-name'], .company-name"
	naukriLocation      = "li[class*='location'], span[class*='loc'], ul.top-jd-dtl li:nth-child(2)"
	naukriDescription   = "div[class*='job-description'], span[class*='job-desc'], ul[class*='tags-gt']"
	naukriSkills        = "ul[class*='tags-gt'] li, span[class*='skill-tag']"
)

// DefaultNaukriSearches use Naukri's URL slugs: /{keyword}-in-{location}.
var DefaultNaukriSearches = []Search{
	{Keyword: "business-consultant-jobs", Location: "delhi-ncr"},
	{Keyword: "business-analyst-jobs", Location: "delhi-ncr"},
	{Keyword: "product-manager-jobs", Location: "delhi-ncr"},
	{Keyword: "it-sales-jobs", Location: "delhi-ncr"},
	{Keyword: "business-development-jobs", Location: "delhi-ncr"},
}

// Naukri scrapes search result pages.
type Naukri struct {
	client   *fetch.Client
	logger   *zap.Logger
	searches []Search
	BaseURL  string
	// DefaultLocation stands in for cards without a location.
	DefaultLocation string
}

func NewNaukri(client *fetch.Client, logger *zap.Logger, searches []Search) *Naukri {
	if len(searches) == 0 {
		searches = DefaultNaukriSearches
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Naukri{
		client:          client,
		logger:          logger,
		searches:        searches,
		BaseURL:         naukriURL,
		DefaultLocation: "Delhi NCR",
	}
}

func (n *Naukri) Name() string {
	return posting.PlatformNaukri
}

func (n *Naukri) Fetch(ctx context.Context, maxJobs int) ([]posting.Posting, error) {
	c := newCollector(maxJobs)

	for _, search := range n.searches {
		if c.full() {
			break
		}
		c.searches++

		pageURL := fmt.Sprintf("%s/%s-in-%s", n.BaseURL, search.Keyword, search.Location)
		n.logger.Debug("searching Naukri", zap.String("url", pageURL))

		body, err := n.client.Get(ctx, pageURL, nil, map[string]string{
			"Accept":  "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Referer": n.BaseURL + "/",
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			n.logger.Warn("Naukri search failed. It will be skipped.", zap.String("keyword", search.Keyword), zap.Error(err))
			c.fail(search, err)
			continue
		}

		cards, err := parseNaukri(body, n.DefaultLocation, n.BaseURL)
		if err != nil {
			c.fail(search, err)
			continue
		}
		for _, p := range cards {
			c.add(p)
		}
		n.logger.Debug("Naukri cards parsed", zap.Int("cards", len(cards)), zap.Int("collected", len(c.postings)))
	}

	return c.result()
}

// parseNaukri extracts postings from a results page. Skill tags are appended to the
// description because they carry most of the keyword signal.
func parseNaukri(body []byte, defaultLocation, base string) ([]posting.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing Naukri page: %w", err)
	}

	cards := doc.Find(naukriCards)
	if cards.Length() == 0 {
		cards = doc.Find(naukriFallbackCards)
	}

	var postings []posting.Posting
	cards.Each(func(_ int, card *goquery.Selection) {
		titleEl := card.Find(naukriTitle).First()
		if titleEl.Length() == 0 && card.Is(naukriTitle) {
			// Fallback cards may be the title link itself.
			titleEl = card
		}
		if titleEl.Length() == 0 {
			return
		}
		title := strings.Join(strings.Fields(titleEl.Text()), " ")
		href, _ := titleEl.Attr("href")
		jobURL := fetch.CleanURL(href, base)
		if title == "" || jobURL == "" {
			return
		}

		company := firstText(card, naukriCompany)
		if company == "" {
			company = UnknownCompany
		}
		location := firstText(card, naukriLocation)
		if location == "" {
			location = defaultLocation
		}

		description := spacedText(card.Find(naukriDescription).First())
		var skills []string
		card.Find(naukriSkills).Each(func(_ int, tag *goquery.Selection) {
			if skill := strings.TrimSpace(tag.Text()); skill != "" {
				skills = append(skills, skill)
			}
		})
		if len(skills) > 0 {
			description = strings.TrimSpace(description + " Skills: " + strings.Join(skills, ", "))
		}

		postings = append(postings, posting.Posting{
			Title:          title,
			Company:        company,
			Location:       location,
			URL:            jobURL,
			Platform:       posting.PlatformNaukri,
			EmploymentType: posting.DefaultEmploymentType,
			Description:    fetch.Clip(description, maxDescriptionLength),
		})
	})

	return postings, nil
}

// spacedText joins the text nodes under s with single spaces, so adjacent list items
// do not run together.
func spacedText(s *goquery.Selection) string {
	var parts []string
	s.Contents().Each(func(_ int, node *goquery.Selection) {
		var text string
		if goquery.NodeName(node) == "#text" {
			text = strings.TrimSpace(node.Text())
		} else {
			text = spacedText(node)
		}
		if text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
