package headhunter

import (
	"strings"

	"github.com/jobdigest/job-agent/internal/fetch"
	"github.com/jobdigest/job-agent/internal/posting"
)

const maxDescriptionLength = 2000

type Vacancies struct {
	Items []*Vacancy
}

type Named struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Employer struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Trusted      bool   `json:"trusted,omitempty"`
}

type Salary struct {
	From     int    `json:"from,omitempty"`
	To       int    `json:"to,omitempty"`
	Currency string `json:"currency,omitempty"`
	Gross    bool   `json:"gross,omitempty"`
}

type Snippet struct {
	Requirement    string `json:"requirement,omitempty"`
	Responsibility string `json:"responsibility,omitempty"`
}

type Vacancy struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Area         Named    `json:"area,omitempty"`
	Salary       Salary   `json:"salary,omitempty"`
	Experience   Named    `json:"experience,omitempty"`
	Schedule     Named    `json:"schedule,omitempty"`
	Employment   Named    `json:"employment,omitempty"`
	Employer     Employer `json:"employer,omitempty"`
	AlternateURL string   `json:"alternate_url,omitempty"`
	Snippet      Snippet  `json:"snippet,omitempty"`
	Archived     bool     `json:"archived,omitempty"`
	PublishedAt  string   `json:"published_at,omitempty"`
}

func (v *Vacancies) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

// ToPosting converts the vacancy into the common posting shape. The search snippet is the
// only description the list endpoint returns; its highlight markup is stripped.
func (va *Vacancy) ToPosting() posting.Posting {
	employment := strings.TrimSpace(va.Employment.Name)
	if employment == "" {
		employment = posting.DefaultEmploymentType
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{va.Snippet.Requirement, va.Snippet.Responsibility, va.Experience.Name} {
		if text := fetch.PlainText(part); text != "" {
			parts = append(parts, text)
		}
	}

	return posting.Posting{
		Title:          strings.TrimSpace(va.Name),
		Company:        strings.TrimSpace(va.Employer.Name),
		Location:       strings.TrimSpace(va.Area.Name),
		URL:            fetch.CleanURL(va.AlternateURL, ""),
		Platform:       posting.PlatformHeadHunter,
		EmploymentType: employment,
		Description:    fetch.Clip(strings.Join(parts, " "), maxDescriptionLength),
		PostedDate:     va.PublishedAt,
	}
}

// ToPostings converts every non-archived vacancy, keeping order.
func (v *Vacancies) ToPostings() []posting.Posting {
	postings := make([]posting.Posting, 0, v.Len())
	if v == nil {
		return postings
	}
	for _, vacancy := range v.Items {
		if vacancy == nil || vacancy.Archived {
			continue
		}
		postings = append(postings, vacancy.ToPosting())
	}
	return postings
}
