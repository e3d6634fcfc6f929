package posting

import (
	"strings"
)

const (
	PlatformLinkedIn   = "LinkedIn"
	PlatformIndeed     = "Indeed"
	PlatformNaukri     = "Naukri"
	PlatformHeadHunter = "HeadHunter"

	DefaultEmploymentType = "Full-time"

	// maxKeyLength bounds the dedup key the same way the tracker always did.
	maxKeyLength = 100
)

const (
	URLField     = "URL"
	CompanyField = "Company"
	KeyField     = "Key"
)

// Posting is one external job listing. Any field may be empty.
type Posting struct {
	Title          string `json:"title,omitempty" mapstructure:"title"`
	Company        string `json:"company,omitempty" mapstructure:"company"`
	Location       string `json:"location,omitempty" mapstructure:"location"`
	URL            string `json:"url,omitempty" mapstructure:"url"`
	Platform       string `json:"platform,omitempty" mapstructure:"platform"`
	EmploymentType string `json:"employment_type,omitempty" mapstructure:"employment_type"`
	Description    string `json:"description,omitempty" mapstructure:"description"`
	PostedDate     string `json:"posted_date,omitempty" mapstructure:"posted_date"`
}

// Key returns the normalized dedup key: the URL when present, otherwise title+company.
func (p *Posting) Key() string {
	key := p.URL
	if strings.TrimSpace(key) == "" {
		key = p.Title + p.Company
	}
	key = strings.ToLower(key)

	runes := []rune(key)
	if len(runes) > maxKeyLength {
		return string(runes[:maxKeyLength])
	}
	return key
}

func (p *Posting) GetStringField(name string) string {
	switch name {
	case URLField:
		return p.URL
	case CompanyField:
		return p.Company
	case KeyField:
		return p.Key()
	default:
		return ""
	}
}

type Postings struct {
	Items []*Posting
}

func New(items []Posting) *Postings {
	postings := &Postings{Items: make([]*Posting, 0, len(items))}
	for i := range items {
		p := items[i]
		postings.Items = append(postings.Items, &p)
	}
	return postings
}

func (p *Postings) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

func (p *Postings) Titles() []string {
	titles := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		titles = append(titles, item.Title)
	}
	return titles
}

// Values returns copies of the postings in order.
func (p *Postings) Values() []Posting {
	values := make([]Posting, 0, p.Len())
	for _, item := range p.Items {
		values = append(values, *item)
	}
	return values
}

// Exclude removes every posting whose field equals one of targets (case-insensitive)
// and returns the keys of removed postings. Order of the remaining postings is kept.
func (p *Postings) Exclude(field string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		target = strings.ToLower(strings.TrimSpace(target))
		if target == "" {
			continue
		}
		set[target] = struct{}{}
	}

	return p.Filter(func(item *Posting) bool {
		_, drop := set[strings.ToLower(strings.TrimSpace(item.GetStringField(field)))]
		return !drop
	})
}

// Filter keeps postings for which keep returns true and returns the keys of dropped ones.
func (p *Postings) Filter(keep func(*Posting) bool) []string {
	var dropped []string
	kept := p.Items[:0]
	for _, item := range p.Items {
		if keep(item) {
			kept = append(kept, item)
			continue
		}
		dropped = append(dropped, item.Key())
	}
	// Release references held by the tail of the shared backing array.
	for i := len(kept); i < len(p.Items); i++ {
		p.Items[i] = nil
	}
	p.Items = kept
	return dropped
}
