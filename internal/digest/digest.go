// Package digest renders the daily shortlist into an email body.
package digest

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/jobdigest/job-agent/internal/store"
)

const (
	longDate  = "Monday, 02 January 2006"
	shortDate = "02 Jan 2006"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New("html").Funcs(htmltemplate.FuncMap(funcs)).
			ParseFS(templatesFS, "templates/digest.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.New("text").Funcs(funcs).
			ParseFS(templatesFS, "templates/digest.txt.tmpl"))
)

var funcs = texttemplate.FuncMap{
	"badge":         BadgeFor,
	"platformColor": PlatformColor,
	"plural":        plural,
	"limit":         limit,
	"join":          strings.Join,
	"rule":          func() string { return strings.Repeat("═", 60) },
}

// Options carries the values the digest needs besides the jobs themselves.
type Options struct {
	Date          time.Time
	CandidateName string
	MinScore      int
}

// Message is a rendered digest ready to be delivered.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

type view struct {
	Date          string
	ShortDate     string
	Count         int
	MinScore      int
	CandidateName string
	Jobs          []store.Job
}

// Badge describes the score pill shown next to each job.
type Badge struct {
	Name       string
	Icon       string
	Background string
	Color      string
}

func BadgeFor(score int) Badge {
	switch {
	case score >= 9:
		return Badge{Name: "Excellent", Icon: "🔥", Background: "#D1FAE5", Color: "#065F46"}
	case score >= 7:
		return Badge{Name: "Strong", Icon: "⭐", Background: "#DBEAFE", Color: "#1E40AF"}
	default:
		return Badge{Name: "Good", Icon: "✅", Background: "#FEF3C7", Color: "#92400E"}
	}
}

var platformColors = map[string]string{
	"LinkedIn":   "#0A66C2",
	"Indeed":     "#2164F4",
	"Naukri":     "#FF6F61",
	"HeadHunter": "#D6001C",
}

func PlatformColor(platform string) string {
	if c, ok := platformColors[platform]; ok {
		return c
	}
	return "#6B7280"
}

// Subject builds the mail subject for n jobs on date.
func Subject(n int, date time.Time) string {
	if n == 0 {
		return "No New Jobs Today - " + date.Format(longDate)
	}
	return fmt.Sprintf("%d Job %s For You - %s", n, plural(n, "Match", "Matches"), date.Format(longDate))
}

// Render builds the HTML and plain text digest for jobs in the given order.
func Render(jobs []store.Job, opts Options) (*Message, error) {
	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}

	v := view{
		Date:          date.Format(longDate),
		ShortDate:     date.Format(shortDate),
		Count:         len(jobs),
		MinScore:      opts.MinScore,
		CandidateName: opts.CandidateName,
		Jobs:          jobs,
	}

	name := "digest"
	if len(jobs) == 0 {
		name = "empty"
	}

	var html bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name, v); err != nil {
		return nil, fmt.Errorf("rendering html digest: %w", err)
	}

	var text bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, name, v); err != nil {
		return nil, fmt.Errorf("rendering text digest: %w", err)
	}

	return &Message{
		Subject: Subject(len(jobs), date),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
