package filtering

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/logger"
	"github.com/jobdigest/job-agent/internal/posting"
)

// toggle carries the enabled state shared by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type dedupFilter struct {
	toggle
}

// NewDedup creates a filter that keeps the first posting for every dedup key.
func NewDedup() Filter {
	return &dedupFilter{}
}

func (f *dedupFilter) Name() string { return "dedup" }

func (f *dedupFilter) Validate(*Config) error { return nil }

func (f *dedupFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	seen := make(map[string]struct{}, initial)
	dropped := p.Filter(func(item *posting.Posting) bool {
		key := item.Key()
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})

	if len(dropped) > 0 {
		deps.Logger.Debug("excluding duplicate postings",
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *dedupFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type untitledFilter struct {
	toggle
}

// NewUntitled creates a filter that removes postings without a title; they cannot be stored.
func NewUntitled() Filter {
	return &untitledFilter{}
}

func (f *untitledFilter) Name() string { return "untitled" }

func (f *untitledFilter) Validate(*Config) error { return nil }

func (f *untitledFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	dropped := p.Filter(func(item *posting.Posting) bool {
		return strings.TrimSpace(item.Title) != ""
	})

	if len(dropped) > 0 {
		deps.Logger.Info("excluding postings without a title",
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

type companiesFilter struct {
	toggle
	companies []string
}

// NewCompanies creates a filter that removes postings by companies configured in the config.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg != nil {
		f.companies = append(f.companies, cfg.ExcludedCompanies...)
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if len(f.companies) == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	excluded := p.Exclude(posting.CompanyField, f.companies)
	if len(excluded) > 0 {
		deps.Logger.Info("excluding postings by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes postings whose URL is listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if f.path == "" {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	urls, err := readExcludeFile(f.path)
	if err != nil {
		return p, Step{}, fmt.Errorf("getting excluded postings from file: %w", err)
	}

	removed := p.Exclude(posting.URLField, urls)
	if len(removed) > 0 {
		deps.Logger.Info("excluding postings based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_postings", removed),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(removed), Left: p.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// readExcludeFile returns the non-empty lines of path, skipping # comments.
// A missing file excludes nothing.
func readExcludeFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// AppendExcludeFile adds urls missing from the exclude file at path, creating it when needed.
func AppendExcludeFile(path string, urls []string) (int, error) {
	existing, err := readExcludeFile(path)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, url := range existing {
		seen[url] = struct{}{}
	}

	var b strings.Builder
	added := 0
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		b.WriteString(url)
		b.WriteByte('\n')
		added++
	}
	if added == 0 {
		return 0, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	if _, err := file.WriteString(b.String()); err != nil {
		file.Close()
		return 0, err
	}
	return added, file.Close()
}

type knownFilter struct {
	toggle
	checked int
	failed  int
}

// NewKnown creates a filter that removes postings whose URL is already tracked.
func NewKnown() Filter {
	return &knownFilter{}
}

func (f *knownFilter) Name() string { return "known" }

func (f *knownFilter) Validate(*Config) error { return nil }

func (f *knownFilter) Apply(ctx context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if deps.Known == nil {
		deps.Logger.Info("job store is not configured; skipping known filter")
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	f.checked, f.failed = 0, 0
	dropped := p.Filter(func(item *posting.Posting) bool {
		// Postings without a URL are stored with a NULL url and never collide.
		if strings.TrimSpace(item.URL) == "" {
			return true
		}
		f.checked++

		exists, err := deps.Known.Exists(ctx, item.URL)
		if err != nil {
			f.failed++
			deps.Logger.Warn("checking known posting failed. It will be kept.",
				append(logger.PostingFields(*item), zap.Error(err))...,
			)
			return true
		}
		return !exists
	})

	if len(dropped) > 0 {
		deps.Logger.Debug("excluding already tracked postings",
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *knownFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{
			"checked": strconv.Itoa(f.checked),
			"failed":  strconv.Itoa(f.failed),
		},
	}
}
