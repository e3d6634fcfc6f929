package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jobdigest/job-agent/internal/posting"
)

type stubKnown struct {
	known map[string]bool
	fail  map[string]bool
	calls []string
}

func (s *stubKnown) Exists(_ context.Context, url string) (bool, error) {
	s.calls = append(s.calls, url)
	if s.fail[url] {
		return false, errors.New("connection reset")
	}
	return s.known[url], nil
}

func titles(p []posting.Posting) []string {
	out := make([]string, 0, len(p))
	for _, item := range p {
		out = append(out, item.Title)
	}
	return out
}

func TestDefaultChain(t *testing.T) {
	known := &stubKnown{
		known: map[string]bool{"https://x/known": true},
		fail:  map[string]bool{"https://x/flaky": true},
	}
	core, recorded := observer.New(zapcore.InfoLevel)

	f := New(&Config{ExcludedCompanies: []string{" globex "}}, Deps{Known: known, Logger: zap.New(core)}, Default())

	input := []posting.Posting{
		{Title: "Analyst", Company: "Acme", URL: "https://x/1"},
		{Title: "Analyst copy", Company: "Acme", URL: "HTTPS://X/1"},
		{Title: "", Company: "Acme", URL: "https://x/untitled"},
		{Title: "Manager", Company: "GLOBEX", URL: "https://x/2"},
		{Title: "Known", Company: "Acme", URL: "https://x/known"},
		{Title: "Flaky", Company: "Acme", URL: "https://x/flaky"},
		{Title: "No URL", Company: "Initech"},
		{Title: "No URL", Company: "Initech"},
	}

	left, err := f.RunFilters(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Analyst", "Flaky", "No URL"}
	if got := titles(left); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// Postings without a URL never reach the store.
	for _, url := range known.calls {
		if url == "" {
			t.Fatalf("known check called with empty url")
		}
	}

	steps := recorded.FilterMessage("filter step").All()
	if len(steps) != 5 {
		t.Fatalf("expected 5 step entries, got %d", len(steps))
	}
	dedup := steps[0].ContextMap()
	if dedup["name"] != "dedup" || dedup["dropped"] != int64(2) {
		t.Fatalf("unexpected dedup step %v", dedup)
	}

	if warnings := recorded.FilterMessage("checking known posting failed. It will be kept.").Len(); warnings != 1 {
		t.Fatalf("expected one store warning, got %d", warnings)
	}

	if input[1].Title != "Analyst copy" {
		t.Fatalf("input slice must not be modified")
	}
}

func TestRunSkipsDisabledFilters(t *testing.T) {
	steps := Default()
	DisableByName(steps, "dedup", "testing")

	f := New(nil, Deps{}, steps)
	left, err := f.RunFilters(context.Background(), []posting.Posting{
		{Title: "A", URL: "https://x/1"},
		{Title: "A", URL: "https://x/1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("expected duplicates to survive, got %d", len(left))
	}

	statuses := f.Describe()
	if statuses[0].Name != "dedup" || statuses[0].Enabled || statuses[0].Reason != "testing" {
		t.Fatalf("unexpected dedup status %+v", statuses[0])
	}
}

func TestExcludeFileFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exclude.txt")
	content := strings.Join([]string{
		"# dismissed by hand",
		"https://x/2",
		"",
		"  https://x/3  ",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f := New(&Config{ExcludeFile: path}, Deps{}, []Filter{NewExcludeFile()})
	left, err := f.RunFilters(context.Background(), []posting.Posting{
		{Title: "1", URL: "https://x/1"},
		{Title: "2", URL: "https://x/2"},
		{Title: "3", URL: "https://x/3"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := titles(left); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("unexpected survivors %v", got)
	}

	// A missing file excludes nothing.
	f = New(&Config{ExcludeFile: filepath.Join(dir, "missing.txt")}, Deps{}, []Filter{NewExcludeFile()})
	left, err = f.RunFilters(context.Background(), []posting.Posting{{Title: "1", URL: "https://x/1"}})
	if err != nil || len(left) != 1 {
		t.Fatalf("expected posting kept, got %d, %v", len(left), err)
	}
}

func TestAppendExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.txt")

	added, err := AppendExcludeFile(path, []string{"https://x/1", " ", "https://x/2", "https://x/1"})
	if err != nil || added != 2 {
		t.Fatalf("expected 2 added, got %d, %v", added, err)
	}

	added, err = AppendExcludeFile(path, []string{"https://x/2", "https://x/3"})
	if err != nil || added != 1 {
		t.Fatalf("expected 1 added, got %d, %v", added, err)
	}

	urls, err := readExcludeFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []string{"https://x/1", "https://x/2", "https://x/3"}
	if !reflect.DeepEqual(urls, want) {
		t.Fatalf("expected %v, got %v", want, urls)
	}
}

func TestKnownFilterWithoutStore(t *testing.T) {
	f := New(nil, Deps{}, []Filter{NewKnown()})
	left, err := f.RunFilters(context.Background(), []posting.Posting{{Title: "A", URL: "https://x/1"}})
	if err != nil || len(left) != 1 {
		t.Fatalf("expected posting kept, got %d, %v", len(left), err)
	}
}

type failingFilter struct{ toggle }

func (f *failingFilter) Name() string { return "failing" }

func (f *failingFilter) Validate(*Config) error { return errors.New("bad config") }

func (f *failingFilter) Apply(_ context.Context, _ Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	return p, Step{}, nil
}

func TestRunValidatesBeforeApplying(t *testing.T) {
	known := &stubKnown{}
	_, err := Run(context.Background(), nil, Deps{Known: known}, []Filter{NewKnown(), &failingFilter{}},
		posting.New([]posting.Posting{{Title: "A", URL: "https://x/1"}}))
	if err == nil || !strings.HasPrefix(err.Error(), "failing:") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(known.calls) != 0 {
		t.Fatalf("no filter may run when validation fails")
	}
}

func TestRunEmpty(t *testing.T) {
	left, err := New(nil, Deps{}, Default()).RunFilters(context.Background(), nil)
	if err != nil || len(left) != 0 {
		t.Fatalf("expected empty result, got %d, %v", len(left), err)
	}
}
