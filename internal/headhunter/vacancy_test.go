package headhunter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/jobdigest/job-agent/internal/fetch"
	"github.com/jobdigest/job-agent/internal/posting"
)

func TestVacancyToPosting(t *testing.T) {
	vacancy := &Vacancy{
		ID:           "1",
		Name:         " Business Analyst ",
		Area:         Named{Name: "Moscow"},
		Employer:     Employer{ID: "emp1", Name: "Acme"},
		AlternateURL: "https://hh.ru/vacancy/1?query=analyst",
		Snippet: Snippet{
			Requirement:    "Experience with <highlighttext>BRD</highlighttext> writing.",
			Responsibility: "Run stakeholder interviews.",
		},
		Experience:  Named{ID: "between1And3", Name: "1-3 years"},
		PublishedAt: "2026-10-15T10:00:00+0300",
	}

	got := vacancy.ToPosting()
	want := posting.Posting{
		Title:          "Business Analyst",
		Company:        "Acme",
		Location:       "Moscow",
		URL:            "https://hh.ru/vacancy/1",
		Platform:       posting.PlatformHeadHunter,
		EmploymentType: posting.DefaultEmploymentType,
		Description:    "Experience with BRD writing. Run stakeholder interviews. 1-3 years",
		PostedDate:     "2026-10-15T10:00:00+0300",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected posting:\n%+v\nwant:\n%+v", got, want)
	}
}

func TestToPostingsSkipsArchived(t *testing.T) {
	vacancies := &Vacancies{Items: []*Vacancy{
		{Name: "A", AlternateURL: "https://hh.ru/vacancy/1"},
		{Name: "B", Archived: true},
		nil,
		{Name: "C", AlternateURL: "https://hh.ru/vacancy/3"},
	}}

	postings := vacancies.ToPostings()
	if len(postings) != 2 || postings[0].Title != "A" || postings[1].Title != "C" {
		t.Fatalf("unexpected postings %+v", postings)
	}

	var empty *Vacancies
	if got := empty.ToPostings(); len(got) != 0 {
		t.Fatalf("expected no postings from nil vacancies")
	}
}

func TestBuildParams(t *testing.T) {
	q := buildParams(&SearchParams{
		Text:      "business analyst",
		Areas:     []int{1, 2},
		Schedules: []string{"remote"},
		PerPage:   "50",
		Period:    1,
	})

	want := url.Values{
		"text":     {"business analyst"},
		"area":     {"1", "2"},
		"schedule": {"remote"},
		"per_page": {"50"},
		"period":   {"1"},
	}
	if !reflect.DeepEqual(q, want) {
		t.Fatalf("unexpected params %v", q)
	}
}

func newTestServer(t *testing.T, pages int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != SearchPath {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("HH-User-Agent") == "" {
			t.Errorf("missing HH-User-Agent header")
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[
			{"id":"%[1]d-a","name":"Analyst %[1]d","alternate_url":"https://hh.ru/vacancy/%[1]d1","employer":{"id":"7","name":"Acme"},"area":{"id":"1","name":"Moscow"},"salary":null},
			{"id":"%[1]d-b","name":"Manager %[1]d","alternate_url":"https://hh.ru/vacancy/%[1]d2","employer":{"id":"8","name":"Globex"},"salary":{"from":100000,"to":null,"currency":"RUR"}}
		],"found":%[2]d,"pages":%[3]d,"page":%[1]d,"per_page":2}`, page, pages*2, pages)
	}))
}

func TestSearchPaginates(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, 3, &calls)
	defer srv.Close()

	client := New(fetch.New(nil, fetch.Options{}), nil, "")
	client.APIURL = srv.URL

	vacancies, err := client.Search(context.Background(), &SearchParams{Text: "analyst"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vacancies.Len() != 6 || calls.Load() != 3 {
		t.Fatalf("expected 6 vacancies from 3 pages, got %d from %d calls", vacancies.Len(), calls.Load())
	}
	if vacancies.Items[2].Name != "Analyst 1" || vacancies.Items[1].Salary.From != 100000 {
		t.Fatalf("unexpected decode: %+v %+v", vacancies.Items[2], vacancies.Items[1])
	}
}

func TestSearchStopsAtLimit(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, 5, &calls)
	defer srv.Close()

	client := New(fetch.New(nil, fetch.Options{}), nil, "token")
	client.APIURL = srv.URL

	vacancies, err := client.Search(context.Background(), &SearchParams{Text: "analyst"}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vacancies.Len() != 3 {
		t.Fatalf("expected 3 vacancies, got %d", vacancies.Len())
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 page requests, got %d", calls.Load())
	}
}
