package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jobdigest/job-agent/internal/fetch"
	"github.com/jobdigest/job-agent/internal/posting"
)

const linkedInPage = `<html><body><ul>
<li><div class="base-card job-search-card">
  <a class="base-card__full-link" href="https://in.linkedin.com/jobs/view/business-analyst-at-acme-3812?refId=abc&trackingId=xyz"></a>
  <h3 class="base-search-card__title">
     Business Analyst
  </h3>
  <h4 class="base-search-card__subtitle">Acme Consulting</h4>
  <span class="job-search-card__location">Noida, Uttar Pradesh, India</span>
  <time datetime="2026-10-15">1 day ago</time>
  <p class="job-search-card__snippet">BRD writing and stakeholder management.</p>
</div></li>
<li><div class="base-card">
  <a class="base-card__full-link" href="/jobs/view/product-manager-3813"></a>
  <h3 class="base-search-card__title">Product Manager</h3>
</div></li>
<li><div class="base-card">
  <h3 class="base-search-card__title">No link here</h3>
</div></li>
<li><div class="base-card">
  <a class="base-card__full-link" href="/jobs/view/no-title-1"></a>
</div></li>
</ul></body></html>`

func TestParseLinkedIn(t *testing.T) {
	postings, err := parseLinkedIn([]byte(linkedInPage), "Delhi NCR, India", "https://www.linkedin.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d: %+v", len(postings), postings)
	}

	first := postings[0]
	want := posting.Posting{
		Title:          "Business Analyst",
		Company:        "Acme Consulting",
		Location:       "Noida, Uttar Pradesh, India",
		URL:            "https://in.linkedin.com/jobs/view/business-analyst-at-acme-3812",
		Platform:       posting.PlatformLinkedIn,
		EmploymentType: posting.DefaultEmploymentType,
		Description:    "BRD writing and stakeholder management.",
		PostedDate:     "2026-10-15",
	}
	if first != want {
		t.Fatalf("unexpected first posting:\n%+v\nwant:\n%+v", first, want)
	}

	second := postings[1]
	if second.URL != "https://www.linkedin.com/jobs/view/product-manager-3813" {
		t.Fatalf("expected resolved url, got %q", second.URL)
	}
	if second.Company != UnknownCompany || second.Location != "Delhi NCR, India" {
		t.Fatalf("expected fallbacks, got company %q location %q", second.Company, second.Location)
	}
}

func TestLinkedInFetch(t *testing.T) {
	var searches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searches.Add(1)
		if r.URL.Path != "/jobs/search/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("f_TPR") != "r86400" {
			t.Errorf("expected last-24h filter, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("keywords") == "broken" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(linkedInPage))
	}))
	defer srv.Close()

	src := NewLinkedIn(fetch.New(nil, fetch.Options{}), nil, []Search{
		{Keyword: "broken", Location: "Delhi"},
		{Keyword: "business analyst", Location: "Noida"},
		{Keyword: "business analyst", Location: "Noida"},
	})
	src.BaseURL = srv.URL

	postings, err := src.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The repeated search returns the same URLs, which are dropped.
	if len(postings) != 2 {
		t.Fatalf("expected 2 unique postings, got %d", len(postings))
	}
	if searches.Load() != 3 {
		t.Fatalf("expected 3 searches, got %d", searches.Load())
	}
}

func TestLinkedInFetchStopsAtMax(t *testing.T) {
	var searches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searches.Add(1)
		_, _ = w.Write([]byte(linkedInPage))
	}))
	defer srv.Close()

	src := NewLinkedIn(fetch.New(nil, fetch.Options{}), nil, nil)
	src.BaseURL = srv.URL

	postings, err := src.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 || searches.Load() != 1 {
		t.Fatalf("expected 1 posting from 1 search, got %d from %d", len(postings), searches.Load())
	}
}

func TestLinkedInFetchAllSearchesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	src := NewLinkedIn(fetch.New(nil, fetch.Options{}), nil, []Search{{Keyword: "a"}, {Keyword: "b"}})
	src.BaseURL = srv.URL

	if _, err := src.Fetch(context.Background(), 10); err == nil {
		t.Fatalf("expected error when every search fails")
	}
}
