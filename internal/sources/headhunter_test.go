package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobdigest/job-agent/internal/fetch"
	"github.com/jobdigest/job-agent/internal/headhunter"
	"github.com/jobdigest/job-agent/internal/posting"
)

func TestHeadHunterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		text := r.URL.Query().Get("text")
		if text == "broken" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"items":[
			{"id":"1","name":"%[1]s lead","alternate_url":"https://hh.ru/vacancy/1","employer":{"name":"Acme"},"area":{"name":"Moscow"}},
			{"id":"2","name":"%[1]s archived","alternate_url":"https://hh.ru/vacancy/2","archived":true}
		],"found":2,"pages":1,"page":0,"per_page":100}`, text)
	}))
	defer srv.Close()

	client := headhunter.New(fetch.New(nil, fetch.Options{}), nil, "")
	client.APIURL = srv.URL

	src := NewHeadHunter(client, nil, []headhunter.SearchParams{
		{Text: "broken"},
		{Text: "analyst"},
		{Text: "analyst"},
	})

	postings, err := src.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %+v", postings)
	}
	p := postings[0]
	if p.Title != "analyst lead" || p.Company != "Acme" || p.Platform != posting.PlatformHeadHunter {
		t.Fatalf("unexpected posting %+v", p)
	}
	if src.Name() != posting.PlatformHeadHunter {
		t.Fatalf("unexpected name %q", src.Name())
	}
}

func TestHeadHunterFetchWithoutSearches(t *testing.T) {
	src := NewHeadHunter(headhunter.New(fetch.New(nil, fetch.Options{}), nil, ""), nil, nil)

	postings, err := src.Fetch(context.Background(), 10)
	if err != nil || len(postings) != 0 {
		t.Fatalf("expected nothing, got %d, %v", len(postings), err)
	}
}
