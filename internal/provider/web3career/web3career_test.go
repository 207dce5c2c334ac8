package web3career

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xzayogn/jobchat/internal/job"
	"go.uber.org/zap"
)

func TestSearchMapsListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("token") != "tok" {
			t.Fatalf("expected token param, got %q", q.Get("token"))
		}
		if q.Get("location") != "Remote" {
			t.Fatalf("expected location param, got %q", q.Get("location"))
		}

		w.Write([]byte(`{
			"jobs": [
				{"title": "Solidity Engineer", "company": "ChainCo", "location": "Remote", "url": "https://example.com/s", "posted_date": "2024-01-15", "job_type": "full-time"},
				{"title": "Backend Engineer"}
			]
		}`))
	}))
	defer srv.Close()

	client := New(Config{APIKey: "tok", BaseURL: srv.URL}, nil, zap.NewNop())

	listings, err := client.Search(context.Background(), "solidity", "Remote", "contract")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	if listings[0].JobType != "full-time" || listings[0].Source != job.SourceWeb3Career {
		t.Fatalf("unexpected listing: %+v", listings[0])
	}

	// Missing job type falls back to the caller's extracted one.
	if listings[1].JobType != "contract" {
		t.Fatalf("expected fallback job type, got %q", listings[1].JobType)
	}
	if listings[1].Company != "Unknown Company" {
		t.Fatalf("expected company default, got %q", listings[1].Company)
	}
}

func TestSearchOmitsEmptyLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["location"]; ok {
			t.Fatalf("expected location param to be omitted")
		}
		w.Write([]byte(`{"jobs": []}`))
	}))
	defer srv.Close()

	client := New(Config{APIKey: "tok", BaseURL: srv.URL}, nil, zap.NewNop())

	if _, err := client.Search(context.Background(), "rust", "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := New(Config{APIKey: "tok", BaseURL: srv.URL}, nil, zap.NewNop())

	if _, err := client.Search(context.Background(), "rust", "", ""); err == nil {
		t.Fatalf("expected decode error")
	}
}
