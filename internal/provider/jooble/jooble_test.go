package jooble

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
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/secret-key" {
			t.Fatalf("expected api key in path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"totalCount": 2,
			"jobs": [
				{"title": "Go Developer", "company": "Acme", "location": "Berlin", "link": "https://example.com/1", "updated": "2024-03-01"},
				{"title": "", "company": "", "location": "", "snippet": "some text"}
			]
		}`))
	}))
	defer srv.Close()

	client := New(Config{APIKey: "secret-key", BaseURL: srv.URL}, nil, zap.NewNop())

	listings, err := client.Search(context.Background(), "go developer", "Berlin", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.Title != "Go Developer" || first.Company != "Acme" || first.URL != "https://example.com/1" {
		t.Fatalf("unexpected first listing: %+v", first)
	}
	if first.PostedDate != "2024-03-01" {
		t.Fatalf("expected updated date to be used, got %q", first.PostedDate)
	}
	if first.Source != job.SourceJooble {
		t.Fatalf("unexpected source: %q", first.Source)
	}

	second := listings[1]
	if second.Title != "Unknown Title" || second.Company != "Unknown Company" {
		t.Fatalf("expected defaults for empty fields: %+v", second)
	}
	if second.Location != job.DefaultLocation {
		t.Fatalf("expected default location, got %q", second.Location)
	}
	if second.PostedDate == "" {
		t.Fatalf("expected posted date default")
	}
}

func TestSearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(Config{APIKey: "k", BaseURL: srv.URL}, nil, zap.NewNop())

	if _, err := client.Search(context.Background(), "go", "", ""); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestSearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // immediately, so the address refuses connections

	client := New(Config{APIKey: "k", BaseURL: srv.URL}, nil, zap.NewNop())

	if _, err := client.Search(context.Background(), "go", "", ""); err == nil {
		t.Fatalf("expected network error")
	}
}

func TestSearchRespectsPageSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"jobs": [{"title": "a"}, {"title": "b"}, {"title": "c"}]}`))
	}))
	defer srv.Close()

	client := New(Config{APIKey: "k", BaseURL: srv.URL, PageSize: 2}, nil, zap.NewNop())

	listings, err := client.Search(context.Background(), "go", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected page size cap of 2, got %d", len(listings))
	}
}
