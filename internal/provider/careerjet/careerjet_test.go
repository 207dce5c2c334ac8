package careerjet

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
		if q.Get("affid") != "aff-1" {
			t.Fatalf("expected affid, got %q", q.Get("affid"))
		}
		if q.Get("locale_code") != "en_US" {
			t.Fatalf("expected default locale, got %q", q.Get("locale_code"))
		}
		if q.Get("keywords") != "python developer" {
			t.Fatalf("unexpected keywords: %q", q.Get("keywords"))
		}

		w.Write([]byte(`{
			"type": "JOBS",
			"jobs": [
				{"title": "Python Developer", "company": "Initech", "locations": "Berlin, Germany", "url": "https://example.com/j", "date": "2024-02-20", "description": "desc"},
				{"title": "No Company Role", "company": "", "locations": ""}
			]
		}`))
	}))
	defer srv.Close()

	client := New(Config{AffID: "aff-1", BaseURL: srv.URL}, nil, zap.NewNop())

	listings, err := client.Search(context.Background(), "python developer", "Berlin", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.Location != "Berlin, Germany" {
		t.Fatalf("expected locations field to map, got %q", first.Location)
	}
	if first.PostedDate != "2024-02-20" || first.Source != job.SourceCareerjet {
		t.Fatalf("unexpected listing: %+v", first)
	}

	if listings[1].Company != "Unknown Company" || listings[1].Location != job.DefaultLocation {
		t.Fatalf("expected defaults, got %+v", listings[1])
	}
}

func TestSearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(Config{AffID: "aff-1", BaseURL: srv.URL}, nil, zap.NewNop())

	if _, err := client.Search(context.Background(), "python", "", ""); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestSearchMissingJobsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(Config{AffID: "aff-1", BaseURL: srv.URL}, nil, zap.NewNop())

	listings, err := client.Search(context.Background(), "python", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
}
