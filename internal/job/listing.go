package job

import (
	"encoding/json"
	"os"
)

// Known listing sources. Providers stamp their identifier on every listing
// they return; the web fallback and general search use their own markers.
const (
	SourceJooble     = "jooble"
	SourceCareerjet  = "careerjet"
	SourceWeb3Career = "web3career"
	SourceWeb        = "web"
	SourceDuckDuckGo = "duckduckgo"
)

// DefaultLocation is used when a provider response carries no location.
const DefaultLocation = "Not Specified"

// Listing is a single discovered job opening. None of the fields are
// required to be non-empty at construction; usefulness is judged later by
// the workflow validator.
type Listing struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url,omitempty"`
	PostedDate  string `json:"posted_date"`
	Source      string `json:"source"`
	JobType     string `json:"job_type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Listings is an ordered collection of listings.
type Listings struct {
	Items []Listing
}

func (l *Listings) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// Sources returns the distinct listing sources in first-seen order.
func (l *Listings) Sources() []string {
	if l == nil {
		return nil
	}

	seen := make(map[string]bool, len(l.Items))
	sources := make([]string, 0)
	for _, item := range l.Items {
		if item.Source == "" || seen[item.Source] {
			continue
		}
		seen[item.Source] = true
		sources = append(sources, item.Source)
	}

	return sources
}

func (l *Listings) Append(items ...Listing) {
	l.Items = append(l.Items, items...)
}

// DumpToTmpFile writes the listings as indented JSON to a temporary file
// and returns its name.
func (l *Listings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "listings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}
