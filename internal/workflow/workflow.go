// Package workflow drives one chat query through classification, provider
// aggregation, validation and the web-search fallback.
package workflow

import (
	"context"
	"regexp"
	"strings"

	"github.com/xzayogn/jobchat/internal/aggregator"
	"github.com/xzayogn/jobchat/internal/job"
	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/provider"
	"github.com/xzayogn/jobchat/internal/query"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	msgRecommendations = "Here are some job recommendations:"
	msgNoValidListings = "No valid job listings found"
	msgNothingFound    = "Sorry, I couldn't find any relevant information."
	msgSearchFailed    = "I encountered an error while searching. Please try again."
	msgInternalError   = "Something went wrong while processing your request. Please try again."

	maxFallbackDescription = 500
)

// step is one node of the workflow state machine.
type step int

const (
	stepClassify step = iota
	stepFetchProviders
	stepValidate
	stepWebSearchFallback
	stepGeneralSearch
	stepDone
)

func (s step) String() string {
	switch s {
	case stepClassify:
		return "classify"
	case stepFetchProviders:
		return "fetch_providers"
	case stepValidate:
		return "validate"
	case stepWebSearchFallback:
		return "web_search_fallback"
	case stepGeneralSearch:
		return "general_search"
	case stepDone:
		return "done"
	}
	return "unknown"
}

// Metadata summarizes a successful aggregation pass.
type Metadata struct {
	TotalJobs int      `json:"total_jobs"`
	Sources   []string `json:"sources"`
}

// Response is the final payload of one workflow run.
type Response struct {
	Status     string        `json:"status"`
	Message    string        `json:"message"`
	Data       []job.Listing `json:"data,omitempty"`
	Source     string        `json:"source,omitempty"`
	IsJobQuery bool          `json:"is_job_query"`
	Metadata   *Metadata     `json:"metadata,omitempty"`
}

// state is the mutable context of one in-flight request. Each run builds
// its own instance; nothing here is shared between requests.
type state struct {
	sessionID    string
	query        string
	pageSize     int
	intent       query.Intent
	data         []job.Listing
	sourcesUsed  []string
	apiExhausted bool
	fallbackRan  bool
	response     Response
}

// Classifier decides whether a query is job-related and extracts search
// parameters from it.
type Classifier interface {
	Classify(ctx context.Context, text string) query.Intent
}

// Aggregator fans a refined query out to the configured job providers.
type Aggregator interface {
	Aggregate(ctx context.Context, query, location, jobType string, maxSources, pageSize int) aggregator.Result
}

// WebSearcher is the general web-search capability used for both the
// job-posting fallback and non-job queries.
type WebSearcher interface {
	Name() string
	SearchText(ctx context.Context, query string) (string, error)
}

type Workflow struct {
	classifier Classifier
	agg        Aggregator
	web        WebSearcher
	maxSources int
	log        *zap.Logger
}

func New(classifier Classifier, agg Aggregator, web WebSearcher, maxSources int, log *zap.Logger) *Workflow {
	if maxSources <= 0 {
		maxSources = aggregator.DefaultMaxSources
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Workflow{
		classifier: classifier,
		agg:        agg,
		web:        web,
		maxSources: maxSources,
		log:        log,
	}
}

// Run executes the state machine for one query and always returns a
// structured response. Unexpected panics inside a step are recovered at
// this boundary and reported as a generic error.
func (w *Workflow) Run(ctx context.Context, sessionID, text string, pageSize int) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("workflow panicked",
				zap.String(logger.FieldSession, sessionID),
				zap.Any("panic", r),
			)
			resp = Response{Status: StatusError, Message: msgInternalError}
		}
	}()

	if pageSize <= 0 {
		pageSize = aggregator.DefaultPageSize
	}

	st := &state{
		sessionID: sessionID,
		query:     text,
		pageSize:  pageSize,
	}

	for current := stepClassify; current != stepDone; {
		next := w.advance(ctx, st, current)
		w.log.Debug("workflow step done",
			zap.String(logger.FieldSession, sessionID),
			zap.Stringer("step", current),
			zap.Stringer("next", next),
		)
		current = next
	}

	return st.response
}

// advance executes one step and returns the next one. The transition
// table is fixed; the only revisited step is Validate, reached again
// after a single fallback pass.
func (w *Workflow) advance(ctx context.Context, st *state, current step) step {
	switch current {
	case stepClassify:
		st.intent = w.classifier.Classify(ctx, st.query)
		if !st.intent.IsJobRelated {
			return stepGeneralSearch
		}
		return stepFetchProviders

	case stepFetchProviders:
		return w.fetchProviders(ctx, st)

	case stepValidate:
		return w.validate(st)

	case stepWebSearchFallback:
		return w.webSearchFallback(ctx, st)

	case stepGeneralSearch:
		return w.generalSearch(ctx, st)
	}

	return stepDone
}

func (w *Workflow) fetchProviders(ctx context.Context, st *state) step {
	keywords := st.intent.RefinedQuery
	if keywords == "" {
		keywords = st.query
	}

	res := w.agg.Aggregate(ctx, keywords, st.intent.Location, "", w.maxSources, st.pageSize)

	st.data = res.Listings
	st.sourcesUsed = res.SourcesUsed
	st.apiExhausted = len(res.Listings) == 0

	for _, e := range res.Errors {
		w.log.Warn("provider error during aggregation",
			zap.String(logger.FieldSession, st.sessionID),
			zap.String("error", e),
		)
	}

	return stepValidate
}

func (w *Workflow) validate(st *state) step {
	if validListings(st.data) {
		st.response = Response{
			Status:     StatusSuccess,
			Message:    msgRecommendations,
			Data:       st.data,
			Source:     strings.Join(st.sourcesUsed, ", "),
			IsJobQuery: true,
			// TotalJobs counts what the user actually receives, not the
			// providers' pre-truncation totals.
			Metadata: &Metadata{
				TotalJobs: len(st.data),
				Sources:   st.sourcesUsed,
			},
		}
		return stepDone
	}

	if st.apiExhausted && !st.fallbackRan {
		return stepWebSearchFallback
	}

	st.response = Response{
		Status:     StatusError,
		Message:    msgNoValidListings,
		IsJobQuery: true,
	}
	return stepDone
}

func (w *Workflow) webSearchFallback(ctx context.Context, st *state) step {
	st.fallbackRan = true

	searchQuery := "job posting " + st.query
	text, err := w.web.SearchText(ctx, searchQuery)
	if err != nil {
		w.log.Warn("fallback web search failed",
			zap.String(logger.FieldSession, st.sessionID),
			zap.Error(err),
		)
		return stepValidate
	}

	listings := parseWebListings(text)
	if len(listings) > 0 {
		st.data = append(st.data, listings...)
		st.sourcesUsed = append(st.sourcesUsed, job.SourceWeb)
	}

	return stepValidate
}

func (w *Workflow) generalSearch(ctx context.Context, st *state) step {
	text, err := w.web.SearchText(ctx, st.query)
	if err != nil {
		w.log.Warn("general web search failed",
			zap.String(logger.FieldSession, st.sessionID),
			zap.Error(err),
		)
		st.response = Response{
			Status:  StatusError,
			Message: msgSearchFailed,
			Source:  w.web.Name(),
		}
		return stepDone
	}

	if strings.TrimSpace(text) == "" {
		st.response = Response{
			Status:  StatusError,
			Message: msgNothingFound,
			Source:  w.web.Name(),
		}
		return stepDone
	}

	st.response = Response{
		Status:  StatusSuccess,
		Message: text,
		Source:  w.web.Name(),
	}
	return stepDone
}

// validListings is the data-quality gate between aggregation and the
// final response. One listing with both a title and a company is enough.
func validListings(listings []job.Listing) bool {
	for _, l := range listings {
		if l.Title != "" && l.Company != "" {
			return true
		}
	}
	return false
}

var (
	companyPattern  = regexp.MustCompile(`(?i)\bat\s+([^|.,\n-]+)`)
	locationPattern = regexp.MustCompile(`(?i)\bin\s+([^|.,\n-]+)`)
)

// parseWebListings turns free-text search results, one result per line,
// into best-effort listings. Lines with no recognizable title are
// dropped.
func parseWebListings(text string) []job.Listing {
	var listings []job.Listing

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		title := line
		if i := strings.Index(title, " - "); i >= 0 {
			title = title[:i]
		}
		if i := strings.Index(title, " at "); i >= 0 {
			title = title[:i]
		} else if i := strings.Index(title, " in "); i >= 0 {
			title = title[:i]
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		company := "Unknown Company"
		if m := companyPattern.FindStringSubmatch(line); m != nil {
			company = strings.TrimSpace(m[1])
		}

		location := job.DefaultLocation
		if m := locationPattern.FindStringSubmatch(line); m != nil {
			location = strings.TrimSpace(m[1])
		}

		description := line
		if len(description) > maxFallbackDescription {
			description = description[:maxFallbackDescription]
		}

		listings = append(listings, job.Listing{
			Title:       title,
			Company:     company,
			Location:    location,
			PostedDate:  provider.TodayISO(),
			Source:      job.SourceWeb,
			Description: description,
		})
	}

	return listings
}
