package aggregator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xzayogn/jobchat/internal/job"
	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPageSize is the number of listings returned per request.
	DefaultPageSize = 6
	// DefaultMaxSources caps how many providers may contribute to one pass.
	DefaultMaxSources = 3
)

// dateLayouts are tried in order when sorting listings by posting date.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
}

// Result is the outcome of one fan-out pass. TotalCount is the
// pre-truncation sum over contributing providers; Listings is sorted by
// posting date, newest first, and truncated to the requested page size.
type Result struct {
	TotalCount  int
	Listings    []job.Listing
	SourcesUsed []string
	Errors      []string
}

// Aggregator fans one query out to an ordered list of providers. The order
// is a priority list: when more providers succeed than maxSources allows,
// the earlier ones win.
type Aggregator struct {
	providers []provider.Client
	timeout   time.Duration
	log       *zap.Logger
}

func New(providers []provider.Client, timeout time.Duration, log *zap.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = provider.DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Aggregator{
		providers: providers,
		timeout:   timeout,
		log:       log,
	}
}

type outcome struct {
	listings []job.Listing
	err      error
}

// Aggregate queries the providers concurrently, each under its own timeout,
// waits for every call, and merges the results in provider priority order.
// A failing provider contributes a single error entry and never aborts the
// pass.
func (a *Aggregator) Aggregate(ctx context.Context, query, location, jobType string, maxSources, pageSize int) Result {
	if maxSources <= 0 {
		maxSources = DefaultMaxSources
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	outcomes := make([]outcome, len(a.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			listings, err := p.Search(cctx, query, location, jobType)
			outcomes[i] = outcome{listings: listings, err: err}
			// Provider failures are data, not errors: returning one here
			// would cancel the sibling calls.
			return nil
		})
	}
	_ = g.Wait()

	var result Result
	counted := 0
	for i, p := range a.providers {
		if counted >= maxSources {
			break
		}

		o := outcomes[i]
		if o.err != nil {
			msg := fmt.Sprintf("%s search error: %v", capitalize(p.Name()), o.err)
			a.log.Error("provider search failed",
				zap.String(logger.FieldProvider, p.Name()),
				zap.Error(o.err),
			)
			result.Errors = append(result.Errors, msg)
			continue
		}

		if len(o.listings) == 0 {
			continue
		}

		result.Listings = append(result.Listings, o.listings...)
		result.SourcesUsed = append(result.SourcesUsed, p.Name())
		result.TotalCount += len(o.listings)
		counted++
	}

	// Stable sort keeps provider priority order for equal dates and makes
	// repeated passes over identical inputs deterministic.
	sort.SliceStable(result.Listings, func(i, j int) bool {
		return parseDate(result.Listings[i].PostedDate).After(parseDate(result.Listings[j].PostedDate))
	})

	if len(result.Listings) > pageSize {
		result.Listings = result.Listings[:pageSize]
	}

	a.log.Info("aggregation pass done",
		zap.Int("total", result.TotalCount),
		zap.Strings("sources", result.SourcesUsed),
		zap.Int("errors", len(result.Errors)),
	)

	return result
}

// parseDate tries the known posting-date formats in priority order.
// Unparsable or missing dates resolve to now, which ranks them as
// most recent.
func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now()
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}

	return time.Now()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
