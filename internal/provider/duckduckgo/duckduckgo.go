package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xzayogn/jobchat/internal/job"
	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/provider"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://html.duckduckgo.com/html/"

// Config holds the static DuckDuckGo settings fixed at construction.
type Config struct {
	BaseURL string
	// MaxResults caps how many results are extracted from one page.
	MaxResults int
}

// Client scrapes the no-javascript DuckDuckGo results page. It backs both
// the general search path and the job web-search fallback, which parse the
// returned text differently.
type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *provider.HostLimiter
	log     *zap.Logger
}

func New(cfg Config, limiter *provider.HostLimiter, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	return &Client{
		cfg:     cfg,
		hc:      provider.NewHTTPClient(),
		limiter: limiter,
		log:     logger.WithProvider(log, job.SourceDuckDuckGo),
	}
}

func (c *Client) Name() string { return job.SourceDuckDuckGo }

// SearchText runs the query and returns one line of text per result,
// "title - snippet", newline separated. An empty string means the page had
// no organic results.
func (c *Client) SearchText(ctx context.Context, query string) (string, error) {
	endpoint := c.cfg.BaseURL + "?" + url.Values{"q": []string{query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
		return "", err
	}

	c.log.Debug("duckduckgo search request", zap.String("query", query))

	resp, err := provider.Do(c.hc, req)
	if err != nil {
		return "", fmt.Errorf("duckduckgo search: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("duckduckgo parse html: %w", err)
	}

	var lines []string
	doc.Find(".result").EachWithBreak(func(_ int, result *goquery.Selection) bool {
		title := cleanText(result.Find(".result__a").First().Text())
		snippet := cleanText(result.Find(".result__snippet").First().Text())

		switch {
		case title == "" && snippet == "":
			return true
		case title == "":
			lines = append(lines, snippet)
		case snippet == "":
			lines = append(lines, title)
		default:
			lines = append(lines, title+" - "+snippet)
		}

		return len(lines) < c.cfg.MaxResults
	})

	c.log.Debug("duckduckgo search done", zap.Int("results", len(lines)))

	return strings.Join(lines, "\n"), nil
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
