package jooble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xzayogn/jobchat/internal/job"
	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/provider"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://jooble.org/api"

// Config holds the static Jooble settings fixed at construction.
type Config struct {
	APIKey  string
	BaseURL string
	// PageSize is the number of results requested per search.
	PageSize int
}

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
	if cfg.PageSize <= 0 {
		cfg.PageSize = 6
	}
	return &Client{
		cfg:     cfg,
		hc:      provider.NewHTTPClient(),
		limiter: limiter,
		log:     logger.WithProvider(log, job.SourceJooble),
	}
}

func (c *Client) Name() string { return job.SourceJooble }

type searchRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
	Page     int    `json:"page"`
}

type joobleJob struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	URL        string `json:"url"`
	Link       string `json:"link"`
	PostedDate string `json:"posted_date"`
	Updated    string `json:"updated"`
	Snippet    string `json:"snippet"`
}

// Search posts the query to the Jooble API. The endpoint embeds the API key
// in the path and returns {"jobs": [...]} with loosely typed records, which
// are decoded field-by-field with listing defaults applied.
func (c *Client) Search(ctx context.Context, keywords, location, _ string) ([]job.Listing, error) {
	endpoint := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.APIKey)

	payload, err := json.Marshal(searchRequest{
		Keywords: keywords,
		Location: location,
		Page:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("jooble marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
		return nil, err
	}

	c.log.Debug("jooble search request", zap.String("keywords", keywords), zap.String("location", location))

	resp, err := provider.Do(c.hc, req)
	if err != nil {
		return nil, fmt.Errorf("jooble search: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		TotalCount int   `json:"totalCount"`
		Jobs       []any `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("jooble decode: %w", err)
	}

	// Records come back as generic maps; decode them the same way the rest
	// of the codebase handles loosely typed API items.
	var items []joobleJob
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &items,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("jooble build decoder: %w", err)
	}
	if err := decoder.Decode(body.Jobs); err != nil {
		return nil, fmt.Errorf("jooble decode jobs: %w", err)
	}

	listings := make([]job.Listing, 0, len(items))
	for i, item := range items {
		if i >= c.cfg.PageSize {
			break
		}
		listings = append(listings, c.toListing(item))
	}

	c.log.Debug("jooble search done", zap.Int("total", body.TotalCount), zap.Int("returned", len(listings)))

	return listings, nil
}

func (c *Client) toListing(item joobleJob) job.Listing {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Unknown Title"
	}

	company := strings.TrimSpace(item.Company)
	if company == "" {
		company = "Unknown Company"
	}

	location := strings.TrimSpace(item.Location)
	if location == "" {
		location = job.DefaultLocation
	}

	url := item.URL
	if url == "" {
		url = item.Link
	}

	posted := item.PostedDate
	if posted == "" {
		posted = item.Updated
	}
	if posted == "" {
		posted = provider.TodayISO()
	}

	return job.Listing{
		Title:       title,
		Company:     company,
		Location:    location,
		URL:         url,
		PostedDate:  posted,
		Source:      job.SourceJooble,
		Description: item.Snippet,
	}
}
