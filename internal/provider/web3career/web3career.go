package web3career

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/xzayogn/jobchat/internal/job"
	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/provider"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://web3.career/api/v1"

// Config holds the static Web3Career settings fixed at construction.
type Config struct {
	APIKey  string
	BaseURL string
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
	return &Client{
		cfg:     cfg,
		hc:      provider.NewHTTPClient(),
		limiter: limiter,
		log:     logger.WithProvider(log, job.SourceWeb3Career),
	}
}

func (c *Client) Name() string { return job.SourceWeb3Career }

type web3Job struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	PostedDate  string `json:"posted_date"`
	JobType     string `json:"job_type"`
	Description string `json:"description"`
}

// Search queries the Web3Career API. The token travels as a query
// parameter; job type is forwarded when the caller extracted one.
func (c *Client) Search(ctx context.Context, keywords, location, jobType string) ([]job.Listing, error) {
	q := url.Values{}
	q.Set("keywords", keywords)
	q.Set("page", "1")
	q.Set("token", c.cfg.APIKey)
	if location != "" {
		q.Set("location", location)
	}

	endpoint := c.cfg.BaseURL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
		return nil, err
	}

	c.log.Debug("web3career search request", zap.String("keywords", keywords), zap.String("location", location))

	resp, err := provider.Do(c.hc, req)
	if err != nil {
		return nil, fmt.Errorf("web3career search: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Jobs []web3Job `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("web3career decode: %w", err)
	}

	listings := make([]job.Listing, 0, len(body.Jobs))
	for _, item := range body.Jobs {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Unknown Title"
		}
		company := strings.TrimSpace(item.Company)
		if company == "" {
			company = "Unknown Company"
		}
		loc := strings.TrimSpace(item.Location)
		if loc == "" {
			loc = job.DefaultLocation
		}
		posted := strings.TrimSpace(item.PostedDate)
		if posted == "" {
			posted = provider.TodayISO()
		}
		kind := item.JobType
		if kind == "" {
			kind = jobType
		}

		listings = append(listings, job.Listing{
			Title:       title,
			Company:     company,
			Location:    loc,
			URL:         item.URL,
			PostedDate:  posted,
			Source:      job.SourceWeb3Career,
			JobType:     kind,
			Description: item.Description,
		})
	}

	c.log.Debug("web3career search done", zap.Int("returned", len(listings)))

	return listings, nil
}
