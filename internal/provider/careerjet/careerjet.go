package careerjet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/xzayogn/jobchat/internal/job"
	"github.com/xzayogn/jobchat/internal/logger"
	"github.com/xzayogn/jobchat/internal/provider"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "http://public.api.careerjet.net/search"
	defaultLocale  = "en_US"
)

// Config holds the static Careerjet settings fixed at construction. The
// public API requires an affiliate id plus the calling user's ip and agent.
type Config struct {
	AffID    string
	BaseURL  string
	Locale   string
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
	if cfg.Locale == "" {
		cfg.Locale = defaultLocale
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 6
	}
	return &Client{
		cfg:     cfg,
		hc:      provider.NewHTTPClient(),
		limiter: limiter,
		log:     logger.WithProvider(log, job.SourceCareerjet),
	}
}

func (c *Client) Name() string { return job.SourceCareerjet }

type careerjetJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Locations   string `json:"locations"`
	URL         string `json:"url"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Search queries the Careerjet public search API. Careerjet reports
// listing locations under "locations" and the posting date under "date".
func (c *Client) Search(ctx context.Context, keywords, location, _ string) ([]job.Listing, error) {
	q := url.Values{}
	q.Set("keywords", keywords)
	q.Set("location", location)
	q.Set("affid", c.cfg.AffID)
	q.Set("locale_code", c.cfg.Locale)
	q.Set("user_ip", "11.22.33.44")
	q.Set("user_agent", provider.UserAgent)
	q.Set("pagesize", strconv.Itoa(c.cfg.PageSize))

	endpoint := c.cfg.BaseURL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
		return nil, err
	}

	c.log.Debug("careerjet search request", zap.String("keywords", keywords), zap.String("location", location))

	resp, err := provider.Do(c.hc, req)
	if err != nil {
		return nil, fmt.Errorf("careerjet search: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Type string         `json:"type"`
		Jobs []careerjetJob `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("careerjet decode: %w", err)
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
		loc := strings.TrimSpace(item.Locations)
		if loc == "" {
			loc = job.DefaultLocation
		}
		posted := strings.TrimSpace(item.Date)
		if posted == "" {
			posted = provider.TodayISO()
		}

		listings = append(listings, job.Listing{
			Title:       title,
			Company:     company,
			Location:    loc,
			URL:         item.URL,
			PostedDate:  posted,
			Source:      job.SourceCareerjet,
			Description: item.Description,
		})
	}

	c.log.Debug("careerjet search done", zap.Int("returned", len(listings)))

	return listings, nil
}
