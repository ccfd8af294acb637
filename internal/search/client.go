// Package search queries the web search API used to enrich product rows.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the Custom Search JSON API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// ErrSearch is matched by every error the client returns.
var ErrSearch = errors.New("search failed")

// SearchError describes a failed query.
type SearchError struct {
	Query      string
	StatusCode int
	Message    string
	Underlying error
}

func (e *SearchError) Error() string {
	switch {
	case e.Underlying != nil:
		return fmt.Sprintf("search %q: %v", e.Query, e.Underlying)
	case e.StatusCode != 0:
		return fmt.Sprintf("search %q: status %d: %s", e.Query, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("search %q: %s", e.Query, e.Message)
	}
}

func (e *SearchError) Unwrap() error { return e.Underlying }

func (e *SearchError) Is(target error) bool { return target == ErrSearch }

// Searcher runs a single web search.
type Searcher interface {
	Search(ctx context.Context, query string) (*models.SearchResponse, error)
}

// Client calls the search API over HTTP.
type Client struct {
	http     *resty.Client
	baseURL  string
	apiKey   string
	engineID string
	limiter  ratelimit.RateLimiter
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL   string
	APIKey    string
	EngineID  string
	Timeout   time.Duration
	UserAgent string
	// Limiter is optional; nil means no client-side throttling.
	Limiter ratelimit.RateLimiter
}

// NewClient creates a search client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("search API key is required")
	}
	if opts.EngineID == "" {
		return nil, errors.New("search engine ID is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Client{
		http:     client,
		baseURL:  opts.BaseURL,
		apiKey:   opts.APIKey,
		engineID: opts.EngineID,
		limiter:  opts.Limiter,
	}, nil
}

type apiResponse struct {
	Items []models.SearchResult `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Search runs query once. There are no retries.
func (c *Client) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
			return nil, &SearchError{Query: query, Underlying: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key": c.apiKey,
			"cx":  c.engineID,
			"q":   query,
		}).
		Get(c.baseURL)
	if err != nil {
		return nil, &SearchError{Query: query, Underlying: err}
	}

	var body apiResponse
	decodeErr := json.Unmarshal(resp.Body(), &body)

	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if decodeErr == nil && body.Error != nil {
			msg = body.Error.Message
		}
		return nil, &SearchError{Query: query, StatusCode: resp.StatusCode(), Message: msg}
	}
	if decodeErr != nil {
		return nil, &SearchError{Query: query, StatusCode: resp.StatusCode(), Underlying: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if body.Error != nil {
		return nil, &SearchError{Query: query, StatusCode: body.Error.Code, Message: body.Error.Message}
	}

	log.Debug().
		Str("query", query).
		Int("results", len(body.Items)).
		Dur("took", time.Since(start)).
		Msg("Search completed")

	return &models.SearchResponse{Query: query, Items: body.Items}, nil
}
