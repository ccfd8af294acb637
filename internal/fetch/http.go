// internal/fetch/http.go
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds a single page read.
const maxBodyBytes = 16 << 20

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	UserAgent        string
	Headers          map[string]string
	Proxy            string
	CloudflareBypass bool
}

// HTTPFetcher fetches pages with plain HTTP requests
type HTTPFetcher struct {
	client    *http.Client
	limiter   ratelimit.RateLimiter
	userAgent string
	headers   map[string]string
}

// NewHTTPFetcher creates an HTTPFetcher. A nil limiter disables throttling.
func NewHTTPFetcher(lim ratelimit.RateLimiter, opts HTTPOptions) (*HTTPFetcher, error) {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	var rt http.RoundTripper = transport
	if opts.CloudflareBypass {
		rt = cloudflarebp.AddCloudFlareByPass(transport)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &HTTPFetcher{
		client:    &http.Client{Transport: rt},
		limiter:   lim,
		userAgent: ua,
		headers:   opts.Headers,
	}, nil
}

// Name returns the name of this fetcher
func (f *HTTPFetcher) Name() string {
	return "HTTPFetcher"
}

// Fetch retrieves a page. The request timeout applies to the whole exchange,
// body included; a zero timeout leaves only ctx in control.
func (f *HTTPFetcher) Fetch(ctx context.Context, opts models.FetchRequest) (*models.Page, error) {
	start := time.Now()

	log.Debug().
		Str("url", opts.URL).
		Str("fetcher", f.Name()).
		Dur("timeout", opts.Timeout).
		Msg("Starting fetch")

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, newFetchError(opts.URL, 0, fmt.Errorf("rate limiter: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, newFetchError(opts.URL, 0, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, newFetchError(opts.URL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newFetchError(opts.URL, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, newFetchError(opts.URL, resp.StatusCode, fmt.Errorf("failed to read body: %w", err))
	}

	responseTime := time.Since(start).Milliseconds()

	log.Debug().
		Str("url", opts.URL).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", responseTime).
		Int("bytes", len(body)).
		Msg("Fetch completed")

	return &models.Page{
		URL:          opts.URL,
		StatusCode:   resp.StatusCode,
		HTML:         string(body),
		FetchedAt:    time.Now(),
		ResponseTime: responseTime,
	}, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() {
	f.client.CloseIdleConnections()
}
