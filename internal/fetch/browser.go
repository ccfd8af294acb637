// internal/fetch/browser.go
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog/log"
)

// BrowserOptions configures a BrowserFetcher.
type BrowserOptions struct {
	UserAgent  string
	Proxy      string
	ChromePath string
	Headless   bool
	// Settle is how long to let scripts run after navigation.
	Settle time.Duration
}

// BrowserFetcher renders pages in headless Chrome via chromedp. It is used
// for category pages whose product grid is built client-side.
type BrowserFetcher struct {
	limiter ratelimit.RateLimiter
	opts    BrowserOptions
}

// NewBrowserFetcher creates a BrowserFetcher. Chrome is started per fetch.
func NewBrowserFetcher(lim ratelimit.RateLimiter, opts BrowserOptions) *BrowserFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &BrowserFetcher{limiter: lim, opts: opts}
}

// Name returns the name of this fetcher
func (b *BrowserFetcher) Name() string {
	return "BrowserFetcher"
}

// Fetch navigates to req.URL and returns the rendered document.
func (b *BrowserFetcher) Fetch(ctx context.Context, req models.FetchRequest) (*models.Page, error) {
	start := time.Now()

	timeout := req.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, req.URL); err != nil {
			return nil, newFetchError(req.URL, 0, fmt.Errorf("rate limiter: %w", err))
		}
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent(b.opts.UserAgent),
	}
	if path := FindChrome(b.opts.ChromePath); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	if b.opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(b.opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var statusCode int64
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if ev, ok := ev.(*network.EventResponseReceived); ok && ev.Response.URL == req.URL {
			statusCode = ev.Response.Status
		}
	})

	headers := network.Headers{}
	for k, v := range req.Headers {
		headers[k] = v
	}

	var htmlContent string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(req.URL),
		chromedp.Sleep(b.opts.Settle),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newFetchError(req.URL, 0, fmt.Errorf("render timed out after %s: %w", timeout, err))
		}
		return nil, newFetchError(req.URL, 0, fmt.Errorf("chromedp execution failed: %w", err))
	}
	if statusCode != 0 && (statusCode < 200 || statusCode > 299) {
		return nil, newFetchError(req.URL, int(statusCode), nil)
	}

	responseTime := time.Since(start).Milliseconds()
	log.Debug().
		Str("url", req.URL).
		Int64("status", statusCode).
		Int64("response_time_ms", responseTime).
		Msg("Render completed")

	return &models.Page{
		URL:          req.URL,
		StatusCode:   int(statusCode),
		HTML:         htmlContent,
		FetchedAt:    time.Now(),
		ResponseTime: responseTime,
	}, nil
}
