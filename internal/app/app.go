// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/law-makers/shelf/internal/auth"
	"github.com/law-makers/shelf/internal/cache"
	"github.com/law-makers/shelf/internal/catalog"
	"github.com/law-makers/shelf/internal/config"
	"github.com/law-makers/shelf/internal/enrich"
	"github.com/law-makers/shelf/internal/fetch"
	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/law-makers/shelf/internal/search"
	"github.com/law-makers/shelf/internal/table"
	"github.com/law-makers/shelf/internal/ui"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNoSearchCredentials is returned when enrichment has no API key or
// engine ID to work with.
var ErrNoSearchCredentials = errors.New("search credentials missing: set CSE_ID and CSE_API_KEY or run 'shelf key set'")

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command invocation. Use Close() to release
// resources on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	RateLimiter ratelimit.RateLimiter
	Fetcher     fetch.Fetcher
	Store       table.Store

	keysMu   sync.Mutex
	keys     *auth.KeyStore
	newKeys  func() (*auth.KeyStore, error)
	searchMu sync.Mutex
	searcher search.Searcher
	cache    *cache.MemoryCache

	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the per-domain rate limiter
//   - Creates the page fetcher for the configured mode
//
// The search client and key store are created on first use so that
// commands which never enrich do not need credentials.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := setupLogging(cfg.Log)

	rateLimiter := ratelimit.NewDomainLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.HTTP.RateLimitRPS).
		Int("burst", cfg.HTTP.RateLimitBurst).
		Msg("Rate limiter initialized")

	fetcher, err := newFetcher(cfg, rateLimiter)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("fetcher", fetcher.Name()).Msg("Fetcher initialized")

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: rateLimiter,
		Fetcher:     fetcher,
		Store:       table.NewCSVStore(),
		newKeys:     auth.NewKeyStore,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

func setupLogging(cfg config.LogConfig) zerolog.Logger {
	// info stays hidden unless -v is used
	level := zerolog.ErrorLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	var logWriter io.Writer
	if cfg.JSON {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(logWriter).With().Timestamp().Logger()
	return log.Logger
}

func newFetcher(cfg *config.Config, lim ratelimit.RateLimiter) (fetch.Fetcher, error) {
	switch models.FetchMode(cfg.Collect.Mode) {
	case models.ModeBrowser:
		return fetch.NewBrowserFetcher(lim, fetch.BrowserOptions{
			UserAgent:  cfg.HTTP.UserAgent,
			Proxy:      cfg.HTTP.Proxy,
			ChromePath: cfg.Browser.ChromePath,
			Headless:   cfg.Browser.Headless,
			Settle:     cfg.Browser.Settle,
		}), nil
	default:
		return fetch.NewHTTPFetcher(lim, fetch.HTTPOptions{
			UserAgent:        cfg.HTTP.UserAgent,
			Headers:          cfg.HTTP.Headers,
			Proxy:            cfg.HTTP.Proxy,
			CloudflareBypass: cfg.HTTP.CloudflareBypass,
		})
	}
}

// ShowProgress reports whether progress bars should be drawn.
func (a *Application) ShowProgress() bool {
	return !a.Config.Log.Quiet && !a.Config.Log.JSON
}

// Selectors converts the configured selectors.
func (a *Application) Selectors() catalog.Selectors {
	s := a.Config.Collect.Selectors
	return catalog.Selectors{
		Product:         s.Product,
		Fallback:        s.Fallback,
		Wrapper:         s.Wrapper,
		Category:        s.Category,
		IngredientTag:   s.IngredientTag,
		IngredientStart: s.IngredientStart,
		IngredientStop:  s.IngredientStop,
	}
}

// seededRand returns a PCG source for seed. stream separates independent
// draws made from the same seed.
func seededRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// NewCollector builds a collector from the configuration. The listing
// shuffle and the politeness delay draw from separate seeded sources.
func (a *Application) NewCollector(logger *zerolog.Logger) *catalog.Collector {
	c := a.Config.Collect
	visible := a.ShowProgress()

	return catalog.NewCollector(a.Fetcher, catalog.CollectorOptions{
		Selectors:       a.Selectors(),
		CategoryTimeout: a.Config.HTTP.Timeout,
		SubpageTimeout:  a.Config.HTTP.SubpageTimeout,
		MaxListings:     c.MaxListings,
		Rand:            seededRand(c.Seed, c.Seed),
		Delay:           ratelimit.NewPoliteness(c.DelayMin, c.DelayMax, seededRand(c.Seed, c.Seed+1), nil),
		NewProgress: func(total int) catalog.Progress {
			return ui.NewProgress(total, "Collecting", visible)
		},
		Logger: logger,
	})
}

// Keys returns the credential store.
func (a *Application) Keys() (*auth.KeyStore, error) {
	a.keysMu.Lock()
	defer a.keysMu.Unlock()

	if a.keys == nil {
		ks, err := a.newKeys()
		if err != nil {
			return nil, fmt.Errorf("open key store: %w", err)
		}
		a.keys = ks
	}
	return a.keys, nil
}

// SearchAPIKey returns the configured API key, falling back to the key store.
func (a *Application) SearchAPIKey() (string, error) {
	if a.Config.Search.APIKey != "" {
		return a.Config.Search.APIKey, nil
	}

	ks, err := a.Keys()
	if err != nil {
		return "", err
	}
	key, err := ks.Get(auth.SearchAPIKey)
	if errors.Is(err, auth.ErrNoKey) {
		return "", ErrNoSearchCredentials
	}
	return key, err
}

// Searcher lazily creates the cached search client.
func (a *Application) Searcher() (search.Searcher, error) {
	a.searchMu.Lock()
	defer a.searchMu.Unlock()

	if a.searcher != nil {
		return a.searcher, nil
	}

	sc := a.Config.Search
	if sc.EngineID == "" {
		return nil, ErrNoSearchCredentials
	}
	key, err := a.SearchAPIKey()
	if err != nil {
		return nil, err
	}

	client, err := search.NewClient(search.ClientOptions{
		BaseURL:   sc.BaseURL,
		APIKey:    key,
		EngineID:  sc.EngineID,
		Timeout:   sc.Timeout,
		UserAgent: a.Config.HTTP.UserAgent,
		Limiter:   ratelimit.NewDomainLimiter(sc.RateLimitRPS, 1),
	})
	if err != nil {
		return nil, err
	}

	a.cache = cache.NewMemoryCache(sc.CacheEntries, sc.CacheTTL)
	a.searcher = search.NewCachedSearcher(client, a.cache, sc.CacheTTL)
	a.Logger.Debug().Str("base_url", sc.BaseURL).Msg("Search client initialized")
	return a.searcher, nil
}

// NewEnricher builds an enricher from the configuration.
func (a *Application) NewEnricher(logger *zerolog.Logger) (*enrich.Enricher, error) {
	s, err := a.Searcher()
	if err != nil {
		return nil, err
	}

	e := a.Config.Enrich
	visible := a.ShowProgress()
	return enrich.New(s, a.Store, enrich.Options{
		Rand:      seededRand(e.Seed, e.Seed),
		SampleMin: e.SampleMin,
		SampleMax: e.SampleMax,
		NewProgress: func(total int) enrich.Progress {
			return ui.NewProgress(total, "Enriching", visible)
		},
		Logger: logger,
	}), nil
}

// Close releases idle connections and reports cache usage.
func (a *Application) Close(ctx context.Context) error {
	if c, ok := a.Fetcher.(interface{ Close() }); ok {
		c.Close()
	}

	if a.cache != nil {
		stats := a.cache.Stats()
		a.Logger.Debug().
			Int("entries", stats.Entries).
			Uint64("hits", stats.Hits).
			Float64("hit_rate", stats.HitRate).
			Msg("Search cache stats")
	}

	a.Logger.Info().Dur("uptime", time.Since(a.startTime)).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
