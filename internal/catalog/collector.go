package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/shelf/internal/fetch"
	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Progress receives one tick per processed listing.
type Progress interface {
	Add(n int) error
	Finish() error
}

type noProgress struct{}

func (noProgress) Add(int) error { return nil }
func (noProgress) Finish() error { return nil }

// CollectorOptions configures a collection run.
type CollectorOptions struct {
	Selectors       Selectors
	CategoryTimeout time.Duration
	SubpageTimeout  time.Duration
	MaxListings     int
	// Rand drives the listing shuffle.
	Rand *rand.Rand
	// Delay runs after each listing that issued a sub-page request.
	Delay *ratelimit.Politeness
	// NewProgress builds a progress reporter for total listings. Optional.
	NewProgress func(total int) Progress
	Logger      *zerolog.Logger
}

// Collector runs the listing pipeline against one category page.
type Collector struct {
	fetcher   fetch.Fetcher
	extractor *Extractor
	opts      CollectorOptions
	logger    zerolog.Logger
}

// Result summarizes a collection run.
type Result struct {
	Records  []models.ProductRecord
	Category *string
	Found    int
	Selected int
	Skipped  map[SkipReason]int
	Duration time.Duration
}

// NewCollector creates a Collector. Category and sub-pages share f.
func NewCollector(f fetch.Fetcher, opts CollectorOptions) *Collector {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.NewProgress == nil {
		opts.NewProgress = func(int) Progress { return noProgress{} }
	}
	return &Collector{
		fetcher:   f,
		extractor: NewExtractor(f, opts.Selectors, opts.SubpageTimeout),
		opts:      opts,
		logger:    logger,
	}
}

// Collect fetches the category page and extracts its listings. A failed
// category fetch, a page without product tags, or a run that keeps no
// record is an error.
func (c *Collector) Collect(ctx context.Context, categoryURL string) (*Result, error) {
	start := time.Now()

	page, err := c.fetcher.Fetch(ctx, models.FetchRequest{URL: categoryURL, Timeout: c.opts.CategoryTimeout})
	if err != nil {
		return nil, fmt.Errorf("fetch category page: %w", err)
	}
	c.logger.Info().Int("status", page.StatusCode).Str("url", categoryURL).Msg("Category page fetched")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse category page: %w", err)
	}

	res, err := c.CollectDocument(ctx, doc, categoryURL)
	if res != nil {
		res.Duration = time.Since(start)
	}
	return res, err
}

// CollectDocument extracts listings from an already parsed category page.
func (c *Collector) CollectDocument(ctx context.Context, doc *goquery.Document, pageURL string) (*Result, error) {
	tags, found := SelectProductTags(doc, c.opts.Selectors)
	c.logger.Info().Int("found", found).Msg("Potential products found")
	if found == 0 {
		return nil, ErrNoProductTags
	}

	selected := SampleTags(tags, c.opts.Rand, c.opts.MaxListings)
	res := &Result{
		Category: PageCategory(doc, c.opts.Selectors),
		Found:    found,
		Selected: len(selected),
		Skipped:  make(map[SkipReason]int),
	}

	bar := c.opts.NewProgress(len(selected))
	defer bar.Finish()

	for i, tag := range selected {
		rec, err := c.extractor.Extract(ctx, tag, pageURL, res.Category)
		_ = bar.Add(1)
		if err != nil {
			res.Skipped[ReasonOf(err)]++
			c.logger.Warn().Err(err).Int("item", i).Msg("Skipping product")
			continue
		}

		res.Records = append(res.Records, rec)
		c.logger.Debug().
			Int("item", i).
			Str("product", rec.ProductName).
			Str("brand", rec.Brand).
			Msg("Product extracted")

		if c.opts.Delay != nil && i < len(selected)-1 {
			if _, err := c.opts.Delay.Wait(ctx); err != nil {
				return res, fmt.Errorf("collection interrupted: %w", err)
			}
		}
	}

	if len(res.Records) == 0 {
		return res, ErrNoRecords
	}
	return res, nil
}
