// Package enrich backfills a sample of product rows with web search results.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/law-makers/shelf/internal/search"
	"github.com/law-makers/shelf/internal/table"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrMissingInput is returned when the input table does not exist.
	ErrMissingInput = errors.New("missing input, run collection first")
	// ErrNoEnrichment is returned when enrichment added no columns.
	ErrNoEnrichment = errors.New("enrichment added no columns")
)

// Progress receives one tick per sampled row.
type Progress interface {
	Add(n int) error
	Finish() error
}

type noProgress struct{}

func (noProgress) Add(int) error { return nil }
func (noProgress) Finish() error { return nil }

// Options configures an Enricher.
type Options struct {
	// Rand drives the sample draw.
	Rand      *rand.Rand
	SampleMin int
	SampleMax int
	// NewProgress is optional.
	NewProgress func(total int) Progress
	Logger      *zerolog.Logger
}

// Enricher adds brand_page and additional_information to sampled rows.
type Enricher struct {
	searcher search.Searcher
	store    table.Store
	opts     Options
	logger   zerolog.Logger
}

// Report summarizes an enrichment pass.
type Report struct {
	Sampled      []int
	BrandPages   int
	Snippets     int
	Failures     int
	ColumnsAdded int
	Duration     time.Duration
}

// New creates an Enricher. store is only needed by Run.
func New(s search.Searcher, store table.Store, opts Options) *Enricher {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.NewProgress == nil {
		opts.NewProgress = func(int) Progress { return noProgress{} }
	}
	return &Enricher{searcher: s, store: store, opts: opts, logger: logger}
}

// BrandQuery is the lookup used for the brand_page column.
func BrandQuery(brand string) string {
	return brand + " official page"
}

// Enrich adds both enrichment columns to t and fills them for the sampled
// rows. Cells outside the sample are absent. A failed or empty lookup
// leaves its cell absent and is not an error.
func (e *Enricher) Enrich(ctx context.Context, t *table.Table) (*Report, error) {
	start := time.Now()
	before := len(t.Columns())

	for _, col := range table.EnrichmentColumns {
		if !t.AddColumn(col) {
			t.ClearColumn(col)
		}
	}

	indices, err := SampleIndices(e.opts.Rand, t.Len(), e.opts.SampleMin, e.opts.SampleMax)
	if err != nil {
		return nil, err
	}
	e.logger.Info().Int("rows", t.Len()).Int("sampled", len(indices)).Msg("Rows selected for enrichment")

	rep := &Report{Sampled: indices, ColumnsAdded: len(t.Columns()) - before}

	bar := e.opts.NewProgress(len(indices))
	defer bar.Finish()

	for _, i := range indices {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("enrichment interrupted: %w", err)
		}

		brand, _ := t.Get(i, table.ColBrand)
		if link := e.lookup(ctx, i, BrandQuery(brand), search.FirstLink); link != nil {
			if err := t.Set(i, table.ColBrandPage, *link); err != nil {
				return rep, err
			}
			rep.BrandPages++
		} else {
			rep.Failures++
		}

		name, _ := t.Get(i, table.ColProductName)
		if snippet := e.lookup(ctx, i, name, search.FirstSnippet); snippet != nil {
			if err := t.Set(i, table.ColAdditionalInfo, *snippet); err != nil {
				return rep, err
			}
			rep.Snippets++
		} else {
			rep.Failures++
		}

		_ = bar.Add(1)
	}

	rep.Duration = time.Since(start)
	return rep, nil
}

func (e *Enricher) lookup(ctx context.Context, row int, query string, pick func(*models.SearchResponse) *string) *string {
	resp, err := e.searcher.Search(ctx, query)
	if err != nil {
		e.logger.Warn().Err(err).Int("row", row).Str("query", query).Msg("Lookup failed")
		return nil
	}
	v := pick(resp)
	if v == nil {
		e.logger.Info().Int("row", row).Str("query", query).Msg("No result")
	}
	return v
}

// Run reads in, enriches a copy and writes it to out. Nothing is written
// when enrichment added no columns or out already exists.
func (e *Enricher) Run(ctx context.Context, in, out string) (*Report, error) {
	src, err := e.store.Read(in)
	if err != nil {
		if errors.Is(err, table.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, in)
		}
		return nil, err
	}

	enriched := src.Clone()
	rep, err := e.Enrich(ctx, enriched)
	if err != nil {
		return rep, err
	}

	if len(enriched.Columns()) == len(src.Columns()) {
		return rep, ErrNoEnrichment
	}

	if err := e.store.Write(out, enriched); err != nil {
		return rep, err
	}

	e.logger.Info().
		Str("output", out).
		Int("brand_pages", rep.BrandPages).
		Int("snippets", rep.Snippets).
		Strs("columns_added", table.EnrichmentColumns).
		Msg("Enriched table written")
	return rep, nil
}
