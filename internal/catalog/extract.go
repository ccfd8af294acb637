package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/shelf/internal/fetch"
	urlutil "github.com/law-makers/shelf/internal/utils/url"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog/log"
)

// Extractor builds one ProductRecord per listing node.
type Extractor struct {
	fetcher        fetch.Fetcher
	sel            Selectors
	subpageTimeout time.Duration
}

// NewExtractor creates an Extractor that looks ingredients up with f.
func NewExtractor(f fetch.Fetcher, sel Selectors, subpageTimeout time.Duration) *Extractor {
	return &Extractor{fetcher: f, sel: sel, subpageTimeout: subpageTimeout}
}

// Extract turns a listing node into a record. Links and images are resolved
// against pageURL; category is the page-level heading.
//
// A *SkipError means the node yields no record. A failed ingredient fetch
// is not a skip: the record comes back with Ingredients set to
// models.ExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, node *goquery.Selection, pageURL string, category *string) (models.ProductRecord, error) {
	wrapper := node
	if !node.Is(e.sel.Wrapper) {
		wrapper = node.Find(e.sel.Wrapper).First()
	}
	if wrapper.Length() == 0 {
		return models.ProductRecord{}, skip(SkipNoWrapper, "product details not found", nil)
	}

	href := strings.TrimSpace(wrapper.Find("a").First().AttrOr("href", ""))
	if href == "" {
		return models.ProductRecord{}, skip(SkipNoLink, "product link not found", nil)
	}

	img := wrapper.Find("img").First()
	alt, ok := img.Attr("alt")
	if img.Length() == 0 || !ok {
		return models.ProductRecord{}, skip(SkipNoAltText, "image alt text not found", nil)
	}

	text, err := SplitProductText(alt)
	if err != nil {
		return models.ProductRecord{}, skip(SkipMalformedText, "cannot split product text", err)
	}

	rec := models.ProductRecord{
		ProductName: text.ProductName,
		Brand:       text.Brand,
		Size:        text.Size,
		Category:    category,
		ProductURL:  urlutil.ResolveURL(pageURL, href),
	}
	if src, ok := img.Attr("src"); ok && src != "" {
		rec.ProductImg = models.Ptr(urlutil.ResolveURL(pageURL, src))
	}

	rec.Ingredients = e.lookupIngredients(ctx, rec.ProductURL)
	return rec, nil
}

func (e *Extractor) lookupIngredients(ctx context.Context, productURL string) *string {
	page, err := e.fetcher.Fetch(ctx, models.FetchRequest{URL: productURL, Timeout: e.subpageTimeout})
	if err != nil {
		log.Warn().Err(err).Str("url", productURL).Msg("Error on sub-link")
		return models.Ptr(models.ExtractionFailed)
	}

	ingredients, err := ExtractIngredients(page.HTML, e.sel)
	if err != nil {
		log.Warn().Err(err).Str("url", productURL).Msg("Failed to parse sub-page")
		return models.Ptr(models.ExtractionFailed)
	}
	return ingredients
}
