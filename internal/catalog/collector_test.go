package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/law-makers/shelf/internal/fetch"
	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const categoryURL = "https://shop.example.com/cat/face-care/"

// fakeFetcher serves canned pages keyed by URL.
type fakeFetcher struct {
	pages    map[string]string
	failures map[string]error
	calls    []models.FetchRequest
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(ctx context.Context, req models.FetchRequest) (*models.Page, error) {
	f.calls = append(f.calls, req)
	if err, ok := f.failures[req.URL]; ok {
		return nil, err
	}
	html, ok := f.pages[req.URL]
	if !ok {
		return nil, &fetch.FetchError{URL: req.URL, StatusCode: 404}
	}
	return &models.Page{URL: req.URL, StatusCode: 200, HTML: html}, nil
}

func listing(href, src, alt string) string {
	img := fmt.Sprintf(`<img src="%s" alt="%s">`, src, alt)
	if alt == "" {
		img = fmt.Sprintf(`<img src="%s">`, src)
	}
	return fmt.Sprintf(`<li class="product"><div class="woocommerce-image__wrapper"><a href="%s">%s</a></div></li>`, href, img)
}

func categoryPage(items ...string) string {
	return `<html><body>
		<h1 class="woocommerce-products-header__title page-title"> Face Care </h1>
		<ul class="products">` + strings.Join(items, "\n") + `</ul></body></html>`
}

func detailPage(ingredients ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div><strong>Product contains:</strong>`)
	for _, ing := range ingredients {
		b.WriteString("<strong>" + ing + "</strong>")
	}
	b.WriteString(`<strong>Product effects:</strong></div></body></html>`)
	return b.String()
}

func newTestCollector(f fetch.Fetcher, delay *ratelimit.Politeness) *Collector {
	return NewCollector(f, CollectorOptions{
		Selectors:   DefaultSelectors(),
		MaxListings: 30,
		Rand:        rand.New(rand.NewPCG(42, 42)),
		Delay:       delay,
	})
}

func TestCollector_ThreeValidOneMalformed(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		categoryURL: categoryPage(
			listing("/product/a/", "/img/a.jpg", "Anua - Heartleaf Toner, 250ml"),
			listing("/product/b/", "/img/b.jpg", "Torriden - Dive-In Serum, 50ml"),
			listing("/product/c/", "/img/c.jpg", "Mixsoon - Bean Essence 50ml"),
			listing("/product/d/", "/img/d.jpg", ""),
		),
		"https://shop.example.com/product/a/": detailPage("Houttuynia Cordata Extract", "Water"),
		"https://shop.example.com/product/b/": detailPage("Hyaluronic Acid"),
		"https://shop.example.com/product/c/": `<html><body><p>No ingredient section</p></body></html>`,
	}}

	res, err := newTestCollector(f, nil).Collect(context.Background(), categoryURL)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Found)
	assert.Equal(t, 4, res.Selected)
	assert.Len(t, res.Records, 3)
	assert.Equal(t, 1, res.Skipped[SkipNoAltText])

	byBrand := make(map[string]models.ProductRecord)
	for _, r := range res.Records {
		byBrand[r.Brand] = r
	}

	want := models.ProductRecord{
		ProductName: "Heartleaf Toner",
		Brand:       "Anua",
		Size:        "250ml",
		Category:    models.Ptr("Face Care"),
		Ingredients: models.Ptr("Houttuynia Cordata Extract, Water"),
		ProductURL:  "https://shop.example.com/product/a/",
		ProductImg:  models.Ptr("https://shop.example.com/img/a.jpg"),
	}
	if diff := cmp.Diff(want, byBrand["Anua"]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Dive-In Serum", byBrand["Torriden"].ProductName)
	assert.Equal(t, "Bean Essence", byBrand["Mixsoon"].ProductName)
	assert.Equal(t, "50ml", byBrand["Mixsoon"].Size)
	assert.Nil(t, byBrand["Mixsoon"].Ingredients)
}

func TestCollector_SubpageFailureKeepsRecord(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string]string{
			categoryURL: categoryPage(listing("/product/a/", "/img/a.jpg", "Anua - Heartleaf Toner, 250ml")),
		},
		failures: map[string]error{
			"https://shop.example.com/product/a/": &fetch.FetchError{URL: "a", Underlying: errors.New("connection reset")},
		},
	}

	res, err := newTestCollector(f, nil).Collect(context.Background(), categoryURL)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.NotNil(t, res.Records[0].Ingredients)
	assert.Equal(t, models.ExtractionFailed, *res.Records[0].Ingredients)
	assert.Equal(t, "Anua", res.Records[0].Brand)
}

func TestCollector_CategoryFetchFailureIsFatal(t *testing.T) {
	f := &fakeFetcher{failures: map[string]error{
		categoryURL: &fetch.FetchError{URL: categoryURL, StatusCode: 503},
	}}

	res, err := newTestCollector(f, nil).Collect(context.Background(), categoryURL)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, fetch.ErrFetch)
	assert.Len(t, f.calls, 1)
}

func TestCollector_NoProductTags(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{categoryURL: `<html><body><p>Maintenance</p></body></html>`}}

	_, err := newTestCollector(f, nil).Collect(context.Background(), categoryURL)
	assert.ErrorIs(t, err, ErrNoProductTags)
}

func TestCollector_AllSkippedIsNoRecords(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		categoryURL: categoryPage(
			listing("/product/a/", "/img/a.jpg", "No divider here"),
			`<li class="product"><span>empty</span></li>`,
		),
	}}

	res, err := newTestCollector(f, nil).Collect(context.Background(), categoryURL)
	assert.ErrorIs(t, err, ErrNoRecords)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Skipped[SkipMalformedText])
	assert.Equal(t, 1, res.Skipped[SkipNoWrapper])
	// malformed listings never trigger a sub-page fetch
	assert.Len(t, f.calls, 1)
}

func TestCollector_FallbackLayout(t *testing.T) {
	page := `<html><body>
		<div class="woocommerce-image__wrapper"><a href="/p/1/"><img src="/1.jpg" alt="Anua - Toner, 250ml"></a></div>
		<div class="woocommerce-image__wrapper"><a href="/p/2/"><img src="/2.jpg" alt="Anua - Serum, 30ml"></a></div>
	</body></html>`
	f := &fakeFetcher{pages: map[string]string{
		categoryURL:                      page,
		"https://shop.example.com/p/1/": detailPage("Water"),
		"https://shop.example.com/p/2/": detailPage("Water"),
	}}

	res, err := newTestCollector(f, nil).Collect(context.Background(), categoryURL)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Nil(t, res.Category)
}

func TestCollector_TruncatesAndDelays(t *testing.T) {
	var items []string
	pages := map[string]string{}
	for i := 0; i < 10; i++ {
		href := fmt.Sprintf("/product/%d/", i)
		items = append(items, listing(href, "/img.jpg", fmt.Sprintf("Brand%d - Cream, %dml", i, i+10)))
		pages["https://shop.example.com"+href] = detailPage("Water")
	}
	pages[categoryURL] = categoryPage(items...)
	f := &fakeFetcher{pages: pages}

	var slept []time.Duration
	delay := ratelimit.NewPoliteness(3*time.Second, 5*time.Second, rand.New(rand.NewPCG(1, 1)),
		func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		})

	c := NewCollector(f, CollectorOptions{
		Selectors:   DefaultSelectors(),
		MaxListings: 4,
		Rand:        rand.New(rand.NewPCG(42, 42)),
		Delay:       delay,
	})
	res, err := c.Collect(context.Background(), categoryURL)
	require.NoError(t, err)

	assert.Equal(t, 10, res.Found)
	assert.Equal(t, 4, res.Selected)
	assert.Len(t, res.Records, 4)
	assert.Len(t, slept, 3)
	for _, d := range slept {
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}

func TestCollector_SameSeedSameSelection(t *testing.T) {
	var items []string
	pages := map[string]string{}
	for i := 0; i < 20; i++ {
		href := fmt.Sprintf("/product/%d/", i)
		items = append(items, listing(href, "/img.jpg", fmt.Sprintf("Brand%d - Cream, 50ml", i)))
		pages["https://shop.example.com"+href] = detailPage("Water")
	}
	pages[categoryURL] = categoryPage(items...)

	run := func() []string {
		res, err := NewCollector(&fakeFetcher{pages: pages}, CollectorOptions{
			Selectors:   DefaultSelectors(),
			MaxListings: 5,
			Rand:        rand.New(rand.NewPCG(42, 42)),
		}).Collect(context.Background(), categoryURL)
		require.NoError(t, err)
		var brands []string
		for _, r := range res.Records {
			brands = append(brands, r.Brand)
		}
		return brands
	}

	assert.Equal(t, run(), run())
}

func TestSelectProductTags_PrimaryWins(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(categoryPage(
		listing("/a/", "/a.jpg", "A - B, C"),
		listing("/b/", "/b.jpg", "A - B, C"),
	)))
	require.NoError(t, err)

	tags, n := SelectProductTags(doc, DefaultSelectors())
	assert.Equal(t, 2, n)
	for _, tag := range tags {
		assert.True(t, tag.Is("li.product"))
	}
}

func TestSampleTags_DoesNotMutateInput(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6}
	out := SampleTags(in, rand.New(rand.NewPCG(42, 42)), 3)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, in)
	assert.Len(t, out, 3)
	assert.Equal(t, in, SampleTags(in, nil, 0))
}
