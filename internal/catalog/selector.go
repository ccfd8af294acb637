// Package catalog turns vendor category pages into product records.
package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors names the markup the extractor relies on.
type Selectors struct {
	// Product is the primary per-listing node ("standard" layout).
	Product string
	// Fallback is tried when Product matches nothing ("stripped" layout).
	Fallback string
	// Wrapper holds the link and image inside a listing.
	Wrapper string
	// Category is the page heading shared by every listing.
	Category string
	// IngredientTag is the element type of the ingredient markers and entries.
	IngredientTag   string
	IngredientStart string
	IngredientStop  string
}

// DefaultSelectors matches the WooCommerce markup of the vendor site.
func DefaultSelectors() Selectors {
	return Selectors{
		Product:         "li.product",
		Fallback:        "div.woocommerce-image__wrapper",
		Wrapper:         "div.woocommerce-image__wrapper",
		Category:        "h1.woocommerce-products-header__title.page-title",
		IngredientTag:   "strong",
		IngredientStart: "Product contains:",
		IngredientStop:  "Product effects:",
	}
}

// SelectProductTags returns the listing nodes of a category page in document
// order. The fallback selector is only consulted when the primary one finds
// nothing. An empty result is not an error here.
func SelectProductTags(doc *goquery.Document, sel Selectors) ([]*goquery.Selection, int) {
	found := doc.Find(sel.Product)
	if found.Length() == 0 && sel.Fallback != "" {
		found = doc.Find(sel.Fallback)
	}

	tags := make([]*goquery.Selection, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		tags = append(tags, s)
	})
	return tags, len(tags)
}

// PageCategory reads the category heading, or nil when the page has none.
func PageCategory(doc *goquery.Document, sel Selectors) *string {
	heading := doc.Find(sel.Category).First()
	if heading.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(heading.Text())
	return &text
}
