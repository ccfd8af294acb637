package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel  = "info"
	DefaultJSONLog   = false
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	DefaultHTTPTimeout      = 15 * time.Second
	DefaultSubpageTimeout   = 10 * time.Second
	DefaultRateLimitRPS     = 2.0
	DefaultRateLimitBurst   = 1
	DefaultBrowserHeadless  = true
	DefaultBrowserSettle    = 2 * time.Second
	DefaultCloudflareBypass = false

	DefaultCategoryURL = "https://qudobeauty.com/cat/wholesale-face-care/"
	DefaultFetchMode   = "static"
	DefaultMaxListings = 30
	DefaultSeed        = 42
	DefaultDelayMin    = 3 * time.Second
	DefaultDelayMax    = 5 * time.Second

	DefaultProductsPath = "data/product-data.csv"
	DefaultEnrichedPath = "data/product-data-enriched.csv"

	DefaultSampleMin = 10
	DefaultSampleMax = 14

	DefaultSearchBaseURL      = "https://www.googleapis.com/customsearch/v1"
	DefaultSearchTimeout      = 15 * time.Second
	DefaultSearchRateLimitRPS = 1.0
	DefaultSearchCacheTTL     = time.Hour
	DefaultSearchCacheEntries = 512

	DefaultProductSelector  = "li.product"
	DefaultFallbackSelector = "div.woocommerce-image__wrapper"
	DefaultWrapperSelector  = "div.woocommerce-image__wrapper"
	DefaultCategorySelector = "h1.woocommerce-products-header__title.page-title"
	DefaultIngredientTag    = "strong"
	DefaultIngredientStart  = "Product contains:"
	DefaultIngredientStop   = "Product effects:"
)
