package models

import "time"

// ExtractionFailed is stored in a field whose sub-page could not be fetched.
// It is distinct from an absent value, which means the page had no such section.
const ExtractionFailed = "Error"

// ProductRecord is one collected listing.
type ProductRecord struct {
	ProductName string  `json:"product_name"`
	Brand       string  `json:"brand"`
	Size        string  `json:"size"`
	Category    *string `json:"category,omitempty"`
	Ingredients *string `json:"ingredients,omitempty"`
	ProductURL  string  `json:"product_url"`
	ProductImg  *string `json:"product_img,omitempty"`
}

// Page represents a fetched HTML document
type Page struct {
	URL          string    `json:"url"`
	StatusCode   int       `json:"status_code"`
	HTML         string    `json:"html,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
	ResponseTime int64     `json:"response_time_ms"`
}

// FetchMode defines the fetcher to use for category pages
type FetchMode string

const (
	ModeStatic  FetchMode = "static"
	ModeBrowser FetchMode = "browser"
)

// FetchRequest contains options for a single page fetch
type FetchRequest struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchResponse is the decoded result list for one query.
type SearchResponse struct {
	Query string         `json:"query"`
	Items []SearchResult `json:"items"`
}

// Ptr returns a pointer to s. Used to build optional record fields.
func Ptr(s string) *string {
	return &s
}
