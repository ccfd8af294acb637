// Package fetch retrieves raw HTML for category and product pages.
package fetch

import (
	"context"

	"github.com/law-makers/shelf/pkg/models"
)

// Fetcher is the interface that all page fetchers must implement
type Fetcher interface {
	// Fetch retrieves the page at req.URL. Failures are *FetchError.
	Fetch(ctx context.Context, req models.FetchRequest) (*models.Page, error)

	// Name returns the name of the fetcher implementation
	Name() string
}

// DefaultUserAgent mimics a desktop browser; the vendor serves stripped
// markup to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
