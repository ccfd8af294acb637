package search

import (
	"context"
	"strings"
	"time"

	"github.com/law-makers/shelf/internal/cache"
	"github.com/law-makers/shelf/pkg/models"
)

// CachedSearcher answers repeated queries from memory. Failed lookups are
// not cached.
type CachedSearcher struct {
	next  Searcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedSearcher wraps next with c.
func NewCachedSearcher(next Searcher, c cache.Cache, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{next: next, cache: c, ttl: ttl}
}

func (s *CachedSearcher) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	key := cache.KeyFromQuery(query)
	if resp, ok := s.cache.Get(key); ok {
		return resp, nil
	}

	resp, err := s.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, resp, s.ttl)
	return resp, nil
}

// FirstLink returns the first result's link. It is absent when there are
// no results or the link is blank.
func FirstLink(resp *models.SearchResponse) *string {
	if resp == nil || len(resp.Items) == 0 {
		return nil
	}
	return nonBlank(resp.Items[0].Link)
}

// FirstSnippet returns the first result's snippet, absent like FirstLink.
func FirstSnippet(resp *models.SearchResponse) *string {
	if resp == nil || len(resp.Items) == 0 {
		return nil
	}
	return nonBlank(resp.Items[0].Snippet)
}

func nonBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return models.Ptr(s)
}
