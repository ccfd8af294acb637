package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/law-makers/shelf/internal/cache"
	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(ClientOptions{
		BaseURL:  srv.URL,
		APIKey:   "test-key",
		EngineID: "test-cx",
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-cx", r.URL.Query().Get("cx"))
		assert.Equal(t, "Anua official page", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"Anua","link":"https://anua.example.com","snippet":"Official store"},
			{"title":"Other","link":"https://other.example.com","snippet":"x"}
		]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv).Search(context.Background(), "Anua official page")
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Anua official page", resp.Query)

	assert.Equal(t, "https://anua.example.com", *FirstLink(resp))
	assert.Equal(t, "Official store", *FirstSnippet(resp))
}

func TestClient_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"searchInformation":{"totalResults":"0"}}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv).Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Nil(t, FirstLink(resp))
	assert.Nil(t, FirstSnippet(resp))
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"quota exceeded", http.StatusTooManyRequests, `{"error":{"code":429,"message":"Quota exceeded"}}`, 429},
		{"server error plain body", http.StatusBadGateway, `bad gateway`, 502},
		{"error object with 200", http.StatusOK, `{"error":{"code":400,"message":"Invalid value"}}`, 400},
		{"malformed payload", http.StatusOK, `{"items": [`, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := newTestClient(t, srv).Search(context.Background(), "q")
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrSearch)

			var se *SearchError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantStatus, se.StatusCode)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(ClientOptions{BaseURL: url, APIKey: "k", EngineID: "cx", Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrSearch)
}

func TestClient_UsesLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientOptions{
		BaseURL: srv.URL, APIKey: "k", EngineID: "cx",
		Limiter: ratelimit.NewDomainLimiter(100, 1),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = c.Search(ctx, "first")
	require.NoError(t, err)

	cancel()
	_, err = c.Search(ctx, "second")
	assert.ErrorIs(t, err, ErrSearch)
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(ClientOptions{EngineID: "cx"})
	assert.Error(t, err)
	_, err = NewClient(ClientOptions{APIKey: "k"})
	assert.Error(t, err)
}

type countingSearcher struct {
	calls map[string]int
	err   error
}

func (s *countingSearcher) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	s.calls[query]++
	if s.err != nil {
		return nil, s.err
	}
	return &models.SearchResponse{Query: query, Items: []models.SearchResult{{Link: "https://x.example.com"}}}, nil
}

func TestCachedSearcher(t *testing.T) {
	next := &countingSearcher{calls: map[string]int{}}
	s := NewCachedSearcher(next, cache.NewMemoryCache(10, time.Minute), 0)

	for i := 0; i < 3; i++ {
		resp, err := s.Search(context.Background(), "COSRX official page")
		require.NoError(t, err)
		assert.Len(t, resp.Items, 1)
	}
	_, err := s.Search(context.Background(), "cosrx  official page")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls["COSRX official page"])
	assert.Zero(t, next.calls["cosrx  official page"])
}

func TestCachedSearcher_DoesNotCacheErrors(t *testing.T) {
	next := &countingSearcher{calls: map[string]int{}, err: &SearchError{Query: "q", Message: "boom"}}
	s := NewCachedSearcher(next, cache.NewMemoryCache(10, time.Minute), 0)

	_, err := s.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrSearch)
	_, err = s.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrSearch)
	assert.Equal(t, 2, next.calls["q"])
}

func TestFirstLink_Blank(t *testing.T) {
	resp := &models.SearchResponse{Items: []models.SearchResult{{Link: "  ", Snippet: ""}, {Link: "https://second.example.com"}}}
	assert.Nil(t, FirstLink(resp))
	assert.Nil(t, FirstSnippet(resp))
	assert.Nil(t, FirstLink(nil))
}
