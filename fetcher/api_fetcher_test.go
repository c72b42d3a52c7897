package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"giveaway-grid/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		baseURL  string
		pages    int
		expected string
		wantErr  bool
	}{
		{
			name:     "absolute endpoint gets query parameter",
			endpoint: "http://localhost:8080/scrape-data",
			pages:    2,
			expected: "http://localhost:8080/scrape-data?numpages=2",
		},
		{
			name:     "existing query is kept",
			endpoint: "https://api.example/scrape?source=giveawaybase",
			pages:    5,
			expected: "https://api.example/scrape?numpages=5&source=giveawaybase",
		},
		{
			name:     "placeholder is substituted",
			endpoint: "https://api.example/pages/{numpages}/items",
			pages:    3,
			expected: "https://api.example/pages/3/items",
		},
		{
			name:     "relative endpoint resolves against base",
			endpoint: "/api/scrape",
			baseURL:  "https://giveaways.example/",
			pages:    1,
			expected: "https://giveaways.example/api/scrape?numpages=1",
		},
		{
			name:     "relative endpoint without base",
			endpoint: "/api/scrape",
			wantErr:  true,
		},
		{
			name:     "unsupported scheme",
			endpoint: "ftp://example/scrape",
			wantErr:  true,
		},
		{
			name:     "empty endpoint",
			endpoint: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewAPIFetcher(tt.endpoint, tt.baseURL, 0)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			got, err := f.BuildURL(tt.pages)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFetchRoundTrip(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("numpages")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"Name":"A","ImageURL":"a.png","URL":"http://x/a","ExpirationDate":"2024-01-01"}]}`))
	}))
	defer srv.Close()

	f, err := NewAPIFetcher(srv.URL+"/scrape-data", "", time.Second)
	require.NoError(t, err)

	items, err := f.Fetch(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "2", gotQuery)
	assert.Equal(t, []models.DisplayItem{
		{Name: "A", ImageURL: "a.png", URL: "http://x/a", ExpirationDate: "2024-01-01"},
	}, items)
}

func TestFetchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	f, err := NewAPIFetcher(srv.URL, "", 0)
	require.NoError(t, err)

	items, err := f.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Scraping error: boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f, err := NewAPIFetcher(srv.URL, "", 0)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), 1)
	require.ErrorIs(t, err, ErrRequestFailed)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "boom")
}

func TestFetchDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	f, err := NewAPIFetcher(srv.URL, "", 0)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), 1)
	require.ErrorIs(t, err, ErrDecodeFailed)
	assert.NotErrorIs(t, err, ErrRequestFailed)
}

func TestFetchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	f, err := NewAPIFetcher(addr, "", time.Second)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), 1)
	require.ErrorIs(t, err, ErrRequestFailed)
}

func TestFetchHonorsCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f, err := NewAPIFetcher(srv.URL, "", 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = f.Fetch(ctx, 1)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f, err := NewAPIFetcher(srv.URL, "", 50*time.Millisecond)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), 1)
	require.ErrorIs(t, err, ErrRequestFailed)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii", "abcdef", 3, "abc..."},
		{"inside rune", "aé€b", 3, "aé..."},
		{"inside three byte rune", "aé€b", 4, "aé..."},
		{"rune boundary", "aé€b", 6, "aé€..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.n)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
