package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"giveaway-grid/models"
	"giveaway-grid/parser"

	"github.com/go-resty/resty/v2"
)

// PagesPlaceholder is substituted with the page count in endpoint templates
const PagesPlaceholder = "{numpages}"

// maxErrorBody caps how much of an upstream error body ends up in a message
const maxErrorBody = 256

var (
	// ErrRequestFailed covers transport failures and non-2xx responses
	ErrRequestFailed = errors.New("scrape request failed")
	// ErrDecodeFailed is returned when the response body has the wrong shape
	ErrDecodeFailed = errors.New("scrape response could not be decoded")
)

// StatusError carries the upstream status of a non-2xx response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// APIFetcher implements the Fetcher interface against the scrape HTTP API
type APIFetcher struct {
	client   *resty.Client
	endpoint string
	baseURL  *url.URL
	parser   *parser.Parser
}

// NewAPIFetcher creates a fetcher for an endpoint template.
// Relative templates are resolved against baseURL.
// A zero timeout leaves requests unbounded.
func NewAPIFetcher(endpoint, baseURL string, timeout time.Duration) (*APIFetcher, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint must not be empty")
	}

	f := &APIFetcher{
		endpoint: endpoint,
		parser:   parser.NewParser(),
	}

	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		f.baseURL = base
	}

	// Build once up front so a broken template fails at startup
	if _, err := f.BuildURL(1); err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "giveaway-grid/1.0")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	f.client = client

	return f, nil
}

// BuildURL expands the endpoint template for a page count
func (f *APIFetcher) BuildURL(pages int) (string, error) {
	n := strconv.Itoa(pages)
	templated := strings.Contains(f.endpoint, PagesPlaceholder)

	raw := f.endpoint
	if templated {
		raw = strings.ReplaceAll(raw, PagesPlaceholder, n)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", f.endpoint, err)
	}
	if !u.IsAbs() {
		if f.baseURL == nil {
			return "", fmt.Errorf("endpoint %q is relative and no base URL is configured", f.endpoint)
		}
		u = f.baseURL.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("endpoint %q must use http or https", f.endpoint)
	}

	if !templated {
		q := u.Query()
		q.Set("numpages", n)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Fetch implements the Fetcher interface
func (f *APIFetcher) Fetch(ctx context.Context, pages int) ([]models.DisplayItem, error) {
	target, err := f.BuildURL(pages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, &StatusError{
			StatusCode: code,
			Body:       truncate(strings.TrimSpace(resp.String()), maxErrorBody),
		})
	}

	items, err := f.parser.DecodeItems(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	return items, nil
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
