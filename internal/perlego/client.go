package perlego

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrlokans/perlego-sync/internal/entities"
)

const (
	DefaultBaseURL = "https://api.perlego.com"

	booksPath      = "/book-activity/books"
	highlightsPath = "/ugc/v2/packaged-highlights"
	metadataPath   = "/catalogue-service/v1/book"

	maxErrorBodyBytes = 512
)

// Client interfaces with the Perlego API.
// Every call is a single attempt; callers decide whether to skip or abort.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Client)

// WithBaseURL points the client at a different API host
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
// The current http.Client is copied, so a shared client is left untouched.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		clone := *c.httpClient
		clone.Timeout = timeout
		c.httpClient = &clone
	}
}

// NewClient creates a new Perlego API client
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListBooks fetches all books the user has interacted with.
func (c *Client) ListBooks(ctx context.Context, token string) ([]entities.BookReference, error) {
	var resp BookListResponse
	if _, err := c.get(ctx, token, booksPath, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", booksPath, ErrMissingData)
	}
	return resp.References(), nil
}

// FetchHighlights fetches the highlights and notes for a book.
// A 404 or a body with success=false / data=null is not an error: the
// returned response reports HasContent() == false.
func (c *Client) FetchHighlights(ctx context.Context, token, bookID string) (*HighlightsResponse, error) {
	q := url.Values{}
	q.Set("book_id", bookID)

	var resp HighlightsResponse
	status, err := c.get(ctx, token, highlightsPath, q, &resp)
	if err != nil {
		if status == http.StatusNotFound {
			return &HighlightsResponse{Success: false}, nil
		}
		return nil, err
	}
	return &resp, nil
}

// FetchMetadata fetches catalogue metadata for a book.
func (c *Client) FetchMetadata(ctx context.Context, token, bookID string) (entities.BookMetadata, error) {
	q := url.Values{}
	q.Set("book_id", bookID)

	var resp MetadataResponse
	if _, err := c.get(ctx, token, metadataPath, q, &resp); err != nil {
		return entities.BookMetadata{}, err
	}
	return resp.Metadata()
}

// get issues an authenticated GET and decodes the JSON body into out.
// The HTTP status is returned alongside errors so callers can special-case it.
func (c *Client) get(ctx context.Context, token, path string, query url.Values, out any) (int, error) {
	if token == "" {
		return 0, ErrMissingToken
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return resp.StatusCode, ErrInvalidToken
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return resp.StatusCode, &APIError{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return resp.StatusCode, nil
}
