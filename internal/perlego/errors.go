package perlego

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned before any request is made when no token is configured
var ErrMissingToken = errors.New("perlego token is not configured")

// ErrInvalidToken indicates the API rejected the bearer token
var ErrInvalidToken = errors.New("invalid or expired Perlego token")

// ErrMissingData indicates a successful response without its data field
var ErrMissingData = errors.New("response has no data")

// ErrMetadataNotFound indicates the catalogue returned no results for a book
var ErrMetadataNotFound = errors.New("no catalogue entry for book")

// APIError represents a non-2xx response that is not an authentication failure
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("Perlego API error on %s: HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("Perlego API error on %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
