package news

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchTimeout is returned when a fetch loses the race against its
	// timer.
	ErrFetchTimeout = errors.New("news request timed out")

	// ErrEmptyQuery is returned by searches with a blank query.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrNoAPIKey is returned when GNews is selected without a key.
	ErrNoAPIKey = errors.New("no GNews API key, set GNEWS_API_KEY or news.api_key")
)

// FetchFailure wraps any non-timeout error from a provider.
type FetchFailure struct {
	Op  string // "fetch" or "search"
	Err error
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("news %s failed: %v", e.Op, e.Err)
}

func (e *FetchFailure) Unwrap() error {
	return e.Err
}

// StatusError is returned for a non-2xx HTTP response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// IsFetchError reports whether err came from fetching, as opposed to a
// rejected request.
func IsFetchError(err error) bool {
	var ff *FetchFailure
	return errors.Is(err, ErrFetchTimeout) || errors.As(err, &ff)
}
