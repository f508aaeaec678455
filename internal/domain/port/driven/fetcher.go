package driven

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotJSON indicates a fetched body that is not valid JSON.
var ErrNotJSON = errors.New("response body is not valid JSON")

// StatusError is returned for a non-2xx response from the remote source.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned status %d", e.Code)
}

// DocumentFetcher retrieves a remote JSON document. Implementations
// return the raw body on success, or a typed failure: a wrapped network
// error, *StatusError for non-2xx, or ErrNotJSON for non-JSON bodies.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
