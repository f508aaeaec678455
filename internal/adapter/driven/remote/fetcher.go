// Package remote implements the document fetcher driven adapter: a
// bounded HTTP client that retrieves remote sync documents.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/wackyweasel/minishelf/internal/domain/port/driven"
)

// maxDocumentSize caps a fetched document at 64 MiB; image payloads are
// inlined as data URIs, so documents can be large but not unbounded.
const maxDocumentSize = 64 << 20

// Compile-time interface satisfaction check.
var _ driven.DocumentFetcher = (*Fetcher)(nil)

// Fetcher retrieves remote JSON documents over HTTP with an ETag-based
// memory cache and a bounded per-request timeout.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewFetcher creates a Fetcher. timeout bounds each fetch; zero means
// 30 seconds.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
		},
		timeout: timeout,
	}
}

// Fetch retrieves the document at url. Failures are typed: a wrapped
// transport error, *driven.StatusError for non-2xx responses, or
// driven.ErrNotJSON for bodies that are not valid JSON.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &driven.StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if !json.Valid(body) {
		return nil, driven.ErrNotJSON
	}

	return body, nil
}
