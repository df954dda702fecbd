// Package document models the ordered page list of an open PDF and the page
// operations the sidebar exposes: duplicate, delete and reorder.
package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DefaultID identifies documents opened from an upload rather than a URL.
const DefaultID = "default-pdf"

// ID returns the document identity used to key versions: the source URL, or
// DefaultID when there is none.
func ID(sourceURL string) string {
	if sourceURL == "" {
		return DefaultID
	}
	return sourceURL
}

// Fetch downloads the PDF at url. Any status outside 2xx fails with ErrFetch.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrFetch, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	return data, nil
}
