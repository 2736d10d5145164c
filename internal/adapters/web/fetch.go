// Package web fetches remote HTML documents and extracts the text the
// alphabet is harvested from. It also serves the engine over a small JSON
// API (server.go).
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html"
)

// DefaultUserAgent identifies rube to document hosts.
const DefaultUserAgent = "rube/1.0 (+https://github.com/corey/rube)"

// maxBody bounds how much of a document is read.
const maxBody = 4 << 20

var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Fetcher retrieves and parses HTML documents.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns a Fetcher using client, or a client with a 30s timeout
// when client is nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client, userAgent: DefaultUserAgent}
}

// Fetch GETs url and parses the body as HTML. Any status other than 200 is
// an error wrapping ErrHTTPStatus.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %w: %d", url, ErrHTTPStatus, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}
