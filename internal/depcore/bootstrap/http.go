// Copyright 2025 cbuild Authors.
// All rights reserved

package bootstrap

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	httpclient "github.com/distrocore/cbuild/internal/http"
)

// HTTPFetcher is the production Fetcher, backed by an httpclient.Client.
type HTTPFetcher struct {
	Client httpclient.Client
}

// NewHTTPFetcher returns a Fetcher that issues plain GET requests through
// client.
func NewHTTPFetcher(client httpclient.Client) *HTTPFetcher {
	return &HTTPFetcher{Client: client}
}

// Get issues a GET request for url and returns its body.
func (f *HTTPFetcher) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "issuing request")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck
		return nil, errors.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}

// JSONIndexReader is the production IndexReader: it GETs a JSON document
// shaped as {"versions": ["1.2.3", ...]} and returns the list verbatim.
type JSONIndexReader struct {
	Fetcher Fetcher
}

// NewJSONIndexReader returns an IndexReader that decodes the version list
// fetcher retrieves.
func NewJSONIndexReader(fetcher Fetcher) *JSONIndexReader {
	return &JSONIndexReader{Fetcher: fetcher}
}

type indexDocument struct {
	Versions []string `json:"versions"`
}

// ListVersions fetches and decodes the index document at url.
func (r *JSONIndexReader) ListVersions(ctx context.Context, url string) ([]string, error) {
	body, err := r.Fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	var doc indexDocument
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding version index")
	}
	return doc.Versions, nil
}
