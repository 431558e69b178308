// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// HTTPStore fetches template documents relative to a base URL.
//
// It implements templating.Fetcher. Thread-safe for concurrent access.
type HTTPStore struct {
	baseURL    *url.URL
	opts       FetchOptions
	auth       *AuthConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a new HTTPStore.
//
// Parameters:
//   - baseURL: absolute http(s) URL that document paths are resolved against
//   - opts: fetch options (timeout, retries)
//   - auth: optional authentication configuration
//   - logger: structured logger (nil uses slog.Default())
//
// Example:
//
//	store, err := httpstore.New("https://example.com", httpstore.FetchOptions{}, nil, logger)
//	if err != nil {
//	    return err
//	}
//	markup, err := store.Fetch(ctx, "/blocks/hero/hero.html")
func New(baseURL string, opts FetchOptions, auth *AuthConfig, logger *slog.Logger) (*HTTPStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}

	opts = opts.WithDefaults()

	return &HTTPStore{
		baseURL: parsed,
		opts:    opts,
		auth:    auth,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		logger: logger.With("component", "httpstore"),
	}, nil
}

// URL returns the absolute URL a document path resolves to.
//
// Paths starting with '/' are resolved against the base URL's path prefix,
// so a base URL of https://cdn.example.com/site maps "/blocks/a/a.html" to
// https://cdn.example.com/site/blocks/a/a.html. Absolute URLs are used as-is.
func (s *HTTPStore) URL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid document path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	resolved := *s.baseURL
	resolved.Path = strings.TrimSuffix(s.baseURL.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
	resolved.RawPath = ""
	resolved.RawQuery = ref.RawQuery
	resolved.Fragment = ""
	return resolved.String(), nil
}

// Fetch retrieves the document at path.
//
// Returns the response body, or an error if every attempt failed. Non-200
// responses fail with a *StatusError.
func (s *HTTPStore) Fetch(ctx context.Context, path string) (string, error) {
	target, err := s.URL(path)
	if err != nil {
		return "", err
	}

	s.logger.Debug("fetching template document",
		"url", target,
		"timeout", s.opts.Timeout.String(),
		"retries", s.opts.Retries)

	content, err := s.fetchWithRetry(ctx, target)
	if err != nil {
		return "", err
	}

	checksum := Checksum(content)
	s.logger.Debug("fetched template document",
		"url", target,
		"size", len(content),
		"checksum", checksum[:16]+"...")

	return content, nil
}
