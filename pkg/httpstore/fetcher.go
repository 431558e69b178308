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
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchWithRetry performs an HTTP GET, retrying failed attempts with
// exponential backoff. Client errors are returned immediately.
func (s *HTTPStore) fetchWithRetry(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.opts.Retries; attempt++ {
		if attempt > 0 {
			// Cap the exponent to prevent overflow (max ~32x multiplier)
			exp := attempt - 1
			if exp > 5 {
				exp = 5
			}
			delay := s.opts.RetryDelay * time.Duration(1<<exp)
			s.logger.Debug("retrying HTTP fetch",
				"url", url,
				"attempt", attempt+1,
				"delay", delay.String())

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		content, err := s.doFetch(ctx, url)
		if err == nil {
			return content, nil
		}

		lastErr = err
		s.logger.Debug("HTTP fetch attempt failed",
			"url", url,
			"attempt", attempt+1,
			"error", err)

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	if s.opts.Retries == 0 {
		return "", lastErr
	}
	return "", fmt.Errorf("all %d attempts failed: %w", s.opts.Retries+1, lastErr)
}

// doFetch performs a single HTTP GET request and returns the response body.
func (s *HTTPStore) doFetch(ctx context.Context, url string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if s.auth != nil {
		addAuthHeaders(req, s.auth)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", "flyrender/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	limitedReader := io.LimitReader(resp.Body, MaxContentSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxContentSize {
		return "", fmt.Errorf("response body exceeds maximum size of %d bytes", MaxContentSize)
	}

	return string(body), nil
}

// addAuthHeaders adds authentication headers to the request.
func addAuthHeaders(req *http.Request, auth *AuthConfig) {
	switch auth.Type {
	case "basic":
		if auth.Username != "" || auth.Password != "" {
			credentials := base64.StdEncoding.EncodeToString(
				[]byte(auth.Username + ":" + auth.Password))
			req.Header.Set("Authorization", "Basic "+credentials)
		}

	case "bearer":
		if auth.Token != "" {
			req.Header.Set("Authorization", "Bearer "+auth.Token)
		}

	default:
		// "header" and unknown types: custom headers only
		for key, value := range auth.Headers {
			req.Header.Set(key, value)
		}
	}
}
