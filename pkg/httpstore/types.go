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

// Package httpstore fetches template documents over HTTP(S).
//
// The store resolves document paths against a base URL and performs GET
// requests with a timeout, optional retries with exponential backoff and
// optional authentication. Any non-200 response is an error. Caching is the
// template cache's job; the store itself keeps no state between fetches.
package httpstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultRetryDelay is the default delay before the first retry.
const DefaultRetryDelay = time.Second

// MaxContentSize is the maximum allowed document size (10MB).
const MaxContentSize = 10 * 1024 * 1024

// FetchOptions configures HTTP fetching behavior.
type FetchOptions struct {
	// Timeout is the per-request timeout.
	// Default: 30s
	Timeout time.Duration

	// Retries is the number of additional attempts after a failed request.
	// Client errors (4xx) are never retried.
	// Default: 0
	Retries int

	// RetryDelay is the wait before the first retry; it doubles per attempt.
	// Default: 1s
	RetryDelay time.Duration
}

// WithDefaults returns a copy of the options with default values applied.
func (o FetchOptions) WithDefaults() FetchOptions {
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

// AuthConfig configures HTTP authentication.
type AuthConfig struct {
	// Type is the authentication type: "basic", "bearer", or "header".
	Type string

	// Username for basic auth.
	Username string

	// Password for basic auth.
	Password string

	// Token for bearer auth.
	Token string

	// Headers for custom header auth (e.g., API keys).
	// These headers are added to every request.
	Headers map[string]string
}

// StatusError represents a non-success HTTP response.
type StatusError struct {
	// URL is the requested URL
	URL string

	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Status is the HTTP status line text (e.g., "404 Not Found")
	Status string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// Retryable returns true for server errors and rate limiting.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// Checksum computes SHA256 checksum of content.
func Checksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
