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

// Package config provides data models for the renderer configuration.
//
// These models represent the structure of the configuration YAML: where
// template documents come from, how they are fetched, render limits and
// logging.
package config

// Config is the root configuration structure.
type Config struct {
	// Templates selects the template document source.
	Templates TemplatesConfig `yaml:"templates"`

	// Fetch configures HTTP fetching of template documents.
	Fetch FetchConfig `yaml:"fetch"`

	// Render configures the rendering engine.
	Render RenderConfig `yaml:"render"`

	// Logging configures logging behavior.
	Logging LoggingConfig `yaml:"logging"`
}

// TemplatesConfig selects where template documents are loaded from.
// Exactly one of BaseURL and Directory must be set.
type TemplatesConfig struct {
	// CodeBasePath is the path prefix of block templates:
	// <code_base_path>/blocks/<name>/<name>.html
	//
	// Example: "/site"
	CodeBasePath string `yaml:"code_base_path"`

	// BaseURL is the http(s) origin template document paths are resolved
	// against.
	//
	// Example: "https://cdn.example.com"
	BaseURL string `yaml:"base_url"`

	// Directory is a local directory template document paths are resolved
	// against.
	Directory string `yaml:"directory"`
}

// FetchConfig configures HTTP fetching. Ignored for directory sources.
type FetchConfig struct {
	// Timeout bounds a single fetch attempt.
	// Format: Go duration string (e.g., "10s", "500ms")
	// Default: 30s
	Timeout string `yaml:"timeout"`

	// Retries is the number of retries after a failed attempt. Client
	// errors (4xx other than 429) are never retried.
	// Default: 0
	Retries int `yaml:"retries"`

	// RetryDelay is the initial delay between retries; it doubles with
	// every further attempt.
	// Format: Go duration string
	// Default: 1s
	RetryDelay string `yaml:"retry_delay"`

	// Auth configures request authentication.
	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig configures HTTP authentication for template fetches.
type AuthConfig struct {
	// Type is "basic", "bearer" or "header".
	Type string `yaml:"type"`

	// Username and Password are used by "basic".
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Token is used by "bearer".
	Token string `yaml:"token"`

	// Headers are sent verbatim by "header".
	Headers map[string]string `yaml:"headers"`
}

// RenderConfig configures the rendering engine.
type RenderConfig struct {
	// Concurrency bounds concurrent expression resolutions per text node
	// or attribute set.
	// Default: 0 (unbounded)
	Concurrency int `yaml:"concurrency"`

	// MaxIncludeDepth limits nested data-fly-include directives.
	// Default: 32
	MaxIncludeDepth int `yaml:"max_include_depth"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level is ERROR, WARNING, INFO or DEBUG (case-insensitive).
	// Default: INFO
	Level string `yaml:"level"`
}
