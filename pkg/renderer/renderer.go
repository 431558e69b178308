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

// Package renderer wires a templating engine from configuration.
//
// It picks the template document source (HTTP store or local directory),
// registers render metrics and exposes convenience entry points for
// rendering blocks and templates to markup.
package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/html"

	"flyrender/pkg/core/config"
	"flyrender/pkg/core/logging"
	"flyrender/pkg/httpstore"
	"flyrender/pkg/metrics"
	"flyrender/pkg/templating"
)

// Renderer owns a configured templating engine.
type Renderer struct {
	engine  *templating.Engine
	metrics *metrics.RenderMetrics
	config  *config.Config
	logger  *slog.Logger
}

// New creates a Renderer from a validated configuration.
//
// Parameters:
//   - cfg: renderer configuration (see config.LoadConfig)
//   - registry: Prometheus registry for render metrics (nil disables metrics)
//   - logger: structured logger (nil creates one at cfg.Logging.Level)
//
// Returns an error if the configuration is invalid or the template source
// cannot be set up.
func New(cfg *config.Config, registry prometheus.Registerer, logger *slog.Logger) (*Renderer, error) {
	if err := config.ValidateStructure(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if logger == nil {
		logger = logging.NewLogger(cfg.Logging.Level)
	}
	logger = logger.With("component", "renderer")

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := templating.Options{
		CodeBasePath:    cfg.Templates.CodeBasePath,
		Concurrency:     cfg.Render.Concurrency,
		MaxIncludeDepth: cfg.Render.MaxIncludeDepth,
		Logger:          logger,
	}

	var renderMetrics *metrics.RenderMetrics
	if registry != nil {
		renderMetrics = metrics.NewRenderMetrics(registry)
		opts.Recorder = renderMetrics
	}

	engine, err := templating.New(fetcher, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create template engine: %w", err)
	}

	logger.Info("renderer created",
		"source", sourceDescription(cfg),
		"code_base_path", cfg.Templates.CodeBasePath,
		"metrics", renderMetrics != nil)

	return &Renderer{
		engine:  engine,
		metrics: renderMetrics,
		config:  cfg,
		logger:  logger,
	}, nil
}

// newFetcher builds the template document fetcher for the configured source.
func newFetcher(cfg *config.Config, logger *slog.Logger) (templating.Fetcher, error) {
	if cfg.Templates.BaseURL != "" {
		store, err := httpstore.New(cfg.Templates.BaseURL, httpstore.FetchOptions{
			Timeout:    cfg.Fetch.GetTimeout(),
			Retries:    cfg.Fetch.Retries,
			RetryDelay: cfg.Fetch.GetRetryDelay(),
		}, authConfig(cfg.Fetch.Auth), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP store: %w", err)
		}
		return store, nil
	}

	info, err := os.Stat(cfg.Templates.Directory)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory %q is not a directory", cfg.Templates.Directory)
	}
	return templating.NewFSFetcher(os.DirFS(cfg.Templates.Directory)), nil
}

func authConfig(auth *config.AuthConfig) *httpstore.AuthConfig {
	if auth == nil {
		return nil
	}
	return &httpstore.AuthConfig{
		Type:     auth.Type,
		Username: auth.Username,
		Password: auth.Password,
		Token:    auth.Token,
		Headers:  auth.Headers,
	}
}

func sourceDescription(cfg *config.Config) string {
	if cfg.Templates.BaseURL != "" {
		return cfg.Templates.BaseURL
	}
	return "dir:" + cfg.Templates.Directory
}

// Engine returns the underlying templating engine.
func (r *Renderer) Engine() *templating.Engine {
	return r.engine
}

// Metrics returns the render metrics, or nil when metrics are disabled.
func (r *Renderer) Metrics() *metrics.RenderMetrics {
	return r.metrics
}

// RenderBlock renders the block's template into block.
func (r *Renderer) RenderBlock(ctx context.Context, block *html.Node, vars map[string]any) error {
	return r.engine.RenderBlock(ctx, block, vars)
}

// RenderBlockHTML parses blockHTML, renders its first element as a block
// and returns the element's resulting markup.
//
// Example:
//
//	out, err := r.RenderBlockHTML(ctx, `<div class="hero"></div>`, vars)
func (r *Renderer) RenderBlockHTML(ctx context.Context, blockHTML string, vars map[string]any) (string, error) {
	fragment, err := templating.ParseFragment(blockHTML)
	if err != nil {
		return "", err
	}

	block := fragment.FirstChild
	for block != nil && block.Type != html.ElementNode {
		block = block.NextSibling
	}
	if block == nil {
		return "", fmt.Errorf("block markup contains no element")
	}

	if err := r.engine.RenderBlock(ctx, block, vars); err != nil {
		return "", err
	}

	wrapper := templating.NewFragment()
	block.Parent.RemoveChild(block)
	wrapper.AppendChild(block)
	return templating.InnerHTML(wrapper)
}

// RenderString renders the referenced template and returns its markup.
func (r *Renderer) RenderString(ctx context.Context, ref templating.TemplateRef, vars map[string]any) (string, error) {
	fragment, err := r.engine.RenderTemplate(ctx, ref, templating.NewScope(vars))
	if err != nil {
		return "", err
	}
	return templating.InnerHTML(fragment)
}

// LoadScopeFile reads a YAML file of scope variables. Mappings keep their
// document order (see templating.DecodeScopeYAML).
func (r *Renderer) LoadScopeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scope file: %w", err)
	}

	vars, err := templating.DecodeScopeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("scope file %s: %w", path, err)
	}

	r.logger.Debug("loaded scope file", "path", path, "keys", len(vars))
	return vars, nil
}
