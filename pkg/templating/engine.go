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

package templating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Recorder receives render observations. See pkg/metrics for the
// Prometheus implementation.
type Recorder interface {
	// RecordRender is called once per top-level render.
	RecordRender(duration time.Duration, err error)

	// RecordCacheLookup is called for every template resolution.
	RecordCacheLookup(hit bool)

	// RecordFetch is called for every template document fetch.
	RecordFetch(duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordRender(time.Duration, error) {}
func (noopRecorder) RecordCacheLookup(bool)            {}
func (noopRecorder) RecordFetch(time.Duration, error)  {}

// Options configures an Engine. The zero value is usable.
type Options struct {
	// CodeBasePath is the default base path for block templates when the
	// render scope does not set codeBasePath.
	CodeBasePath string

	// Concurrency bounds concurrent expression resolutions per text or
	// attribute set. Zero means unbounded.
	Concurrency int

	// MaxIncludeDepth limits nested includes.
	// Default: DefaultMaxIncludeDepth
	MaxIncludeDepth int

	// Cache is the template cache to use. Engines sharing a cache share
	// fetched documents. Default: a new cache per engine.
	Cache *TemplateCache

	// Recorder receives render metrics. Default: no-op.
	Recorder Recorder

	// Logger is the structured logger. Default: slog.Default().
	Logger *slog.Logger
}

// Engine renders directive templates loaded through a Fetcher.
//
// Thread-safe for concurrent renders: the only shared state is the
// TemplateCache, and every render works on its own clone of the cached
// template.
type Engine struct {
	fetcher         Fetcher
	cache           *TemplateCache
	recorder        Recorder
	logger          *slog.Logger
	codeBasePath    string
	concurrency     int
	maxIncludeDepth int
}

// New creates an Engine that loads template documents with fetcher.
//
// Example:
//
//	engine, err := templating.New(templating.NewFSFetcher(os.DirFS("./site")), templating.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = engine.RenderBlock(ctx, blockNode, map[string]any{"title": "Hello"})
func New(fetcher Fetcher, opts Options) (*Engine, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is nil")
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must not be negative, got %d", opts.Concurrency)
	}
	if opts.MaxIncludeDepth < 0 {
		return nil, fmt.Errorf("max include depth must not be negative, got %d", opts.MaxIncludeDepth)
	}

	if opts.MaxIncludeDepth == 0 {
		opts.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	if opts.Cache == nil {
		opts.Cache = NewTemplateCache()
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Engine{
		fetcher:         fetcher,
		cache:           opts.Cache,
		recorder:        opts.Recorder,
		logger:          opts.Logger.With("component", "templating"),
		codeBasePath:    strings.TrimSuffix(opts.CodeBasePath, "/"),
		concurrency:     opts.Concurrency,
		maxIncludeDepth: opts.MaxIncludeDepth,
	}, nil
}

// Cache returns the engine's template cache.
func (e *Engine) Cache() *TemplateCache {
	return e.cache
}

// String returns a string representation of the engine for debugging.
func (e *Engine) String() string {
	return fmt.Sprintf("Engine{codeBasePath=%q, templates=%d}", e.codeBasePath, e.cache.Len())
}

// RenderBlock renders the block's template into the block element.
//
// The scope is built from vars plus:
//   - block: the block element
//   - blockName: the block's data-block-name attribute, else vars'
//     blockName, else the block's first class name
//   - codeBasePath: vars' codeBasePath, else Options.CodeBasePath
//
// Unless vars selects a template explicitly, the template is the default
// template of <codeBasePath>/blocks/<blockName>/<blockName>.html.
func (e *Engine) RenderBlock(ctx context.Context, block *html.Node, vars map[string]any) error {
	if block == nil || block.Type != html.ElementNode {
		return fmt.Errorf("block must be an element node")
	}

	scope := NewScope(vars)
	scope.Set(KeyBlock, block)

	if name, ok := getAttr(block, "data-block-name"); ok && name != "" {
		scope.Set(KeyBlockName, name)
	} else if scope.stringValue(KeyBlockName) == "" {
		if class, ok := getAttr(block, "class"); ok {
			if fields := strings.Fields(class); len(fields) > 0 {
				scope.Set(KeyBlockName, fields[0])
			}
		}
	}

	if scope.stringValue(KeyCodeBasePath) == "" {
		scope.Set(KeyCodeBasePath, e.codeBasePath)
	}

	return e.RenderElement(ctx, block, scope)
}

// RenderElement renders the template selected by scope and replaces el's
// children with the result.
//
// The template comes from the scope's "template" value (path and name).
// Without a path, the default block template path is derived from
// codeBasePath and blockName. el is only modified after the whole render
// has succeeded; on error its children are untouched.
func (e *Engine) RenderElement(ctx context.Context, el *html.Node, scope *Scope) error {
	if el == nil {
		return fmt.Errorf("element is nil")
	}
	if scope == nil {
		scope = NewScope(nil)
	}

	ref, err := e.templateRefFor(scope)
	if err != nil {
		return err
	}

	fragment, err := e.RenderTemplate(ctx, ref, scope)
	if err != nil {
		return err
	}

	replaceChildren(el, detachChildren(fragment))
	return nil
}

// RenderTemplate renders the referenced template and returns the result as
// a fragment (see NewFragment). scope is not modified; the render works on
// a derived scope whose "template" value is ref.
func (e *Engine) RenderTemplate(ctx context.Context, ref TemplateRef, scope *Scope) (*html.Node, error) {
	if scope == nil {
		scope = NewScope(nil)
	}

	pass := e.newPass(ref)
	pass.logger.Debug("rendering template")

	startTime := time.Now()
	fragment, err := pass.renderTemplate(ctx, ref, scope.Derive(map[string]any{KeyTemplate: ref.values()}))
	if err == nil {
		pass.sweepUnwrap()
	}
	duration := time.Since(startTime)
	e.recorder.RecordRender(duration, err)

	if err != nil {
		pass.logger.Warn("template rendering failed",
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, NewRenderError(ref, err)
	}

	pass.logger.Debug("template rendered",
		"duration_ms", duration.Milliseconds(),
		"unwrapped", len(pass.unwrap))

	return fragment, nil
}

// DefaultTemplatePath returns the conventional template document path of a
// block: <codeBasePath>/blocks/<blockName>/<blockName>.html.
func DefaultTemplatePath(codeBasePath, blockName string) string {
	return fmt.Sprintf("%s/blocks/%s/%s.html", strings.TrimSuffix(codeBasePath, "/"), blockName, blockName)
}

// templateRefFor determines the template a top-level render uses and
// records it in the scope, so relative includes resolve against it.
func (e *Engine) templateRefFor(scope *Scope) (TemplateRef, error) {
	ref := scope.TemplateRef()
	if ref.Path == "" {
		blockName := scope.stringValue(KeyBlockName)
		if blockName == "" {
			return TemplateRef{}, fmt.Errorf("cannot resolve template: neither template.path nor blockName is set")
		}

		codeBasePath := scope.stringValue(KeyCodeBasePath)
		if codeBasePath == "" {
			codeBasePath = e.codeBasePath
		}
		ref.Path = DefaultTemplatePath(codeBasePath, blockName)
	}

	scope.Set(KeyTemplate, ref.values())
	return ref, nil
}

// resolveTemplate returns the cached <template> element for ref, fetching
// and registering its document on a miss.
func (e *Engine) resolveTemplate(ctx context.Context, ref TemplateRef) (*html.Node, error) {
	if tmpl, ok := e.cache.Lookup(ref.Path, ref.Name); ok {
		e.recorder.RecordCacheLookup(true)
		return tmpl, nil
	}
	e.recorder.RecordCacheLookup(false)

	if !e.cache.HasDocument(ref.Path) {
		if err := e.loadDocument(ctx, ref.Path); err != nil {
			return nil, err
		}
	}

	if tmpl, ok := e.cache.Lookup(ref.Path, ref.Name); ok {
		return tmpl, nil
	}
	return nil, NewNotFoundError(ref.Path, ref.Name, e.cache.Names(ref.Path))
}

// loadDocument fetches, parses and registers a template document.
// Concurrent loads of the same path share one fetch. The shared fetch is
// detached from the cancellation of whichever caller started it; each
// caller stops waiting when its own ctx is done.
func (e *Engine) loadDocument(ctx context.Context, path string) error {
	fetchCtx := context.WithoutCancel(ctx)
	results := e.cache.fetches.DoChan(normalizeKeyPart(path), func() (any, error) {
		if e.cache.HasDocument(path) {
			return nil, nil
		}

		startTime := time.Now()
		markup, err := e.fetcher.Fetch(fetchCtx, path)
		e.recorder.RecordFetch(time.Since(startTime), err)
		if err != nil {
			return nil, NewFetchError(path, err)
		}

		doc, err := html.Parse(strings.NewReader(markup))
		if err != nil {
			return nil, NewFetchError(path, fmt.Errorf("failed to parse template document: %w", err))
		}

		added := e.cache.Register(path, doc)
		e.logger.Debug("registered template document",
			"path", path,
			"templates", added,
			"duration_ms", time.Since(startTime).Milliseconds())

		return nil, nil
	})

	var (
		err    error
		shared bool
	)
	select {
	case <-ctx.Done():
		return NewFetchError(path, ctx.Err())
	case res := <-results:
		err, shared = res.Err, res.Shared
	}

	if err != nil && shared {
		e.logger.Debug("shared template document fetch failed", "path", path, "error", err)
	}

	var fetchErr *FetchError
	if err != nil && !errors.As(err, &fetchErr) {
		return NewFetchError(path, err)
	}
	return err
}

// newPass starts a render pass with its own correlation id.
func (e *Engine) newPass(ref TemplateRef) *renderPass {
	return &renderPass{
		engine: e,
		logger: e.logger.With(
			"render_id", uuid.NewString(),
			"template", ref.String()),
	}
}
