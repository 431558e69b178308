package templating

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSFetcher(t *testing.T) {
	fetcher := NewFSFetcher(fstest.MapFS{
		"blocks/hero/hero.html": {Data: []byte(`<template><h1>${title}</h1></template>`)},
	})

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute", "/blocks/hero/hero.html", false},
		{"relative", "blocks/hero/hero.html", false},
		{"cleaned", "/blocks/../blocks/hero/./hero.html", false},
		{"escaping root", "/../blocks/hero/hero.html", false},
		{"missing", "/blocks/other/other.html", true},
		{"root", "/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := fetcher.Fetch(context.Background(), tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, `<template><h1>${title}</h1></template>`, content)
		})
	}
}

func TestFSFetcher_CancelledContext(t *testing.T) {
	fetcher := NewFSFetcher(fstest.MapFS{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, "/a.html")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_FSFetcher(t *testing.T) {
	engine, err := New(NewFSFetcher(fstest.MapFS{
		"site/blocks/cards/cards.html": {Data: []byte(`<template><ul><li data-fly-repeat="cards">${item.title}</li></ul></template>`)},
	}), Options{CodeBasePath: "/site"})
	require.NoError(t, err)

	block := mustParseFragment(t, `<div class="cards"></div>`).FirstChild
	err = engine.RenderBlock(context.Background(), block, map[string]any{
		"cards": []any{
			map[string]any{"title": "One"},
			map[string]any{"title": "Two"},
		},
	})
	require.NoError(t, err)

	out, err := InnerHTML(block)
	require.NoError(t, err)
	assert.Equal(t, `<ul><li>One</li><li>Two</li></ul>`, out)
}

func TestFetcherFunc(t *testing.T) {
	var requested string
	fetcher := FetcherFunc(func(ctx context.Context, path string) (string, error) {
		requested = path
		return "<template></template>", nil
	})

	content, err := fetcher.Fetch(context.Background(), "/x.html")
	require.NoError(t, err)
	assert.Equal(t, "<template></template>", content)
	assert.Equal(t, "/x.html", requested)
}
