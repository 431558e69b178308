package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flyrender/pkg/templating"
)

func TestRenderMetrics_RecordRender(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewRenderMetrics(registry)

	m.RecordRender(10*time.Millisecond, nil)
	m.RecordRender(time.Millisecond, templating.NewRenderError(templating.TemplateRef{Path: "/a.html"},
		templating.NewFetchError("/a.html", errors.New("404"))))
	m.RecordRender(time.Millisecond, context.Canceled)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.renders))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.renderErrors.WithLabelValues("fetch")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.renderErrors.WithLabelValues("canceled")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.renderDuration))
}

func TestRenderMetrics_CacheAndFetch(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewRenderMetrics(registry)

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordFetch(time.Millisecond, nil)
	m.RecordFetch(time.Millisecond, errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.cacheLookups.WithLabelValues(ResultHit)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues(ResultMiss)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetches.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetches.WithLabelValues(ResultError)))
}

func TestRenderMetrics_WithEngine(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewRenderMetrics(registry)

	fetcher := templating.FetcherFunc(func(ctx context.Context, path string) (string, error) {
		if path == "/doc.html" {
			return `<template><p>${title}</p></template>`, nil
		}
		return "", errors.New("not found")
	})

	engine, err := templating.New(fetcher, templating.Options{Recorder: m})
	require.NoError(t, err)

	ref := templating.TemplateRef{Path: "/doc.html"}
	_, err = engine.RenderTemplate(context.Background(), ref, templating.NewScope(map[string]any{"title": "T"}))
	require.NoError(t, err)
	_, err = engine.RenderTemplate(context.Background(), ref, nil)
	require.NoError(t, err)
	_, err = engine.RenderTemplate(context.Background(), templating.TemplateRef{Path: "/doc.html", Name: "nope"}, nil)
	require.Error(t, err)
	_, err = engine.RenderTemplate(context.Background(), templating.TemplateRef{Path: "/missing.html"}, nil)
	require.Error(t, err)

	assert.Equal(t, float64(4), testutil.ToFloat64(m.renders))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.renderErrors.WithLabelValues("not_found")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.renderErrors.WithLabelValues("fetch")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues(ResultHit)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.cacheLookups.WithLabelValues(ResultMiss)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetches.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetches.WithLabelValues(ResultError)))
}
