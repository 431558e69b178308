package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_NewScopeCopiesVars(t *testing.T) {
	vars := map[string]any{"a": 1}
	scope := NewScope(vars)

	scope.Set("b", 2)
	_, exists := vars["b"]
	assert.False(t, exists)

	vars["c"] = 3
	_, exists = scope.Get("c")
	assert.False(t, exists)
}

func TestScope_Derive(t *testing.T) {
	parent := NewScope(map[string]any{"a": 1, "b": 2})
	child := parent.Derive(map[string]any{"b": 20, "c": 30})

	child.Set("d", 40)

	a, _ := child.Get("a")
	b, _ := child.Get("b")
	assert.Equal(t, 1, a)
	assert.Equal(t, 20, b)

	b, _ = parent.Get("b")
	assert.Equal(t, 2, b)
	_, exists := parent.Get("c")
	assert.False(t, exists)
	_, exists = parent.Get("d")
	assert.False(t, exists)
}

func TestScope_Snapshot(t *testing.T) {
	scope := NewScope(map[string]any{"a": 1})

	snapshot := scope.Snapshot()
	snapshot["a"] = 2

	a, _ := scope.Get("a")
	assert.Equal(t, 1, a)
}

func TestScope_TemplateRef(t *testing.T) {
	ordered := NewOrderedMap()
	ordered.Set("path", "/o.html")

	tests := []struct {
		name     string
		template any
		expected TemplateRef
	}{
		{"missing", nil, TemplateRef{}},
		{"map", map[string]any{"path": "/a.html", "name": "x"}, TemplateRef{Path: "/a.html", Name: "x"}},
		{"value", TemplateRef{Path: "/b.html"}, TemplateRef{Path: "/b.html"}},
		{"pointer", &TemplateRef{Name: "n"}, TemplateRef{Name: "n"}},
		{"ordered map", ordered, TemplateRef{Path: "/o.html"}},
		{"unsupported", "/c.html", TemplateRef{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := NewScope(map[string]any{KeyTemplate: tt.template})
			assert.Equal(t, tt.expected, scope.TemplateRef())
		})
	}
}

func TestTemplateRef_String(t *testing.T) {
	assert.Equal(t, "/a.html", TemplateRef{Path: "/a.html"}.String())
	assert.Equal(t, "/a.html#item", TemplateRef{Path: "/a.html", Name: "item"}.String())
}

func TestDecodeScopeYAML(t *testing.T) {
	vars, err := DecodeScopeYAML([]byte(`
title: Posts
count: 3
ratio: 0.5
draft: false
empty:
tags: [go, html]
defaults: &defaults
  color: red
theme: *defaults
posts:
  second:
    title: World
  first:
    title: Hello
`))
	require.NoError(t, err)

	assert.Equal(t, "Posts", vars["title"])
	assert.Equal(t, 3, vars["count"])
	assert.Equal(t, 0.5, vars["ratio"])
	assert.Equal(t, false, vars["draft"])
	assert.Nil(t, vars["empty"])
	assert.Equal(t, []any{"go", "html"}, vars["tags"])

	theme, ok := vars["theme"].(*OrderedMap)
	require.True(t, ok)
	color, _ := theme.Get("color")
	assert.Equal(t, "red", color)

	posts, ok := vars["posts"].(*OrderedMap)
	require.True(t, ok)
	assert.Equal(t, []string{"second", "first"}, posts.Keys())
}

func TestDecodeScopeYAML_EmptyDocument(t *testing.T) {
	vars, err := DecodeScopeYAML([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestDecodeScopeYAML_Errors(t *testing.T) {
	_, err := DecodeScopeYAML([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = DecodeScopeYAML([]byte("key: [unclosed"))
	assert.Error(t, err)
}
