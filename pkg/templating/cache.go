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
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// TemplateCache stores parsed <template> elements by document path and
// name.
//
// The cache is append-only: the first registration of a key wins and
// entries are never evicted, so cached templates can be shared by concurrent
// renders. Cached elements are never mutated; renders work on clones.
//
// Thread-safe for concurrent access. Create one per page session (or per
// test) and hand it to every Engine that should share it.
type TemplateCache struct {
	mu        sync.RWMutex
	templates map[string]*html.Node
	documents map[string][]string // path -> registered template names
	fetches   singleflight.Group
}

// NewTemplateCache creates an empty TemplateCache.
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		templates: make(map[string]*html.Node),
		documents: make(map[string][]string),
	}
}

// CacheKey builds the cache key for a template. Both parts are lower-cased
// and every rune other than [a-z0-9] is replaced by '-'.
//
// Example:
//
//	CacheKey("/blocks/Hero/hero.html", "Item")  // "-blocks-hero-hero-html#item"
func CacheKey(path, name string) string {
	return normalizeKeyPart(path) + "#" + normalizeKeyPart(name)
}

func normalizeKeyPart(s string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, s)
}

// Lookup returns the cached <template> element for path and name.
// The returned node must not be modified.
func (c *TemplateCache) Lookup(path, name string) (*html.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tmpl, ok := c.templates[CacheKey(path, name)]
	return tmpl, ok
}

// Len returns the number of cached templates.
func (c *TemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// HasDocument returns true if the document at path has been fetched and
// registered.
func (c *TemplateCache) HasDocument(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.documents[normalizeKeyPart(path)]
	return ok
}

// Names returns the template names registered from the document at path,
// sorted. The default template is listed as "".
func (c *TemplateCache) Names(path string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := append([]string(nil), c.documents[normalizeKeyPart(path)]...)
	sort.Strings(names)
	return names
}

// Register adds every <template> element of doc under path, keyed by its
// data-fly-name attribute. Keys that already exist keep their first
// registration. It returns the number of templates added.
func (c *TemplateCache) Register(path string, doc *html.Node) int {
	templates := findTemplates(doc)

	c.mu.Lock()
	defer c.mu.Unlock()

	docKey := normalizeKeyPart(path)
	names := c.documents[docKey]
	if names == nil {
		names = []string{}
	}

	added := 0
	for _, tmpl := range templates {
		name, _ := getAttr(tmpl, AttrName)
		key := CacheKey(path, name)
		if _, exists := c.templates[key]; exists {
			continue
		}
		tmpl.Parent.RemoveChild(tmpl)
		c.templates[key] = tmpl
		names = append(names, name)
		added++
	}
	c.documents[docKey] = names

	return added
}
