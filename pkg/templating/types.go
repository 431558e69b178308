// Package templating renders HTML templates driven by data-fly-* directive
// attributes.
//
// A template document is an HTML file containing one or more <template>
// elements. An element carrying data-fly-name="X" is addressable by name; an
// element without it is the default template of its document. Rendering
// clones the template's content and walks it, applying the directives below
// in a fixed order per element:
//
//   - data-fly-test[.name] / data-fly-not[.name]: drop the element when the
//     expression is falsy (truthy for "not")
//   - data-fly-repeat[.name]: one clone per collection entry
//   - data-fly-attributes: set or remove attributes from a mapping
//   - data-fly-content: replace the children with the resolved value
//   - data-fly-include: replace the children with another rendered template
//   - data-fly-unwrap: replace the element with its children after rendering
//
// Text nodes and non-directive attribute values may contain ${path}
// placeholders, which resolve dotted paths against the render scope.
package templating

import (
	"context"
	"fmt"
)

// Directive attribute names.
const (
	AttrPrefix     = "data-fly-"
	AttrTest       = "data-fly-test"
	AttrNot        = "data-fly-not"
	AttrRepeat     = "data-fly-repeat"
	AttrContent    = "data-fly-content"
	AttrAttributes = "data-fly-attributes"
	AttrInclude    = "data-fly-include"
	AttrUnwrap     = "data-fly-unwrap"
	AttrName       = "data-fly-name"
)

// Well-known scope keys.
const (
	KeyBlock        = "block"
	KeyBlockName    = "blockName"
	KeyCodeBasePath = "codeBasePath"
	KeyTemplate     = "template"
	KeyCurrentNode  = "currentNode"
)

// DefaultRepeatName is the scope key used for repeat items when the
// directive carries no sub-name.
const DefaultRepeatName = "item"

// DefaultMaxIncludeDepth limits nested data-fly-include directives.
const DefaultMaxIncludeDepth = 32

// Call carries the arguments of a Func invocation.
type Call struct {
	// Receiver is the value the function was looked up on. For a top-level
	// path segment this is the *Scope itself.
	Receiver any

	// Scope is a shallow copy of the render scope at call time.
	Scope map[string]any
}

// Func is a scope value that is invoked when an expression path reaches it.
// The returned value continues the path walk. Blocking is allowed; an error
// aborts the render.
//
// Example:
//
//	scope := templating.NewScope(map[string]any{
//	    "greeting": templating.Func(func(ctx context.Context, call templating.Call) (any, error) {
//	        return "Hello " + templating.Stringify(call.Scope["name"]), nil
//	    }),
//	})
type Func func(ctx context.Context, call Call) (any, error)

// TemplateRef identifies a template by document path and optional name.
type TemplateRef struct {
	Path string
	Name string
}

// String returns the ref in include notation (path#name).
func (r TemplateRef) String() string {
	if r.Name == "" {
		return r.Path
	}
	return fmt.Sprintf("%s#%s", r.Path, r.Name)
}

// values exposes the ref to expressions as template.path / template.name.
func (r TemplateRef) values() map[string]any {
	return map[string]any{
		"path": r.Path,
		"name": r.Name,
	}
}
