package templating

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// processTest applies data-fly-test and data-fly-not. It returns false when
// the element must be dropped.
func (p *renderPass) processTest(ctx context.Context, n *html.Node, scope *Scope) (bool, error) {
	for _, directive := range []struct {
		base   string
		negate bool
	}{
		{AttrTest, false},
		{AttrNot, true},
	} {
		key, expression, ok := findDirective(n, directive.base)
		if !ok {
			continue
		}
		removeAttr(n, key)

		value, err := Resolve(ctx, expression, scope)
		if err != nil {
			return false, err
		}

		result := Truthy(value)
		if directive.negate {
			result = !result
		}

		if name := directiveName(key, directive.base); name != "" {
			scope.Set(name, result)
		}

		if !result {
			return false, nil
		}
	}
	return true, nil
}

// processRepeat applies data-fly-repeat. handled is true whenever the
// directive is present; repeated then holds the rendered clones, possibly
// none.
func (p *renderPass) processRepeat(ctx context.Context, n *html.Node, scope *Scope) (repeated []*html.Node, handled bool, err error) {
	key, expression, ok := findDirective(n, AttrRepeat)
	if !ok {
		return nil, false, nil
	}
	removeAttr(n, key)

	name := directiveName(key, AttrRepeat)
	if name == "" {
		name = DefaultRepeatName
	}

	collection, err := Resolve(ctx, expression, scope)
	if err != nil {
		return nil, true, err
	}

	for i, item := range entries(collection) {
		clone := cloneNode(n)
		iterationScope := scope.Derive(map[string]any{
			name:            item.value,
			name + "Index":  i,
			name + "Number": i + 1,
			name + "Key":    item.key,
		})

		rendered, err := p.renderNode(ctx, clone, iterationScope)
		if err != nil {
			return nil, true, err
		}
		repeated = append(repeated, rendered...)
	}

	return repeated, true, nil
}

// processAttributes applies data-fly-attributes, then interpolates every
// attribute outside the data-fly-* namespace.
func (p *renderPass) processAttributes(ctx context.Context, n *html.Node, scope *Scope) error {
	if expression, ok := getAttr(n, AttrAttributes); ok {
		removeAttr(n, AttrAttributes)

		attrs, err := Resolve(ctx, expression, scope)
		if err != nil {
			return err
		}
		for _, attr := range mappingEntries(attrs) {
			if attr.value == nil {
				removeAttr(n, attr.key)
			} else {
				setAttr(n, attr.key, Stringify(attr.value))
			}
		}
	}

	values := make([]string, len(n.Attr))
	updated := make([]bool, len(n.Attr))

	g, gctx := errgroup.WithContext(ctx)
	if p.engine.concurrency > 0 {
		g.SetLimit(p.engine.concurrency)
	}
	for i, attr := range n.Attr {
		if strings.HasPrefix(attr.Key, AttrPrefix) {
			continue
		}
		g.Go(func() error {
			text, changed, err := interpolate(gctx, attr.Val, scope, p.engine.concurrency)
			if err != nil {
				return err
			}
			values[i], updated[i] = text, changed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range n.Attr {
		if updated[i] {
			n.Attr[i].Val = values[i]
		}
	}
	return nil
}

// processContent applies data-fly-content. It returns true when the
// directive replaced the children.
func (p *renderPass) processContent(ctx context.Context, n *html.Node, scope *Scope) (bool, error) {
	expression, ok := getAttr(n, AttrContent)
	if !ok {
		return false, nil
	}
	removeAttr(n, AttrContent)

	content, err := Resolve(ctx, expression, scope)
	if err != nil {
		return false, err
	}

	replaceChildren(n, contentNodes(content))
	return true, nil
}

// contentNodes converts a resolved content value into nodes to insert.
// Nodes are cloned so values owned by the caller are never moved.
func contentNodes(content any) []*html.Node {
	switch c := content.(type) {
	case nil:
		return []*html.Node{newText("")}
	case string:
		return []*html.Node{newText(c)}
	case *html.Node:
		return nodeContent(c)
	}

	if !isSequence(content) {
		return []*html.Node{newText(Stringify(content))}
	}

	var nodes []*html.Node
	for _, item := range entries(content) {
		if node, ok := item.value.(*html.Node); ok {
			nodes = append(nodes, nodeContent(node)...)
			continue
		}
		nodes = append(nodes, newText(Stringify(item.value)))
	}
	return nodes
}

// nodeContent clones a node for insertion. A fragment contributes its
// children.
func nodeContent(n *html.Node) []*html.Node {
	if n == nil {
		return []*html.Node{newText("")}
	}
	if n.Type != html.DocumentNode {
		return []*html.Node{cloneNode(n)}
	}

	var nodes []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, cloneNode(c))
	}
	return nodes
}

// processInclude applies data-fly-include. It returns true when the
// included template replaced the children.
//
// A target starting with '/' is "path#name"; anything else names a
// template in the current template's document.
func (p *renderPass) processInclude(ctx context.Context, n *html.Node, scope *Scope) (bool, error) {
	raw, ok := getAttr(n, AttrInclude)
	if !ok {
		return false, nil
	}
	removeAttr(n, AttrInclude)

	target, _, err := interpolate(ctx, raw, scope, p.engine.concurrency)
	if err != nil {
		return false, err
	}
	target = strings.TrimSpace(target)

	ref := TemplateRef{Path: scope.TemplateRef().Path, Name: target}
	if strings.HasPrefix(target, "/") {
		path, name, _ := strings.Cut(target, "#")
		ref = TemplateRef{Path: path, Name: name}
	}

	p.logger.Debug("including template", "include", ref.String(), "depth", p.depth)

	fragment, err := p.renderTemplate(ctx, ref, scope.Derive(map[string]any{KeyTemplate: ref.values()}))
	if err != nil {
		return false, err
	}

	replaceChildren(n, detachChildren(fragment))
	return true, nil
}

// processUnwrap applies data-fly-unwrap. An empty value or a truthy
// expression marks the element for the post-render sweep.
func (p *renderPass) processUnwrap(ctx context.Context, n *html.Node, scope *Scope) error {
	expression, ok := getAttr(n, AttrUnwrap)
	if !ok {
		return nil
	}
	removeAttr(n, AttrUnwrap)

	if strings.TrimSpace(expression) != "" {
		value, err := Resolve(ctx, expression, scope)
		if err != nil {
			return err
		}
		if !Truthy(value) {
			return nil
		}
	}

	p.unwrap = append(p.unwrap, n)
	return nil
}

// processText interpolates a text node in place.
func (p *renderPass) processText(ctx context.Context, n *html.Node, scope *Scope) error {
	text, updated, err := interpolate(ctx, n.Data, scope, p.engine.concurrency)
	if err != nil {
		return err
	}
	if updated {
		n.Data = text
	}
	return nil
}
