package templating

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// renderPass holds the state of one top-level render.
//
// Every node a pass touches belongs to a clone made for this pass, so
// directive processors may restructure it freely. Children are always
// walked from a detached snapshot and re-appended, which keeps structural
// edits from disturbing the iteration.
type renderPass struct {
	engine *Engine
	logger *slog.Logger

	// unwrap lists elements marked by data-fly-unwrap, in marking order.
	unwrap []*html.Node

	// depth is the current include nesting.
	depth int
}

// renderTemplate resolves ref, clones its content and renders the clone.
func (p *renderPass) renderTemplate(ctx context.Context, ref TemplateRef, scope *Scope) (*html.Node, error) {
	if p.depth >= p.engine.maxIncludeDepth {
		return nil, NewIncludeDepthError(ref, p.engine.maxIncludeDepth)
	}

	tmpl, err := p.engine.resolveTemplate(ctx, ref)
	if err != nil {
		return nil, err
	}

	fragment := templateContent(tmpl)

	p.depth++
	defer func() { p.depth-- }()

	if err := p.renderChildren(ctx, fragment, scope); err != nil {
		return nil, err
	}
	return fragment, nil
}

// renderNode renders n and returns the nodes that take its place: none when
// a test fails, the clones of a repeat, or n itself.
func (p *renderPass) renderNode(ctx context.Context, n *html.Node, scope *Scope) ([]*html.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scope.Set(KeyCurrentNode, n)

	walkChildren := true

	switch n.Type {
	case html.ElementNode:
		keep, err := p.processTest(ctx, n, scope)
		if err != nil {
			return nil, err
		}
		if !keep {
			return nil, nil
		}

		repeated, handled, err := p.processRepeat(ctx, n, scope)
		if err != nil {
			return nil, err
		}
		if handled {
			return repeated, nil
		}

		if err := p.processAttributes(ctx, n, scope); err != nil {
			return nil, err
		}

		contentSet, err := p.processContent(ctx, n, scope)
		if err != nil {
			return nil, err
		}

		included, err := p.processInclude(ctx, n, scope)
		if err != nil {
			return nil, err
		}

		if err := p.processUnwrap(ctx, n, scope); err != nil {
			return nil, err
		}

		// nested <template> content stays inert
		walkChildren = !contentSet && !included && n.DataAtom != atom.Template

	case html.TextNode:
		if err := p.processText(ctx, n, scope); err != nil {
			return nil, err
		}
		walkChildren = false
	}

	if walkChildren {
		if err := p.renderChildren(ctx, n, scope); err != nil {
			return nil, err
		}
	}

	return []*html.Node{n}, nil
}

// renderChildren renders every child of parent in order under scope.
func (p *renderPass) renderChildren(ctx context.Context, parent *html.Node, scope *Scope) error {
	for _, child := range detachChildren(parent) {
		rendered, err := p.renderNode(ctx, child, scope)
		if err != nil {
			return err
		}
		for _, r := range rendered {
			parent.AppendChild(r)
		}
	}
	return nil
}

// sweepUnwrap replaces every marked element with its children.
func (p *renderPass) sweepUnwrap() {
	for _, n := range p.unwrap {
		parent := n.Parent
		if parent == nil {
			continue
		}
		for _, c := range detachChildren(n) {
			parent.InsertBefore(c, n)
		}
		parent.RemoveChild(n)
	}
}
