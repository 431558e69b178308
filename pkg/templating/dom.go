package templating

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewFragment returns an empty container for sibling nodes. Fragments are
// html.DocumentNode values without a doctype; rendering one renders its
// children.
func NewFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

// ParseFragment parses markup as the children of a <body> element and
// returns them attached to a new fragment.
func ParseFragment(markup string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML fragment: %w", err)
	}

	fragment := NewFragment()
	for _, n := range nodes {
		fragment.AppendChild(n)
	}
	return fragment, nil
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("failed to render HTML: %w", err)
		}
	}
	return b.String(), nil
}

// cloneNode returns a deep, detached copy of n.
func cloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}

// detachChildren removes all children of n and returns them in order.
func detachChildren(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		children = append(children, c)
		c = next
	}
	return children
}

func replaceChildren(n *html.Node, children []*html.Node) {
	detachChildren(n)
	for _, c := range children {
		n.AppendChild(c)
	}
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func newText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// findDirective returns the first attribute named base or base.<name>.
func findDirective(n *html.Node, base string) (key, val string, ok bool) {
	for _, a := range n.Attr {
		if a.Namespace != "" {
			continue
		}
		if a.Key == base || strings.HasPrefix(a.Key, base+".") {
			return a.Key, a.Val, true
		}
	}
	return "", "", false
}

// directiveName returns the lower-cased sub-name of a directive attribute
// ("data-fly-test.Foo" -> "foo").
func directiveName(key, base string) string {
	name := strings.TrimPrefix(key, base)
	name = strings.TrimPrefix(name, ".")
	return strings.ToLower(name)
}

// findTemplates collects <template> elements in document order without
// descending into template contents.
func findTemplates(n *html.Node) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Template {
				found = append(found, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return found
}

// templateContent clones the content of a <template> element into a new
// fragment.
func templateContent(tmpl *html.Node) *html.Node {
	fragment := NewFragment()
	for c := tmpl.FirstChild; c != nil; c = c.NextSibling {
		fragment.AppendChild(cloneNode(c))
	}
	return fragment
}
