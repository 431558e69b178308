package templating

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeScopeYAML parses a YAML mapping into scope variables.
//
// Nested mappings become *OrderedMap values, so repeat and attributes
// directives iterate them in document order. Sequences become []any and
// scalars their natural Go types.
//
// Example:
//
//	vars, err := templating.DecodeScopeYAML([]byte(`
//	title: Posts
//	posts:
//	  first: {title: Hello}
//	  second: {title: World}
//	`))
func DecodeScopeYAML(data []byte) (map[string]any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if root.Kind == 0 {
		return map[string]any{}, nil
	}

	value, err := decodeYAMLNode(&root)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case nil:
		return map[string]any{}, nil
	case *OrderedMap:
		return v.Map(), nil
	default:
		return nil, fmt.Errorf("scope document must be a mapping, got %T", value)
	}
}

func decodeYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return decodeYAMLNode(n.Content[0])

	case yaml.MappingNode:
		m := NewOrderedMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			value, err := decodeYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(n.Content[i].Value, value)
		}
		return m, nil

	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			value, err := decodeYAMLNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil

	case yaml.AliasNode:
		return decodeYAMLNode(n.Alias)

	case yaml.ScalarNode:
		var value any
		if err := n.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: failed to decode scalar: %w", n.Line, err)
		}
		return value, nil
	}

	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}
