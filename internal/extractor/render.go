package extractor

import (
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// resolve follows aliases to the node they point at.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// isEmpty reports whether a node carries no renderable value.
func isEmpty(n *yaml.Node) bool {
	n = resolve(n)
	if n == nil {
		return true
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Tag == "!!null" || strings.TrimSpace(n.Value) == ""
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if !isEmpty(item) {
				return false
			}
		}
		return true
	case yaml.MappingNode:
		return len(n.Content) == 0
	default:
		return true
	}
}

// isFlatList reports whether a sequence holds only scalars.
func isFlatList(n *yaml.Node) bool {
	for _, item := range n.Content {
		if resolve(item).Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}

// scalarText collapses whitespace so every value fits on one line.
func scalarText(n *yaml.Node) string {
	return strings.Join(strings.Fields(n.Value), " ")
}

// lookup returns the value node for key in a mapping node.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolve(m.Content[i+1])
		}
	}
	return nil
}

// humanize turns a source key like "contact_numbers" into "Contact Numbers".
func humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || unicode.IsSpace(r) })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// renderer accumulates "Label: value" lines.
type renderer struct {
	placeholder string
	lines       []string
}

func (r *renderer) text() string {
	return strings.Join(r.lines, "\n")
}

// field writes one labelled value. Nested mappings and lists of records are
// written as indented blocks below the label.
func (r *renderer) field(label string, n *yaml.Node, depth int) {
	n = resolve(n)
	indent := strings.Repeat("  ", depth)

	if isEmpty(n) {
		r.lines = append(r.lines, indent+label+": "+r.placeholder)
		return
	}

	switch n.Kind {
	case yaml.ScalarNode:
		r.lines = append(r.lines, indent+label+": "+scalarText(n))

	case yaml.SequenceNode:
		if isFlatList(n) {
			values := make([]string, 0, len(n.Content))
			for _, item := range n.Content {
				if !isEmpty(item) {
					values = append(values, scalarText(resolve(item)))
				}
			}
			r.lines = append(r.lines, indent+label+": "+strings.Join(values, ", "))
			return
		}
		r.lines = append(r.lines, indent+label+":")
		for i, item := range n.Content {
			r.field("#"+strconv.Itoa(i+1), item, depth+1)
		}

	case yaml.MappingNode:
		r.lines = append(r.lines, indent+label+":")
		r.fields(n, nil, depth+1)
	}
}

// fields writes every pair of a mapping except the skipped keys, in source order.
func (r *renderer) fields(m *yaml.Node, skip map[string]bool, depth int) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i].Value
		if skip[key] {
			continue
		}
		r.field(humanize(key), m.Content[i+1], depth)
	}
}
