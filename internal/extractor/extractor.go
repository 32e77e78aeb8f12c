package extractor

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

// DefaultPlaceholder is rendered for missing optional fields.
const DefaultPlaceholder = "N/A"

// Extractor converts structured knowledge-base documents into chunks.
// It is safe for concurrent use.
type Extractor struct {
	sections    map[string]SectionSpec
	placeholder string
	strict      bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSections adds or replaces section specs by key.
func WithSections(specs ...SectionSpec) Option {
	return func(x *Extractor) {
		for _, s := range specs {
			x.sections[s.Key] = s
		}
	}
}

// WithPlaceholder sets the token rendered for missing optional fields.
func WithPlaceholder(p string) Option {
	return func(x *Extractor) {
		if p != "" {
			x.placeholder = p
		}
	}
}

// WithStrict makes undeclared top-level sections a schema error instead of
// rendering them generically.
func WithStrict() Option {
	return func(x *Extractor) {
		x.strict = true
	}
}

// New creates an extractor with the default hospital sections.
func New(opts ...Option) *Extractor {
	x := &Extractor{
		sections:    make(map[string]SectionSpec),
		placeholder: DefaultPlaceholder,
	}
	for _, s := range DefaultSections() {
		x.sections[s.Key] = s
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ExtractReader reads a whole document from r and extracts it.
func (x *Extractor) ExtractReader(r io.Reader) ([]domain.Chunk, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return x.Extract(data)
}

// Extract parses a JSON or YAML document and returns its chunks in source order.
func (x *Extractor) Extract(data []byte) ([]domain.Chunk, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, &domain.SchemaError{Index: -1, Reason: "parse: " + err.Error()}
	}
	if len(doc.Content) == 0 {
		return nil, &domain.SchemaError{Index: -1, Reason: "document is empty"}
	}

	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, &domain.SchemaError{Index: -1, Reason: "root is not a mapping"}
	}

	var chunks []domain.Chunk
	seenKeys := make(map[string]bool)
	seenIDs := make(map[string]string)

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, value := root.Content[i], resolve(root.Content[i+1])
		if keyNode.Kind != yaml.ScalarNode || keyNode.Value == "" {
			return nil, &domain.SchemaError{Index: -1, Reason: fmt.Sprintf("section key at line %d is not a name", keyNode.Line)}
		}
		key := keyNode.Value
		if seenKeys[key] {
			return nil, &domain.SchemaError{Section: key, Index: -1, Reason: "duplicate section"}
		}
		seenKeys[key] = true

		// Absent and null sections contribute nothing.
		if value == nil || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
			continue
		}

		spec, ok := x.sections[key]
		if !ok {
			if x.strict {
				return nil, &domain.SchemaError{Section: key, Index: -1, Reason: "unknown section"}
			}
			spec = genericSpec(key, value)
		}

		sectionChunks, err := x.section(spec, value)
		if err != nil {
			return nil, err
		}
		for _, c := range sectionChunks {
			if prev, dup := seenIDs[c.ID]; dup {
				return nil, &domain.SchemaError{
					Section: key,
					Index:   -1,
					Reason:  fmt.Sprintf("chunk id %q collides with section %s", c.ID, prev),
				}
			}
			seenIDs[c.ID] = key
		}
		chunks = append(chunks, sectionChunks...)
	}

	return chunks, nil
}

// genericSpec derives a spec for an undeclared section from its shape.
func genericSpec(key string, value *yaml.Node) SectionSpec {
	spec := SectionSpec{Key: key, ID: key, Label: humanize(key), Kind: KindSingle}
	if value.Kind == yaml.SequenceNode {
		spec.Kind = KindList
	}
	return spec
}

func (x *Extractor) section(spec SectionSpec, value *yaml.Node) ([]domain.Chunk, error) {
	if spec.Kind == KindSingle {
		text, err := x.record(spec, value, -1)
		if err != nil {
			return nil, err
		}
		return []domain.Chunk{{ID: spec.ID, Text: text}}, nil
	}

	if value.Kind != yaml.SequenceNode {
		return nil, &domain.SchemaError{Section: spec.Key, Index: -1, Reason: "expected a list"}
	}

	chunks := make([]domain.Chunk, 0, len(value.Content))
	for i, item := range value.Content {
		text, err := x.record(spec, resolve(item), i)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, domain.Chunk{ID: spec.ID + "-" + strconv.Itoa(i), Text: text})
	}
	return chunks, nil
}

// record renders one single-section value or one list element.
func (x *Extractor) record(spec SectionSpec, n *yaml.Node, index int) (string, error) {
	r := &renderer{placeholder: x.placeholder}

	if len(spec.Fields) == 0 {
		if n.Kind == yaml.MappingNode && !isEmpty(n) {
			r.lines = append(r.lines, spec.Label+":")
			r.fields(n, nil, 1)
		} else {
			r.field(spec.Label, n, 0)
		}
		return r.text(), nil
	}

	if n.Kind != yaml.MappingNode {
		return "", &domain.SchemaError{Section: spec.Key, Index: index, Reason: "expected a mapping"}
	}

	for _, f := range spec.Fields {
		var value *yaml.Node
		for _, k := range f.Keys {
			if v := lookup(n, k); !isEmpty(v) {
				value = v
				break
			}
		}
		if value == nil && f.Required {
			return "", &domain.SchemaError{
				Section: spec.Key,
				Index:   index,
				Field:   f.Keys[0],
				Reason:  "required field is missing or empty",
			}
		}
		r.field(f.Label, value, 0)
	}
	r.fields(n, spec.consumes(), 0)

	return r.text(), nil
}
