package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// parse returns the document node for JSON or YAML input. JSON goes through
// encoding/json so every JSON escape decodes, including \/ and surrogate
// pairs which the YAML scanner rejects.
func parse(data []byte) (*yaml.Node, error) {
	if json.Valid(data) {
		return jsonDocument(data)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// jsonDocument walks the JSON token stream into the same node tree the YAML
// parser builds, keeping key order and literal number text.
func jsonDocument(data []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	w := &jsonWalker{dec: dec, data: data}

	root, err := w.value()
	if err != nil {
		return nil, err
	}
	return &yaml.Node{Kind: yaml.DocumentNode, Line: 1, Content: []*yaml.Node{root}}, nil
}

type jsonWalker struct {
	dec  *json.Decoder
	data []byte
}

// line is the 1-based line of the last token read.
func (w *jsonWalker) line() int {
	offset := min(int(w.dec.InputOffset()), len(w.data))
	return bytes.Count(w.data[:offset], []byte("\n")) + 1
}

func (w *jsonWalker) value() (*yaml.Node, error) {
	tok, err := w.dec.Token()
	if err != nil {
		return nil, err
	}
	line := w.line()

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return w.object(line)
		case '[':
			return w.array(line)
		}
		return nil, fmt.Errorf("unexpected %q at line %d", t, line)
	case string:
		return scalar("!!str", t, line), nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return scalar(tag, t.String(), line), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t), line), nil
	case nil:
		return scalar("!!null", "null", line), nil
	}
	return nil, fmt.Errorf("unexpected token %v at line %d", tok, line)
}

func (w *jsonWalker) object(line int) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: line}
	for w.dec.More() {
		tok, err := w.dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		keyNode := scalar("!!str", key, w.line())

		v, err := w.value()
		if err != nil {
			return nil, err
		}
		m.Content = append(m.Content, keyNode, v)
	}
	return m, w.closing()
}

func (w *jsonWalker) array(line int) (*yaml.Node, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Line: line}
	for w.dec.More() {
		v, err := w.value()
		if err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, v)
	}
	return seq, w.closing()
}

// closing consumes the '}' or ']' ending the current container.
func (w *jsonWalker) closing() error {
	_, err := w.dec.Token()
	return err
}

func scalar(tag, value string, line int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value, Line: line}
}
