package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// preprocessV2ForCompatibility rewrites loosely written Swagger v2 constructs
// in place so the document decodes into the typed model:
//   - scalar "tags" and "consumes" become single-element sequences
//   - "$ref: '#/parameters/x'" entries are replaced by the shared parameter
//   - "$ref: '#/responses/x'" entries are replaced by the shared response
//
// It reports whether anything was changed.
func preprocessV2ForCompatibility(root *yaml.Node) bool {
	doc := root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return false
		}
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return false
	}
	modified := false
	if n := mappingValue(doc, "consumes"); n != nil && scalarToSequence(n) {
		modified = true
	}
	sharedParams := mappingValue(doc, "parameters")
	sharedResponses := mappingValue(doc, "responses")

	paths := mappingValue(doc, "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return modified
	}
	for i := 1; i < len(paths.Content); i += 2 {
		item := paths.Content[i]
		if item.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(item.Content); j += 2 {
			key := strings.ToLower(item.Content[j].Value)
			value := item.Content[j+1]
			if key == "parameters" {
				if inlineRefs(value, "#/parameters/", sharedParams) {
					modified = true
				}
				continue
			}
			if !isHTTPMethod(key) || value.Kind != yaml.MappingNode {
				continue
			}
			if fixOperation(value, sharedParams, sharedResponses) {
				modified = true
			}
		}
	}
	return modified
}

func fixOperation(op, sharedParams, sharedResponses *yaml.Node) bool {
	modified := false
	for _, key := range []string{"tags", "consumes"} {
		if n := mappingValue(op, key); n != nil && scalarToSequence(n) {
			modified = true
		}
	}
	if params := mappingValue(op, "parameters"); params != nil && inlineRefs(params, "#/parameters/", sharedParams) {
		modified = true
	}
	if responses := mappingValue(op, "responses"); responses != nil && responses.Kind == yaml.MappingNode {
		for i := 1; i < len(responses.Content); i += 2 {
			if inlineRef(responses.Content[i], "#/responses/", sharedResponses) {
				modified = true
			}
		}
	}
	return modified
}

// inlineRefs replaces every "$ref" entry of a sequence that points into
// shared with a copy of the referenced node. Unknown refs are left alone.
func inlineRefs(seq *yaml.Node, prefix string, shared *yaml.Node) bool {
	if seq.Kind != yaml.SequenceNode {
		return false
	}
	modified := false
	for _, n := range seq.Content {
		if inlineRef(n, prefix, shared) {
			modified = true
		}
	}
	return modified
}

func inlineRef(n *yaml.Node, prefix string, shared *yaml.Node) bool {
	if shared == nil || n.Kind != yaml.MappingNode {
		return false
	}
	ref := mappingValue(n, "$ref")
	if ref == nil || !strings.HasPrefix(ref.Value, prefix) {
		return false
	}
	target := mappingValue(shared, strings.TrimPrefix(ref.Value, prefix))
	if target == nil || target.Kind != yaml.MappingNode {
		return false
	}
	*n = *target
	return true
}

func scalarToSequence(n *yaml.Node) bool {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return false
	}
	item := *n
	*n = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{&item}, Line: item.Line, Column: item.Column}
	return true
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
