package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Ordered is a string-keyed map that remembers the order keys appeared in
// the source document.
type Ordered[V any] struct {
	keys   []string
	values map[string]V
}

// Set adds or replaces key. New keys are appended to the key order.
func (o *Ordered[V]) Set(key string, value V) {
	if o.values == nil {
		o.values = make(map[string]V)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o Ordered[V]) Get(key string) (V, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o Ordered[V]) Keys() []string { return o.keys }

func (o Ordered[V]) Len() int { return len(o.keys) }

func (o *Ordered[V]) UnmarshalYAML(node *yaml.Node) error {
	o.keys = nil
	o.values = nil
	if node.Kind != yaml.MappingNode {
		if node.Tag == "!!null" {
			return nil
		}
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var v V
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		o.Set(key, v)
	}
	return nil
}
