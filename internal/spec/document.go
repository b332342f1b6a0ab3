package spec

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Raw Swagger 2.0 document as handed to the normalizer. Only the parts the
// normalizer reads are modeled; everything else is ignored on decode.

type Document struct {
	// Name labels the resulting data source; it is not part of the
	// document and is set by the caller.
	Name string `yaml:"-"`

	Swagger     string              `yaml:"swagger"`
	Info        Info                `yaml:"info"`
	BasePath    string              `yaml:"basePath"`
	Consumes    []string            `yaml:"consumes"`
	Paths       Ordered[PathItem]   `yaml:"paths"`
	Tags        []Tag               `yaml:"tags"`
	Definitions Ordered[Definition] `yaml:"definitions"`
}

// Definitions maps a definition name to its schema in document order.
type Definitions = Ordered[Definition]

type Info struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

type Tag struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Definition struct {
	Type        string          `yaml:"type"`
	Description string          `yaml:"description"`
	Required    []string        `yaml:"required"`
	Properties  Ordered[Schema] `yaml:"properties"`
}

// IsRequired reports whether the definition lists name as required.
func (d Definition) IsRequired(name string) bool {
	for _, r := range d.Required {
		if r == name {
			return true
		}
	}
	return false
}

type Schema struct {
	Type        string  `yaml:"type"`
	Format      string  `yaml:"format"`
	Ref         string  `yaml:"$ref"`
	Items       *Schema `yaml:"items"`
	Enum        []any   `yaml:"enum"`
	Description string  `yaml:"description"`
	Required    Flag    `yaml:"required"`
}

type Parameter struct {
	Name        string  `yaml:"name"`
	In          string  `yaml:"in"`
	Description string  `yaml:"description"`
	Required    bool    `yaml:"required"`
	Type        string  `yaml:"type"`
	Format      string  `yaml:"format"`
	Items       *Schema `yaml:"items"`
	Enum        []any   `yaml:"enum"`
	Schema      *Schema `yaml:"schema"`
}

type Response struct {
	Description string  `yaml:"description"`
	Schema      *Schema `yaml:"schema"`
}

type Operation struct {
	// Method and Path are filled in by Document.Operations.
	Method string `yaml:"-"`
	Path   string `yaml:"-"`

	Tags        []string          `yaml:"tags"`
	OperationID string            `yaml:"operationId"`
	Summary     string            `yaml:"summary"`
	Description string            `yaml:"description"`
	Consumes    []string          `yaml:"consumes"`
	Parameters  []Parameter       `yaml:"parameters"`
	Responses   Ordered[Response] `yaml:"responses"`
}

// SuccessSchema returns the schema of the 200 response, or an empty schema.
func (o Operation) SuccessSchema() Schema {
	if r, ok := o.Responses.Get("200"); ok && r.Schema != nil {
		return *r.Schema
	}
	return Schema{}
}

// HTTP methods a path item may hold, in the order they are flattened when
// a document is built programmatically.
var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch"}

func isHTTPMethod(key string) bool {
	for _, m := range httpMethods {
		if m == key {
			return true
		}
	}
	return false
}

// PathItem holds the operations of one path in document order, plus the
// parameters shared by all of them.
type PathItem struct {
	Parameters []Parameter
	methods    []string
	operations map[string]Operation
}

func (p *PathItem) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.ToLower(node.Content[i].Value)
		value := node.Content[i+1]
		switch {
		case key == "parameters":
			if err := value.Decode(&p.Parameters); err != nil {
				return fmt.Errorf("parameters: %w", err)
			}
		case isHTTPMethod(key):
			var op Operation
			if err := value.Decode(&op); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			p.SetOperation(key, op)
		}
	}
	return nil
}

// SetOperation adds or replaces the operation for method.
func (p *PathItem) SetOperation(method string, op Operation) {
	method = strings.ToLower(method)
	if p.operations == nil {
		p.operations = make(map[string]Operation)
	}
	if _, ok := p.operations[method]; !ok {
		p.methods = append(p.methods, method)
	}
	p.operations[method] = op
}

// Methods lists the methods defined on the path in document order.
func (p PathItem) Methods() []string { return p.methods }

func (p PathItem) Operation(method string) (Operation, bool) {
	op, ok := p.operations[strings.ToLower(method)]
	return op, ok
}

// Operations flattens every path × method into a list of operations with
// Method and Path set. Path-level parameters are appended after the
// operation's own, and document-level consumes apply when an operation
// declares none. The document itself is left untouched.
func (d *Document) Operations(opts ...FilterOption) []Operation {
	cfg := newFilterConfig(opts)
	var out []Operation
	for _, path := range d.Paths.Keys() {
		item, _ := d.Paths.Get(path)
		for _, method := range item.Methods() {
			op, _ := item.Operation(method)
			if !cfg.allow(path, method, op.Tags) {
				continue
			}
			op.Path = path
			op.Method = method
			if len(item.Parameters) > 0 {
				params := make([]Parameter, 0, len(op.Parameters)+len(item.Parameters))
				params = append(params, op.Parameters...)
				op.Parameters = append(params, item.Parameters...)
			}
			if len(op.Consumes) == 0 {
				op.Consumes = d.Consumes
			}
			out = append(out, op)
		}
	}
	return out
}

// Flag is a boolean that tolerates non-boolean YAML values. Swagger
// documents put "required: true" on properties while inline object
// schemas use "required: [..]"; the latter decodes as false.
type Flag bool

func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if node.Kind == yaml.ScalarNode && node.Decode(&b) == nil {
		*f = Flag(b)
	}
	return nil
}
