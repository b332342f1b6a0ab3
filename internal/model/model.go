package model

import (
	"strings"
)

// Standard data source definitions handed to code generators. Nothing in
// this package is mutated after Transform returns.

type PrimitiveType string

const (
	Void    PrimitiveType = ""
	String  PrimitiveType = "string"
	Number  PrimitiveType = "number"
	Boolean PrimitiveType = "boolean"
	File    PrimitiveType = "File"
	Object  PrimitiveType = "object"
	Any     PrimitiveType = "any"
)

// Parameter locations as they appear in Swagger documents.
const (
	InQuery    = "query"
	InPath     = "path"
	InBody     = "body"
	InHeader   = "header"
	InFormData = "formData"
)

// SequenceType is the canonical generic name List«…» wrappers rewrite to.
const SequenceType = "Array"

// DataType describes the shape of a value. When Reference is set,
// PrimitiveType is empty.
type DataType struct {
	IsArr         bool          `json:"isArr" yaml:"isArr"`
	PrimitiveType PrimitiveType `json:"primitiveType" yaml:"primitiveType"`
	Reference     string        `json:"reference" yaml:"reference"`
	Enum          []any         `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// TypeExpr renders the data type the way generated declarations spell it,
// e.g. "Array<defs.api.Pet>" or "number".
func (d DataType) TypeExpr() string {
	inner := d.Reference
	if inner == "" {
		inner = string(d.PrimitiveType)
	}
	if inner == "" {
		inner = string(Any)
	}
	if d.IsArr {
		return SequenceType + "<" + inner + ">"
	}
	return inner
}

type Property struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool     `json:"required" yaml:"required"`
	DataType    DataType `json:"dataType" yaml:"dataType"`
	In          string   `json:"in,omitempty" yaml:"in,omitempty"`
}

type Interface struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Method      string     `json:"method" yaml:"method"`
	Path        string     `json:"path" yaml:"path"`
	Consumes    []string   `json:"consumes,omitempty" yaml:"consumes,omitempty"`
	Response    DataType   `json:"response" yaml:"response"`
	Parameters  []Property `json:"parameters" yaml:"parameters"`
}

type Module struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Interfaces  []Interface `json:"interfaces" yaml:"interfaces"`
}

type BaseClass struct {
	Name        string     `json:"name" yaml:"name"`
	JustName    string     `json:"justName" yaml:"justName"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  []Property `json:"properties" yaml:"properties"`
}

// NewBaseClass builds a BaseClass and derives its JustName.
func NewBaseClass(name, description string, properties []Property) BaseClass {
	return BaseClass{
		Name:        name,
		JustName:    JustName(name),
		Description: description,
		Properties:  properties,
	}
}

// JustName strips a generic parameter list: "Page<T0,T1>" -> "Page".
func JustName(name string) string {
	if i := strings.IndexByte(name, '<'); i > 0 {
		return name[:i]
	}
	return name
}

type DataSource struct {
	Name        string      `json:"name" yaml:"name"`
	Mods        []Module    `json:"mods" yaml:"mods"`
	BaseClasses []BaseClass `json:"baseClasses" yaml:"baseClasses"`
}

// InterfaceCount sums the interfaces across all modules.
func (ds *DataSource) InterfaceCount() int {
	n := 0
	for _, m := range ds.Mods {
		n += len(m.Interfaces)
	}
	return n
}
