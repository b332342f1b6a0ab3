package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mark3labs/swagger2std/internal/model"
	"github.com/mark3labs/swagger2std/internal/spec"
)

func TestResolveType_PrimitiveMapping(t *testing.T) {
	t.Parallel()
	tests := map[string]model.PrimitiveType{
		"integer": model.Number,
		"file":    model.File,
		"object":  model.Void,
		"string":  model.String,
		"boolean": model.Boolean,
		"number":  model.Number,
		"":        model.Void,
	}
	for raw, want := range tests {
		got := ResolveType(spec.Schema{Type: raw}, "", "", false)
		assert.Equal(t, want, got.PrimitiveType, "type %q", raw)
		assert.False(t, got.IsArr)
		assert.Empty(t, got.Reference)
	}
}

func TestResolveType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		schema     spec.Schema
		template   string
		origin     string
		isResponse bool
		want       model.DataType
	}{
		{
			name:   "array of primitives",
			schema: spec.Schema{Type: "array", Items: &spec.Schema{Type: "integer"}},
			want:   model.DataType{IsArr: true, PrimitiveType: model.Number},
		},
		{
			name:   "nested array",
			schema: spec.Schema{Type: "array", Items: &spec.Schema{Type: "array", Items: &spec.Schema{Type: "string"}}},
			want:   model.DataType{IsArr: true},
		},
		{
			name:   "array of references",
			schema: spec.Schema{Type: "array", Items: &spec.Schema{Ref: "#/definitions/Pet"}},
			origin: "api",
			want:   model.DataType{IsArr: true, Reference: "defs.api.Pet"},
		},
		{
			name:   "reference clears primitive",
			schema: spec.Schema{Type: "object", Ref: "#/definitions/Pet"},
			origin: "api",
			want:   model.DataType{Reference: "defs.api.Pet"},
		},
		{
			name:   "plain reference without origin",
			schema: spec.Schema{Ref: "#/definitions/Pet"},
			want:   model.DataType{Reference: "Pet"},
		},
		{
			name:       "response reference without origin",
			schema:     spec.Schema{Ref: "#/definitions/Pet"},
			isResponse: true,
			want:       model.DataType{Reference: "defs.Pet"},
		},
		{
			name:       "generic response reference",
			schema:     spec.Schema{Ref: "#/definitions/Result«Pet»"},
			isResponse: true,
			want:       model.DataType{Reference: "defs.Result<defs.Pet>"},
		},
		{
			name:   "qualified reference not qualified twice",
			schema: spec.Schema{Ref: "#/definitions/Result«Pet»"},
			origin: "api",
			want:   model.DataType{Reference: "defs.api.Result<defs.api.Pet>"},
		},
		{
			name:   "origin must match a whole qualifier",
			schema: spec.Schema{Ref: "#/definitions/apiKey"},
			origin: "api",
			want:   model.DataType{Reference: "defs.api.apiKey"},
		},
		{
			name:       "list canonical is never qualified",
			schema:     spec.Schema{Ref: "#/definitions/List«Pet»"},
			isResponse: true,
			want:       model.DataType{Reference: "Array<defs.Pet>"},
		},
		{
			name:   "placeholder model",
			schema: spec.Schema{Ref: "#/definitions/Model"},
			origin: "api",
			want:   model.DataType{},
		},
		{
			name:     "self reference",
			schema:   spec.Schema{Ref: "#/definitions/Bar"},
			template: "Bar",
			origin:   "api",
			want:     model.DataType{Reference: "T0"},
		},
		{
			name:     "self reference in array",
			schema:   spec.Schema{Type: "array", Items: &spec.Schema{Ref: "#/definitions/Bar"}},
			template: "Bar",
			origin:   "api",
			want:     model.DataType{IsArr: true, Reference: "T0"},
		},
		{
			name:     "other reference inside template",
			schema:   spec.Schema{Ref: "#/definitions/Baz"},
			template: "Bar",
			origin:   "api",
			want:     model.DataType{Reference: "defs.api.Baz"},
		},
		{
			name:   "enum sanitized",
			schema: spec.Schema{Type: "string", Enum: []any{"A", "1", "b c"}},
			want:   model.DataType{PrimitiveType: model.String, Enum: []any{"A", "1", float64(1)}},
		},
		{
			name:   "array enum taken from items",
			schema: spec.Schema{Type: "array", Items: &spec.Schema{Type: "string", Enum: []any{"X"}}},
			want:   model.DataType{IsArr: true, PrimitiveType: model.String, Enum: []any{"X"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveType(tt.schema, tt.template, tt.origin, tt.isResponse)
			assert.Equal(t, tt.want, got)
			if got.Reference != "" {
				assert.Empty(t, got.PrimitiveType, "reference implies no primitive")
			}
		})
	}
}
