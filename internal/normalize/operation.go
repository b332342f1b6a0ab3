package normalize

import (
	"github.com/mark3labs/swagger2std/internal/model"
	"github.com/mark3labs/swagger2std/internal/naming"
	"github.com/mark3labs/swagger2std/internal/spec"
)

// NormalizeOperation converts one flattened operation into an Interface.
// The name comes from the operationId when usingOperationID is set and the
// id is present, otherwise from the method and the path with samePath
// stripped. Parameters are deduplicated by name, first occurrence wins.
func NormalizeOperation(op spec.Operation, usingOperationID bool, samePath, originName string) model.Interface {
	name := ""
	if usingOperationID {
		name = naming.OperationIdentifier(op.OperationID)
	}
	if name == "" {
		name = naming.URLIdentifier(op.Path, op.Method, samePath)
	}

	description := op.Summary
	if description == "" {
		description = op.Description
	}

	params := make([]model.Property, 0, len(op.Parameters))
	seen := make(map[string]struct{}, len(op.Parameters))
	for _, p := range op.Parameters {
		if _, dup := seen[p.Name]; dup {
			continue
		}
		seen[p.Name] = struct{}{}
		params = append(params, model.Property{
			Name:        p.Name,
			Description: p.Description,
			Required:    p.Required,
			In:          p.In,
			DataType:    ResolveType(parameterSchema(p), "", originName, p.In == model.InBody),
		})
	}

	return model.Interface{
		Name:        name,
		Description: description,
		Method:      op.Method,
		Path:        op.Path,
		Consumes:    op.Consumes,
		Response:    ResolveType(op.SuccessSchema(), "", originName, true),
		Parameters:  params,
	}
}

// parameterSchema folds a parameter into a schema. Body parameters carry
// their shape in "schema"; the parameter's own fields fill what it leaves
// out.
func parameterSchema(p spec.Parameter) spec.Schema {
	s := spec.Schema{Type: p.Type, Format: p.Format, Items: p.Items, Enum: p.Enum}
	if p.Schema == nil {
		return s
	}
	if p.Schema.Type != "" || p.Schema.Ref != "" {
		s.Type = p.Schema.Type
		s.Format = p.Schema.Format
		s.Ref = p.Schema.Ref
		s.Items = p.Schema.Items
	}
	if p.Schema.Enum != nil {
		s.Enum = p.Schema.Enum
	}
	return s
}
