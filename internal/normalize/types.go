package normalize

import (
	"strings"

	"github.com/mark3labs/swagger2std/internal/model"
	"github.com/mark3labs/swagger2std/internal/spec"
)

// placeholderModel is the name springfox gives schemas it could not
// describe. It never resolves to a real definition.
const placeholderModel = "Model"

// selfReference replaces a generic definition's reference to its own
// type argument.
const selfReference = "T0"

// ResolveType maps a raw schema onto a DataType. templateName is the
// canonical name of the type argument of the enclosing generic definition,
// or empty. isResponse qualifies bare references with "defs." when no
// origin is given.
func ResolveType(s spec.Schema, templateName, originName string, isResponse bool) model.DataType {
	isArr := s.Type == "array"
	primitive := s.Type
	ref := s.Ref
	enum := s.Enum
	if isArr {
		primitive = ""
		if s.Items != nil && s.Items.Type != "array" {
			primitive = s.Items.Type
		}
	}
	if s.Items != nil {
		if ref == "" {
			ref = s.Items.Ref
		}
		if isArr && enum == nil {
			enum = s.Items.Enum
		}
	}

	switch primitive {
	case "object":
		primitive = ""
	case "integer":
		primitive = string(model.Number)
	case "file":
		primitive = string(model.File)
	}

	reference := ""
	if ref != "" {
		reference = ParseGenericName(ref, originName).CanonicalName
	}
	if reference == placeholderModel {
		reference = ""
	}
	switch {
	case reference == "":
	case templateName != "" && reference == templateName:
		reference = selfReference
	default:
		reference = qualifyReference(reference, originName, isResponse)
	}
	if reference != "" {
		primitive = ""
	}

	return model.DataType{
		IsArr:         isArr,
		PrimitiveType: model.PrimitiveType(primitive),
		Reference:     reference,
		Enum:          SanitizeEnum(enum),
	}
}

func qualifyReference(reference, originName string, isResponse bool) string {
	if strings.HasPrefix(reference, model.SequenceType+"<") {
		return reference
	}
	if originName != "" {
		if strings.Contains(reference, defsQualifier+originName+".") {
			return reference
		}
		return defsQualifier + originName + "." + reference
	}
	if isResponse && !strings.HasPrefix(reference, defsQualifier) {
		return defsQualifier + reference
	}
	return reference
}
