package normalize

import (
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2std/internal/model"
)

const (
	openMarker        = "«"
	closeMarker       = "»"
	definitionsPrefix = "#/definitions/"
	defsQualifier     = "defs."
	listWrapper       = "List"
)

// Names a generic argument may carry that stay unqualified.
var builtinArguments = map[string]string{
	"string":  "string",
	"number":  "number",
	"boolean": "boolean",
	"object":  "object",
	"any":     "any",
	"long":    "number",
	"int":     "number",
	"integer": "number",
	"double":  "number",
	"float":   "number",
}

// GenericName is a definition name split into the form used to reference
// it and the form used to declare it.
type GenericName struct {
	// CanonicalName is the stable cross-module key,
	// e.g. "defs.api.Page<defs.api.Pet>".
	CanonicalName string
	// DeclarationName keeps only the generic shape, e.g. "Page<T0>".
	DeclarationName string
}

// ParseGenericName parses a definition name or $ref that may carry nested
// «» generic markers. Names without a well-formed group are returned
// unchanged in both forms.
//
//	ParseGenericName("Page«List«Pet»»", "api") ==
//		GenericName{"defs.api.Page<Array<defs.api.Pet>>", "Page<T0>"}
func ParseGenericName(name, originName string) GenericName {
	name = strings.TrimPrefix(name, definitionsPrefix)
	g, ok := findGroup(name)
	if !ok {
		return GenericName{CanonicalName: name, DeclarationName: name}
	}

	args := splitArguments(g.payload)
	params := make([]string, len(args))
	resolved := make([]string, len(args))
	for i, arg := range args {
		params[i] = "T" + strconv.Itoa(i)
		resolved[i] = canonicalArgument(arg, originName)
	}

	outer := g.outer
	if outer == listWrapper {
		outer = model.SequenceType
	} else {
		outer = qualify(outer, originName)
	}
	return GenericName{
		CanonicalName:   outer + "<" + strings.Join(resolved, ",") + ">" + g.suffix,
		DeclarationName: g.outer + "<" + strings.Join(params, ",") + ">" + g.suffix,
	}
}

func canonicalArgument(arg, originName string) string {
	if b, ok := builtinArguments[arg]; ok {
		return b
	}
	if _, ok := findGroup(arg); ok {
		return ParseGenericName(arg, originName).CanonicalName
	}
	return qualify(arg, originName)
}

func qualify(name, originName string) string {
	if strings.HasPrefix(name, defsQualifier) {
		return name
	}
	if originName != "" {
		return defsQualifier + originName + "." + name
	}
	return defsQualifier + name
}

type genericGroup struct {
	outer   string
	payload string
	suffix  string
}

// findGroup locates the first « and the » that closes it.
func findGroup(name string) (genericGroup, bool) {
	start := strings.Index(name, openMarker)
	if start <= 0 {
		return genericGroup{}, false
	}
	depth := 0
	for i := start; i < len(name); {
		switch {
		case strings.HasPrefix(name[i:], openMarker):
			depth++
			i += len(openMarker)
		case strings.HasPrefix(name[i:], closeMarker):
			depth--
			if depth == 0 {
				payload := strings.TrimSpace(name[start+len(openMarker) : i])
				if payload == "" {
					return genericGroup{}, false
				}
				return genericGroup{
					outer:   name[:start],
					payload: payload,
					suffix:  name[i+len(closeMarker):],
				}, true
			}
			i += len(closeMarker)
		default:
			i++
		}
	}
	return genericGroup{}, false
}

// splitArguments splits on commas that are not inside a nested group.
func splitArguments(payload string) []string {
	var args []string
	depth, last := 0, 0
	for i := 0; i < len(payload); {
		switch {
		case strings.HasPrefix(payload[i:], openMarker):
			depth++
			i += len(openMarker)
		case strings.HasPrefix(payload[i:], closeMarker):
			depth--
			i += len(closeMarker)
		case payload[i] == ',' && depth == 0:
			args = append(args, strings.TrimSpace(payload[last:i]))
			i++
			last = i
		default:
			i++
		}
	}
	return append(args, strings.TrimSpace(payload[last:]))
}

// templateArgument returns the first argument of a definition's own «»
// group, unwrapped once more when it is a List«…» wrapper. It names the
// type a generic definition is parameterized over.
func templateArgument(name string) string {
	g, ok := findGroup(name)
	if !ok {
		return ""
	}
	arg := splitArguments(g.payload)[0]
	if inner, ok := findGroup(arg); ok && inner.outer == listWrapper && inner.suffix == "" {
		return inner.payload
	}
	return arg
}
