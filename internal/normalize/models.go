package normalize

import (
	"sort"

	"github.com/mark3labs/swagger2std/internal/model"
	"github.com/mark3labs/swagger2std/internal/spec"
)

// ExtractBaseClasses turns every definition into a BaseClass. The result is
// sorted by JustName descending, longer names first on ties, and holds one
// entry per JustName: the most specific instantiation of each base type.
func ExtractBaseClasses(defs spec.Definitions, originName string) []model.BaseClass {
	bases := make([]model.BaseClass, 0, defs.Len())
	for _, name := range defs.Keys() {
		def, _ := defs.Get(name)

		template := ""
		if arg := templateArgument(name); arg != "" {
			template = ParseGenericName(arg, originName).CanonicalName
		}

		props := make([]model.Property, 0, def.Properties.Len())
		for _, propName := range def.Properties.Keys() {
			prop, _ := def.Properties.Get(propName)
			props = append(props, model.Property{
				Name:        propName,
				Description: prop.Description,
				Required:    bool(prop.Required) || def.IsRequired(propName),
				DataType:    ResolveType(prop, template, originName, false),
			})
		}
		bases = append(bases, model.NewBaseClass(ParseGenericName(name, originName).DeclarationName, def.Description, props))
	}

	sort.SliceStable(bases, func(i, j int) bool {
		a, b := bases[i], bases[j]
		if a.JustName != b.JustName {
			return a.JustName > b.JustName
		}
		return len(a.Name) > len(b.Name)
	})

	out := bases[:0]
	seen := make(map[string]struct{}, len(bases))
	for _, b := range bases {
		if _, dup := seen[b.JustName]; dup {
			continue
		}
		seen[b.JustName] = struct{}{}
		out = append(out, b)
	}
	return out
}
