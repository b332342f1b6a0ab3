package normalize

import (
	"strings"

	"github.com/mark3labs/swagger2std/internal/model"
)

// PruneDanglingBodyParams removes body parameters whose reference names no
// known base class, either by Name or by JustName. Body parameters without
// a reference are kept. It returns how many parameters were removed.
//
// With a non-empty originName the whole "defs.<origin>." qualifier is
// stripped before the lookup, not just "defs.", so references qualified by
// the origin still match their base class. Stripping only "defs." would
// leave "<origin>.Pet" and drop every body parameter of a named origin.
func PruneDanglingBodyParams(mods []model.Module, bases []model.BaseClass, originName string) int {
	known := make(map[string]struct{}, 2*len(bases))
	for _, b := range bases {
		known[b.Name] = struct{}{}
		known[b.JustName] = struct{}{}
	}

	dropped := 0
	for mi := range mods {
		for ii := range mods[mi].Interfaces {
			inter := &mods[mi].Interfaces[ii]
			kept := make([]model.Property, 0, len(inter.Parameters))
			for _, p := range inter.Parameters {
				if p.In == model.InBody && p.DataType.Reference != "" {
					if _, ok := known[unqualify(p.DataType.Reference, originName)]; !ok {
						dropped++
						continue
					}
				}
				kept = append(kept, p)
			}
			inter.Parameters = kept
		}
	}
	return dropped
}

func unqualify(reference, originName string) string {
	if originName != "" {
		if rest, ok := strings.CutPrefix(reference, defsQualifier+originName+"."); ok {
			return rest
		}
	}
	return strings.TrimPrefix(reference, defsQualifier)
}
