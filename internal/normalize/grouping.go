package normalize

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mark3labs/swagger2std/internal/model"
	"github.com/mark3labs/swagger2std/internal/naming"
	"github.com/mark3labs/swagger2std/internal/spec"
)

// TagPolicy decides how tags turn into modules.
type TagPolicy interface {
	// Skip reports whether the tag produces no module at all.
	Skip(tag spec.Tag) bool
	// Matches reports whether an operation with opTags belongs to tag.
	Matches(tag spec.Tag, opTags []string) bool
	// Identity returns the module name and description for tag.
	Identity(tag spec.Tag) (name, description string)
}

// DefaultTagPolicy handles the tag dialects springfox-generated documents
// use:
//
//	Skip      dash-normalized name equals dash-normalized description
//	Matches   op tag is name, lower(name), lower(description) or dash(description)
//	Identity  name has non-Latin letters: (camel(description), name)
//	          otherwise:                  (camel(name), description)
type DefaultTagPolicy struct{}

func (DefaultTagPolicy) Skip(tag spec.Tag) bool {
	return naming.DashDefaultCase(tag.Name) == naming.DashDefaultCase(tag.Description)
}

func (DefaultTagPolicy) Matches(tag spec.Tag, opTags []string) bool {
	candidates := [...]string{
		tag.Name,
		strings.ToLower(tag.Name),
		strings.ToLower(tag.Description),
		naming.DashCase(tag.Description),
	}
	for _, t := range opTags {
		for _, c := range candidates {
			if t == c {
				return true
			}
		}
	}
	return false
}

func (DefaultTagPolicy) Identity(tag spec.Tag) (string, string) {
	if naming.HasNonLatin(tag.Name) {
		return naming.CamelCase(tag.Description), tag.Name
	}
	return naming.CamelCase(tag.Name), tag.Description
}

// GroupModules partitions operations into one module per tag. A nil policy
// means DefaultTagPolicy. Modules without interfaces are dropped.
func GroupModules(ops []spec.Operation, tags []spec.Tag, usingOperationID bool, originName string, policy TagPolicy) []model.Module {
	return groupModules(ops, tags, usingOperationID, originName, policy, zap.NewNop())
}

func groupModules(ops []spec.Operation, tags []spec.Tag, usingOperationID bool, originName string, policy TagPolicy, logger *zap.Logger) []model.Module {
	if policy == nil {
		policy = DefaultTagPolicy{}
	}
	mods := make([]model.Module, 0, len(tags))
	for _, tag := range tags {
		if policy.Skip(tag) {
			logger.Debug("skipping default tag", zap.String("tag", tag.Name))
			continue
		}

		var selected []spec.Operation
		paths := make([]string, 0, len(ops))
		for _, op := range ops {
			if policy.Matches(tag, op.Tags) {
				selected = append(selected, op)
				paths = append(paths, strings.TrimPrefix(op.Path, "/"))
			}
		}
		samePath := naming.CommonPathPrefix(paths)

		interfaces := make([]model.Interface, 0, len(selected))
		seen := make(map[string]struct{}, len(selected))
		for _, op := range selected {
			inter := NormalizeOperation(op, usingOperationID, samePath, originName)
			if _, dup := seen[inter.Name]; dup {
				logger.Debug("dropping duplicate interface",
					zap.String("tag", tag.Name), zap.String("interface", inter.Name), zap.String("path", op.Path))
				continue
			}
			seen[inter.Name] = struct{}{}
			interfaces = append(interfaces, inter)
		}

		name, description := policy.Identity(tag)
		if len(interfaces) == 0 {
			logger.Debug("dropping empty module", zap.String("module", name))
			continue
		}
		mods = append(mods, model.Module{
			Name:        name,
			Description: description,
			Interfaces:  interfaces,
		})
	}
	return mods
}
