// Package normalize turns a Swagger 2.0 document into the standard data
// source: modules of interfaces plus the base classes they reference.
//
// Everything here is synchronous and free of I/O. Inputs are never
// modified, and the same input always produces the same output.
package normalize

import (
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2std/internal/model"
	"github.com/mark3labs/swagger2std/internal/spec"
)

// Option configures Transform.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	policy  TagPolicy
	filters []spec.FilterOption
}

// WithLogger routes the debug trail of skipped tags, empty modules and
// dropped parameters to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTagPolicy replaces DefaultTagPolicy.
func WithTagPolicy(policy TagPolicy) Option {
	return func(o *options) {
		if policy != nil {
			o.policy = policy
		}
	}
}

// WithOperationFilters restricts which operations are grouped into modules.
func WithOperationFilters(filters ...spec.FilterOption) Option {
	return func(o *options) { o.filters = append(o.filters, filters...) }
}

// Transform normalizes doc into a data source. usingOperationID selects
// operationId-based interface names; originName namespaces references as
// "defs.<originName>.X" and names the data source when doc.Name is empty.
func Transform(doc *spec.Document, usingOperationID bool, originName string, opts ...Option) *model.DataSource {
	o := options{logger: zap.NewNop(), policy: DefaultTagPolicy{}}
	for _, opt := range opts {
		opt(&o)
	}
	if doc == nil {
		doc = &spec.Document{}
	}
	logger := o.logger.With(zap.String("origin", originName))

	bases := ExtractBaseClasses(doc.Definitions, originName)
	mods := groupModules(doc.Operations(o.filters...), doc.Tags, usingOperationID, originName, o.policy, logger)
	if n := PruneDanglingBodyParams(mods, bases, originName); n > 0 {
		logger.Debug("dropped body parameters referencing unknown models", zap.Int("count", n))
	}

	name := doc.Name
	if name == "" {
		name = originName
	}
	ds := &model.DataSource{Name: name, Mods: mods, BaseClasses: bases}
	logger.Debug("transformed document",
		zap.Int("modules", len(ds.Mods)),
		zap.Int("interfaces", ds.InterfaceCount()),
		zap.Int("baseClasses", len(ds.BaseClasses)))
	return ds
}
