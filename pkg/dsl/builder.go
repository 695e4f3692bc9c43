package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/transit/pkg/domain"
)

// Builder manages the construction of a set of definitions.
type Builder struct {
	defs  map[string]*DefBuilder
	order []string
}

// New creates a new definition builder.
func New() *Builder {
	return &Builder{
		defs: make(map[string]*DefBuilder),
	}
}

// Add starts the definition of a type.
// If the type already exists, it returns the existing builder.
func (b *Builder) Add(typeName string) *DefBuilder {
	if db, ok := b.defs[typeName]; ok {
		return db
	}
	db := &DefBuilder{def: domain.DependencyDef{Type: typeName}}
	b.defs[typeName] = db
	b.order = append(b.order, typeName)
	return db
}

// Build returns the definitions in the order they were added.
// Every type referenced as a child, parent or id type must be defined too.
func (b *Builder) Build() ([]domain.DependencyDef, error) {
	defs := make([]domain.DependencyDef, 0, len(b.order))
	var errs []error
	for _, t := range b.order {
		def := b.defs[t].def
		if def.Adapter == "" {
			errs = append(errs, &domain.ConfigurationError{Type: t, Reason: "no adapter selected"})
		}
		for _, ref := range references(def) {
			if _, ok := b.defs[ref]; !ok {
				errs = append(errs, &domain.ConfigurationError{Type: t, Reason: fmt.Sprintf("references undefined type %q", ref)})
			}
		}
		defs = append(defs, def)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return defs, nil
}

func references(def domain.DependencyDef) []string {
	refs := append([]string(nil), def.ChildTypes...)
	if def.ParentType != "" {
		refs = append(refs, def.ParentType)
	}
	for _, it := range def.IDTypes {
		refs = append(refs, it.Type)
		if it.ParentType != "" {
			refs = append(refs, it.ParentType)
		}
	}
	if m, ok := def.Settings["references"].(map[string]any); ok {
		for _, v := range m {
			if s, ok := v.(string); ok {
				refs = append(refs, s)
			}
		}
	}
	return refs
}
