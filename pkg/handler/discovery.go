package handler

import (
	"context"
	"fmt"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// CatalogDiscovery implements the discovery half of the handler contract on top
// of a CatalogService.
type CatalogDiscovery struct {
	def     domain.DependencyDef
	catalog ports.CatalogService
	locator ports.HandlerLocator
}

// NewCatalogDiscovery creates the discovery strategy for def.
func NewCatalogDiscovery(def domain.DependencyDef, catalog ports.CatalogService, locator ports.HandlerLocator) CatalogDiscovery {
	return CatalogDiscovery{def: def, catalog: catalog, locator: locator}
}

func toDependency(e ports.CatalogEntry, fallback domain.Kind) domain.Dependency {
	kind := e.Kind
	if kind == "" {
		kind = fallback
	}
	return domain.Dependency{
		Type:        e.Type,
		ID:          e.ID,
		ParentType:  e.ParentType,
		ParentID:    e.ParentID,
		DisplayName: e.Name,
		Kind:        kind,
	}
}

// Dependencies lists the top-level objects of the type.
func (d CatalogDiscovery) Dependencies(ctx context.Context, scope domain.Scope) ([]domain.Dependency, error) {
	if !d.def.SupportsUserDependencies {
		scope.IncludeUsers = false
	}
	if !d.def.SupportsParentID {
		scope.ParentID = ""
	}

	entries, err := d.catalog.List(ctx, d.def.Type, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", d.def.Type, err)
	}

	deps := make([]domain.Dependency, 0, len(entries))
	for _, e := range entries {
		deps = append(deps, toDependency(e, d.def.Kind()))
	}
	return deps, nil
}

// ChildDependencies lists the children of dep, one declared child type at a time.
func (d CatalogDiscovery) ChildDependencies(ctx context.Context, dep domain.Dependency) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	for _, childType := range d.def.ChildTypes {
		childDef, err := d.locator.Def(childType)
		if err != nil {
			return nil, err
		}
		entries, err := d.catalog.Children(ctx, dep.Type, dep.ID, childType)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s children of %s: %w", childType, dep, err)
		}
		for _, e := range entries {
			deps = append(deps, toDependency(e, childDef.Kind()))
		}
	}
	return deps, nil
}

// Dependency returns the object with the given id, or nil when absent.
func (d CatalogDiscovery) Dependency(ctx context.Context, id string) (*domain.Dependency, error) {
	e, err := d.catalog.Lookup(ctx, d.def.Type, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s %s: %w", d.def.Type, id, err)
	}
	if e == nil {
		return nil, nil
	}
	dep := toDependency(*e, d.def.Kind())
	return &dep, nil
}

// Exists reports whether the object is in the catalog.
func (d CatalogDiscovery) Exists(ctx context.Context, id string) (bool, error) {
	dep, err := d.Dependency(ctx, id)
	return dep != nil, err
}

// IDTypeDependencies resolves the literal ids held in dep's attributes.
func (d CatalogDiscovery) IDTypeDependencies(ctx context.Context, dep domain.Dependency) ([]domain.Dependency, error) {
	if !d.def.SupportsIDTypes || len(d.def.IDTypes) == 0 {
		return nil, nil
	}

	e, err := d.catalog.Lookup(ctx, dep.Type, dep.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", dep, err)
	}
	if e == nil {
		return nil, &domain.NotFoundError{ObjectType: dep.Type, ID: dep.ID}
	}
	return ScanIDTypes(ctx, d.locator, e.Attributes, d.def.IDTypes)
}
