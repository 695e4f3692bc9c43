package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// ScanIDTypes resolves the literal ids found in attrs into dependencies.
// An attribute may hold several ids separated by commas or whitespace.
// When an IDType names a parent type and the parent attribute is set, the parent
// object is returned instead of the child, and a parent that is itself scoped to
// another parent fails with domain.ErrUnsupportedNesting.
func ScanIDTypes(ctx context.Context, locator ports.HandlerLocator, attrs map[string]string, idTypes []domain.IDType) ([]domain.Dependency, error) {
	var out []domain.Dependency
	seen := make(map[domain.Key]bool)

	add := func(dep domain.Dependency) {
		if !seen[dep.VisitKey()] {
			seen[dep.VisitKey()] = true
			out = append(out, dep)
		}
	}

	for _, it := range idTypes {
		for _, id := range splitIDs(attrs[it.Attribute]) {
			if it.ParentType != "" {
				if parentID := attrs[it.ParentAttribute]; parentID != "" {
					parent, err := resolve(ctx, locator, it.ParentType, parentID)
					if err != nil {
						return nil, err
					}
					if parent.ParentID != "" {
						return nil, fmt.Errorf("%w: %s is itself scoped to %s %s",
							domain.ErrUnsupportedNesting, parent, parent.ParentType, parent.ParentID)
					}
					add(*parent)
					continue
				}
			}

			dep, err := resolve(ctx, locator, it.Type, id)
			if err != nil {
				return nil, err
			}
			add(*dep)
		}
	}
	return out, nil
}

func resolve(ctx context.Context, locator ports.HandlerLocator, objectType, id string) (*domain.Dependency, error) {
	h, err := locator.Resolve(objectType)
	if err != nil {
		return nil, err
	}
	dep, err := h.Dependency(ctx, id)
	if err != nil {
		return nil, err
	}
	if dep == nil {
		return nil, &domain.NotFoundError{ObjectType: objectType, ID: id}
	}
	return dep, nil
}

func splitIDs(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
