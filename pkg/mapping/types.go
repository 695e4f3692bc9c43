package mapping

import (
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// LocatorTypes resolves mapping types through the handler registry.
type LocatorTypes struct {
	Locator ports.HandlerLocator
}

// MappingType returns the type under which objectType ids are mapped.
func (t LocatorTypes) MappingType(objectType string) (string, bool, error) {
	h, err := t.Locator.Resolve(objectType)
	if err != nil {
		return "", false, err
	}
	if h.DelegatesIDMapping() {
		return h.IDMappingType(), true, nil
	}
	return objectType, false, nil
}

// StaticTypes maps pair-keyed types to the type of their parent.
// Types absent from the map are mapped under their own name.
type StaticTypes map[string]string

// MappingType returns the type under which objectType ids are mapped.
func (s StaticTypes) MappingType(objectType string) (string, bool, error) {
	if objectType == "" {
		return "", false, &domain.ConfigurationError{Reason: "empty object type"}
	}
	if parent, ok := s[objectType]; ok {
		return parent, true, nil
	}
	return objectType, false, nil
}
