package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/aretw0/transit/pkg/schema"
)

// Factory builds the handler for one dependency definition.
// The locator lets the handler find collaborating handlers for its children.
type Factory func(def domain.DependencyDef, locator ports.HandlerLocator) (ports.Handler, error)

type binding struct {
	factory  Factory
	settings schema.Schema
}

// Registry resolves dependency type names to handlers.
// Adapter bindings are registered at process start; definitions are loaded once
// and are immutable afterwards.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]binding
	defs     map[string]domain.DependencyDef
	handlers map[string]ports.Handler
	loaded   bool
}

var _ ports.HandlerLocator = (*Registry)(nil)

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		bindings: make(map[string]binding),
		defs:     make(map[string]domain.DependencyDef),
		handlers: make(map[string]ports.Handler),
	}
}

// Register binds an adapter name to its factory and settings schema.
// If a binding with the same name exists, it is overwritten.
func (r *Registry) Register(adapter string, f Factory, settings schema.Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[adapter] = binding{factory: f, settings: settings}
}

// Load installs the dependency definitions. It can be called only once.
// Every definition is checked before any is installed, so a failed Load leaves
// the registry empty.
func (r *Registry) Load(defs ...domain.DependencyDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return &domain.ConfigurationError{Reason: "definitions already loaded"}
	}

	staged := make(map[string]domain.DependencyDef, len(defs))
	var errs []error
	for _, def := range defs {
		if err := r.check(def, staged); err != nil {
			errs = append(errs, err)
			continue
		}
		staged[def.Type] = cloneDef(def)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.defs = staged
	r.loaded = true
	return nil
}

func (r *Registry) check(def domain.DependencyDef, staged map[string]domain.DependencyDef) error {
	if def.Type == "" {
		return &domain.ConfigurationError{Reason: "definition without type name"}
	}
	if _, dup := staged[def.Type]; dup {
		return &domain.ConfigurationError{Type: def.Type, Reason: "duplicate definition"}
	}
	b, ok := r.bindings[def.Adapter]
	if !ok {
		return &domain.ConfigurationError{Type: def.Type, Reason: fmt.Sprintf("unknown adapter binding %q", def.Adapter)}
	}
	if def.DefaultKind != "" && !def.DefaultKind.Valid() {
		return &domain.ConfigurationError{Type: def.Type, Reason: fmt.Sprintf("invalid default kind %q", def.DefaultKind)}
	}
	for _, req := range def.RequiredChildTypes {
		if !def.HasChildType(req) {
			return &domain.ConfigurationError{Type: def.Type, Reason: fmt.Sprintf("required child type %q is not a child type", req)}
		}
	}
	if def.SupportsParentID && def.ParentType == "" {
		return &domain.ConfigurationError{Type: def.Type, Reason: "parent id support requires a parent type"}
	}
	if err := schema.Validate(b.settings, def.Settings); err != nil {
		return &domain.ConfigurationError{Type: def.Type, Reason: err.Error()}
	}
	return nil
}

// Def returns the definition of a type.
func (r *Registry) Def(typeName string) (domain.DependencyDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[typeName]
	if !ok {
		return domain.DependencyDef{}, &domain.ConfigurationError{Type: typeName, Reason: "unknown dependency type"}
	}
	return cloneDef(def), nil
}

// Resolve returns the handler of a type, constructing it on first use.
// Construction failures, including panics in the factory, are reported as
// *domain.HandlerInitError.
func (r *Registry) Resolve(typeName string) (ports.Handler, error) {
	r.mu.RLock()
	h, cached := r.handlers[typeName]
	def, known := r.defs[typeName]
	b := r.bindings[def.Adapter]
	r.mu.RUnlock()

	if cached {
		return h, nil
	}
	if !known {
		return nil, &domain.ConfigurationError{Type: typeName, Reason: "unknown dependency type"}
	}

	// The lock is not held here: factories may resolve collaborating handlers.
	h, err := construct(b.factory, cloneDef(def), r)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.handlers[typeName]; ok {
		return existing, nil
	}
	r.handlers[typeName] = h
	return h, nil
}

func construct(f Factory, def domain.DependencyDef, locator ports.HandlerLocator) (h ports.Handler, err error) {
	defer func() {
		if p := recover(); p != nil {
			h = nil
			err = &domain.HandlerInitError{Type: def.Type, Cause: fmt.Sprintf("panic: %v", p)}
		}
	}()

	if f == nil {
		return nil, &domain.HandlerInitError{Type: def.Type, Cause: "adapter has no factory"}
	}
	h, err = f(def, locator)
	if err != nil {
		return nil, &domain.HandlerInitError{Type: def.Type, Cause: err.Error(), Err: err}
	}
	if h == nil {
		return nil, &domain.HandlerInitError{Type: def.Type, Cause: "factory returned no handler"}
	}
	return h, nil
}

// Types returns the loaded type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Adapters returns the registered adapter binding names, sorted.
func (r *Registry) Adapters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.bindings))
	for n := range r.bindings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Verify resolves every loaded type and reports all construction failures.
func (r *Registry) Verify() error {
	var errs []error
	for _, t := range r.Types() {
		if _, err := r.Resolve(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func cloneDef(def domain.DependencyDef) domain.DependencyDef {
	out := def
	out.ChildTypes = append([]string(nil), def.ChildTypes...)
	out.RequiredChildTypes = append([]string(nil), def.RequiredChildTypes...)
	out.IDTypes = append([]domain.IDType(nil), def.IDTypes...)
	if def.Overwrite != nil {
		v := *def.Overwrite
		out.Overwrite = &v
	}
	if def.Settings != nil {
		out.Settings = make(map[string]any, len(def.Settings))
		for k, v := range def.Settings {
			out.Settings[k] = v
		}
	}
	return out
}
