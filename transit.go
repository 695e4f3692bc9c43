package transit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/transit/internal/discovery"
	"github.com/aretw0/transit/internal/install"
	"github.com/aretw0/transit/internal/logging"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/handler"
	"github.com/aretw0/transit/pkg/mapping"
	"github.com/aretw0/transit/pkg/operation"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/aretw0/transit/pkg/registry"
	"github.com/aretw0/transit/pkg/schema"
)

// Closure is the set of dependencies reachable from an exported root.
type Closure = discovery.Closure

// Report is the outcome of an import.
type Report = install.Report

type binding struct {
	adapter  string
	factory  registry.Factory
	settings schema.Schema
}

// Engine exports and imports dependency closures against one server.
// Its handlers are bound to that server's catalog and records.
type Engine struct {
	registry  *registry.Registry
	walker    *discovery.Walker
	installer *install.Installer
	services  handler.Services
	defs      []domain.DependencyDef
	bindings  []binding
	stores    operation.StoreFactory
	locker    ports.TargetLocker
	hooks     domain.Hooks
	logger    *slog.Logger
	Name      string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithServices binds the built-in adapters to a server's catalog and records.
func WithServices(svc handler.Services) Option {
	return func(e *Engine) {
		e.services = svc
	}
}

// WithDefinitions adds dependency type definitions.
func WithDefinitions(defs ...domain.DependencyDef) Option {
	return func(e *Engine) {
		e.defs = append(e.defs, defs...)
	}
}

// WithAdapter registers an extra adapter binding next to the built-in ones.
func WithAdapter(name string, f registry.Factory, settings schema.Schema) Option {
	return func(e *Engine) {
		e.bindings = append(e.bindings, binding{adapter: name, factory: f, settings: settings})
	}
}

// WithStores sets where each import keeps its mappings and transaction log.
func WithStores(f operation.StoreFactory) Option {
	return func(e *Engine) {
		e.stores = f
	}
}

// WithLocker sets the lock taken around every import on a target server.
func WithLocker(l ports.TargetLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithName labels the engine, usually with the server it is bound to.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes an Engine. Definitions are validated and every handler is
// constructed up front, so a misconfigured type fails here rather than mid-import.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{stores: operation.MemoryStores}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("server", eng.Name)
	}

	eng.registry = registry.New()
	handler.RegisterBuiltins(eng.registry, eng.services)
	for _, b := range eng.bindings {
		eng.registry.Register(b.adapter, b.factory, b.settings)
	}
	if err := eng.registry.Load(eng.defs...); err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	if err := eng.registry.Verify(); err != nil {
		return nil, fmt.Errorf("failed to build handlers: %w", err)
	}

	eng.walker = discovery.New(eng.registry,
		discovery.WithLogger(eng.logger),
		discovery.WithHooks(eng.hooks),
	)

	installOpts := []install.Option{
		install.WithLogger(eng.logger),
		install.WithHooks(eng.hooks),
	}
	if eng.locker != nil {
		installOpts = append(installOpts, install.WithLocker(eng.locker))
	}
	eng.installer = install.New(eng.registry, installOpts...)

	return eng, nil
}

// Types returns the loaded dependency type names, sorted.
func (e *Engine) Types() []string {
	return e.registry.Types()
}

// Def returns the definition of a dependency type.
func (e *Engine) Def(typeName string) (domain.DependencyDef, error) {
	return e.registry.Def(typeName)
}

// Roots lists the top-level objects of a type that can be exported.
func (e *Engine) Roots(ctx context.Context, typeName string, scope domain.Scope) ([]domain.Dependency, error) {
	return e.walker.Roots(ctx, typeName, scope)
}

// Lookup returns the object (typeName, id), or domain.ErrNotFound.
func (e *Engine) Lookup(ctx context.Context, typeName, id string) (domain.Dependency, error) {
	h, err := e.registry.Resolve(typeName)
	if err != nil {
		return domain.Dependency{}, err
	}
	dep, err := h.Dependency(ctx, id)
	if err != nil {
		return domain.Dependency{}, err
	}
	if dep == nil {
		return domain.Dependency{}, &domain.NotFoundError{ObjectType: typeName, ID: id}
	}
	return *dep, nil
}

// Discover walks the closure of root without packaging anything.
// Branch failures are returned together with the closure discovered so far.
func (e *Engine) Discover(ctx context.Context, root domain.Dependency) (*Closure, error) {
	return e.walker.Walk(ctx, root)
}

// Package is the result of an export.
type Package struct {
	Closure *Closure
	Files   []domain.File
}

// Export discovers the closure of root and writes the artifacts of every node
// into archive. Objects whose export fails are reported and skipped; the
// package holds whatever was written.
func (e *Engine) Export(ctx context.Context, root domain.Dependency, archive ports.Archive) (*Package, error) {
	closure, walkErr := e.walker.Walk(ctx, root)
	if closure == nil {
		return nil, walkErr
	}

	pkg := &Package{Closure: closure}
	errs := []error{walkErr}
	for _, dep := range closure.Dependencies() {
		if err := ctx.Err(); err != nil {
			return pkg, err
		}
		files, err := e.export(ctx, archive, dep)
		if err != nil {
			errs = append(errs, domain.Enrich(dep, err))
			continue
		}
		pkg.Files = append(pkg.Files, files...)
	}

	e.logger.InfoContext(ctx, "Export finished",
		"dependency_type", root.Type,
		"dependency_id", root.ID,
		"objects", closure.Len(),
		"files", len(pkg.Files),
	)
	return pkg, errors.Join(errs...)
}

func (e *Engine) export(ctx context.Context, archive ports.Archive, dep domain.Dependency) ([]domain.File, error) {
	// Server objects are expected on the target already; system objects are never packaged.
	if dep.Kind == domain.KindServer || dep.Kind == domain.KindSystem {
		return nil, nil
	}
	h, err := e.registry.Resolve(dep.Type)
	if err != nil {
		return nil, err
	}
	files, err := h.DependencyFiles(ctx, dep)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	x, ok := h.(ports.Exporter)
	if !ok {
		return nil, fmt.Errorf("%w: handler of %s cannot export", domain.ErrConfiguration, dep.Type)
	}
	if err := x.ExportDependencyFiles(ctx, archive, dep); err != nil {
		return nil, err
	}
	return files, nil
}

// ImportOption configures a single import.
type ImportOption = operation.Option

// WithOperationID fixes the id of an import instead of generating one.
func WithOperationID(id string) ImportOption {
	return operation.WithID(id)
}

// Import installs closure from archive on the engine's server.
// A fresh import context is created for the call and its mappings are discarded
// once the install finishes. The report is returned even when err is not nil.
func (e *Engine) Import(ctx context.Context, archive ports.Archive, closure *Closure, source, target string, opts ...ImportOption) (*Report, error) {
	opts = append([]operation.Option{
		operation.WithServers(source, target),
		operation.WithStores(e.stores),
	}, opts...)
	ictx, err := operation.New(mapping.LocatorTypes{Locator: e.registry}, opts...)
	if err != nil {
		return nil, err
	}

	report, err := e.installer.Install(ctx, archive, closure, ictx)
	if cerr := ictx.Close(context.WithoutCancel(ctx)); cerr != nil {
		e.logger.WarnContext(ctx, "Failed to discard mappings",
			"operation_id", ictx.OperationID(),
			"err", cerr,
		)
	}
	return report, err
}
