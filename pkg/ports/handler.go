package ports

import (
	"context"

	"github.com/aretw0/transit/pkg/domain"
)

// Handler is the contract every dependency type adapter implements.
// Handlers are stateless strategies parameterized by their DependencyDef and a
// HandlerLocator; they must not retain state across calls.
type Handler interface {
	// Def returns the definition the handler was built from.
	Def() domain.DependencyDef

	// Dependencies lists the top-level objects of the handler's type.
	Dependencies(ctx context.Context, scope domain.Scope) ([]domain.Dependency, error)

	// ChildDependencies lists the direct children of dep found in its own structure.
	ChildDependencies(ctx context.Context, dep domain.Dependency) ([]domain.Dependency, error)

	// Dependency returns the object with the given id, or nil when it does not exist.
	Dependency(ctx context.Context, id string) (*domain.Dependency, error)

	// DependencyExists reports whether the object with the given id exists.
	DependencyExists(ctx context.Context, id string) (bool, error)

	// IDTypeDependencies resolves the literal ids embedded in dep's stored content.
	IDTypeDependencies(ctx context.Context, dep domain.Dependency) ([]domain.Dependency, error)

	// DependencyFiles lists the archive artifacts packaged for dep.
	DependencyFiles(ctx context.Context, dep domain.Dependency) ([]domain.File, error)

	// InstallDependencyFiles writes dep on the target from the archive contents.
	InstallDependencyFiles(ctx context.Context, archive Archive, dep domain.Dependency, ictx ImportContext) error

	ChildTypes() []string
	IsChildTypeSupported(childType string) bool
	IsRequiredChild(childType string) bool
	DelegatesIDMapping() bool
	IDMappingType() string
	OverwritesOnInstall() bool
	ShouldDeferInstallation() bool
}

// Replacer is implemented by handlers that update by deleting and recreating.
type Replacer interface {
	ReplacesOnInstall() bool
	RemoveDependency(ctx context.Context, dep domain.Dependency, ictx ImportContext) error
}

// Composite is implemented by handlers whose objects are installed solely through their children.
type Composite interface {
	IsComposite() bool
}

// HandlerLocator resolves the handler and definition of a dependency type.
type HandlerLocator interface {
	Resolve(typeName string) (Handler, error)
	Def(typeName string) (domain.DependencyDef, error)
}

// Exporter is implemented by handlers that can write dep's artifacts into an archive.
type Exporter interface {
	ExportDependencyFiles(ctx context.Context, archive Archive, dep domain.Dependency) error
}

// TargetResolver is implemented by handlers whose target key depends on id allocation.
type TargetResolver interface {
	// ExistingTarget returns the key dep already has on the target. found is
	// false when no key has been allocated yet, so the object cannot exist there.
	ExistingTarget(ctx context.Context, dep domain.Dependency, ictx ImportContext) (key string, found bool, err error)
}

// Verifier is implemented by handlers that can check dep's artifacts before
// the target is touched.
type Verifier interface {
	VerifyDependencyFiles(ctx context.Context, archive Archive, dep domain.Dependency) error
}
