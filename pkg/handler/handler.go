package handler

import (
	"context"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// Handler is a dependency handler assembled from strategies.
type Handler struct {
	Traits
	discovery CatalogDiscovery
	ids       IDStrategy
	packager  Packager
	replace   bool
	composite bool
}

var (
	_ ports.Handler        = (*Handler)(nil)
	_ ports.Replacer       = (*Handler)(nil)
	_ ports.Composite      = (*Handler)(nil)
	_ ports.Exporter       = (*Handler)(nil)
	_ ports.TargetResolver = (*Handler)(nil)
	_ ports.Verifier       = (*Handler)(nil)
)

func (h *Handler) Dependencies(ctx context.Context, scope domain.Scope) ([]domain.Dependency, error) {
	return h.discovery.Dependencies(ctx, scope)
}

func (h *Handler) ChildDependencies(ctx context.Context, dep domain.Dependency) ([]domain.Dependency, error) {
	return h.discovery.ChildDependencies(ctx, dep)
}

func (h *Handler) Dependency(ctx context.Context, id string) (*domain.Dependency, error) {
	return h.discovery.Dependency(ctx, id)
}

func (h *Handler) DependencyExists(ctx context.Context, id string) (bool, error) {
	return h.packager.Exists(ctx, id)
}

func (h *Handler) IDTypeDependencies(ctx context.Context, dep domain.Dependency) ([]domain.Dependency, error) {
	return h.discovery.IDTypeDependencies(ctx, dep)
}

func (h *Handler) DependencyFiles(_ context.Context, dep domain.Dependency) ([]domain.File, error) {
	return h.packager.Files(dep), nil
}

func (h *Handler) ExportDependencyFiles(ctx context.Context, archive ports.Archive, dep domain.Dependency) error {
	return h.packager.Export(ctx, archive, dep)
}

func (h *Handler) InstallDependencyFiles(ctx context.Context, archive ports.Archive, dep domain.Dependency, ictx ports.ImportContext) error {
	return h.packager.Install(ctx, archive, dep, ictx)
}

// VerifyDependencyFiles checks dep's artifacts without touching the target.
func (h *Handler) VerifyDependencyFiles(ctx context.Context, archive ports.Archive, dep domain.Dependency) error {
	return h.packager.Verify(ctx, archive, dep)
}

// ExistingTarget returns the key dep already has on the target.
func (h *Handler) ExistingTarget(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) (string, bool, error) {
	return h.ids.ExistingTarget(ctx, dep, ictx)
}

func (h *Handler) DelegatesIDMapping() bool { return h.ids.DelegatesIDMapping() }

func (h *Handler) IDMappingType() string { return h.ids.IDMappingType() }

// ReplacesOnInstall reports whether existing objects are deleted before install.
func (h *Handler) ReplacesOnInstall() bool { return h.replace }

func (h *Handler) RemoveDependency(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) error {
	return h.packager.Remove(ctx, dep, ictx)
}

// IsComposite reports whether the object is installed solely through its children.
func (h *Handler) IsComposite() bool { return h.composite }
