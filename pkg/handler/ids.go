package handler

import (
	"context"
	"strconv"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/pairid"
	"github.com/aretw0/transit/pkg/ports"
)

// IDStrategy decides the key an object is installed under on the target.
type IDStrategy interface {
	DelegatesIDMapping() bool
	IDMappingType() string
	// Allocate returns the target key of dep, creating and resolving its mapping
	// when the strategy owns one.
	Allocate(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) (string, error)
	// ExistingTarget returns the key dep already has on the target without
	// allocating one. found is false while the key is still unallocated.
	ExistingTarget(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) (string, bool, error)
}

// PassthroughIDs installs objects under their source id without recording a mapping.
type PassthroughIDs struct {
	ObjectType string
}

func (PassthroughIDs) DelegatesIDMapping() bool { return false }

func (p PassthroughIDs) IDMappingType() string { return p.ObjectType }

func (PassthroughIDs) Allocate(_ context.Context, dep domain.Dependency, _ ports.ImportContext) (string, error) {
	return dep.ID, nil
}

func (PassthroughIDs) ExistingTarget(_ context.Context, dep domain.Dependency, _ ports.ImportContext) (string, bool, error) {
	return dep.ID, true, nil
}

// KeyedIDs records a mapping per object and resolves it according to Policy.
type KeyedIDs struct {
	ObjectType string
	Policy     string
	Table      string
	Records    ports.RecordService
}

func (KeyedIDs) DelegatesIDMapping() bool { return false }

func (k KeyedIDs) IDMappingType() string { return k.ObjectType }

// Allocate returns the mapped target id, reserving one the first time dep is seen.
func (k KeyedIDs) Allocate(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) (string, error) {
	mapper := ictx.Mapper()
	m, err := mapper.GetOrCreateMapping(ctx, dep.ID, dep.Type, dep.ParentID, dep.ParentType)
	if err != nil {
		return "", err
	}
	if m.Resolved() {
		return m.TargetID, nil
	}

	target := dep.ID
	if k.Policy == AllocateReserve {
		n, err := k.Records.NextID(ctx, k.Table)
		if err != nil {
			return "", err
		}
		target = strconv.FormatInt(n, 10)
	}
	if err := mapper.SetTarget(ctx, m, target); err != nil {
		return "", err
	}
	return target, nil
}

// ExistingTarget returns the resolved mapping of dep. Without one, kept ids
// are their own target and reserved ids do not exist yet.
func (k KeyedIDs) ExistingTarget(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) (string, bool, error) {
	m, err := ictx.Mapper().GetIDMapping(ctx, dep.ID, dep.Type)
	if err != nil {
		return "", false, err
	}
	if m != nil && m.Resolved() {
		return m.TargetID, true, nil
	}
	if k.Policy == AllocateReserve {
		return "", false, nil
	}
	return dep.ID, true, nil
}

// PairIDStrategy keys objects by Pair-ID and delegates their mapping to the parent type.
type PairIDStrategy struct {
	ParentType string
	Locator    ports.HandlerLocator
}

func (PairIDStrategy) DelegatesIDMapping() bool { return true }

func (p PairIDStrategy) IDMappingType() string { return p.ParentType }

// Allocate moves the pair id under the parent's target id.
// The parent must have been installed first.
func (p PairIDStrategy) Allocate(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) (string, error) {
	key, found, err := p.ExistingTarget(ctx, dep, ictx)
	if err != nil {
		return "", err
	}
	if !found {
		return "", &domain.InvalidIDMappingTargetError{
			ObjectType:   dep.Type,
			ID:           dep.ID,
			SourceServer: ictx.SourceServer(),
		}
	}
	return key, nil
}

// ExistingTarget places the pair id under the parent's existing target key.
func (p PairIDStrategy) ExistingTarget(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) (string, bool, error) {
	id, err := pairid.Parse(dep.ID)
	if err != nil {
		return "", false, err
	}
	parent, found, err := existingTarget(ctx, p.Locator, domain.Dependency{Type: p.ParentType, ID: id.ParentID}, ictx)
	if err != nil || !found {
		return "", false, err
	}
	moved, err := id.WithParent(parent)
	if err != nil {
		return "", false, &domain.InvalidIDMappingTargetError{
			ObjectType:   p.ParentType,
			ID:           dep.ID,
			SourceServer: ictx.SourceServer(),
			Target:       parent,
		}
	}
	return moved.String(), true, nil
}

// existingTarget asks the handler of dep's type for the key dep has on the target.
// Handlers that do not allocate ids fall back to the import mapper.
func existingTarget(ctx context.Context, locator ports.HandlerLocator, dep domain.Dependency, ictx ports.ImportContext) (string, bool, error) {
	h, err := locator.Resolve(dep.Type)
	if err != nil {
		return "", false, err
	}
	if r, ok := h.(ports.TargetResolver); ok {
		return r.ExistingTarget(ctx, dep, ictx)
	}
	key, err := ictx.Mapper().TargetID(ctx, dep.ID, dep.Type)
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}
