// Package mapping translates source-system identifiers into target-system
// identifiers while one import operation installs its dependencies.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/pairid"
	"github.com/aretw0/transit/pkg/ports"
)

// TypeResolver tells the mapper under which type the ids of objectType are mapped.
// Pair-keyed types delegate their mapping to the parent type.
type TypeResolver interface {
	MappingType(objectType string) (mappingType string, delegates bool, err error)
}

// Mapper is the identifier catalog of one import context.
// It is not designed for concurrent mutation: one operation owns it.
type Mapper struct {
	mu           sync.Mutex
	store        ports.MappingStore
	types        TypeResolver
	sourceServer string
	// live keeps the pointers handed out so repeated lookups return the same mapping.
	live map[domain.MappingKey]*domain.IDMapping
}

var _ ports.IDMapper = (*Mapper)(nil)

// New creates a mapper over store. sourceServer is reported in mapping errors.
func New(store ports.MappingStore, types TypeResolver, sourceServer string) *Mapper {
	return &Mapper{
		store:        store,
		types:        types,
		sourceServer: sourceServer,
		live:         make(map[domain.MappingKey]*domain.IDMapping),
	}
}

// GetOrCreateMapping looks up the mapping of (objectType, sourceID), creating an
// unresolved one when absent. Two calls with the same key return the same pointer.
func (m *Mapper) GetOrCreateMapping(ctx context.Context, sourceID, objectType, parentID, parentType string) (*domain.IDMapping, error) {
	if sourceID == "" || objectType == "" {
		return nil, fmt.Errorf("%w: mapping needs an object type and a source id", domain.ErrIllegalArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.MappingKey{ObjectType: objectType, SourceID: sourceID}
	found, err := m.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return found, nil
	}

	created := &domain.IDMapping{
		ObjectType: objectType,
		SourceID:   sourceID,
		ParentType: parentType,
		ParentID:   parentID,
	}
	if err := m.store.Save(ctx, *created); err != nil {
		return nil, fmt.Errorf("failed to save mapping %s/%s: %w", objectType, sourceID, err)
	}
	m.live[key] = created
	return created, nil
}

// GetIDMapping returns the mapping for id, or nil when none exists.
// For pair-keyed types only the parent half is looked up, under the parent's type.
func (m *Mapper) GetIDMapping(ctx context.Context, id, objectType string) (*domain.IDMapping, error) {
	mappingType, delegates, err := m.types.MappingType(objectType)
	if err != nil {
		return nil, err
	}

	lookupID := id
	if delegates {
		p, err := pairid.Parse(id)
		if err != nil {
			return nil, err
		}
		lookupID = p.ParentID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(ctx, domain.MappingKey{ObjectType: mappingType, SourceID: lookupID})
}

func (m *Mapper) lookup(ctx context.Context, key domain.MappingKey) (*domain.IDMapping, error) {
	if live, ok := m.live[key]; ok {
		return live, nil
	}
	stored, err := m.store.Load(ctx, key)
	if errors.Is(err, domain.ErrMappingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping %s/%s: %w", key.ObjectType, key.SourceID, err)
	}
	live := &stored
	m.live[key] = live
	return live, nil
}

// GetTargetID translates id through mapping.
// When id is a pair id whose parent half is the mapping's source id, only the
// parent half is replaced and the child name is kept. A nil mapping leaves id unchanged.
func (m *Mapper) GetTargetID(mapping *domain.IDMapping, id string) (string, error) {
	if mapping == nil {
		return id, nil
	}
	if !mapping.Resolved() {
		return "", m.invalidTarget(mapping, id)
	}

	if p, err := pairid.Parse(id); err == nil && p.ParentID == mapping.SourceID {
		moved, err := p.WithParent(mapping.TargetID)
		if err != nil {
			return "", m.invalidTarget(mapping, id)
		}
		return moved.String(), nil
	}
	return mapping.TargetID, nil
}

// GetTargetIntID translates id for consumers that only accept numeric ids.
func (m *Mapper) GetTargetIntID(mapping *domain.IDMapping, id string) (int64, error) {
	if mapping == nil {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, &domain.FormatError{Value: id, Reason: "not a numeric id"}
		}
		return n, nil
	}
	if !mapping.Resolved() {
		return 0, m.invalidTarget(mapping, id)
	}
	n, err := strconv.ParseInt(mapping.TargetID, 10, 64)
	if err != nil {
		return 0, m.invalidTarget(mapping, id)
	}
	return n, nil
}

// SetTarget records the target id allocated for mapping and persists it.
func (m *Mapper) SetTarget(ctx context.Context, mapping *domain.IDMapping, targetID string) error {
	if mapping == nil {
		return fmt.Errorf("%w: nil mapping", domain.ErrIllegalArgument)
	}
	if targetID == "" {
		return m.invalidTarget(mapping, mapping.SourceID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mapping.TargetID = targetID
	if err := m.store.Save(ctx, *mapping); err != nil {
		return fmt.Errorf("failed to save mapping %s/%s: %w", mapping.ObjectType, mapping.SourceID, err)
	}
	m.live[mapping.Key()] = mapping
	return nil
}

// TargetID translates id when a mapping exists and returns it unchanged otherwise.
func (m *Mapper) TargetID(ctx context.Context, id, objectType string) (string, error) {
	mapping, err := m.GetIDMapping(ctx, id, objectType)
	if err != nil {
		return "", err
	}
	return m.GetTargetID(mapping, id)
}

// Mappings returns every mapping recorded so far.
func (m *Mapper) Mappings(ctx context.Context) ([]domain.IDMapping, error) {
	return m.store.List(ctx)
}

// Discard drops every mapping. The mapper must not be used afterwards.
func (m *Mapper) Discard(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live = make(map[domain.MappingKey]*domain.IDMapping)
	return m.store.Discard(ctx)
}

func (m *Mapper) invalidTarget(mapping *domain.IDMapping, id string) error {
	return &domain.InvalidIDMappingTargetError{
		ObjectType:   mapping.ObjectType,
		ID:           id,
		SourceServer: m.sourceServer,
		Target:       mapping.TargetID,
	}
}
