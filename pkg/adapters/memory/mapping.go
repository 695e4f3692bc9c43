package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// MappingStore implements ports.MappingStore in memory.
// Safe for concurrent use.
type MappingStore struct {
	data map[domain.MappingKey]domain.IDMapping
	mu   sync.RWMutex
}

var _ ports.MappingStore = (*MappingStore)(nil)

// NewMappingStore creates a new in-memory mapping store.
func NewMappingStore() *MappingStore {
	return &MappingStore{
		data: make(map[domain.MappingKey]domain.IDMapping),
	}
}

// Load retrieves the mapping stored under key.
func (s *MappingStore) Load(ctx context.Context, key domain.MappingKey) (domain.IDMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.data[key]
	if !ok {
		return domain.IDMapping{}, domain.ErrMappingNotFound
	}
	return m, nil
}

// Save persists the mapping, replacing any previous value for its key.
func (s *MappingStore) Save(ctx context.Context, m domain.IDMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[m.Key()] = m
	return nil
}

// List returns every mapping ordered by type and source id.
func (s *MappingStore) List(ctx context.Context) ([]domain.IDMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.IDMapping, 0, len(s.data))
	for _, m := range s.data {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ObjectType != out[j].ObjectType {
			return out[i].ObjectType < out[j].ObjectType
		}
		return out[i].SourceID < out[j].SourceID
	})
	return out, nil
}

// Discard drops every mapping.
func (s *MappingStore) Discard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[domain.MappingKey]domain.IDMapping)
	return nil
}
