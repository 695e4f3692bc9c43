package ports

import (
	"context"

	"github.com/aretw0/transit/pkg/domain"
)

// MappingStore persists the identifier mappings of one import context.
type MappingStore interface {
	// Load returns domain.ErrMappingNotFound when no mapping exists for key.
	Load(ctx context.Context, key domain.MappingKey) (domain.IDMapping, error)

	Save(ctx context.Context, m domain.IDMapping) error

	List(ctx context.Context) ([]domain.IDMapping, error)

	// Discard drops every mapping of the context. Called when the operation completes.
	Discard(ctx context.Context) error
}

// IDMapper translates source identifiers to target identifiers during an install.
type IDMapper interface {
	// GetOrCreateMapping is an idempotent lookup-or-create by (objectType, sourceID).
	GetOrCreateMapping(ctx context.Context, sourceID, objectType, parentID, parentType string) (*domain.IDMapping, error)

	// GetIDMapping returns nil when no mapping exists.
	GetIDMapping(ctx context.Context, id, objectType string) (*domain.IDMapping, error)

	// GetTargetID translates id through m.
	GetTargetID(m *domain.IDMapping, id string) (string, error)

	// GetTargetIntID translates id through m for consumers that need a numeric id.
	GetTargetIntID(m *domain.IDMapping, id string) (int64, error)

	// SetTarget records the target identifier allocated for m.
	SetTarget(ctx context.Context, m *domain.IDMapping, targetID string) error

	// TargetID translates id when a mapping exists and returns it unchanged otherwise.
	TargetID(ctx context.Context, id, objectType string) (string, error)
}

// TransactionLog is the append-only audit record of one operation.
type TransactionLog interface {
	Append(ctx context.Context, entry domain.LogEntry) error
	Entries(ctx context.Context) ([]domain.LogEntry, error)
}

// ImportContext is the scope of one deployment operation.
type ImportContext interface {
	OperationID() string
	SourceServer() string
	TargetServer() string
	Mapper() IDMapper
	Log() TransactionLog
}
