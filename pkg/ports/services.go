package ports

import (
	"context"

	"github.com/aretw0/transit/pkg/domain"
)

// CatalogEntry is one object as reported by the platform catalog.
type CatalogEntry struct {
	Type       string
	ID         string
	ParentType string
	ParentID   string
	Name       string
	// Kind overrides the definition's default kind when set.
	Kind       domain.Kind
	Attributes map[string]string
}

// CatalogService answers existence and attribute lookups on one server.
type CatalogService interface {
	// Lookup returns the entry, or nil when the object does not exist.
	Lookup(ctx context.Context, objectType, id string) (*CatalogEntry, error)

	// List returns the top-level objects of a type.
	List(ctx context.Context, objectType string, scope domain.Scope) ([]CatalogEntry, error)

	// Children returns the objects of childType structurally owned by (objectType, id).
	Children(ctx context.Context, objectType, id, childType string) ([]CatalogEntry, error)
}

// Record is one tabular row keyed by schema column names.
type Record map[string]any

// RecordService reads and writes tabular records keyed by schema.
type RecordService interface {
	// Read returns domain.ErrNotFound when the key does not exist.
	Read(ctx context.Context, table, key string) (Record, error)
	Exists(ctx context.Context, table, key string) (bool, error)
	Write(ctx context.Context, table, key string, rec Record) error
	Delete(ctx context.Context, table, key string) error
	// NextID reserves a new numeric identifier in table.
	NextID(ctx context.Context, table string) (int64, error)
}

// Archive stores packaged artifacts by name.
type Archive interface {
	// Open returns an error matching fs.ErrNotExist when the entry is absent and
	// domain.ErrArchiveUnreadable when the container itself cannot be read.
	Open(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	List(ctx context.Context) ([]string, error)
}
