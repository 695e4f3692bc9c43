// Package operation holds the state scoped to one import operation: its id,
// the identifier mapper and the transaction log.
package operation

import (
	"context"
	"fmt"

	"github.com/aretw0/transit/pkg/adapters/memory"
	"github.com/aretw0/transit/pkg/mapping"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/google/uuid"
)

// StoreFactory creates the mapping store and transaction log of an operation.
type StoreFactory func(operationID string) (ports.MappingStore, ports.TransactionLog, error)

// MemoryStores keeps mappings and log in process memory.
func MemoryStores(string) (ports.MappingStore, ports.TransactionLog, error) {
	return memory.NewMappingStore(), memory.NewTransactionLog(), nil
}

// Context implements ports.ImportContext.
type Context struct {
	id     string
	source string
	target string
	mapper *mapping.Mapper
	log    ports.TransactionLog
}

var _ ports.ImportContext = (*Context)(nil)

type config struct {
	id     string
	source string
	target string
	stores StoreFactory
}

// Option configures a Context.
type Option func(*config)

// WithID sets the operation id. A random UUID is used by default.
func WithID(id string) Option {
	return func(c *config) { c.id = id }
}

// WithServers names the source and target servers.
func WithServers(source, target string) Option {
	return func(c *config) {
		c.source = source
		c.target = target
	}
}

// WithStores sets where mappings and log entries are kept.
func WithStores(f StoreFactory) Option {
	return func(c *config) { c.stores = f }
}

// New creates the context of a new operation.
func New(types mapping.TypeResolver, opts ...Option) (*Context, error) {
	cfg := config{stores: MemoryStores}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	store, log, err := cfg.stores(cfg.id)
	if err != nil {
		return nil, fmt.Errorf("failed to open stores of operation %s: %w", cfg.id, err)
	}

	return &Context{
		id:     cfg.id,
		source: cfg.source,
		target: cfg.target,
		mapper: mapping.New(store, types, cfg.source),
		log:    log,
	}, nil
}

func (c *Context) OperationID() string { return c.id }
func (c *Context) SourceServer() string { return c.source }
func (c *Context) TargetServer() string { return c.target }

func (c *Context) Mapper() ports.IDMapper { return c.mapper }
func (c *Context) Log() ports.TransactionLog { return c.log }

// Close discards the operation's mappings. The log is kept.
func (c *Context) Close(ctx context.Context) error {
	return c.mapper.Discard(ctx)
}
