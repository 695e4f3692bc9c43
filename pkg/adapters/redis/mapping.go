package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// MappingStore implements ports.MappingStore using one Redis hash per import operation.
// Installer processes on different hosts that share an operation id share its mappings.
type MappingStore struct {
	client      *backend.Client
	prefix      string
	operationID string
	ttl         time.Duration
}

var _ ports.MappingStore = (*MappingStore)(nil)

// Option configures the Redis adapters.
type Option func(*options)

type options struct {
	prefix string
	ttl    time.Duration
}

// WithTTL sets the expiration of the operation keys.
// The TTL is refreshed on every write.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

func buildOptions(opts []Option) options {
	o := options{prefix: "transit:"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewClient creates a Redis client for the given address.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// NewMappingStore creates a mapping store scoped to operationID.
func NewMappingStore(client *backend.Client, operationID string, opts ...Option) *MappingStore {
	o := buildOptions(opts)
	return &MappingStore{
		client:      client,
		prefix:      o.prefix,
		operationID: operationID,
		ttl:         o.ttl,
	}
}

func (s *MappingStore) key() string {
	return s.prefix + "mappings:" + s.operationID
}

func field(k domain.MappingKey) string {
	return k.ObjectType + "\x00" + k.SourceID
}

// Load retrieves the mapping stored under key.
func (s *MappingStore) Load(ctx context.Context, key domain.MappingKey) (domain.IDMapping, error) {
	val, err := s.client.HGet(ctx, s.key(), field(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.IDMapping{}, domain.ErrMappingNotFound
		}
		return domain.IDMapping{}, fmt.Errorf("failed to get mapping from redis: %w", err)
	}

	var m domain.IDMapping
	if err := json.Unmarshal([]byte(val), &m); err != nil {
		return domain.IDMapping{}, fmt.Errorf("failed to unmarshal mapping: %w", err)
	}
	return m, nil
}

// Save persists the mapping and refreshes the operation TTL.
func (s *MappingStore) Save(ctx context.Context, m domain.IDMapping) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, s.key(), field(m.Key()), data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save mapping to redis: %w", err)
	}
	return nil
}

// List returns every mapping of the operation ordered by type and source id.
func (s *MappingStore) List(ctx context.Context) ([]domain.IDMapping, error) {
	vals, err := s.client.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	out := make([]domain.IDMapping, 0, len(vals))
	for _, v := range vals {
		var m domain.IDMapping
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mapping: %w", err)
		}
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

// Discard deletes the operation's hash.
func (s *MappingStore) Discard(ctx context.Context) error {
	return s.client.Del(ctx, s.key()).Err()
}
