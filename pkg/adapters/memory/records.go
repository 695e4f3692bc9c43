package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// Records implements ports.RecordService in memory.
// Records are copied on the way in and on the way out.
type Records struct {
	mu     sync.RWMutex
	tables map[string]map[string]ports.Record
	seq    map[string]int64
}

var _ ports.RecordService = (*Records)(nil)

// NewRecords creates an empty record service.
func NewRecords() *Records {
	return &Records{
		tables: make(map[string]map[string]ports.Record),
		seq:    make(map[string]int64),
	}
}

// Read returns the record stored under key.
func (r *Records) Read(ctx context.Context, table, key string) (ports.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.tables[table][key]
	if !ok {
		return nil, &domain.NotFoundError{ObjectType: table, ID: key}
	}
	return cloneRecord(rec), nil
}

// Exists reports whether key is present in table.
func (r *Records) Exists(ctx context.Context, table, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[table][key]
	return ok, nil
}

// Write stores rec under key, replacing any previous record.
func (r *Records) Write(ctx context.Context, table, key string, rec ports.Record) error {
	if key == "" {
		return fmt.Errorf("%w: empty record key", domain.ErrIllegalArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[table]
	if !ok {
		t = make(map[string]ports.Record)
		r.tables[table] = t
	}
	t[key] = cloneRecord(rec)
	return nil
}

// Delete removes key from table. Deleting a missing key is not an error.
func (r *Records) Delete(ctx context.Context, table, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables[table], key)
	return nil
}

// NextID reserves the next numeric id of table.
// Sequences start at 1000 so reserved ids never collide with small fixture ids.
func (r *Records) NextID(ctx context.Context, table string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seq[table] == 0 {
		r.seq[table] = 999
	}
	r.seq[table]++
	return r.seq[table], nil
}

// Keys returns the keys of table, sorted.
func (r *Records) Keys(table string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.tables[table]))
	for k := range r.tables[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneRecord(rec ports.Record) ports.Record {
	out := make(ports.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
