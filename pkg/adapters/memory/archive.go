package memory

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/aretw0/transit/pkg/ports"
)

// Archive implements ports.Archive in memory.
type Archive struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ ports.Archive = (*Archive)(nil)

// NewArchive creates an archive with optional initial entries.
func NewArchive(entries map[string][]byte) *Archive {
	a := &Archive{entries: make(map[string][]byte, len(entries))}
	for k, v := range entries {
		a.entries[k] = append([]byte(nil), v...)
	}
	return a
}

// Open returns a copy of the named entry.
func (a *Archive) Open(ctx context.Context, name string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	data, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("archive entry %q: %w", name, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// Put stores data under name.
func (a *Archive) Put(ctx context.Context, name string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[name] = append([]byte(nil), data...)
	return nil
}

// List returns the entry names, sorted.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.entries))
	for k := range a.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}
