package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

type entryKey struct {
	objectType string
	id         string
}

// Catalog implements ports.CatalogService over a fixed set of entries.
// It is used by tests and by the CLI when inspecting exported closures offline.
type Catalog struct {
	mu      sync.RWMutex
	entries map[entryKey]ports.CatalogEntry
	order   []entryKey
}

var _ ports.CatalogService = (*Catalog)(nil)

// NewCatalog creates a catalog seeded with entries.
func NewCatalog(entries ...ports.CatalogEntry) *Catalog {
	c := &Catalog{entries: make(map[entryKey]ports.CatalogEntry)}
	c.Add(entries...)
	return c
}

// Add inserts or replaces entries. Insertion order is kept for listings.
func (c *Catalog) Add(entries ...ports.CatalogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range entries {
		k := entryKey{e.Type, e.ID}
		if _, ok := c.entries[k]; !ok {
			c.order = append(c.order, k)
		}
		c.entries[k] = cloneEntry(e)
	}
}

// Remove deletes an entry.
func (c *Catalog) Remove(objectType, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := entryKey{objectType, id}
	if _, ok := c.entries[k]; !ok {
		return
	}
	delete(c.entries, k)
	for i, o := range c.order {
		if o == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Lookup returns the entry or nil when absent.
func (c *Catalog) Lookup(ctx context.Context, objectType, id string) (*ports.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[entryKey{objectType, id}]
	if !ok {
		return nil, nil
	}
	out := cloneEntry(e)
	return &out, nil
}

// List returns the entries of objectType that have no parent, or whose parent
// matches scope.ParentID when it is set. User-scoped entries are listed only
// when scope.IncludeUsers is true.
func (c *Catalog) List(ctx context.Context, objectType string, scope domain.Scope) ([]ports.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ports.CatalogEntry
	for _, k := range c.order {
		e := c.entries[k]
		if e.Type != objectType {
			continue
		}
		if scope.ParentID != "" && e.ParentID != scope.ParentID {
			continue
		}
		if scope.ParentID == "" && e.ParentID != "" {
			continue
		}
		if e.Attributes["user"] != "" && !scope.IncludeUsers {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	return out, nil
}

// Children returns the entries of childType owned by (objectType, id).
func (c *Catalog) Children(ctx context.Context, objectType, id, childType string) ([]ports.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ports.CatalogEntry
	for _, k := range c.order {
		e := c.entries[k]
		if e.Type == childType && e.ParentType == objectType && e.ParentID == id {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

// Types returns the distinct object types present, sorted.
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for k := range c.entries {
		if !seen[k.objectType] {
			seen[k.objectType] = true
			out = append(out, k.objectType)
		}
	}
	sort.Strings(out)
	return out
}

func cloneEntry(e ports.CatalogEntry) ports.CatalogEntry {
	if e.Attributes != nil {
		attrs := make(map[string]string, len(e.Attributes))
		for k, v := range e.Attributes {
			attrs[k] = v
		}
		e.Attributes = attrs
	}
	return e
}
