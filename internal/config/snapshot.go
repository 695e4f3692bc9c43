package config

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/transit/pkg/adapters/memory"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/handler"
	"github.com/aretw0/transit/pkg/ports"
	"gopkg.in/yaml.v3"
)

// SnapshotObject is one catalog entry of a server snapshot, with its stored record.
type SnapshotObject struct {
	Type       string            `yaml:"type"`
	ID         string            `yaml:"id"`
	ParentType string            `yaml:"parent_type"`
	ParentID   string            `yaml:"parent_id"`
	Name       string            `yaml:"name"`
	Kind       domain.Kind       `yaml:"kind"`
	Attributes map[string]string `yaml:"attributes"`
	Record     map[string]any    `yaml:"record"`
}

// Snapshot is a captured server catalog, used to inspect closures offline.
type Snapshot struct {
	Objects []SnapshotObject `yaml:"objects"`
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &s, nil
}

// Services loads the snapshot into in-memory services. Records are stored in
// the table named by their type's definition.
func (s *Snapshot) Services(ctx context.Context, defs []domain.DependencyDef) (handler.Services, error) {
	tables := make(map[string]string, len(defs))
	for _, def := range defs {
		if _, ok := def.Settings["table"]; !ok {
			continue
		}
		settings, err := handler.DecodeTableSettings(def)
		if err != nil {
			return handler.Services{}, err
		}
		tables[def.Type] = settings.Table
	}

	catalog := memory.NewCatalog()
	records := memory.NewRecords()
	for _, o := range s.Objects {
		if o.Type == "" || o.ID == "" {
			return handler.Services{}, &domain.ConfigurationError{Type: o.Type, Reason: "snapshot object without type or id"}
		}
		catalog.Add(ports.CatalogEntry{
			Type:       o.Type,
			ID:         o.ID,
			ParentType: o.ParentType,
			ParentID:   o.ParentID,
			Name:       o.Name,
			Kind:       o.Kind,
			Attributes: o.Attributes,
		})
		if o.Record == nil {
			continue
		}
		table, ok := tables[o.Type]
		if !ok {
			return handler.Services{}, &domain.ConfigurationError{Type: o.Type, Reason: "snapshot record for a type without table"}
		}
		if err := records.Write(ctx, table, o.ID, ports.Record(o.Record)); err != nil {
			return handler.Services{}, err
		}
	}
	return handler.Services{Catalog: catalog, Records: records}, nil
}
