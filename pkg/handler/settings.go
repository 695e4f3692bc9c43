package handler

import (
	"fmt"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// Allocation policies of keyed tables.
const (
	// AllocateKeep installs objects under their source id.
	AllocateKeep = "keep"
	// AllocateReserve reserves a fresh numeric id on the target.
	AllocateReserve = "reserve"
)

// TableSettings configures the table and pair-table adapters.
type TableSettings struct {
	Table    string `mapstructure:"table"`
	IDColumn string `mapstructure:"id_column"`
	// References maps a column to the dependency type whose id it holds.
	// Referenced ids are translated through the import mapper on install.
	References map[string]string `mapstructure:"references"`
	Allocate   string            `mapstructure:"allocate"`
	// Replace deletes the existing target record before installing.
	Replace bool `mapstructure:"replace"`
}

// TableSchema validates TableSettings at definition load time.
func TableSchema() schema.Schema {
	return schema.Schema{
		"table":      schema.Required(schema.String()),
		"id_column":  schema.Optional(schema.String()),
		"references": schema.Optional(schema.Map(schema.String())),
		"allocate":   schema.Optional(schema.OneOf(AllocateKeep, AllocateReserve)),
		"replace":    schema.Optional(schema.Bool()),
	}
}

// CompositeSchema accepts no settings.
func CompositeSchema() schema.Schema {
	return schema.Schema{}
}

// DecodeTableSettings decodes def.Settings and applies defaults.
func DecodeTableSettings(def domain.DependencyDef) (TableSettings, error) {
	var s TableSettings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &s,
		ErrorUnused: true,
	})
	if err != nil {
		return s, err
	}
	if err := dec.Decode(def.Settings); err != nil {
		return s, fmt.Errorf("failed to decode settings of %s: %w", def.Type, err)
	}

	if s.IDColumn == "" {
		s.IDColumn = "id"
	}
	if s.Allocate == "" {
		s.Allocate = AllocateKeep
	}
	if s.Table == "" {
		return s, &domain.ConfigurationError{Type: def.Type, Reason: "settings.table is required"}
	}
	return s, nil
}
