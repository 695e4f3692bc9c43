// Package testutils provides a small content platform shared by the package tests.
//
// The fixture models a site with templates, components and pages:
//
//	Page ──template_id──▶ Template            (id-type reference, shared)
//	Page ──component────▶ ComponentDef        (id-type reference resolved to the parent)
//	Page ──child────────▶ Portlet             (pair-keyed, local, deferred)
//	Page ──child────────▶ Role                (server)
//	ComponentDef ──child▶ ComponentInstance   (pair-keyed, local, deferred)
//	Folder ──child──────▶ FolderDef, FolderContents (local), SystemGroup (system)
package testutils

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/transit/pkg/adapters/memory"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/handler"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/aretw0/transit/pkg/registry"
	"github.com/stretchr/testify/require"
)

// Defs returns the fixture dependency definitions.
func Defs() []domain.DependencyDef {
	noOverwrite := false
	return []domain.DependencyDef{
		{
			Type: "Template", Adapter: handler.AdapterTable,
			SupportsIDMapping: true,
			Settings:          map[string]any{"table": "templates", "allocate": "reserve"},
		},
		{
			Type: "ComponentDef", Adapter: handler.AdapterTable,
			SupportsIDMapping:  true,
			ShouldAutoExpand:   true,
			ChildTypes:         []string{"ComponentInstance"},
			RequiredChildTypes: []string{"ComponentInstance"},
			Settings:           map[string]any{"table": "components", "allocate": "reserve"},
		},
		{
			Type: "ComponentInstance", Adapter: handler.AdapterPairTable,
			ParentType:        "ComponentDef",
			DefaultKind:       domain.KindLocal,
			DeferInstallation: true,
			Settings:          map[string]any{"table": "component_instances"},
		},
		{
			Type: "Page", Adapter: handler.AdapterTable,
			SupportsIDMapping:        true,
			SupportsIDTypes:          true,
			SupportsUserDependencies: true,
			ChildTypes:               []string{"Portlet", "Role"},
			IDTypes: []domain.IDType{
				{Attribute: "template_id", Type: "Template"},
				{Attribute: "component", Type: "ComponentInstance", ParentType: "ComponentDef", ParentAttribute: "component_def"},
			},
			Settings: map[string]any{
				"table":      "pages",
				"references": map[string]any{"template_id": "Template"},
			},
		},
		{
			Type: "Portlet", Adapter: handler.AdapterPairTable,
			ParentType:        "Page",
			DefaultKind:       domain.KindLocal,
			DeferInstallation: true,
			Settings:          map[string]any{"table": "portlets"},
		},
		{
			Type: "Role", Adapter: handler.AdapterTable,
			DefaultKind: domain.KindServer,
			Settings:    map[string]any{"table": "roles"},
		},
		{
			Type: "Folder", Adapter: handler.AdapterComposite,
			ChildTypes:         []string{"FolderDef", "FolderContents", "SystemGroup"},
			RequiredChildTypes: []string{"FolderDef", "FolderContents"},
		},
		{
			Type: "FolderDef", Adapter: handler.AdapterTable,
			DefaultKind: domain.KindLocal,
			Settings:    map[string]any{"table": "folders"},
		},
		{
			Type: "FolderContents", Adapter: handler.AdapterTable,
			DefaultKind:       domain.KindLocal,
			DeferInstallation: true,
			Settings:          map[string]any{"table": "folder_contents"},
		},
		{
			Type: "SystemGroup", Adapter: handler.AdapterTable,
			DefaultKind: domain.KindSystem,
			Settings:    map[string]any{"table": "groups"},
		},
		{
			Type: "Snippet", Adapter: handler.AdapterTable,
			Settings: map[string]any{"table": "snippets", "replace": true},
		},
		{
			Type: "Theme", Adapter: handler.AdapterTable,
			Overwrite: &noOverwrite,
			Settings:  map[string]any{"table": "themes"},
		},
	}
}

// Platform is an in-memory server: a catalog plus its record tables.
type Platform struct {
	Catalog *memory.Catalog
	Records *memory.Records
	tables  map[string]string
}

// NewPlatform creates an empty server.
func NewPlatform() *Platform {
	tables := make(map[string]string)
	for _, def := range Defs() {
		if t, ok := def.Settings["table"].(string); ok {
			tables[def.Type] = t
		}
	}
	return &Platform{
		Catalog: memory.NewCatalog(),
		Records: memory.NewRecords(),
		tables:  tables,
	}
}

// Services returns the handler services backed by the platform.
func (p *Platform) Services() handler.Services {
	return handler.Services{Catalog: p.Catalog, Records: p.Records}
}

// Table returns the record table of objectType.
func (p *Platform) Table(objectType string) string {
	return p.tables[objectType]
}

// Put adds e to the catalog and, when given, stores rec in the type's table.
func (p *Platform) Put(t *testing.T, e ports.CatalogEntry, rec ports.Record) {
	t.Helper()
	p.Catalog.Add(e)
	if rec == nil {
		return
	}
	table := p.tables[e.Type]
	require.NotEmpty(t, table, "no table for %s", e.Type)
	require.NoError(t, p.Records.Write(context.Background(), table, e.ID, rec))
}

// Record reads a record of objectType stored under key.
func (p *Platform) Record(t *testing.T, objectType, key string) ports.Record {
	t.Helper()
	rec, err := p.Records.Read(context.Background(), p.tables[objectType], key)
	require.NoError(t, err)
	return rec
}

// NewRegistry builds a registry over p with the built-in adapters and the fixture definitions.
func NewRegistry(t *testing.T, p *Platform) *registry.Registry {
	t.Helper()
	reg := registry.New()
	handler.RegisterBuiltins(reg, p.Services())
	require.NoError(t, reg.Load(Defs()...))
	return reg
}

// RecordJSON encodes rec as an archive entry.
func RecordJSON(t *testing.T, rec ports.Record) []byte {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	return data
}

// Dep is shorthand for a dependency literal.
func Dep(objectType, id string, kind domain.Kind) domain.Dependency {
	return domain.Dependency{Type: objectType, ID: id, DisplayName: id, Kind: kind}
}

// SeedSite fills p with a page that references a template and a component
// instance, owns a portlet and grants a role, plus a folder "/Site".
func SeedSite(t *testing.T, p *Platform) {
	t.Helper()
	p.Put(t, ports.CatalogEntry{Type: "Template", ID: "3", Name: "Two columns"},
		ports.Record{"id": "3", "name": "Two columns"})
	p.Put(t, ports.CatalogEntry{Type: "ComponentDef", ID: "12", Name: "Navigation"},
		ports.Record{"id": "12", "name": "Navigation"})
	p.Put(t, ports.CatalogEntry{Type: "ComponentInstance", ID: "12:sidebar", ParentType: "ComponentDef", ParentID: "12", Name: "sidebar"},
		ports.Record{"id": "12:sidebar", "slot": "left"})
	p.Put(t, ports.CatalogEntry{
		Type: "Page", ID: "5", Name: "Home",
		Attributes: map[string]string{"template_id": "3", "component": "12:sidebar", "component_def": "12"},
	}, ports.Record{"id": "5", "title": "Home", "template_id": "3"})
	p.Put(t, ports.CatalogEntry{Type: "Portlet", ID: "5:news", ParentType: "Page", ParentID: "5", Name: "news"},
		ports.Record{"id": "5:news", "column": 1})
	p.Put(t, ports.CatalogEntry{Type: "Role", ID: "editor", ParentType: "Page", ParentID: "5", Name: "editor"}, nil)

	p.Put(t, ports.CatalogEntry{Type: "Folder", ID: "/Site", Name: "Site"}, nil)
	p.Put(t, ports.CatalogEntry{Type: "FolderDef", ID: "/Site", ParentType: "Folder", ParentID: "/Site", Name: "Site"},
		ports.Record{"id": "/Site", "path": "/Site"})
	p.Put(t, ports.CatalogEntry{Type: "FolderContents", ID: "/Site", ParentType: "Folder", ParentID: "/Site", Name: "Site"},
		ports.Record{"id": "/Site", "items": 4})
	p.Put(t, ports.CatalogEntry{Type: "SystemGroup", ID: "admins", ParentType: "Folder", ParentID: "/Site", Name: "admins"}, nil)
}
