package dsl

import (
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/handler"
)

// DefBuilder provides a fluent API for configuring one definition.
type DefBuilder struct {
	def domain.DependencyDef
}

// Table binds the type to the table adapter storing its records in table.
func (d *DefBuilder) Table(table string) *DefBuilder {
	d.def.Adapter = handler.AdapterTable
	return d.Setting("table", table)
}

// PairTable binds a pair-keyed type owned by parentType to the pair-table adapter.
func (d *DefBuilder) PairTable(parentType, table string) *DefBuilder {
	d.def.Adapter = handler.AdapterPairTable
	d.def.ParentType = parentType
	return d.Setting("table", table)
}

// Composite marks a type installed solely through its children.
func (d *DefBuilder) Composite() *DefBuilder {
	d.def.Adapter = handler.AdapterComposite
	return d
}

// Adapter selects a custom adapter binding.
func (d *DefBuilder) Adapter(name string) *DefBuilder {
	d.def.Adapter = name
	return d
}

// Setting sets an adapter setting.
func (d *DefBuilder) Setting(key string, value any) *DefBuilder {
	if d.def.Settings == nil {
		d.def.Settings = make(map[string]any)
	}
	d.def.Settings[key] = value
	return d
}

// Children declares optional child types.
func (d *DefBuilder) Children(types ...string) *DefBuilder {
	for _, t := range types {
		if !d.def.HasChildType(t) {
			d.def.ChildTypes = append(d.def.ChildTypes, t)
		}
	}
	return d
}

// Requires declares required child types. They are added as child types too.
func (d *DefBuilder) Requires(types ...string) *DefBuilder {
	d.Children(types...)
	for _, t := range types {
		if !d.def.IsRequiredChild(t) {
			d.def.RequiredChildTypes = append(d.def.RequiredChildTypes, t)
		}
	}
	return d
}

// Kind sets the default kind of the type's instances.
func (d *DefBuilder) Kind(k domain.Kind) *DefBuilder {
	d.def.DefaultKind = k
	return d
}

func (d *DefBuilder) Local() *DefBuilder  { return d.Kind(domain.KindLocal) }
func (d *DefBuilder) Server() *DefBuilder { return d.Kind(domain.KindServer) }
func (d *DefBuilder) System() *DefBuilder { return d.Kind(domain.KindSystem) }

// MapIDs lets the target allocate the type's identifiers through the mapper.
func (d *DefBuilder) MapIDs() *DefBuilder {
	d.def.SupportsIDMapping = true
	return d
}

// Reserve maps ids and always reserves fresh ones on the target.
func (d *DefBuilder) Reserve() *DefBuilder {
	d.MapIDs()
	return d.Setting("allocate", handler.AllocateReserve)
}

// Ref declares a literal id stored in attribute that refers to an object of typeName.
func (d *DefBuilder) Ref(attribute, typeName string) *DefBuilder {
	d.def.SupportsIDTypes = true
	d.def.IDTypes = append(d.def.IDTypes, domain.IDType{Attribute: attribute, Type: typeName})
	return d
}

// ParentRef declares a literal id of a pair-keyed typeName whose parent of
// parentType is named by parentAttribute. The parent is packaged instead.
func (d *DefBuilder) ParentRef(attribute, typeName, parentType, parentAttribute string) *DefBuilder {
	d.def.SupportsIDTypes = true
	d.def.IDTypes = append(d.def.IDTypes, domain.IDType{
		Attribute:       attribute,
		Type:            typeName,
		ParentType:      parentType,
		ParentAttribute: parentAttribute,
	})
	return d
}

// References translates column through the mapping of typeName on install.
func (d *DefBuilder) References(column, typeName string) *DefBuilder {
	refs, _ := d.def.Settings["references"].(map[string]any)
	if refs == nil {
		refs = make(map[string]any)
	}
	refs[column] = typeName
	return d.Setting("references", refs)
}

func (d *DefBuilder) AutoExpand() *DefBuilder {
	d.def.ShouldAutoExpand = true
	return d
}

// Defer installs the type's instances after the parent that references them.
func (d *DefBuilder) Defer() *DefBuilder {
	d.def.DeferInstallation = true
	return d
}

// NoOverwrite keeps existing target objects untouched.
func (d *DefBuilder) NoOverwrite() *DefBuilder {
	v := false
	d.def.Overwrite = &v
	return d
}

// Replace updates existing objects by deleting and recreating them.
func (d *DefBuilder) Replace() *DefBuilder {
	return d.Setting("replace", true)
}

func (d *DefBuilder) UserDependencies() *DefBuilder {
	d.def.SupportsUserDependencies = true
	return d
}

// ParentScoped lets listings be narrowed to one parent.
func (d *DefBuilder) ParentScoped(parentType string) *DefBuilder {
	d.def.SupportsParentID = true
	d.def.ParentType = parentType
	return d
}
