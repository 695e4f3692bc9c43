package handler

import (
	"errors"
	"fmt"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/aretw0/transit/pkg/registry"
)

// Adapter binding names.
const (
	AdapterTable     = "table"
	AdapterPairTable = "pair-table"
	AdapterComposite = "composite"
)

// Services are the platform services the built-in handlers run against.
type Services struct {
	Catalog ports.CatalogService
	Records ports.RecordService
}

// RegisterBuiltins binds the built-in adapters to reg.
func RegisterBuiltins(reg *registry.Registry, svc Services) {
	reg.Register(AdapterTable, NewTableFactory(svc), TableSchema())
	reg.Register(AdapterPairTable, NewPairTableFactory(svc), TableSchema())
	reg.Register(AdapterComposite, NewCompositeFactory(svc), CompositeSchema())
}

func (s Services) check(needRecords bool) error {
	if s.Catalog == nil {
		return errors.New("no catalog service configured")
	}
	if needRecords && s.Records == nil {
		return errors.New("no record service configured")
	}
	return nil
}

// NewTableFactory builds handlers for objects stored as one record keyed by their own id.
func NewTableFactory(svc Services) registry.Factory {
	return func(def domain.DependencyDef, locator ports.HandlerLocator) (ports.Handler, error) {
		if err := svc.check(true); err != nil {
			return nil, err
		}
		settings, err := DecodeTableSettings(def)
		if err != nil {
			return nil, err
		}

		var ids IDStrategy = PassthroughIDs{ObjectType: def.Type}
		if def.SupportsIDMapping {
			ids = KeyedIDs{ObjectType: def.Type, Policy: settings.Allocate, Table: settings.Table, Records: svc.Records}
		}
		return newFileHandler(def, locator, svc, settings, ids), nil
	}
}

// NewPairTableFactory builds handlers for objects keyed by Pair-ID under a parent type.
func NewPairTableFactory(svc Services) registry.Factory {
	return func(def domain.DependencyDef, locator ports.HandlerLocator) (ports.Handler, error) {
		if err := svc.check(true); err != nil {
			return nil, err
		}
		if def.ParentType == "" {
			return nil, fmt.Errorf("pair-keyed type %s has no parent type", def.Type)
		}
		settings, err := DecodeTableSettings(def)
		if err != nil {
			return nil, err
		}
		if settings.Allocate == AllocateReserve {
			return nil, fmt.Errorf("pair-keyed type %s cannot reserve ids", def.Type)
		}
		return newFileHandler(def, locator, svc, settings, PairIDStrategy{ParentType: def.ParentType, Locator: locator}), nil
	}
}

// NewCompositeFactory builds handlers for objects that exist only through their children.
func NewCompositeFactory(svc Services) registry.Factory {
	return func(def domain.DependencyDef, locator ports.HandlerLocator) (ports.Handler, error) {
		if err := svc.check(false); err != nil {
			return nil, err
		}
		if len(def.ChildTypes) == 0 {
			return nil, fmt.Errorf("composite type %s declares no child types", def.Type)
		}
		discovery := NewCatalogDiscovery(def, svc.Catalog, locator)
		return &Handler{
			Traits:    NewTraits(def),
			discovery: discovery,
			ids:       PassthroughIDs{ObjectType: def.Type},
			packager:  DelegateStrategy{Discovery: discovery},
			composite: true,
		}, nil
	}
}

func newFileHandler(def domain.DependencyDef, locator ports.HandlerLocator, svc Services, settings TableSettings, ids IDStrategy) *Handler {
	return &Handler{
		Traits:    NewTraits(def),
		discovery: NewCatalogDiscovery(def, svc.Catalog, locator),
		ids:       ids,
		packager:  FileStrategy{Settings: settings, Records: svc.Records, IDs: ids, Locator: locator},
		replace:   settings.Replace,
	}
}
