package main

import (
	"context"

	"github.com/aretw0/transit"
	"github.com/aretw0/transit/internal/config"
	"github.com/aretw0/transit/pkg/adapters/memory"
	"github.com/aretw0/transit/pkg/handler"
)

// definitionsPath returns the first argument when given, the configured path otherwise.
func definitionsPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Definitions
}

// newEngine builds an engine over the definitions at defsPath. When snapshotPath
// is set the engine inspects that captured catalog, otherwise an empty one.
func newEngine(ctx context.Context, defsPath, snapshotPath string, opts ...transit.Option) (*transit.Engine, error) {
	defs, err := config.LoadDefs(defsPath)
	if err != nil {
		return nil, err
	}

	svc := handler.Services{Catalog: memory.NewCatalog(), Records: memory.NewRecords()}
	if snapshotPath != "" {
		snap, err := config.LoadSnapshot(snapshotPath)
		if err != nil {
			return nil, err
		}
		if svc, err = snap.Services(ctx, defs); err != nil {
			return nil, err
		}
	}

	opts = append([]transit.Option{
		transit.WithServices(svc),
		transit.WithDefinitions(defs...),
		transit.WithLogger(logger),
	}, opts...)
	return transit.New(opts...)
}
