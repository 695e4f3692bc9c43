/*
Package transit moves interdependent configuration objects from one server to another.

An export starts from a root object, walks every object it depends on and packages
their artifacts into an archive. An import installs that closure on a target server
in dependency order, translating source identifiers into the identifiers the target
allocates and recording every mutation in an append-only transaction log.

# Concept

Each object type is described by a domain.DependencyDef and served by a handler
built from an adapter binding. Definitions say how a type relates to others:

  - Child types: what the object owns or references, and which of those are required.
  - Kind: local objects travel with their parent, shared ones are referenced,
    server objects must already exist on the target and system objects are never moved.
  - ID mapping: whether the target allocates new identifiers, and whether a
    pair-keyed child ("parent:name") follows its parent's mapping.

# Usage

An Engine is bound to the catalog and records of one server. Export on the source,
import on the target:

	source, err := transit.New(
		transit.WithServices(handler.Services{Catalog: srcCatalog, Records: srcRecords}),
		transit.WithDefinitions(defs...),
	)
	if err != nil {
		log.Fatal(err)
	}

	root, _ := source.Lookup(ctx, "Page", "5")
	archive := memory.NewArchive(nil)
	pkg, err := source.Export(ctx, root, archive)

	target, _ := transit.New(
		transit.WithServices(handler.Services{Catalog: dstCatalog, Records: dstRecords}),
		transit.WithDefinitions(defs...),
	)
	report, err := target.Import(ctx, archive, pkg.Closure, "staging", "prod")

The report lists the install order, the outcome of every object and the
transaction log of the operation.
*/
package transit
