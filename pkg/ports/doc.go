/*
Package ports defines the driven ports (interfaces) of the transit engine.

These interfaces decouple the generic framework from the per-type adapters and
from the collaborating services of the content platform, so that the walker and
the installer never depend on adapter internals.

# Key Interfaces

  - Handler: The discovery and packaging contract every type adapter implements.
  - HandlerLocator: Resolves the handler of a dependency type (the registry).
  - CatalogService, RecordService, Archive: Opaque platform services consumed by adapters.
  - MappingStore, IDMapper: Identifier remapping within one import context.
  - TransactionLog: Append-only audit record of installer mutations.
  - TargetLocker, DistributedLocker: Exclusive access to a target during an install.
*/
package ports
