/*
Package domain contains the core domain models for the transit deployment engine.

It defines the entities exchanged between the handler registry, the dependency
graph walker and the installer. This package is kept pure and free of I/O and
persistence, following Hexagonal Architecture principles.

# Key Entities

  - DependencyDef: Static, configuration-loaded metadata for one object type.
  - Dependency: One discovered object reference, classified by Kind.
  - IDMapping: A source to target identifier translation scoped to one import.
  - LogEntry: One audit record of a mutation performed by the installer.
*/
package domain
