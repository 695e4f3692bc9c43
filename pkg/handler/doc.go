// Package handler provides the built-in dependency handlers and the strategies
// they are composed from.
//
// A handler is assembled from independent parts instead of a type hierarchy:
//
//   - Traits answers the static questions asked of a definition.
//   - CatalogDiscovery finds objects and their children through a CatalogService.
//   - An IDStrategy decides the key an object is installed under.
//   - A Packager lists, exports and installs the object's archive artifacts.
//
// RegisterBuiltins binds the "table", "pair-table" and "composite" adapters to a registry.
package handler
