/*
Package observability turns engine hooks into metrics and structured logs.

Metrics registers Prometheus collectors and exposes domain.Hooks that update them
as objects are discovered and installed. LoggingHooks emits the same events
through slog. Both can be combined with domain.Hooks.Merge.
*/
package observability
