package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/transit/pkg/domain"
)

// LoggingHooks logs every engine event through logger.
// Discovery and state transitions are logged at debug level, errors at warn.
func LoggingHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnDiscover: func(ctx context.Context, e *domain.DiscoverEvent) {
			logger.DebugContext(ctx, "dependency_discovered",
				"operation_id", e.OperationID,
				"type", e.Dependency.Type,
				"id", e.Dependency.ID,
				"required", e.Required,
				"depth", e.Depth,
			)
		},
		OnInstallState: func(ctx context.Context, e *domain.InstallEvent) {
			attrs := []any{
				"operation_id", e.OperationID,
				"type", e.Dependency.Type,
				"id", e.Dependency.ID,
				"state", e.State,
			}
			if e.Action != "" {
				attrs = append(attrs, "action", e.Action, "duration", e.Duration)
			}
			logger.DebugContext(ctx, "install_state", attrs...)
		},
		OnInstallError: func(ctx context.Context, e *domain.InstallEvent) {
			logger.WarnContext(ctx, "install_error",
				"operation_id", e.OperationID,
				"type", e.Dependency.Type,
				"id", e.Dependency.ID,
				"recoverable", domain.IsRecoverable(e.Err),
				"error", e.Err,
			)
		},
	}
}
