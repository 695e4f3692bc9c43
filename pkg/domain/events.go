package domain

import (
	"context"
	"time"
)

// InstallState is the per-object state of the installer state machine.
type InstallState string

const (
	StateNotInstalled InstallState = "not_installed"
	StateCreating     InstallState = "creating"
	StateModifying    InstallState = "modifying"
	StateSkipping     InstallState = "skipping"
	StateLogged       InstallState = "logged"
)

// Outcome summarises what happened to one object during an import.
type Outcome string

const (
	// OutcomeApplied means every mutation for the object succeeded.
	OutcomeApplied Outcome = "applied"
	// OutcomePartial means some mutations were logged before a failure.
	OutcomePartial Outcome = "partial"
	// OutcomeSkipped means the object existed and was not overwritten, or needed no mutation.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means installation of the object failed.
	OutcomeFailed Outcome = "failed"
	// OutcomeNotAttempted means installation never started.
	OutcomeNotAttempted Outcome = "not_attempted"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp   time.Time `json:"timestamp"`
	OperationID string    `json:"operation_id"`
}

// InstallEvent reports a state transition of one object.
type InstallEvent struct {
	EventBase
	Dependency Dependency    `json:"dependency"`
	State      InstallState  `json:"state"`
	Action     Action        `json:"action,omitempty"`
	Err        error         `json:"-"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// DiscoverEvent reports one node added to a closure.
type DiscoverEvent struct {
	EventBase
	Dependency Dependency `json:"dependency"`
	Required   bool       `json:"required"`
	Depth      int        `json:"depth"`
}

// Hooks defines callbacks for engine observability.
type Hooks struct {
	OnDiscover     func(context.Context, *DiscoverEvent)
	OnInstallState func(context.Context, *InstallEvent)
	OnInstallError func(context.Context, *InstallEvent)
}

func (h Hooks) Discover(ctx context.Context, e *DiscoverEvent) {
	if h.OnDiscover != nil {
		h.OnDiscover(ctx, e)
	}
}

func (h Hooks) InstallState(ctx context.Context, e *InstallEvent) {
	if h.OnInstallState != nil {
		h.OnInstallState(ctx, e)
	}
}

func (h Hooks) InstallError(ctx context.Context, e *InstallEvent) {
	if h.OnInstallError != nil {
		h.OnInstallError(ctx, e)
	}
}

// Merge returns hooks that call h first and then o.
func (h Hooks) Merge(o Hooks) Hooks {
	return Hooks{
		OnDiscover: func(ctx context.Context, e *DiscoverEvent) {
			h.Discover(ctx, e)
			o.Discover(ctx, e)
		},
		OnInstallState: func(ctx context.Context, e *InstallEvent) {
			h.InstallState(ctx, e)
			o.InstallState(ctx, e)
		},
		OnInstallError: func(ctx context.Context, e *InstallEvent) {
			h.InstallError(ctx, e)
			o.InstallError(ctx, e)
		},
	}
}
