// Package install applies a dependency closure to a target server.
package install

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/transit/internal/dag"
	"github.com/aretw0/transit/internal/discovery"
	"github.com/aretw0/transit/internal/logging"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/aretw0/transit/pkg/session"
)

// Installer is the only component that mutates the target.
type Installer struct {
	locator ports.HandlerLocator
	locker  ports.TargetLocker
	logger  *slog.Logger
	hooks   domain.Hooks
}

// Option configures an Installer.
type Option func(*Installer)

// WithLocker sets the lock taken on the target server for the whole run.
func WithLocker(locker ports.TargetLocker) Option {
	return func(i *Installer) {
		i.locker = locker
	}
}

// WithLogger sets the installer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Installer) {
		i.logger = logger
	}
}

// WithHooks sets the install hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(i *Installer) {
		i.hooks = hooks
	}
}

// New creates an installer resolving handlers through locator.
func New(locator ports.HandlerLocator, opts ...Option) *Installer {
	i := &Installer{
		locator: locator,
		locker:  session.NewManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install installs every object of closure from archive.
// Recoverable failures fail their object and its pending descendants; any other
// failure stops the run. The report is returned in both cases.
func (i *Installer) Install(ctx context.Context, archive ports.Archive, closure *discovery.Closure, ictx ports.ImportContext) (*Report, error) {
	report := newReport(ictx.OperationID())

	target := ictx.TargetServer()
	if target == "" {
		target = "default"
	}

	err := i.locker.WithLock(ctx, target, func(ctx context.Context) error {
		return i.run(ctx, archive, closure, ictx, report)
	})

	entries, logErr := ictx.Log().Entries(ctx)
	if logErr != nil && err == nil {
		err = fmt.Errorf("failed to read transaction log: %w", logErr)
	}
	report.Log = entries
	return report, err
}

// Plan returns the installation order of closure.
// A non-deferred child comes before its parent; a deferred child comes after it.
// Edges to optional shared objects only order the plan when they do not close a
// cycle, so shared objects referencing each other can still be installed.
func (i *Installer) Plan(closure *discovery.Closure) ([]domain.Key, error) {
	g, err := i.graph(closure)
	if err != nil {
		return nil, err
	}
	return g.TopologicalSort()
}

type ordering struct {
	before, after domain.Key
	soft          bool
}

func (i *Installer) graph(closure *discovery.Closure) (*dag.Graph[domain.Key], error) {
	orderings := make([]ordering, 0, len(closure.Edges))
	for _, e := range closure.Edges {
		child, ok := closure.Node(e.To)
		if !ok {
			return nil, fmt.Errorf("%w: edge to unknown node %s", domain.ErrIllegalArgument, e.To)
		}
		h, err := i.locator.Resolve(child.Dependency.Type)
		if err != nil {
			return nil, domain.Enrich(child.Dependency, err)
		}
		o := ordering{before: e.To, after: e.From}
		if h.ShouldDeferInstallation() {
			o = ordering{before: e.From, after: e.To}
		}
		o.soft = child.Dependency.Kind == domain.KindShared && !child.Required
		orderings = append(orderings, o)
	}

	// Settle which soft edges can be kept, then add the edges in discovery order
	// so the plan stays deterministic.
	settled := newGraph(closure)
	for _, o := range orderings {
		if !o.soft {
			settled.AddEdge(o.before, o.after)
		}
	}
	dropped := make(map[int]bool)
	for n, o := range orderings {
		if !o.soft {
			continue
		}
		if settled.Reaches(o.after, o.before) {
			i.logger.Debug("Ordering edge dropped to break a cycle",
				"before", o.before.String(),
				"after", o.after.String(),
			)
			dropped[n] = true
			continue
		}
		settled.AddEdge(o.before, o.after)
	}

	g := newGraph(closure)
	for n, o := range orderings {
		if !dropped[n] {
			g.AddEdge(o.before, o.after)
		}
	}
	return g, nil
}

func newGraph(closure *discovery.Closure) *dag.Graph[domain.Key] {
	g := dag.New[domain.Key]()
	for _, n := range closure.Nodes {
		g.AddNode(n.Dependency.Key())
	}
	return g
}

func (i *Installer) run(ctx context.Context, archive ports.Archive, closure *discovery.Closure, ictx ports.ImportContext, report *Report) error {
	start := time.Now()

	order, err := i.Plan(closure)
	if err != nil {
		return err
	}
	report.Order = order
	for _, k := range order {
		report.Outcomes[k] = domain.OutcomeNotAttempted
	}

	i.logger.InfoContext(ctx, "Install started",
		"operation_id", ictx.OperationID(),
		"target", ictx.TargetServer(),
		"objects", len(order),
	)

	blocked := make(map[domain.Key]bool)
	for _, key := range order {
		if blocked[key] {
			continue
		}
		node, _ := closure.Node(key)

		outcome, err := i.installOne(ctx, archive, node.Dependency, ictx)
		report.Outcomes[key] = outcome
		if err == nil {
			continue
		}

		if domain.IsRecoverable(err) {
			i.logger.WarnContext(ctx, "Object not installed",
				"operation_id", ictx.OperationID(),
				"dependency_type", node.Dependency.Type,
				"dependency_id", node.Dependency.ID,
				"err", err,
			)
			report.Errors = append(report.Errors, err)
			for _, d := range descendants(closure, key) {
				if report.Outcomes[d] == domain.OutcomeNotAttempted {
					blocked[d] = true
				}
			}
			continue
		}

		i.logger.ErrorContext(ctx, "Install aborted",
			"operation_id", ictx.OperationID(),
			"dependency_type", node.Dependency.Type,
			"dependency_id", node.Dependency.ID,
			"err", err,
		)
		return err
	}

	i.logger.InfoContext(ctx, "Install finished",
		"operation_id", ictx.OperationID(),
		"failed", len(report.Errors),
		"duration", time.Since(start),
	)
	return nil
}

// descendants returns the objects that travel with key. Shared elements have
// their own lifecycle and are not followed.
func descendants(closure *discovery.Closure, key domain.Key) []domain.Key {
	seen := map[domain.Key]bool{key: true}
	var out []domain.Key
	queue := []domain.Key{key}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, c := range closure.Children(k) {
			if seen[c] {
				continue
			}
			seen[c] = true
			if n, ok := closure.Node(c); ok && n.Dependency.Kind == domain.KindShared {
				continue
			}
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

func (i *Installer) emit(ctx context.Context, ictx ports.ImportContext, dep domain.Dependency, state domain.InstallState, action domain.Action) {
	i.hooks.InstallState(ctx, &domain.InstallEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), OperationID: ictx.OperationID()},
		Dependency: dep,
		State:      state,
		Action:     action,
	})
}

// record appends action to the transaction log. The Logged event carries the
// time elapsed since the object's installation started.
func (i *Installer) record(ctx context.Context, ictx ports.ImportContext, dep domain.Dependency, action domain.Action, start time.Time) error {
	if err := ictx.Log().Append(ctx, domain.NewLogEntry(dep, action)); err != nil {
		return fmt.Errorf("failed to append to transaction log: %w", err)
	}
	i.hooks.InstallState(ctx, &domain.InstallEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), OperationID: ictx.OperationID()},
		Dependency: dep,
		State:      domain.StateLogged,
		Action:     action,
		Duration:   time.Since(start),
	})
	return nil
}

func (i *Installer) installOne(ctx context.Context, archive ports.Archive, dep domain.Dependency, ictx ports.ImportContext) (outcome domain.Outcome, err error) {
	start := time.Now()
	defer func() {
		if err == nil {
			return
		}
		err = domain.Enrich(dep, err)
		i.hooks.InstallError(ctx, &domain.InstallEvent{
			EventBase:  domain.EventBase{Timestamp: time.Now(), OperationID: ictx.OperationID()},
			Dependency: dep,
			Err:        err,
			Duration:   time.Since(start),
		})
	}()

	switch dep.Kind {
	case domain.KindSystem, domain.KindServer:
		return domain.OutcomeSkipped, nil
	}

	h, err := i.locator.Resolve(dep.Type)
	if err != nil {
		return domain.OutcomeFailed, err
	}
	if c, ok := h.(ports.Composite); ok && c.IsComposite() {
		return domain.OutcomeSkipped, nil
	}

	i.emit(ctx, ictx, dep, domain.StateNotInstalled, "")

	exists, err := i.exists(ctx, h, dep, ictx)
	if err != nil {
		return domain.OutcomeFailed, err
	}

	if exists && !h.OverwritesOnInstall() {
		i.emit(ctx, ictx, dep, domain.StateSkipping, "")
		if err := i.record(ctx, ictx, dep, domain.ActionSkippedNoOverwrite, start); err != nil {
			return domain.OutcomeFailed, err
		}
		return domain.OutcomeSkipped, nil
	}

	if r, ok := h.(ports.Replacer); ok && exists && r.ReplacesOnInstall() {
		if v, ok := h.(ports.Verifier); ok {
			if err := v.VerifyDependencyFiles(ctx, archive, dep); err != nil {
				return domain.OutcomeFailed, err
			}
		}
		i.emit(ctx, ictx, dep, domain.StateModifying, "")
		if err := r.RemoveDependency(ctx, dep, ictx); err != nil {
			return domain.OutcomeFailed, err
		}
		if err := i.record(ctx, ictx, dep, domain.ActionDeleted, start); err != nil {
			return domain.OutcomePartial, err
		}
		if err := h.InstallDependencyFiles(ctx, archive, dep, ictx); err != nil {
			return domain.OutcomePartial, err
		}
		if err := i.record(ctx, ictx, dep, domain.ActionCreated, start); err != nil {
			return domain.OutcomePartial, err
		}
		return domain.OutcomeApplied, nil
	}

	state, action := domain.StateCreating, domain.ActionCreated
	if exists {
		state, action = domain.StateModifying, domain.ActionModified
	}
	i.emit(ctx, ictx, dep, state, "")

	if err := h.InstallDependencyFiles(ctx, archive, dep, ictx); err != nil {
		return domain.OutcomeFailed, err
	}
	if err := i.record(ctx, ictx, dep, action, start); err != nil {
		return domain.OutcomeFailed, err
	}
	i.logger.DebugContext(ctx, "Object installed",
		"operation_id", ictx.OperationID(),
		"dependency_type", dep.Type,
		"dependency_id", dep.ID,
		"action", action,
	)
	return domain.OutcomeApplied, nil
}

// exists reports whether dep is already on the target. An object whose target
// key has not been allocated yet does not exist there.
func (i *Installer) exists(ctx context.Context, h ports.Handler, dep domain.Dependency, ictx ports.ImportContext) (bool, error) {
	var targetID string
	if r, ok := h.(ports.TargetResolver); ok {
		key, found, err := r.ExistingTarget(ctx, dep, ictx)
		if err != nil || !found {
			return false, err
		}
		targetID = key
	} else {
		key, err := ictx.Mapper().TargetID(ctx, dep.ID, dep.Type)
		if err != nil {
			return false, err
		}
		targetID = key
	}
	return h.DependencyExists(ctx, targetID)
}
