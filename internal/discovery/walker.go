// Package discovery computes the dependency closure of a root object.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/transit/internal/logging"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// Walker expands dependencies through their handlers. It is sequential: one
// traversal owns its visited set.
type Walker struct {
	locator ports.HandlerLocator
	logger  *slog.Logger
	hooks   domain.Hooks
}

// Option configures a Walker.
type Option func(*Walker)

// WithLogger sets the walker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// WithHooks sets the discovery hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(w *Walker) {
		w.hooks = hooks
	}
}

// New creates a walker resolving handlers through locator.
func New(locator ports.HandlerLocator, opts ...Option) *Walker {
	w := &Walker{
		locator: locator,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Roots lists the top-level dependencies of a type.
func (w *Walker) Roots(ctx context.Context, typeName string, scope domain.Scope) ([]domain.Dependency, error) {
	h, err := w.locator.Resolve(typeName)
	if err != nil {
		return nil, err
	}
	deps, err := h.Dependencies(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", typeName, err)
	}

	out := make([]domain.Dependency, 0, len(deps))
	for _, d := range deps {
		if d.Kind != domain.KindSystem {
			out = append(out, d)
		}
	}
	return out, nil
}

type walk struct {
	*Walker
	closure *Closure
	// visited maps the (type, id) of every node to its full key.
	visited map[domain.Key]domain.Key
	errs    []error
}

// Walk returns the closure of root. System dependencies are never included.
// A failing branch stops expanding, the rest of the closure is still returned
// and the branch errors are joined into the returned error.
func (w *Walker) Walk(ctx context.Context, root domain.Dependency) (*Closure, error) {
	if root.Kind == domain.KindSystem {
		return nil, fmt.Errorf("%w: system dependency %s cannot be packaged", domain.ErrIllegalArgument, root)
	}

	start := time.Now()
	s := &walk{
		Walker:  w,
		closure: newClosure(root),
		visited: make(map[domain.Key]domain.Key),
	}
	s.visit(ctx, Node{Dependency: root, Required: true})
	s.expand(ctx, root, 1)

	w.logger.DebugContext(ctx, "Closure computed",
		"dependency_type", root.Type,
		"dependency_id", root.ID,
		"nodes", s.closure.Len(),
		"branch_errors", len(s.errs),
		"duration", time.Since(start),
	)
	return s.closure, errors.Join(s.errs...)
}

func (s *walk) visit(ctx context.Context, n Node) {
	key := n.Dependency.Key()
	s.visited[n.Dependency.VisitKey()] = key
	s.closure.add(n)
	if n.Parent != nil {
		s.closure.link(*n.Parent, key)
	}
	s.hooks.Discover(ctx, &domain.DiscoverEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now()},
		Dependency: n.Dependency,
		Required:   n.Required,
		Depth:      n.Depth,
	})
}

func (s *walk) fail(dep domain.Dependency, err error) {
	s.logger.Warn("Discovery branch aborted",
		"dependency_type", dep.Type,
		"dependency_id", dep.ID,
		"err", err,
	)
	s.errs = append(s.errs, domain.Enrich(dep, err))
}

func (s *walk) expand(ctx context.Context, dep domain.Dependency, depth int) {
	h, err := s.locator.Resolve(dep.Type)
	if err != nil {
		s.fail(dep, err)
		return
	}

	children, err := h.ChildDependencies(ctx, dep)
	if err != nil {
		s.fail(dep, err)
		return
	}
	if h.Def().SupportsIDTypes {
		refs, err := h.IDTypeDependencies(ctx, dep)
		if err != nil {
			s.fail(dep, err)
			return
		}
		children = append(children, refs...)
	}

	from := dep.Key()
	for _, child := range children {
		if child.Kind == domain.KindSystem {
			continue
		}

		if seen, ok := s.visited[child.VisitKey()]; ok {
			s.closure.link(from, seen)
			if child.Kind == domain.KindLocal {
				s.markRequired(seen)
			}
			continue
		}

		required := child.Kind == domain.KindLocal || h.IsRequiredChild(child.Type)
		s.visit(ctx, Node{Dependency: child, Required: required, Parent: &from, Depth: depth})

		switch child.Kind {
		case domain.KindLocal:
			s.expand(ctx, child, depth+1)
		case domain.KindShared:
			def, err := s.locator.Def(child.Type)
			if err != nil {
				s.fail(child, err)
				continue
			}
			if def.ShouldAutoExpand {
				s.expand(ctx, child, depth+1)
			}
		}
	}
}

func (s *walk) markRequired(key domain.Key) {
	if i, ok := s.closure.index[key]; ok {
		s.closure.Nodes[i].Required = true
	}
}
