package discovery

import "github.com/aretw0/transit/pkg/domain"

// Node is one dependency of a closure.
type Node struct {
	Dependency domain.Dependency `json:"dependency"`
	// Required is true for local children and declared required child types.
	Required bool `json:"required"`
	// Parent is the key of the node that first discovered this one; nil for the root.
	Parent *domain.Key `json:"parent,omitempty"`
	Depth  int         `json:"depth"`
}

// Edge links a node to a child it references.
type Edge struct {
	From domain.Key `json:"from"`
	To   domain.Key `json:"to"`
}

// Closure is the de-duplicated set of dependencies reachable from a root,
// in first-discovery order.
type Closure struct {
	Root  domain.Dependency `json:"root"`
	Nodes []Node            `json:"nodes"`
	Edges []Edge            `json:"edges"`

	index map[domain.Key]int
	edges map[Edge]bool
}

func newClosure(root domain.Dependency) *Closure {
	return &Closure{
		Root:  root,
		index: make(map[domain.Key]int),
		edges: make(map[Edge]bool),
	}
}

func (c *Closure) add(n Node) {
	c.index[n.Dependency.Key()] = len(c.Nodes)
	c.Nodes = append(c.Nodes, n)
}

func (c *Closure) link(from, to domain.Key) {
	e := Edge{From: from, To: to}
	if c.edges == nil {
		c.edges = make(map[Edge]bool)
	}
	if c.edges[e] {
		return
	}
	c.edges[e] = true
	c.Edges = append(c.Edges, e)
}

// Node returns the node with the given key.
func (c *Closure) Node(key domain.Key) (Node, bool) {
	if c.index == nil {
		c.reindex()
	}
	i, ok := c.index[key]
	if !ok {
		return Node{}, false
	}
	return c.Nodes[i], true
}

// Dependencies returns the dependencies in first-discovery order.
func (c *Closure) Dependencies() []domain.Dependency {
	out := make([]domain.Dependency, len(c.Nodes))
	for i, n := range c.Nodes {
		out[i] = n.Dependency
	}
	return out
}

// Children returns the keys referenced by key, in discovery order.
func (c *Closure) Children(key domain.Key) []domain.Key {
	var out []domain.Key
	for _, e := range c.Edges {
		if e.From == key {
			out = append(out, e.To)
		}
	}
	return out
}

// Len returns the number of nodes.
func (c *Closure) Len() int { return len(c.Nodes) }

// reindex rebuilds the lookup index of a closure decoded from JSON.
func (c *Closure) reindex() {
	c.index = make(map[domain.Key]int, len(c.Nodes))
	for i, n := range c.Nodes {
		c.index[n.Dependency.Key()] = i
	}
}
