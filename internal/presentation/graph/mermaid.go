package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/transit/internal/discovery"
	"github.com/aretw0/transit/pkg/domain"
)

// Overlay carries install outcomes to colour on the graph.
type Overlay struct {
	Outcomes map[domain.Key]domain.Outcome
}

// GenerateMermaid produces a Mermaid flowchart of a closure.
// Shapes follow the dependency kind:
// - Root: ((Circle))
// - Shared: ([Stadium])
// - Server: [(Database)]
// - Local and others: [Rectangle]
// Edges to required nodes are solid, edges to optional ones dotted.
func GenerateMermaid(c *discovery.Closure, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[domain.Key]string, len(c.Nodes))
	for i, n := range c.Nodes {
		ids[n.Dependency.Key()] = fmt.Sprintf("n%d", i)
	}

	for i, n := range c.Nodes {
		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case n.Dependency.Kind == domain.KindShared:
			opener, closer = "([", "])"
		case n.Dependency.Kind == domain.KindServer:
			opener, closer = "[(", ")]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", ids[n.Dependency.Key()], opener, label(n.Dependency), closer)
	}

	for _, e := range c.Edges {
		from, ok := ids[e.From]
		to, ok2 := ids[e.To]
		if !ok || !ok2 {
			continue
		}
		arrow := "-.->"
		if n, found := c.Node(e.To); found && n.Required {
			arrow = "-->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", from, arrow, to)
	}

	if overlay != nil && len(overlay.Outcomes) > 0 {
		sb.WriteString("\n    %% Outcome Styles\n")
		sb.WriteString("    classDef applied fill:#c8e6c9,stroke:#2e7d32,color:#000;\n")
		sb.WriteString("    classDef partial fill:#ffe0b2,stroke:#ef6c00,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#eeeeee,stroke:#9e9e9e,color:#000;\n")
		sb.WriteString("    classDef not_attempted fill:#fff,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")

		for _, n := range c.Nodes {
			key := n.Dependency.Key()
			if o, ok := overlay.Outcomes[key]; ok {
				fmt.Fprintf(&sb, "    class %s %s;\n", ids[key], o)
			}
		}
	}

	return sb.String()
}

func label(dep domain.Dependency) string {
	return strings.ReplaceAll(fmt.Sprintf("%s: %s", dep.Type, dep.Name()), "\"", "'")
}
