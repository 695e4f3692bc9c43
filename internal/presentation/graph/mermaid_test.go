package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/transit/internal/discovery"
	"github.com/aretw0/transit/internal/presentation/graph"
	"github.com/aretw0/transit/pkg/domain"
)

func closure() *discovery.Closure {
	page := domain.Dependency{Type: "Page", ID: "5", DisplayName: "Home", Kind: domain.KindShared}
	portlet := domain.Dependency{Type: "Portlet", ID: "5:news", DisplayName: "news", Kind: domain.KindLocal, ParentType: "Page", ParentID: "5"}
	tmpl := domain.Dependency{Type: "Template", ID: "3", DisplayName: `Two "columns"`, Kind: domain.KindShared}
	role := domain.Dependency{Type: "Role", ID: "editor", Kind: domain.KindServer}

	return &discovery.Closure{
		Root: page,
		Nodes: []discovery.Node{
			{Dependency: page, Required: true},
			{Dependency: portlet, Required: true, Depth: 1},
			{Dependency: tmpl, Depth: 1},
			{Dependency: role, Depth: 1},
		},
		Edges: []discovery.Edge{
			{From: page.Key(), To: portlet.Key()},
			{From: page.Key(), To: tmpl.Key()},
			{From: page.Key(), To: role.Key()},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(closure(), nil)

	for _, want := range []string{
		"graph TD\n",
		`n0(("Page: Home"))`,
		`n1["Portlet: news"]`,
		`n2(["Template: Two 'columns'"])`,
		`n3[("Role: editor")]`,
		"n0 --> n1",
		"n0 -.-> n2",
		"n0 -.-> n3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateMermaid() missing %q\nGot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "classDef") {
		t.Error("styles should only be emitted with an overlay")
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	c := closure()
	overlay := &graph.Overlay{Outcomes: map[domain.Key]domain.Outcome{
		c.Nodes[0].Dependency.Key(): domain.OutcomeFailed,
		c.Nodes[1].Dependency.Key(): domain.OutcomeNotAttempted,
		c.Nodes[2].Dependency.Key(): domain.OutcomeApplied,
	}}

	out := graph.GenerateMermaid(c, overlay)

	for _, want := range []string{
		"classDef failed",
		"class n0 failed;",
		"class n1 not_attempted;",
		"class n2 applied;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateMermaid() missing %q\nGot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "class n3") {
		t.Error("nodes without outcome should not be styled")
	}
}
