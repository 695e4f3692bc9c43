/*
Package dsl provides a fluent builder for dependency definitions.

It is an alternative to YAML or JSON definition files when the set of types is
known at compile time, in tests or in embedding programs.

Example usage:

	b := dsl.New()

	b.Add("Template").Table("templates").Reserve()

	b.Add("ComponentDef").Table("components").Reserve().
		AutoExpand().
		Requires("ComponentInstance")

	b.Add("ComponentInstance").PairTable("ComponentDef", "component_instances").
		Local().
		Defer()

	b.Add("Page").Table("pages").MapIDs().
		Children("Portlet").
		Ref("template_id", "Template").
		References("template_id", "Template")

	defs, err := b.Build()
	// ... pass defs to transit.WithDefinitions(defs...)
*/
package dsl
