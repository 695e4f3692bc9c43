// Package schema validates adapter settings declared in dependency definitions.
//
// Each adapter binding registers a Schema describing the keys it reads from the
// definition's settings map. The registry validates every definition against the
// schema of its adapter when configuration is loaded, so that a bad table or
// column setting is reported as a configuration error at startup instead of
// failing halfway through an install.
//
//	settings := schema.Schema{
//	    "table":      schema.Required(schema.String()),
//	    "references": schema.Optional(schema.Map(schema.String())),
//	    "allocate":   schema.Optional(schema.OneOf("reserve", "keep")),
//	}
//
//	if err := schema.Validate(settings, def.Settings); err != nil {
//	    // report a configuration error
//	}
package schema
