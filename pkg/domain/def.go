package domain

// IDType maps one literal identifier found in an object's stored content to the
// dependency type it refers to.
type IDType struct {
	// Attribute is the content attribute holding the literal id.
	Attribute string `json:"attribute" yaml:"attribute" mapstructure:"attribute"`
	// Type is the dependency type of the referenced object.
	Type string `json:"type" yaml:"type" mapstructure:"type"`
	// ParentType, when set, means the referenced object is scoped to a parent and
	// the parent is packaged instead of the child.
	ParentType string `json:"parent_type,omitempty" yaml:"parent_type,omitempty" mapstructure:"parent_type"`
	// ParentAttribute names the attribute holding the parent id.
	ParentAttribute string `json:"parent_attribute,omitempty" yaml:"parent_attribute,omitempty" mapstructure:"parent_attribute"`
}

// DependencyDef is the static metadata for one object type.
// It is loaded once at startup and treated as immutable afterwards.
type DependencyDef struct {
	Type    string `json:"type" yaml:"type" mapstructure:"type"`
	Adapter string `json:"adapter" yaml:"adapter" mapstructure:"adapter"`

	// ParentType is the owning type for pair-keyed objects.
	ParentType string `json:"parent_type,omitempty" yaml:"parent_type,omitempty" mapstructure:"parent_type"`

	ChildTypes         []string `json:"child_types,omitempty" yaml:"child_types,omitempty" mapstructure:"child_types"`
	RequiredChildTypes []string `json:"required_child_types,omitempty" yaml:"required_child_types,omitempty" mapstructure:"required_child_types"`

	// DefaultKind applies to discovered instances that do not carry their own kind.
	DefaultKind Kind `json:"default_kind,omitempty" yaml:"default_kind,omitempty" mapstructure:"default_kind"`

	SupportsIDTypes          bool `json:"supports_id_types,omitempty" yaml:"supports_id_types,omitempty" mapstructure:"supports_id_types"`
	SupportsIDMapping        bool `json:"supports_id_mapping,omitempty" yaml:"supports_id_mapping,omitempty" mapstructure:"supports_id_mapping"`
	SupportsUserDependencies bool `json:"supports_user_dependencies,omitempty" yaml:"supports_user_dependencies,omitempty" mapstructure:"supports_user_dependencies"`
	SupportsParentID         bool `json:"supports_parent_id,omitempty" yaml:"supports_parent_id,omitempty" mapstructure:"supports_parent_id"`
	ShouldAutoExpand         bool `json:"should_auto_expand,omitempty" yaml:"should_auto_expand,omitempty" mapstructure:"should_auto_expand"`

	// DeferInstallation installs instances after the parent that references them.
	DeferInstallation bool `json:"defer_installation,omitempty" yaml:"defer_installation,omitempty" mapstructure:"defer_installation"`
	// Overwrite controls whether existing target objects are updated. Nil means true.
	Overwrite *bool `json:"overwrite,omitempty" yaml:"overwrite,omitempty" mapstructure:"overwrite"`

	IDTypes []IDType `json:"id_types,omitempty" yaml:"id_types,omitempty" mapstructure:"id_types"`

	// Settings carries adapter-specific configuration (table and column names, ...).
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty" mapstructure:"settings"`
}

// Overwrites resolves the Overwrite flag.
func (d DependencyDef) Overwrites() bool {
	return d.Overwrite == nil || *d.Overwrite
}

// Kind returns the default kind, which is Shared when unset.
func (d DependencyDef) Kind() Kind {
	if d.DefaultKind == "" {
		return KindShared
	}
	return d.DefaultKind
}

// HasChildType reports whether t is a declared child type.
func (d DependencyDef) HasChildType(t string) bool {
	for _, c := range d.ChildTypes {
		if c == t {
			return true
		}
	}
	return false
}

// IsRequiredChild reports whether t is a declared required child type.
func (d DependencyDef) IsRequiredChild(t string) bool {
	for _, c := range d.RequiredChildTypes {
		if c == t {
			return true
		}
	}
	return false
}
