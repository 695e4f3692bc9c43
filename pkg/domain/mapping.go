package domain

// IDMapping translates one source-system identifier into its target-system identifier.
// It lives for the duration of one import operation.
type IDMapping struct {
	ObjectType string `json:"object_type"`
	SourceID   string `json:"source_id"`
	// TargetID is empty until the allocation policy resolves it.
	TargetID   string `json:"target_id,omitempty"`
	ParentType string `json:"parent_type,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
}

// Resolved reports whether a target identifier has been assigned.
func (m *IDMapping) Resolved() bool {
	return m != nil && m.TargetID != ""
}

// MappingKey is the lookup key of a mapping within one import context.
type MappingKey struct {
	ObjectType string
	SourceID   string
}

// Key returns the lookup key of the mapping.
func (m *IDMapping) Key() MappingKey {
	return MappingKey{ObjectType: m.ObjectType, SourceID: m.SourceID}
}
