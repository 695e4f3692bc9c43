package domain

import "fmt"

// Kind classifies the packaging and exclusion semantics of a dependency.
type Kind string

const (
	// KindSystem marks platform-owned objects. They are never packaged for install.
	KindSystem Kind = "system"
	// KindShared marks independently deployable elements the operator may include or exclude.
	KindShared Kind = "shared"
	// KindLocal marks objects that always travel with their parent.
	KindLocal Kind = "local"
	// KindServer marks objects that exist only as configuration on the target.
	KindServer Kind = "server"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSystem, KindShared, KindLocal, KindServer:
		return true
	}
	return false
}

// Key identifies a dependency. Two dependencies are equal when their keys are equal.
type Key struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	ParentType string `json:"parent_type,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
}

func (k Key) String() string {
	if k.ParentID != "" {
		return fmt.Sprintf("%s:%s@%s:%s", k.Type, k.ID, k.ParentType, k.ParentID)
	}
	return k.Type + ":" + k.ID
}

// Dependency is one discovered object reference in a deployment package.
// It is created fresh by every discovery call and never persisted directly.
type Dependency struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	ParentType  string `json:"parent_type,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	DisplayName string `json:"display_name"`
	Kind        Kind   `json:"kind"`
}

// Key returns the identity of the dependency.
func (d Dependency) Key() Key {
	return Key{Type: d.Type, ID: d.ID, ParentType: d.ParentType, ParentID: d.ParentID}
}

// VisitKey is the (type, id) pair used to detect nodes already seen during a traversal.
func (d Dependency) VisitKey() Key {
	return Key{Type: d.Type, ID: d.ID}
}

// Equal reports whether d and o identify the same object.
func (d Dependency) Equal(o Dependency) bool {
	return d.Key() == o.Key()
}

// Name returns the display name, falling back to the id.
func (d Dependency) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ID
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s %q (%s)", d.Type, d.Name(), d.ID)
}

// File references one packaged artifact belonging to a dependency.
type File struct {
	// FileType distinguishes artifacts of the same dependency (e.g. "record", "content").
	FileType string `json:"file_type"`
	// Name is the archive entry name.
	Name string `json:"name"`
}

// Scope narrows a top-level dependency listing.
type Scope struct {
	// ParentID restricts the listing to objects owned by this parent, when set.
	ParentID string
	// IncludeUsers asks handlers that support it to also list user-owned objects.
	IncludeUsers bool
}
