package handler

import "github.com/aretw0/transit/pkg/domain"

// Traits answers the definition-level questions of the handler contract.
type Traits struct {
	def domain.DependencyDef
}

// NewTraits wraps def.
func NewTraits(def domain.DependencyDef) Traits {
	return Traits{def: def}
}

func (t Traits) Def() domain.DependencyDef { return t.def }

func (t Traits) ChildTypes() []string {
	return append([]string(nil), t.def.ChildTypes...)
}

func (t Traits) IsChildTypeSupported(childType string) bool {
	return t.def.HasChildType(childType)
}

func (t Traits) IsRequiredChild(childType string) bool {
	return t.def.IsRequiredChild(childType)
}

func (t Traits) OverwritesOnInstall() bool { return t.def.Overwrites() }

func (t Traits) ShouldDeferInstallation() bool { return t.def.DeferInstallation }
