package archetypes

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/tags"
)

var (
	Avatar = newArchetype(
		tags.Avatar,
		components.NetSync,
		components.Ownership,
		components.Rig,
		components.Attachment,
	)
	Prop = newArchetype(
		tags.Prop,
		components.NetSync,
		components.Ownership,
		components.Movable,
		components.Attachment,
	)
	Platform = newArchetype(
		tags.Platform,
		components.NetSync,
		components.Ownership,
		components.Platform,
	)
	PatrolPlatform = newArchetype(
		tags.Platform,
		components.NetSync,
		components.Ownership,
		components.Platform,
		components.Patrol,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{components: cs}
}

// Spawn creates an entity with the archetype's components and returns its
// entry.
func (a *archetype) Spawn(w donburi.World) *donburi.Entry {
	return w.Entry(w.Create(a.components...))
}
