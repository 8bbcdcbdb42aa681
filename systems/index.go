package systems

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/netconfig"
)

// FindEntity returns the entry whose NetSync component carries the given
// network entity id, or nil.
func FindEntity(w donburi.World, id netconfig.EntityID) *donburi.Entry {
	var found *donburi.Entry
	components.NetSync.Each(w, func(entry *donburi.Entry) {
		if components.NetSync.Get(entry).Entity == id {
			found = entry
		}
	})
	return found
}

// FindPlatform returns the entry for the platform with the given network
// entity id, or nil.
func FindPlatform(w donburi.World, id netconfig.EntityID) *donburi.Entry {
	var found *donburi.Entry
	components.Platform.Each(w, func(entry *donburi.Entry) {
		if components.Platform.Get(entry).Entity == id {
			found = entry
		}
	})
	return found
}
