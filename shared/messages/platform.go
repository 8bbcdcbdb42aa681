package messages

import "github.com/automoto/rigsync/shared/netconfig"

// PlatformEvent reports an entity entering or leaving a platform's trigger
// volume. Detected on the authoritative side and broadcast so every
// participant's reference-frame tracker stays consistent.
type PlatformEvent struct {
	Enter    bool
	Platform netconfig.EntityID
	Entity   netconfig.EntityID
	Tag      string
}
