package components

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/shared/netconfig"
)

// AttachmentData records which reference frame an entity is riding. An
// explicit frame relation replaces live parent/child graph mutation: the
// frame transform is resolved by composition at read time.
type AttachmentData struct {
	// Frame is the platform entity currently carrying this one; zero means
	// the world frame.
	Frame netconfig.EntityID

	// AtRoot marks articulated entities, which attach at the stabilization
	// root so the internal root-to-body offset is preserved.
	AtRoot bool
}

var Attachment = donburi.NewComponentType[AttachmentData]()
