package messages

import "github.com/automoto/rigsync/shared/netconfig"

// PoseUpdate carries one anchor's snapshot for one entity. Values holds the
// axis-gated fields in fixed order (position, rotation, scale); which fields
// are present is agreed out of band via the entity's sync flags.
type PoseUpdate struct {
	Entity netconfig.EntityID
	Anchor netconfig.AnchorID
	Values []float64
}
