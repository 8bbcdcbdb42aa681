package components

import (
	"time"

	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/shared/netcomponents"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/netsync"
)

// PendingSnapshot is one received but not yet ingested anchor snapshot,
// stamped with its arrival time so window durations come from real wall-clock
// gaps rather than tick counts.
type PendingSnapshot struct {
	Anchor netconfig.AnchorID
	Snap   netcomponents.PoseSnapshot
	At     time.Time
}

// NetSyncData is the synchronization orchestrator state for one entity: the
// set of SyncUnits (one per tracked anchor) plus the inbound snapshot queue
// drained each tick.
type NetSyncData struct {
	Entity netconfig.EntityID
	Units  []*netsync.SyncUnit

	Pending []PendingSnapshot

	// Activated flips once a live session is confirmed and proxies are
	// built. Construction is two-phase: built inert, activated explicitly.
	Activated bool
}

var NetSync = donburi.NewComponentType[NetSyncData]()

// Unit returns the unit bound to the given anchor, or nil.
func (d *NetSyncData) Unit(anchor netconfig.AnchorID) *netsync.SyncUnit {
	for _, u := range d.Units {
		if u.Anchor == anchor {
			return u
		}
	}
	return nil
}

// Queue records an arrived snapshot for ingestion on the next tick.
func (d *NetSyncData) Queue(anchor netconfig.AnchorID, snap netcomponents.PoseSnapshot, at time.Time) {
	d.Pending = append(d.Pending, PendingSnapshot{Anchor: anchor, Snap: snap, At: at})
}
