package netsync

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/automoto/rigsync/shared/netcomponents"
	"github.com/automoto/rigsync/shared/netconfig"
)

// SyncUnit binds one anchor's NetworkTransform to a local source node and a
// remote destination node. The destination may be a proxy node so remote
// entities never write into solver-owned targets directly. Absent origin or
// target references degrade every operation to a no-op for the tick; a
// misbehaving anchor must not stop synchronization of the rest.
type SyncUnit struct {
	Anchor         netconfig.AnchorID
	Origin         *Node
	Target         *Node
	UseProxyTarget bool
	NT             *NetworkTransform
}

// NewSyncUnit builds a unit for one anchor. target may be nil when the
// destination does not exist yet.
func NewSyncUnit(anchor netconfig.AnchorID, origin, target *Node, flags netcomponents.SyncFlags) *SyncUnit {
	return &SyncUnit{
		Anchor: anchor,
		Origin: origin,
		Target: target,
		NT:     NewNetworkTransform(flags),
	}
}

// UpdateLocal pulls the origin pose into the transform. Authority side.
func (u *SyncUnit) UpdateLocal() {
	if u.Origin == nil {
		return
	}
	u.NT.RecordLocal(u.Origin.Pose)
}

// Send emits the current snapshot for the outgoing tick.
func (u *SyncUnit) Send() netcomponents.PoseSnapshot {
	return u.NT.Emit()
}

// Receive ingests a snapshot arriving at now.
func (u *SyncUnit) Receive(snap netcomponents.PoseSnapshot, now time.Time) {
	if u.Target == nil {
		return
	}
	u.NT.Ingest(u.Target.Pose, snap, now)
}

// UpdateRemote steps the interpolation and applies the enabled axes to the
// target node.
func (u *SyncUnit) UpdateRemote(dt float64) {
	if u.Target == nil {
		return
	}
	pose, ok := u.NT.Step(dt)
	if !ok {
		return
	}
	if u.NT.Flags.Position {
		u.Target.Pose.Position = pose.Position
	}
	if u.NT.Flags.Rotation {
		u.Target.Pose.Rotation = pose.Rotation
	}
	if u.NT.Flags.Scale {
		u.Target.Pose.Scale = pose.Scale
	}
}

// AddReferenceMotion folds a platform's rigid delta into the transform state
// and the target node, so motion borrowed from a moving surface composes with
// whatever interpolation is in flight instead of overwriting it.
func (u *SyncUnit) AddReferenceMotion(dp mgl64.Vec3, dr mgl64.Quat) {
	if u.NT.LocalFrame {
		return
	}
	u.NT.AddReferenceMotion(dp, dr)
	if u.Target != nil {
		u.Target.Pose = u.Target.Pose.ApplyDelta(dp, dr)
	}
}
