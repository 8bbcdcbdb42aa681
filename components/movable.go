package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/shared/netsync"
)

// MovableData marks a generic movable entity: a single pose node, optionally
// synchronized through one SyncUnit.
type MovableData struct {
	Node *netsync.Node

	// Unit is the body sync unit when the movable is networked; nil for a
	// purely local rider.
	Unit *netsync.SyncUnit
}

var Movable = donburi.NewComponentType[MovableData]()

// AddReferenceMotion folds a platform delta into the movable. Networked
// movables route through their sync unit so in-flight interpolation shifts
// with the platform; the unit ignores the call on the authority side, where
// the owner's own source of truth already carries the motion. Non-networked
// riders shift their node directly.
func (m *MovableData) AddReferenceMotion(dp mgl64.Vec3, dr mgl64.Quat) {
	if m.Unit != nil {
		m.Unit.AddReferenceMotion(dp, dr)
		return
	}
	if m.Node != nil {
		m.Node.Pose = m.Node.Pose.ApplyDelta(dp, dr)
	}
}
