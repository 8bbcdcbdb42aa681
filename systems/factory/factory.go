// Package factory spawns the network entity archetypes with their nodes and
// sync units wired.
package factory

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/archetypes"
	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/netcomponents"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/netsync"
	"github.com/automoto/rigsync/shared/posemath"
	"github.com/automoto/rigsync/shared/stagedata"
	"github.com/automoto/rigsync/systems"
)

var limbAnchors = []netconfig.AnchorID{
	netconfig.AnchorHead,
	netconfig.AnchorLeftHand,
	netconfig.AnchorRightHand,
}

// CreateAvatar spawns a participant avatar. Articulated avatars additionally
// carry per-limb units whose targets go through proxy indirection on
// non-owning participants.
func CreateAvatar(w donburi.World, id netconfig.EntityID, owner, local netconfig.ParticipantID, articulated bool, at posemath.Pose) *donburi.Entry {
	entry := archetypes.Avatar.Spawn(w)

	rig := components.NewRigData()
	rig.Root.Pose = at
	for _, node := range rig.Anchors {
		node.Pose = at
	}

	units := []*netsync.SyncUnit{
		netsync.NewSyncUnit(netconfig.AnchorBody,
			rig.Anchors[netconfig.AnchorBody], rig.Anchors[netconfig.AnchorBody],
			netcomponents.AllAxes()),
		netsync.NewSyncUnit(netconfig.AnchorGround,
			rig.Anchors[netconfig.AnchorGround], rig.Anchors[netconfig.AnchorGround],
			netcomponents.SyncFlags{Position: true, Rotation: true}),
	}
	if articulated {
		for _, a := range limbAnchors {
			u := netsync.NewSyncUnit(a, rig.Anchors[a], rig.Anchors[a],
				netcomponents.SyncFlags{Position: true, Rotation: true})
			u.UseProxyTarget = true
			units = append(units, u)
		}
	}

	components.Rig.SetValue(entry, rig)
	components.NetSync.SetValue(entry, components.NetSyncData{Entity: id, Units: units})
	components.Ownership.SetValue(entry, components.OwnershipData{Owner: owner})
	components.Attachment.SetValue(entry, components.AttachmentData{})

	systems.SetAuthority(entry, local)
	return entry
}

// CreateProp spawns a generic movable entity synced through a single body
// unit.
func CreateProp(w donburi.World, id netconfig.EntityID, owner, local netconfig.ParticipantID, at posemath.Pose) *donburi.Entry {
	entry := archetypes.Prop.Spawn(w)

	node := netsync.NewNode(at)
	unit := netsync.NewSyncUnit(netconfig.AnchorBody, node, node, netcomponents.AllAxes())

	components.Movable.SetValue(entry, components.MovableData{Node: node, Unit: unit})
	components.NetSync.SetValue(entry, components.NetSyncData{Entity: id, Units: []*netsync.SyncUnit{unit}})
	components.Ownership.SetValue(entry, components.OwnershipData{Owner: owner})
	components.Attachment.SetValue(entry, components.AttachmentData{})

	systems.SetAuthority(entry, local)
	return entry
}

// CreatePlatform spawns a platform tracked and synced but driven elsewhere —
// the participant-side mirror of a server platform.
func CreatePlatform(w donburi.World, id netconfig.EntityID, local netconfig.ParticipantID, at posemath.Pose) *donburi.Entry {
	entry := archetypes.Platform.Spawn(w)
	wirePlatform(entry, id, local, at)
	return entry
}

// CreatePatrolPlatform spawns a server-driven platform oscillating between
// its spawn point and the patrol offset from the stage definition.
func CreatePatrolPlatform(w donburi.World, id netconfig.EntityID, local netconfig.ParticipantID, def stagedata.PlatformDef) *donburi.Entry {
	entry := archetypes.PatrolPlatform.Spawn(w)

	from := mgl64.Vec3{
		def.Deck.X + def.Deck.W/2,
		def.Elevation,
		def.Deck.Z + def.Deck.D/2,
	}
	at := posemath.Identity()
	at.Position = from
	wirePlatform(entry, id, local, at)

	period := def.PatrolPeriod
	if period <= 0 {
		period = 4
	}
	half := float32(period / 2)
	components.Patrol.SetValue(entry, components.PatrolData{
		From: from,
		To:   from.Add(mgl64.Vec3{def.PatrolDX, def.PatrolDY, def.PatrolDZ}),
		Seq: gween.NewSequence(
			gween.New(0, 1, half, ease.Linear),
			gween.New(1, 0, half, ease.Linear),
		),
		YawRate: def.YawRate,
	})

	return entry
}

func wirePlatform(entry *donburi.Entry, id netconfig.EntityID, local netconfig.ParticipantID, at posemath.Pose) {
	node := netsync.NewNode(at)
	unit := netsync.NewSyncUnit(netconfig.AnchorBody, node, node,
		netcomponents.SyncFlags{Position: true, Rotation: true})

	components.Platform.SetValue(entry, components.NewPlatformData(id, node))
	components.NetSync.SetValue(entry, components.NetSyncData{Entity: id, Units: []*netsync.SyncUnit{unit}})
	components.Ownership.SetValue(entry, components.OwnershipData{Owner: netconfig.ServerParticipant})

	systems.SetAuthority(entry, local)
}
