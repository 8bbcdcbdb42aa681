package network

import (
	"log"
	"time"

	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/messages"
	"github.com/automoto/rigsync/shared/netcomponents"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/posemath"
	"github.com/automoto/rigsync/systems"
	"github.com/automoto/rigsync/systems/factory"
)

// Session assembles the participant-side replica of the shared scene. It owns
// the local world, drains the client's inbound queues once per tick, and runs
// the synchronization systems over the result.
type Session struct {
	world  donburi.World
	client *Client
	local  netconfig.ParticipantID
}

func NewSession(client *Client) *Session {
	return &Session{
		world:  donburi.NewWorld(),
		client: client,
		local:  client.ParticipantID(),
	}
}

func (s *Session) World() donburi.World { return s.world }

// Update runs one participant tick: ingest everything the server sent since
// the last tick, then advance interpolation and platform composition.
func (s *Session) Update(dt float64, now time.Time) {
	for _, msg := range s.client.DrainSpawns() {
		s.spawn(msg)
	}
	for _, msg := range s.client.DrainOwnershipChanges() {
		systems.ApplyOwnershipChange(s.world, s.local, msg)
	}
	// Platform events drain before removals: the server emits a departing
	// avatar's final exit ahead of its EntityRemoved, and both can land in
	// the same tick.
	for _, msg := range s.client.DrainPlatformEvents() {
		systems.HandlePlatformEvent(s.world, msg)
	}
	for _, msg := range s.client.DrainRemovals() {
		s.remove(msg.Entity)
	}
	for _, msg := range s.client.DrainPoseUpdates() {
		s.ingestPose(msg, now)
	}
	for _, msg := range s.client.DrainDepartures() {
		log.Printf("[session] participant %d left", msg.ParticipantID)
	}

	systems.UpdateNetSync(s.world, s.local, dt, s.sendPose)
	systems.UpdatePlatforms(s.world)
}

// RequestOwnership asks the server for authority over an entity. Repeated
// calls inside the cooldown window are dropped locally without traffic.
func (s *Session) RequestOwnership(entity netconfig.EntityID, now time.Time) bool {
	entry := systems.FindEntity(s.world, entity)
	if entry == nil {
		return false
	}
	return systems.RequestOwnership(entry, s.local, now, s.sendAny)
}

// TransferOwnership hands authority over an owned entity to another
// participant.
func (s *Session) TransferOwnership(entity netconfig.EntityID, target netconfig.ParticipantID) bool {
	entry := systems.FindEntity(s.world, entity)
	if entry == nil {
		return false
	}
	return systems.TransferOwnership(entry, s.local, target, s.sendAny)
}

func (s *Session) spawn(msg messages.EntitySpawned) {
	if systems.FindEntity(s.world, msg.Entity) != nil {
		log.Printf("[session] duplicate spawn for entity %d ignored", msg.Entity)
		return
	}

	at := posemath.Identity()
	if snap, ok := netcomponents.Unpack(netcomponents.AllAxes(), msg.Pose); ok {
		at = snap.Overlay(at)
	}

	var entry *donburi.Entry
	switch msg.Kind {
	case netconfig.KindAvatar:
		entry = factory.CreateAvatar(s.world, msg.Entity, msg.Owner, s.local, msg.Articulated, at)
	case netconfig.KindProp:
		entry = factory.CreateProp(s.world, msg.Entity, msg.Owner, s.local, at)
	case netconfig.KindPlatform:
		entry = factory.CreatePlatform(s.world, msg.Entity, s.local, at)
	default:
		log.Printf("[session] spawn with unknown kind %d for entity %d", msg.Kind, msg.Entity)
		return
	}

	systems.ActivateNetSync(entry, s.local)
	log.Printf("[session] spawned %s entity %d (owner=%d)", msg.Kind, msg.Entity, msg.Owner)
}

func (s *Session) remove(id netconfig.EntityID) {
	entry := systems.FindEntity(s.world, id)
	if entry == nil {
		return
	}
	systems.ReleaseFromPlatforms(s.world, id)
	s.world.Remove(entry.Entity())
	log.Printf("[session] removed entity %d", id)
}

func (s *Session) ingestPose(msg messages.PoseUpdate, now time.Time) {
	entry := systems.FindEntity(s.world, msg.Entity)
	if entry == nil {
		return
	}
	ns := components.NetSync.Get(entry)
	unit := ns.Unit(msg.Anchor)
	if unit == nil {
		return
	}
	snap, ok := netcomponents.Unpack(unit.NT.Flags, msg.Values)
	if !ok {
		log.Printf("[session] malformed pose update for entity %d anchor %s", msg.Entity, msg.Anchor)
		return
	}
	ns.Queue(msg.Anchor, snap, now)
}

func (s *Session) sendPose(msg messages.PoseUpdate) {
	s.sendAny(msg)
}

func (s *Session) sendAny(msg any) {
	if s.client.State() != StateJoinedSession {
		return
	}
	if err := s.client.SendMessage(msg); err != nil {
		log.Printf("[session] send failed: %v", err)
	}
}
