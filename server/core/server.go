package core

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/config"
	"github.com/automoto/rigsync/shared/messages"
	"github.com/automoto/rigsync/shared/netcomponents"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/posemath"
	"github.com/automoto/rigsync/shared/protocol"
	"github.com/automoto/rigsync/shared/stagedata"
	"github.com/automoto/rigsync/systems"
	"github.com/automoto/rigsync/systems/factory"
)

type participant struct {
	client      *router.NetworkClient
	id          netconfig.ParticipantID
	name        string
	token       string
	avatar      netconfig.EntityID
	articulated bool
}

// Server runs the authoritative session: it arbitrates ownership, drives
// platforms, relays poses between participants, and synthesizes platform
// membership events from trigger volumes.
type Server struct {
	cfg       config.ServerConfig
	world     donburi.World
	loop      *GameLoop
	transport *transports.WsServerTransport
	triggers  *systems.TriggerVolumes
	owners    *OwnerTable
	stage     string
	spawns    []stagedata.SpawnPoint

	// World access outside router callbacks only; callbacks enqueue here and
	// the loop goroutine drains at the top of each tick.
	commands chan func()

	mu              sync.RWMutex
	participants    map[*router.NetworkClient]*participant
	knownTokens     map[string]string // reconnect token -> display name
	nextParticipant netconfig.ParticipantID
	nextEntity      netconfig.EntityID
}

func NewServer(cfg config.ServerConfig) (*Server, error) {
	s := &Server{
		cfg:             cfg,
		world:           donburi.NewWorld(),
		owners:          NewOwnerTable(),
		commands:        make(chan func(), 1024),
		participants:    make(map[*router.NetworkClient]*participant),
		knownTokens:     make(map[string]string),
		nextParticipant: netconfig.ServerParticipant + 1,
		nextEntity:      1,
	}
	s.loop = NewGameLoop(s, cfg.TickRate)

	if err := s.buildWorld(); err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}

	s.setupRouterCallbacks()
	return s, nil
}

// Start begins the server on the configured port. Blocks until the transport
// shuts down.
func (s *Server) Start() error {
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(s.cfg.Port, "", nil)
	return s.transport.Start()
}

func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) World() donburi.World {
	return s.world
}

// ParticipantCount returns the number of joined participants.
func (s *Server) ParticipantCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[server] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		if err != nil {
			log.Printf("[server] client %s disconnected with error: %v", client.Id(), err)
		} else {
			log.Printf("[server] client %s disconnected", client.Id())
		}
		s.commands <- func() { s.onLeave(client) }
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRequest) {
		s.commands <- func() { s.onJoin(client, msg) }
	})

	router.On(func(client *router.NetworkClient, msg messages.PoseUpdate) {
		s.commands <- func() { s.onPoseUpdate(client, msg) }
	})

	router.On(func(client *router.NetworkClient, msg messages.OwnershipRequest) {
		s.commands <- func() { s.onOwnershipRequest(client, msg) }
	})

	router.On(func(client *router.NetworkClient, msg messages.OwnershipTransfer) {
		s.commands <- func() { s.onOwnershipTransfer(client, msg) }
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

// tick runs one authoritative step. Everything that mutates the world runs
// here, on the loop goroutine.
func (s *Server) tick(dt float64) {
	s.processCommands()

	systems.UpdatePatrols(s.world, dt)
	systems.UpdateNetSync(s.world, netconfig.ServerParticipant, dt, s.broadcastPose)
	systems.UpdateTriggers(s.world, s.triggers, s.onPlatformEvent)
	systems.UpdatePlatforms(s.world)
}

func (s *Server) processCommands() {
	for {
		select {
		case cmd := <-s.commands:
			cmd()
		default:
			return
		}
	}
}

func (s *Server) onJoin(client *router.NetworkClient, msg messages.JoinRequest) {
	if !protocol.Compatible(msg.Version) {
		s.send(client, messages.JoinRejected{
			Reason: fmt.Sprintf("version mismatch: server %s, client %s", protocol.Version, msg.Version),
		})
		return
	}

	if s.ParticipantCount() >= s.cfg.MaxParticipants {
		s.send(client, messages.JoinRejected{Reason: "server full"})
		return
	}

	name := msg.DisplayName
	token := msg.ReconnectToken

	s.mu.Lock()
	if prev, ok := s.knownTokens[token]; ok && token != "" {
		log.Printf("[server] participant %q reconnected", prev)
		if name == "" {
			name = prev
		}
	} else {
		token = uuid.NewString()
	}
	if name == "" {
		name = fmt.Sprintf("Participant %d", s.nextParticipant)
	}
	s.knownTokens[token] = name

	p := &participant{
		client:      client,
		id:          s.nextParticipant,
		name:        name,
		token:       token,
		articulated: msg.Articulated,
	}
	s.nextParticipant++
	s.participants[client] = p
	s.mu.Unlock()

	at := s.spawnPose(int(p.id))
	p.avatar = s.allocEntity()

	entry := factory.CreateAvatar(s.world, p.avatar, p.id, netconfig.ServerParticipant, msg.Articulated, at)
	s.applyTuning(entry)
	systems.ActivateNetSync(entry, netconfig.ServerParticipant)
	s.owners.Set(p.avatar, p.id)
	s.owners.Lock(p.avatar) // avatars are not transferable
	s.triggers.AddRider(p.avatar, netconfig.TagPlayer, 0.6, 0.6)

	s.send(client, messages.JoinAccepted{
		ParticipantID:  p.id,
		AvatarEntity:   p.avatar,
		ReconnectToken: token,
		ServerName:     s.cfg.Name,
		TickRate:       s.cfg.TickRate,
		Stage:          s.stage,
	})

	// Replay the existing scene to the newcomer, then announce the newcomer
	// to everyone else.
	s.replayScene(client)
	s.broadcastExcept(client, messages.EntitySpawned{
		Entity:      p.avatar,
		Kind:        netconfig.KindAvatar,
		Owner:       p.id,
		Tag:         netconfig.TagPlayer,
		DisplayName: p.name,
		Articulated: p.articulated,
		Pose:        netcomponents.SnapshotOf(at, netcomponents.AllAxes()).Pack(),
	})

	log.Printf("[server] participant %d (%q) joined, avatar entity %d", p.id, p.name, p.avatar)
}

func (s *Server) onLeave(client *router.NetworkClient) {
	s.mu.Lock()
	p, ok := s.participants[client]
	if ok {
		delete(s.participants, client)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	// Final platform exits fire before the rider disappears.
	s.triggers.RemoveRider(p.avatar, s.onPlatformEvent)

	s.owners.Remove(p.avatar)
	if entry := systems.FindEntity(s.world, p.avatar); entry != nil {
		s.world.Remove(entry.Entity())
	}
	s.broadcast(messages.EntityRemoved{Entity: p.avatar})

	// Everything else the participant owned reverts to unowned.
	for _, e := range s.owners.Release(p.id) {
		s.applyOwner(e, netconfig.ParticipantNone)
	}

	s.broadcast(messages.ParticipantLeft{ParticipantID: p.id})
	log.Printf("[server] participant %d (%q) left", p.id, p.name)
}

func (s *Server) onPoseUpdate(client *router.NetworkClient, msg messages.PoseUpdate) {
	p := s.participantFor(client)
	if p == nil {
		return
	}
	if s.owners.Owner(msg.Entity) != p.id {
		log.Printf("[server] dropping pose for entity %d from non-owner %d", msg.Entity, p.id)
		return
	}

	// Keep the server's replica current so trigger volumes track the entity.
	entry := systems.FindEntity(s.world, msg.Entity)
	if entry == nil {
		return
	}
	ns := components.NetSync.Get(entry)
	if unit := ns.Unit(msg.Anchor); unit != nil {
		if snap, ok := netcomponents.Unpack(unit.NT.Flags, msg.Values); ok {
			ns.Queue(msg.Anchor, snap, time.Now())
		}
	}

	s.broadcastExcept(client, msg)
}

func (s *Server) onOwnershipRequest(client *router.NetworkClient, msg messages.OwnershipRequest) {
	p := s.participantFor(client)
	if p == nil {
		return
	}
	if !s.owners.Grant(msg.Entity, p.id) {
		log.Printf("[server] ownership request for entity %d by participant %d refused", msg.Entity, p.id)
		return
	}
	s.applyOwner(msg.Entity, p.id)
	log.Printf("[server] entity %d granted to participant %d", msg.Entity, p.id)
}

func (s *Server) onOwnershipTransfer(client *router.NetworkClient, msg messages.OwnershipTransfer) {
	p := s.participantFor(client)
	if p == nil {
		return
	}
	if !s.owners.Transfer(msg.Entity, p.id, msg.Target) {
		log.Printf("[server] ownership transfer of entity %d by participant %d refused", msg.Entity, p.id)
		return
	}
	s.applyOwner(msg.Entity, msg.Target)
	log.Printf("[server] entity %d transferred to participant %d", msg.Entity, msg.Target)
}

// applyOwner mirrors an arbitration result into the world and broadcasts it.
func (s *Server) applyOwner(e netconfig.EntityID, owner netconfig.ParticipantID) {
	change := messages.OwnershipChanged{Entity: e, Owner: owner}
	systems.ApplyOwnershipChange(s.world, netconfig.ServerParticipant, change)
	s.broadcast(change)
}

// onPlatformEvent applies a synthesized membership transition locally and
// relays it to every participant.
func (s *Server) onPlatformEvent(ev messages.PlatformEvent) {
	systems.HandlePlatformEvent(s.world, ev)
	s.broadcast(ev)
}

func (s *Server) replayScene(client *router.NetworkClient) {
	components.NetSync.Each(s.world, func(entry *donburi.Entry) {
		d := components.NetSync.Get(entry)

		spawn := messages.EntitySpawned{
			Entity: d.Entity,
			Owner:  s.owners.Owner(d.Entity),
			Pose:   netcomponents.SnapshotOf(s.currentPose(entry), netcomponents.AllAxes()).Pack(),
		}

		switch {
		case entry.HasComponent(components.Rig):
			spawn.Kind = netconfig.KindAvatar
			spawn.Tag = netconfig.TagPlayer
			spawn.Articulated = d.Unit(netconfig.AnchorHead) != nil
			spawn.DisplayName = s.displayNameFor(spawn.Owner)
		case entry.HasComponent(components.Platform):
			spawn.Kind = netconfig.KindPlatform
		default:
			spawn.Kind = netconfig.KindProp
			spawn.Tag = netconfig.TagInteractable
		}

		s.send(client, spawn)
	})
}

func (s *Server) currentPose(entry *donburi.Entry) (p posemath.Pose) {
	switch {
	case entry.HasComponent(components.Rig):
		if node := components.Rig.Get(entry).BodyNode(); node != nil {
			return node.Pose
		}
	case entry.HasComponent(components.Platform):
		return components.Platform.Get(entry).Node.Pose
	case entry.HasComponent(components.Movable):
		return components.Movable.Get(entry).Node.Pose
	}
	return p
}

// applyTuning pushes configured thresholds onto a freshly spawned entity's
// sync units.
func (s *Server) applyTuning(entry *donburi.Entry) {
	d := components.NetSync.Get(entry)
	for _, u := range d.Units {
		u.NT.TeleportDistance = s.cfg.TeleportDistance
	}
}

func (s *Server) displayNameFor(id netconfig.ParticipantID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.participants {
		if p.id == id {
			return p.name
		}
	}
	return ""
}

func (s *Server) participantFor(client *router.NetworkClient) *participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.participants[client]
}

func (s *Server) allocEntity() netconfig.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextEntity
	s.nextEntity++
	return id
}

func (s *Server) broadcastPose(msg messages.PoseUpdate) {
	s.broadcast(msg)
}

func (s *Server) broadcast(msg any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.participants {
		if err := p.client.SendMessage(msg); err != nil {
			log.Printf("[server] send to participant %d failed: %v", p.id, err)
		}
	}
}

func (s *Server) broadcastExcept(client *router.NetworkClient, msg any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c, p := range s.participants {
		if c == client {
			continue
		}
		if err := p.client.SendMessage(msg); err != nil {
			log.Printf("[server] send to participant %d failed: %v", p.id, err)
		}
	}
}

func (s *Server) send(client *router.NetworkClient, msg any) {
	if err := client.SendMessage(msg); err != nil {
		log.Printf("[server] send failed: %v", err)
	}
}
