package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/posemath"
	"github.com/automoto/rigsync/shared/stagedata"
	"github.com/automoto/rigsync/systems"
	"github.com/automoto/rigsync/systems/factory"
)

// propsPerStage is how many unowned interactable props the server seeds so
// participants have something to claim.
const propsPerStage = 2

func (s *Server) buildWorld() error {
	dir, file := filepath.Split(s.cfg.StagePath)
	if dir == "" {
		dir = "."
	}
	stage, err := stagedata.LoadStage(os.DirFS(dir), file)
	if err != nil {
		return fmt.Errorf("load stage %s: %w", s.cfg.StagePath, err)
	}
	s.stage = stage.Name
	s.spawns = stage.Spawns
	s.triggers = systems.NewTriggerVolumes(stage.Width, stage.Depth)

	for _, def := range stage.Platforms {
		id := s.allocEntity()
		entry := factory.CreatePatrolPlatform(s.world, id, netconfig.ServerParticipant, def)
		s.applyTuning(entry)
		systems.ActivateNetSync(entry, netconfig.ServerParticipant)

		s.owners.Set(id, netconfig.ServerParticipant)
		s.owners.Lock(id)
		s.triggers.AddDeck(id, def.Deck.W, def.Deck.D)
		log.Printf("[server] platform %q spawned as entity %d", def.Name, id)
	}

	for i := 0; i < propsPerStage && i < len(stage.Spawns); i++ {
		sp := stage.Spawns[i]
		at := posemath.Identity()
		at.Position = mgl64.Vec3{sp.X + 1, 0, sp.Z + 1}

		id := s.allocEntity()
		entry := factory.CreateProp(s.world, id, netconfig.ParticipantNone, netconfig.ServerParticipant, at)
		s.applyTuning(entry)
		systems.ActivateNetSync(entry, netconfig.ServerParticipant)

		s.owners.Set(id, netconfig.ParticipantNone)
		s.triggers.AddRider(id, netconfig.TagInteractable, 0.5, 0.5)
		log.Printf("[server] prop spawned as entity %d", id)
	}

	log.Printf("[server] stage %q loaded: %.0fx%.0f m, %d platforms, %d spawns",
		stage.Name, stage.Width, stage.Depth, len(stage.Platforms), len(stage.Spawns))
	return nil
}

// spawnPose picks a spawn point round-robin by participant number.
func (s *Server) spawnPose(n int) posemath.Pose {
	p := posemath.Identity()
	if len(s.spawns) == 0 {
		return p
	}
	sp := s.spawns[n%len(s.spawns)]
	p.Position = mgl64.Vec3{sp.X, 0, sp.Z}
	return p
}
