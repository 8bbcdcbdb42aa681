package systems_test

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/messages"
	"github.com/automoto/rigsync/shared/netcomponents"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/posemath"
	"github.com/automoto/rigsync/systems"
	"github.com/automoto/rigsync/systems/factory"
)

const (
	localPart  netconfig.ParticipantID = 2
	remotePart netconfig.ParticipantID = 3

	platID   netconfig.EntityID = 1
	propID   netconfig.EntityID = 10
	avatarID netconfig.EntityID = 11
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func poseAt(x, y, z float64) posemath.Pose {
	p := posemath.Identity()
	p.Position = mgl64.Vec3{x, y, z}
	return p
}

func snapOf(p posemath.Pose) netcomponents.PoseSnapshot {
	return netcomponents.SnapshotOf(p, netcomponents.AllAxes())
}

// recordingSolver counts rebinds and captures platform motion deltas.
type recordingSolver struct {
	rebinds int
	deltas  []mgl64.Vec3
	pivots  []mgl64.Vec3
}

func (s *recordingSolver) Rebind() { s.rebinds++ }

func (s *recordingSolver) AddPlatformMotion(dp mgl64.Vec3, _ mgl64.Quat, pivot mgl64.Vec3) {
	s.deltas = append(s.deltas, dp)
	s.pivots = append(s.pivots, pivot)
}

func newPlatformWorld(t *testing.T) (donburi.World, *components.PlatformData) {
	t.Helper()
	w := donburi.NewWorld()
	entry := factory.CreatePlatform(w, platID, localPart, posemath.Identity())
	pd := components.Platform.Get(entry)
	systems.UpdatePlatforms(w) // prime pose history
	return w, pd
}

func TestPlatformDeltaMovesRiderExactly(t *testing.T) {
	w, pd := newPlatformWorld(t)
	prop := factory.CreateProp(w, propID, remotePart, localPart, poseAt(0, 0, 0))
	m := components.Movable.Get(prop)

	systems.HandlePlatformEvent(w, messages.PlatformEvent{
		Enter: true, Platform: platID, Entity: propID, Tag: netconfig.TagInteractable,
	})

	// Interpolation already in flight when the platform moves.
	m.Unit.Receive(snapOf(poseAt(0, 0, 0)), t0)
	m.Unit.Receive(snapOf(poseAt(1, 0, 0)), t0.Add(200*time.Millisecond))

	pd.Node.Pose.Position = mgl64.Vec3{0, 1, 0}
	systems.UpdatePlatforms(w)

	assert.InDelta(t, 1.0, m.Node.Pose.Position.Y(), 1e-12)

	m.Unit.UpdateRemote(0.1)
	assert.InDelta(t, 0.5, m.Node.Pose.Position.X(), 1e-9)
	assert.InDelta(t, 1.0, m.Node.Pose.Position.Y(), 1e-9)
}

func TestPlatformExitHandsBackFrameExactlyOnce(t *testing.T) {
	w, _ := newPlatformWorld(t)
	prop := factory.CreateProp(w, propID, remotePart, localPart, poseAt(0, 0, 0))
	at := components.Attachment.Get(prop)

	systems.HandlePlatformEvent(w, messages.PlatformEvent{
		Enter: true, Platform: platID, Entity: propID, Tag: netconfig.TagInteractable,
	})
	require.Equal(t, platID, at.Frame)

	systems.HandlePlatformEvent(w, messages.PlatformEvent{
		Platform: platID, Entity: propID, Tag: netconfig.TagInteractable,
	})
	assert.Equal(t, netconfig.EntityID(0), at.Frame)

	// A second exit must not touch the attachment again.
	at.Frame = 42
	systems.HandlePlatformEvent(w, messages.PlatformEvent{
		Platform: platID, Entity: propID, Tag: netconfig.TagInteractable,
	})
	assert.Equal(t, netconfig.EntityID(42), at.Frame)
}

func TestReleaseFromPlatformsDropsDepartedMember(t *testing.T) {
	w, pd := newPlatformWorld(t)
	prop := factory.CreateProp(w, propID, remotePart, localPart, poseAt(0, 0, 0))
	at := components.Attachment.Get(prop)

	systems.HandlePlatformEvent(w, messages.PlatformEvent{
		Enter: true, Platform: platID, Entity: propID, Tag: netconfig.TagInteractable,
	})
	require.Equal(t, 1, pd.MemberCount())

	systems.ReleaseFromPlatforms(w, propID)
	assert.Equal(t, 0, pd.MemberCount())
	assert.Equal(t, netconfig.EntityID(0), at.Frame)

	// Already released: nothing left to drop.
	systems.ReleaseFromPlatforms(w, propID)
	assert.Equal(t, 0, pd.MemberCount())

	// The platform no longer dispatches into the released member.
	m := components.Movable.Get(prop)
	pd.Node.Pose.Position = mgl64.Vec3{0, 1, 0}
	systems.UpdatePlatforms(w)
	assert.InDelta(t, 0.0, m.Node.Pose.Position.Y(), 1e-12)
}

func TestPlatformIgnoresUnknownTags(t *testing.T) {
	w, pd := newPlatformWorld(t)
	factory.CreateProp(w, propID, remotePart, localPart, poseAt(0, 0, 0))

	systems.HandlePlatformEvent(w, messages.PlatformEvent{
		Enter: true, Platform: platID, Entity: propID, Tag: "scenery",
	})
	assert.Equal(t, 0, pd.MemberCount())
}

func TestPlatformExcludesMembersWithoutCapability(t *testing.T) {
	w, pd := newPlatformWorld(t)

	// An entity with sync state but neither rig nor movable capability.
	entry := w.Entry(w.Create(components.NetSync, components.Attachment))
	components.NetSync.SetValue(entry, components.NetSyncData{Entity: propID})
	components.Attachment.SetValue(entry, components.AttachmentData{})

	systems.HandlePlatformEvent(w, messages.PlatformEvent{
		Enter: true, Platform: platID, Entity: propID, Tag: netconfig.TagInteractable,
	})

	require.Equal(t, 1, pd.MemberCount())
	assert.True(t, pd.Member(propID).Excluded)

	// Delta dispatch must skip the excluded member without panicking.
	pd.Node.Pose.Position = mgl64.Vec3{0, 2, 0}
	systems.UpdatePlatforms(w)
}

func TestPlatformLastPoseUpdatesWithZeroMembers(t *testing.T) {
	w, pd := newPlatformWorld(t)

	// Platform travels while empty; that motion must never reach a later
	// rider as an accumulated delta.
	pd.Node.Pose.Position = mgl64.Vec3{0, 5, 0}
	systems.UpdatePlatforms(w)

	prop := factory.CreateProp(w, propID, remotePart, localPart, poseAt(0, 0, 0))
	m := components.Movable.Get(prop)
	systems.HandlePlatformEvent(w, messages.PlatformEvent{
		Enter: true, Platform: platID, Entity: propID, Tag: netconfig.TagInteractable,
	})

	pd.Node.Pose.Position = mgl64.Vec3{0, 5.5, 0}
	systems.UpdatePlatforms(w)
	assert.InDelta(t, 0.5, m.Node.Pose.Position.Y(), 1e-12)
}

func TestPlatformDispatchesSolverMotionToArticulatedRiders(t *testing.T) {
	w, pd := newPlatformWorld(t)
	avatar := factory.CreateAvatar(w, avatarID, remotePart, localPart, true, poseAt(2, 0, 0))
	rig := components.Rig.Get(avatar)
	solver := &recordingSolver{}
	rig.Solvers = append(rig.Solvers, solver)

	systems.HandlePlatformEvent(w, messages.PlatformEvent{
		Enter: true, Platform: platID, Entity: avatarID, Tag: netconfig.TagPlayer,
	})
	assert.True(t, components.Attachment.Get(avatar).AtRoot)

	pd.Node.Pose.Position = mgl64.Vec3{0, 1, 0}
	systems.UpdatePlatforms(w)

	require.Len(t, solver.deltas, 1)
	assert.True(t, solver.deltas[0].ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-12))
	assert.True(t, solver.pivots[0].ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-12))

	// The stabilization root follows the platform rigidly.
	assert.InDelta(t, 1.0, rig.Root.Pose.Position.Y(), 1e-12)
	assert.InDelta(t, 2.0, rig.Root.Pose.Position.X(), 1e-12)
}
