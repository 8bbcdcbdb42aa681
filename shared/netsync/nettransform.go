// Package netsync implements the per-entity state synchronization engine:
// the per-axis interpolation state machine and the origin/target binding
// driven by the orchestrator each tick.
package netsync

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/automoto/rigsync/shared/netcomponents"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/posemath"
)

// NetworkTransform reconciles an authoritative live pose with periodically
// arriving remote snapshots. The authority side writes Live every tick and
// emits snapshots; the receiving side ingests snapshots into an interpolation
// window and steps toward the latest one, snapping when the jump exceeds
// TeleportDistance.
type NetworkTransform struct {
	Flags netcomponents.SyncFlags

	// LocalFrame marks a transform whose destination is the live local pose
	// rather than an interpolated remote one. Reference motion is a no-op in
	// that mode: the authority's own tracking already contains it.
	LocalFrame bool

	TeleportDistance float64

	// Live is the authority-written pose, also mirrored to the window on emit
	// so the sender's own view never drifts.
	Live posemath.Pose

	start      posemath.Pose
	end        posemath.Pose
	elapsed    float64
	window     float64
	lastIngest time.Time
	received   bool
}

// NewNetworkTransform returns a transform with the given axis flags and the
// default teleport threshold.
func NewNetworkTransform(flags netcomponents.SyncFlags) *NetworkTransform {
	return &NetworkTransform{
		Flags:            flags,
		TeleportDistance: netconfig.DefaultTeleportDistance,
		Live:             posemath.Identity(),
		start:            posemath.Identity(),
		end:              posemath.Identity(),
		window:           netconfig.MinInterpWindow,
	}
}

// Received reports whether at least one snapshot has ever been ingested.
// This is explicit state; a zero position is a legitimate snapshot, not a
// "no data" marker.
func (nt *NetworkTransform) Received() bool {
	return nt.received
}

// RecordLocal copies the enabled axes of the live source pose. Authority side
// only; never fails.
func (nt *NetworkTransform) RecordLocal(p posemath.Pose) {
	if nt.Flags.Position {
		nt.Live.Position = p.Position
	}
	if nt.Flags.Rotation {
		nt.Live.Rotation = p.Rotation
	}
	if nt.Flags.Scale {
		nt.Live.Scale = p.Scale
	}
}

// Emit packages the enabled axes of the live pose. Both window endpoints are
// pinned to the emitted pose so stepping on the sender is a no-op.
func (nt *NetworkTransform) Emit() netcomponents.PoseSnapshot {
	snap := netcomponents.SnapshotOf(nt.Live, nt.Flags)
	nt.start = nt.Live
	nt.end = nt.Live
	return snap
}

// Ingest starts a new interpolation window toward snap. current is the pose
// presently applied to the bound destination; it becomes the window start so
// the blend picks up exactly where the previous one left off. The window
// duration is the wall-clock gap since the previous ingest, floored to keep
// the interpolation parameter finite.
func (nt *NetworkTransform) Ingest(current posemath.Pose, snap netcomponents.PoseSnapshot, now time.Time) {
	if nt.received {
		nt.start = current
		nt.window = math.Max(now.Sub(nt.lastIngest).Seconds(), netconfig.MinInterpWindow)
	} else {
		// First-ever snapshot: there is no valid previous state to blend
		// from, so the window is degenerate and Step applies the end pose
		// directly.
		nt.start = snap.Overlay(current)
		nt.window = netconfig.MinInterpWindow
	}
	nt.end = snap.Overlay(current)
	nt.elapsed = 0
	nt.lastIngest = now
	nt.received = true
}

// Step advances the window by dt and returns the blended pose to apply to the
// destination. The second return is false until a first snapshot has been
// ingested. The interpolation parameter is monotonic within a window; when
// the start-to-end distance exceeds TeleportDistance the parameter is forced
// to 1 and the window resolves as a snap.
func (nt *NetworkTransform) Step(dt float64) (posemath.Pose, bool) {
	if !nt.received {
		return posemath.Pose{}, false
	}

	nt.elapsed += dt
	t := posemath.Clamp01(nt.elapsed / nt.window)
	if nt.end.Position.Sub(nt.start.Position).Len() > nt.TeleportDistance {
		t = 1
	}

	return posemath.Pose{
		Position: posemath.LerpVec3(nt.start.Position, nt.end.Position, t),
		Rotation: posemath.SlerpShortest(nt.start.Rotation, nt.end.Rotation, t),
		Scale:    posemath.LerpVec3(nt.start.Scale, nt.end.Scale, t),
	}, true
}

// AddReferenceMotion folds an externally supplied rigid delta into the live
// pose and both window endpoints, shifting an interpolation in flight without
// restarting it. No-op for local-frame transforms.
func (nt *NetworkTransform) AddReferenceMotion(dp mgl64.Vec3, dr mgl64.Quat) {
	if nt.LocalFrame {
		return
	}
	nt.Live = nt.Live.ApplyDelta(dp, dr)
	nt.start = nt.start.ApplyDelta(dp, dr)
	nt.end = nt.end.ApplyDelta(dp, dr)
}
