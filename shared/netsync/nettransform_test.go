package netsync

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automoto/rigsync/shared/netcomponents"
	"github.com/automoto/rigsync/shared/posemath"
)

func poseAt(x, y, z float64) posemath.Pose {
	p := posemath.Identity()
	p.Position = mgl64.Vec3{x, y, z}
	return p
}

func snapOf(p posemath.Pose) netcomponents.PoseSnapshot {
	return netcomponents.SnapshotOf(p, netcomponents.AllAxes())
}

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestStepBeforeFirstIngestIsNoop(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.AllAxes())
	_, ok := nt.Step(0.1)
	assert.False(t, ok)
	assert.False(t, nt.Received())
}

func TestFirstIngestAppliesEndImmediately(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.AllAxes())
	end := poseAt(4, 5, 6)

	nt.Ingest(posemath.Identity(), snapOf(end), t0)
	pose, ok := nt.Step(0.001)

	require.True(t, ok)
	assert.True(t, nt.Received())
	assert.True(t, pose.Position.ApproxEqualThreshold(end.Position, 1e-12))
}

func TestWindowDurationFromWallClockGap(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.AllAxes())
	nt.Ingest(posemath.Identity(), snapOf(poseAt(0, 0, 0)), t0)

	// Second snapshot 200ms later: window duration 0.2s, so after
	// stepping 0.1s the blend sits exactly halfway.
	nt.Ingest(poseAt(0, 0, 0), snapOf(poseAt(1, 0, 0)), t0.Add(200*time.Millisecond))
	pose, ok := nt.Step(0.1)

	require.True(t, ok)
	assert.InDelta(t, 0.5, pose.Position.X(), 1e-9)
}

func TestStepConvergesToSnapshotAtWindowEnd(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.AllAxes())
	nt.Ingest(posemath.Identity(), snapOf(poseAt(0, 0, 0)), t0)

	end := posemath.Pose{
		Position: mgl64.Vec3{1, 2, -1},
		Rotation: mgl64.QuatRotate(0.8, mgl64.Vec3{0, 1, 0}),
		Scale:    mgl64.Vec3{2, 2, 2},
	}
	nt.Ingest(poseAt(0, 0, 0), snapOf(end), t0.Add(100*time.Millisecond))

	pose, ok := nt.Step(0.1) // exactly the window duration
	require.True(t, ok)
	assert.True(t, pose.Position.ApproxEqualThreshold(end.Position, 1e-9))
	assert.True(t, pose.Scale.ApproxEqualThreshold(end.Scale, 1e-9))
	v := mgl64.Vec3{0, 0, 1}
	assert.True(t, pose.Rotation.Rotate(v).ApproxEqualThreshold(end.Rotation.Rotate(v), 1e-9))
}

func TestInterpParameterMonotonicPastWindowEnd(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.AllAxes())
	nt.Ingest(posemath.Identity(), snapOf(poseAt(0, 0, 0)), t0)
	nt.Ingest(poseAt(0, 0, 0), snapOf(poseAt(1, 0, 0)), t0.Add(100*time.Millisecond))

	prev := -1.0
	for i := 0; i < 6; i++ {
		pose, ok := nt.Step(0.03)
		require.True(t, ok)
		assert.GreaterOrEqual(t, pose.Position.X(), prev)
		prev = pose.Position.X()
	}
	// Parameter clamps at 1 and stays there.
	assert.InDelta(t, 1.0, prev, 1e-9)
}

func TestTeleportSnapsInsteadOfInterpolating(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.AllAxes())
	nt.Ingest(posemath.Identity(), snapOf(poseAt(0, 0, 0)), t0)

	// Start-to-end distance far beyond the teleport threshold.
	far := poseAt(100, 0, 0)
	nt.Ingest(poseAt(0, 0, 0), snapOf(far), t0.Add(time.Second))

	pose, ok := nt.Step(0.001) // barely into the window
	require.True(t, ok)
	assert.True(t, pose.Position.ApproxEqualThreshold(far.Position, 1e-12))
}

func TestEmitPinsWindowToLivePose(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.AllAxes())
	live := poseAt(3, 0, 3)
	nt.RecordLocal(live)

	snap := nt.Emit()
	assert.True(t, snap.Position.ApproxEqualThreshold(live.Position, 1e-12))

	// The sender's own view must not drift: the window is degenerate.
	assert.True(t, nt.start.Position.ApproxEqualThreshold(live.Position, 1e-12))
	assert.True(t, nt.end.Position.ApproxEqualThreshold(live.Position, 1e-12))
}

func TestRecordLocalRespectsAxisFlags(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.SyncFlags{Position: true})
	p := posemath.Pose{
		Position: mgl64.Vec3{1, 1, 1},
		Rotation: mgl64.QuatRotate(1, mgl64.Vec3{0, 1, 0}),
		Scale:    mgl64.Vec3{5, 5, 5},
	}
	nt.RecordLocal(p)

	assert.True(t, nt.Live.Position.ApproxEqualThreshold(p.Position, 1e-12))
	assert.Equal(t, posemath.Identity().Rotation, nt.Live.Rotation)
	assert.Equal(t, posemath.Identity().Scale, nt.Live.Scale)
}

func TestAddReferenceMotionIsAdditive(t *testing.T) {
	d1 := mgl64.Vec3{0, 1, 0}
	d2 := mgl64.Vec3{2, 0, 0}
	r1 := mgl64.QuatRotate(0.2, mgl64.Vec3{0, 1, 0})
	r2 := mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0})

	seq := NewNetworkTransform(netcomponents.AllAxes())
	seq.Ingest(posemath.Identity(), snapOf(poseAt(1, 0, 0)), t0)
	seq.AddReferenceMotion(d1, r1)
	seq.AddReferenceMotion(d2, r2)

	composed := NewNetworkTransform(netcomponents.AllAxes())
	composed.Ingest(posemath.Identity(), snapOf(poseAt(1, 0, 0)), t0)
	composed.AddReferenceMotion(d1.Add(d2), r2.Mul(r1))

	a, _ := seq.Step(1)
	b, _ := composed.Step(1)
	assert.True(t, a.Position.ApproxEqualThreshold(b.Position, 1e-9))
	v := mgl64.Vec3{1, 0, 0}
	assert.True(t, a.Rotation.Rotate(v).ApproxEqualThreshold(b.Rotation.Rotate(v), 1e-9))
}

func TestAddReferenceMotionShiftsWindowInFlight(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.AllAxes())
	nt.Ingest(posemath.Identity(), snapOf(poseAt(0, 0, 0)), t0)
	nt.Ingest(poseAt(0, 0, 0), snapOf(poseAt(1, 0, 0)), t0.Add(200*time.Millisecond))

	// Platform lifts everything by one meter mid-window.
	nt.AddReferenceMotion(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent())

	pose, ok := nt.Step(0.1)
	require.True(t, ok)
	assert.InDelta(t, 0.5, pose.Position.X(), 1e-9) // blend undisturbed
	assert.InDelta(t, 1.0, pose.Position.Y(), 1e-9) // delta applied in full
}

func TestAddReferenceMotionNoopInLocalFrame(t *testing.T) {
	nt := NewNetworkTransform(netcomponents.AllAxes())
	nt.LocalFrame = true
	nt.RecordLocal(poseAt(1, 1, 1))

	nt.AddReferenceMotion(mgl64.Vec3{0, 9, 0}, mgl64.QuatIdent())
	assert.True(t, nt.Live.Position.ApproxEqualThreshold(mgl64.Vec3{1, 1, 1}, 1e-12))
}
