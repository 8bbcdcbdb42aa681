package netcomponents

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automoto/rigsync/shared/posemath"
)

func TestPackOmitsDisabledAxes(t *testing.T) {
	snap := PoseSnapshot{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{9, 9, 9},
		Flags:    SyncFlags{Position: true, Rotation: true},
	}

	vals := snap.Pack()
	require.Len(t, vals, 7)
	assert.Equal(t, []float64{1, 2, 3}, vals[:3])
	assert.Equal(t, 1.0, vals[6]) // identity quaternion w
}

func TestUnpackRejectsLengthMismatch(t *testing.T) {
	_, ok := Unpack(SyncFlags{Position: true}, []float64{1, 2})
	assert.False(t, ok)
}

func TestPackUnpackPartialFlags(t *testing.T) {
	p := posemath.Identity()
	p.Position = mgl64.Vec3{-4, 0.5, 12}
	p.Rotation = mgl64.QuatRotate(0.4, mgl64.Vec3{0, 1, 0})
	p.Scale = mgl64.Vec3{2, 2, 2}

	flags := SyncFlags{Position: true, Scale: true}
	back, ok := Unpack(flags, SnapshotOf(p, flags).Pack())
	require.True(t, ok)

	assert.True(t, back.Position.ApproxEqualThreshold(p.Position, 1e-12))
	assert.True(t, back.Scale.ApproxEqualThreshold(p.Scale, 1e-12))
}

func TestOverlayWritesOnlyEnabledAxes(t *testing.T) {
	base := posemath.Identity()
	snap := PoseSnapshot{
		Position: mgl64.Vec3{5, 5, 5},
		Scale:    mgl64.Vec3{3, 3, 3},
		Flags:    SyncFlags{Position: true},
	}

	out := snap.Overlay(base)
	assert.True(t, out.Position.ApproxEqualThreshold(snap.Position, 1e-12))
	assert.Equal(t, base.Scale, out.Scale)
	assert.Equal(t, base.Rotation, out.Rotation)
}
