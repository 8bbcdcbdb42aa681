// Package posemath provides the rigid-pose math shared by the sync engine and
// the platform tracker. It must stay free of networking and ECS dependencies
// so both the server and participant binaries can use it headlessly.
package posemath

import "github.com/go-gl/mathgl/mgl64"

// Pose is one spatial state: position, orientation and scale.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// Identity returns a pose at the origin with no rotation and unit scale.
func Identity() Pose {
	return Pose{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// ApplyDelta shifts p by a world-frame rigid delta. Positions combine by
// addition; the delta rotation is left-multiplied so it acts in the ambient
// coordinate space, not the pose's local space.
func (p Pose) ApplyDelta(dp mgl64.Vec3, dr mgl64.Quat) Pose {
	p.Position = p.Position.Add(dp)
	p.Rotation = dr.Mul(p.Rotation).Normalize()
	return p
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// LerpVec3 linearly interpolates from a to b.
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SlerpShortest spherically interpolates from a to b along the shorter arc.
// mgl64.QuatSlerp alone takes the long way around when the quaternions sit in
// opposite hemispheres.
func SlerpShortest(a, b mgl64.Quat, t float64) mgl64.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// DeltaRotation returns the rotation carrying last onto cur, i.e.
// cur * inverse(last).
func DeltaRotation(cur, last mgl64.Quat) mgl64.Quat {
	return cur.Mul(last.Inverse()).Normalize()
}

// RotateAbout rotates point v around pivot by dr.
func RotateAbout(v, pivot mgl64.Vec3, dr mgl64.Quat) mgl64.Vec3 {
	return pivot.Add(dr.Rotate(v.Sub(pivot)))
}

// Compose resolves a local pose expressed in frame into world space. Frame
// composition is rigid: the frame's scale does not propagate.
func Compose(frame, local Pose) Pose {
	return Pose{
		Position: frame.Position.Add(frame.Rotation.Rotate(local.Position)),
		Rotation: frame.Rotation.Mul(local.Rotation).Normalize(),
		Scale:    local.Scale,
	}
}

// RelativeTo expresses a world pose in the given frame, inverting Compose.
func RelativeTo(world, frame Pose) Pose {
	inv := frame.Rotation.Inverse()
	return Pose{
		Position: inv.Rotate(world.Position.Sub(frame.Position)),
		Rotation: inv.Mul(world.Rotation).Normalize(),
		Scale:    world.Scale,
	}
}
