package netcomponents

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/automoto/rigsync/shared/posemath"
)

// SyncFlags selects which axes of a pose are synchronized. Sender and
// receiver must agree on the configuration out of band; it is not
// renegotiated per message.
type SyncFlags struct {
	Position bool
	Rotation bool
	Scale    bool
}

// AllAxes returns flags with every axis enabled.
func AllAxes() SyncFlags {
	return SyncFlags{Position: true, Rotation: true, Scale: true}
}

// FieldCount returns how many floats a snapshot with these flags packs.
func (f SyncFlags) FieldCount() int {
	n := 0
	if f.Position {
		n += 3
	}
	if f.Rotation {
		n += 4
	}
	if f.Scale {
		n += 3
	}
	return n
}

// PoseSnapshot is one packaged pose sample. Immutable once emitted; only the
// axes enabled in Flags are meaningful.
type PoseSnapshot struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
	Flags    SyncFlags
}

// Pack flattens the enabled axes into the wire order: position (3), rotation
// (4, x y z w), scale (3). Disabled axes are omitted entirely.
func (s PoseSnapshot) Pack() []float64 {
	out := make([]float64, 0, s.Flags.FieldCount())
	if s.Flags.Position {
		out = append(out, s.Position.X(), s.Position.Y(), s.Position.Z())
	}
	if s.Flags.Rotation {
		out = append(out, s.Rotation.V.X(), s.Rotation.V.Y(), s.Rotation.V.Z(), s.Rotation.W)
	}
	if s.Flags.Scale {
		out = append(out, s.Scale.X(), s.Scale.Y(), s.Scale.Z())
	}
	return out
}

// Unpack rebuilds a snapshot from wire values using the receiver's configured
// flags. Returns false when the value count does not match the flags.
func Unpack(flags SyncFlags, vals []float64) (PoseSnapshot, bool) {
	if len(vals) != flags.FieldCount() {
		return PoseSnapshot{}, false
	}
	snap := PoseSnapshot{Flags: flags}
	i := 0
	if flags.Position {
		snap.Position = mgl64.Vec3{vals[i], vals[i+1], vals[i+2]}
		i += 3
	}
	if flags.Rotation {
		snap.Rotation = mgl64.Quat{
			V: mgl64.Vec3{vals[i], vals[i+1], vals[i+2]},
			W: vals[i+3],
		}
		i += 4
	}
	if flags.Scale {
		snap.Scale = mgl64.Vec3{vals[i], vals[i+1], vals[i+2]}
	}
	return snap, true
}

// SnapshotOf packages the enabled axes of a pose.
func SnapshotOf(p posemath.Pose, flags SyncFlags) PoseSnapshot {
	return PoseSnapshot{
		Position: p.Position,
		Rotation: p.Rotation,
		Scale:    p.Scale,
		Flags:    flags,
	}
}

// Overlay writes the snapshot's enabled axes onto base and returns the result.
func (s PoseSnapshot) Overlay(base posemath.Pose) posemath.Pose {
	if s.Flags.Position {
		base.Position = s.Position
	}
	if s.Flags.Rotation {
		base.Rotation = s.Rotation
	}
	if s.Flags.Scale {
		base.Scale = s.Scale
	}
	return base
}
