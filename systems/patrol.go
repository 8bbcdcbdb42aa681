package systems

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/posemath"
)

// UpdatePatrols advances server-driven platform motion: a looping tween
// sequence between two points plus an optional constant yaw spin. The
// resulting node pose feeds both the platform's own sync units and the
// reference-frame delta dispatch.
func UpdatePatrols(w donburi.World, dt float64) {
	components.Patrol.Each(w, func(entry *donburi.Entry) {
		pat := components.Patrol.Get(entry)
		pd := components.Platform.Get(entry)
		if pd.Node == nil {
			return
		}

		if pat.Seq != nil {
			v, _, done := pat.Seq.Update(float32(dt))
			if done {
				pat.Seq.Reset()
			}
			pd.Node.Pose.Position = posemath.LerpVec3(pat.From, pat.To, float64(v))
		}

		if pat.YawRate != 0 {
			spin := mgl64.QuatRotate(pat.YawRate*dt, mgl64.Vec3{0, 1, 0})
			pd.Node.Pose.Rotation = spin.Mul(pd.Node.Pose.Rotation).Normalize()
		}
	})
}
