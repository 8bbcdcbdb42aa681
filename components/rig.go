package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/netsync"
	"github.com/automoto/rigsync/shared/posemath"
)

// Solver is the articulation hook. Limb solving itself is an external
// collaborator; the sync layer only needs to rebind target references after
// reassignment and to feed platform motion in without fighting the
// interpolation.
type Solver interface {
	// Rebind makes the solver re-read its target node references.
	Rebind()
	// AddPlatformMotion blends a platform's rigid delta, rotating about
	// pivot, into the solver's goal state.
	AddPlatformMotion(dp mgl64.Vec3, dr mgl64.Quat, pivot mgl64.Vec3)
}

// RigData is an articulated entity's anchor set: a stabilization root one
// level above the directly-posed body node, per-anchor target nodes, and the
// limb solvers reading them.
type RigData struct {
	Root    *netsync.Node
	Anchors map[netconfig.AnchorID]*netsync.Node
	Solvers []Solver
}

var Rig = donburi.NewComponentType[RigData]()

// NewRigData builds a rig with fresh nodes for every anchor.
func NewRigData() RigData {
	anchors := make(map[netconfig.AnchorID]*netsync.Node, netconfig.AnchorCount)
	for a := netconfig.AnchorID(0); a < netconfig.AnchorCount; a++ {
		anchors[a] = netsync.NewNode(posemath.Identity())
	}
	return RigData{
		Root:    netsync.NewNode(posemath.Identity()),
		Anchors: anchors,
	}
}

// BodyNode is the directly-posed body anchor, the node remote snapshots
// drive. Falls back to the stabilization root when the anchor is absent.
func (r *RigData) BodyNode() *netsync.Node {
	if n := r.Anchors[netconfig.AnchorBody]; n != nil {
		return n
	}
	return r.Root
}

// ApplySolverMotion carries a platform's rigid delta into the rig: the root
// follows the platform rigidly about the pivot, preserving the root-to-body
// local offset, and every solver blends the same delta into its goals.
func (r *RigData) ApplySolverMotion(dp mgl64.Vec3, dr mgl64.Quat, pivot mgl64.Vec3) {
	if r.Root != nil {
		p := &r.Root.Pose
		p.Position = posemath.RotateAbout(p.Position, pivot, dr).Add(dp)
		p.Rotation = dr.Mul(p.Rotation).Normalize()
	}
	for _, s := range r.Solvers {
		s.AddPlatformMotion(dp, dr, pivot)
	}
}
