package netsync

import "github.com/automoto/rigsync/shared/posemath"

// Node is a shared mutable pose slot. Producers (trackers, interpolation,
// platform deltas) and consumers (solvers, emitters) hold the same *Node so
// writes are visible everywhere without graph mutation.
type Node struct {
	Pose posemath.Pose
}

// NewNode returns a node holding the given pose.
func NewNode(p posemath.Pose) *Node {
	return &Node{Pose: p}
}
