package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
)

// PatrolData moves a server-driven platform back and forth between two points
// using a looping tween sequence, optionally spinning about the vertical axis.
type PatrolData struct {
	From, To mgl64.Vec3
	Seq      *gween.Sequence
	YawRate  float64 // radians/second about +Y
}

var Patrol = donburi.NewComponentType[PatrolData]()
