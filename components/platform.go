package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/netsync"
)

// InterpreterKind discriminates the cached per-member sync strategy.
type InterpreterKind uint8

const (
	InterpreterArticulated InterpreterKind = iota
	InterpreterGenericMovable
)

// PoseInterpreter is the tagged variant cached when an entity joins a
// platform, dispatched explicitly at delta time instead of re-probing
// components every tick.
type PoseInterpreter struct {
	Kind    InterpreterKind
	Rig     *RigData     // Kind == InterpreterArticulated
	Movable *MovableData // Kind == InterpreterGenericMovable
}

// MemberContext is the per-member state cached at enter time.
type MemberContext struct {
	Interp PoseInterpreter

	// InitialFrame is the attachment frame the entity had before joining,
	// handed back exactly once on exit.
	InitialFrame netconfig.EntityID

	// Excluded marks a member that entered without a movable capability: it
	// was warned about once and is skipped by delta dispatch until it
	// re-enters with a valid capability.
	Excluded bool
}

// PlatformData tracks the set of entities riding one platform and the pose
// history used to derive its per-tick rigid delta.
type PlatformData struct {
	Entity netconfig.EntityID
	Node   *netsync.Node

	LastPosition mgl64.Vec3
	LastRotation mgl64.Quat

	// Primed flips after the first tick seeds the pose history; the first
	// observed delta would otherwise span from the zero pose.
	Primed bool

	members map[netconfig.EntityID]*MemberContext
	order   []netconfig.EntityID
}

var Platform = donburi.NewComponentType[PlatformData]()

// NewPlatformData builds tracker state around the platform's pose node.
func NewPlatformData(entity netconfig.EntityID, node *netsync.Node) PlatformData {
	return PlatformData{
		Entity:  entity,
		Node:    node,
		members: make(map[netconfig.EntityID]*MemberContext),
	}
}

// Member returns the cached context for id, or nil.
func (p *PlatformData) Member(id netconfig.EntityID) *MemberContext {
	return p.members[id]
}

// AddMember caches ctx for id. Re-entering replaces the cached context.
func (p *PlatformData) AddMember(id netconfig.EntityID, ctx *MemberContext) {
	if p.members == nil {
		p.members = make(map[netconfig.EntityID]*MemberContext)
	}
	if _, ok := p.members[id]; !ok {
		p.order = append(p.order, id)
	}
	p.members[id] = ctx
}

// RemoveMember drops id from the membership and returns its cached context.
// The second call for the same id returns nil, false: exit hand-back is
// idempotent.
func (p *PlatformData) RemoveMember(id netconfig.EntityID) (*MemberContext, bool) {
	ctx, ok := p.members[id]
	if !ok {
		return nil, false
	}
	delete(p.members, id)
	for i, other := range p.order {
		if other == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return ctx, true
}

// EachMember visits members in join order. Order is not significant for
// correctness, only for deterministic iteration.
func (p *PlatformData) EachMember(fn func(id netconfig.EntityID, ctx *MemberContext)) {
	for _, id := range p.order {
		fn(id, p.members[id])
	}
}

// MemberCount returns the number of tracked members, excluded ones included.
func (p *PlatformData) MemberCount() int {
	return len(p.members)
}
