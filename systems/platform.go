package systems

import (
	"log"

	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/messages"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/posemath"
)

// HandlePlatformEvent feeds one membership event into the platform tracker.
// Events for tags other than "player"/"interactable" are ignored; unknown
// platform or entity references are logged and skipped, never fatal.
func HandlePlatformEvent(w donburi.World, ev messages.PlatformEvent) {
	if ev.Tag != netconfig.TagPlayer && ev.Tag != netconfig.TagInteractable {
		return
	}

	platformEntry := FindPlatform(w, ev.Platform)
	if platformEntry == nil {
		log.Printf("[platform] event for unknown platform %d, skipped", ev.Platform)
		return
	}
	pd := components.Platform.Get(platformEntry)

	entityEntry := FindEntity(w, ev.Entity)
	if entityEntry == nil {
		log.Printf("[platform] event for unknown entity %d, skipped", ev.Entity)
		return
	}

	if ev.Enter {
		enterPlatform(pd, entityEntry, ev.Entity)
	} else {
		exitPlatform(pd, entityEntry, ev.Entity)
	}
}

// enterPlatform classifies the entity once and caches the resulting
// interpreter plus its pre-join attachment frame.
func enterPlatform(pd *components.PlatformData, entry *donburi.Entry, id netconfig.EntityID) {
	ctx := &components.MemberContext{}
	if entry.HasComponent(components.Attachment) {
		ctx.InitialFrame = components.Attachment.Get(entry).Frame
	}

	switch {
	case entry.HasComponent(components.Rig):
		ctx.Interp = components.PoseInterpreter{
			Kind: components.InterpreterArticulated,
			Rig:  components.Rig.Get(entry),
		}
	case entry.HasComponent(components.Movable):
		ctx.Interp = components.PoseInterpreter{
			Kind:    components.InterpreterGenericMovable,
			Movable: components.Movable.Get(entry),
		}
	default:
		log.Printf("Warning: [platform] entity %d has no movable capability, excluded from delta dispatch", id)
		ctx.Excluded = true
	}

	if entry.HasComponent(components.Attachment) {
		at := components.Attachment.Get(entry)
		at.Frame = pd.Entity
		at.AtRoot = ctx.Interp.Kind == components.InterpreterArticulated && !ctx.Excluded
	}

	pd.AddMember(id, ctx)
}

// exitPlatform hands the cached pre-join frame back exactly once. A second
// exit for the same entity finds no membership and is a no-op.
func exitPlatform(pd *components.PlatformData, entry *donburi.Entry, id netconfig.EntityID) {
	ctx, ok := pd.RemoveMember(id)
	if !ok {
		return
	}

	if entry.HasComponent(components.Attachment) {
		at := components.Attachment.Get(entry)
		at.Frame = ctx.InitialFrame
		at.AtRoot = false
	}
}

// ReleaseFromPlatforms drops an entity from every platform it rides, handing
// the cached frame back while the entity still exists. Covers entities that
// leave the scene without a matching exit event, so no platform keeps
// dispatching deltas into an orphaned member.
func ReleaseFromPlatforms(w donburi.World, id netconfig.EntityID) {
	entry := FindEntity(w, id)
	components.Platform.Each(w, func(pe *donburi.Entry) {
		pd := components.Platform.Get(pe)
		if pd.Member(id) == nil {
			return
		}
		if entry != nil {
			exitPlatform(pd, entry, id)
			return
		}
		pd.RemoveMember(id)
	})
}

// UpdatePlatforms computes each platform's rigid delta for the tick from its
// own pose history and fans it out to every member. Articulated members get
// the solver-motion hook with the platform position as pivot; generic
// movables get AddReferenceMotion so in-flight interpolation shifts with the
// platform instead of being overwritten.
func UpdatePlatforms(w donburi.World) {
	components.Platform.Each(w, func(entry *donburi.Entry) {
		pd := components.Platform.Get(entry)
		if pd.Node == nil {
			return
		}
		cur := pd.Node.Pose

		if !pd.Primed {
			pd.LastPosition = cur.Position
			pd.LastRotation = cur.Rotation
			pd.Primed = true
			return
		}

		dp := cur.Position.Sub(pd.LastPosition)
		dr := posemath.DeltaRotation(cur.Rotation, pd.LastRotation)

		pd.EachMember(func(id netconfig.EntityID, ctx *components.MemberContext) {
			if ctx == nil {
				log.Printf("[platform] nil member context for entity %d, skipped", id)
				return
			}
			if ctx.Excluded {
				return
			}
			switch ctx.Interp.Kind {
			case components.InterpreterArticulated:
				ctx.Interp.Rig.ApplySolverMotion(dp, dr, cur.Position)
			case components.InterpreterGenericMovable:
				ctx.Interp.Movable.AddReferenceMotion(dp, dr)
			}
		})

		// Unconditionally, even with zero members: a stale last pose would
		// accumulate into one giant delta for the next rider.
		pd.LastPosition = cur.Position
		pd.LastRotation = cur.Rotation
	})
}
