package systems

import (
	"math"

	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/messages"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/tags"
)

// TriggerVolumes detects rider footprints overlapping platform decks on the
// ground plane and synthesizes the enter/exit membership events the tracker
// consumes. It runs on the authoritative side only; participants receive the
// resulting events as broadcasts. The tracker itself stays event-driven and
// accepts events from any source.
type TriggerVolumes struct {
	space  *resolv.Space
	decks  map[netconfig.EntityID]*deckVolume
	riders map[netconfig.EntityID]*riderVolume
}

type deckVolume struct {
	obj  *resolv.Object
	w, d float64
}

type riderVolume struct {
	obj  *resolv.Object
	tag  string
	w, d float64
	on   netconfig.EntityID // platform currently stood on, 0 when none
}

// NewTriggerVolumes builds a detection space covering a stage of the given
// extent in meters.
func NewTriggerVolumes(width, depth float64) *TriggerVolumes {
	w := int(math.Ceil(width)) + 1
	d := int(math.Ceil(depth)) + 1
	return &TriggerVolumes{
		space:  resolv.NewSpace(w, d, 1, 1),
		decks:  make(map[netconfig.EntityID]*deckVolume),
		riders: make(map[netconfig.EntityID]*riderVolume),
	}
}

// AddDeck registers a platform's deck footprint, centered on the platform
// pose each tick.
func (t *TriggerVolumes) AddDeck(platform netconfig.EntityID, w, d float64) {
	obj := resolv.NewObject(0, 0, w, d, tags.ResolvDeck)
	obj.SetShape(resolv.NewRectangle(0, 0, w, d))
	obj.Data = platform
	t.space.Add(obj)
	t.decks[platform] = &deckVolume{obj: obj, w: w, d: d}
}

// AddRider registers an entity footprint eligible for platform membership.
func (t *TriggerVolumes) AddRider(entity netconfig.EntityID, tag string, w, d float64) {
	obj := resolv.NewObject(0, 0, w, d, tags.ResolvRider)
	obj.Data = entity
	t.space.Add(obj)
	t.riders[entity] = &riderVolume{obj: obj, tag: tag, w: w, d: d}
}

// RemoveRider drops an entity, emitting a final exit event if it was riding.
func (t *TriggerVolumes) RemoveRider(entity netconfig.EntityID, emit func(messages.PlatformEvent)) {
	r, ok := t.riders[entity]
	if !ok {
		return
	}
	if r.on != 0 && emit != nil {
		emit(messages.PlatformEvent{Platform: r.on, Entity: entity, Tag: r.tag})
	}
	t.space.Remove(r.obj)
	delete(t.riders, entity)
}

// MoveDeck centers a deck on the platform's current ground position.
func (t *TriggerVolumes) MoveDeck(platform netconfig.EntityID, x, z float64) {
	d, ok := t.decks[platform]
	if !ok {
		return
	}
	d.obj.X = x - d.w/2
	d.obj.Y = z - d.d/2
	d.obj.Update()
}

// MoveRider centers a rider footprint on its current ground position.
func (t *TriggerVolumes) MoveRider(entity netconfig.EntityID, x, z float64) {
	r, ok := t.riders[entity]
	if !ok {
		return
	}
	r.obj.X = x - r.w/2
	r.obj.Y = z - r.d/2
	r.obj.Update()
}

// Step detects overlap transitions and emits the corresponding enter/exit
// events. A rider stepping directly from one deck onto another produces an
// exit for the old platform followed by an enter for the new one.
func (t *TriggerVolumes) Step(emit func(messages.PlatformEvent)) {
	for entity, r := range t.riders {
		var now netconfig.EntityID
		if c := r.obj.Check(0, 0, tags.ResolvDeck); c != nil && len(c.Objects) > 0 {
			now = c.Objects[0].Data.(netconfig.EntityID)
		}
		if now == r.on {
			continue
		}
		if r.on != 0 && emit != nil {
			emit(messages.PlatformEvent{Platform: r.on, Entity: entity, Tag: r.tag})
		}
		if now != 0 && emit != nil {
			emit(messages.PlatformEvent{Enter: true, Platform: now, Entity: entity, Tag: r.tag})
		}
		r.on = now
	}
}

// UpdateTriggers syncs deck and rider volumes from the world's current poses
// and runs one detection pass.
func UpdateTriggers(w donburi.World, tv *TriggerVolumes, emit func(messages.PlatformEvent)) {
	components.Platform.Each(w, func(entry *donburi.Entry) {
		pd := components.Platform.Get(entry)
		if pd.Node == nil {
			return
		}
		pos := pd.Node.Pose.Position
		tv.MoveDeck(pd.Entity, pos.X(), pos.Z())
	})

	components.NetSync.Each(w, func(entry *donburi.Entry) {
		d := components.NetSync.Get(entry)
		switch {
		case entry.HasComponent(components.Rig):
			rig := components.Rig.Get(entry)
			if node := rig.BodyNode(); node != nil {
				pos := node.Pose.Position
				tv.MoveRider(d.Entity, pos.X(), pos.Z())
			}
		case entry.HasComponent(components.Movable):
			m := components.Movable.Get(entry)
			if m.Node != nil {
				pos := m.Node.Pose.Position
				tv.MoveRider(d.Entity, pos.X(), pos.Z())
			}
		}
	})

	tv.Step(emit)
}
