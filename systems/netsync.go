package systems

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/messages"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/netsync"
)

// PoseSender delivers one outbound anchor update to the session layer.
type PoseSender func(messages.PoseUpdate)

// ActivateNetSync completes an entity's two-phase construction once a live
// session is confirmed. For entities the local participant does not own, every
// unit marked for proxy indirection gets a fresh proxy node seeded from its
// real target, so remote-driven state never writes into solver-owned nodes
// directly. Idempotent; the second call is a no-op.
func ActivateNetSync(entry *donburi.Entry, local netconfig.ParticipantID) {
	d := components.NetSync.Get(entry)
	if d.Activated {
		return
	}

	owned := false
	if entry.HasComponent(components.Ownership) {
		owned = components.Ownership.Get(entry).StateFor(local) == components.OwnedByLocal
	}
	if !owned {
		for _, u := range d.Units {
			if u.UseProxyTarget && u.Target != nil {
				u.Target = netsync.NewNode(u.Target.Pose)
			}
		}
	}
	d.Activated = true
}

// SetAuthority flips every unit's frame mode when ownership changes. Locally
// owned units run in the live local frame, where platform reference motion is
// a no-op because the owner's own source of truth already carries it.
func SetAuthority(entry *donburi.Entry, local netconfig.ParticipantID) {
	d := components.NetSync.Get(entry)
	owned := false
	if entry.HasComponent(components.Ownership) {
		owned = components.Ownership.Get(entry).StateFor(local) == components.OwnedByLocal
	}
	for _, u := range d.Units {
		u.NT.LocalFrame = owned
	}
}

// UpdateNetSync drives one synchronization tick for every entity: the
// authority side pulls live poses and emits snapshots, everyone else ingests
// queued snapshots and interpolates. A misbehaving entity degrades to "no
// update this tick"; it never aborts the tick for others.
func UpdateNetSync(w donburi.World, local netconfig.ParticipantID, dt float64, send PoseSender) {
	components.NetSync.Each(w, func(entry *donburi.Entry) {
		d := components.NetSync.Get(entry)
		if !d.Activated {
			return
		}

		owned := false
		if entry.HasComponent(components.Ownership) {
			owned = components.Ownership.Get(entry).StateFor(local) == components.OwnedByLocal
		}

		if owned {
			for _, u := range d.Units {
				u.UpdateLocal()
				snap := u.Send()
				if send != nil && snap.Flags.FieldCount() > 0 {
					send(messages.PoseUpdate{
						Entity: d.Entity,
						Anchor: u.Anchor,
						Values: snap.Pack(),
					})
				}
			}
			return
		}

		for _, p := range d.Pending {
			if u := d.Unit(p.Anchor); u != nil {
				u.Receive(p.Snap, p.At)
			}
		}
		d.Pending = d.Pending[:0]

		for _, u := range d.Units {
			u.UpdateRemote(dt)
		}

		if entry.HasComponent(components.Rig) {
			rig := components.Rig.Get(entry)
			// Two passes: initialization order across limb solvers sharing
			// one body is not guaranteed, so a single pass can leave a solver
			// reading a stale target reference.
			for pass := 0; pass < 2; pass++ {
				for _, s := range rig.Solvers {
					s.Rebind()
				}
			}
		}
	})
}
