package systems

import (
	"time"

	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/messages"
	"github.com/automoto/rigsync/shared/netconfig"
)

// OwnershipSender issues an out-of-band call to the session layer. The call
// itself grants nothing; the result is observed later via OwnershipChanged.
type OwnershipSender func(any)

// RequestOwnership asks the session server for authority over the entity.
// Non-requestable requests are dropped silently — contention is expected in
// normal operation, not an error. Returns whether a request went out.
func RequestOwnership(entry *donburi.Entry, local netconfig.ParticipantID, now time.Time, send OwnershipSender) bool {
	o := components.Ownership.Get(entry)
	if !o.RequestableBy(local, now) {
		return false
	}

	o.Demander = local
	o.LastRequest = now
	if send != nil {
		send(messages.OwnershipRequest{Entity: components.NetSync.Get(entry).Entity})
	}
	return true
}

// TransferOwnership voluntarily hands the entity to another participant.
// Only the current owner (or anyone, when unowned) may initiate it.
func TransferOwnership(entry *donburi.Entry, local, target netconfig.ParticipantID, send OwnershipSender) bool {
	o := components.Ownership.Get(entry)
	if !o.TransferableBy(local) {
		return false
	}

	if send != nil {
		send(messages.OwnershipTransfer{
			Entity: components.NetSync.Get(entry).Entity,
			Target: target,
		})
	}
	return true
}

// ApplyOwnershipChange records a server-confirmed owner change and flips the
// entity's authority mode accordingly.
func ApplyOwnershipChange(w donburi.World, local netconfig.ParticipantID, msg messages.OwnershipChanged) {
	entry := FindEntity(w, msg.Entity)
	if entry == nil || !entry.HasComponent(components.Ownership) {
		return
	}

	o := components.Ownership.Get(entry)
	o.Owner = msg.Owner
	if o.Demander == msg.Owner {
		o.Demander = netconfig.ParticipantNone
	}

	SetAuthority(entry, local)
}
