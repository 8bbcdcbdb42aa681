package components

import (
	"time"

	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/shared/netconfig"
)

// OwnershipState is the authority relation between the local participant and
// one entity.
type OwnershipState uint8

const (
	Unowned OwnershipState = iota
	OwnedByLocal
	OwnedByRemote
)

// OwnershipData is the request-gating policy for one entity. It never grants
// anything by itself: ownership changes are observed only through the session
// server's OwnershipChanged broadcasts.
type OwnershipData struct {
	Owner       netconfig.ParticipantID // ParticipantNone when unowned
	Demander    netconfig.ParticipantID
	LastRequest time.Time
}

var Ownership = donburi.NewComponentType[OwnershipData]()

// StateFor classifies the entity relative to the given participant.
func (o *OwnershipData) StateFor(local netconfig.ParticipantID) OwnershipState {
	switch o.Owner {
	case netconfig.ParticipantNone:
		return Unowned
	case local:
		return OwnedByLocal
	}
	return OwnedByRemote
}

// RequestableBy reports whether p may issue an ownership request now. Only
// the designated demander may request, and only once the cooldown since the
// previous request has elapsed. The gate is backpressure against request
// storms, not a queue: callers drop non-requestable requests silently.
func (o *OwnershipData) RequestableBy(p netconfig.ParticipantID, now time.Time) bool {
	if p == netconfig.ParticipantNone || o.Owner == p {
		return false
	}
	if o.Demander != netconfig.ParticipantNone && o.Demander != p {
		return false
	}
	return now.Sub(o.LastRequest) >= netconfig.OwnershipCooldown
}

// TransferableBy reports whether p may voluntarily hand the entity off:
// p is the current owner, or nobody is.
func (o *OwnershipData) TransferableBy(p netconfig.ParticipantID) bool {
	return o.Owner == p || o.Owner == netconfig.ParticipantNone
}
