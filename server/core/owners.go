package core

import (
	"sort"

	"github.com/automoto/rigsync/shared/netconfig"
)

// OwnerTable is the server's authoritative record of entity ownership. The
// ECS components mirror it; arbitration decisions are made here first and
// broadcast after.
type OwnerTable struct {
	owners map[netconfig.EntityID]netconfig.ParticipantID
	locked map[netconfig.EntityID]bool
}

func NewOwnerTable() *OwnerTable {
	return &OwnerTable{
		owners: make(map[netconfig.EntityID]netconfig.ParticipantID),
		locked: make(map[netconfig.EntityID]bool),
	}
}

// Owner returns the current owner, ParticipantNone when unowned or unknown.
func (t *OwnerTable) Owner(e netconfig.EntityID) netconfig.ParticipantID {
	return t.owners[e]
}

// Set records an owner without arbitration. Used when spawning.
func (t *OwnerTable) Set(e netconfig.EntityID, p netconfig.ParticipantID) {
	t.owners[e] = p
}

// Lock pins an entity to its current owner permanently. Platforms are locked
// to the server; requests and transfers against them always fail.
func (t *OwnerTable) Lock(e netconfig.EntityID) {
	t.locked[e] = true
}

func (t *OwnerTable) Locked(e netconfig.EntityID) bool {
	return t.locked[e]
}

// Grant arbitrates an ownership request. Only unowned entities are granted;
// taking an entity from a live owner requires that owner to transfer it.
// Owners of departed participants were already released to unowned.
func (t *OwnerTable) Grant(e netconfig.EntityID, requester netconfig.ParticipantID) bool {
	if requester == netconfig.ParticipantNone || t.locked[e] {
		return false
	}
	if t.owners[e] != netconfig.ParticipantNone {
		return false
	}
	t.owners[e] = requester
	return true
}

// Transfer hands ownership to target, but only on behalf of the current
// owner. Target may be ParticipantNone to release.
func (t *OwnerTable) Transfer(e netconfig.EntityID, from, target netconfig.ParticipantID) bool {
	if t.locked[e] {
		return false
	}
	if t.owners[e] != from || from == netconfig.ParticipantNone {
		return false
	}
	t.owners[e] = target
	return true
}

// Remove forgets an entity entirely.
func (t *OwnerTable) Remove(e netconfig.EntityID) {
	delete(t.owners, e)
	delete(t.locked, e)
}

// Release clears everything a departing participant owned and returns the
// affected entities in ascending order.
func (t *OwnerTable) Release(p netconfig.ParticipantID) []netconfig.EntityID {
	var released []netconfig.EntityID
	for e, owner := range t.owners {
		if owner == p {
			t.owners[e] = netconfig.ParticipantNone
			released = append(released, e)
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i] < released[j] })
	return released
}
