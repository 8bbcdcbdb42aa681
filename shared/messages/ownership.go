package messages

import "github.com/automoto/rigsync/shared/netconfig"

// OwnershipRequest asks the session server for write authority over an
// entity. Issuing it grants nothing; the change is observed only through a
// later OwnershipChanged broadcast.
type OwnershipRequest struct {
	Entity netconfig.EntityID
}

// OwnershipTransfer hands authority over an entity to another participant.
// Only the current owner may issue it.
type OwnershipTransfer struct {
	Entity netconfig.EntityID
	Target netconfig.ParticipantID
}

// OwnershipChanged is broadcast by the server whenever an entity's owner
// changes. Owner is ParticipantNone when the entity reverts to unowned.
type OwnershipChanged struct {
	Entity netconfig.EntityID
	Owner  netconfig.ParticipantID
}
