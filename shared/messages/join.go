package messages

import "github.com/automoto/rigsync/shared/netconfig"

// JoinRequest is sent by a participant after connecting to enter the session.
type JoinRequest struct {
	Version        string
	DisplayName    string
	ReconnectToken string
	Articulated    bool // participant runs an articulated rig (limb tracking)
}

// JoinAccepted is sent by the server when a participant's join is accepted.
type JoinAccepted struct {
	ParticipantID  netconfig.ParticipantID
	AvatarEntity   netconfig.EntityID
	ReconnectToken string
	ServerName     string
	TickRate       int
	Stage          string
}

// JoinRejected is sent by the server when a participant's join is rejected.
type JoinRejected struct {
	Reason string
}

// ParticipantLeft is broadcast when a participant disconnects.
type ParticipantLeft struct {
	ParticipantID netconfig.ParticipantID
}

// EntitySpawned announces a network entity to participants. Sent on join for
// every live entity and broadcast when new ones appear.
type EntitySpawned struct {
	Entity      netconfig.EntityID
	Kind        netconfig.EntityKind
	Owner       netconfig.ParticipantID
	Tag         string
	DisplayName string
	Articulated bool
	Pose        []float64 // full-axis packed pose at spawn
}

// EntityRemoved announces that a network entity no longer exists.
type EntityRemoved struct {
	Entity netconfig.EntityID
}
