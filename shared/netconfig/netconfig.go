// Package netconfig defines lightweight identifiers and tuning constants
// shared between the session server and participants. It must have zero
// dependencies on the ECS or transport packages so every binary can import it.
package netconfig

import "time"

// ParticipantID identifies one connected participant. Zero means "none":
// an unowned entity or a server-driven one.
type ParticipantID uint32

// ParticipantNone is the absent-participant sentinel.
const ParticipantNone ParticipantID = 0

// ServerParticipant is the session server's own participant id, the authority
// for server-driven entities such as patrol platforms. Joining participants
// are numbered from ServerParticipant + 1.
const ServerParticipant ParticipantID = 1

// EntityID identifies one network-owned entity across all participants.
type EntityID uint32

// AnchorID identifies one tracked anchor of a synchronized entity. Articulated
// entities sync every anchor; generic movables sync only the body anchor.
type AnchorID uint8

const (
	AnchorBody AnchorID = iota
	AnchorGround
	AnchorHead
	AnchorLeftHand
	AnchorRightHand
	AnchorCount // Must be last - used for array sizing
)

var anchorNames = map[AnchorID]string{
	AnchorBody:      "body",
	AnchorGround:    "ground",
	AnchorHead:      "head",
	AnchorLeftHand:  "left_hand",
	AnchorRightHand: "right_hand",
}

func (a AnchorID) String() string {
	if name, ok := anchorNames[a]; ok {
		return name
	}
	return "unknown"
}

// Membership event tags. Enter/exit reports carrying any other tag are ignored
// by the platform tracker.
const (
	TagPlayer       = "player"
	TagInteractable = "interactable"
)

// EntityKind labels what a spawned network entity is.
type EntityKind uint8

const (
	KindAvatar EntityKind = iota
	KindProp
	KindPlatform
)

func (k EntityKind) String() string {
	switch k {
	case KindAvatar:
		return "avatar"
	case KindProp:
		return "prop"
	case KindPlatform:
		return "platform"
	}
	return "unknown"
}

const (
	// DefaultTickRate is the fixed physics/sync tick frequency in Hz.
	DefaultTickRate = 30

	// OwnershipCooldown is the minimum gap between two ownership requests
	// issued by the same demander. Requests inside the window are dropped.
	OwnershipCooldown = 3 * time.Second

	// MinInterpWindow is the floor for an interpolation window duration in
	// seconds. Keeps the interpolation parameter finite when two snapshots
	// arrive back to back.
	MinInterpWindow = 0.01

	// DefaultTeleportDistance is the start-to-end distance in meters beyond
	// which a snapshot is applied as a snap instead of interpolated.
	DefaultTeleportDistance = 3.0
)
