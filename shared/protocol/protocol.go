// Package protocol pins the wire protocol version shared by server and
// participants. Message payloads themselves are serialized by the necs
// router; compatibility is checked once during the join handshake.
package protocol

// Version is bumped on any incompatible change to the message set or to the
// packed snapshot field order.
const Version = "0.3.0"

// Compatible reports whether a participant speaking v can join a server
// speaking Version. Exact match only; the packed pose layout leaves no room
// for field-level negotiation.
func Compatible(v string) bool {
	return v == Version
}
