package systems_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/automoto/rigsync/components"
	"github.com/automoto/rigsync/shared/messages"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/posemath"
	"github.com/automoto/rigsync/systems"
	"github.com/automoto/rigsync/systems/factory"
)

func newOwnedProp(w donburi.World, owner netconfig.ParticipantID) *donburi.Entry {
	return factory.CreateProp(w, propID, owner, localPart, posemath.Identity())
}

func TestRequestOwnershipCooldown(t *testing.T) {
	w := donburi.NewWorld()
	entry := newOwnedProp(w, remotePart)

	var sent []any
	send := func(msg any) { sent = append(sent, msg) }

	assert.True(t, systems.RequestOwnership(entry, localPart, t0, send))
	// A burst of repeats inside the cooldown is dropped silently.
	assert.False(t, systems.RequestOwnership(entry, localPart, t0.Add(time.Second), send))
	assert.False(t, systems.RequestOwnership(entry, localPart, t0.Add(2*time.Second), send))
	require.Len(t, sent, 1)
	assert.Equal(t, messages.OwnershipRequest{Entity: propID}, sent[0])

	// After the cooldown a fresh request goes out.
	assert.True(t, systems.RequestOwnership(entry, localPart, t0.Add(netconfig.OwnershipCooldown+time.Millisecond), send))
	assert.Len(t, sent, 2)
}

func TestRequestOwnershipNoOpForOwner(t *testing.T) {
	w := donburi.NewWorld()
	entry := newOwnedProp(w, localPart)

	var sent []any
	assert.False(t, systems.RequestOwnership(entry, localPart, t0, func(msg any) { sent = append(sent, msg) }))
	assert.Empty(t, sent)
}

func TestTransferOwnershipRequiresAuthority(t *testing.T) {
	w := donburi.NewWorld()
	entry := newOwnedProp(w, remotePart)

	var sent []any
	send := func(msg any) { sent = append(sent, msg) }

	assert.False(t, systems.TransferOwnership(entry, localPart, remotePart, send))
	assert.Empty(t, sent)

	own := components.Ownership.Get(entry)
	own.Owner = localPart
	assert.True(t, systems.TransferOwnership(entry, localPart, remotePart, send))
	require.Len(t, sent, 1)
	assert.Equal(t, messages.OwnershipTransfer{Entity: propID, Target: remotePart}, sent[0])
}

func TestApplyOwnershipChangeFlipsAuthority(t *testing.T) {
	w := donburi.NewWorld()
	entry := newOwnedProp(w, remotePart)
	m := components.Movable.Get(entry)
	require.False(t, m.Unit.NT.LocalFrame)

	systems.ApplyOwnershipChange(w, localPart, messages.OwnershipChanged{Entity: propID, Owner: localPart})

	own := components.Ownership.Get(entry)
	assert.Equal(t, components.OwnedByLocal, own.StateFor(localPart))
	assert.True(t, m.Unit.NT.LocalFrame)

	// Handing it away flips the frame back.
	systems.ApplyOwnershipChange(w, localPart, messages.OwnershipChanged{Entity: propID, Owner: remotePart})
	assert.False(t, m.Unit.NT.LocalFrame)
}

func TestApplyOwnershipChangeClearsMatchingDemander(t *testing.T) {
	w := donburi.NewWorld()
	entry := newOwnedProp(w, remotePart)

	systems.RequestOwnership(entry, localPart, t0, func(any) {})
	own := components.Ownership.Get(entry)
	require.Equal(t, localPart, own.Demander)

	systems.ApplyOwnershipChange(w, localPart, messages.OwnershipChanged{Entity: propID, Owner: localPart})
	assert.Equal(t, netconfig.ParticipantNone, own.Demander)
}
