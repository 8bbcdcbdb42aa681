package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/automoto/rigsync/shared/netconfig"
)

func TestOwnerTableGrant(t *testing.T) {
	tbl := NewOwnerTable()

	assert.True(t, tbl.Grant(1, 2))
	assert.Equal(t, netconfig.ParticipantID(2), tbl.Owner(1))

	// Owned entities are not up for grabs; the owner must transfer.
	assert.False(t, tbl.Grant(1, 3))
	assert.False(t, tbl.Grant(1, 2))
	assert.Equal(t, netconfig.ParticipantID(2), tbl.Owner(1))

	// Released entities become grantable again.
	tbl.Release(2)
	assert.True(t, tbl.Grant(1, 3))

	assert.False(t, tbl.Grant(2, netconfig.ParticipantNone))
}

func TestOwnerTableLockedEntities(t *testing.T) {
	tbl := NewOwnerTable()
	tbl.Set(7, netconfig.ServerParticipant)
	tbl.Lock(7)

	assert.False(t, tbl.Grant(7, 2))
	assert.False(t, tbl.Transfer(7, netconfig.ServerParticipant, 2))
	assert.Equal(t, netconfig.ServerParticipant, tbl.Owner(7))
}

func TestOwnerTableTransfer(t *testing.T) {
	tbl := NewOwnerTable()
	tbl.Set(1, 2)

	// Only the current owner may transfer.
	assert.False(t, tbl.Transfer(1, 3, 4))
	assert.True(t, tbl.Transfer(1, 2, 3))
	assert.Equal(t, netconfig.ParticipantID(3), tbl.Owner(1))

	// Release back to unowned.
	assert.True(t, tbl.Transfer(1, 3, netconfig.ParticipantNone))
	assert.Equal(t, netconfig.ParticipantNone, tbl.Owner(1))
}

func TestOwnerTableRelease(t *testing.T) {
	tbl := NewOwnerTable()
	tbl.Set(3, 2)
	tbl.Set(1, 2)
	tbl.Set(5, 4)

	released := tbl.Release(2)
	assert.Equal(t, []netconfig.EntityID{1, 3}, released)
	assert.Equal(t, netconfig.ParticipantNone, tbl.Owner(1))
	assert.Equal(t, netconfig.ParticipantNone, tbl.Owner(3))
	assert.Equal(t, netconfig.ParticipantID(4), tbl.Owner(5))

	assert.Empty(t, tbl.Release(2))
}
