package stagedata

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStage(t *testing.T) {
	stage, err := LoadStage(os.DirFS("testdata"), "dock.tmx")
	require.NoError(t, err)

	assert.Equal(t, "dock", stage.Name)
	assert.Equal(t, 64.0, stage.Width)
	assert.Equal(t, 64.0, stage.Depth)

	require.Len(t, stage.Platforms, 2)
	lift := stage.Platforms[0]
	assert.Equal(t, "lift-a", lift.Name)
	assert.Equal(t, Rect{X: 6, Z: 8, W: 4, D: 2}, lift.Deck)
	assert.Equal(t, 0.5, lift.Elevation)
	assert.Equal(t, 2.0, lift.PatrolDY)
	assert.Equal(t, 4.0, lift.PatrolPeriod)

	ferry := stage.Platforms[1]
	assert.Equal(t, 8.0, ferry.PatrolDX)
	assert.Equal(t, 0.1, ferry.YawRate)

	// Spawns sorted by index regardless of authoring order.
	require.Len(t, stage.Spawns, 2)
	assert.Equal(t, 0, stage.Spawns[0].Index)
	assert.Equal(t, SpawnPoint{X: 2, Z: 2, Index: 0}, stage.Spawns[0])
	assert.Equal(t, 1, stage.Spawns[1].Index)
}
