// Package stagedata loads stage layouts from Tiled TMX maps: platform deck
// footprints with patrol parameters and participant spawn points. Maps are
// authored top-down, so object X/Y in the editor map to world X/Z.
package stagedata

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lafriks/go-tiled"
)

// LoadStage parses a TMX file into stage data. It takes an fs.FS so callers
// can pass embed.FS or os.DirFS.
func LoadStage(fsys fs.FS, tmxPath string) (*StageData, error) {
	stageMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	stage := &StageData{
		Name:  strings.TrimSuffix(filepath.Base(tmxPath), filepath.Ext(tmxPath)),
		Width: float64(stageMap.Width*stageMap.TileWidth) / PixelsPerMeter,
		Depth: float64(stageMap.Height*stageMap.TileHeight) / PixelsPerMeter,
	}

	for _, og := range stageMap.ObjectGroups {
		switch og.Name {
		case "Platforms":
			for _, o := range og.Objects {
				stage.Platforms = append(stage.Platforms, PlatformDef{
					Name: o.Name,
					Deck: Rect{
						X: o.X / PixelsPerMeter,
						Z: o.Y / PixelsPerMeter,
						W: o.Width / PixelsPerMeter,
						D: o.Height / PixelsPerMeter,
					},
					Elevation:    o.Properties.GetFloat("elevation"),
					PatrolDX:     o.Properties.GetFloat("patrolDX"),
					PatrolDY:     o.Properties.GetFloat("patrolDY"),
					PatrolDZ:     o.Properties.GetFloat("patrolDZ"),
					PatrolPeriod: o.Properties.GetFloat("patrolPeriod"),
					YawRate:      o.Properties.GetFloat("yawRate"),
				})
			}
		case "Spawns":
			for _, o := range og.Objects {
				stage.Spawns = append(stage.Spawns, SpawnPoint{
					X:     o.X / PixelsPerMeter,
					Z:     o.Y / PixelsPerMeter,
					Index: o.Properties.GetInt("spawnIndex"),
				})
			}
		}
	}

	// Sort spawns for consistent assignment order.
	sort.Slice(stage.Spawns, func(i, j int) bool {
		return stage.Spawns[i].Index < stage.Spawns[j].Index
	})

	return stage, nil
}
