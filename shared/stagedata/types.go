package stagedata

// PixelsPerMeter converts TMX pixel coordinates to world meters. Stage maps
// are authored top-down: TMX X/Y become world X/Z.
const PixelsPerMeter = 16.0

// Rect is a platform deck footprint on the ground plane, in meters.
type Rect struct {
	X, Z float64 // min corner
	W, D float64 // width along X, depth along Z
}

// PlatformDef describes one moving platform parsed from the stage map.
type PlatformDef struct {
	Name      string
	Deck      Rect
	Elevation float64 // deck height in meters

	// Patrol is the translation offset the platform oscillates through.
	// Zero offset means a static platform.
	PatrolDX, PatrolDY, PatrolDZ float64
	PatrolPeriod                 float64 // seconds for one out-and-back cycle
	YawRate                      float64 // radians/second about the vertical axis
}

// SpawnPoint is a participant spawn location in meters.
type SpawnPoint struct {
	X, Z  float64
	Index int
}

// StageData is everything the session server needs from one stage map.
type StageData struct {
	Name      string
	Width     float64 // world extent in meters
	Depth     float64
	Platforms []PlatformDef
	Spawns    []SpawnPoint
}
