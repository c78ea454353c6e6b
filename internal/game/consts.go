package game

const (
	SimHz        = 20.0 // session tick rate
	Dt           = 1.0 / SimHz
	UpdateRateHz = 10.0 // per-client WS frame pushes

	TileSize = 32.0

	PlayerSpeed    = 160.0 // units/s
	DiagonalFactor = 0.7071067811865476

	// Sprite cells are 32x32; the collision footprint is inflated a few
	// pixels tighter so the player can brush past doorway tiles.
	PlayerFootprintW = 24.0
	PlayerFootprintH = 24.0

	WalkFrameSeconds = 0.15
	WalkFrameCount   = 4

	// Distance from a map boundary at which a declared edge exit fires.
	// Half a tile, so a player hugging the border wall crosses it.
	EdgeTransitionBuffer = TileSize / 2
)
