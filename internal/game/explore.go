package game

// FrameResult is what one exploration update reports back to the session:
// zone boundary crossings and any edge transition the player walked into.
type FrameResult struct {
	Moved      bool
	Entered    []TriggerZone
	Exited     []string
	Transition *EdgeExit
}

// Explorer is the per-frame exploration controller. It owns movement
// resolution against the level's collision grid and zone entry/exit
// detection for the player entity.
type Explorer struct {
	world  *World
	level  *Level
	player EntityID
	locked func() bool

	overlapping map[string]bool
}

// NewExplorer wires the controller to a player entity. locked reads the
// session's movement-lock flag each tick.
func NewExplorer(world *World, level *Level, player EntityID, locked func() bool) *Explorer {
	return &Explorer{
		world:       world,
		level:       level,
		player:      player,
		locked:      locked,
		overlapping: make(map[string]bool),
	}
}

// SetLevel swaps the active level after an edge transition. Overlap
// tracking resets so zones in the new level fire fresh Entered events.
func (e *Explorer) SetLevel(level *Level, player EntityID) {
	e.level = level
	e.player = player
	e.overlapping = make(map[string]bool)
}

// Update proposes and resolves one frame of movement, then diffs zone
// overlap against the previous frame. A dt <= 0 tick is a no-op. Input is
// ignored entirely while movement is locked; zone overlap is still diffed
// so a zone containing the spawn point fires on the first frame.
func (e *Explorer) Update(input Vec2, dt float64) FrameResult {
	var result FrameResult
	if dt <= 0 || e.level == nil {
		return result
	}
	tr := e.world.Transform(e.player)
	mov := e.world.Movement(e.player)
	foot := e.world.Footprint(e.player)
	if tr == nil || mov == nil || foot == nil {
		return result
	}

	if e.locked != nil && e.locked() {
		input = Vec2{}
	}
	input.X = Clamp(input.X, -1, 1)
	input.Y = Clamp(input.Y, -1, 1)
	if input.X != 0 && input.Y != 0 {
		// Same 1/sqrt(2) normalization the arrow-key handling has always
		// used, so diagonals are no faster than cardinal walks.
		input = input.Scale(DiagonalFactor)
	}

	start := tr.Pos
	delta := input.Scale(mov.Speed * dt)

	// Axis-separated resolution: land the X move first, then the Y move
	// from wherever X ended up. Blocking one axis never cancels the other,
	// which is what lets the player slide along walls.
	pos := start
	if delta.X != 0 {
		tryX := Vec2{X: pos.X + delta.X, Y: pos.Y}
		if !e.level.Blocked(foot.Box.At(tryX)) {
			pos = tryX
		}
	}
	if delta.Y != 0 {
		tryY := Vec2{X: pos.X, Y: pos.Y + delta.Y}
		if !e.level.Blocked(foot.Box.At(tryY)) {
			pos = tryY
		}
	}
	tr.Pos = pos
	result.Moved = pos != start

	if sprite := e.world.Sprite(e.player); sprite != nil {
		sprite.Facing = FacingFor(input, sprite.Facing)
	}
	if anim := e.world.Anim(e.player); anim != nil {
		anim.Walking = result.Moved
	}

	now := make(map[string]bool, len(e.level.Zones))
	box := foot.Box.At(pos)
	for _, zone := range e.level.Zones {
		if box.Overlaps(zone.Bounds) {
			now[zone.ID] = true
			if !e.overlapping[zone.ID] {
				result.Entered = append(result.Entered, zone)
			}
		}
	}
	for id := range e.overlapping {
		if !now[id] {
			result.Exited = append(result.Exited, id)
		}
	}
	e.overlapping = now

	if e.locked == nil || !e.locked() {
		result.Transition = e.level.EdgeAt(pos)
	}
	return result
}
