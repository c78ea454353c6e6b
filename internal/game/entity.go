package game

// SpawnPlayer creates the walkable player entity at pos.
func SpawnPlayer(w *World, pos Vec2, sheet string) EntityID {
	id := w.NewEntity()
	w.SetComponent(id, CompTransform, &Transform{Pos: pos})
	w.SetComponent(id, CompMovement, &Movement{Speed: PlayerSpeed})
	w.SetComponent(id, CompFootprint, &Footprint{
		Box: Rect{HalfW: PlayerFootprintW / 2, HalfH: PlayerFootprintH / 2},
	})
	w.SetComponent(id, CompSprite, &Sprite{Sheet: sheet, Facing: FacingDown})
	w.SetComponent(id, CompAnim, &AnimState{})
	w.SetComponent(id, CompPlayer, &PlayerTag{})
	return id
}

// SpawnNPC creates a stationary character. NPCs have no movement component;
// they only idle-animate and give the render sink something to draw.
func SpawnNPC(w *World, name string, pos Vec2, sheet string, facing Facing) EntityID {
	id := w.NewEntity()
	w.SetComponent(id, CompTransform, &Transform{Pos: pos})
	w.SetComponent(id, CompSprite, &Sprite{Sheet: sheet, Facing: facing})
	w.SetComponent(id, CompAnim, &AnimState{})
	w.SetComponent(id, CompNPC, &NPCTag{Name: name})
	return id
}

// AdvanceAnimation accumulates dt and cycles the walk frame. Idle entities
// hold frame 0. dt <= 0 ticks are a no-op.
func (a *AnimState) AdvanceAnimation(dt float64) {
	if dt <= 0 {
		return
	}
	if !a.Walking {
		a.Frame = 0
		a.elapsed = 0
		return
	}
	a.elapsed += dt
	for a.elapsed >= WalkFrameSeconds {
		a.elapsed -= WalkFrameSeconds
		a.Frame = (a.Frame + 1) % WalkFrameCount
	}
}
