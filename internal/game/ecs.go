package game

type EntityID int64

type ComponentKey string

// World is a flat component store keyed by component name. Small enough for
// a kiosk scene (one player, a handful of NPCs) that no archetype storage is
// warranted.
type World struct {
	nextEntity EntityID
	components map[ComponentKey]map[EntityID]any
}

type Transform struct {
	Pos Vec2
}

type Movement struct {
	Speed float64
}

// Footprint is the collision box carried around the entity's position.
type Footprint struct {
	Box Rect
}

type Sprite struct {
	Sheet  string // sprite sheet key known to the render sink
	Facing Facing
}

// AnimState is idle/walking plus the looping frame index.
type AnimState struct {
	Walking bool
	Frame   int
	elapsed float64
}

type PlayerTag struct{}

// NPCTag marks a stationary character; NPCs never move but still animate.
type NPCTag struct {
	Name string
}

const (
	CompTransform ComponentKey = "transform"
	CompMovement  ComponentKey = "movement"
	CompFootprint ComponentKey = "footprint"
	CompSprite    ComponentKey = "sprite"
	CompAnim      ComponentKey = "anim"
	CompPlayer    ComponentKey = "player"
	CompNPC       ComponentKey = "npc"
)

func NewWorld() *World {
	return &World{
		nextEntity: 0,
		components: make(map[ComponentKey]map[EntityID]any),
	}
}

func (w *World) Transform(id EntityID) *Transform {
	if v, ok := w.GetComponent(id, CompTransform); ok {
		if t, ok := v.(*Transform); ok {
			return t
		}
	}
	return nil
}

func (w *World) Movement(id EntityID) *Movement {
	if v, ok := w.GetComponent(id, CompMovement); ok {
		if t, ok := v.(*Movement); ok {
			return t
		}
	}
	return nil
}

func (w *World) Footprint(id EntityID) *Footprint {
	if v, ok := w.GetComponent(id, CompFootprint); ok {
		if t, ok := v.(*Footprint); ok {
			return t
		}
	}
	return nil
}

func (w *World) Sprite(id EntityID) *Sprite {
	if v, ok := w.GetComponent(id, CompSprite); ok {
		if t, ok := v.(*Sprite); ok {
			return t
		}
	}
	return nil
}

func (w *World) Anim(id EntityID) *AnimState {
	if v, ok := w.GetComponent(id, CompAnim); ok {
		if t, ok := v.(*AnimState); ok {
			return t
		}
	}
	return nil
}

func (w *World) NPC(id EntityID) *NPCTag {
	if v, ok := w.GetComponent(id, CompNPC); ok {
		if t, ok := v.(*NPCTag); ok {
			return t
		}
	}
	return nil
}

func (w *World) NewEntity() EntityID {
	w.nextEntity++
	return w.nextEntity
}

func (w *World) SetComponent(id EntityID, key ComponentKey, value any) {
	store, ok := w.components[key]
	if !ok {
		store = make(map[EntityID]any)
		w.components[key] = store
	}
	store[id] = value
}

func (w *World) RemoveComponent(id EntityID, key ComponentKey) {
	if store, ok := w.components[key]; ok {
		delete(store, id)
	}
}

func (w *World) GetComponent(id EntityID, key ComponentKey) (any, bool) {
	if store, ok := w.components[key]; ok {
		val, ok := store[id]
		return val, ok
	}
	return nil, false
}

func (w *World) HasComponent(id EntityID, key ComponentKey) bool {
	if store, ok := w.components[key]; ok {
		_, ok := store[id]
		return ok
	}
	return false
}

func (w *World) RemoveEntity(id EntityID) {
	for _, store := range w.components {
		delete(store, id)
	}
}

func (w *World) ForEach(required []ComponentKey, fn func(EntityID)) {
	if len(required) == 0 {
		return
	}
	first := w.components[required[0]]
	if first == nil {
		return
	}
	for id := range first {
		match := true
		for _, key := range required[1:] {
			if store := w.components[key]; store == nil {
				match = false
				break
			} else if _, ok := store[id]; !ok {
				match = false
				break
			}
		}
		if match {
			fn(id)
		}
	}
}

func (w *World) Exists(id EntityID) bool {
	for _, store := range w.components {
		if _, ok := store[id]; ok {
			return true
		}
	}
	return false
}
