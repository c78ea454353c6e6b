package game

import "testing"

// TestWorldComponents exercises set/get/remove through the typed accessors.
func TestWorldComponents(t *testing.T) {
	w := NewWorld()
	a := w.NewEntity()
	b := w.NewEntity()
	if a == b {
		t.Fatal("entity ids must be unique")
	}

	w.SetComponent(a, CompTransform, &Transform{Pos: Vec2{X: 1, Y: 2}})
	w.SetComponent(b, CompTransform, &Transform{Pos: Vec2{X: 3, Y: 4}})
	w.SetComponent(a, CompSprite, &Sprite{Sheet: "gentleman"})

	if tr := w.Transform(a); tr == nil || tr.Pos.X != 1 {
		t.Errorf("Transform(a) = %+v", tr)
	}
	if w.Sprite(b) != nil {
		t.Error("Sprite(b) should be nil")
	}

	// ForEach requires every listed component.
	var visited []EntityID
	w.ForEach([]ComponentKey{CompTransform, CompSprite}, func(id EntityID) {
		visited = append(visited, id)
	})
	if len(visited) != 1 || visited[0] != a {
		t.Errorf("ForEach visited %v, want [a]", visited)
	}

	w.RemoveComponent(a, CompSprite)
	if w.Sprite(a) != nil {
		t.Error("Sprite(a) should be nil after removal")
	}

	w.RemoveEntity(b)
	if w.Exists(b) {
		t.Error("b should not exist after RemoveEntity")
	}
	if !w.Exists(a) {
		t.Error("a should survive removing b")
	}
}
