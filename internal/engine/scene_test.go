package engine

import "testing"

func TestSceneNewGameObject(t *testing.T) {
	scene := NewScene("Test")
	obj := scene.NewGameObject("Player")

	if len(scene.GameObjects) != 1 {
		t.Errorf("Expected 1 GameObject, got %d", len(scene.GameObjects))
	}

	if scene.GameObjects[0] != obj {
		t.Error("GameObject not added to scene")
	}

	if obj.Scene != scene {
		t.Error("GameObject.Scene not set")
	}
}

func TestSceneUIDLookup(t *testing.T) {
	scene := NewScene("Test")
	obj := scene.NewGameObject("Player")

	found := scene.FindByUID(obj.UID)
	if found != obj {
		t.Errorf("FindByUID failed: expected %v, got %v", obj, found)
	}

	// Test non-existent UID
	notFound := scene.FindByUID(99999)
	if notFound != nil {
		t.Error("FindByUID should return nil for non-existent UID")
	}
}

func TestSceneRemoveGameObject(t *testing.T) {
	scene := NewScene("Test")
	obj1 := scene.NewGameObject("Player")
	obj2 := scene.NewGameObject("Enemy")

	scene.RemoveGameObject(obj1)

	if len(scene.GameObjects) != 1 {
		t.Errorf("Expected 1 GameObject after removal, got %d", len(scene.GameObjects))
	}

	if scene.GameObjects[0] != obj2 {
		t.Error("Wrong GameObject removed")
	}

	if scene.FindByUID(obj1.UID) != nil {
		t.Error("Removed GameObject still findable by UID")
	}

	if scene.FindByUID(obj2.UID) != obj2 {
		t.Error("Remaining GameObject not findable by UID")
	}
}

func TestSceneFindByName(t *testing.T) {
	scene := NewScene("Test")
	obj := scene.NewGameObject("UniquePlayer")

	found := scene.FindByName("UniquePlayer")
	if found != obj {
		t.Error("FindByName failed")
	}

	notFound := scene.FindByName("DoesNotExist")
	if notFound != nil {
		t.Error("FindByName should return nil for non-existent name")
	}
}

func TestSceneFindByTag(t *testing.T) {
	scene := NewScene("Test")
	obj1 := scene.NewGameObject("Enemy1")
	obj2 := scene.NewGameObject("Enemy2")
	obj3 := scene.NewGameObject("Player")

	obj1.Tags = []string{"enemy", "ai"}
	obj2.Tags = []string{"enemy"}
	obj3.Tags = []string{"player"}

	enemies := scene.FindByTag("enemy")
	if len(enemies) != 2 {
		t.Errorf("Expected 2 enemies, got %d", len(enemies))
	}

	players := scene.FindByTag("player")
	if len(players) != 1 {
		t.Errorf("Expected 1 player, got %d", len(players))
	}

	notFound := scene.FindByTag("nonexistent")
	if len(notFound) != 0 {
		t.Error("FindByTag should return empty slice for non-existent tag")
	}
}

func TestSceneStartAndUpdate(t *testing.T) {
	scene := NewScene("Test")
	obj := scene.NewGameObject("Ticker")
	comp := &countingComponent{}
	obj.AddComponent(comp)

	scene.Start()
	if comp.starts != 1 {
		t.Errorf("Expected 1 Start call, got %d", comp.starts)
	}

	scene.Update(0.016)
	scene.Update(0.016)
	if comp.updates != 2 {
		t.Errorf("Expected 2 Update calls, got %d", comp.updates)
	}

	obj.Active = false
	scene.Update(0.016)
	if comp.updates != 2 {
		t.Error("Inactive objects should not receive Update")
	}
}

type countingComponent struct {
	BaseComponent
	starts  int
	updates int
}

func (c *countingComponent) Start() { c.starts++ }

func (c *countingComponent) Update(deltaTime float32) { c.updates++ }
