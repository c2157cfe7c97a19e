package engine

import (
	"testing"

	"sim3d/internal/transform"
)

func TestNewGameObject(t *testing.T) {
	scene := NewScene("test")
	obj := scene.NewGameObject("TestObject")

	if obj.Name != "TestObject" {
		t.Errorf("Expected name 'TestObject', got '%s'", obj.Name)
	}

	if obj.UID == 0 {
		t.Error("UID should not be 0")
	}

	if obj.components == nil {
		t.Error("components slice should be initialized")
	}

	if _, err := scene.Transforms.Local(obj.Transform); err != nil {
		t.Errorf("new object should own a transform node: %v", err)
	}
}

func TestGameObjectUniqueUIDs(t *testing.T) {
	scene := NewScene("test")
	obj1 := scene.NewGameObject("First")
	obj2 := scene.NewGameObject("Second")
	obj3 := scene.NewGameObject("Third")

	if obj1.UID == obj2.UID {
		t.Error("GameObjects should have unique UIDs")
	}
	if obj2.UID == obj3.UID {
		t.Error("GameObjects should have unique UIDs")
	}
	if obj1.UID == obj3.UID {
		t.Error("GameObjects should have unique UIDs")
	}
}

func TestGameObjectHasTag(t *testing.T) {
	scene := NewScene("test")
	obj := scene.NewGameObject("Test")
	obj.Tags = []string{"enemy", "ai", "dangerous"}

	if !obj.HasTag("enemy") {
		t.Error("HasTag should return true for existing tag")
	}

	if !obj.HasTag("ai") {
		t.Error("HasTag should return true for existing tag")
	}

	if obj.HasTag("player") {
		t.Error("HasTag should return false for non-existent tag")
	}

	// Test empty tags
	obj2 := scene.NewGameObject("Test2")
	if obj2.HasTag("anything") {
		t.Error("HasTag should return false when Tags is nil/empty")
	}
}

func TestGameObjectParentChild(t *testing.T) {
	scene := NewScene("test")
	parent := scene.NewGameObject("Parent")
	child := scene.NewGameObject("Child")

	if err := parent.AddChild(child); err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	if child.Parent != parent {
		t.Error("Child.Parent should be set")
	}

	if len(parent.Children) != 1 {
		t.Errorf("Expected 1 child, got %d", len(parent.Children))
	}

	if parent.Children[0] != child {
		t.Error("Child not added to parent's Children slice")
	}
}

func TestGameObjectChildPoseComposes(t *testing.T) {
	scene := NewScene("test")
	parent := scene.NewGameObject("Parent")
	child := scene.NewGameObject("Child")
	if err := parent.AddChild(child); err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	if err := parent.Mutate(func(local *transform.TRS) { local.Translation.X = 3 }); err != nil {
		t.Fatalf("Mutate parent: %v", err)
	}
	if err := child.Mutate(func(local *transform.TRS) { local.Translation.X = 2 }); err != nil {
		t.Fatalf("Mutate child: %v", err)
	}

	model, err := scene.Transforms.GlobalModel(child.Transform)
	if err != nil {
		t.Fatalf("GlobalModel: %v", err)
	}
	if model[12] != 5 {
		t.Errorf("child world x = %v, want 5", model[12])
	}
}

func TestGameObjectRemoveChild(t *testing.T) {
	scene := NewScene("test")
	parent := scene.NewGameObject("Parent")
	child1 := scene.NewGameObject("Child1")
	child2 := scene.NewGameObject("Child2")

	parent.AddChild(child1)
	parent.AddChild(child2)

	if err := parent.RemoveChild(child1); err != nil {
		t.Fatalf("RemoveChild: %v", err)
	}

	if len(parent.Children) != 1 {
		t.Errorf("Expected 1 child after removal, got %d", len(parent.Children))
	}

	if parent.Children[0] != child2 {
		t.Error("Wrong child removed")
	}

	if child1.Parent != nil {
		t.Error("Removed child should have nil parent")
	}

	// The detached child's transform is back in the root set and no
	// longer inherits the parent's pose.
	if err := parent.Mutate(func(local *transform.TRS) { local.Translation.X = 7 }); err != nil {
		t.Fatalf("Mutate parent: %v", err)
	}
	model, err := scene.Transforms.GlobalModel(child1.Transform)
	if err != nil {
		t.Fatalf("GlobalModel: %v", err)
	}
	if model[12] != 0 {
		t.Errorf("detached child world x = %v, want 0", model[12])
	}
}

func TestGameObjectAddComponent(t *testing.T) {
	scene := NewScene("test")
	obj := scene.NewGameObject("Test")
	comp := &BaseComponent{}

	obj.AddComponent(comp)

	if len(obj.components) != 1 {
		t.Errorf("Expected 1 component, got %d", len(obj.components))
	}

	if comp.gameObject != obj {
		t.Error("Component.gameObject should be set")
	}
}

func TestGameObjectGetComponent(t *testing.T) {
	scene := NewScene("test")
	obj := scene.NewGameObject("Test")
	comp := &BaseComponent{}

	obj.AddComponent(comp)

	found := GetComponent[*BaseComponent](obj)
	if found != comp {
		t.Error("GetComponent failed to find component")
	}
}

func TestGameObjectStartCalledOnce(t *testing.T) {
	scene := NewScene("test")
	obj := scene.NewGameObject("Test")

	// First call should set started = true
	obj.Start()
	if !obj.started {
		t.Error("started flag should be true after Start()")
	}

	// Second call should be a no-op (no panic, no re-initialization)
	obj.Start() // Should not panic or cause issues
}
