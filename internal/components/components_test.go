package components

import (
	"testing"

	"sim3d/internal/engine"
	"sim3d/internal/physics"
	"sim3d/internal/transform"
)

func TestRigidbodyRegistersOnStart(t *testing.T) {
	scene := engine.NewScene("test")
	world := physics.NewWorld(scene.Transforms, nil)

	obj := scene.NewGameObject("crate")
	rb := NewRigidbody(world)
	rb.Mass = 2
	obj.AddComponent(rb)

	scene.Start()

	body := rb.Body()
	if body == nil {
		t.Fatal("body should exist after Start")
	}
	if body.InvMass != 0.5 {
		t.Errorf("InvMass = %v, want 0.5", body.InvMass)
	}
	if body.Transform != obj.Transform {
		t.Error("body should share the object's transform node")
	}
	if world.Tree().Len() != 1 {
		t.Errorf("tree should hold one leaf, got %d", world.Tree().Len())
	}
}

func TestRigidbodyInfiniteMass(t *testing.T) {
	scene := engine.NewScene("test")
	world := physics.NewWorld(scene.Transforms, nil)

	obj := scene.NewGameObject("anchor")
	rb := NewRigidbody(world)
	rb.Mass = 0
	obj.AddComponent(rb)
	scene.Start()

	if rb.Body().InvMass != 0 {
		t.Errorf("zero mass should map to zero inverse mass, got %v", rb.Body().InvMass)
	}
}

func TestBoxColliderRegistersStatic(t *testing.T) {
	scene := engine.NewScene("test")
	world := physics.NewWorld(scene.Transforms, nil)

	floor := scene.NewGameObject("floor")
	err := floor.Mutate(func(local *transform.TRS) {
		local.Translation.Y = -1
		local.Scale = local.Scale.MulScalar(4)
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	floor.AddComponent(NewBoxCollider(world))
	scene.Start()

	if world.Tree().Len() != 1 {
		t.Errorf("tree should hold one leaf, got %d", world.Tree().Len())
	}
}

func TestBoxColliderDefersToRigidbody(t *testing.T) {
	scene := engine.NewScene("test")
	world := physics.NewWorld(scene.Transforms, nil)

	obj := scene.NewGameObject("crate")
	obj.AddComponent(NewRigidbody(world))
	obj.AddComponent(NewBoxCollider(world))
	scene.Start()

	if world.Tree().Len() != 1 {
		t.Errorf("object with both components should register one leaf, got %d", world.Tree().Len())
	}
}
