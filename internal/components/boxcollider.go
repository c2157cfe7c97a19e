package components

import (
	"sim3d/internal/engine"
	"sim3d/internal/physics"
)

// BoxCollider registers the object's transform as immovable cuboid
// geometry in the physics world. The collider is a unit cube scaled by
// the transform, so its size lives entirely in TRS.Scale.
//
// Objects that also carry a Rigidbody get their collider from the body
// registration; BoxCollider stands down on those.
type BoxCollider struct {
	engine.BaseComponent
	World *physics.World
}

func NewBoxCollider(world *physics.World) *BoxCollider {
	return &BoxCollider{World: world}
}

func (b *BoxCollider) Start() {
	g := b.GetGameObject()
	if rb := engine.GetComponent[*Rigidbody](g); rb != nil {
		return
	}
	if err := b.World.AddStatic(g.Transform); err != nil {
		panic(err)
	}
}
