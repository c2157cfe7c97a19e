package components

import (
	"cogentcore.org/core/math32"

	"sim3d/internal/engine"
	"sim3d/internal/physics"
)

// Rigidbody makes a game object participate in the dynamics step. The
// wrapped physics body is created and registered with the world on
// Start, taking its pose from the object's transform node.
type Rigidbody struct {
	engine.BaseComponent
	World *physics.World

	Mass              float32
	GravityMultiplier float32
	Velocity          math32.Vector3

	body *physics.RigidBody
}

func NewRigidbody(world *physics.World) *Rigidbody {
	return &Rigidbody{
		World:             world,
		Mass:              1,
		GravityMultiplier: 1,
	}
}

func (r *Rigidbody) Start() {
	g := r.GetGameObject()
	r.body = physics.NewRigidBody(g.Transform)
	if r.Mass > 0 {
		r.body.InvMass = 1 / r.Mass
	} else {
		r.body.InvMass = 0
	}
	r.body.GravityMultiplier = r.GravityMultiplier
	r.body.Velocity = r.Velocity
	if local, err := g.Local(); err == nil {
		r.body.SetMOIAsCuboid(local.Scale)
	}
	if err := r.World.AddBody(r.body); err != nil {
		panic(err)
	}
}

// Body returns the underlying physics body, nil before Start.
func (r *Rigidbody) Body() *physics.RigidBody {
	return r.body
}
