package physics

import (
	"cogentcore.org/core/math32"

	"sim3d/internal/heap"
	"sim3d/internal/transform"
)

// Gravity is the world acceleration applied to every body each tick,
// scaled by the body's GravityMultiplier.
var Gravity = math32.Vec3(0, -9.81, 0)

// RigidBody carries the dynamic state of one simulated body. Pose
// lives in the transform hierarchy; the body only stores rates and
// mass properties.
type RigidBody struct {
	Transform transform.ID

	Velocity math32.Vector3
	// Bivelocity is the angular velocity as a rotation-rate bivector.
	Bivelocity math32.Vector3

	InvMass float32
	// PrincipalMOI holds the moments of inertia about the body's
	// principal axes.
	PrincipalMOI      math32.Vector3
	GravityMultiplier float32

	// contacts holds heap handles of the pending contacts touching
	// this body, so resolving one contact can re-key the others.
	contacts []*heap.Handle

	OldVelocity math32.Vector3
}

func NewRigidBody(id transform.ID) *RigidBody {
	return &RigidBody{
		Transform:         id,
		InvMass:           1,
		PrincipalMOI:      math32.Vec3(1, 1, 1),
		GravityMultiplier: 1,
	}
}

// Integrate advances the body one fixed step: applies gravity to the
// linear velocity, then steps the transform's translation and rotation
// by the current rates.
func (rb *RigidBody) Integrate(ts *transform.System, dt float32) error {
	rb.Velocity = rb.Velocity.Add(Gravity.MulScalar(dt * rb.GravityMultiplier))

	return ts.Mutate(rb.Transform, func(local *transform.TRS) {
		local.Translation = local.Translation.Add(rb.Velocity.MulScalar(dt))
		// The exponential map takes half-angles, hence dt/2.
		rot := RotationExp(rb.Bivelocity.MulScalar(dt / 2))
		local.Rotation = rot.Mul(local.Rotation)
	})
}

// PointVelocity returns the world velocity of a point given relative
// to the body origin.
func (rb *RigidBody) PointVelocity(rel math32.Vector3) math32.Vector3 {
	return rb.Velocity.Add(rb.Bivelocity.Cross(rel))
}

// SetMOIAsCuboid sets the principal moments assuming the body is a
// constant-density cuboid of the given scale. No-op for infinite mass.
func (rb *RigidBody) SetMOIAsCuboid(scale math32.Vector3) {
	if rb.InvMass == 0 {
		return
	}
	rb.PrincipalMOI = math32.Vec3(
		scale.X*scale.X,
		scale.Y*scale.Y,
		scale.Z*scale.Z,
	).DivScalar(rb.InvMass * 12)
}

// AngularVelPerImpulse returns the angular speed gained per unit
// impulse producing the given torque direction, for the body rotated
// by rotation. Zero torque yields zero.
func (rb *RigidBody) AngularVelPerImpulse(torquePerImpulse math32.Vector3, rotation math32.Quat) float32 {
	tpiSq := torquePerImpulse.LengthSquared()
	if tpiSq == 0 {
		return 0
	}
	inv := rotation.Inverse()
	localTorque := torquePerImpulse.MulQuat(inv)
	moi := localTorque.Dot(math32.Vec3(
		localTorque.X*rb.PrincipalMOI.X,
		localTorque.Y*rb.PrincipalMOI.Y,
		localTorque.Z*rb.PrincipalMOI.Z,
	))
	return (tpiSq * tpiSq) / moi
}

// ApplyImpulse applies an instantaneous impulse at a point relative to
// the body origin, adjusting linear and angular velocity.
func (rb *RigidBody) ApplyImpulse(point, impulse math32.Vector3, rotation math32.Quat) {
	rb.Velocity = rb.Velocity.Add(impulse.MulScalar(rb.InvMass))

	torque := impulse.Cross(point).Negate()
	if torque.LengthSquared() == 0 {
		return
	}
	angularInertia := rb.AngularVelPerImpulse(torque.Normal(), rotation)
	rb.Bivelocity = rb.Bivelocity.Add(torque.MulScalar(angularInertia))
}

// StoreOldVelocity snapshots the velocity before resolution, for the
// velocity phase to compare against.
func (rb *RigidBody) StoreOldVelocity() {
	rb.OldVelocity = rb.Velocity
}

// ClearContacts drops every pending-contact handle registered on the
// body.
func (rb *RigidBody) ClearContacts() {
	rb.contacts = rb.contacts[:0]
}
